package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"listora_publisher_v1/internal/repository"
)

// HistoryController 发布历史查询，只读，直接走仓储
type HistoryController struct {
	listingRepo repository.ListingRepository
	productRepo repository.PublishedProductRepository
	fileRepo    repository.TemplateFileRepository
}

func NewHistoryController(
	listingRepo repository.ListingRepository,
	productRepo repository.PublishedProductRepository,
	fileRepo repository.TemplateFileRepository,
) *HistoryController {
	return &HistoryController{
		listingRepo: listingRepo,
		productRepo: productRepo,
		fileRepo:    fileRepo,
	}
}

// GetEbayHistory eBay 发布历史（成功失败都在）
// GET /api/publish/history
func (ctrl *HistoryController) GetEbayHistory(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 user_id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	listings, total, err := ctrl.listingRepo.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":      0,
		"message":   "success",
		"data":      listings,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetPublishedProducts 跨平台已发布商品
// GET /api/published
func (ctrl *HistoryController) GetPublishedProducts(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 user_id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := ctrl.productRepo.ListByUser(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":      0,
		"message":   "success",
		"data":      products,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTemplateFiles 已生成的模板文件
// GET /api/publish/templates
func (ctrl *HistoryController) GetTemplateFiles(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 user_id"})
		return
	}

	files, err := ctrl.fileRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    files,
	})
}
