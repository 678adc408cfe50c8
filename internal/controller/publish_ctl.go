package controller

import (
	"github.com/gin-gonic/gin"

	"listora_publisher_v1/internal/api/dto"
	"listora_publisher_v1/internal/service"
)

type PublishController struct {
	publishService  *service.PublishService
	templateService *service.AmazonTemplateService
}

func NewPublishController(publishService *service.PublishService, templateService *service.AmazonTemplateService) *PublishController {
	return &PublishController{
		publishService:  publishService,
		templateService: templateService,
	}
}

// ==================== 发布接口 ====================

// PublishEbay 发布到 eBay
// POST /api/publish/ebay
func (ctrl *PublishController) PublishEbay(c *gin.Context) {
	var req dto.PublishEbayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求参数无效: " + err.Error()})
		return
	}

	result := ctrl.publishService.PublishToEbay(c.Request.Context(), &req)

	// 业务失败也回 200，错误折叠在 result 里，前端统一处理
	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}

// GenerateAmazonTemplate 生成 Amazon 模板文件
// POST /api/publish/amazon/template
func (ctrl *PublishController) GenerateAmazonTemplate(c *gin.Context) {
	var req dto.AmazonTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求参数无效: " + err.Error()})
		return
	}

	result := ctrl.templateService.GenerateTemplate(c.Request.Context(), &req)

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    result,
	})
}
