package controller

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"listora_publisher_v1/internal/api/dto"
	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
)

type ConnectionController struct {
	connRepo repository.ConnectionRepository
}

func NewConnectionController(connRepo repository.ConnectionRepository) *ConnectionController {
	return &ConnectionController{connRepo: connRepo}
}

// GetConnections 连接列表，Token 本体不出网关
// GET /api/connections
func (ctrl *ConnectionController) GetConnections(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 user_id"})
		return
	}

	conns, err := ctrl.connRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	views := make([]dto.ConnectionView, 0, len(conns))
	for _, conn := range conns {
		views = append(views, dto.ConnectionView{
			ID:             conn.ID,
			Platform:       conn.Platform,
			SellerID:       conn.SellerID,
			Environment:    conn.Environment,
			TokenStatus:    conn.TokenStatus,
			TokenExpiresAt: conn.TokenExpiresAt.Format(time.RFC3339),
		})
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    views,
	})
}

// CreateConnection 录入一个已授权的卖家连接
// POST /api/connections
func (ctrl *ConnectionController) CreateConnection(c *gin.Context) {
	var req struct {
		UserID         int64  `json:"user_id" binding:"required"`
		Platform       string `json:"platform" binding:"required"`
		SellerID       string `json:"seller_id"`
		Environment    string `json:"environment"`
		AccessToken    string `json:"access_token" binding:"required"`
		RefreshToken   string `json:"refresh_token"`
		TokenExpiresAt string `json:"token_expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "请求参数无效: " + err.Error()})
		return
	}
	if req.Platform != model.PlatformEbay && req.Platform != model.PlatformAmazon {
		c.JSON(400, gin.H{"code": 400, "message": "不支持的平台: " + req.Platform})
		return
	}

	expiresAt := time.Now().Add(2 * time.Hour)
	if req.TokenExpiresAt != "" {
		if t, err := time.Parse(time.RFC3339, req.TokenExpiresAt); err == nil {
			expiresAt = t
		}
	}
	env := req.Environment
	if env == "" {
		env = "production"
	}

	conn := &model.MarketplaceConnection{
		UserID:         req.UserID,
		Platform:       req.Platform,
		SellerID:       req.SellerID,
		Environment:    env,
		AccessToken:    req.AccessToken,
		RefreshToken:   req.RefreshToken,
		TokenExpiresAt: expiresAt,
		TokenStatus:    model.TokenStatusActive,
	}
	if err := ctrl.connRepo.Create(c.Request.Context(), conn); err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "入库失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"id": conn.ID},
	})
}
