package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 请求构造辅助 ====================

func setupConnCtlTest(t *testing.T) (*gin.Engine, repository.ConnectionRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.MarketplaceConnection{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	repo := repository.NewConnectionRepository(db)
	ctl := NewConnectionController(repo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/api/connections", ctl.GetConnections)
	r.POST("/api/connections", ctl.CreateConnection)

	return r, repo
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 列表 ====================

func TestGetConnections_TokensNotExposed(t *testing.T) {
	r, repo := setupConnCtlTest(t)

	repo.Create(context.Background(), &model.MarketplaceConnection{
		UserID:         7,
		Platform:       model.PlatformEbay,
		SellerID:       "seller-7",
		Environment:    "production",
		AccessToken:    "secret-access",
		RefreshToken:   "secret-refresh",
		TokenExpiresAt: time.Now().Add(time.Hour),
		TokenStatus:    model.TokenStatusActive,
	})

	w := performRequest(r, "GET", "/api/connections?user_id=7", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Token 本体不出网关
	body := w.Body.String()
	assert.NotContains(t, body, "secret-access")
	assert.NotContains(t, body, "secret-refresh")

	var resp struct {
		Code int `json:"code"`
		Data []struct {
			Platform    string `json:"platform"`
			SellerID    string `json:"sellerId"`
			TokenStatus string `json:"tokenStatus"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, model.PlatformEbay, resp.Data[0].Platform)
	assert.Equal(t, model.TokenStatusActive, resp.Data[0].TokenStatus)
}

func TestGetConnections_InvalidUserID(t *testing.T) {
	r, _ := setupConnCtlTest(t)

	tests := []struct {
		name string
		path string
	}{
		{"缺少 user_id", "/api/connections"},
		{"非数字", "/api/connections?user_id=abc"},
		{"非正数", "/api/connections?user_id=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, "GET", tt.path, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

// ==================== 创建 ====================

func TestCreateConnection(t *testing.T) {
	r, repo := setupConnCtlTest(t)

	w := performRequest(r, "POST", "/api/connections", map[string]interface{}{
		"user_id":       7,
		"platform":      "ebay",
		"seller_id":     "seller-7",
		"environment":   "sandbox",
		"access_token":  "tok",
		"refresh_token": "ref",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	conns, err := repo.ListByUser(context.Background(), 7)
	assert.NoError(t, err)
	assert.Len(t, conns, 1)
	assert.True(t, conns[0].IsSandbox())
	assert.Equal(t, model.TokenStatusActive, conns[0].TokenStatus)
}

func TestCreateConnection_InvalidParams(t *testing.T) {
	r, _ := setupConnCtlTest(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{
			name: "空请求体",
			body: nil,
		},
		{
			name: "缺少 access_token",
			body: map[string]interface{}{"user_id": 7, "platform": "ebay"},
		},
		{
			name: "不支持的平台",
			body: map[string]interface{}{"user_id": 7, "platform": "etsy", "access_token": "tok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, "POST", "/api/connections", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
