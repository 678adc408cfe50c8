package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"

	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
)

// ==================== 业务常量 ====================

const (
	// TokenRefreshWindow 提前刷新窗口：距过期不足 1 小时就换新
	TokenRefreshWindow = time.Hour

	// 应用级 Token 的固定权限，taxonomy 查询只需要基础 scope
	appTokenScope = "https://api.ebay.com/oauth/api_scope"

	// 卖家级 Token 刷新所需权限
	sellerTokenScope = "https://api.ebay.com/oauth/api_scope/sell.inventory"

	oauthTokenPathProd    = "https://api.ebay.com/identity/v1/oauth2/token"
	oauthTokenPathSandbox = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"
)

// AppCredentials 应用级 OAuth 凭证（Client ID / Secret）
type AppCredentials struct {
	ClientID     string
	ClientSecret string
}

// ==================== 服务实现 ====================

// TokenService 双轨 Token 管理
// 卖家级 Token（refresh_token 授权）挂在连接记录上，按需刷新后落库；
// 应用级 Token（client_credentials 授权）每次现取，不做缓存：
// taxonomy 查询频率低，缓存省不了几个请求，却要多管一份过期状态
type TokenService struct {
	connRepo repository.ConnectionRepository
	creds    AppCredentials
	client   *resty.Client

	// TokenURL 可覆盖，测试时指向 httptest 服务
	TokenURL        string
	SandboxTokenURL string
}

func NewTokenService(connRepo repository.ConnectionRepository, creds AppCredentials) *TokenService {
	return &TokenService{
		connRepo:        connRepo,
		creds:           creds,
		client:          resty.New().SetTimeout(15 * time.Second),
		TokenURL:        oauthTokenPathProd,
		SandboxTokenURL: oauthTokenPathSandbox,
	}
}

// 辅助结构体：OAuth Token 响应
type oauthTokenResp struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

func (s *TokenService) tokenURL(sandbox bool) string {
	if sandbox {
		return s.SandboxTokenURL
	}
	return s.TokenURL
}

// basicAuth client_id:client_secret 的 Base64，OAuth 端点要求的认证方式
func (s *TokenService) basicAuth() string {
	raw := s.creds.ClientID + ":" + s.creds.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}

// EnsureSellerToken 保证连接上的卖家 Token 可用，返回可直接使用的 AccessToken
// 距过期超过 1 小时直接用现有 Token；不足 1 小时且有 RefreshToken 就先刷新。
// 刷新被拒时标记连接失效并向上传播，让调用方把授权过期如实告诉用户
func (s *TokenService) EnsureSellerToken(ctx context.Context, conn *model.MarketplaceConnection) (string, error) {
	if conn.AccessToken == "" {
		return "", fmt.Errorf("连接 %d 没有 AccessToken，请先完成授权", conn.ID)
	}

	if !conn.TokenExpiringWithin(TokenRefreshWindow) {
		return conn.AccessToken, nil
	}

	if conn.RefreshToken == "" {
		// 没有续命手段，只能带着临期 Token 硬发
		log.Printf("[Token] 连接 %d Token 即将过期且无 RefreshToken，直接使用现有 Token", conn.ID)
		return conn.AccessToken, nil
	}

	log.Printf("[Token] 连接 %d Token 距过期不足 %v，执行刷新", conn.ID, TokenRefreshWindow)

	var tokenResp oauthTokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Authorization", s.basicAuth()).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": conn.RefreshToken,
			"scope":         sellerTokenScope,
		}).
		SetResult(&tokenResp).
		Post(s.tokenURL(conn.IsSandbox()))

	// 网络层错误：不动 Token 状态，等下一次重试
	if err != nil {
		return "", fmt.Errorf("刷新 Token 网络请求失败: %v", err)
	}

	// 业务层拒绝：RefreshToken 已脏，标记失效并上抛
	if resp.StatusCode() != 200 || tokenResp.Error != "" {
		if markErr := s.connRepo.UpdateTokenStatus(ctx, conn.ID, model.TokenStatusInvalid); markErr != nil {
			log.Printf("[Token] 连接 %d 标记失效入库出错: %v", conn.ID, markErr)
		}
		return "", fmt.Errorf("授权已过期，请重新连接账号 (Status %d): %s %s",
			resp.StatusCode(), tokenResp.Error, tokenResp.ErrorDesc)
	}

	// 刷新成功，落库新 Token 对
	// eBay 刷新应答不回传新 RefreshToken，沿用旧的
	newRefresh := tokenResp.RefreshToken
	if newRefresh == "" {
		newRefresh = conn.RefreshToken
	}
	expiresAt := time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)

	if err := s.connRepo.SaveTokens(ctx, conn.ID, tokenResp.AccessToken, newRefresh, expiresAt); err != nil {
		return "", fmt.Errorf("新 Token 入库失败: %v", err)
	}

	conn.AccessToken = tokenResp.AccessToken
	conn.RefreshToken = newRefresh
	conn.TokenExpiresAt = expiresAt
	conn.TokenStatus = model.TokenStatusActive

	log.Printf("[Token] 连接 %d 刷新成功，新 Token 有效期至 %s", conn.ID, expiresAt.Format(time.RFC3339))
	return tokenResp.AccessToken, nil
}

// FetchAppToken 现取一个应用级 Token（client_credentials）
func (s *TokenService) FetchAppToken(ctx context.Context, sandbox bool) (string, error) {
	var tokenResp oauthTokenResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Authorization", s.basicAuth()).
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      appTokenScope,
		}).
		SetResult(&tokenResp).
		Post(s.tokenURL(sandbox))

	if err != nil {
		return "", fmt.Errorf("获取应用级 Token 网络请求失败: %v", err)
	}
	if resp.StatusCode() != 200 || tokenResp.Error != "" {
		return "", fmt.Errorf("获取应用级 Token 被拒 (Status %d): %s %s",
			resp.StatusCode(), tokenResp.Error, tokenResp.ErrorDesc)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("应答异常，未返回 AccessToken: %s", resp.String())
	}

	return tokenResp.AccessToken, nil
}
