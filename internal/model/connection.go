package model

import "time"

// Token 状态
const (
	TokenStatusActive  = "active"
	TokenStatusInvalid = "invalid"
)

// 目标平台
const (
	PlatformEbay   = "ebay"
	PlatformAmazon = "amazon"
)

// MarketplaceConnection 卖家授权连接表
// 一条记录对应一个已连接的卖家账号，保存 OAuth Token 对
type MarketplaceConnection struct {
	BaseModel
	UserID   int64  `gorm:"index;not null"`
	Platform string `gorm:"size:20;index;not null"` // ebay / amazon

	// --- 卖家身份 ---
	SellerID    string `gorm:"size:100"`
	Environment string `gorm:"size:20;default:production"` // sandbox / production

	// --- Token 对 ---
	AccessToken    string    `gorm:"type:text"`
	RefreshToken   string    `gorm:"type:text"`
	TokenExpiresAt time.Time `gorm:"index"`
	TokenStatus    string    `gorm:"size:20;default:active;index"`
}

func (MarketplaceConnection) TableName() string {
	return "marketplace_connections"
}

// IsSandbox 是否沙箱环境
func (c *MarketplaceConnection) IsSandbox() bool {
	return c.Environment == "sandbox"
}

// TokenExpiringWithin Token 是否在给定时间内过期
func (c *MarketplaceConnection) TokenExpiringWithin(d time.Duration) bool {
	return time.Until(c.TokenExpiresAt) < d
}
