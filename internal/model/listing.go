package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// 分类来源
const (
	CategorySourceTaxonomy    = "taxonomy_api"
	CategorySourceVerified    = "verified_fallback"
	CategorySourceBulletproof = "bulletproof_fallback"
)

// Listing 状态
const (
	ListingStatusActive = "active"
	ListingStatusFailed = "failed"
)

// EbayListing 交易 API 发布记录
type EbayListing struct {
	BaseModel
	UserID       int64 `gorm:"index;not null"`
	ConnectionID int64 `gorm:"index;not null"`
	ContentID    int64 `gorm:"index"`

	// --- eBay 侧身份 ---
	ItemID     string `gorm:"size:50;index"` // eBay ItemID，可能是 PENDING- 占位
	ListingURL string `gorm:"size:512"`

	// --- 商品快照 ---
	Title        string `gorm:"size:255"`
	SKU          string `gorm:"size:100;index"`
	PriceAmount  int64  `gorm:"default:0"` // 分为单位
	CurrencyCode string `gorm:"size:5;default:USD"`
	Quantity     int    `gorm:"default:0"`
	Images       pq.StringArray `gorm:"type:text[]"`

	// --- 分类结果 ---
	CategoryID     string `gorm:"size:20;index"`
	CategoryName   string `gorm:"size:255"`
	CategorySource string `gorm:"size:30"`

	// --- 审计 ---
	Status      string         `gorm:"size:20;index"`
	RawResponse datatypes.JSON `gorm:"type:jsonb"` // 平台原始应答，排查用
}

func (EbayListing) TableName() string {
	return "ebay_listings"
}

// PublishedProduct 跨平台统一投影，供报表查询
type PublishedProduct struct {
	BaseModel
	UserID   int64  `gorm:"index;not null"`
	Platform string `gorm:"size:20;index;not null"`

	PlatformProductID string `gorm:"size:100;index"`
	Title             string `gorm:"size:255"`
	SKU               string `gorm:"size:100;index"`
	PriceAmount       int64  `gorm:"default:0"`
	CurrencyCode      string `gorm:"size:5;default:USD"`
	Quantity          int    `gorm:"default:0"`
	Images            pq.StringArray `gorm:"type:text[]"`

	Status      string    `gorm:"size:20;index"`
	PublishedAt time.Time `gorm:"index"`
}

func (PublishedProduct) TableName() string {
	return "published_products"
}

// AmazonTemplateFile 模板流水产出的文件记录
// 模板流不走网络发布，产出可下载的 TSV 文件
type AmazonTemplateFile struct {
	BaseModel
	UserID    int64 `gorm:"index;not null"`
	ContentID int64 `gorm:"index"`

	SKU         string `gorm:"size:100"`
	FileName    string `gorm:"size:255"`
	DownloadURL string `gorm:"size:512"`
	RowCount    int    `gorm:"default:0"`
	Status      string `gorm:"size:20;default:generated"`
}

func (AmazonTemplateFile) TableName() string {
	return "amazon_template_files"
}
