package dto

// ==================== 请求 ====================

// PublishOptions 发布参数，价格用字符串透传，服务端统一校验
type PublishOptions struct {
	Price        string `json:"price" binding:"required"`
	Quantity     int    `json:"quantity"`
	SKU          string `json:"sku"`
	Condition    string `json:"condition"`
	CurrencyCode string `json:"currency_code"`
}

// PublishEbayRequest eBay 发布请求
type PublishEbayRequest struct {
	UserID       int64          `json:"user_id" binding:"required"`
	ContentID    int64          `json:"content_id" binding:"required"`
	ConnectionID int64          `json:"connection_id" binding:"required"`
	Images       []string       `json:"images"`
	Options      PublishOptions `json:"options" binding:"required"`
}

// AmazonTemplateRequest Amazon 模板文件生成请求
type AmazonTemplateRequest struct {
	UserID    int64          `json:"user_id" binding:"required"`
	ContentID int64          `json:"content_id" binding:"required"`
	Images    []string       `json:"images"`
	Options   PublishOptions `json:"options" binding:"required"`
}

// ==================== 应答 ====================

// PublishResult 统一发布结果，成功失败都用这一个形状
type PublishResult struct {
	Success           bool   `json:"success"`
	Platform          string `json:"platform"`
	PlatformProductID string `json:"platformProductId,omitempty"`
	PlatformURL       string `json:"platformUrl,omitempty"`
	CategoryID        string `json:"categoryId,omitempty"`
	CategoryName      string `json:"categoryName,omitempty"`
	CategorySource    string `json:"categorySource,omitempty"`
	Error             string `json:"error,omitempty"`
	ErrorKind         string `json:"errorKind,omitempty"`
}

// AmazonTemplateResult 模板生成结果
type AmazonTemplateResult struct {
	Success     bool   `json:"success"`
	FileName    string `json:"fileName,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	RowCount    int    `json:"rowCount"`
	Error       string `json:"error,omitempty"`
}

// ConnectionView 连接列表项，不回传 Token 本体
type ConnectionView struct {
	ID             int64  `json:"id"`
	Platform       string `json:"platform"`
	SellerID       string `json:"sellerId"`
	Environment    string `json:"environment"`
	TokenStatus    string `json:"tokenStatus"`
	TokenExpiresAt string `json:"tokenExpiresAt"`
}
