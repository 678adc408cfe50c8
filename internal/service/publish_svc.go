package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"listora_publisher_v1/internal/api/dto"
	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
	"listora_publisher_v1/pkg/ebay"
	xnet "listora_publisher_v1/pkg/net"
)

// ==================== 错误分类 ====================

// 错误种类，前端据此决定提示文案和重试策略
const (
	ErrKindValidation       = "validation"
	ErrKindAuthExpired      = "auth_expired"
	ErrKindTransport        = "transport"
	ErrKindPlatformRejected = "platform_rejected"
	ErrKindInternal         = "internal"
)

// ==================== 依赖接口 ====================

// SellerTokenProvider 卖家 Token 保障方（由 TokenService 实现）
type SellerTokenProvider interface {
	EnsureSellerToken(ctx context.Context, conn *model.MarketplaceConnection) (string, error)
}

// CategoryClassifier 类目判定方（由 CategoryService 实现）
type CategoryClassifier interface {
	Classify(ctx context.Context, query, text string, sandbox bool) *CategoryResult
}

// TradingAppCredentials 交易 API 应用级三元组
type TradingAppCredentials struct {
	DevName  string
	AppName  string
	CertName string
}

// ==================== 服务实现 ====================

// PublishService 发布编排
// 串起 内容读取 -> Token 保障 -> 清洗解析 -> 分类 -> 组装 -> 发送 -> 落库 全链路。
// 对外永远返回统一形状的 PublishResult，错误折叠进结果而不上抛
type PublishService struct {
	contentRepo repository.ContentRepository
	connRepo    repository.ConnectionRepository
	listingRepo repository.ListingRepository
	productRepo repository.PublishedProductRepository

	normalizer *NormalizerService
	builder    *BuilderService
	category   CategoryClassifier
	tokens     SellerTokenProvider
	events     *EventService

	dispatcher xnet.Dispatcher
	creds      TradingAppCredentials

	// 端点可覆盖，测试时指向 httptest 服务
	Endpoint        string
	SandboxEndpoint string
}

func NewPublishService(
	contentRepo repository.ContentRepository,
	connRepo repository.ConnectionRepository,
	listingRepo repository.ListingRepository,
	productRepo repository.PublishedProductRepository,
	normalizer *NormalizerService,
	builder *BuilderService,
	category CategoryClassifier,
	tokens SellerTokenProvider,
	events *EventService,
	creds TradingAppCredentials,
) *PublishService {
	return &PublishService{
		contentRepo:     contentRepo,
		connRepo:        connRepo,
		listingRepo:     listingRepo,
		productRepo:     productRepo,
		normalizer:      normalizer,
		builder:         builder,
		category:        category,
		tokens:          tokens,
		events:          events,
		dispatcher:      xnet.NewDispatcher(xnet.DefaultRetryPolicy()),
		creds:           creds,
		Endpoint:        ebay.EndpointProduction,
		SandboxEndpoint: ebay.EndpointSandbox,
	}
}

func (s *PublishService) endpoint(sandbox bool) string {
	if sandbox {
		return s.SandboxEndpoint
	}
	return s.Endpoint
}

// PublishToEbay 把一条生成内容发布到 eBay
func (s *PublishService) PublishToEbay(ctx context.Context, req *dto.PublishEbayRequest) *dto.PublishResult {
	// --- 1. 纯校验，任何 I/O 之前 ---
	price, err := strconv.ParseFloat(req.Options.Price, 64)
	if err != nil || price <= 0 {
		return failResult(ErrKindValidation, "价格无效，必须是大于 0 的数字")
	}

	// --- 2. 并发取内容和连接 ---
	var (
		wg      sync.WaitGroup
		content *model.ProductContent
		conn    *model.MarketplaceConnection
		cErr    error
		nErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		content, cErr = s.contentRepo.GetByID(ctx, req.ContentID)
	}()
	go func() {
		defer wg.Done()
		conn, nErr = s.connRepo.GetByID(ctx, req.ConnectionID)
	}()
	wg.Wait()

	if cErr != nil {
		return failResult(ErrKindValidation, fmt.Sprintf("内容记录不存在: %v", cErr))
	}
	if nErr != nil {
		return failResult(ErrKindValidation, fmt.Sprintf("连接记录不存在: %v", nErr))
	}
	if conn.Platform != model.PlatformEbay {
		return failResult(ErrKindValidation, "该连接不是 eBay 账号")
	}

	// --- 3. Token 保障 ---
	authToken, err := s.tokens.EnsureSellerToken(ctx, conn)
	if err != nil {
		log.Printf("[Publish] 连接 %d Token 保障失败: %v", conn.ID, err)
		return failResult(ErrKindAuthExpired, "账号授权已过期，请重新连接 eBay 账号")
	}

	// --- 4. 清洗 + 解析 + 分类 + 组装 ---
	parsed := s.normalizer.ParseSections(content.GeneratedContent, content.ProductName)
	// 提取原料覆盖 商品名+特性+描述+全文，线索只出现在单独字段里也要接住
	extraction := s.normalizer.Normalize(content.ExtractionText())

	query := parsed.Title
	if query == "" {
		query = content.ProductName
	}
	category := s.category.Classify(ctx, query, extraction, conn.IsSandbox())

	doc := s.builder.BuildEbayDocument(&BuildInput{
		ProductName:    content.ProductName,
		Parsed:         parsed,
		NormalizedText: extraction,
		Category:       category,
		Images:         req.Images,
		Price:          price,
		CurrencyCode:   req.Options.CurrencyCode,
		Quantity:       req.Options.Quantity,
		SKU:            req.Options.SKU,
		Condition:      req.Options.Condition,
		Sandbox:        conn.IsSandbox(),
	})

	// --- 5. 发送 ---
	xmlBody := []byte(ebay.BuildAddFixedPriceItemXML(doc, ebay.Credentials{
		AuthToken: authToken,
		DevName:   s.creds.DevName,
		AppName:   s.creds.AppName,
		CertName:  s.creds.CertName,
	}))
	headers := xnet.TradingHeaders{
		CompatLevel: ebay.CompatibilityLevel,
		DevName:     s.creds.DevName,
		AppName:     s.creds.AppName,
		CertName:    s.creds.CertName,
		CallName:    ebay.CallAddFixedPriceItem,
		SiteID:      ebay.SiteUS,
	}
	endpoint := s.endpoint(conn.IsSandbox())

	status, body, err := s.dispatcher.Send(ctx, func(attemptCtx context.Context) (*http.Request, error) {
		return xnet.BuildTradingRequest(attemptCtx, endpoint, xmlBody, headers)
	})
	if err != nil {
		log.Printf("[Publish] 交易 API 传输失败: %v", err)
		return failResult(ErrKindTransport, "网络异常，发布未完成，请稍后重试")
	}
	if status != http.StatusOK {
		log.Printf("[Publish] 交易 API 返回非 200 (Status %d): %s", status, truncate(string(body), 500))
		return failResult(ErrKindTransport, fmt.Sprintf("平台服务异常 (HTTP %d)，请稍后重试", status))
	}

	// --- 6. 应答判定 ---
	result := ebay.ParseAddItemResponse(string(body))
	for _, apiErr := range result.Errors {
		if apiErr.Severity == "Warning" {
			log.Printf("[Publish] eBay 警告 (Code %s): %s", apiErr.Code, apiErr.ShortMessage)
		}
	}

	if !result.IsSuccess() {
		reason := "发布被 eBay 拒绝"
		if first := result.FirstError(); first != nil {
			log.Printf("[Publish] eBay 拒绝 (Code %s): %s", first.Code, first.ShortMessage)
			reason = fmt.Sprintf("发布被 eBay 拒绝: %s", first.ShortMessage)
		}
		s.persistListing(ctx, req, conn, doc, category, "", string(body), model.ListingStatusFailed, price)
		s.emit(ctx, req.UserID, EventListingFailed, "", false)
		return failResult(ErrKindPlatformRejected, reason)
	}

	itemID := result.ItemID
	if itemID == "" {
		// Ack 成立但应答缺 ItemID（沙箱偶发），给占位 ID 保住审计链
		itemID = "PENDING-" + uuid.NewString()[:8]
		log.Printf("[Publish] 应答缺 ItemID，使用占位 %s", itemID)
	}

	// --- 7. 落库（彼此独立，失败只记日志，不影响已成立的发布） ---
	s.persistListing(ctx, req, conn, doc, category, itemID, string(body), model.ListingStatusActive, price)
	s.emit(ctx, req.UserID, EventListingPublished, itemID, true)

	return &dto.PublishResult{
		Success:           true,
		Platform:          model.PlatformEbay,
		PlatformProductID: itemID,
		PlatformURL:       ebay.ListingURL(itemID, conn.IsSandbox()),
		CategoryID:        category.CategoryID,
		CategoryName:      category.CategoryName,
		CategorySource:    category.Source,
	}
}

// persistListing 发布记录与统一投影各自落库
func (s *PublishService) persistListing(
	ctx context.Context,
	req *dto.PublishEbayRequest,
	conn *model.MarketplaceConnection,
	doc *ebay.ListingDocument,
	category *CategoryResult,
	itemID, rawBody, status string,
	price float64,
) {
	raw, _ := json.Marshal(map[string]string{"body": truncate(rawBody, 4000)})

	listing := &model.EbayListing{
		UserID:         req.UserID,
		ConnectionID:   conn.ID,
		ContentID:      req.ContentID,
		ItemID:         itemID,
		ListingURL:     ebay.ListingURL(itemID, conn.IsSandbox()),
		Title:          doc.Title,
		SKU:            doc.SKU,
		PriceAmount:    int64(price*100 + 0.5),
		CurrencyCode:   doc.CurrencyCode,
		Quantity:       doc.Quantity,
		Images:         doc.Images,
		CategoryID:     category.CategoryID,
		CategoryName:   category.CategoryName,
		CategorySource: category.Source,
		Status:         status,
		RawResponse:    datatypes.JSON(raw),
	}
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		log.Printf("[Publish] 发布记录入库失败: %v", err)
	}

	if status != model.ListingStatusActive {
		return
	}

	product := &model.PublishedProduct{
		UserID:            req.UserID,
		Platform:          model.PlatformEbay,
		PlatformProductID: itemID,
		Title:             doc.Title,
		SKU:               doc.SKU,
		PriceAmount:       int64(price*100 + 0.5),
		CurrencyCode:      doc.CurrencyCode,
		Quantity:          doc.Quantity,
		Images:            doc.Images,
		Status:            model.ListingStatusActive,
		PublishedAt:       time.Now(),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		log.Printf("[Publish] 投影记录入库失败: %v", err)
	}
}

func (s *PublishService) emit(ctx context.Context, userID int64, eventType, productID string, success bool) {
	s.events.Emit(ctx, PublishEvent{
		Type:      eventType,
		UserID:    userID,
		Platform:  model.PlatformEbay,
		ProductID: productID,
		Success:   success,
	})
}

// ==================== 辅助 ====================

func failResult(kind, msg string) *dto.PublishResult {
	return &dto.PublishResult{
		Success:   false,
		Platform:  model.PlatformEbay,
		Error:     msg,
		ErrorKind: kind,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
