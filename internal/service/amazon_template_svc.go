package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"listora_publisher_v1/internal/api/dto"
	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
)

// ==================== 业务常量 ====================

const (
	// Amazon 商品名上限
	AmazonTitleMaxLen = 200
	// 短于该值补质量词，与 eBay 标题同一策略
	amazonTitleMinLen = 20

	amazonBulletCount     = 5
	amazonOtherImageCount = 8
)

// templateColumns 平铺模板的列头，顺序即输出顺序
// 改动这里必须同步改 buildRow，两边列数要严格一致
var templateColumns = []string{
	"sku",
	"product-name",
	"brand",
	"manufacturer",
	"part-number",
	"description",
	"bullet_point1",
	"bullet_point2",
	"bullet_point3",
	"bullet_point4",
	"bullet_point5",
	"price",
	"quantity",
	"main-image-url",
	"other-image-url1",
	"other-image-url2",
	"other-image-url3",
	"other-image-url4",
	"other-image-url5",
	"other-image-url6",
	"other-image-url7",
	"other-image-url8",
	"color",
	"size",
	"condition-type",
}

// 抽象成色 -> Amazon condition-type 取值
var amazonConditionMap = map[string]string{
	"new":             "New",
	"used_like_new":   "UsedLikeNew",
	"used_very_good":  "UsedVeryGood",
	"used_good":       "UsedGood",
	"used_acceptable": "UsedAcceptable",
}

// ==================== 服务实现 ====================

// AmazonTemplateService 生成 Amazon 批量上架的平铺 TSV 模板
// 不走网络发布：产出文件，卖家自行上传到 Seller Central
type AmazonTemplateService struct {
	contentRepo repository.ContentRepository
	fileRepo    repository.TemplateFileRepository

	normalizer *NormalizerService
	attrs      *AttributeService
	storage    StorageProvider // 可为 nil，nil 时不持久化文件本体
	events     *EventService
}

func NewAmazonTemplateService(
	contentRepo repository.ContentRepository,
	fileRepo repository.TemplateFileRepository,
	normalizer *NormalizerService,
	attrs *AttributeService,
	storage StorageProvider,
	events *EventService,
) *AmazonTemplateService {
	return &AmazonTemplateService{
		contentRepo: contentRepo,
		fileRepo:    fileRepo,
		normalizer:  normalizer,
		attrs:       attrs,
		storage:     storage,
		events:      events,
	}
}

// GenerateTemplate 为一条生成内容产出模板文件
func (s *AmazonTemplateService) GenerateTemplate(ctx context.Context, req *dto.AmazonTemplateRequest) *dto.AmazonTemplateResult {
	price, err := strconv.ParseFloat(req.Options.Price, 64)
	if err != nil || price <= 0 {
		return &dto.AmazonTemplateResult{Success: false, Error: "价格无效，必须是大于 0 的数字"}
	}

	content, err := s.contentRepo.GetByID(ctx, req.ContentID)
	if err != nil {
		return &dto.AmazonTemplateResult{Success: false, Error: fmt.Sprintf("内容记录不存在: %v", err)}
	}

	parsed := s.normalizer.ParseSections(content.GeneratedContent, content.ProductName)
	// 与 eBay 链路同一套提取原料：商品名+特性+描述+全文
	extraction := s.normalizer.Normalize(content.ExtractionText())

	sku := strings.TrimSpace(req.Options.SKU)
	if sku == "" {
		sku = "AMZ-" + uuid.NewString()[:8]
	}

	tsv := s.BuildTSV(parsed, extraction, content.ProductName, sku, price, req)

	fileName := fmt.Sprintf("amazon_template_%s_%s.txt", sku, time.Now().Format("20060102"))

	downloadURL := ""
	if s.storage != nil {
		url, upErr := s.storage.Upload(ctx, []byte(tsv), fileName, "text/tab-separated-values")
		if upErr != nil {
			// 文件本体存不上不挡流程，内容原样返回给调用方
			log.Printf("[Template] 模板文件上传失败: %v", upErr)
		} else {
			downloadURL = url
		}
	}

	record := &model.AmazonTemplateFile{
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		SKU:         sku,
		FileName:    fileName,
		DownloadURL: downloadURL,
		RowCount:    1,
		Status:      "generated",
	}
	if err := s.fileRepo.Create(ctx, record); err != nil {
		log.Printf("[Template] 模板记录入库失败: %v", err)
	}

	s.events.Emit(ctx, PublishEvent{
		Type:      EventTemplateCreated,
		UserID:    req.UserID,
		Platform:  model.PlatformAmazon,
		ProductID: sku,
		Success:   true,
	})

	return &dto.AmazonTemplateResult{
		Success:     true,
		FileName:    fileName,
		DownloadURL: downloadURL,
		RowCount:    1,
	}
}

// BuildTSV 产出 表头行 + 数据行，两行列数严格一致
func (s *AmazonTemplateService) BuildTSV(parsed *ParsedContent, text, productName, sku string, price float64, req *dto.AmazonTemplateRequest) string {
	row := s.buildRow(parsed, text, productName, sku, price, req)

	var b strings.Builder
	b.WriteString(strings.Join(templateColumns, "\t"))
	b.WriteString("\n")
	b.WriteString(strings.Join(row, "\t"))
	b.WriteString("\n")
	return b.String()
}

func (s *AmazonTemplateService) buildRow(parsed *ParsedContent, text, productName, sku string, price float64, req *dto.AmazonTemplateRequest) []string {
	title := amazonTitle(parsed, productName)
	brand := s.attrs.Brand(text, productName)

	description := strings.TrimSpace(parsed.Highlight)
	if len(parsed.DetailedFeatures) > 0 {
		description = strings.TrimSpace(description + " " + strings.Join(parsed.DetailedFeatures, " "))
	}
	if description == "" {
		description = title
	}

	// 卖点固定 5 列，不够留空
	bullets := make([]string, amazonBulletCount)
	for i := 0; i < amazonBulletCount && i < len(parsed.BulletPoints); i++ {
		bullets[i] = parsed.BulletPoints[i]
	}

	// 图片：第一张主图，其余最多 8 张副图
	mainImage := ""
	others := make([]string, amazonOtherImageCount)
	if len(req.Images) > 0 {
		mainImage = req.Images[0]
		for i := 0; i < amazonOtherImageCount && i+1 < len(req.Images); i++ {
			others[i] = req.Images[i+1]
		}
	}

	quantity := req.Options.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	condition, ok := amazonConditionMap[req.Options.Condition]
	if !ok {
		condition = "New"
	}

	row := []string{
		sku,
		title,
		brand,
		brand, // 没有独立制造商数据时沿用品牌
		sku,
		description,
	}
	row = append(row, bullets...)
	row = append(row,
		fmt.Sprintf("%.2f", price),
		strconv.Itoa(quantity),
		mainImage,
	)
	row = append(row, others...)
	row = append(row,
		s.attrs.Color(text),
		s.attrs.Size(text),
		condition,
	)

	for i := range row {
		row[i] = cleanCell(row[i])
	}
	return row
}

// amazonTitle 标题：生成标题优先，去重复词，200 截断，过短补质量词
func amazonTitle(parsed *ParsedContent, productName string) string {
	title := ""
	if parsed != nil {
		title = strings.TrimSpace(parsed.Title)
	}
	if title == "" {
		title = strings.TrimSpace(productName)
	}
	title = dedupeWords(title)
	if len(title) > AmazonTitleMaxLen {
		title = truncateAtWord(title, AmazonTitleMaxLen)
	}
	if len(title) < amazonTitleMinLen {
		title = title + " " + titleQualifier
	}
	return title
}

// cleanCell 单元格清洗：TSV 里不能出现制表符和换行
func cleanCell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.Join(strings.Fields(s), " ")
}
