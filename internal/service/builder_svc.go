package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"listora_publisher_v1/pkg/ebay"
)

// ==================== 业务常量 ====================

const (
	// eBay 标题硬上限
	EbayTitleMaxLen = 80
	// 标题短于该值时补质量词，避免裸词标题被搜索降权
	ebayTitleMinLen = 20

	// 移动端描述预算：整段（含标签）不超过 800 字符
	mobileDescBudget = 800
	// 卖点清单的贪心填充上限，给收尾标签留余量
	mobileBulletBudget = 750

	// 图片数量上限
	MaxListingImages = 12

	// 桌面段去重用的前缀长度
	dedupePrefixLen = 30
)

// titleQualifier 短标题的补位质量词
const titleQualifier = "- Premium Quality"

// ==================== 输入 ====================

// BuildInput 组装 Listing 的全部输入
type BuildInput struct {
	ProductName    string
	Parsed         *ParsedContent
	NormalizedText string // 清洗后的全文，属性提取用

	Category *CategoryResult

	Images       []string
	Price        float64
	CurrencyCode string
	Quantity     int
	SKU          string
	Condition    string // ebay.ConditionNew 等抽象成色
	Sandbox      bool
}

// ==================== 服务实现 ====================

// BuilderService 把解析内容 + 分类结果组装成可发布的 ListingDocument
// 纯计算，不做任何 I/O
type BuilderService struct {
	attrs *AttributeService
}

func NewBuilderService(attrs *AttributeService) *BuilderService {
	return &BuilderService{attrs: attrs}
}

// BuildEbayDocument 组装 eBay 发布文档
func (s *BuilderService) BuildEbayDocument(in *BuildInput) *ebay.ListingDocument {
	title := s.buildTitle(in)
	desc := s.buildDescription(in)

	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		sku = "LST-" + uuid.NewString()[:8]
	}

	images := in.Images
	if len(images) > MaxListingImages {
		images = images[:MaxListingImages]
	}

	currency := in.CurrencyCode
	if currency == "" {
		currency = "USD"
	}
	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return &ebay.ListingDocument{
		Title:           title,
		DescriptionHTML: desc,
		Price:           in.Price,
		CurrencyCode:    currency,
		Quantity:        quantity,
		SKU:             sku,
		Images:          images,
		CategoryID:      in.Category.CategoryID,
		ConditionID:     ebay.ConditionCode(in.Condition, in.Category.Family, in.Sandbox),
		ItemSpecifics:   s.buildSpecifics(in),
		DispatchDays:    3,
		ReturnsAccepted: true,
	}
}

// ==================== 标题 ====================

// buildTitle 标题规则：生成标题优先，缺了用商品名；
// 去掉重复词（不区分大小写，保序留首现）；超 80 按词截断；
// 短于 20 补质量词
func (s *BuilderService) buildTitle(in *BuildInput) string {
	title := ""
	if in.Parsed != nil {
		title = strings.TrimSpace(in.Parsed.Title)
	}
	if title == "" {
		title = strings.TrimSpace(in.ProductName)
	}

	title = dedupeWords(title)

	if len(title) > EbayTitleMaxLen {
		title = truncateAtWord(title, EbayTitleMaxLen)
	}

	if len(title) < ebayTitleMinLen {
		padded := title + " " + titleQualifier
		if len(padded) <= EbayTitleMaxLen {
			title = padded
		}
	}

	return title
}

// dedupeWords 去重复词，保序留首现
func dedupeWords(s string) string {
	words := strings.Fields(s)
	seen := make(map[string]bool, len(words))
	kept := words[:0]
	for _, w := range words {
		key := strings.ToLower(strings.Trim(w, ",.!-"))
		if key != "" && seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// truncateAtWord 按词边界截断到上限（字节）
func truncateAtWord(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	// 商品名不走转写，多字节字符可能正好跨在上限字节上，回退到符文边界
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	cut := s[:limit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.-")
}

// ==================== 描述 ====================

// buildDescription 移动端优先的描述
// 上半段（亮点 + 卖点清单）控制在 800 字符内，eBay App 只渲染这一段；
// 下半段桌面详情不限预算，但跳过与卖点前缀重复的句子
func (s *BuilderService) buildDescription(in *BuildInput) string {
	var b strings.Builder

	parsed := in.Parsed
	if parsed == nil {
		parsed = &ParsedContent{}
	}

	// --- 移动段：卖点清单优先贪心填充，亮点句有余量才跟上 ---
	var mobile strings.Builder
	mobile.WriteString("<div>")

	usedPrefixes := make(map[string]bool)
	if len(parsed.BulletPoints) > 0 {
		var items []string
		budget := mobileBulletBudget - mobile.Len() - len("<ul></ul>")
		used := 0
		for _, bp := range parsed.BulletPoints {
			bp = strings.TrimSpace(bp)
			if bp == "" {
				continue
			}
			item := "<li>" + ebay.EscapeXML(bp) + "</li>"
			if used+len(item) > budget {
				break // 贪心填充：装不下就停
			}
			items = append(items, item)
			used += len(item)
			usedPrefixes[textPrefix(bp)] = true
		}
		if len(items) > 0 {
			mobile.WriteString("<ul>" + strings.Join(items, "") + "</ul>")
		}
	}

	highlight := strings.TrimSpace(parsed.Highlight)
	if highlight != "" {
		candidate := "<p>" + ebay.EscapeXML(highlight) + "</p>"
		if mobile.Len()+len(candidate) <= mobileBulletBudget {
			mobile.WriteString(candidate)
			// 只有真进了移动段才参与桌面段去重
			usedPrefixes[textPrefix(highlight)] = true
		}
	}
	mobile.WriteString("</div>")

	mobileHTML := mobile.String()
	if len(mobileHTML) > mobileDescBudget {
		// 理论到不了这里，预算在填充时已经控制；保险截断
		mobileHTML = mobileHTML[:mobileDescBudget]
	}
	b.WriteString(mobileHTML)

	// --- 桌面段 ---
	var details []string
	for _, f := range parsed.DetailedFeatures {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if usedPrefixes[textPrefix(f)] {
			continue // 与上半段开头相同的句子不再重复
		}
		details = append(details, f)
	}

	if len(details) > 0 || len(parsed.Specifications) > 0 {
		b.WriteString("<div><h3>Product Details</h3>")
		for _, d := range details {
			b.WriteString("<p>" + ebay.EscapeXML(d) + "</p>")
		}
		if len(parsed.Specifications) > 0 {
			b.WriteString("<ul>")
			for _, spec := range parsed.Specifications {
				b.WriteString("<li>" + ebay.EscapeXML(spec) + "</li>")
			}
			b.WriteString("</ul>")
		}
		b.WriteString("</div>")
	}

	return b.String()
}

// textPrefix 取去空格小写前缀作为去重键
func textPrefix(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if len(s) > dedupePrefixLen {
		s = s[:dedupePrefixLen]
	}
	return s
}

// ==================== Item Specifics ====================

// buildSpecifics taxonomy 命中走必填 aspect 填充，兜底类目走固定集
// 两条路都保证 Brand / Color 在场
func (s *BuilderService) buildSpecifics(in *BuildInput) []ebay.ItemSpecific {
	text := in.NormalizedText
	title := in.ProductName

	if len(in.Category.RequiredAspects) > 0 {
		return s.attrs.FillAspects(in.Category.RequiredAspects, text, title)
	}
	return s.attrs.FallbackSpecifics(in.Category.Family, text, title)
}
