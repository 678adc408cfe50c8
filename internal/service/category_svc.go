package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/pkg/ebay"
)

// ==================== 业务常量 ====================

const (
	taxonomyBaseProd    = "https://api.ebay.com/commerce/taxonomy/v1"
	taxonomyBaseSandbox = "https://api.sandbox.ebay.com/commerce/taxonomy/v1"

	// 美国站类目树 ID
	categoryTreeUS = "0"

	// taxonomy 查询串上限，超长会被 API 拒
	maxTaxonomyQueryLen = 100

	// BulletproofCategoryID 最后兜底：Everything Else
	BulletproofCategoryID   = "99"
	BulletproofCategoryName = "Everything Else"
)

// CategoryResult 分类决策结果
type CategoryResult struct {
	CategoryID      string
	CategoryName    string
	Source          string // taxonomy_api / verified_fallback / bulletproof_fallback
	Family          ebay.CategoryFamily
	RequiredAspects []string // taxonomy 命中时该类目的必填 aspect 名
}

// AppTokenProvider 应用级 Token 提供方（由 TokenService 实现）
type AppTokenProvider interface {
	FetchAppToken(ctx context.Context, sandbox bool) (string, error)
}

// ==================== 兜底表 ====================

// verifiedCategories 人工核验过的关键词 -> 类目映射
// 顺序敏感：具体词在前，泛词在后。"headphones" 必须先于 "phone"
// 命中，"smartwatch" 必须先于 "watch"，否则泛词把具体词全吃掉
var verifiedCategories = []struct {
	keywords []string
	id       string
	name     string
	family   ebay.CategoryFamily
}{
	{[]string{"headphone", "earbud", "earphone", "airpod", "headset"},
		"112529", "Portable Audio & Headphones > Headphones", ebay.FamilyElectronics},
	{[]string{"smartwatch", "smart watch", "fitness tracker"},
		"178893", "Smart Watches", ebay.FamilyWatch},
	{[]string{"laptop", "notebook", "macbook", "chromebook"},
		"177", "PC Laptops & Netbooks", ebay.FamilyElectronics},
	{[]string{"tablet", "ipad"},
		"171485", "Tablets & eBook Readers", ebay.FamilyElectronics},
	{[]string{"air fryer", "blender", "toaster", "coffee maker", "pressure cooker", "kettle"},
		"20667", "Small Kitchen Appliances", ebay.FamilyKitchen},
	{[]string{"sneaker", "running shoe", "athletic shoe", "trainer shoe"},
		"15709", "Athletic Shoes", ebay.FamilyApparel},
	{[]string{"speaker", "soundbar"},
		"111694", "Audio Docks & Mini Speakers", ebay.FamilyElectronics},
	{[]string{"camera", "camcorder", "dslr", "mirrorless"},
		"31388", "Digital Cameras", ebay.FamilyElectronics},
	{[]string{"television", " tv ", "smart tv"},
		"11071", "Televisions", ebay.FamilyElectronics},
	{[]string{"game console", "playstation", "xbox", "nintendo"},
		"139971", "Video Game Consoles", ebay.FamilyElectronics},
	{[]string{"phone", "smartphone", "iphone", "android device"},
		"9355", "Cell Phones & Smartphones", ebay.FamilyElectronics},
	{[]string{"wristwatch", "wrist watch", "watch"},
		"31387", "Wristwatches", ebay.FamilyWatch},
	{[]string{"jeans", "denim pants"},
		"11483", "Jeans", ebay.FamilyApparel},
	{[]string{"dress", "gown"},
		"63861", "Dresses", ebay.FamilyApparel},
	{[]string{"shirt", "t-shirt", "tee", "blouse", "hoodie", "sweater"},
		"15687", "Casual Shirts & Tops", ebay.FamilyApparel},
	{[]string{"handbag", "purse", "tote bag", "backpack"},
		"169291", "Handbags & Purses", ebay.FamilyApparel},
	{[]string{"electronic", "gadget", "charger", "cable", "adapter"},
		"293", "Consumer Electronics", ebay.FamilyElectronics},
}

// ==================== 服务实现 ====================

// CategoryService 类目判定服务
// 三级降级：taxonomy API 实时建议 -> 人工核验关键词表 -> Everything Else。
// 任何一级失败都静默落到下一级，分类永远能给出结果
type CategoryService struct {
	tokens AppTokenProvider
	client *resty.Client

	// BaseURL 可覆盖，测试时指向 httptest 服务
	BaseURL        string
	SandboxBaseURL string
}

func NewCategoryService(tokens AppTokenProvider) *CategoryService {
	return &CategoryService{
		tokens:         tokens,
		client:         resty.New().SetTimeout(10 * time.Second),
		BaseURL:        taxonomyBaseProd,
		SandboxBaseURL: taxonomyBaseSandbox,
	}
}

func (s *CategoryService) baseURL(sandbox bool) string {
	if sandbox {
		return s.SandboxBaseURL
	}
	return s.BaseURL
}

// Classify 为商品内容选定类目
// query 一般传商品标题；text 传清洗后的全文，用于兜底关键词匹配
func (s *CategoryService) Classify(ctx context.Context, query, text string, sandbox bool) *CategoryResult {
	if result := s.classifyByTaxonomy(ctx, query, text, sandbox); result != nil {
		return result
	}

	if result := s.classifyByKeywords(query + " " + text); result != nil {
		log.Printf("[Category] taxonomy 未命中，关键词兜底 -> %s (%s)", result.CategoryName, result.CategoryID)
		return result
	}

	log.Printf("[Category] 全部降级，使用保底类目 %s", BulletproofCategoryID)
	return &CategoryResult{
		CategoryID:   BulletproofCategoryID,
		CategoryName: BulletproofCategoryName,
		Source:       model.CategorySourceBulletproof,
		Family:       ebay.FamilyGeneric,
	}
}

// ==================== Taxonomy API ====================

type categorySuggestionsResp struct {
	CategorySuggestions []struct {
		Category struct {
			CategoryID   string `json:"categoryId"`
			CategoryName string `json:"categoryName"`
		} `json:"category"`
		CategoryTreeNodeLevel     int  `json:"categoryTreeNodeLevel"`
		LeafCategoryTreeNode      bool `json:"leafCategoryTreeNode"`
		CategoryTreeNodeAncestors []struct {
			CategoryName string `json:"categoryName"`
		} `json:"categoryTreeNodeAncestors"`
	} `json:"categorySuggestions"`
}

type itemAspectsResp struct {
	Aspects []struct {
		LocalizedAspectName string `json:"localizedAspectName"`
		AspectConstraint    struct {
			AspectRequired bool `json:"aspectRequired"`
		} `json:"aspectConstraint"`
	} `json:"aspects"`
}

// classifyByTaxonomy 第一级：taxonomy API 实时建议
// 先用廉价的 getDefaultCategoryTreeId 探活，探活失败直接放弃本级，
// 省掉后续两个必然超时的请求
func (s *CategoryService) classifyByTaxonomy(ctx context.Context, query, text string, sandbox bool) *CategoryResult {
	token, err := s.tokens.FetchAppToken(ctx, sandbox)
	if err != nil {
		log.Printf("[Category] 获取应用级 Token 失败，跳过 taxonomy: %v", err)
		return nil
	}

	base := s.baseURL(sandbox)

	// 探活
	probe, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParam("marketplace_id", "EBAY_US").
		Get(base + "/get_default_category_tree_id")
	if err != nil || probe.StatusCode() < 200 || probe.StatusCode() >= 300 {
		status := 0
		if probe != nil {
			status = probe.StatusCode()
		}
		log.Printf("[Category] taxonomy 探活失败 (Status %d, err=%v)，跳过本级", status, err)
		return nil
	}

	// 类目建议
	var suggestions categorySuggestionsResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParam("q", cleanTaxonomyQuery(query)).
		SetResult(&suggestions).
		Get(fmt.Sprintf("%s/category_tree/%s/get_category_suggestions", base, categoryTreeUS))
	if err != nil || resp.StatusCode() != 200 || len(suggestions.CategorySuggestions) == 0 {
		log.Printf("[Category] 类目建议为空或失败，降级")
		return nil
	}

	first := suggestions.CategorySuggestions[0]
	catID := first.Category.CategoryID
	catName := first.Category.CategoryName

	// 校验叶子可用并顺带取必填 aspect
	var aspects itemAspectsResp
	aResp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetQueryParam("category_id", catID).
		SetResult(&aspects).
		Get(fmt.Sprintf("%s/category_tree/%s/get_item_aspects_for_category", base, categoryTreeUS))
	if err != nil || aResp.StatusCode() != 200 {
		// 建议的类目不是可挂牌的叶子，整级放弃
		log.Printf("[Category] 类目 %s 叶子校验失败，降级", catID)
		return nil
	}

	var required []string
	for _, a := range aspects.Aspects {
		if a.AspectConstraint.AspectRequired {
			required = append(required, a.LocalizedAspectName)
		}
	}

	log.Printf("[Category] taxonomy 命中: %s (%s)，必填 aspect %d 个", catName, catID, len(required))
	return &CategoryResult{
		CategoryID:      catID,
		CategoryName:    catName,
		Source:          model.CategorySourceTaxonomy,
		Family:          familyFromText(query + " " + text),
		RequiredAspects: required,
	}
}

// ==================== 关键词兜底 ====================

// classifyByKeywords 第二级：核验表按序匹配
func (s *CategoryService) classifyByKeywords(text string) *CategoryResult {
	lower := " " + strings.ToLower(text) + " "
	for _, entry := range verifiedCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return &CategoryResult{
					CategoryID:   entry.id,
					CategoryName: entry.name,
					Source:       model.CategorySourceVerified,
					Family:       entry.family,
				}
			}
		}
	}
	return nil
}

// familyFromText 独立判定分类族（taxonomy 命中时也要给成色码表用）
func familyFromText(text string) ebay.CategoryFamily {
	lower := " " + strings.ToLower(text) + " "
	for _, entry := range verifiedCategories {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.family
			}
		}
	}
	return ebay.FamilyGeneric
}

var taxonomyQueryRe = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)

// cleanTaxonomyQuery 查询串清洗：只留字母数字和空格，截断到上限
func cleanTaxonomyQuery(q string) string {
	q = taxonomyQueryRe.ReplaceAllString(q, " ")
	q = strings.Join(strings.Fields(q), " ")
	if len(q) > maxTaxonomyQueryLen {
		q = q[:maxTaxonomyQueryLen]
		// 不在词中间截断
		if idx := strings.LastIndex(q, " "); idx > 0 {
			q = q[:idx]
		}
	}
	return q
}
