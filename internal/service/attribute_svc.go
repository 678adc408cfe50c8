package service

import (
	"regexp"
	"strings"
	"unicode"

	"listora_publisher_v1/pkg/ebay"
)

// ==================== 词表 ====================
// 进程级只读配置，启动即定型，运行期不修改

// 默认值：市场侧拒收空必填属性，提取器必须返回非空
const (
	DefaultBrand    = "Unbranded"
	DefaultColor    = "Black"
	DefaultMaterial = "Mixed Materials"
	DefaultSize     = "One Size"
	DefaultModel    = "Standard"
	AspectNotApply  = "Does Not Apply"
)

// knownBrands 精选品牌表，覆盖电子/服饰/手表，先匹配先赢
var knownBrands = []string{
	"apple", "samsung", "sony", "bose", "jbl", "beats", "sennheiser",
	"anker", "logitech", "dell", "lenovo", "asus", "acer", "microsoft",
	"google", "lg", "panasonic", "canon", "nikon", "dyson", "ninja",
	"instant pot", "cuisinart", "keurig", "nike", "adidas", "puma",
	"reebok", "new balance", "under armour", "levi's", "levis", "zara",
	"rolex", "omega", "seiko", "casio", "citizen", "timex", "fossil",
	"garmin", "fitbit", "coach", "michael kors", "gucci", "prada",
}

// colorSynonyms 颜色 -> 同义词，先匹配先赢
var colorSynonyms = []struct {
	name     string
	synonyms []string
}{
	{"Black", []string{"black", "jet black", "midnight", "charcoal"}},
	{"White", []string{"white", "ivory", "pearl"}},
	{"Gray", []string{"gray", "grey", "graphite", "slate"}},
	{"Silver", []string{"silver", "chrome", "metallic"}},
	{"Gold", []string{"gold", "golden", "champagne"}},
	{"Blue", []string{"blue", "navy", "cobalt", "teal"}},
	{"Red", []string{"red", "crimson", "burgundy", "maroon"}},
	{"Green", []string{"green", "olive", "emerald", "mint"}},
	{"Pink", []string{"pink", "rose", "blush"}},
	{"Purple", []string{"purple", "violet", "lavender"}},
	{"Brown", []string{"brown", "tan", "chocolate", "coffee"}},
	{"Orange", []string{"orange", "coral"}},
	{"Yellow", []string{"yellow", "mustard"}},
	{"Beige", []string{"beige", "cream", "khaki"}},
}

var knownMaterials = []struct {
	name     string
	keywords []string
}{
	{"Leather", []string{"leather", "cowhide"}},
	{"Stainless Steel", []string{"stainless steel", "stainless-steel"}},
	{"Aluminum", []string{"aluminum", "aluminium"}},
	{"Cotton", []string{"cotton"}},
	{"Polyester", []string{"polyester"}},
	{"Nylon", []string{"nylon"}},
	{"Silicone", []string{"silicone", "silicon band"}},
	{"Wood", []string{"wooden", "wood", "bamboo"}},
	{"Glass", []string{"glass", "tempered"}},
	{"Ceramic", []string{"ceramic"}},
	{"Plastic", []string{"plastic", "abs"}},
	{"Metal", []string{"metal"}},
}

var knownSizes = []string{
	"xx-large", "x-large", "xx-small", "x-small",
	"extra large", "extra small", "large", "medium", "small",
	"xxl", "xl", "xs", // 单字母 s/m/l 误报太多，不收
}

// brandStopwords 标题推断品牌时跳过的词
// 修饰词之外还要挡住常见品类名词：标题几乎都以它们开头，
// 当成品牌写进 Listing 会直接污染属性
var brandStopwords = map[string]bool{
	// 修饰词
	"the": true, "new": true, "premium": true, "wireless": true,
	"portable": true, "professional": true, "smart": true, "mini": true,
	"digital": true, "electric": true, "mens": true, "womens": true,
	"men's": true, "women's": true, "kids": true, "vintage": true,
	"noise": true, "cancelling": true, "canceling": true,
	"adjustable": true, "rechargeable": true, "foldable": true,
	// 品类名词
	"bluetooth": true, "headphones": true, "headphone": true,
	"earbuds": true, "earbud": true, "speaker": true, "speakers": true,
	"laptop": true, "tablet": true, "phone": true, "smartphone": true,
	"watch": true, "smartwatch": true, "camera": true, "charger": true,
	"cable": true, "keyboard": true, "mouse": true, "monitor": true,
	"console": true, "gaming": true, "shoes": true, "sneakers": true,
	"shirt": true, "dress": true, "jeans": true, "jacket": true,
	"handbag": true, "backpack": true, "bottle": true, "mug": true,
	"blender": true, "toaster": true, "kettle": true, "fryer": true,
	"cooker": true, "stand": true, "holder": true, "accessories": true,
}

var (
	storageRe = regexp.MustCompile(`(\d+)\s*(tb|gb)`)
	screenRe  = regexp.MustCompile(`(\d{1,2}(?:\.\d)?)\s*(?:inch|inches|")`)
	modelRe   = regexp.MustCompile(`\b([A-Za-z]+[-]?\d+[A-Za-z0-9-]*)\b`)
)

// ==================== 服务实现 ====================

// AttributeService 属性提取服务
// 所有提取器都是全函数：同样输入同样输出，永不失败，查不到给默认值
type AttributeService struct{}

func NewAttributeService() *AttributeService {
	return &AttributeService{}
}

// Brand 品牌提取
// 词表优先；词表不中时从标题取第一个非停用词的大写开头词；再不行 Unbranded
func (s *AttributeService) Brand(text, title string) string {
	lower := strings.ToLower(text)
	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			return titleCase(brand)
		}
	}

	for _, word := range strings.Fields(title) {
		cleaned := strings.Trim(word, ",.!-()")
		if len(cleaned) < 3 {
			continue
		}
		if brandStopwords[strings.ToLower(cleaned)] {
			continue
		}
		if isColorWord(strings.ToLower(cleaned)) {
			continue
		}
		r := []rune(cleaned)[0]
		if unicode.IsUpper(r) {
			return cleaned
		}
		break // 首个候选词就不是大写开头，放弃推断
	}

	return DefaultBrand
}

// Color 颜色提取，查不到返回平台默认色
func (s *AttributeService) Color(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range colorSynonyms {
		for _, syn := range entry.synonyms {
			if strings.Contains(lower, syn) {
				return entry.name
			}
		}
	}
	return DefaultColor
}

// Material 材质提取
func (s *AttributeService) Material(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range knownMaterials {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.name
			}
		}
	}
	return DefaultMaterial
}

// Size 尺码提取
func (s *AttributeService) Size(text string) string {
	lower := strings.ToLower(text)
	for _, size := range knownSizes {
		if strings.Contains(lower, size) {
			return titleCase(size)
		}
	}
	return DefaultSize
}

// Model 型号提取：标题里第一个字母+数字组合的词
func (s *AttributeService) Model(text, title string) string {
	if m := modelRe.FindStringSubmatch(title); len(m) > 1 {
		return m[1]
	}
	if m := modelRe.FindStringSubmatch(text); len(m) > 1 {
		return m[1]
	}
	return DefaultModel
}

// StorageCapacity 存储容量，如 "256 GB"
func (s *AttributeService) StorageCapacity(text string) string {
	lower := strings.ToLower(text)
	if m := storageRe.FindStringSubmatch(lower); len(m) > 2 {
		return m[1] + " " + strings.ToUpper(m[2])
	}
	return AspectNotApply
}

// ScreenSize 屏幕尺寸，如 "6.1 in"
func (s *AttributeService) ScreenSize(text string) string {
	lower := strings.ToLower(text)
	if m := screenRe.FindStringSubmatch(lower); len(m) > 1 {
		return m[1] + " in"
	}
	return AspectNotApply
}

// WatchMovement 手表机芯类型
func (s *AttributeService) WatchMovement(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "automatic"):
		return "Automatic"
	case strings.Contains(lower, "mechanical"):
		return "Mechanical"
	case strings.Contains(lower, "solar"):
		return "Solar"
	case strings.Contains(lower, "kinetic"):
		return "Kinetic"
	case strings.Contains(lower, "smartwatch"), strings.Contains(lower, "smart watch"):
		return "Digital"
	default:
		return "Quartz" // 市面上最常见的机芯，作为默认
	}
}

// BandMaterial 表带材质
func (s *AttributeService) BandMaterial(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "leather"):
		return "Leather"
	case strings.Contains(lower, "stainless"):
		return "Stainless Steel"
	case strings.Contains(lower, "silicone"), strings.Contains(lower, "rubber"):
		return "Silicone"
	case strings.Contains(lower, "nylon"):
		return "Nylon"
	case strings.Contains(lower, "metal"):
		return "Metal"
	default:
		return "Stainless Steel"
	}
}

// CaseMaterial 表壳材质
func (s *AttributeService) CaseMaterial(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "titanium"):
		return "Titanium"
	case strings.Contains(lower, "gold"):
		return "Gold Plated"
	case strings.Contains(lower, "ceramic"):
		return "Ceramic"
	case strings.Contains(lower, "plastic"), strings.Contains(lower, "resin"):
		return "Resin"
	default:
		return "Stainless Steel"
	}
}

// OperatingSystem 手机/电脑操作系统
func (s *AttributeService) OperatingSystem(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ios"):
		return "iOS"
	case strings.Contains(lower, "android"):
		return "Android"
	case strings.Contains(lower, "windows"):
		return "Windows"
	case strings.Contains(lower, "macbook"), strings.Contains(lower, "macos"):
		return "macOS"
	case strings.Contains(lower, "chromebook"), strings.Contains(lower, "chrome os"):
		return "Chrome OS"
	default:
		return AspectNotApply
	}
}

// ==================== Aspect 填充 ====================

// FillAspects 按 taxonomy 返回的必填 aspect 名逐个填值
// 必填 aspect 一个都不能留空，路由不到的名字给 Does Not Apply
func (s *AttributeService) FillAspects(aspectNames []string, text, title string) []ebay.ItemSpecific {
	specifics := make([]ebay.ItemSpecific, 0, len(aspectNames)+2)
	seen := map[string]bool{}

	add := func(name, value string) {
		key := strings.ToLower(name)
		if seen[key] || value == "" {
			return
		}
		seen[key] = true
		specifics = append(specifics, ebay.ItemSpecific{Name: name, Values: []string{value}})
	}

	// Brand 与 Color 无条件给出
	add("Brand", s.Brand(text, title))
	add("Color", s.Color(text))

	for _, name := range aspectNames {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "brand"), strings.Contains(lower, "color"), strings.Contains(lower, "colour"):
			// 已覆盖
		case strings.Contains(lower, "model"):
			add(name, s.Model(text, title))
		case strings.Contains(lower, "movement"):
			add(name, s.WatchMovement(text))
		// band/case 要先于泛用 material 判定，否则 "Band Material" 会被抢走
		case strings.Contains(lower, "band"):
			add(name, s.BandMaterial(text))
		case strings.Contains(lower, "case"):
			add(name, s.CaseMaterial(text))
		case strings.Contains(lower, "material"):
			add(name, s.Material(text))
		case strings.Contains(lower, "size") && strings.Contains(lower, "screen"):
			add(name, s.ScreenSize(text))
		case strings.Contains(lower, "size"):
			add(name, s.Size(text))
		case strings.Contains(lower, "storage"), strings.Contains(lower, "capacity"):
			add(name, s.StorageCapacity(text))
		case strings.Contains(lower, "operating system"), lower == "os":
			add(name, s.OperatingSystem(text))
		default:
			add(name, AspectNotApply)
		}
	}

	return specifics
}

// FallbackSpecifics 兜底分类的固定属性集，按分类族分发
// 用枚举分发表替代字符串比较链
var fallbackAspectNames = map[ebay.CategoryFamily][]string{
	ebay.FamilyElectronics: {"Model", "Storage Capacity", "Screen Size", "Operating System"},
	ebay.FamilyWatch:       {"Movement", "Band Material", "Case Material"},
	ebay.FamilyApparel:     {"Size", "Material"},
	ebay.FamilyKitchen:     {"Model", "Material"},
	ebay.FamilyGeneric:     {"Model", "Material"},
}

func (s *AttributeService) FallbackSpecifics(family ebay.CategoryFamily, text, title string) []ebay.ItemSpecific {
	names, ok := fallbackAspectNames[family]
	if !ok {
		names = fallbackAspectNames[ebay.FamilyGeneric]
	}
	return s.FillAspects(names, text, title)
}

// ==================== 辅助 ====================

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func isColorWord(word string) bool {
	for _, entry := range colorSynonyms {
		for _, syn := range entry.synonyms {
			if word == syn {
				return true
			}
		}
	}
	return false
}
