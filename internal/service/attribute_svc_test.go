package service

import (
	"testing"

	"listora_publisher_v1/pkg/ebay"
)

// ==================== 品牌 ====================

func TestBrand_KnownBrandWins(t *testing.T) {
	s := NewAttributeService()

	cases := []struct {
		text  string
		title string
		want  string
	}{
		{"the new sony wh-1000xm5 headphones", "Headphones", "Sony"},
		{"compatible with Apple devices", "Charger", "Apple"},
		{"classic nike running shoes", "Shoes", "Nike"},
		{"seiko automatic movement inside", "Watch", "Seiko"},
	}
	for _, c := range cases {
		if got := s.Brand(c.text, c.title); got != c.want {
			t.Errorf("Brand(%q) = %q, 期望 %q", c.text, got, c.want)
		}
	}
}

func TestBrand_InferredFromTitle(t *testing.T) {
	s := NewAttributeService()

	// 词表不中，标题首个大写开头的非停用词作为品牌
	got := s.Brand("a simple gadget for daily use", "Zenvora Wireless Charger")
	if got != "Zenvora" {
		t.Errorf("Brand = %q, 期望 Zenvora", got)
	}
}

func TestBrand_SkipsStopwordsAndColors(t *testing.T) {
	s := NewAttributeService()

	got := s.Brand("nothing matches here", "Premium Kyverno Stand")
	if got != "Kyverno" {
		t.Errorf("停用词应被跳过: Brand = %q", got)
	}

	got = s.Brand("nothing", "lowercase title words")
	if got != DefaultBrand {
		t.Errorf("无大写候选应回退默认: %q", got)
	}
}

func TestBrand_ProductNounsNotBrands(t *testing.T) {
	s := NewAttributeService()

	// 标题只有品类名词时不能瞎编品牌
	cases := []struct {
		text  string
		title string
	}{
		{"wireless bluetooth headphones with noise cancellation", "Wireless Bluetooth Headphones"},
		{"portable speaker for travel", "Portable Bluetooth Speaker"},
		{"accessories for your desk", "Gaming Laptop Stand"},
	}
	for _, c := range cases {
		if got := s.Brand(c.text, c.title); got != DefaultBrand {
			t.Errorf("Brand(%q, %q) = %q, 期望 %q", c.text, c.title, got, DefaultBrand)
		}
	}
}

// ==================== 颜色 / 材质 / 尺码 ====================

func TestColor(t *testing.T) {
	s := NewAttributeService()

	cases := []struct {
		text string
		want string
	}{
		{"available in navy finish", "Blue"},
		{"sleek graphite body", "Gray"},
		{"rose tone band", "Pink"},
		{"no tone mentioned at all", DefaultColor},
	}
	for _, c := range cases {
		if got := s.Color(c.text); got != c.want {
			t.Errorf("Color(%q) = %q, 期望 %q", c.text, got, c.want)
		}
	}
}

func TestMaterial(t *testing.T) {
	s := NewAttributeService()

	if got := s.Material("brushed stainless steel case"); got != "Stainless Steel" {
		t.Errorf("Material = %q", got)
	}
	if got := s.Material("soft cotton lining"); got != "Cotton" {
		t.Errorf("Material = %q", got)
	}
	if got := s.Material("nothing here"); got != DefaultMaterial {
		t.Errorf("默认材质 = %q", got)
	}
}

func TestSize(t *testing.T) {
	s := NewAttributeService()

	if got := s.Size("available in x-large fit"); got != "X-large" {
		t.Errorf("Size = %q", got)
	}
	if got := s.Size("no sizing info"); got != DefaultSize {
		t.Errorf("默认尺码 = %q", got)
	}
}

// ==================== 型号 / 容量 / 屏幕 ====================

func TestModel(t *testing.T) {
	s := NewAttributeService()

	if got := s.Model("", "Sony WH-1000XM5 Headphones"); got != "WH-1000XM5" {
		t.Errorf("Model = %q", got)
	}
	if got := s.Model("features the A17 chip", "Plain Title"); got != "A17" {
		t.Errorf("标题不中应查正文: %q", got)
	}
	if got := s.Model("no model", "no model"); got != DefaultModel {
		t.Errorf("默认型号 = %q", got)
	}
}

func TestStorageCapacity(t *testing.T) {
	s := NewAttributeService()

	if got := s.StorageCapacity("with 256GB of storage"); got != "256 GB" {
		t.Errorf("StorageCapacity = %q", got)
	}
	if got := s.StorageCapacity("massive 2 TB drive"); got != "2 TB" {
		t.Errorf("StorageCapacity = %q", got)
	}
	if got := s.StorageCapacity("no capacity"); got != AspectNotApply {
		t.Errorf("无容量应返回 %q: %q", AspectNotApply, got)
	}
}

func TestScreenSize(t *testing.T) {
	s := NewAttributeService()

	if got := s.ScreenSize("stunning 6.1 inch display"); got != "6.1 in" {
		t.Errorf("ScreenSize = %q", got)
	}
	if got := s.ScreenSize(`15" laptop screen`); got != "15 in" {
		t.Errorf("ScreenSize = %q", got)
	}
}

// ==================== 幂等性 ====================

// 提取器必须是全函数：重复调用同一输入结果一致
func TestExtractors_Deterministic(t *testing.T) {
	s := NewAttributeService()
	text := "sony wireless headphones in navy with leather band, 256gb"

	for i := 0; i < 3; i++ {
		if got := s.Brand(text, "X"); got != "Sony" {
			t.Fatalf("第 %d 次 Brand 不一致: %q", i, got)
		}
		if got := s.Color(text); got != "Blue" {
			t.Fatalf("第 %d 次 Color 不一致: %q", i, got)
		}
	}
}

// ==================== Aspect 填充 ====================

func TestFillAspects_RequiredNeverEmpty(t *testing.T) {
	s := NewAttributeService()
	text := "samsung galaxy phone with 128gb storage, android"

	aspects := []string{"Brand", "Model", "Storage Capacity", "Operating System", "Obscure Aspect"}
	specs := s.FillAspects(aspects, text, "Samsung Galaxy S24")

	byName := map[string]string{}
	for _, spec := range specs {
		if len(spec.Values) == 0 || spec.Values[0] == "" {
			t.Errorf("aspect %q 值为空", spec.Name)
		}
		byName[spec.Name] = spec.Values[0]
	}

	if byName["Brand"] != "Samsung" {
		t.Errorf("Brand = %q", byName["Brand"])
	}
	if byName["Storage Capacity"] != "128 GB" {
		t.Errorf("Storage Capacity = %q", byName["Storage Capacity"])
	}
	if byName["Operating System"] != "Android" {
		t.Errorf("Operating System = %q", byName["Operating System"])
	}
	if byName["Obscure Aspect"] != AspectNotApply {
		t.Errorf("未知 aspect 应填 %q: %q", AspectNotApply, byName["Obscure Aspect"])
	}
	// Color 无条件在场
	if _, ok := byName["Color"]; !ok {
		t.Error("Color 应始终在场")
	}
}

func TestFillAspects_NoDuplicates(t *testing.T) {
	s := NewAttributeService()
	specs := s.FillAspects([]string{"Brand", "brand", "Color"}, "sony black", "Sony Device")

	seen := map[string]int{}
	for _, spec := range specs {
		seen[spec.Name]++
	}
	for name, n := range seen {
		if n > 1 {
			t.Errorf("aspect %q 出现 %d 次", name, n)
		}
	}
}

// ==================== 兜底属性集 ====================

func TestFallbackSpecifics_PerFamily(t *testing.T) {
	s := NewAttributeService()

	watch := s.FallbackSpecifics(ebay.FamilyWatch, "automatic movement leather band", "Classic Watch")
	names := map[string]bool{}
	for _, spec := range watch {
		names[spec.Name] = true
	}
	for _, want := range []string{"Brand", "Color", "Movement", "Band Material", "Case Material"} {
		if !names[want] {
			t.Errorf("手表族缺少属性 %q", want)
		}
	}

	generic := s.FallbackSpecifics(ebay.FamilyGeneric, "some gadget", "Gadget")
	if len(generic) == 0 {
		t.Fatal("兜底属性集不能为空")
	}
}
