package service

import (
	"strings"
	"testing"
)

// ==================== 清洗 ====================

func TestNormalize_FixesMojibake(t *testing.T) {
	s := NewNormalizerService()

	in := "Itâ€™s a great product â€“ truly"
	got := s.Normalize(in)
	want := "It's a great product - truly"
	if got != want {
		t.Errorf("Normalize = %q, 期望 %q", got, want)
	}
}

func TestNormalize_TransliteratesAccents(t *testing.T) {
	s := NewNormalizerService()

	got := s.Normalize("Café crème – déluxe")
	want := "Cafe creme - deluxe"
	if got != want {
		t.Errorf("Normalize = %q, 期望 %q", got, want)
	}
}

func TestNormalize_DropsUnknownNonASCII(t *testing.T) {
	s := NewNormalizerService()

	got := s.Normalize("hello 世界 world")
	if strings.ContainsAny(got, "世界") {
		t.Errorf("表外非 ASCII 字符应被丢弃: %q", got)
	}
	if !strings.Contains(got, "hello") || !strings.Contains(got, "world") {
		t.Errorf("ASCII 内容不应被动到: %q", got)
	}
}

func TestNormalize_StripsMarkdown(t *testing.T) {
	s := NewNormalizerService()

	in := "## Heading\n**bold** text\n1. first item\n`code`"
	got := s.Normalize(in)

	for _, banned := range []string{"##", "**", "`"} {
		if strings.Contains(got, banned) {
			t.Errorf("Markdown 痕迹 %q 未清除: %q", banned, got)
		}
	}
	if !strings.Contains(got, "Heading") || !strings.Contains(got, "bold text") {
		t.Errorf("正文内容丢失: %q", got)
	}
}

func TestNormalize_EmptyInput(t *testing.T) {
	s := NewNormalizerService()
	if got := s.Normalize(""); got != "" {
		t.Errorf("空输入应返回空串: %q", got)
	}
}

// ==================== 分段解析 ====================

const sampleContent = `Product Title:
Wireless Bluetooth Headphones with Noise Cancellation

Key Selling Points:
- **Battery Life**: 30 hours of continuous playback
- **Comfort**: Soft memory foam ear cushions
- Lightweight foldable design

Detailed Product Description:
These headphones are engineered for premium audio performance. The sky is blue today. Crafted with durable materials for daily use.

Specifications:
- Bluetooth 5.3
- Weight: 250g

Instagram Caption:
Check out our new headphones! #audio`

func TestParseSections_FullDocument(t *testing.T) {
	s := NewNormalizerService()
	parsed := s.ParseSections(sampleContent, "Fallback Name")

	if parsed.Title != "Wireless Bluetooth Headphones with Noise Cancellation" {
		t.Errorf("Title = %q", parsed.Title)
	}

	if len(parsed.BulletPoints) != 3 {
		t.Fatalf("应解析出 3 个卖点，实际 %d: %v", len(parsed.BulletPoints), parsed.BulletPoints)
	}
	if parsed.BulletPoints[0] != "Battery Life: 30 hours of continuous playback" {
		t.Errorf("加粗卖点格式错误: %q", parsed.BulletPoints[0])
	}
	if parsed.BulletPoints[2] != "Lightweight foldable design" {
		t.Errorf("普通卖点解析错误: %q", parsed.BulletPoints[2])
	}

	// 细节词句子应排在前面：engineered/premium 命中
	if !strings.Contains(parsed.Highlight, "engineered") {
		t.Errorf("Highlight 应是信息量最大的句子: %q", parsed.Highlight)
	}

	if len(parsed.Specifications) != 2 {
		t.Errorf("规格行数 = %d: %v", len(parsed.Specifications), parsed.Specifications)
	}
}

func TestParseSections_RawGeneratedText(t *testing.T) {
	s := NewNormalizerService()

	// 解析直接吃生成侧原文：乱码要修，加粗引子要按规范形态切出来
	raw := `Key Selling Points:
- **Battery Life**: Itâ€™s rated for 30 hours

Detailed Product Description:
**Crafted** with premium materials throughout.`
	parsed := s.ParseSections(raw, "X")

	if len(parsed.BulletPoints) != 1 || parsed.BulletPoints[0] != "Battery Life: It's rated for 30 hours" {
		t.Errorf("加粗引子卖点解析错误: %v", parsed.BulletPoints)
	}
	if !strings.Contains(parsed.Highlight, "Crafted") || strings.Contains(parsed.Highlight, "**") {
		t.Errorf("Highlight 应保留正文并剥掉标记: %q", parsed.Highlight)
	}
}

func TestParseSections_SocialSectionDropped(t *testing.T) {
	s := NewNormalizerService()
	parsed := s.ParseSections(sampleContent, "X")

	all := strings.Join(append(parsed.BulletPoints, parsed.DetailedFeatures...), " ")
	if strings.Contains(all, "Instagram") || strings.Contains(all, "#audio") {
		t.Error("社媒小节不应进入解析结果")
	}
}

func TestParseSections_EmptyContent(t *testing.T) {
	s := NewNormalizerService()
	parsed := s.ParseSections("", "My Product")

	if parsed.Title != "My Product" {
		t.Errorf("空内容应回退到商品名: %q", parsed.Title)
	}
	if len(parsed.BulletPoints) != len(defaultBullets) {
		t.Errorf("空内容应使用默认卖点: %v", parsed.BulletPoints)
	}
}

func TestParseSections_UnstructuredFallback(t *testing.T) {
	s := NewNormalizerService()
	content := "This gadget is crafted with premium materials. It works well.\n\nMore details in the second paragraph."
	parsed := s.ParseSections(content, "Gadget Pro")

	if parsed.Title != "Gadget Pro" {
		t.Errorf("无小节结构时标题应用商品名: %q", parsed.Title)
	}
	if parsed.Highlight == "" {
		t.Error("兜底解析应从首段提取 Highlight")
	}
	if len(parsed.BulletPoints) == 0 {
		t.Error("兜底解析应给默认卖点")
	}
	if len(parsed.DetailedFeatures) != 1 {
		t.Errorf("第二段应进 DetailedFeatures: %v", parsed.DetailedFeatures)
	}
}

// ==================== 句子排序 ====================

func TestRankSentences_RichFirstStable(t *testing.T) {
	body := "The box is red. Crafted from premium steel for durability. It ships fast. Designed with comfort in mind."
	got := rankSentences(body)

	if len(got) != 4 {
		t.Fatalf("应切出 4 句，实际 %d", len(got))
	}
	// 命中细节词的两句稳定前移，且保持相对顺序
	if !strings.Contains(got[0], "Crafted") {
		t.Errorf("第一句应命中细节词: %q", got[0])
	}
	if !strings.Contains(got[1], "Designed") {
		t.Errorf("第二句应命中细节词且保序: %q", got[1])
	}
	if !strings.Contains(got[2], "red") {
		t.Errorf("普通句应保持原有相对顺序: %q", got[2])
	}
}

func TestRankSentences_NoTerminator(t *testing.T) {
	got := rankSentences("just a fragment without punctuation")
	if len(got) != 1 || got[0] != "just a fragment without punctuation" {
		t.Errorf("无标点文本应整体作为一句: %v", got)
	}
}
