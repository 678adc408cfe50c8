package service

import (
	"regexp"
	"strings"
)

// ==================== 数据结构 ====================

// ParsedContent 从生成文本中切出的结构化内容
type ParsedContent struct {
	Title            string
	BulletPoints     []string
	Highlight        string
	DetailedFeatures []string
	Specifications   []string
}

// ==================== 服务实现 ====================

// NormalizerService 内容清洗与分段服务
// 全部为纯函数：任何输入都返回可用结果，解析失败走兜底，绝不报错
type NormalizerService struct{}

func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// ==================== 清洗表 ====================

// mojibakeTable UTF-8 被按 Latin-1 解码后产生的乱码序列
// 顺序敏感：长序列在前，避免被短序列截断
var mojibakeTable = []struct {
	bad  string
	good string
}{
	{"\u00e2\u20ac\u2122", "'"},   // a-hat sequence for right single quote
	{"\u00e2\u20ac\u02dc", "'"},   // left single quote
	{"\u00e2\u20ac\u0153", "\""},  // left double quote
	{"\u00e2\u20ac\u009d", "\""},  // right double quote
	{"\u00e2\u20ac\u201c", "-"},   // en dash
	{"\u00e2\u20ac\u201d", "-"},   // em dash
	{"\u00e2\u20ac\u00a6", "..."}, // ellipsis
	{"\u00e2\u0080\u0099", "'"},   // Latin-1 控制符变体
	{"\u00e2\u0080\u009c", "\""},
	{"\u00e2\u0080\u009d", "\""},
	{"\u00e2\u0080\u0093", "-"},
	{"\u00e2\u0080\u0094", "-"},
	{"\u00e2\u0080\u00a6", "..."},
	{"\u00c2\u00b7", "-"}, // interpunct
	{"\u00c2", ""},         // 游离的 A-hat 直接去掉
}

// translitTable 非 ASCII 字符的转写表，表外字符直接丢弃
var translitTable = map[rune]string{
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ñ': "n", 'ç': "c", 'ý': "y", 'ÿ': "y",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'Á': "A", 'À': "A", 'Â': "A", 'Ä': "A", 'Ã': "A", 'Å': "A",
	'Í': "I", 'Ì': "I", 'Î': "I", 'Ï': "I",
	'Ó': "O", 'Ò': "O", 'Ô': "O", 'Ö': "O", 'Õ': "O",
	'Ú': "U", 'Ù': "U", 'Û': "U", 'Ü': "U",
	'Ñ': "N", 'Ç': "C",
	'’': "'", '‘': "'", '“': `"`, '”': `"`,
	'–': "-", '—': "-", '…': "...",
}

var (
	headingMarkRe  = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldMarkRe     = regexp.MustCompile(`\*\*|__`)
	numberedRe     = regexp.MustCompile(`(?m)^\s*\d+[\.\)]\s+`)
	backtickRe     = regexp.MustCompile("`+")
	multiSpaceRe   = regexp.MustCompile(`[ \t]{2,}`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
)

// fixEncoding 修乱码 + 转写非 ASCII，Normalize 的前半段
// 单独拆出来是因为分段解析也要先过这一步，但要保留 Markdown 结构
func fixEncoding(raw string) string {
	text := raw
	for _, pair := range mojibakeTable {
		text = strings.ReplaceAll(text, pair.bad, pair.good)
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 {
			b.WriteRune(r)
			continue
		}
		if repl, ok := translitTable[r]; ok {
			b.WriteString(repl)
		}
		// 表外非 ASCII 字符丢弃
	}
	return b.String()
}

// Normalize 清洗生成文本：修乱码、转写非 ASCII、去 Markdown 痕迹
func (s *NormalizerService) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	text := fixEncoding(raw)

	text = headingMarkRe.ReplaceAllString(text, "")
	text = boldMarkRe.ReplaceAllString(text, "")
	text = numberedRe.ReplaceAllString(text, "")
	text = backtickRe.ReplaceAllString(text, "")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// ==================== 分段解析 ====================

// 固定的节名词表。生成侧输出的小节标题落在这些词上
var sectionVocab = []struct {
	name     string
	patterns []string
}{
	{"title", []string{"product title", "listing title", "title"}},
	{"bullets", []string{"key selling points", "selling points", "key features", "bullet points"}},
	{"description", []string{"detailed product description", "product description", "description"}},
	{"specifications", []string{"specifications", "technical details", "specs"}},
	{"social", []string{"instagram caption", "social media", "blog intro", "call to action", "hashtags"}},
}

var (
	sectionHeadRe = regexp.MustCompile(`(?m)^\s*(?:\d+[\.\)]\s*)?(?:#{1,6}\s*)?(?:\*\*)?\s*([A-Za-z][A-Za-z \-&]+?)\s*(?:\*\*)?\s*:?\s*$`)
	boldBulletRe  = regexp.MustCompile(`^\s*[-*•]?\s*\*\*([^*]+?)\*\*\s*:?\s*(.*)$`)
	plainBulletRe = regexp.MustCompile(`^\s*[-*•]\s+(.*)$`)
	sentenceRe    = regexp.MustCompile(`[^.!?]+[.!?]`)
)

// richDetailKeywords 描述句排序用的"细节词"
// 命中越多越靠前，让信息量大的句子先出现
var richDetailKeywords = []string{
	"crafted", "designed", "engineered", "premium", "durable",
	"features", "quality", "material", "comfort", "performance",
	"advanced", "professional",
}

// defaultBullets 解析失败时的兜底卖点
var defaultBullets = []string{
	"High quality materials and construction",
	"Designed for everyday use",
	"Great value for money",
}

// ParseSections 把半结构化全文切成结构化小节
// 输入是原始生成文本：先修编码，带着 Markdown 结构解析（加粗引子
// 是卖点行的规范形态），字段抽出来之后再剥标记。
// 任何解析失败都退到朴素分段 + 默认卖点，绝不抛错
func (s *NormalizerService) ParseSections(content, productName string) *ParsedContent {
	result := &ParsedContent{}

	content = fixEncoding(content)
	if strings.TrimSpace(content) == "" {
		result.Title = productName
		result.BulletPoints = append(result.BulletPoints, defaultBullets...)
		return result
	}

	sections := splitSections(content)

	if title, ok := sections["title"]; ok {
		result.Title = firstNonEmptyLine(title)
	}

	if body, ok := sections["bullets"]; ok {
		result.BulletPoints = extractBullets(body)
	}

	if body, ok := sections["description"]; ok {
		sentences := rankSentences(body)
		if len(sentences) > 0 {
			result.Highlight = sentences[0]
			result.DetailedFeatures = sentences[1:]
		}
	}

	if body, ok := sections["specifications"]; ok {
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
			if line != "" {
				result.Specifications = append(result.Specifications, line)
			}
		}
	}

	// 兜底：没有切出任何小节时按段落朴素切分
	if result.Title == "" && len(result.BulletPoints) == 0 && result.Highlight == "" {
		return sanitizeParsed(s.fallbackParse(content, productName))
	}

	if result.Title == "" {
		result.Title = productName
	}
	if len(result.BulletPoints) == 0 {
		result.BulletPoints = append(result.BulletPoints, defaultBullets...)
	}

	return sanitizeParsed(result)
}

// sanitizeParsed 解析完成后统一剥掉字段里残留的 Markdown 标记
func sanitizeParsed(p *ParsedContent) *ParsedContent {
	p.Title = stripInlineMarks(p.Title)
	for i, b := range p.BulletPoints {
		p.BulletPoints[i] = stripInlineMarks(b)
	}
	p.Highlight = stripInlineMarks(p.Highlight)
	for i, d := range p.DetailedFeatures {
		p.DetailedFeatures[i] = stripInlineMarks(d)
	}
	for i, sp := range p.Specifications {
		p.Specifications[i] = stripInlineMarks(sp)
	}
	return p
}

func stripInlineMarks(s string) string {
	s = headingMarkRe.ReplaceAllString(s, "")
	s = boldMarkRe.ReplaceAllString(s, "")
	s = numberedRe.ReplaceAllString(s, "")
	s = backtickRe.ReplaceAllString(s, "")
	return strings.TrimSpace(multiSpaceRe.ReplaceAllString(s, " "))
}

// fallbackParse 朴素分段兜底
func (s *NormalizerService) fallbackParse(content, productName string) *ParsedContent {
	result := &ParsedContent{Title: productName}

	paragraphs := strings.Split(content, "\n\n")
	var kept []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			kept = append(kept, p)
		}
	}

	if len(kept) > 0 {
		sentences := rankSentences(kept[0])
		if len(sentences) > 0 {
			result.Highlight = sentences[0]
		}
		for _, p := range kept[1:] {
			result.DetailedFeatures = append(result.DetailedFeatures, p)
		}
	}

	result.BulletPoints = append(result.BulletPoints, defaultBullets...)
	return result
}

// splitSections 按节名词表切分全文，返回 节名 -> 正文
func splitSections(content string) map[string]string {
	sections := make(map[string]string)
	lines := strings.Split(content, "\n")

	current := ""
	var buf []string

	flush := func() {
		if current != "" && len(buf) > 0 {
			// 同名小节取第一个
			if _, exists := sections[current]; !exists {
				sections[current] = strings.Join(buf, "\n")
			}
		}
		buf = buf[:0]
	}

	for _, line := range lines {
		if name, ok := matchSectionHead(line); ok {
			flush()
			current = name
			continue
		}
		if current != "" {
			buf = append(buf, line)
		}
	}
	flush()

	delete(sections, "social") // 社媒小节不进 Listing
	return sections
}

// matchSectionHead 行是否命中节名词表
func matchSectionHead(line string) (string, bool) {
	m := sectionHeadRe.FindStringSubmatch(line)
	if len(m) < 2 {
		return "", false
	}
	head := strings.ToLower(strings.TrimSpace(m[1]))
	for _, entry := range sectionVocab {
		for _, p := range entry.patterns {
			if head == p {
				return entry.name, true
			}
		}
	}
	return "", false
}

// extractBullets 抽取卖点行
// 规范形态是「加粗引子 + 冒号 + 说明」，同时容忍普通列表行
func extractBullets(body string) []string {
	var bullets []string
	for _, line := range strings.Split(body, "\n") {
		if m := boldBulletRe.FindStringSubmatch(line); len(m) > 2 && strings.TrimSpace(m[2]) != "" {
			bullets = append(bullets, strings.TrimSpace(m[1])+": "+strings.TrimSpace(m[2]))
			continue
		}
		if m := plainBulletRe.FindStringSubmatch(line); len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			bullets = append(bullets, strings.TrimSpace(m[1]))
		}
	}
	return bullets
}

// rankSentences 按细节词重排描述句：命中词的句子稳定前移
func rankSentences(body string) []string {
	text := strings.Join(strings.Fields(body), " ")
	raw := sentenceRe.FindAllString(text, -1)
	if len(raw) == 0 {
		if strings.TrimSpace(text) != "" {
			return []string{strings.TrimSpace(text)}
		}
		return nil
	}

	var rich, plain []string
	for _, sent := range raw {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		lower := strings.ToLower(sent)
		hit := false
		for _, kw := range richDetailKeywords {
			if strings.Contains(lower, kw) {
				hit = true
				break
			}
		}
		if hit {
			rich = append(rich, sent)
		} else {
			plain = append(plain, sent)
		}
	}

	return append(rich, plain...)
}

// firstNonEmptyLine 取第一个非空行
func firstNonEmptyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), `"*`))
		if line != "" {
			return line
		}
	}
	return ""
}
