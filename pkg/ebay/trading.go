package ebay

import (
	"fmt"
	"regexp"
	"strings"
)

// 交易 API 端点
const (
	EndpointProduction = "https://api.ebay.com/ws/api.dll"
	EndpointSandbox    = "https://api.sandbox.ebay.com/ws/api.dll"

	CompatibilityLevel = "967"
	SiteUS             = "0"

	CallAddFixedPriceItem = "AddFixedPriceItem"
)

// Credentials 交易 API 凭证集合
// AuthToken 是卖家级 OAuth Token，Dev/App/Cert 是应用级标识
type Credentials struct {
	AuthToken string
	DevName   string
	AppName   string
	CertName  string
}

// ItemSpecific 单个 Item Specific（名称 -> 多值）
// 有序切片而非 map：XML 输出必须可复现
type ItemSpecific struct {
	Name   string
	Values []string
}

// ListingDocument 平台无关的中间表示，由 builder 产出
type ListingDocument struct {
	Title           string
	DescriptionHTML string
	Price           float64
	CurrencyCode    string
	Quantity        int
	SKU             string
	Images          []string
	CategoryID      string
	ConditionID     int
	ItemSpecifics   []ItemSpecific
	// 政策字段，缺省用站点默认
	DispatchDays    int
	ReturnsAccepted bool
}

// EscapeXML 转义交易 API 载荷中的文本字段
// 覆盖 & < > " ' 五个字符，& 必须最先替换
func EscapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

// BuildAddFixedPriceItemXML 手工拼交易 API 信封
// 交易 API 是遗留的属性式 XML，固定模板比 struct 映射更直接
func BuildAddFixedPriceItemXML(doc *ListingDocument, creds Credentials) string {
	var b strings.Builder

	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	b.WriteString(`<AddFixedPriceItemRequest xmlns="urn:ebay:apis:eBLBaseComponents">` + "\n")
	b.WriteString("  <RequesterCredentials>\n")
	b.WriteString("    <eBayAuthToken>" + EscapeXML(creds.AuthToken) + "</eBayAuthToken>\n")
	b.WriteString("  </RequesterCredentials>\n")
	b.WriteString("  <ErrorLanguage>en_US</ErrorLanguage>\n")
	b.WriteString("  <WarningLevel>High</WarningLevel>\n")
	b.WriteString("  <Item>\n")
	b.WriteString("    <Title>" + EscapeXML(doc.Title) + "</Title>\n")
	b.WriteString("    <Description><![CDATA[" + doc.DescriptionHTML + "]]></Description>\n")
	b.WriteString("    <PrimaryCategory><CategoryID>" + EscapeXML(doc.CategoryID) + "</CategoryID></PrimaryCategory>\n")
	b.WriteString(fmt.Sprintf("    <StartPrice>%.2f</StartPrice>\n", doc.Price))
	b.WriteString("    <CategoryMappingAllowed>true</CategoryMappingAllowed>\n")
	b.WriteString(fmt.Sprintf("    <ConditionID>%d</ConditionID>\n", doc.ConditionID))
	b.WriteString("    <Country>US</Country>\n")
	b.WriteString("    <Currency>" + EscapeXML(doc.CurrencyCode) + "</Currency>\n")
	b.WriteString(fmt.Sprintf("    <DispatchTimeMax>%d</DispatchTimeMax>\n", doc.DispatchDays))
	b.WriteString("    <ListingDuration>GTC</ListingDuration>\n")
	b.WriteString("    <ListingType>FixedPriceItem</ListingType>\n")
	b.WriteString(fmt.Sprintf("    <Quantity>%d</Quantity>\n", doc.Quantity))
	b.WriteString("    <SKU>" + EscapeXML(doc.SKU) + "</SKU>\n")

	if len(doc.Images) > 0 {
		b.WriteString("    <PictureDetails>\n")
		for _, url := range doc.Images {
			b.WriteString("      <PictureURL>" + EscapeXML(url) + "</PictureURL>\n")
		}
		b.WriteString("    </PictureDetails>\n")
	}

	if len(doc.ItemSpecifics) > 0 {
		b.WriteString("    <ItemSpecifics>\n")
		for _, spec := range doc.ItemSpecifics {
			b.WriteString("      <NameValueList>\n")
			b.WriteString("        <Name>" + EscapeXML(spec.Name) + "</Name>\n")
			for _, v := range spec.Values {
				b.WriteString("        <Value>" + EscapeXML(v) + "</Value>\n")
			}
			b.WriteString("      </NameValueList>\n")
		}
		b.WriteString("    </ItemSpecifics>\n")
	}

	// 站点默认政策：本地自取关闭、PayPal 之外走托管收款，无需显式声明
	b.WriteString("    <ShippingDetails>\n")
	b.WriteString("      <ShippingType>Flat</ShippingType>\n")
	b.WriteString("      <ShippingServiceOptions>\n")
	b.WriteString("        <ShippingServicePriority>1</ShippingServicePriority>\n")
	b.WriteString("        <ShippingService>USPSGround</ShippingService>\n")
	b.WriteString("        <ShippingServiceCost>0.00</ShippingServiceCost>\n")
	b.WriteString("      </ShippingServiceOptions>\n")
	b.WriteString("    </ShippingDetails>\n")
	b.WriteString("    <ReturnPolicy>\n")
	if doc.ReturnsAccepted {
		b.WriteString("      <ReturnsAcceptedOption>ReturnsAccepted</ReturnsAcceptedOption>\n")
		b.WriteString("      <ReturnsWithinOption>Days_30</ReturnsWithinOption>\n")
		b.WriteString("      <ShippingCostPaidByOption>Buyer</ShippingCostPaidByOption>\n")
	} else {
		b.WriteString("      <ReturnsAcceptedOption>ReturnsNotAccepted</ReturnsAcceptedOption>\n")
	}
	b.WriteString("    </ReturnPolicy>\n")
	b.WriteString("  </Item>\n")
	b.WriteString("</AddFixedPriceItemRequest>\n")

	return b.String()
}

// ==================== 应答解析 ====================

// Ack 取值
const (
	AckSuccess = "Success"
	AckWarning = "Warning"
	AckFailure = "Failure"
)

// APIError 应答中的单条错误/警告
type APIError struct {
	Severity     string // Error / Warning
	Code         string
	ShortMessage string
}

// AddItemResult 解析后的发布应答
type AddItemResult struct {
	Ack    string
	ItemID string
	Errors []APIError
}

var (
	ackRe      = regexp.MustCompile(`<Ack>([^<]+)</Ack>`)
	itemIDRe   = regexp.MustCompile(`<ItemID>(\d+)</ItemID>`)
	errBlockRe = regexp.MustCompile(`(?s)<Errors>(.*?)</Errors>`)
	severityRe = regexp.MustCompile(`<SeverityCode>([^<]+)</SeverityCode>`)
	codeRe     = regexp.MustCompile(`<ErrorCode>([^<]+)</ErrorCode>`)
	shortMsgRe = regexp.MustCompile(`(?s)<ShortMessage>(.*?)</ShortMessage>`)
)

// ParseAddItemResponse 从交易 API 应答中提取 Ack、ItemID 和错误列表
// 交易 API 应答字段少且固定，正则提取够用，不值得引入完整 XML 反序列化
func ParseAddItemResponse(body string) *AddItemResult {
	result := &AddItemResult{}

	if m := ackRe.FindStringSubmatch(body); len(m) > 1 {
		result.Ack = m[1]
	}
	if m := itemIDRe.FindStringSubmatch(body); len(m) > 1 {
		result.ItemID = m[1]
	}

	for _, block := range errBlockRe.FindAllStringSubmatch(body, -1) {
		apiErr := APIError{}
		if m := severityRe.FindStringSubmatch(block[1]); len(m) > 1 {
			apiErr.Severity = m[1]
		}
		if m := codeRe.FindStringSubmatch(block[1]); len(m) > 1 {
			apiErr.Code = m[1]
		}
		if m := shortMsgRe.FindStringSubmatch(block[1]); len(m) > 1 {
			apiErr.ShortMessage = strings.TrimSpace(m[1])
		}
		result.Errors = append(result.Errors, apiErr)
	}

	return result
}

// IsSuccess Ack 为 Success 或 Warning 都视为发布成立
func (r *AddItemResult) IsSuccess() bool {
	return r.Ack == AckSuccess || r.Ack == AckWarning
}

// FirstError 第一条 Error 级条目，没有则返回 nil
func (r *AddItemResult) FirstError() *APIError {
	for i := range r.Errors {
		if r.Errors[i].Severity == "Error" {
			return &r.Errors[i]
		}
	}
	return nil
}

// ListingURL 根据 ItemID 拼商品页地址
func ListingURL(itemID string, sandbox bool) string {
	if itemID == "" || strings.HasPrefix(itemID, "PENDING-") {
		return ""
	}
	if sandbox {
		return "https://sandbox.ebay.com/itm/" + itemID
	}
	return "https://www.ebay.com/itm/" + itemID
}
