package net

import (
	"bytes"
	"context"
	"net/http"
)

// TradingHeaders 交易 API 固定头集合
type TradingHeaders struct {
	CompatLevel string // X-EBAY-API-COMPATIBILITY-LEVEL
	DevName     string
	AppName     string
	CertName    string
	CallName    string
	SiteID      string
}

// BuildTradingRequest 通用交易 API 请求构建器
// 适用方：PublishService 等所有走 XML 交易流的服务
// 职责：统一封装 eBay 交易 API 的固定头集合
func BuildTradingRequest(ctx context.Context, endpoint string, xmlBody []byte, h TradingHeaders) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(xmlBody))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", h.CompatLevel)
	req.Header.Set("X-EBAY-API-DEV-NAME", h.DevName)
	req.Header.Set("X-EBAY-API-APP-NAME", h.AppName)
	req.Header.Set("X-EBAY-API-CERT-NAME", h.CertName)
	req.Header.Set("X-EBAY-API-CALL-NAME", h.CallName)
	req.Header.Set("X-EBAY-API-SITEID", h.SiteID)

	return req, nil
}
