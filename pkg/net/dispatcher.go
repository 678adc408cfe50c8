package net

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RequestFactory 每次尝试重新构建请求
// Body 是一次性的 Reader，重试必须拿到新的 Request
type RequestFactory func(ctx context.Context) (*http.Request, error)

// Dispatcher 网络调度器 (通用组件)
type Dispatcher interface {
	// Send 发送 HTTP 请求，按策略对连接层失败重试
	// 返回的 Body 已整体读出，调用方无需 Close
	Send(ctx context.Context, factory RequestFactory) (int, []byte, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 私有，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	policy RetryPolicy
	client *http.Client
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher(policy RetryPolicy) Dispatcher {
	return &httpDispatcher{
		policy: policy,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
			// 单次超时由策略的 PerAttemptTimeout 通过 ctx 控制
		},
	}
}

func (d *httpDispatcher) Send(ctx context.Context, factory RequestFactory) (int, []byte, error) {
	var statusCode int
	var body []byte

	err := d.policy.Do(ctx, func(attemptCtx context.Context) error {
		req, err := factory(attemptCtx)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		// 拿到应答就算传输成功，状态码交给上层判定
		statusCode = resp.StatusCode
		body = data
		return nil
	})

	if err != nil {
		return 0, nil, fmt.Errorf("request failed after retries: %w", err)
	}

	return statusCode, body, nil
}
