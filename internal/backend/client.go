package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultPageSize = 1000
	maxCatalogPages = 1000
	maxErrorBody    = 64 << 10
)

// Options 后端客户端配置
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	SessionCookie   string
	SessionCacheTTL time.Duration
	PageSize        int
	Transport       http.RoundTripper
}

// Client 远端商城后端客户端（目录、订单、会话）
type Client struct {
	baseURL    string
	httpClient *http.Client
	pageSize   int
	sessionTTL time.Duration

	mu       sync.RWMutex
	cookies  map[string]string
	user     *models.SessionUser
	userAt   time.Time
	userNone bool
}

// NewClient 创建后端客户端，传输层统一接入 otelhttp
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(base),
		},
		pageSize:   pageSize,
		sessionTTL: opts.SessionCacheTTL,
		cookies:    map[string]string{},
	}
	if strings.TrimSpace(opts.SessionCookie) != "" {
		if err := c.SetSession(opts.SessionCookie); err != nil {
			logger.Warnw("backend_session_cookie_invalid", "error", err)
		}
	}
	return c
}

// BaseURL 后端基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do 发送请求并解码 JSON 响应，out 为 nil 时丢弃响应体
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body interface{}, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: marshal request failed: %v", ErrResponseInvalid, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("%w: build request failed: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set(constants.HeaderContentType, "application/json")
	}
	if requestID := logger.RequestID(ctx); requestID != "" {
		req.Header.Set(constants.HeaderRequestID, requestID)
	}
	c.decorate(req)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.C(ctx).Warnw("backend_request_failed",
			"method", method,
			"endpoint", endpoint,
			"error", err,
		)
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, endpoint, err)
	}
	defer resp.Body.Close()
	c.absorbCookies(resp)

	logger.C(ctx).Debugw("backend_request",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"latency", time.Since(started),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response failed: %v", ErrTransport, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s failed: %v", ErrResponseInvalid, endpoint, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apiErr
	}
	if raw[0] == '{' {
		var body APIError
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Message
			apiErr.Path = body.Path
			apiErr.ValidationErrors = body.ValidationErrors
			return apiErr
		}
	}
	// 部分接口直接返回纯文本错误
	apiErr.Message = string(raw)
	return apiErr
}

// decorate 附加会话 Cookie 与 CSRF 头
func (c *Client) decorate(req *http.Request) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		if token, ok := c.cookies[constants.CookieXSRFToken]; ok && token != "" {
			if decoded, err := url.QueryUnescape(token); err == nil {
				token = decoded
			}
			req.Header.Set(constants.HeaderXSRFToken, token)
		}
	}
}

// absorbCookies 合并响应下发的 Cookie（如刷新后的 XSRF-TOKEN）
func (c *Client) absorbCookies(resp *http.Response) {
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ck := range cookies {
		if ck.MaxAge < 0 || (ck.Value == "" && !ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
}

func isNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
