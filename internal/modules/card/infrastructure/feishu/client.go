// Package feishu 调用飞书开放平台多维表格接口。tenant_access_token 按 app_id 缓存，过期前按安全余量懒刷新。
package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"TutorHub/pkg/zlog"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkauth "github.com/larksuite/oapi-sdk-go/v3/service/auth/v3"
	larkbitable "github.com/larksuite/oapi-sdk-go/v3/service/bitable/v1"
)

const (
	DefaultBaseURL       = "https://open.feishu.cn"
	DefaultRefreshMargin = 300 * time.Second
	DefaultPageSize      = 20
)

// Config 客户端配置
type Config struct {
	// BaseURL 只含域名，/open-apis 前缀由 SDK 拼接
	BaseURL       string
	RefreshMargin time.Duration
	HTTPClient    *http.Client
	// Now 测试时注入时钟
	Now func() time.Time
}

// APIError 飞书返回 code != 0 或非 2xx
type APIError struct {
	Status  int
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feishu api error: status=%d code=%d msg=%s", e.Status, e.Code, e.Message)
}

// Client 飞书客户端，持有每个应用的凭据缓存
type Client struct {
	cfg Config

	mu     sync.Mutex
	tokens map[string]*CachedToken
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/open-apis")
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = DefaultRefreshMargin
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{cfg: cfg, tokens: make(map[string]*CachedToken)}
}

// Credential 应用凭据
type Credential struct {
	AppID     string
	AppSecret string
}

// Token 返回 app_id 对应的缓存；密钥变更后重建
func (c *Client) Token(cred Credential) *CachedToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tokens[cred.AppID]
	if !ok || t.cred.AppSecret != cred.AppSecret {
		t = &CachedToken{client: c, cred: cred, api: c.newAPI(cred)}
		c.tokens[cred.AppID] = t
	}
	return t
}

// newAPI SDK 自带的 token 缓存关闭，令牌统一由 CachedToken 管理
func (c *Client) newAPI(cred Credential) *lark.Client {
	return lark.NewClient(cred.AppID, cred.AppSecret,
		lark.WithEnableTokenCache(false),
		lark.WithOpenBaseUrl(c.cfg.BaseURL),
		lark.WithHttpClient(c.cfg.HTTPClient),
		lark.WithLogger(sdkLogger{}),
		lark.WithLogLevel(larkcore.LogLevelWarn),
	)
}

// CachedToken tenant_access_token 缓存
type CachedToken struct {
	client *Client
	cred   Credential
	api    *lark.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// GetValidToken 未过期直接返回，否则重新获取
func (t *CachedToken) GetValidToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.client.cfg.Now()
	if t.token != "" && now.Before(t.expiresAt) {
		return t.token, nil
	}

	req := larkauth.NewInternalTenantAccessTokenReqBuilder().
		Body(larkauth.NewInternalTenantAccessTokenReqBodyBuilder().
			AppId(t.cred.AppID).
			AppSecret(t.cred.AppSecret).
			Build()).
		Build()
	resp, err := t.api.Auth.V3.TenantAccessToken.Internal(ctx, req)
	if err != nil {
		return "", fmt.Errorf("feishu tenant token: %w", err)
	}
	if !resp.Success() {
		return "", &APIError{Status: resp.StatusCode, Code: resp.Code, Message: resp.Msg}
	}
	// 该接口的令牌字段不在 data 里，SDK 响应结构未包含，从原始报文取
	var out struct {
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int64  `json:"expire"`
	}
	if err := json.Unmarshal(resp.RawBody, &out); err != nil {
		return "", fmt.Errorf("decode feishu tenant token: %w", err)
	}
	t.token = out.TenantAccessToken
	t.expiresAt = now.Add(time.Duration(out.Expire)*time.Second - t.client.cfg.RefreshMargin)
	return t.token, nil
}

// Expiry 当前缓存的过期时间
func (t *CachedToken) Expiry() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expiresAt
}

// RecordQuery 记录分页查询参数，Filter 为飞书过滤表达式
type RecordQuery struct {
	PageToken string
	PageSize  int
	Filter    string
}

// GetRecords 透传飞书返回的 data 字段
func (c *Client) GetRecords(ctx context.Context, cred Credential, appToken, tableID string, q RecordQuery) (json.RawMessage, error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	tok := c.Token(cred)
	token, err := tok.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}

	b := larkbitable.NewListAppTableRecordReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		PageSize(q.PageSize)
	if q.PageToken != "" {
		b.PageToken(q.PageToken)
	}
	if q.Filter != "" {
		b.Filter(q.Filter)
	}
	resp, err := tok.api.Bitable.V1.AppTableRecord.List(ctx, b.Build(), larkcore.WithTenantAccessToken(token))
	if err != nil {
		return nil, fmt.Errorf("feishu list records: %w", err)
	}
	if !resp.Success() {
		return nil, &APIError{Status: resp.StatusCode, Code: resp.Code, Message: resp.Msg}
	}
	return rawData(resp.ApiResp)
}

// GetFields 表格字段列表
func (c *Client) GetFields(ctx context.Context, cred Credential, appToken, tableID string) (json.RawMessage, error) {
	tok := c.Token(cred)
	token, err := tok.GetValidToken(ctx)
	if err != nil {
		return nil, err
	}

	req := larkbitable.NewListAppTableFieldReqBuilder().
		AppToken(appToken).
		TableId(tableID).
		Build()
	resp, err := tok.api.Bitable.V1.AppTableField.List(ctx, req, larkcore.WithTenantAccessToken(token))
	if err != nil {
		return nil, fmt.Errorf("feishu list fields: %w", err)
	}
	if !resp.Success() {
		return nil, &APIError{Status: resp.StatusCode, Code: resp.Code, Message: resp.Msg}
	}
	return rawData(resp.ApiResp)
}

// rawData 原样取出 data，前端按飞书原始结构解析
func rawData(resp *larkcore.ApiResp) (json.RawMessage, error) {
	var out struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.RawBody, &out); err != nil {
		return nil, fmt.Errorf("decode feishu response: %w", err)
	}
	return out.Data, nil
}

// sdkLogger 把 SDK 日志接到 zlog
type sdkLogger struct{}

func (sdkLogger) Debug(_ context.Context, args ...interface{}) { zlog.Debug(fmt.Sprint(args...)) }
func (sdkLogger) Info(_ context.Context, args ...interface{})  { zlog.Info(fmt.Sprint(args...)) }
func (sdkLogger) Warn(_ context.Context, args ...interface{})  { zlog.Warn(fmt.Sprint(args...)) }
func (sdkLogger) Error(_ context.Context, args ...interface{}) { zlog.Error(fmt.Sprint(args...)) }
