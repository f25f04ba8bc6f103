package provider

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
	"time"

	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/chat/domain/entity"

	arkModel "github.com/cloudwego/eino-ext/components/model/ark"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"
	arkRuntimeModel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

const (
	chatCompletionsPath = "/chat/completions"
	defaultArkBaseURL   = "https://ark.cn-beijing.volces.com/api/v3"
	errorBodyLimit      = 4096
)

// Request 一次补全调用所需的全部参数，由智能体与模型配置拼出
type Request struct {
	Kind            string
	Endpoint        string
	APIKey          string
	Model           string
	VendorServiceID string
	SystemPrompt    string
	// Messages 调用方传入的对话，不含合成的 system 消息
	Messages    []entity.Message
	MaxTokens   int
	Temperature float64
}

// Full system 消息在前，后接调用方对话
func (r Request) Full() []entity.Message {
	out := make([]entity.Message, 0, len(r.Messages)+1)
	out = append(out, entity.Message{Role: entity.RoleSystem, Content: r.SystemPrompt})
	return append(out, r.Messages...)
}

// Completion 非流式调用的归一化结果
type Completion struct {
	Content string
	Usage   map[string]any
}

// UpstreamError 上游返回非 2xx
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

// ChatModelFactory 按供应方类型构造 eino 模型，测试中可替换
type ChatModelFactory func(ctx context.Context, req Request, baseURL string, timeout time.Duration) (model.BaseChatModel, error)

type Config struct {
	Timeout            time.Duration
	VendorHistoryLimit int
	HTTPClient         *http.Client
	NewChatModel       ChatModelFactory
}

// Dispatcher 按模型类型分发补全请求
type Dispatcher struct {
	timeout      time.Duration
	historyLimit int
	httpClient   *http.Client
	newChatModel ChatModelFactory
}

func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 600 * time.Second
	}
	if cfg.VendorHistoryLimit <= 0 {
		cfg.VendorHistoryLimit = 10
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.NewChatModel == nil {
		cfg.NewChatModel = NewChatModel
	}
	return &Dispatcher{
		timeout:      cfg.Timeout,
		historyLimit: cfg.VendorHistoryLimit,
		httpClient:   cfg.HTTPClient,
		newChatModel: cfg.NewChatModel,
	}
}

// NewChatModel 默认工厂：openai 兼容走 eino openai，ark 走 eino ark，单次调用不重试
func NewChatModel(ctx context.Context, req Request, baseURL string, timeout time.Duration) (model.BaseChatModel, error) {
	switch req.Kind {
	case adminEntity.ProviderOpenAICompatible:
		return openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
			APIKey:  req.APIKey,
			Model:   req.Model,
			BaseURL: baseURL,
			Timeout: timeout,
		})
	case adminEntity.ProviderArk:
		retryTimes := 0
		return arkModel.NewChatModel(ctx, &arkModel.ChatModelConfig{
			APIKey:     req.APIKey,
			Model:      req.Model,
			BaseURL:    baseURL,
			Timeout:    &timeout,
			RetryTimes: &retryTimes,
		})
	default:
		return nil, fmt.Errorf("no chat model for provider kind %q", req.Kind)
	}
}

// Complete 非流式调用
func (d *Dispatcher) Complete(ctx context.Context, req Request) (*Completion, error) {
	switch req.Kind {
	case adminEntity.ProviderVendorKnowledgeBase:
		return d.completeRaw(ctx, req.Endpoint, req.APIKey, vendorHeaders("application/json"), d.vendorBody(req, false))
	case adminEntity.ProviderOpenAICompatible:
		base, ok := splitEndpoint(req.Endpoint)
		if !ok {
			// 非标准 OpenAI 路径，直接 POST 并按多种响应格式解析
			return d.completeRaw(ctx, req.Endpoint, req.APIKey, jsonHeaders(), chatBody(req, false))
		}
		return d.generate(ctx, req, base)
	case adminEntity.ProviderArk:
		return d.generate(ctx, req, arkBaseURL(req.Endpoint))
	default:
		return nil, fmt.Errorf("unsupported provider kind %q", req.Kind)
	}
}

// Stream 流式调用，返回上游 SSE 响应体，由调用方关闭
func (d *Dispatcher) Stream(ctx context.Context, req Request) (io.ReadCloser, error) {
	var (
		url     string
		headers map[string]string
		body    any
	)
	switch req.Kind {
	case adminEntity.ProviderVendorKnowledgeBase:
		url, headers, body = req.Endpoint, vendorHeaders("text/event-stream"), d.vendorBody(req, true)
	case adminEntity.ProviderOpenAICompatible:
		url, headers, body = req.Endpoint, jsonHeaders(), chatBody(req, true)
	case adminEntity.ProviderArk:
		url, headers, body = arkBaseURL(req.Endpoint)+chatCompletionsPath, jsonHeaders(), chatBody(req, true)
	default:
		return nil, fmt.Errorf("unsupported provider kind %q", req.Kind)
	}

	resp, err := d.post(ctx, url, req.APIKey, headers, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, upstreamError(resp)
	}
	return resp.Body, nil
}

func (d *Dispatcher) generate(ctx context.Context, req Request, baseURL string) (*Completion, error) {
	cm, err := d.newChatModel(ctx, req, baseURL, d.timeout)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}

	full := req.Full()
	input := make([]*schema.Message, 0, len(full))
	for _, m := range full {
		input = append(input, &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content})
	}

	out, err := cm.Generate(ctx, input,
		model.WithMaxTokens(req.MaxTokens),
		model.WithTemperature(float32(req.Temperature)),
	)
	if err != nil {
		if upstream := sdkUpstreamError(err); upstream != nil {
			return nil, upstream
		}
		return nil, fmt.Errorf("generate: %w", err)
	}
	if out == nil {
		return nil, ErrUnparseable
	}

	usage := map[string]any{}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		usage["prompt_tokens"] = out.ResponseMeta.Usage.PromptTokens
		usage["completion_tokens"] = out.ResponseMeta.Usage.CompletionTokens
		usage["total_tokens"] = out.ResponseMeta.Usage.TotalTokens
	}
	return &Completion{Content: out.Content, Usage: usage}, nil
}

func (d *Dispatcher) completeRaw(ctx context.Context, url, apiKey string, headers map[string]string, body any) (*Completion, error) {
	resp, err := d.post(ctx, url, apiKey, headers, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError(resp)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	return ParseCompletion(raw)
}

func (d *Dispatcher) post(ctx context.Context, url, apiKey string, headers map[string]string, body any) (*http.Response, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}
	return d.httpClient.Do(httpReq)
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}

func vendorHeaders(accept string) map[string]string {
	return map[string]string{
		"Accept":       accept,
		"Content-Type": "application/json;charset=UTF-8",
	}
}

type chatPayload struct {
	Model       string           `json:"model"`
	Messages    []entity.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	Stream      bool             `json:"stream,omitempty"`
}

func chatBody(req Request, stream bool) chatPayload {
	return chatPayload{
		Model:       req.Model,
		Messages:    req.Full(),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
}

type vendorPayload struct {
	ServiceResourceID string           `json:"service_resource_id"`
	Messages          []entity.Message `json:"messages"`
	Stream            bool             `json:"stream"`
}

// vendorBody 知识库接口只接收最近若干条对话，不带 system
func (d *Dispatcher) vendorBody(req Request, stream bool) vendorPayload {
	msgs := req.Messages
	if len(msgs) > d.historyLimit {
		msgs = msgs[len(msgs)-d.historyLimit:]
	}
	recent := make([]entity.Message, 0, len(msgs))
	for _, m := range msgs {
		recent = append(recent, entity.Message{Role: m.Role, Content: m.Content})
	}
	return vendorPayload{
		ServiceResourceID: req.VendorServiceID,
		Messages:          recent,
		Stream:            stream,
	}
}

// splitEndpoint 去掉 /chat/completions 得到 base url，不符合该格式时 ok=false
func splitEndpoint(endpoint string) (string, bool) {
	u := strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if !strings.HasSuffix(u, chatCompletionsPath) {
		return "", false
	}
	return strings.TrimSuffix(u, chatCompletionsPath), true
}

func arkBaseURL(endpoint string) string {
	if base, ok := splitEndpoint(endpoint); ok {
		return base
	}
	if u := strings.TrimRight(strings.TrimSpace(endpoint), "/"); u != "" {
		return u
	}
	return defaultArkBaseURL
}

func upstreamError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

// sdkUpstreamError 从 eino 底层 SDK 的错误里取出上游状态码与报文，不是上游非 2xx 时返回 nil
func sdkUpstreamError(err error) *UpstreamError {
	var (
		openaiAPI *openaiModel.APIError
		openaiReq *goopenai.RequestError
		arkAPI    *arkRuntimeModel.APIError
		arkReq    *arkRuntimeModel.RequestError
	)
	switch {
	case errors.As(err, &openaiAPI):
		return newUpstreamError(openaiAPI.HTTPStatusCode, openaiAPI.Message)
	case errors.As(err, &openaiReq):
		return newUpstreamError(openaiReq.HTTPStatusCode, string(openaiReq.Body))
	case errors.As(err, &arkAPI):
		return newUpstreamError(arkAPI.HTTPStatusCode, arkAPI.Message)
	case errors.As(err, &arkReq):
		// ark 把连接失败也包装成 500 的 RequestError
		var urlErr *url.Error
		if arkReq.Err == nil || errors.As(arkReq.Err, &urlErr) {
			return nil
		}
		return newUpstreamError(arkReq.HTTPStatusCode, arkReq.Err.Error())
	}
	return nil
}

func newUpstreamError(status int, body string) *UpstreamError {
	if status < 300 {
		return nil
	}
	if len(body) > errorBodyLimit {
		body = body[:errorBodyLimit]
	}
	return &UpstreamError{Status: status, Body: strings.TrimSpace(body)}
}
