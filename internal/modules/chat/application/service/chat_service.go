package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	adminService "TutorHub/internal/modules/admin/application/service"
	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	adminRepository "TutorHub/internal/modules/admin/domain/repository"
	agentEntity "TutorHub/internal/modules/agent/domain/entity"
	agentRepository "TutorHub/internal/modules/agent/domain/repository"
	"TutorHub/internal/modules/chat/application/dto/request"
	"TutorHub/internal/modules/chat/application/dto/respond"
	"TutorHub/internal/modules/chat/domain/entity"
	"TutorHub/internal/modules/chat/domain/repository"
	"TutorHub/internal/modules/chat/infrastructure/provider"
	"TutorHub/internal/modules/chat/infrastructure/relay"
	"TutorHub/pkg/back"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/mq"
	"TutorHub/pkg/util"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
)

var (
	errMissingParams       = xerr.New(xerr.BadRequest, "缺少必填参数：agent_id, messages")
	errInvalidRole         = xerr.New(xerr.BadRequest, "消息角色无效")
	errAgentNotFound       = xerr.New(xerr.NotFound, "智能体不存在")
	errAgentForbidden      = xerr.New(xerr.Forbidden, "无权限使用该智能体")
	errMissingServiceID    = xerr.New(xerr.NoModelConfigured, "模型未配置知识库服务 ID")
	errUnsupportedProvider = xerr.New(xerr.NoModelConfigured, "不支持的模型类型")
	errMissingHistoryID    = xerr.New(xerr.BadRequest, "缺少 history_id 参数")
	errHistoryNotFound     = xerr.New(xerr.NotFound, "对话记录不存在")
	errHistoryForbidden    = xerr.New(xerr.Forbidden, "无权限删除该对话记录")
)

const (
	ModeSync   = "sync"
	ModeStream = "stream"

	defaultEventTimeout = 3 * time.Second
)

// Completer 模型调用，provider.Dispatcher 为默认实现
type Completer interface {
	Complete(ctx context.Context, req provider.Request) (*provider.Completion, error)
	Stream(ctx context.Context, req provider.Request) (io.ReadCloser, error)
}

type Options struct {
	DefaultMaxTokens   int
	DefaultTemperature float64
	EventTopic         string
	// EventTimeout 单次事件发布的上限，超时只记日志
	EventTimeout time.Duration
}

// ChatCompletedEvent 每次对话完成后发布到 kafka
type ChatCompletedEvent struct {
	UserID    string         `json:"user_id"`
	AgentID   string         `json:"agent_id"`
	ModelID   string         `json:"model_id"`
	ModelType string         `json:"model_type"`
	Mode      string         `json:"mode"`
	Usage     map[string]any `json:"usage,omitempty"`
	CreatedAt int64          `json:"created_at"`
}

// ChatService 智能体对话：非流式、流式转发与历史记录
type ChatService interface {
	SendMessage(ctx context.Context, id scope.Identity, req request.SendMessageRequest) (*respond.SendMessageRespond, error)
	// SendMessageStream 校验通过后把上游流转发到 sink；出错且 sink 未结束时由调用方补发错误帧
	SendMessageStream(ctx context.Context, id scope.Identity, req request.SendMessageRequest, sink relay.Sink) error
	GetHistory(ctx context.Context, id scope.Identity, req request.GetHistoryRequest) (*back.PageData, error)
	DeleteHistory(ctx context.Context, id scope.Identity, historyID string) error
}

type chatServiceImpl struct {
	agents    agentRepository.AgentRepository
	models    adminRepository.ModelRepository
	history   repository.HistoryRepository
	access    accessService.AccessService
	completer Completer
	publisher mq.Publisher
	opts      Options
}

func NewChatService(
	agents agentRepository.AgentRepository,
	models adminRepository.ModelRepository,
	history repository.HistoryRepository,
	access accessService.AccessService,
	completer Completer,
	publisher mq.Publisher,
	opts Options,
) ChatService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	if opts.DefaultMaxTokens <= 0 {
		opts.DefaultMaxTokens = agentEntity.DefaultMaxTokens
	}
	if opts.DefaultTemperature <= 0 {
		opts.DefaultTemperature = agentEntity.DefaultTemperature
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = defaultEventTimeout
	}
	return &chatServiceImpl{
		agents:    agents,
		models:    models,
		history:   history,
		access:    access,
		completer: completer,
		publisher: publisher,
		opts:      opts,
	}
}

// prepared 校验通过后的一次调用
type prepared struct {
	agent *agentEntity.Agent
	model *adminEntity.ModelConfig
	req   provider.Request
}

// prepare 依次校验参数、取智能体、鉴权、取模型，全部在外部调用前完成
func (s *chatServiceImpl) prepare(ctx context.Context, id scope.Identity, req request.SendMessageRequest) (*prepared, error) {
	if !id.Authenticated() {
		return nil, xerr.ErrUnauthenticated
	}
	agentID := strings.TrimSpace(req.AgentID)
	if agentID == "" || len(req.Messages) == 0 {
		return nil, errMissingParams
	}
	for _, m := range req.Messages {
		switch m.Role {
		case entity.RoleSystem, entity.RoleUser, entity.RoleAssistant:
		default:
			return nil, errInvalidRole
		}
	}

	agent, err := s.agents.GetAgentByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, errAgentNotFound
	}
	if err := s.access.AuthorizeRecord(id, agent); err != nil {
		if errors.Is(err, xerr.ErrForbidden) {
			return nil, errAgentForbidden
		}
		return nil, err
	}

	m, err := adminService.LookupModel(ctx, s.models, agent.ModelID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, xerr.ErrNoModelConfigured
	}
	kind := m.ProviderKind()
	if kind == "" {
		return nil, errUnsupportedProvider
	}
	serviceID := m.VendorServiceID
	if serviceID == "" {
		serviceID = agent.VendorServiceID
	}
	if kind == adminEntity.ProviderVendorKnowledgeBase && serviceID == "" {
		return nil, errMissingServiceID
	}

	maxTokens := agent.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.opts.DefaultMaxTokens
	}
	temperature := agent.Temperature
	if temperature <= 0 {
		temperature = s.opts.DefaultTemperature
	}

	return &prepared{
		agent: agent,
		model: m,
		req: provider.Request{
			Kind:            kind,
			Endpoint:        m.APIURL,
			APIKey:          m.APIKey,
			Model:           m.Name,
			VendorServiceID: serviceID,
			SystemPrompt:    agent.SystemPrompt,
			Messages:        req.Messages,
			MaxTokens:       maxTokens,
			Temperature:     temperature,
		},
	}, nil
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, id scope.Identity, req request.SendMessageRequest) (*respond.SendMessageRespond, error) {
	p, err := s.prepare(ctx, id, req)
	if err != nil {
		return nil, err
	}

	completion, err := s.completer.Complete(ctx, p.req)
	if err != nil {
		zlog.Error("chat completion failed", zap.Error(err), zap.String("uid", id.ID), zap.String("agent_id", p.agent.ID))
		return nil, upstreamCodeError(err)
	}

	record := &entity.ChatHistory{
		ID:        util.GenerateUUID(),
		UserID:    id.ID,
		AgentID:   p.agent.ID,
		Messages:  p.req.Full(),
		Response:  completion.Content,
		Usage:     completion.Usage,
		CreatedAt: time.Now(),
	}
	if err := s.history.AppendHistory(ctx, record); err != nil {
		return nil, err
	}

	s.publishCompleted(id, p, ModeSync, completion.Usage)
	return &respond.SendMessageRespond{Content: completion.Content, Usage: completion.Usage}, nil
}

func (s *chatServiceImpl) SendMessageStream(ctx context.Context, id scope.Identity, req request.SendMessageRequest, sink relay.Sink) error {
	p, err := s.prepare(ctx, id, req)
	if err != nil {
		return err
	}

	body, err := s.completer.Stream(ctx, p.req)
	if err != nil {
		zlog.Error("chat stream dispatch failed", zap.Error(err), zap.String("uid", id.ID), zap.String("agent_id", p.agent.ID))
		return upstreamCodeError(err)
	}
	// 调用方断开后关闭上游连接，不再继续读取
	defer body.Close()

	if err := relay.Relay(ctx, body, sink); err != nil {
		zlog.Warn("chat stream relay interrupted", zap.Error(err), zap.String("uid", id.ID), zap.String("agent_id", p.agent.ID))
		return xerr.Newf(xerr.UpstreamError, "%s: %s", xerr.ErrUpstream.Message, err.Error())
	}

	s.publishCompleted(id, p, ModeStream, nil)
	return nil
}

func (s *chatServiceImpl) GetHistory(ctx context.Context, id scope.Identity, req request.GetHistoryRequest) (*back.PageData, error) {
	if !id.Authenticated() {
		return nil, xerr.ErrUnauthenticated
	}
	where := []filter.Expr{filter.Eq{Field: "user_id", Value: id.ID}}
	if agentID := strings.TrimSpace(req.AgentID); agentID != "" {
		where = append(where, filter.Eq{Field: "agent_id", Value: agentID})
	}

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	records, total, err := s.history.ListHistory(ctx, filter.All(where...), docstore.Page(page, pageSize, "created_at desc"))
	if err != nil {
		return nil, err
	}
	items := make([]respond.HistoryItem, 0, len(records))
	for i := range records {
		items = append(items, respond.NewHistoryItem(&records[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *chatServiceImpl) DeleteHistory(ctx context.Context, id scope.Identity, historyID string) error {
	historyID = strings.TrimSpace(historyID)
	if historyID == "" {
		return errMissingHistoryID
	}
	if !id.Authenticated() {
		return xerr.ErrUnauthenticated
	}
	record, err := s.history.GetHistoryByID(ctx, historyID)
	if err != nil {
		return err
	}
	if record == nil {
		return errHistoryNotFound
	}
	if record.UserID != id.ID && !id.IsAdmin {
		return errHistoryForbidden
	}
	return s.history.DeleteHistory(ctx, historyID)
}

// publishCompleted 事件发布失败只记日志
func (s *chatServiceImpl) publishCompleted(id scope.Identity, p *prepared, mode string, usage map[string]any) {
	msg, err := mq.NewJSONMessage(s.opts.EventTopic, id.ID, ChatCompletedEvent{
		UserID:    id.ID,
		AgentID:   p.agent.ID,
		ModelID:   p.model.ID,
		ModelType: p.req.Kind,
		Mode:      mode,
		Usage:     usage,
		CreatedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		zlog.Warn("encode chat event failed", zap.Error(err))
		return
	}
	if msg.Topic == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.EventTimeout)
	defer cancel()
	if _, err := s.publisher.Publish(ctx, msg); err != nil {
		zlog.Warn("publish chat event failed", zap.Error(err), zap.String("topic", msg.Topic), zap.String("agent_id", p.agent.ID))
	}
}

// upstreamCodeError 上游失败统一为 UpstreamError，保留状态码与响应体
func upstreamCodeError(err error) error {
	var upstream *provider.UpstreamError
	switch {
	case errors.As(err, &upstream):
		return xerr.Newf(xerr.UpstreamError, "%s: %d %s", xerr.ErrUpstream.Message, upstream.Status, upstream.Body)
	case errors.Is(err, provider.ErrUnparseable):
		return xerr.ErrUnparseableResponse
	default:
		var ce *xerr.CodeError
		if errors.As(err, &ce) {
			return ce
		}
		return xerr.Newf(xerr.UpstreamError, "%s: %s", xerr.ErrUpstream.Message, err.Error())
	}
}
