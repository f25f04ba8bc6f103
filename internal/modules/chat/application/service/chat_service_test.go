package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	agentEntity "TutorHub/internal/modules/agent/domain/entity"
	"TutorHub/internal/modules/chat/application/dto/request"
	"TutorHub/internal/modules/chat/application/dto/respond"
	"TutorHub/internal/modules/chat/domain/entity"
	"TutorHub/internal/modules/chat/infrastructure/provider"
	"TutorHub/internal/modules/chat/infrastructure/relay"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/mq"
	"TutorHub/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

type fakeAgentRepo struct {
	agents map[string]*agentEntity.Agent
}

func (r *fakeAgentRepo) GetAgentByID(_ context.Context, id string) (*agentEntity.Agent, error) {
	if a, ok := r.agents[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeAgentRepo) ListAgents(context.Context, filter.Expr, docstore.FindOptions) ([]agentEntity.Agent, int64, error) {
	return nil, 0, nil
}
func (r *fakeAgentRepo) CreateAgent(context.Context, *agentEntity.Agent) error     { return nil }
func (r *fakeAgentRepo) UpdateAgent(context.Context, string, map[string]any) error { return nil }
func (r *fakeAgentRepo) DisableAgent(context.Context, string) error                { return nil }

type fakeModelRepo struct {
	models []adminEntity.ModelConfig
}

func (r *fakeModelRepo) GetModelByID(_ context.Context, id string) (*adminEntity.ModelConfig, error) {
	for i := range r.models {
		if r.models[i].ID == id {
			return &r.models[i], nil
		}
	}
	return nil, nil
}

func (r *fakeModelRepo) GetModelByOriginalID(_ context.Context, originalID string) (*adminEntity.ModelConfig, error) {
	for i := range r.models {
		if r.models[i].OriginalID == originalID {
			return &r.models[i], nil
		}
	}
	return nil, nil
}

func (r *fakeModelRepo) ListModels(context.Context) ([]adminEntity.ModelConfig, error) { return r.models, nil }
func (r *fakeModelRepo) CreateModel(context.Context, *adminEntity.ModelConfig) error   { return nil }
func (r *fakeModelRepo) UpdateModel(context.Context, string, map[string]any) error     { return nil }
func (r *fakeModelRepo) DeleteModel(context.Context, string) error                     { return nil }

type fakeHistoryRepo struct {
	records map[string]*entity.ChatHistory
	appends int
	deleted []string
}

func (r *fakeHistoryRepo) AppendHistory(_ context.Context, h *entity.ChatHistory) error {
	r.appends++
	cp := *h
	r.records[h.ID] = &cp
	return nil
}

func (r *fakeHistoryRepo) GetHistoryByID(_ context.Context, id string) (*entity.ChatHistory, error) {
	if h, ok := r.records[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeHistoryRepo) ListHistory(_ context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.ChatHistory, int64, error) {
	var out []entity.ChatHistory
	for _, h := range r.records {
		if filter.Match(where, h) {
			out = append(out, *h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if opts.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, total, nil
}

func (r *fakeHistoryRepo) DeleteHistory(_ context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	delete(r.records, id)
	return nil
}

type fakeCompleter struct {
	calls      int
	lastReq    provider.Request
	completion *provider.Completion
	stream     string
	err        error
	body       *trackedBody
}

func (f *fakeCompleter) Complete(_ context.Context, req provider.Request) (*provider.Completion, error) {
	f.calls++
	f.lastReq = req
	return f.completion, f.err
}

func (f *fakeCompleter) Stream(_ context.Context, req provider.Request) (io.ReadCloser, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	f.body = &trackedBody{Reader: strings.NewReader(f.stream)}
	return f.body, nil
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type fakePublisher struct {
	msgs []mq.Message
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, msg mq.Message) (mq.PublishResult, error) {
	p.msgs = append(p.msgs, msg)
	return mq.PublishResult{}, p.err
}

func (p *fakePublisher) Close() error { return nil }

type frameSink struct {
	frames []string
}

func (s *frameSink) Data(line string) error { s.frames = append(s.frames, line); return nil }
func (s *frameSink) Done() error            { s.frames = append(s.frames, relay.DoneMarker); return nil }
func (s *frameSink) Fail(msg string) error  { s.frames = append(s.frames, "error:"+msg); return nil }

var (
	lecturer = scope.Identity{ID: "u1", HomeCity: "Shanghai", HomeDepartment: "Teaching"}
	admin    = scope.Identity{ID: "a1", IsAdmin: true}
)

type fixture struct {
	svc       ChatService
	agents    *fakeAgentRepo
	models    *fakeModelRepo
	history   *fakeHistoryRepo
	completer *fakeCompleter
	publisher *fakePublisher
}

func newFixture() *fixture {
	mk := func(id, modelID string, cities, depts []string) *agentEntity.Agent {
		return &agentEntity.Agent{
			ID: id, Name: id, SystemPrompt: "你是一名教研助手", ModelID: modelID,
			MaxTokens: 1024, Temperature: 0.3,
			Cities: datatypes.JSONSlice[string](cities), Departments: datatypes.JSONSlice[string](depts),
			IsActive: true,
		}
	}
	f := &fixture{
		agents: &fakeAgentRepo{agents: map[string]*agentEntity.Agent{
			"dept":     mk("dept", "m-openai", []string{"Beijing"}, []string{"all"}),
			"sales":    mk("sales", "m-openai", []string{"Beijing"}, []string{"Sales"}),
			"legacy":   mk("legacy", "legacy-7", []string{"all"}, []string{"all"}),
			"nomodel":  mk("nomodel", "missing", []string{"all"}, []string{"all"}),
			"kb":       mk("kb", "m-kb", []string{"all"}, []string{"all"}),
			"kb-nosvc": mk("kb-nosvc", "m-kb-nosvc", []string{"all"}, []string{"all"}),
			"defaults": {ID: "defaults", SystemPrompt: "p", ModelID: "m-openai", Cities: []string{"all"}, Departments: []string{"all"}},
		}},
		models: &fakeModelRepo{models: []adminEntity.ModelConfig{
			{ID: "m-openai", Name: "gpt-4o-mini", ModelType: "openai", APIURL: "https://api.example.com/v1/chat/completions", APIKey: "sk-1"},
			{ID: "m-new", OriginalID: "legacy-7", Name: "qwen", ModelType: adminEntity.ProviderOpenAICompatible, APIURL: "https://q.example.com/v1/chat/completions"},
			{ID: "m-kb", Name: "kb", ModelType: "volcengine", APIURL: "https://kb.example.com/chat", VendorServiceID: "svc-9"},
			{ID: "m-kb-nosvc", Name: "kb", ModelType: "volcengine", APIURL: "https://kb.example.com/chat"},
		}},
		history:   &fakeHistoryRepo{records: map[string]*entity.ChatHistory{}},
		completer: &fakeCompleter{completion: &provider.Completion{Content: "好的", Usage: map[string]any{"total_tokens": 12}}},
		publisher: &fakePublisher{},
	}
	f.svc = NewChatService(f.agents, f.models, f.history, accessService.NewAccessService(), f.completer, f.publisher, Options{EventTopic: "chat.completed"})
	return f
}

func ask(agentID string) request.SendMessageRequest {
	return request.SendMessageRequest{AgentID: agentID, Messages: []entity.Message{{Role: entity.RoleUser, Content: "怎么备课？"}}}
}

func TestSendMessageAppendsHistoryOnce(t *testing.T) {
	f := newFixture()

	out, err := f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	require.NoError(t, err)
	assert.Equal(t, "好的", out.Content)
	assert.Equal(t, 12, out.Usage["total_tokens"])

	require.Equal(t, 1, f.history.appends)
	for _, h := range f.history.records {
		assert.Equal(t, "u1", h.UserID)
		assert.Equal(t, "dept", h.AgentID)
		require.Len(t, h.Messages, 2)
		assert.Equal(t, entity.Message{Role: entity.RoleSystem, Content: "你是一名教研助手"}, h.Messages[0])
		assert.Equal(t, "好的", h.Response)
	}

	req := f.completer.lastReq
	assert.Equal(t, adminEntity.ProviderOpenAICompatible, req.Kind)
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.InDelta(t, 0.3, req.Temperature, 1e-9)

	require.Len(t, f.publisher.msgs, 1)
	assert.Equal(t, "chat.completed", f.publisher.msgs[0].Topic)
	assert.Contains(t, string(f.publisher.msgs[0].Value), `"mode":"sync"`)
}

func TestSendMessageFailuresWriteNoHistory(t *testing.T) {
	cases := []struct {
		name     string
		id       scope.Identity
		req      request.SendMessageRequest
		upstream error
		code     int
		called   bool
	}{
		{name: "unauthenticated", id: scope.Identity{}, req: ask("dept"), code: xerr.Unauthorized},
		{name: "missing agent id", id: lecturer, req: request.SendMessageRequest{Messages: ask("x").Messages}, code: xerr.BadRequest},
		{name: "empty transcript", id: lecturer, req: request.SendMessageRequest{AgentID: "dept"}, code: xerr.BadRequest},
		{name: "bad role", id: lecturer, req: request.SendMessageRequest{AgentID: "dept", Messages: []entity.Message{{Role: "tool", Content: "x"}}}, code: xerr.BadRequest},
		{name: "agent missing", id: lecturer, req: ask("ghost"), code: xerr.NotFound},
		{name: "out of scope", id: lecturer, req: ask("sales"), code: xerr.Forbidden},
		{name: "no model", id: lecturer, req: ask("nomodel"), code: xerr.NoModelConfigured},
		{name: "kb without service id", id: lecturer, req: ask("kb-nosvc"), code: xerr.NoModelConfigured},
		{name: "upstream non-200", id: lecturer, req: ask("dept"), upstream: &provider.UpstreamError{Status: 502, Body: "bad gateway"}, code: xerr.UpstreamError, called: true},
		{name: "unparseable", id: lecturer, req: ask("dept"), upstream: provider.ErrUnparseable, code: xerr.UnparseableResponse, called: true},
		{name: "transport", id: lecturer, req: ask("dept"), upstream: errors.New("connection refused"), code: xerr.UpstreamError, called: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.completer.err = tc.upstream

			_, err := f.svc.SendMessage(context.Background(), tc.id, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, xerr.CodeOf(err))
			assert.Equal(t, 0, f.history.appends)
			assert.Empty(t, f.publisher.msgs)
			assert.Equal(t, tc.called, f.completer.calls > 0)
		})
	}
}

func TestSendMessageUpstreamErrorCarriesStatusAndBody(t *testing.T) {
	f := newFixture()
	f.completer.err = &provider.UpstreamError{Status: 429, Body: "rate limited"}

	_, err := f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	var ce *xerr.CodeError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Message, "429")
	assert.Contains(t, ce.Message, "rate limited")
}

func TestSendMessageFallbackModelLookup(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendMessage(context.Background(), lecturer, ask("legacy"))
	require.NoError(t, err)
	assert.Equal(t, "qwen", f.completer.lastReq.Model)
	assert.Equal(t, "https://q.example.com/v1/chat/completions", f.completer.lastReq.Endpoint)
}

func TestSendMessageVendorKnowledgeBase(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendMessage(context.Background(), lecturer, ask("kb"))
	require.NoError(t, err)
	assert.Equal(t, adminEntity.ProviderVendorKnowledgeBase, f.completer.lastReq.Kind)
	assert.Equal(t, "svc-9", f.completer.lastReq.VendorServiceID)
}

func TestSendMessageDefaultsGenerationParams(t *testing.T) {
	f := newFixture()

	_, err := f.svc.SendMessage(context.Background(), admin, ask("defaults"))
	require.NoError(t, err)
	assert.Equal(t, agentEntity.DefaultMaxTokens, f.completer.lastReq.MaxTokens)
	assert.InDelta(t, agentEntity.DefaultTemperature, f.completer.lastReq.Temperature, 1e-9)
}

func TestSendMessagePublishFailureIgnored(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	out, err := f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	require.NoError(t, err)
	assert.Equal(t, "好的", out.Content)
	assert.Equal(t, 1, f.history.appends)
}

// stalledPublisher 一直等到 ctx 结束，模拟 broker 无响应
type stalledPublisher struct{}

func (stalledPublisher) Publish(ctx context.Context, _ mq.Message) (mq.PublishResult, error) {
	<-ctx.Done()
	return mq.PublishResult{}, ctx.Err()
}

func (stalledPublisher) Close() error { return nil }

func TestSendMessageStalledBrokerBoundedByEventTimeout(t *testing.T) {
	f := newFixture()
	f.svc = NewChatService(f.agents, f.models, f.history, accessService.NewAccessService(), f.completer, stalledPublisher{}, Options{
		EventTopic:   "chat.completed",
		EventTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	out, err := f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	require.NoError(t, err)
	assert.Equal(t, "好的", out.Content)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 1, f.history.appends)
}

func TestSendMessageScopeScenario(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	require.NoError(t, err)

	f.agents.agents["dept"].Departments = datatypes.JSONSlice[string]{"Sales"}
	_, err = f.svc.SendMessage(context.Background(), lecturer, ask("dept"))
	assert.ErrorIs(t, err, xerr.ErrForbidden)

	_, err = f.svc.SendMessage(context.Background(), admin, ask("dept"))
	require.NoError(t, err)
}

func TestSendMessageStreamRelaysFrames(t *testing.T) {
	f := newFixture()
	f.completer.stream = "data: {\"choices\":[{\"delta\":{\"content\":\"好\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"的\"}}]}\n\n" +
		"data: [DONE]\n\n"
	sink := &frameSink{}

	require.NoError(t, f.svc.SendMessageStream(context.Background(), lecturer, ask("dept"), relay.NewGuard(sink)))
	assert.Equal(t, []string{
		`data: {"choices":[{"delta":{"content":"好"}}]}`,
		`data: {"choices":[{"delta":{"content":"的"}}]}`,
		relay.DoneMarker,
	}, sink.frames)
	assert.True(t, f.completer.body.closed)

	assert.Equal(t, 0, f.history.appends)
	require.Len(t, f.publisher.msgs, 1)
	assert.Contains(t, string(f.publisher.msgs[0].Value), `"mode":"stream"`)
}

func TestSendMessageStreamRejectsBeforeDispatch(t *testing.T) {
	f := newFixture()
	sink := &frameSink{}
	g := relay.NewGuard(sink)

	err := f.svc.SendMessageStream(context.Background(), lecturer, ask("sales"), g)
	assert.ErrorIs(t, err, xerr.ErrForbidden)
	assert.Equal(t, 0, f.completer.calls)
	assert.Empty(t, sink.frames)
	assert.False(t, g.Terminated())
}

func TestSendMessageStreamUpstreamFailure(t *testing.T) {
	f := newFixture()
	f.completer.err = &provider.UpstreamError{Status: 500, Body: "boom"}
	sink := &frameSink{}

	err := f.svc.SendMessageStream(context.Background(), lecturer, ask("dept"), relay.NewGuard(sink))
	assert.Equal(t, xerr.UpstreamError, xerr.CodeOf(err))
	assert.Empty(t, sink.frames)
	assert.Empty(t, f.publisher.msgs)
}

func seedHistory(f *fixture) {
	base := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)
	add := func(id, user, agent string, age int) {
		f.history.records[id] = &entity.ChatHistory{ID: id, UserID: user, AgentID: agent, Response: id, CreatedAt: base.Add(time.Duration(age) * time.Minute)}
	}
	add("h1", "u1", "dept", 1)
	add("h2", "u1", "kb", 2)
	add("h3", "u1", "dept", 3)
	add("h4", "u2", "dept", 4)
}

func TestGetHistoryScopedToCaller(t *testing.T) {
	f := newFixture()
	seedHistory(f)

	page, err := f.svc.GetHistory(context.Background(), lecturer, request.GetHistoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 20, page.PageSize)
	items := page.List.([]respond.HistoryItem)
	require.Len(t, items, 3)
	assert.Equal(t, "h3", items[0].ID)

	page, err = f.svc.GetHistory(context.Background(), lecturer, request.GetHistoryRequest{AgentID: "dept", Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	items = page.List.([]respond.HistoryItem)
	require.Len(t, items, 1)
	assert.Equal(t, "h1", items[0].ID)

	_, err = f.svc.GetHistory(context.Background(), scope.Identity{}, request.GetHistoryRequest{})
	assert.ErrorIs(t, err, xerr.ErrUnauthenticated)
}

func TestDeleteHistory(t *testing.T) {
	f := newFixture()
	seedHistory(f)
	ctx := context.Background()

	assert.Equal(t, xerr.BadRequest, xerr.CodeOf(f.svc.DeleteHistory(ctx, lecturer, " ")))
	assert.ErrorIs(t, f.svc.DeleteHistory(ctx, lecturer, "nope"), xerr.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteHistory(ctx, lecturer, "h4"), xerr.ErrForbidden)

	require.NoError(t, f.svc.DeleteHistory(ctx, lecturer, "h1"))
	require.NoError(t, f.svc.DeleteHistory(ctx, admin, "h4"))
	assert.Equal(t, []string{"h1", "h4"}, f.history.deleted)
}
