package service

import (
	"context"
	"strings"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	adminService "TutorHub/internal/modules/admin/application/service"
	adminRepository "TutorHub/internal/modules/admin/domain/repository"
	"TutorHub/internal/modules/agent/application/dto/request"
	"TutorHub/internal/modules/agent/application/dto/respond"
	"TutorHub/internal/modules/agent/domain/entity"
	"TutorHub/internal/modules/agent/domain/repository"
	"TutorHub/pkg/back"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/util"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var errAgentNotFound = xerr.New(xerr.NotFound, "智能体不存在")

// AgentService 智能体的查询与管理
type AgentService interface {
	List(ctx context.Context, id scope.Identity, req request.ListAgentRequest) (*back.PageData, error)
	AdminList(ctx context.Context, id scope.Identity, req request.AdminListAgentRequest) (*back.PageData, error)
	Detail(ctx context.Context, id scope.Identity, agentID string) (*respond.AgentDetailRespond, error)
	Create(ctx context.Context, id scope.Identity, req request.CreateAgentRequest) (*respond.CreatedRespond, error)
	Update(ctx context.Context, id scope.Identity, agentID string, req request.UpdateAgentRequest) error
	Delete(ctx context.Context, id scope.Identity, agentID string) error
}

type agentServiceImpl struct {
	repo   repository.AgentRepository
	models adminRepository.ModelRepository
	access accessService.AccessService
}

func NewAgentService(repo repository.AgentRepository, models adminRepository.ModelRepository, access accessService.AccessService) AgentService {
	return &agentServiceImpl{repo: repo, models: models, access: access}
}

func (s *agentServiceImpl) List(ctx context.Context, id scope.Identity, req request.ListAgentRequest) (*back.PageData, error) {
	where := filter.All(
		filter.Eq{Field: "is_active", Value: true},
		tabFilter(req.NavigationTab),
		filter.Keyword(req.SearchKeyword, "name", "description"),
		s.access.BuildListPredicate(id, scope.KindAgent),
	)
	return s.page(ctx, where, req.Page, req.PageSize, 10)
}

func (s *agentServiceImpl) AdminList(ctx context.Context, id scope.Identity, req request.AdminListAgentRequest) (*back.PageData, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}

	var exprs []filter.Expr
	if req.IsActive != nil {
		exprs = append(exprs, filter.Eq{Field: "is_active", Value: *req.IsActive})
	}
	exprs = append(exprs, tabFilter(req.NavigationTab))
	if city := strings.TrimSpace(req.CityName); city != "" {
		exprs = append(exprs, filter.HasAny{Field: scope.FieldCities, Values: scope.Tags(city)})
	}
	if dept := strings.TrimSpace(req.Department); dept != "" {
		exprs = append(exprs, filter.HasAny{Field: scope.FieldDepartments, Values: scope.Tags(dept)})
	}
	exprs = append(exprs, filter.Keyword(req.SearchKeyword, "name", "description"))

	return s.page(ctx, filter.All(exprs...), req.Page, req.PageSize, 20)
}

func (s *agentServiceImpl) page(ctx context.Context, where filter.Expr, page, pageSize, defaultSize int) (*back.PageData, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	agents, total, err := s.repo.ListAgents(ctx, where, docstore.Page(page, pageSize, "created_at desc"))
	if err != nil {
		return nil, err
	}
	items := make([]respond.AgentItem, 0, len(agents))
	for i := range agents {
		items = append(items, respond.NewAgentItem(&agents[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *agentServiceImpl) Detail(ctx context.Context, id scope.Identity, agentID string) (*respond.AgentDetailRespond, error) {
	if strings.TrimSpace(agentID) == "" {
		return nil, xerr.New(xerr.BadRequest, "缺少 agent_id 参数")
	}
	ag, err := s.repo.GetAgentByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if ag == nil {
		return nil, errAgentNotFound
	}
	if err := s.access.AuthorizeRecord(id, ag); err != nil {
		return nil, err
	}

	detail := &respond.AgentDetailRespond{AgentItem: respond.NewAgentItem(ag)}
	model, err := adminService.LookupModel(ctx, s.models, ag.ModelID)
	if err != nil {
		zlog.Warn("agent detail model lookup failed", zap.String("agent_id", ag.ID), zap.Error(err))
	}
	detail.Model = respond.NewModelSummary(model)
	return detail, nil
}

func (s *agentServiceImpl) Create(ctx context.Context, id scope.Identity, req request.CreateAgentRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.SystemPrompt) == "" {
		return nil, xerr.New(xerr.BadRequest, "缺少必填字段：name, system_prompt")
	}

	now := time.Now()
	ag := &entity.Agent{
		ID:              util.GenerateUUID(),
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		SystemPrompt:    req.SystemPrompt,
		ModelID:         strings.TrimSpace(req.ModelID),
		MaxTokens:       entity.DefaultMaxTokens,
		Temperature:     entity.DefaultTemperature,
		NavigationTab:   orDefault(req.NavigationTab, entity.DefaultNavigationTab),
		Cities:          datatypes.JSONSlice[string](scope.Normalize(req.Cities)),
		Departments:     datatypes.JSONSlice[string](scope.Normalize(req.Departments)),
		AgentType:       orDefault(req.AgentType, "openai"),
		VendorServiceID: req.VendorServiceID,
		IconName:        orDefault(req.IconName, "Bot"),
		IconType:        orDefault(req.IconType, "builtin"),
		IconColor:       orDefault(req.IconColor, "#6366f1"),
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		ag.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		ag.Temperature = *req.Temperature
	}
	if req.IsActive != nil {
		ag.IsActive = *req.IsActive
	}

	if err := s.repo.CreateAgent(ctx, ag); err != nil {
		return nil, err
	}
	zlog.Info("agent created", zap.String("agent_id", ag.ID), zap.String("uid", id.ID))
	return &respond.CreatedRespond{ID: ag.ID}, nil
}

func (s *agentServiceImpl) Update(ctx context.Context, id scope.Identity, agentID string, req request.UpdateAgentRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.mustExist(ctx, agentID); err != nil {
		return err
	}

	fields := updateFields(req)
	if len(fields) == 0 {
		return xerr.New(xerr.BadRequest, "没有需要更新的字段")
	}
	return s.repo.UpdateAgent(ctx, agentID, fields)
}

func (s *agentServiceImpl) Delete(ctx context.Context, id scope.Identity, agentID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.mustExist(ctx, agentID); err != nil {
		return err
	}
	return s.repo.DisableAgent(ctx, agentID)
}

func (s *agentServiceImpl) mustExist(ctx context.Context, agentID string) error {
	if strings.TrimSpace(agentID) == "" {
		return xerr.New(xerr.BadRequest, "缺少 agent_id 参数")
	}
	ag, err := s.repo.GetAgentByID(ctx, agentID)
	if err != nil {
		return err
	}
	if ag == nil {
		return errAgentNotFound
	}
	return nil
}

func updateFields(req request.UpdateAgentRequest) map[string]any {
	fields := map[string]any{}
	setString := func(col string, v *string) {
		if v != nil {
			fields[col] = *v
		}
	}
	setString("name", req.Name)
	setString("description", req.Description)
	setString("system_prompt", req.SystemPrompt)
	setString("model_id", req.ModelID)
	setString("navigation_tab", req.NavigationTab)
	setString("agent_type", req.AgentType)
	setString("volc_service_id", req.VendorServiceID)
	setString("icon_name", req.IconName)
	setString("icon_type", req.IconType)
	setString("icon_color", req.IconColor)
	if req.MaxTokens != nil {
		fields["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		fields["temperature"] = *req.Temperature
	}
	if req.Cities != nil {
		fields["cities"] = datatypes.JSONSlice[string](scope.Normalize(*req.Cities))
	}
	if req.Departments != nil {
		fields["departments"] = datatypes.JSONSlice[string](scope.Normalize(*req.Departments))
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	return fields
}

func tabFilter(tab string) filter.Expr {
	tab = strings.TrimSpace(tab)
	if tab == "" || tab == scope.All {
		return nil
	}
	return filter.Eq{Field: "navigation_tab", Value: tab}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
