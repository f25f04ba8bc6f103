package service

import (
	"context"
	"strings"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/admin/application/dto/request"
	"TutorHub/internal/modules/admin/application/dto/respond"
	"TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/admin/domain/repository"
	"TutorHub/pkg/util"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
)

var (
	errMissingModelID   = xerr.New(xerr.BadRequest, "缺少模型ID")
	errModelNotFound    = xerr.New(xerr.NotFound, "模型不存在")
	errUnsupportedModel = xerr.New(xerr.BadRequest, "不支持的模型类型")
)

// ModelService 模型配置管理，列表中的密钥打码
type ModelService interface {
	ListModels(ctx context.Context, id scope.Identity) ([]respond.ModelItem, error)
	CreateModel(ctx context.Context, id scope.Identity, req request.CreateModelRequest) (*respond.CreatedRespond, error)
	UpdateModel(ctx context.Context, id scope.Identity, req request.UpdateModelRequest) error
	DeleteModel(ctx context.Context, id scope.Identity, modelID string) error
}

type modelServiceImpl struct {
	models repository.ModelRepository
	access accessService.AccessService
}

func NewModelService(models repository.ModelRepository, access accessService.AccessService) ModelService {
	return &modelServiceImpl{models: models, access: access}
}

func (s *modelServiceImpl) ListModels(ctx context.Context, id scope.Identity) ([]respond.ModelItem, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	models, err := s.models.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]respond.ModelItem, 0, len(models))
	for i := range models {
		items = append(items, respond.NewModelItem(&models[i]))
	}
	return items, nil
}

func (s *modelServiceImpl) CreateModel(ctx context.Context, id scope.Identity, req request.CreateModelRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	name, apiURL, apiKey := strings.TrimSpace(req.Name), strings.TrimSpace(req.APIURL), strings.TrimSpace(req.APIKey)
	if name == "" || apiURL == "" || apiKey == "" {
		return nil, xerr.New(xerr.BadRequest, "模型名称、API 地址和密钥必填")
	}
	kind := entity.NormalizeProviderKind(req.ModelType)
	if kind == "" {
		return nil, errUnsupportedModel
	}

	now := time.Now()
	m := &entity.ModelConfig{
		ID:              util.GenerateUUID(),
		Name:            name,
		ModelType:       kind,
		APIURL:          apiURL,
		APIKey:          apiKey,
		VendorServiceID: strings.TrimSpace(req.VendorServiceID),
		Description:     req.Description,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.models.CreateModel(ctx, m); err != nil {
		return nil, err
	}
	zlog.Info("model created", zap.String("model_id", m.ID), zap.String("model_type", kind), zap.String("uid", id.ID))
	return &respond.CreatedRespond{ID: m.ID}, nil
}

func (s *modelServiceImpl) UpdateModel(ctx context.Context, id scope.Identity, req request.UpdateModelRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	current, err := s.getModel(ctx, req.ID)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.APIURL != nil {
		fields["api_url"] = strings.TrimSpace(*req.APIURL)
	}
	// 打码后的密钥原样回传时不覆盖
	if req.APIKey != nil && *req.APIKey != "" && *req.APIKey != current.MaskedKey() {
		fields["api_key"] = strings.TrimSpace(*req.APIKey)
	}
	if req.ModelType != nil {
		kind := entity.NormalizeProviderKind(*req.ModelType)
		if kind == "" {
			return errUnsupportedModel
		}
		fields["model_type"] = kind
	}
	if req.VendorServiceID != nil {
		fields["volc_service_id"] = strings.TrimSpace(*req.VendorServiceID)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	return s.models.UpdateModel(ctx, req.ID, fields)
}

func (s *modelServiceImpl) DeleteModel(ctx context.Context, id scope.Identity, modelID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.getModel(ctx, modelID); err != nil {
		return err
	}
	return s.models.DeleteModel(ctx, modelID)
}

func (s *modelServiceImpl) getModel(ctx context.Context, modelID string) (*entity.ModelConfig, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, errMissingModelID
	}
	m, err := s.models.GetModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errModelNotFound
	}
	return m, nil
}
