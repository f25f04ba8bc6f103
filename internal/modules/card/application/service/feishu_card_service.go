package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/card/application/dto/request"
	"TutorHub/internal/modules/card/application/dto/respond"
	"TutorHub/internal/modules/card/domain/entity"
	"TutorHub/internal/modules/card/domain/repository"
	"TutorHub/internal/modules/card/infrastructure/feishu"
	"TutorHub/internal/modules/card/infrastructure/persistence"
	"TutorHub/pkg/back"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/util"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var (
	errFeishuCardNotFound = xerr.New(xerr.NotFound, "飞书卡片不存在")
	errBadTableURL        = xerr.New(xerr.BadRequest, "飞书表格 URL 格式错误")
)

// TableClient 多维表格读取，由 *feishu.Client 实现
type TableClient interface {
	GetRecords(ctx context.Context, cred feishu.Credential, appToken, tableID string, q feishu.RecordQuery) (json.RawMessage, error)
	GetFields(ctx context.Context, cred feishu.Credential, appToken, tableID string) (json.RawMessage, error)
}

// FeishuCardService 飞书卡片管理与表格数据读取
type FeishuCardService interface {
	List(ctx context.Context, id scope.Identity, req request.ListCardRequest) (*back.PageData, error)
	AdminList(ctx context.Context, id scope.Identity, req request.AdminListCardRequest) (*back.PageData, error)
	Detail(ctx context.Context, id scope.Identity, cardID string) (*respond.FeishuCardItem, error)
	Create(ctx context.Context, id scope.Identity, req request.CreateFeishuCardRequest) (*respond.CreatedRespond, error)
	Update(ctx context.Context, id scope.Identity, req request.UpdateFeishuCardRequest) error
	Delete(ctx context.Context, id scope.Identity, cardID string) error
	FetchTableData(ctx context.Context, id scope.Identity, req request.FetchTableDataRequest) (json.RawMessage, error)
	GetTableFields(ctx context.Context, id scope.Identity, cardID string) (json.RawMessage, error)
}

type feishuCardServiceImpl struct {
	repo   repository.FeishuCardRepository
	tables TableClient
	access accessService.AccessService
}

func NewFeishuCardService(repo repository.FeishuCardRepository, tables TableClient, access accessService.AccessService) FeishuCardService {
	return &feishuCardServiceImpl{repo: repo, tables: tables, access: access}
}

func (s *feishuCardServiceImpl) List(ctx context.Context, id scope.Identity, req request.ListCardRequest) (*back.PageData, error) {
	if !id.Authenticated() {
		return nil, xerr.ErrUnauthenticated
	}
	where := filter.All(
		filter.Eq{Field: "is_active", Value: true},
		tabFilter(req.NavigationTab),
		filter.Keyword(req.SearchKeyword, "title", "description"),
		s.access.BuildListPredicate(id, scope.KindFeishuCard),
	)
	page, pageSize := pageOf(req.Page, req.PageSize)
	cards, total, err := s.repo.ListFeishuCards(ctx, where, docstore.Page(page, pageSize, persistence.CardOrder))
	if err != nil {
		return nil, err
	}
	items := make([]respond.FeishuCardItem, 0, len(cards))
	for i := range cards {
		items = append(items, respond.NewFeishuCardItem(&cards[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *feishuCardServiceImpl) AdminList(ctx context.Context, id scope.Identity, req request.AdminListCardRequest) (*back.PageData, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	page, pageSize := pageOf(req.Page, req.PageSize)
	cards, total, err := s.repo.ListFeishuCards(ctx, adminFilter(req), docstore.Page(page, pageSize, persistence.CardOrder))
	if err != nil {
		return nil, err
	}
	items := make([]respond.FeishuCardAdminItem, 0, len(cards))
	for i := range cards {
		items = append(items, respond.NewFeishuCardAdminItem(&cards[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *feishuCardServiceImpl) Detail(ctx context.Context, id scope.Identity, cardID string) (*respond.FeishuCardItem, error) {
	card, err := s.visible(ctx, id, cardID)
	if err != nil {
		return nil, err
	}
	item := respond.NewFeishuCardItem(card)
	return &item, nil
}

func (s *feishuCardServiceImpl) Create(ctx context.Context, id scope.Identity, req request.CreateFeishuCardRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.AppID) == "" ||
		strings.TrimSpace(req.AppSecret) == "" || strings.TrimSpace(req.TableURL) == "" {
		return nil, xerr.New(xerr.BadRequest, "缺少必填字段：title, app_id, app_secret, table_url")
	}
	if _, _, err := entity.ParseTableURL(req.TableURL); err != nil {
		return nil, errBadTableURL
	}

	now := time.Now()
	card := &entity.FeishuCard{
		ID:            util.GenerateUUID(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		AppID:         strings.TrimSpace(req.AppID),
		AppSecret:     strings.TrimSpace(req.AppSecret),
		TableURL:      strings.TrimSpace(req.TableURL),
		NavigationTab: orDefault(req.NavigationTab, entity.DefaultNavigationTab),
		Cities:        datatypes.JSONSlice[string](scope.Normalize(req.Cities)),
		Departments:   datatypes.JSONSlice[string](scope.Normalize(req.Departments)),
		IconURL:       req.IconURL,
		DisplayFields: datatypes.JSONSlice[string](req.DisplayFields),
		FilterConfig:  jsonOrNil(req.FilterConfig),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if card.DisplayFields == nil {
		card.DisplayFields = datatypes.JSONSlice[string]{}
	}
	if req.IsActive != nil {
		card.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		card.SortOrder = *req.SortOrder
	}
	if err := s.repo.CreateFeishuCard(ctx, card); err != nil {
		return nil, err
	}
	zlog.Info("feishu card created", zap.String("card_id", card.ID), zap.String("uid", id.ID))
	return &respond.CreatedRespond{ID: card.ID}, nil
}

func (s *feishuCardServiceImpl) Update(ctx context.Context, id scope.Identity, req request.UpdateFeishuCardRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.get(ctx, req.CardID); err != nil {
		return err
	}
	if req.TableURL != nil {
		if _, _, err := entity.ParseTableURL(*req.TableURL); err != nil {
			return errBadTableURL
		}
	}

	fields := map[string]any{}
	setString(fields, "title", req.Title)
	setString(fields, "description", req.Description)
	setString(fields, "app_id", req.AppID)
	setString(fields, "app_secret", req.AppSecret)
	setString(fields, "table_url", req.TableURL)
	setString(fields, "navigation_tab", req.NavigationTab)
	setString(fields, "icon_url", req.IconURL)
	setScope(fields, req.Cities, req.Departments)
	if req.DisplayFields != nil {
		fields["display_fields"] = datatypes.JSONSlice[string](*req.DisplayFields)
	}
	if len(req.FilterConfig) > 0 {
		fields["filter_config"] = jsonOrNil(req.FilterConfig)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	return s.repo.UpdateFeishuCard(ctx, req.CardID, fields)
}

func (s *feishuCardServiceImpl) Delete(ctx context.Context, id scope.Identity, cardID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.get(ctx, cardID); err != nil {
		return err
	}
	return s.repo.DisableFeishuCard(ctx, cardID)
}

func (s *feishuCardServiceImpl) FetchTableData(ctx context.Context, id scope.Identity, req request.FetchTableDataRequest) (json.RawMessage, error) {
	card, err := s.visible(ctx, id, req.CardID)
	if err != nil {
		return nil, err
	}
	appToken, tableID, err := card.Table()
	if err != nil {
		return nil, errBadTableURL
	}
	data, err := s.tables.GetRecords(ctx, credential(card), appToken, tableID, feishu.RecordQuery{
		PageToken: req.PageToken,
		PageSize:  req.PageSize,
		Filter:    filterText(req.Filter),
	})
	if err != nil {
		return nil, upstreamError(card, err)
	}
	return data, nil
}

func (s *feishuCardServiceImpl) GetTableFields(ctx context.Context, id scope.Identity, cardID string) (json.RawMessage, error) {
	card, err := s.visible(ctx, id, cardID)
	if err != nil {
		return nil, err
	}
	appToken, tableID, err := card.Table()
	if err != nil {
		return nil, errBadTableURL
	}
	data, err := s.tables.GetFields(ctx, credential(card), appToken, tableID)
	if err != nil {
		return nil, upstreamError(card, err)
	}
	return data, nil
}

func (s *feishuCardServiceImpl) visible(ctx context.Context, id scope.Identity, cardID string) (*entity.FeishuCard, error) {
	if !id.Authenticated() {
		return nil, xerr.ErrUnauthenticated
	}
	card, err := s.get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeRecord(id, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *feishuCardServiceImpl) get(ctx context.Context, cardID string) (*entity.FeishuCard, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, errMissingCardID
	}
	card, err := s.repo.GetFeishuCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, errFeishuCardNotFound
	}
	return card, nil
}

func credential(card *entity.FeishuCard) feishu.Credential {
	return feishu.Credential{AppID: card.AppID, AppSecret: card.AppSecret}
}

func upstreamError(card *entity.FeishuCard, err error) error {
	zlog.Error("feishu api call failed", zap.String("card_id", card.ID), zap.String("app_id", card.AppID), zap.Error(err))
	var apiErr *feishu.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return xerr.Newf(xerr.UpstreamError, "飞书接口调用失败: %s", apiErr.Message)
	}
	return xerr.New(xerr.UpstreamError, "飞书接口调用失败")
}

// filterText 字符串原样使用，其余 JSON 以文本形式透传
func filterText(raw json.RawMessage) string {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func jsonOrNil(raw json.RawMessage) datatypes.JSON {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}
