package service

import (
	"context"
	"strings"
	"time"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/card/application/dto/request"
	"TutorHub/internal/modules/card/application/dto/respond"
	"TutorHub/internal/modules/card/domain/entity"
	"TutorHub/internal/modules/card/domain/repository"
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

const defaultCardPageSize = 20

var (
	errWebCardNotFound = xerr.New(xerr.NotFound, "卡片不存在")
	errMissingCardID   = xerr.New(xerr.BadRequest, "缺少 card_id 参数")
	errNothingToUpdate = xerr.New(xerr.BadRequest, "没有需要更新的字段")
)

// WebCardService 外链卡片
type WebCardService interface {
	List(ctx context.Context, id scope.Identity, req request.ListCardRequest) (*back.PageData, error)
	AdminList(ctx context.Context, id scope.Identity, req request.AdminListCardRequest) (*back.PageData, error)
	Detail(ctx context.Context, id scope.Identity, cardID string) (*respond.WebCardItem, error)
	Create(ctx context.Context, id scope.Identity, req request.CreateWebCardRequest) (*respond.CreatedRespond, error)
	Update(ctx context.Context, id scope.Identity, req request.UpdateWebCardRequest) error
	Delete(ctx context.Context, id scope.Identity, cardID string) error
}

type webCardServiceImpl struct {
	repo   repository.WebCardRepository
	access accessService.AccessService
}

func NewWebCardService(repo repository.WebCardRepository, access accessService.AccessService) WebCardService {
	return &webCardServiceImpl{repo: repo, access: access}
}

func (s *webCardServiceImpl) List(ctx context.Context, id scope.Identity, req request.ListCardRequest) (*back.PageData, error) {
	if !id.Authenticated() {
		return nil, xerr.ErrUnauthenticated
	}
	where := filter.All(
		filter.Eq{Field: "is_active", Value: true},
		tabFilter(req.NavigationTab),
		filter.Keyword(req.SearchKeyword, "title", "description"),
		s.access.BuildListPredicate(id, scope.KindWebCard),
	)
	return s.page(ctx, where, req.Page, req.PageSize)
}

func (s *webCardServiceImpl) AdminList(ctx context.Context, id scope.Identity, req request.AdminListCardRequest) (*back.PageData, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	return s.page(ctx, adminFilter(req), req.Page, req.PageSize)
}

func (s *webCardServiceImpl) page(ctx context.Context, where filter.Expr, page, pageSize int) (*back.PageData, error) {
	page, pageSize = pageOf(page, pageSize)
	cards, total, err := s.repo.ListWebCards(ctx, where, docstore.Page(page, pageSize, persistence.CardOrder))
	if err != nil {
		return nil, err
	}
	items := make([]respond.WebCardItem, 0, len(cards))
	for i := range cards {
		items = append(items, respond.NewWebCardItem(&cards[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *webCardServiceImpl) Detail(ctx context.Context, id scope.Identity, cardID string) (*respond.WebCardItem, error) {
	card, err := s.get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.access.AuthorizeRecord(id, card); err != nil {
		return nil, err
	}
	item := respond.NewWebCardItem(card)
	return &item, nil
}

func (s *webCardServiceImpl) Create(ctx context.Context, id scope.Identity, req request.CreateWebCardRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.URL) == "" {
		return nil, xerr.New(xerr.BadRequest, "缺少必填字段：title, url")
	}

	now := time.Now()
	card := &entity.WebCard{
		ID:            util.GenerateUUID(),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		URL:           strings.TrimSpace(req.URL),
		IconName:      orDefault(req.IconName, "Globe"),
		IconType:      orDefault(req.IconType, "builtin"),
		IconColor:     orDefault(req.IconColor, "#3b82f6"),
		OpenMode:      orDefault(req.OpenMode, "external"),
		NavigationTab: orDefault(req.NavigationTab, entity.DefaultNavigationTab),
		Cities:        datatypes.JSONSlice[string](scope.Normalize(req.Cities)),
		Departments:   datatypes.JSONSlice[string](scope.Normalize(req.Departments)),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsActive != nil {
		card.IsActive = *req.IsActive
	}
	if req.SortOrder != nil {
		card.SortOrder = *req.SortOrder
	}
	if err := s.repo.CreateWebCard(ctx, card); err != nil {
		return nil, err
	}
	zlog.Info("web card created", zap.String("card_id", card.ID), zap.String("uid", id.ID))
	return &respond.CreatedRespond{ID: card.ID}, nil
}

func (s *webCardServiceImpl) Update(ctx context.Context, id scope.Identity, req request.UpdateWebCardRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.get(ctx, req.CardID); err != nil {
		return err
	}

	fields := map[string]any{}
	setString(fields, "title", req.Title)
	setString(fields, "description", req.Description)
	setString(fields, "url", req.URL)
	setString(fields, "icon_name", req.IconName)
	setString(fields, "icon_type", req.IconType)
	setString(fields, "icon_color", req.IconColor)
	setString(fields, "open_mode", req.OpenMode)
	setString(fields, "navigation_tab", req.NavigationTab)
	setScope(fields, req.Cities, req.Departments)
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	return s.repo.UpdateWebCard(ctx, req.CardID, fields)
}

func (s *webCardServiceImpl) Delete(ctx context.Context, id scope.Identity, cardID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.get(ctx, cardID); err != nil {
		return err
	}
	return s.repo.DisableWebCard(ctx, cardID)
}

func (s *webCardServiceImpl) get(ctx context.Context, cardID string) (*entity.WebCard, error) {
	if strings.TrimSpace(cardID) == "" {
		return nil, errMissingCardID
	}
	card, err := s.repo.GetWebCardByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, errWebCardNotFound
	}
	return card, nil
}

func adminFilter(req request.AdminListCardRequest) filter.Expr {
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
	exprs = append(exprs, filter.Keyword(req.SearchKeyword, "title", "description"))
	return filter.All(exprs...)
}

func pageOf(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultCardPageSize
	}
	return page, pageSize
}

func tabFilter(tab string) filter.Expr {
	tab = strings.TrimSpace(tab)
	if tab == "" || tab == scope.All {
		return nil
	}
	return filter.Eq{Field: "navigation_tab", Value: tab}
}

func setString(fields map[string]any, col string, v *string) {
	if v != nil {
		fields[col] = *v
	}
}

func setScope(fields map[string]any, cities, departments *[]string) {
	if cities != nil {
		fields[scope.FieldCities] = datatypes.JSONSlice[string](scope.Normalize(*cities))
	}
	if departments != nil {
		fields[scope.FieldDepartments] = datatypes.JSONSlice[string](scope.Normalize(*departments))
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
