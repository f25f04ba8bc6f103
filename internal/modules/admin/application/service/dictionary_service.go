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
)

var (
	errMissingCityID       = xerr.New(xerr.BadRequest, "缺少城市ID")
	errCityNotFound        = xerr.New(xerr.NotFound, "城市不存在")
	errMissingDepartmentID = xerr.New(xerr.BadRequest, "缺少部门ID")
	errDepartmentNotFound  = xerr.New(xerr.NotFound, "部门不存在")
)

// DictionaryService 城市与部门字典
type DictionaryService interface {
	ListCities(ctx context.Context, id scope.Identity) ([]respond.CityItem, error)
	CreateCity(ctx context.Context, id scope.Identity, req request.CreateCityRequest) (*respond.CreatedRespond, error)
	UpdateCity(ctx context.Context, id scope.Identity, req request.UpdateCityRequest) error
	DeleteCity(ctx context.Context, id scope.Identity, cityID string) error

	ListDepartments(ctx context.Context, id scope.Identity) ([]respond.DepartmentItem, error)
	CreateDepartment(ctx context.Context, id scope.Identity, req request.CreateDepartmentRequest) (*respond.CreatedRespond, error)
	UpdateDepartment(ctx context.Context, id scope.Identity, req request.UpdateDepartmentRequest) error
	DeleteDepartment(ctx context.Context, id scope.Identity, departmentID string) error
}

type dictionaryServiceImpl struct {
	cities      repository.CityRepository
	departments repository.DepartmentRepository
	access      accessService.AccessService
}

func NewDictionaryService(cities repository.CityRepository, departments repository.DepartmentRepository, access accessService.AccessService) DictionaryService {
	return &dictionaryServiceImpl{cities: cities, departments: departments, access: access}
}

func (s *dictionaryServiceImpl) ListCities(ctx context.Context, id scope.Identity) ([]respond.CityItem, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	cities, err := s.cities.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]respond.CityItem, 0, len(cities))
	for i := range cities {
		items = append(items, respond.NewCityItem(&cities[i]))
	}
	return items, nil
}

func (s *dictionaryServiceImpl) CreateCity(ctx context.Context, id scope.Identity, req request.CreateCityRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	name, code := strings.TrimSpace(req.Name), strings.TrimSpace(req.Code)
	if name == "" || code == "" {
		return nil, xerr.New(xerr.BadRequest, "城市名称和代码必填")
	}
	now := time.Now()
	city := &entity.City{
		ID:        util.GenerateUUID(),
		Name:      name,
		Code:      code,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.IsActive != nil {
		city.IsActive = *req.IsActive
	}
	if err := s.cities.CreateCity(ctx, city); err != nil {
		return nil, err
	}
	return &respond.CreatedRespond{ID: city.ID}, nil
}

func (s *dictionaryServiceImpl) UpdateCity(ctx context.Context, id scope.Identity, req request.UpdateCityRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.cityExists(ctx, req.ID); err != nil {
		return err
	}
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		fields["code"] = strings.TrimSpace(*req.Code)
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	return s.cities.UpdateCity(ctx, req.ID, fields)
}

func (s *dictionaryServiceImpl) DeleteCity(ctx context.Context, id scope.Identity, cityID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.cityExists(ctx, cityID); err != nil {
		return err
	}
	return s.cities.DeleteCity(ctx, cityID)
}

func (s *dictionaryServiceImpl) cityExists(ctx context.Context, cityID string) error {
	if strings.TrimSpace(cityID) == "" {
		return errMissingCityID
	}
	city, err := s.cities.GetCityByID(ctx, cityID)
	if err != nil {
		return err
	}
	if city == nil {
		return errCityNotFound
	}
	return nil
}

func (s *dictionaryServiceImpl) ListDepartments(ctx context.Context, id scope.Identity) ([]respond.DepartmentItem, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	departments, err := s.departments.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]respond.DepartmentItem, 0, len(departments))
	for i := range departments {
		items = append(items, respond.NewDepartmentItem(&departments[i]))
	}
	return items, nil
}

func (s *dictionaryServiceImpl) CreateDepartment(ctx context.Context, id scope.Identity, req request.CreateDepartmentRequest) (*respond.CreatedRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerr.New(xerr.BadRequest, "部门名称必填")
	}
	now := time.Now()
	dept := &entity.Department{
		ID:          util.GenerateUUID(),
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.SortOrder != nil {
		dept.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		dept.IsActive = *req.IsActive
	}
	if err := s.departments.CreateDepartment(ctx, dept); err != nil {
		return nil, err
	}
	return &respond.CreatedRespond{ID: dept.ID}, nil
}

func (s *dictionaryServiceImpl) UpdateDepartment(ctx context.Context, id scope.Identity, req request.UpdateDepartmentRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.departmentExists(ctx, req.ID); err != nil {
		return err
	}
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.SortOrder != nil {
		fields["sort_order"] = *req.SortOrder
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	return s.departments.UpdateDepartment(ctx, req.ID, fields)
}

func (s *dictionaryServiceImpl) DeleteDepartment(ctx context.Context, id scope.Identity, departmentID string) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if err := s.departmentExists(ctx, departmentID); err != nil {
		return err
	}
	return s.departments.DeleteDepartment(ctx, departmentID)
}

func (s *dictionaryServiceImpl) departmentExists(ctx context.Context, departmentID string) error {
	if strings.TrimSpace(departmentID) == "" {
		return errMissingDepartmentID
	}
	dept, err := s.departments.GetDepartmentByID(ctx, departmentID)
	if err != nil {
		return err
	}
	if dept == nil {
		return errDepartmentNotFound
	}
	return nil
}
