package persistence

import (
	"context"
	"strings"
	"time"

	"TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/admin/domain/repository"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"

	"gorm.io/gorm"
)

type modelRepositoryImpl struct {
	models *docstore.Collection[entity.ModelConfig]
}

func NewModelRepository(db *gorm.DB) repository.ModelRepository {
	return &modelRepositoryImpl{models: docstore.New[entity.ModelConfig](db)}
}

func (r *modelRepositoryImpl) GetModelByID(ctx context.Context, id string) (*entity.ModelConfig, error) {
	return r.models.Get(ctx, strings.TrimSpace(id))
}

func (r *modelRepositoryImpl) GetModelByOriginalID(ctx context.Context, originalID string) (*entity.ModelConfig, error) {
	originalID = strings.TrimSpace(originalID)
	if originalID == "" {
		return nil, nil
	}
	return r.models.FindOne(ctx, filter.Eq{Field: "original_id", Value: originalID})
}

func (r *modelRepositoryImpl) ListModels(ctx context.Context) ([]entity.ModelConfig, error) {
	return r.models.Find(ctx, nil, docstore.FindOptions{Order: "created_at desc"})
}

func (r *modelRepositoryImpl) CreateModel(ctx context.Context, m *entity.ModelConfig) error {
	return r.models.Insert(ctx, m)
}

func (r *modelRepositoryImpl) UpdateModel(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.models.Update(ctx, id, fields)
}

func (r *modelRepositoryImpl) DeleteModel(ctx context.Context, id string) error {
	return r.models.Remove(ctx, id)
}

type cityRepositoryImpl struct {
	cities *docstore.Collection[entity.City]
}

func NewCityRepository(db *gorm.DB) repository.CityRepository {
	return &cityRepositoryImpl{cities: docstore.New[entity.City](db)}
}

func (r *cityRepositoryImpl) GetCityByID(ctx context.Context, id string) (*entity.City, error) {
	return r.cities.Get(ctx, id)
}

func (r *cityRepositoryImpl) ListCities(ctx context.Context) ([]entity.City, error) {
	return r.cities.Find(ctx, nil, docstore.FindOptions{Order: "created_at asc"})
}

func (r *cityRepositoryImpl) CreateCity(ctx context.Context, c *entity.City) error {
	return r.cities.Insert(ctx, c)
}

func (r *cityRepositoryImpl) UpdateCity(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.cities.Update(ctx, id, fields)
}

func (r *cityRepositoryImpl) DeleteCity(ctx context.Context, id string) error {
	return r.cities.Remove(ctx, id)
}

type departmentRepositoryImpl struct {
	departments *docstore.Collection[entity.Department]
}

func NewDepartmentRepository(db *gorm.DB) repository.DepartmentRepository {
	return &departmentRepositoryImpl{departments: docstore.New[entity.Department](db)}
}

func (r *departmentRepositoryImpl) GetDepartmentByID(ctx context.Context, id string) (*entity.Department, error) {
	return r.departments.Get(ctx, id)
}

func (r *departmentRepositoryImpl) ListDepartments(ctx context.Context) ([]entity.Department, error) {
	return r.departments.Find(ctx, nil, docstore.FindOptions{Order: "sort_order asc, created_at asc"})
}

func (r *departmentRepositoryImpl) CreateDepartment(ctx context.Context, d *entity.Department) error {
	return r.departments.Insert(ctx, d)
}

func (r *departmentRepositoryImpl) UpdateDepartment(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.departments.Update(ctx, id, fields)
}

func (r *departmentRepositoryImpl) DeleteDepartment(ctx context.Context, id string) error {
	return r.departments.Remove(ctx, id)
}
