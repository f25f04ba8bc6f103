package repository

import (
	"context"

	"TutorHub/internal/modules/admin/domain/entity"
)

// ModelRepository 查不到时返回 nil, nil
type ModelRepository interface {
	GetModelByID(ctx context.Context, id string) (*entity.ModelConfig, error)
	GetModelByOriginalID(ctx context.Context, originalID string) (*entity.ModelConfig, error)
	ListModels(ctx context.Context) ([]entity.ModelConfig, error)
	CreateModel(ctx context.Context, m *entity.ModelConfig) error
	UpdateModel(ctx context.Context, id string, fields map[string]any) error
	DeleteModel(ctx context.Context, id string) error
}

type CityRepository interface {
	GetCityByID(ctx context.Context, id string) (*entity.City, error)
	ListCities(ctx context.Context) ([]entity.City, error)
	CreateCity(ctx context.Context, c *entity.City) error
	UpdateCity(ctx context.Context, id string, fields map[string]any) error
	DeleteCity(ctx context.Context, id string) error
}

type DepartmentRepository interface {
	GetDepartmentByID(ctx context.Context, id string) (*entity.Department, error)
	ListDepartments(ctx context.Context) ([]entity.Department, error)
	CreateDepartment(ctx context.Context, d *entity.Department) error
	UpdateDepartment(ctx context.Context, id string, fields map[string]any) error
	DeleteDepartment(ctx context.Context, id string) error
}
