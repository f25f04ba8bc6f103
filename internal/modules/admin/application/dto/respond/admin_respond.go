package respond

import (
	"TutorHub/internal/modules/admin/domain/entity"
)

type CreatedRespond struct {
	ID string `json:"id"`
}

type ResetPasswordRespond struct {
	NewPassword string `json:"newPassword"`
}

type CityItem struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	IsActive  bool   `json:"is_active"`
	CreatedAt int64  `json:"created_at"`
}

type DepartmentItem struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   int64  `json:"created_at"`
}

// ModelItem api_key 打码
type ModelItem struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	ModelType       string `json:"model_type"`
	APIURL          string `json:"api_url"`
	APIKey          string `json:"api_key"`
	VendorServiceID string `json:"volc_service_id,omitempty"`
	Description     string `json:"description,omitempty"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       int64  `json:"created_at"`
	UpdatedAt       int64  `json:"updated_at"`
}

func NewCityItem(c *entity.City) CityItem {
	return CityItem{ID: c.ID, Name: c.Name, Code: c.Code, IsActive: c.IsActive, CreatedAt: c.CreatedAt.UnixMilli()}
}

func NewDepartmentItem(d *entity.Department) DepartmentItem {
	return DepartmentItem{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		SortOrder:   d.SortOrder,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.UnixMilli(),
	}
}

func NewModelItem(m *entity.ModelConfig) ModelItem {
	return ModelItem{
		ID:              m.ID,
		Name:            m.Name,
		ModelType:       m.ProviderKind(),
		APIURL:          m.APIURL,
		APIKey:          m.MaskedKey(),
		VendorServiceID: m.VendorServiceID,
		Description:     m.Description,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt.UnixMilli(),
		UpdatedAt:       m.UpdatedAt.UnixMilli(),
	}
}
