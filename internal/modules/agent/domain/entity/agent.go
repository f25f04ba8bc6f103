package entity

import (
	"time"

	"TutorHub/internal/modules/access/domain/scope"

	"gorm.io/datatypes"
)

const (
	DefaultMaxTokens     = 2000
	DefaultTemperature   = 0.7
	DefaultNavigationTab = "教研"
)

// Agent 智能体：系统提示词 + 模型引用 + 可见范围
type Agent struct {
	ID              string                      `gorm:"column:id;type:char(36);primaryKey"`
	Name            string                      `gorm:"column:name;type:varchar(64);not null"`
	Description     string                      `gorm:"column:description;type:varchar(512)"`
	SystemPrompt    string                      `gorm:"column:system_prompt;type:mediumtext;not null"`
	ModelID         string                      `gorm:"column:model_id;type:varchar(64);index"`
	MaxTokens       int                         `gorm:"column:max_tokens;not null;default:2000"`
	Temperature     float64                     `gorm:"column:temperature;not null;default:0.7"`
	NavigationTab   string                      `gorm:"column:navigation_tab;type:varchar(32);index"`
	Cities          datatypes.JSONSlice[string] `gorm:"column:cities;type:json"`
	Departments     datatypes.JSONSlice[string] `gorm:"column:departments;type:json"`
	AgentType       string                      `gorm:"column:agent_type;type:varchar(32)"`
	VendorServiceID string                      `gorm:"column:volc_service_id;type:varchar(128)"`
	IconName        string                      `gorm:"column:icon_name;type:varchar(64)"`
	IconType        string                      `gorm:"column:icon_type;type:varchar(32)"`
	IconColor       string                      `gorm:"column:icon_color;type:varchar(16)"`
	IsActive        bool                        `gorm:"column:is_active;not null;default:true;index"`
	CreatedAt       time.Time                   `gorm:"column:created_at;not null;index"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at;not null"`
}

func (Agent) TableName() string {
	return "agents"
}

func (a *Agent) Scope() scope.ResourceScope {
	return scope.ResourceScope{Cities: a.Cities, Departments: a.Departments}
}

// Lookup 按列名取值，供谓词直接求值
func (a *Agent) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return a.ID, true
	case "name":
		return a.Name, true
	case "description":
		return a.Description, true
	case "navigation_tab":
		return a.NavigationTab, true
	case scope.FieldCities:
		return []string(a.Cities), true
	case scope.FieldDepartments:
		return []string(a.Departments), true
	case "is_active":
		return a.IsActive, true
	case "model_id":
		return a.ModelID, true
	default:
		return nil, false
	}
}
