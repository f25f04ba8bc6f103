package entity

import (
	"time"

	"TutorHub/internal/modules/access/domain/scope"

	"gorm.io/datatypes"
)

const DefaultNavigationTab = "服务"

// WebCard 外链卡片
type WebCard struct {
	ID            string                      `gorm:"column:id;type:char(36);primaryKey"`
	Title         string                      `gorm:"column:title;type:varchar(64);not null"`
	Description   string                      `gorm:"column:description;type:varchar(512)"`
	URL           string                      `gorm:"column:url;type:varchar(1024);not null"`
	IconName      string                      `gorm:"column:icon_name;type:varchar(64)"`
	IconType      string                      `gorm:"column:icon_type;type:varchar(32)"`
	IconColor     string                      `gorm:"column:icon_color;type:varchar(16)"`
	OpenMode      string                      `gorm:"column:open_mode;type:varchar(16);comment:external/internal"`
	NavigationTab string                      `gorm:"column:navigation_tab;type:varchar(32);index"`
	Cities        datatypes.JSONSlice[string] `gorm:"column:cities;type:json"`
	Departments   datatypes.JSONSlice[string] `gorm:"column:departments;type:json"`
	IsActive      bool                        `gorm:"column:is_active;not null;default:true;index"`
	SortOrder     int                         `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time                   `gorm:"column:created_at;not null;index"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;not null"`
}

func (WebCard) TableName() string {
	return "web_cards"
}

func (w *WebCard) Scope() scope.ResourceScope {
	return scope.ResourceScope{Cities: w.Cities, Departments: w.Departments}
}

func (w *WebCard) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return w.ID, true
	case "title":
		return w.Title, true
	case "description":
		return w.Description, true
	case "navigation_tab":
		return w.NavigationTab, true
	case scope.FieldCities:
		return []string(w.Cities), true
	case scope.FieldDepartments:
		return []string(w.Departments), true
	case "is_active":
		return w.IsActive, true
	default:
		return nil, false
	}
}
