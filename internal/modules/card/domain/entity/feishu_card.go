package entity

import (
	"errors"
	"regexp"
	"time"

	"TutorHub/internal/modules/access/domain/scope"

	"gorm.io/datatypes"
)

var (
	tableURLPattern = regexp.MustCompile(`base/([^?]+)\?table=([^&]+)`)

	ErrInvalidTableURL = errors.New("invalid feishu table url")
)

// FeishuCard 飞书多维表格卡片，凭据按卡片保存
type FeishuCard struct {
	ID            string                      `gorm:"column:id;type:char(36);primaryKey"`
	Title         string                      `gorm:"column:title;type:varchar(64);not null"`
	Description   string                      `gorm:"column:description;type:varchar(512)"`
	AppID         string                      `gorm:"column:app_id;type:varchar(64);not null"`
	AppSecret     string                      `gorm:"column:app_secret;type:varchar(128);not null"`
	TableURL      string                      `gorm:"column:table_url;type:varchar(1024);not null"`
	NavigationTab string                      `gorm:"column:navigation_tab;type:varchar(32);index"`
	Cities        datatypes.JSONSlice[string] `gorm:"column:cities;type:json"`
	Departments   datatypes.JSONSlice[string] `gorm:"column:departments;type:json"`
	IconURL       string                      `gorm:"column:icon_url;type:varchar(1024)"`
	DisplayFields datatypes.JSONSlice[string] `gorm:"column:display_fields;type:json"`
	FilterConfig  datatypes.JSON              `gorm:"column:filter_config;type:json"`
	IsActive      bool                        `gorm:"column:is_active;not null;default:true;index"`
	SortOrder     int                         `gorm:"column:sort_order;not null;default:0"`
	CreatedAt     time.Time                   `gorm:"column:created_at;not null;index"`
	UpdatedAt     time.Time                   `gorm:"column:updated_at;not null"`
}

func (FeishuCard) TableName() string {
	return "feishu_cards"
}

func (f *FeishuCard) Scope() scope.ResourceScope {
	return scope.ResourceScope{Cities: f.Cities, Departments: f.Departments}
}

func (f *FeishuCard) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return f.ID, true
	case "title":
		return f.Title, true
	case "description":
		return f.Description, true
	case "navigation_tab":
		return f.NavigationTab, true
	case scope.FieldCities:
		return []string(f.Cities), true
	case scope.FieldDepartments:
		return []string(f.Departments), true
	case "is_active":
		return f.IsActive, true
	default:
		return nil, false
	}
}

// Table 从表格链接中解析 app_token 与 table_id
func (f *FeishuCard) Table() (appToken, tableID string, err error) {
	return ParseTableURL(f.TableURL)
}

func ParseTableURL(raw string) (appToken, tableID string, err error) {
	m := tableURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", "", ErrInvalidTableURL
	}
	return m[1], m[2], nil
}
