package respond

import (
	"encoding/json"

	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/card/domain/entity"
)

type WebCardItem struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	URL           string   `json:"url"`
	IconName      string   `json:"icon_name"`
	IconType      string   `json:"icon_type"`
	IconColor     string   `json:"icon_color"`
	OpenMode      string   `json:"open_mode"`
	NavigationTab string   `json:"navigation_tab"`
	Cities        []string `json:"cities"`
	Departments   []string `json:"departments"`
	IsActive      bool     `json:"is_active"`
	SortOrder     int      `json:"sort_order"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
}

// FeishuCardItem 不含应用凭据
type FeishuCardItem struct {
	ID            string          `json:"_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	TableURL      string          `json:"table_url"`
	NavigationTab string          `json:"navigation_tab"`
	Cities        []string        `json:"cities"`
	Departments   []string        `json:"departments"`
	IconURL       string          `json:"icon_url"`
	DisplayFields []string        `json:"display_fields"`
	FilterConfig  json.RawMessage `json:"filter_config,omitempty"`
	IsActive      bool            `json:"is_active"`
	SortOrder     int             `json:"sort_order"`
	CreatedAt     int64           `json:"created_at"`
	UpdatedAt     int64           `json:"updated_at"`
}

// FeishuCardAdminItem 管理端展示 app_id 与打码后的 app_secret
type FeishuCardAdminItem struct {
	FeishuCardItem
	AppID     string `json:"app_id"`
	AppSecret string `json:"app_secret"`
}

type CreatedRespond struct {
	ID string `json:"id"`
}

func NewWebCardItem(w *entity.WebCard) WebCardItem {
	return WebCardItem{
		ID:            w.ID,
		Title:         w.Title,
		Description:   w.Description,
		URL:           w.URL,
		IconName:      w.IconName,
		IconType:      w.IconType,
		IconColor:     w.IconColor,
		OpenMode:      w.OpenMode,
		NavigationTab: w.NavigationTab,
		Cities:        w.Cities,
		Departments:   w.Departments,
		IsActive:      w.IsActive,
		SortOrder:     w.SortOrder,
		CreatedAt:     w.CreatedAt.UnixMilli(),
		UpdatedAt:     w.UpdatedAt.UnixMilli(),
	}
}

func NewFeishuCardItem(f *entity.FeishuCard) FeishuCardItem {
	item := FeishuCardItem{
		ID:            f.ID,
		Title:         f.Title,
		Description:   f.Description,
		TableURL:      f.TableURL,
		NavigationTab: f.NavigationTab,
		Cities:        f.Cities,
		Departments:   f.Departments,
		IconURL:       f.IconURL,
		DisplayFields: f.DisplayFields,
		IsActive:      f.IsActive,
		SortOrder:     f.SortOrder,
		CreatedAt:     f.CreatedAt.UnixMilli(),
		UpdatedAt:     f.UpdatedAt.UnixMilli(),
	}
	if len(f.FilterConfig) > 0 {
		item.FilterConfig = json.RawMessage(f.FilterConfig)
	}
	if item.DisplayFields == nil {
		item.DisplayFields = []string{}
	}
	return item
}

func NewFeishuCardAdminItem(f *entity.FeishuCard) FeishuCardAdminItem {
	return FeishuCardAdminItem{
		FeishuCardItem: NewFeishuCardItem(f),
		AppID:          f.AppID,
		AppSecret:      adminEntity.MaskKey(f.AppSecret),
	}
}
