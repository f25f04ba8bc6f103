package request

import "encoding/json"

type ListCardRequest struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
	NavigationTab string `json:"navigation_tab"`
	SearchKeyword string `json:"search_keyword"`
}

type AdminListCardRequest struct {
	ListCardRequest
	CityName   string `json:"city_name"`
	Department string `json:"department"`
	IsActive   *bool  `json:"is_active"`
}

type CardIDRequest struct {
	CardID string `json:"card_id"`
}

type CreateWebCardRequest struct {
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
	IsActive      *bool    `json:"is_active"`
	SortOrder     *int     `json:"sort_order"`
}

// UpdateWebCardRequest 仅非 nil 字段会被更新
type UpdateWebCardRequest struct {
	CardID        string    `json:"card_id"`
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	URL           *string   `json:"url"`
	IconName      *string   `json:"icon_name"`
	IconType      *string   `json:"icon_type"`
	IconColor     *string   `json:"icon_color"`
	OpenMode      *string   `json:"open_mode"`
	NavigationTab *string   `json:"navigation_tab"`
	Cities        *[]string `json:"cities"`
	Departments   *[]string `json:"departments"`
	IsActive      *bool     `json:"is_active"`
	SortOrder     *int      `json:"sort_order"`
}

type CreateFeishuCardRequest struct {
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	AppID         string          `json:"app_id"`
	AppSecret     string          `json:"app_secret"`
	TableURL      string          `json:"table_url"`
	NavigationTab string          `json:"navigation_tab"`
	Cities        []string        `json:"cities"`
	Departments   []string        `json:"departments"`
	IconURL       string          `json:"icon_url"`
	DisplayFields []string        `json:"display_fields"`
	FilterConfig  json.RawMessage `json:"filter_config"`
	IsActive      *bool           `json:"is_active"`
	SortOrder     *int            `json:"sort_order"`
}

// UpdateFeishuCardRequest 仅非 nil 字段会被更新
type UpdateFeishuCardRequest struct {
	CardID        string          `json:"card_id"`
	Title         *string         `json:"title"`
	Description   *string         `json:"description"`
	AppID         *string         `json:"app_id"`
	AppSecret     *string         `json:"app_secret"`
	TableURL      *string         `json:"table_url"`
	NavigationTab *string         `json:"navigation_tab"`
	Cities        *[]string       `json:"cities"`
	Departments   *[]string       `json:"departments"`
	IconURL       *string         `json:"icon_url"`
	DisplayFields *[]string       `json:"display_fields"`
	FilterConfig  json.RawMessage `json:"filter_config"`
	IsActive      *bool           `json:"is_active"`
	SortOrder     *int            `json:"sort_order"`
}

// FetchTableDataRequest filter 可以是飞书过滤表达式字符串，也可以是任意 JSON
type FetchTableDataRequest struct {
	CardID    string          `json:"card_id"`
	PageToken string          `json:"page_token"`
	PageSize  int             `json:"page_size"`
	Filter    json.RawMessage `json:"filter"`
}
