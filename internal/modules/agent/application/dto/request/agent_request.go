package request

type ListAgentRequest struct {
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
	NavigationTab string `json:"navigation_tab"`
	SearchKeyword string `json:"search_keyword"`
}

type AdminListAgentRequest struct {
	ListAgentRequest
	CityName   string `json:"city_name"`
	Department string `json:"department"`
	IsActive   *bool  `json:"is_active"`
}

type CreateAgentRequest struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	SystemPrompt    string   `json:"system_prompt"`
	MaxTokens       *int     `json:"max_tokens"`
	Temperature     *float64 `json:"temperature"`
	ModelID         string   `json:"model_id"`
	NavigationTab   string   `json:"navigation_tab"`
	Cities          []string `json:"cities"`
	Departments     []string `json:"departments"`
	AgentType       string   `json:"agent_type"`
	VendorServiceID string   `json:"volc_service_id"`
	IconName        string   `json:"icon_name"`
	IconType        string   `json:"icon_type"`
	IconColor       string   `json:"icon_color"`
	IsActive        *bool    `json:"is_active"`
}

// UpdateAgentRequest 仅非 nil 字段会被更新
type UpdateAgentRequest struct {
	AgentID         string    `json:"agent_id"`
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	SystemPrompt    *string   `json:"system_prompt"`
	MaxTokens       *int      `json:"max_tokens"`
	Temperature     *float64  `json:"temperature"`
	ModelID         *string   `json:"model_id"`
	NavigationTab   *string   `json:"navigation_tab"`
	Cities          *[]string `json:"cities"`
	Departments     *[]string `json:"departments"`
	AgentType       *string   `json:"agent_type"`
	VendorServiceID *string   `json:"volc_service_id"`
	IconName        *string   `json:"icon_name"`
	IconType        *string   `json:"icon_type"`
	IconColor       *string   `json:"icon_color"`
	IsActive        *bool     `json:"is_active"`
}

type AgentIDRequest struct {
	AgentID string `json:"agent_id"`
}
