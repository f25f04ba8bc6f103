package respond

import (
	adminEntity "TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/agent/domain/entity"
)

type AgentItem struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	SystemPrompt  string   `json:"system_prompt"`
	ModelID       string   `json:"model_id"`
	MaxTokens     int      `json:"max_tokens"`
	Temperature   float64  `json:"temperature"`
	NavigationTab string   `json:"navigation_tab"`
	Cities        []string `json:"cities"`
	Departments   []string `json:"departments"`
	AgentType     string   `json:"agent_type,omitempty"`
	IconName      string   `json:"icon_name"`
	IconType      string   `json:"icon_type"`
	IconColor     string   `json:"icon_color"`
	IsActive      bool     `json:"is_active"`
	CreatedAt     int64    `json:"created_at"`
	UpdatedAt     int64    `json:"updated_at"`
}

// ModelSummary 详情页展示的模型信息，不含密钥
type ModelSummary struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	ModelType string `json:"model_type"`
}

type AgentDetailRespond struct {
	AgentItem
	Model *ModelSummary `json:"model,omitempty"`
}

type CreatedRespond struct {
	ID string `json:"id"`
}

func NewAgentItem(a *entity.Agent) AgentItem {
	return AgentItem{
		ID:            a.ID,
		Name:          a.Name,
		Description:   a.Description,
		SystemPrompt:  a.SystemPrompt,
		ModelID:       a.ModelID,
		MaxTokens:     a.MaxTokens,
		Temperature:   a.Temperature,
		NavigationTab: a.NavigationTab,
		Cities:        a.Cities,
		Departments:   a.Departments,
		AgentType:     a.AgentType,
		IconName:      a.IconName,
		IconType:      a.IconType,
		IconColor:     a.IconColor,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt.UnixMilli(),
		UpdatedAt:     a.UpdatedAt.UnixMilli(),
	}
}

func NewModelSummary(m *adminEntity.ModelConfig) *ModelSummary {
	if m == nil {
		return nil
	}
	return &ModelSummary{ID: m.ID, Name: m.Name, ModelType: m.ModelType}
}
