package respond

import "TutorHub/internal/modules/chat/domain/entity"

type SendMessageRespond struct {
	Content string         `json:"content"`
	Usage   map[string]any `json:"usage"`
}

type HistoryItem struct {
	ID        string           `json:"id"`
	AgentID   string           `json:"agent_id"`
	Messages  []entity.Message `json:"messages"`
	Response  string           `json:"response"`
	Usage     map[string]any   `json:"usage"`
	CreatedAt int64            `json:"created_at"`
}

func NewHistoryItem(h *entity.ChatHistory) HistoryItem {
	usage := map[string]any(h.Usage)
	if usage == nil {
		usage = map[string]any{}
	}
	return HistoryItem{
		ID:        h.ID,
		AgentID:   h.AgentID,
		Messages:  []entity.Message(h.Messages),
		Response:  h.Response,
		Usage:     usage,
		CreatedAt: h.CreatedAt.UnixMilli(),
	}
}
