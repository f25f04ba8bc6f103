package request

import "TutorHub/internal/modules/chat/domain/entity"

type SendMessageRequest struct {
	AgentID  string           `json:"agent_id"`
	Messages []entity.Message `json:"messages"`
}
