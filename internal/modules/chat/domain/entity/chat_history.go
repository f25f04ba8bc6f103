package entity

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话记录中的一条消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatHistory 非流式对话成功后写入一条，messages 含合成的 system 消息
type ChatHistory struct {
	ID        string                       `gorm:"column:id;type:char(36);primaryKey"`
	UserID    string                       `gorm:"column:user_id;type:char(36);not null;index:idx_user_created,priority:1"`
	AgentID   string                       `gorm:"column:agent_id;type:char(36);not null;index"`
	Messages  datatypes.JSONSlice[Message] `gorm:"column:messages;type:json"`
	Response  string                       `gorm:"column:response;type:mediumtext"`
	Usage     datatypes.JSONMap            `gorm:"column:usage;type:json"`
	CreatedAt time.Time                    `gorm:"column:created_at;not null;index:idx_user_created,priority:2"`
}

func (ChatHistory) TableName() string {
	return "chat_history"
}

func (h *ChatHistory) Lookup(field string) (any, bool) {
	switch field {
	case "id":
		return h.ID, true
	case "user_id":
		return h.UserID, true
	case "agent_id":
		return h.AgentID, true
	default:
		return nil, false
	}
}
