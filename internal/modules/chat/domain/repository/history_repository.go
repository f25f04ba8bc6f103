package repository

import (
	"context"

	"TutorHub/internal/modules/chat/domain/entity"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
)

// HistoryRepository 对话记录仓储
type HistoryRepository interface {
	AppendHistory(ctx context.Context, h *entity.ChatHistory) error
	// GetHistoryByID 查不到返回 nil, nil
	GetHistoryByID(ctx context.Context, id string) (*entity.ChatHistory, error)
	ListHistory(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.ChatHistory, int64, error)
	DeleteHistory(ctx context.Context, id string) error
}
