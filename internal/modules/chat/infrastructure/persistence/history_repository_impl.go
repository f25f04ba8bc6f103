package persistence

import (
	"context"
	"strings"

	"TutorHub/internal/modules/chat/domain/entity"
	"TutorHub/internal/modules/chat/domain/repository"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"

	"gorm.io/gorm"
)

type historyRepositoryImpl struct {
	history *docstore.Collection[entity.ChatHistory]
}

func NewHistoryRepository(db *gorm.DB) repository.HistoryRepository {
	return &historyRepositoryImpl{history: docstore.New[entity.ChatHistory](db)}
}

func (r *historyRepositoryImpl) AppendHistory(ctx context.Context, h *entity.ChatHistory) error {
	return r.history.Insert(ctx, h)
}

func (r *historyRepositoryImpl) GetHistoryByID(ctx context.Context, id string) (*entity.ChatHistory, error) {
	return r.history.Get(ctx, strings.TrimSpace(id))
}

func (r *historyRepositoryImpl) ListHistory(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.ChatHistory, int64, error) {
	return r.history.FindPage(ctx, where, opts)
}

func (r *historyRepositoryImpl) DeleteHistory(ctx context.Context, id string) error {
	return r.history.Remove(ctx, id)
}
