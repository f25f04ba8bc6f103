package persistence

import (
	"context"
	"strings"
	"time"

	"TutorHub/internal/modules/card/domain/entity"
	"TutorHub/internal/modules/card/domain/repository"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"

	"gorm.io/gorm"
)

// CardOrder 卡片统一排序
const CardOrder = "sort_order desc, created_at desc"

type webCardRepositoryImpl struct {
	cards *docstore.Collection[entity.WebCard]
}

func NewWebCardRepository(db *gorm.DB) repository.WebCardRepository {
	return &webCardRepositoryImpl{cards: docstore.New[entity.WebCard](db)}
}

func (r *webCardRepositoryImpl) GetWebCardByID(ctx context.Context, id string) (*entity.WebCard, error) {
	return r.cards.Get(ctx, strings.TrimSpace(id))
}

func (r *webCardRepositoryImpl) ListWebCards(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.WebCard, int64, error) {
	return r.cards.FindPage(ctx, where, opts)
}

func (r *webCardRepositoryImpl) CreateWebCard(ctx context.Context, card *entity.WebCard) error {
	return r.cards.Insert(ctx, card)
}

func (r *webCardRepositoryImpl) UpdateWebCard(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.cards.Update(ctx, id, fields)
}

func (r *webCardRepositoryImpl) DisableWebCard(ctx context.Context, id string) error {
	return r.cards.Update(ctx, id, map[string]any{"is_active": false, "updated_at": time.Now()})
}

type feishuCardRepositoryImpl struct {
	cards *docstore.Collection[entity.FeishuCard]
}

func NewFeishuCardRepository(db *gorm.DB) repository.FeishuCardRepository {
	return &feishuCardRepositoryImpl{cards: docstore.New[entity.FeishuCard](db)}
}

func (r *feishuCardRepositoryImpl) GetFeishuCardByID(ctx context.Context, id string) (*entity.FeishuCard, error) {
	return r.cards.Get(ctx, strings.TrimSpace(id))
}

func (r *feishuCardRepositoryImpl) ListFeishuCards(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.FeishuCard, int64, error) {
	return r.cards.FindPage(ctx, where, opts)
}

func (r *feishuCardRepositoryImpl) CreateFeishuCard(ctx context.Context, card *entity.FeishuCard) error {
	return r.cards.Insert(ctx, card)
}

func (r *feishuCardRepositoryImpl) UpdateFeishuCard(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.cards.Update(ctx, id, fields)
}

func (r *feishuCardRepositoryImpl) DisableFeishuCard(ctx context.Context, id string) error {
	return r.cards.Update(ctx, id, map[string]any{"is_active": false, "updated_at": time.Now()})
}
