package repository

import (
	"context"

	"TutorHub/internal/modules/card/domain/entity"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
)

// WebCardRepository 外链卡片仓储，查不到返回 nil, nil
type WebCardRepository interface {
	GetWebCardByID(ctx context.Context, id string) (*entity.WebCard, error)
	ListWebCards(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.WebCard, int64, error)
	CreateWebCard(ctx context.Context, card *entity.WebCard) error
	UpdateWebCard(ctx context.Context, id string, fields map[string]any) error
	DisableWebCard(ctx context.Context, id string) error
}

// FeishuCardRepository 飞书卡片仓储，查不到返回 nil, nil
type FeishuCardRepository interface {
	GetFeishuCardByID(ctx context.Context, id string) (*entity.FeishuCard, error)
	ListFeishuCards(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.FeishuCard, int64, error)
	CreateFeishuCard(ctx context.Context, card *entity.FeishuCard) error
	UpdateFeishuCard(ctx context.Context, id string, fields map[string]any) error
	DisableFeishuCard(ctx context.Context, id string) error
}
