package repository

import (
	"context"

	"TutorHub/internal/modules/agent/domain/entity"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
)

// AgentRepository 智能体仓储
type AgentRepository interface {
	// GetAgentByID 查不到返回 nil, nil
	GetAgentByID(ctx context.Context, id string) (*entity.Agent, error)
	ListAgents(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.Agent, int64, error)
	CreateAgent(ctx context.Context, ag *entity.Agent) error
	UpdateAgent(ctx context.Context, id string, fields map[string]any) error
	// DisableAgent 软删除
	DisableAgent(ctx context.Context, id string) error
}
