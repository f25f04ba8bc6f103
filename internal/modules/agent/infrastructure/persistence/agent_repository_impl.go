package persistence

import (
	"context"
	"strings"
	"time"

	"TutorHub/internal/modules/agent/domain/entity"
	"TutorHub/internal/modules/agent/domain/repository"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"

	"gorm.io/gorm"
)

type agentRepositoryImpl struct {
	agents *docstore.Collection[entity.Agent]
}

func NewAgentRepository(db *gorm.DB) repository.AgentRepository {
	return &agentRepositoryImpl{agents: docstore.New[entity.Agent](db)}
}

func (r *agentRepositoryImpl) GetAgentByID(ctx context.Context, id string) (*entity.Agent, error) {
	return r.agents.Get(ctx, strings.TrimSpace(id))
}

func (r *agentRepositoryImpl) ListAgents(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.Agent, int64, error) {
	return r.agents.FindPage(ctx, where, opts)
}

func (r *agentRepositoryImpl) CreateAgent(ctx context.Context, ag *entity.Agent) error {
	return r.agents.Insert(ctx, ag)
}

func (r *agentRepositoryImpl) UpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()
	return r.agents.Update(ctx, id, fields)
}

func (r *agentRepositoryImpl) DisableAgent(ctx context.Context, id string) error {
	return r.agents.Update(ctx, id, map[string]any{
		"is_active":  false,
		"updated_at": time.Now(),
	})
}
