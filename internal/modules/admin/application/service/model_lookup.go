package service

import (
	"context"
	"strings"

	"TutorHub/internal/modules/admin/domain/entity"
	"TutorHub/internal/modules/admin/domain/repository"
)

// LookupModel 先按 id 查，查不到再按迁移前的 original_id 查；都没有返回 nil, nil
func LookupModel(ctx context.Context, repo repository.ModelRepository, ref string) (*entity.ModelConfig, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	m, err := repo.GetModelByID(ctx, ref)
	if err != nil || m != nil {
		return m, err
	}
	return repo.GetModelByOriginalID(ctx, ref)
}
