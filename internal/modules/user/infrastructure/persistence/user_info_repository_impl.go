package persistence

import (
	"context"
	"strings"
	"time"

	"TutorHub/internal/modules/user/domain/entity"
	"TutorHub/internal/modules/user/domain/repository"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"

	"gorm.io/gorm"
)

type userInfoRepositoryImpl struct {
	users *docstore.Collection[entity.UserInfo]
}

func NewUserInfoRepository(db *gorm.DB) repository.UserInfoRepository {
	return &userInfoRepositoryImpl{users: docstore.New[entity.UserInfo](db)}
}

func (r *userInfoRepositoryImpl) CreateUserInfo(ctx context.Context, user *entity.UserInfo) error {
	return r.users.Insert(ctx, user)
}

func (r *userInfoRepositoryImpl) GetUserInfoByID(ctx context.Context, id string) (*entity.UserInfo, error) {
	return r.users.Get(ctx, strings.TrimSpace(id))
}

func (r *userInfoRepositoryImpl) GetUserInfoByAccount(ctx context.Context, account string) (*entity.UserInfo, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, nil
	}
	return r.users.FindOne(ctx, filter.Or{
		filter.Eq{Field: "mobile", Value: account},
		filter.Eq{Field: "username", Value: account},
	})
}

func (r *userInfoRepositoryImpl) ExistsBy(ctx context.Context, field, value string) (bool, error) {
	switch field {
	case "username", "email", "mobile":
	default:
		return false, nil
	}
	n, err := r.users.Count(ctx, filter.Eq{Field: field, Value: value})
	return n > 0, err
}

func (r *userInfoRepositoryImpl) UpdateUserInfo(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.users.Update(ctx, id, fields)
}

func (r *userInfoRepositoryImpl) BumpTokenVersion(ctx context.Context, id string) error {
	return r.users.Update(ctx, id, map[string]any{
		"token_version": gorm.Expr("token_version + 1"),
		"updated_at":    time.Now(),
	})
}

func (r *userInfoRepositoryImpl) ListUsers(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.UserInfo, int64, error) {
	return r.users.FindPage(ctx, where, opts)
}
