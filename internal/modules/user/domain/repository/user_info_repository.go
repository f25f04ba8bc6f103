package repository

import (
	"context"

	"TutorHub/internal/modules/user/domain/entity"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
)

// UserInfoRepository 用户仓储，查不到时返回 nil, nil
type UserInfoRepository interface {
	CreateUserInfo(ctx context.Context, user *entity.UserInfo) error
	GetUserInfoByID(ctx context.Context, id string) (*entity.UserInfo, error)
	// GetUserInfoByAccount 按手机号或用户名查找
	GetUserInfoByAccount(ctx context.Context, account string) (*entity.UserInfo, error)
	// ExistsBy field 为 username/email/mobile
	ExistsBy(ctx context.Context, field, value string) (bool, error)
	UpdateUserInfo(ctx context.Context, id string, fields map[string]any) error
	BumpTokenVersion(ctx context.Context, id string) error
	ListUsers(ctx context.Context, where filter.Expr, opts docstore.FindOptions) ([]entity.UserInfo, int64, error)
}
