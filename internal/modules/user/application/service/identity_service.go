package service

import (
	"context"
	"errors"
	"strings"

	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/user/domain/repository"
	"TutorHub/pkg/util/myjwt"
	"TutorHub/pkg/xerr"
)

// IdentityService 把 bearer token 解析为调用者身份
type IdentityService interface {
	Resolve(ctx context.Context, credential string) (scope.Identity, error)
}

type identityServiceImpl struct {
	repo   repository.UserInfoRepository
	signer *myjwt.Signer
}

func NewIdentityService(repo repository.UserInfoRepository, signer *myjwt.Signer) IdentityService {
	return &identityServiceImpl{repo: repo, signer: signer}
}

func (s *identityServiceImpl) Resolve(ctx context.Context, credential string) (scope.Identity, error) {
	credential = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(credential), "Bearer "))
	if credential == "" {
		return scope.Identity{}, xerr.ErrUnauthenticated
	}

	claims, err := s.signer.ParseToken(credential)
	if err != nil {
		if errors.Is(err, myjwt.ErrTokenExpired) {
			return scope.Identity{}, xerr.ErrTokenExpired
		}
		return scope.Identity{}, xerr.ErrUnauthenticated
	}

	user, err := s.repo.GetUserInfoByID(ctx, claims.Uid)
	if err != nil {
		return scope.Identity{}, err
	}
	// 已退出或改过密码的 token 版本落后于用户当前版本
	if user == nil || user.TokenVersion != claims.TokenVersion {
		return scope.Identity{}, xerr.ErrUnauthenticated
	}
	return user.Identity(), nil
}
