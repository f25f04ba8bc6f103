package service

import (
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/xerr"
)

// AccessService 根据调用者身份做管理授权、列表过滤与单条记录授权
type AccessService interface {
	// AuthorizeManage 管理类操作要求管理员
	AuthorizeManage(id scope.Identity) error
	// BuildListPredicate 返回 nil 表示不过滤
	BuildListPredicate(id scope.Identity, kind scope.Kind) filter.Expr
	// AuthorizeRecord 对已取出的单条记录判断可见性
	AuthorizeRecord(id scope.Identity, rec scope.Scoped) error
}

type accessServiceImpl struct{}

func NewAccessService() AccessService {
	return &accessServiceImpl{}
}

func (s *accessServiceImpl) AuthorizeManage(id scope.Identity) error {
	if !id.Authenticated() {
		return xerr.ErrUnauthenticated
	}
	if !id.IsAdmin {
		return xerr.ErrNotAdmin
	}
	return nil
}

func (s *accessServiceImpl) BuildListPredicate(id scope.Identity, kind scope.Kind) filter.Expr {
	if kind == scope.KindUser {
		// 城市管理员只能管理本城市用户
		if id.IsAdmin {
			if id.HomeCity == "" {
				return nil
			}
			return filter.Eq{Field: scope.FieldCityName, Value: id.HomeCity}
		}
		return filter.Eq{Field: scope.FieldID, Value: id.ID}
	}

	if id.IsAdmin || !kind.Scoped() {
		return nil
	}
	return scope.Visible(id.HomeCity, id.HomeDepartment)
}

func (s *accessServiceImpl) AuthorizeRecord(id scope.Identity, rec scope.Scoped) error {
	if !id.Authenticated() {
		return xerr.ErrUnauthenticated
	}
	if id.IsAdmin {
		return nil
	}
	if rec == nil || !filter.Match(scope.Visible(id.HomeCity, id.HomeDepartment), rec.Scope()) {
		return xerr.ErrForbidden
	}
	return nil
}
