package service

import (
	"context"
	"strings"

	accessService "TutorHub/internal/modules/access/application/service"
	"TutorHub/internal/modules/access/domain/scope"
	"TutorHub/internal/modules/admin/application/dto/request"
	"TutorHub/internal/modules/admin/application/dto/respond"
	userRespond "TutorHub/internal/modules/user/application/dto/respond"
	userEntity "TutorHub/internal/modules/user/domain/entity"
	userRepository "TutorHub/internal/modules/user/domain/repository"
	"TutorHub/pkg/back"
	"TutorHub/pkg/docstore"
	"TutorHub/pkg/filter"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
)

var (
	errMissingUserID   = xerr.New(xerr.BadRequest, "缺少用户ID")
	errUserNotFound    = xerr.New(xerr.NotFound, "用户不存在")
	errUserOutOfScope  = xerr.New(xerr.Forbidden, "无权限管理该用户")
	errNothingToUpdate = xerr.New(xerr.BadRequest, "没有需要更新的字段")
	errCityTransfer    = xerr.New(xerr.Forbidden, "城市管理员不能把用户调出本城市")
	errGrantAdmin      = xerr.New(xerr.Forbidden, "只有超级管理员可以设置管理员权限")
)

// resetPasswordPrefix 未指定新密码时使用 前缀 + 手机号后四位
const resetPasswordPrefix = "Tz"

// UserAdminService 后台用户管理，城市管理员只能看到和修改本城市用户
type UserAdminService interface {
	ListUsers(ctx context.Context, id scope.Identity, req request.ListUsersRequest) (*back.PageData, error)
	UpdateUser(ctx context.Context, id scope.Identity, req request.UpdateUserRequest) error
	ResetPassword(ctx context.Context, id scope.Identity, req request.ResetPasswordRequest) (*respond.ResetPasswordRespond, error)
}

type userAdminServiceImpl struct {
	users  userRepository.UserInfoRepository
	access accessService.AccessService
}

func NewUserAdminService(users userRepository.UserInfoRepository, access accessService.AccessService) UserAdminService {
	return &userAdminServiceImpl{users: users, access: access}
}

func (s *userAdminServiceImpl) ListUsers(ctx context.Context, id scope.Identity, req request.ListUsersRequest) (*back.PageData, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}

	var exprs []filter.Expr
	if city := strings.TrimSpace(req.City); city != "" {
		exprs = append(exprs, filter.Eq{Field: scope.FieldCityName, Value: city})
	}
	if dept := strings.TrimSpace(req.Department); dept != "" {
		exprs = append(exprs, filter.Eq{Field: "department_name", Value: dept})
	}
	exprs = append(exprs,
		filter.Keyword(req.Search, "username", "mobile"),
		s.access.BuildListPredicate(id, scope.KindUser),
	)

	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	users, total, err := s.users.ListUsers(ctx, filter.All(exprs...), docstore.Page(page, pageSize, "created_at desc"))
	if err != nil {
		return nil, err
	}
	items := make([]*userRespond.UserInfoRespond, 0, len(users))
	for i := range users {
		items = append(items, userRespond.NewUserInfoRespond(&users[i]))
	}
	return &back.PageData{List: items, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *userAdminServiceImpl) UpdateUser(ctx context.Context, id scope.Identity, req request.UpdateUserRequest) error {
	if err := s.access.AuthorizeManage(id); err != nil {
		return err
	}
	if _, err := s.manageable(ctx, id, req.ID); err != nil {
		return err
	}

	// 城市管理员不能越出本城市，也不能授予或撤销管理员
	fields := map[string]any{}
	if req.CityName != nil {
		city := strings.TrimSpace(*req.CityName)
		if id.CityBound() && city != id.HomeCity {
			return errCityTransfer
		}
		fields["city_name"] = city
	}
	if req.DepartmentName != nil {
		fields["department_name"] = strings.TrimSpace(*req.DepartmentName)
	}
	if req.IsAdmin != nil {
		if id.CityBound() {
			return errGrantAdmin
		}
		fields["is_admin"] = *req.IsAdmin
	}
	if req.Avatar != nil {
		fields["avatar"] = *req.Avatar
	}
	if req.Nickname != nil {
		fields["nickname"] = *req.Nickname
	}
	if len(fields) == 0 {
		return errNothingToUpdate
	}
	if err := s.users.UpdateUserInfo(ctx, req.ID, fields); err != nil {
		return err
	}
	zlog.Info("admin updated user", zap.String("uid", req.ID), zap.String("operator", id.ID))
	return nil
}

func (s *userAdminServiceImpl) ResetPassword(ctx context.Context, id scope.Identity, req request.ResetPasswordRequest) (*respond.ResetPasswordRespond, error) {
	if err := s.access.AuthorizeManage(id); err != nil {
		return nil, err
	}
	user, err := s.manageable(ctx, id, req.ID)
	if err != nil {
		return nil, err
	}

	password := strings.TrimSpace(req.NewPassword)
	if password == "" {
		if user.Mobile == "" {
			return nil, xerr.New(xerr.BadRequest, "该用户未绑定手机号，请指定新密码")
		}
		mobile := user.Mobile
		if len(mobile) > 4 {
			mobile = mobile[len(mobile)-4:]
		}
		password = resetPasswordPrefix + mobile
	}

	hash, err := userEntity.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateUserInfo(ctx, user.ID, map[string]any{"password": hash}); err != nil {
		return nil, err
	}
	// 旧 token 全部失效
	if err := s.users.BumpTokenVersion(ctx, user.ID); err != nil {
		return nil, err
	}
	zlog.Info("admin reset password", zap.String("uid", user.ID), zap.String("operator", id.ID))
	return &respond.ResetPasswordRespond{NewPassword: password}, nil
}

// manageable 取出目标用户并校验是否在管理范围内
func (s *userAdminServiceImpl) manageable(ctx context.Context, id scope.Identity, userID string) (*userEntity.UserInfo, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errMissingUserID
	}
	user, err := s.users.GetUserInfoByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errUserNotFound
	}
	if !filter.Match(s.access.BuildListPredicate(id, scope.KindUser), user) {
		return nil, errUserOutOfScope
	}
	return user, nil
}
