package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"TutorHub/internal/modules/user/application/dto/request"
	"TutorHub/internal/modules/user/application/dto/respond"
	"TutorHub/internal/modules/user/domain/entity"
	"TutorHub/internal/modules/user/domain/repository"
	"TutorHub/pkg/util"
	"TutorHub/pkg/util/myjwt"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"go.uber.org/zap"
)

const defaultAvatar = "https://cube.elemecdn.com/0/88/03b0d39583f48206768a7534e55bcpng.png"

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
)

// UserInfoService 账号相关用例
type UserInfoService interface {
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
	Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error)
	GetUserInfo(ctx context.Context, uid string) (*respond.UserInfoRespond, error)
	UpdateUserInfo(ctx context.Context, uid string, req request.UpdateUserInfoRequest) error
	ChangePassword(ctx context.Context, uid string, req request.ChangePasswordRequest) error
	Logout(ctx context.Context, uid string) error
}

type userInfoServiceImpl struct {
	repo           repository.UserInfoRepository
	signer         *myjwt.Signer
	invitationCode string
	now            func() time.Time
}

func NewUserInfoService(repo repository.UserInfoRepository, signer *myjwt.Signer, invitationCode string) UserInfoService {
	return &userInfoServiceImpl{
		repo:           repo,
		signer:         signer,
		invitationCode: strings.TrimSpace(invitationCode),
		now:            time.Now,
	}
}

func (s *userInfoServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	account := strings.TrimSpace(req.Account)
	if account == "" {
		account = strings.TrimSpace(req.Mobile)
	}
	if account == "" || req.Password == "" {
		return nil, xerr.New(xerr.BadRequest, "手机号和密码不能为空")
	}

	user, err := s.repo.GetUserInfoByAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.CheckPassword(req.Password) {
		return nil, xerr.New(xerr.Unauthorized, "账号或密码错误")
	}

	now := s.now()
	if err := s.repo.UpdateUserInfo(ctx, user.ID, map[string]any{"last_login_at": now}); err != nil {
		zlog.Warn("update last login failed", zap.String("uid", user.ID), zap.Error(err))
	}
	return s.issue(user)
}

func (s *userInfoServiceImpl) Register(ctx context.Context, req request.RegisterRequest) (*respond.LoginRespond, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.CityName = strings.TrimSpace(req.CityName)
	req.InvitationCode = strings.TrimSpace(req.InvitationCode)

	if req.Username == "" || req.Email == "" || req.Mobile == "" || req.Password == "" || req.CityName == "" || req.InvitationCode == "" {
		return nil, xerr.New(xerr.BadRequest, "所有字段都是必填的")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, xerr.New(xerr.BadRequest, "邮箱格式不正确")
	}
	if !mobilePattern.MatchString(req.Mobile) {
		return nil, xerr.New(xerr.BadRequest, "手机号格式不正确")
	}
	if len(req.Password) < 6 {
		return nil, xerr.New(xerr.BadRequest, "密码至少需要6位")
	}
	if s.invitationCode == "" || req.InvitationCode != s.invitationCode {
		return nil, xerr.New(xerr.BadRequest, "邀请口令不正确")
	}

	uniques := []struct {
		field, value, msg string
	}{
		{"username", req.Username, "用户名已被使用"},
		{"email", req.Email, "邮箱已被注册"},
		{"mobile", req.Mobile, "手机号已被注册"},
	}
	for _, u := range uniques {
		exists, err := s.repo.ExistsBy(ctx, u.field, u.value)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, xerr.New(xerr.BadRequest, u.msg)
		}
	}

	now := s.now()
	user := &entity.UserInfo{
		ID:        util.GenerateUUID(),
		Username:  req.Username,
		Nickname:  req.Username,
		Mobile:    req.Mobile,
		Email:     req.Email,
		Avatar:    defaultAvatar,
		CityName:  req.CityName,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserInfo(ctx, user); err != nil {
		return nil, err
	}

	zlog.Info("user registered", zap.String("uid", user.ID), zap.String("city", user.CityName))
	return s.issue(user)
}

func (s *userInfoServiceImpl) GetUserInfo(ctx context.Context, uid string) (*respond.UserInfoRespond, error) {
	user, err := s.mustGet(ctx, uid)
	if err != nil {
		return nil, err
	}
	return respond.NewUserInfoRespond(user), nil
}

func (s *userInfoServiceImpl) UpdateUserInfo(ctx context.Context, uid string, req request.UpdateUserInfoRequest) error {
	user, err := s.mustGet(ctx, uid)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return xerr.New(xerr.BadRequest, "用户名不能为空")
		}
		if name != user.Username {
			exists, err := s.repo.ExistsBy(ctx, "username", name)
			if err != nil {
				return err
			}
			if exists {
				return xerr.New(xerr.BadRequest, "用户名已被使用")
			}
		}
		fields["username"] = name
	}
	if req.Avatar != nil {
		fields["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if req.CityName != nil {
		fields["city_name"] = strings.TrimSpace(*req.CityName)
	}
	if len(fields) == 0 {
		return xerr.New(xerr.BadRequest, "没有可更新的字段")
	}
	return s.repo.UpdateUserInfo(ctx, user.ID, fields)
}

func (s *userInfoServiceImpl) ChangePassword(ctx context.Context, uid string, req request.ChangePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return xerr.New(xerr.BadRequest, "旧密码和新密码不能为空")
	}
	if len(req.NewPassword) < 6 {
		return xerr.New(xerr.BadRequest, "密码至少需要6位")
	}
	user, err := s.mustGet(ctx, uid)
	if err != nil {
		return err
	}
	if !user.CheckPassword(req.OldPassword) {
		return xerr.New(xerr.BadRequest, "旧密码不正确")
	}

	hash, err := entity.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserInfo(ctx, user.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	// 改密后旧 token 全部失效
	return s.repo.BumpTokenVersion(ctx, user.ID)
}

func (s *userInfoServiceImpl) Logout(ctx context.Context, uid string) error {
	if _, err := s.mustGet(ctx, uid); err != nil {
		return err
	}
	return s.repo.BumpTokenVersion(ctx, uid)
}

func (s *userInfoServiceImpl) mustGet(ctx context.Context, uid string) (*entity.UserInfo, error) {
	user, err := s.repo.GetUserInfoByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, xerr.New(xerr.NotFound, "用户不存在")
	}
	return user, nil
}

func (s *userInfoServiceImpl) issue(user *entity.UserInfo) (*respond.LoginRespond, error) {
	token, expiresAt, err := s.signer.GenerateToken(user.ID, user.Username, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return respond.NewLoginRespond(token, expiresAt, user), nil
}
