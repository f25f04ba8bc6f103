package respond

import (
	"time"

	"TutorHub/internal/modules/user/domain/entity"
)

type UserInfoRespond struct {
	ID             string `json:"_id"`
	Username       string `json:"username"`
	Nickname       string `json:"nickname,omitempty"`
	Mobile         string `json:"mobile"`
	Email          string `json:"email"`
	Avatar         string `json:"avatar"`
	CityName       string `json:"city_name"`
	DepartmentName string `json:"department_name"`
	IsAdmin        bool   `json:"is_admin"`
	CreatedAt      int64  `json:"created_at"`
}

type LoginRespond struct {
	Token        string           `json:"token"`
	TokenExpired int64            `json:"tokenExpired"`
	UserInfo     *UserInfoRespond `json:"userInfo"`
}

func NewUserInfoRespond(u *entity.UserInfo) *UserInfoRespond {
	if u == nil {
		return nil
	}
	return &UserInfoRespond{
		ID:             u.ID,
		Username:       u.Username,
		Nickname:       u.Nickname,
		Mobile:         u.Mobile,
		Email:          u.Email,
		Avatar:         u.Avatar,
		CityName:       u.CityName,
		DepartmentName: u.DepartmentName,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt.UnixMilli(),
	}
}

func NewLoginRespond(token string, expiresAt time.Time, u *entity.UserInfo) *LoginRespond {
	return &LoginRespond{
		Token:        token,
		TokenExpired: expiresAt.UnixMilli(),
		UserInfo:     NewUserInfoRespond(u),
	}
}
