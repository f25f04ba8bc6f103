package entity

import (
	"time"

	"TutorHub/internal/modules/access/domain/scope"

	"golang.org/x/crypto/bcrypt"
)

var passwordCost = bcrypt.DefaultCost

// UserInfo 用户表
type UserInfo struct {
	ID             string     `gorm:"column:id;type:char(36);primaryKey;comment:用户id"`
	Username       string     `gorm:"column:username;type:varchar(64);uniqueIndex;not null;comment:用户名"`
	Nickname       string     `gorm:"column:nickname;type:varchar(64);comment:昵称"`
	Mobile         string     `gorm:"column:mobile;type:varchar(20);index;comment:手机号"`
	Email          string     `gorm:"column:email;type:varchar(128);index;comment:邮箱"`
	Password       string     `gorm:"column:password;type:varchar(100);not null;comment:bcrypt 密码"`
	Avatar         string     `gorm:"column:avatar;type:varchar(255);comment:头像"`
	CityName       string     `gorm:"column:city_name;type:varchar(64);index;comment:所属城市"`
	DepartmentName string     `gorm:"column:department_name;type:varchar(64);index;comment:所属部门"`
	IsAdmin        bool       `gorm:"column:is_admin;not null;default:false;comment:是否管理员"`
	TokenVersion   int        `gorm:"column:token_version;not null;default:0;comment:token 版本，退出或改密时递增"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at;comment:最近登录时间"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null;comment:注册时间"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null;comment:更新时间"`
}

func (UserInfo) TableName() string {
	return "user_info"
}

// SetPassword 以 bcrypt 保存密码
func (u *UserInfo) SetPassword(plain string) error {
	hash, err := HashPassword(plain)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

func (u *UserInfo) CheckPassword(plain string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

func (u *UserInfo) Identity() scope.Identity {
	return scope.Identity{
		ID:             u.ID,
		Username:       u.Username,
		IsAdmin:        u.IsAdmin,
		HomeCity:       u.CityName,
		HomeDepartment: u.DepartmentName,
	}
}

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (u *UserInfo) Lookup(field string) (any, bool) {
	switch field {
	case scope.FieldID:
		return u.ID, true
	case "username":
		return u.Username, true
	case "mobile":
		return u.Mobile, true
	case scope.FieldCityName:
		return u.CityName, true
	case "department_name":
		return u.DepartmentName, true
	case "is_admin":
		return u.IsAdmin, true
	default:
		return nil, false
	}
}
