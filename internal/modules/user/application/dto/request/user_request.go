package request

type LoginRequest struct {
	// Account 手机号或用户名
	Account  string `json:"account"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Mobile         string `json:"mobile"`
	Password       string `json:"password"`
	CityName       string `json:"city_name"`
	InvitationCode string `json:"invitation_code"`
}

type UpdateUserInfoRequest struct {
	Username *string `json:"username"`
	Avatar   *string `json:"avatar"`
	CityName *string `json:"city_name"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
