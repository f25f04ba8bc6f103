package request

type IDRequest struct {
	ID string `json:"id"`
}

type ListUsersRequest struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	City       string `json:"city"`
	Department string `json:"department"`
	// Search 用户名或手机号
	Search string `json:"search"`
}

// UpdateUserRequest 仅非 nil 字段会被更新
type UpdateUserRequest struct {
	ID             string  `json:"id"`
	CityName       *string `json:"city_name"`
	DepartmentName *string `json:"department_name"`
	IsAdmin        *bool   `json:"is_admin"`
	Avatar         *string `json:"avatar"`
	Nickname       *string `json:"nickname"`
}

type ResetPasswordRequest struct {
	ID          string `json:"id"`
	NewPassword string `json:"newPassword"`
}

type CreateCityRequest struct {
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive *bool  `json:"is_active"`
}

type UpdateCityRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name"`
	Code     *string `json:"code"`
	IsActive *bool   `json:"is_active"`
}

type CreateDepartmentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   *int   `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateDepartmentRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

type CreateModelRequest struct {
	Name            string `json:"name"`
	APIURL          string `json:"api_url"`
	APIKey          string `json:"api_key"`
	ModelType       string `json:"model_type"`
	VendorServiceID string `json:"volc_service_id"`
	Description     string `json:"description"`
}

type UpdateModelRequest struct {
	ID              string  `json:"id"`
	Name            *string `json:"name"`
	APIURL          *string `json:"api_url"`
	APIKey          *string `json:"api_key"`
	ModelType       *string `json:"model_type"`
	VendorServiceID *string `json:"volc_service_id"`
	Description     *string `json:"description"`
	IsActive        *bool   `json:"is_active"`
}
