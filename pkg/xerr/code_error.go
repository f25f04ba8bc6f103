package xerr

import (
	"errors"
	"fmt"
)

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// Is 按错误码比较，使 errors.Is(err, xerr.ErrForbidden) 对带自定义文案的同码错误也成立
func (e *CodeError) Is(target error) bool {
	t, ok := target.(*CodeError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// Newf 创建带格式化文案的 CodeError
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf 提取错误码，非 CodeError 返回 InternalServerError
func CodeOf(err error) int {
	if err == nil {
		return OK
	}
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalServerError
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
)

// 业务错误码
const (
	TokenExpired        = 4011
	NoModelConfigured   = 4221
	UpstreamError       = 5021
	UnparseableResponse = 5022
)

// 常用预定义错误
var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "系统错误，请联系工作人员")
	ErrParam       = New(BadRequest, "参数错误")

	ErrUnauthenticated     = New(Unauthorized, "未登录或登录已过期")
	ErrTokenExpired        = New(TokenExpired, "token已过期")
	ErrForbidden           = New(Forbidden, "无权限")
	ErrNotAdmin            = New(Forbidden, "无管理权限")
	ErrNotFound            = New(NotFound, "记录不存在")
	ErrNoModelConfigured   = New(NoModelConfigured, "智能体未配置有效模型")
	ErrUpstream            = New(UpstreamError, "模型服务调用失败")
	ErrUnparseableResponse = New(UnparseableResponse, "响应格式错误，无法解析")
)
