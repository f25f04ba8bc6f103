package handler

import (
	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/user/application/dto/request"
	"TutorHub/internal/modules/user/application/service"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserInfoHandler struct {
	svc service.UserInfoService
}

func NewUserInfoHandler(svc service.UserInfoService) *UserInfoHandler {
	return &UserInfoHandler{svc: svc}
}

func (h *UserInfoHandler) Login(c *gin.Context) {
	var loginReq request.LoginRequest
	if err := c.BindJSON(&loginReq); err != nil {
		zlog.Error("login bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), loginReq)
	back.Result(c, data, err)
}

func (h *UserInfoHandler) Register(c *gin.Context) {
	var registerReq request.RegisterRequest
	if err := c.BindJSON(&registerReq); err != nil {
		zlog.Error("register bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Register(c.Request.Context(), registerReq)
	back.Result(c, data, err)
}

func (h *UserInfoHandler) GetUserInfo(c *gin.Context) {
	data, err := h.svc.GetUserInfo(c.Request.Context(), jwt.CurrentIdentity(c).ID)
	back.Result(c, data, err)
}

func (h *UserInfoHandler) UpdateUserInfo(c *gin.Context) {
	var req request.UpdateUserInfoRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("update user info bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := h.svc.UpdateUserInfo(c.Request.Context(), jwt.CurrentIdentity(c).ID, req); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "更新成功")
}

func (h *UserInfoHandler) ChangePassword(c *gin.Context) {
	var req request.ChangePasswordRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("change password bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), jwt.CurrentIdentity(c).ID, req); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "密码修改成功")
}

func (h *UserInfoHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), jwt.CurrentIdentity(c).ID); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "退出成功")
}
