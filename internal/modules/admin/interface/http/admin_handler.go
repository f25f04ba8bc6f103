package handler

import (
	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/admin/application/dto/request"
	"TutorHub/internal/modules/admin/application/service"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler 后台管理：用户、城市、部门、模型
type AdminHandler struct {
	users      service.UserAdminService
	dictionary service.DictionaryService
	models     service.ModelService
}

func NewAdminHandler(users service.UserAdminService, dictionary service.DictionaryService, models service.ModelService) *AdminHandler {
	return &AdminHandler{users: users, dictionary: dictionary, models: models}
}

func bind(c *gin.Context, req any, op string) bool {
	if err := c.BindJSON(req); err != nil {
		zlog.Error(op+" bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return false
	}
	return true
}

func done(c *gin.Context, err error, message string) {
	if err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, message)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req request.ListUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		zlog.Error("admin list users bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.users.ListUsers(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req request.UpdateUserRequest
	if !bind(c, &req, "admin update user") {
		return
	}
	done(c, h.users.UpdateUser(c.Request.Context(), jwt.CurrentIdentity(c), req), "更新成功")
}

func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req request.ResetPasswordRequest
	if !bind(c, &req, "admin reset password") {
		return
	}
	data, err := h.users.ResetPassword(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) ListCities(c *gin.Context) {
	data, err := h.dictionary.ListCities(c.Request.Context(), jwt.CurrentIdentity(c))
	back.Result(c, data, err)
}

func (h *AdminHandler) CreateCity(c *gin.Context) {
	var req request.CreateCityRequest
	if !bind(c, &req, "admin create city") {
		return
	}
	data, err := h.dictionary.CreateCity(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) UpdateCity(c *gin.Context) {
	var req request.UpdateCityRequest
	if !bind(c, &req, "admin update city") {
		return
	}
	done(c, h.dictionary.UpdateCity(c.Request.Context(), jwt.CurrentIdentity(c), req), "更新成功")
}

func (h *AdminHandler) DeleteCity(c *gin.Context) {
	var req request.IDRequest
	if !bind(c, &req, "admin delete city") {
		return
	}
	done(c, h.dictionary.DeleteCity(c.Request.Context(), jwt.CurrentIdentity(c), req.ID), "删除成功")
}

func (h *AdminHandler) ListDepartments(c *gin.Context) {
	data, err := h.dictionary.ListDepartments(c.Request.Context(), jwt.CurrentIdentity(c))
	back.Result(c, data, err)
}

func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req request.CreateDepartmentRequest
	if !bind(c, &req, "admin create department") {
		return
	}
	data, err := h.dictionary.CreateDepartment(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) UpdateDepartment(c *gin.Context) {
	var req request.UpdateDepartmentRequest
	if !bind(c, &req, "admin update department") {
		return
	}
	done(c, h.dictionary.UpdateDepartment(c.Request.Context(), jwt.CurrentIdentity(c), req), "更新成功")
}

func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	var req request.IDRequest
	if !bind(c, &req, "admin delete department") {
		return
	}
	done(c, h.dictionary.DeleteDepartment(c.Request.Context(), jwt.CurrentIdentity(c), req.ID), "删除成功")
}

func (h *AdminHandler) ListModels(c *gin.Context) {
	data, err := h.models.ListModels(c.Request.Context(), jwt.CurrentIdentity(c))
	back.Result(c, data, err)
}

func (h *AdminHandler) CreateModel(c *gin.Context) {
	var req request.CreateModelRequest
	if !bind(c, &req, "admin create model") {
		return
	}
	data, err := h.models.CreateModel(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AdminHandler) UpdateModel(c *gin.Context) {
	var req request.UpdateModelRequest
	if !bind(c, &req, "admin update model") {
		return
	}
	done(c, h.models.UpdateModel(c.Request.Context(), jwt.CurrentIdentity(c), req), "更新成功")
}

func (h *AdminHandler) DeleteModel(c *gin.Context) {
	var req request.IDRequest
	if !bind(c, &req, "admin delete model") {
		return
	}
	done(c, h.models.DeleteModel(c.Request.Context(), jwt.CurrentIdentity(c), req.ID), "删除成功")
}
