package handler

import (
	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/card/application/dto/request"
	"TutorHub/internal/modules/card/application/service"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bindOptional 允许空请求体
func bindOptional(c *gin.Context, req any, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil && c.Request.ContentLength > 0 {
		zlog.Error(op+" bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return false
	}
	return true
}

func bind(c *gin.Context, req any, op string) bool {
	if err := c.BindJSON(req); err != nil {
		zlog.Error(op+" bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return false
	}
	return true
}

type WebCardHandler struct {
	svc service.WebCardService
}

func NewWebCardHandler(svc service.WebCardService) *WebCardHandler {
	return &WebCardHandler{svc: svc}
}

func (h *WebCardHandler) List(c *gin.Context) {
	var req request.ListCardRequest
	if !bindOptional(c, &req, "web card list") {
		return
	}
	data, err := h.svc.List(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *WebCardHandler) AdminList(c *gin.Context) {
	var req request.AdminListCardRequest
	if !bindOptional(c, &req, "web card admin list") {
		return
	}
	data, err := h.svc.AdminList(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *WebCardHandler) Detail(c *gin.Context) {
	var req request.CardIDRequest
	if !bind(c, &req, "web card detail") {
		return
	}
	data, err := h.svc.Detail(c.Request.Context(), jwt.CurrentIdentity(c), req.CardID)
	back.Result(c, data, err)
}

func (h *WebCardHandler) Create(c *gin.Context) {
	var req request.CreateWebCardRequest
	if !bind(c, &req, "web card create") {
		return
	}
	data, err := h.svc.Create(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *WebCardHandler) Update(c *gin.Context) {
	var req request.UpdateWebCardRequest
	if !bind(c, &req, "web card update") {
		return
	}
	if err := h.svc.Update(c.Request.Context(), jwt.CurrentIdentity(c), req); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "更新成功")
}

func (h *WebCardHandler) Delete(c *gin.Context) {
	var req request.CardIDRequest
	if !bind(c, &req, "web card delete") {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), jwt.CurrentIdentity(c), req.CardID); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "删除成功")
}

type FeishuCardHandler struct {
	svc service.FeishuCardService
}

func NewFeishuCardHandler(svc service.FeishuCardService) *FeishuCardHandler {
	return &FeishuCardHandler{svc: svc}
}

func (h *FeishuCardHandler) List(c *gin.Context) {
	var req request.ListCardRequest
	if !bindOptional(c, &req, "feishu card list") {
		return
	}
	data, err := h.svc.List(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *FeishuCardHandler) AdminList(c *gin.Context) {
	var req request.AdminListCardRequest
	if !bindOptional(c, &req, "feishu card admin list") {
		return
	}
	data, err := h.svc.AdminList(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *FeishuCardHandler) Detail(c *gin.Context) {
	var req request.CardIDRequest
	if !bind(c, &req, "feishu card detail") {
		return
	}
	data, err := h.svc.Detail(c.Request.Context(), jwt.CurrentIdentity(c), req.CardID)
	back.Result(c, data, err)
}

func (h *FeishuCardHandler) Create(c *gin.Context) {
	var req request.CreateFeishuCardRequest
	if !bind(c, &req, "feishu card create") {
		return
	}
	data, err := h.svc.Create(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *FeishuCardHandler) Update(c *gin.Context) {
	var req request.UpdateFeishuCardRequest
	if !bind(c, &req, "feishu card update") {
		return
	}
	if err := h.svc.Update(c.Request.Context(), jwt.CurrentIdentity(c), req); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "更新成功")
}

func (h *FeishuCardHandler) Delete(c *gin.Context) {
	var req request.CardIDRequest
	if !bind(c, &req, "feishu card delete") {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), jwt.CurrentIdentity(c), req.CardID); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "删除成功")
}

func (h *FeishuCardHandler) FetchTableData(c *gin.Context) {
	var req request.FetchTableDataRequest
	if !bind(c, &req, "feishu fetch table data") {
		return
	}
	data, err := h.svc.FetchTableData(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *FeishuCardHandler) GetTableFields(c *gin.Context) {
	var req request.CardIDRequest
	if !bind(c, &req, "feishu table fields") {
		return
	}
	data, err := h.svc.GetTableFields(c.Request.Context(), jwt.CurrentIdentity(c), req.CardID)
	back.Result(c, data, err)
}
