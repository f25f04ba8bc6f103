package handler

import (
	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/agent/application/dto/request"
	"TutorHub/internal/modules/agent/application/service"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AgentHandler struct {
	svc service.AgentService
}

func NewAgentHandler(svc service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

func (h *AgentHandler) List(c *gin.Context) {
	var req request.ListAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		zlog.Error("agent list bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.List(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AgentHandler) AdminList(c *gin.Context) {
	var req request.AdminListAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		zlog.Error("agent admin list bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.AdminList(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AgentHandler) Detail(c *gin.Context) {
	var req request.AgentIDRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("agent detail bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Detail(c.Request.Context(), jwt.CurrentIdentity(c), req.AgentID)
	back.Result(c, data, err)
}

func (h *AgentHandler) Create(c *gin.Context) {
	var req request.CreateAgentRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("agent create bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *AgentHandler) Update(c *gin.Context) {
	var req request.UpdateAgentRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("agent update bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := h.svc.Update(c.Request.Context(), jwt.CurrentIdentity(c), req.AgentID, req); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "更新成功")
}

func (h *AgentHandler) Delete(c *gin.Context) {
	var req request.AgentIDRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("agent delete bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), jwt.CurrentIdentity(c), req.AgentID); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "删除成功")
}
