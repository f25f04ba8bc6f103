package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/chat/application/dto/request"
	"TutorHub/internal/modules/chat/application/service"
	"TutorHub/internal/modules/chat/infrastructure/relay"
	"TutorHub/pkg/back"
	"TutorHub/pkg/xerr"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	svc service.ChatService
}

func NewChatHandler(svc service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// SendMessage 非流式对话
//
// 路由: POST /chat/sendMessage
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("chat send message bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.SendMessage(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

// Stream 流式对话（SSE），上游 data 帧原样转发，以一个 data: [DONE] 结束
//
// 路由: POST /chat/stream
func (h *ChatHandler) Stream(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("chat stream bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}

	identity := jwt.CurrentIdentity(c)
	sink := &sseSink{c: c}
	guard := relay.NewGuard(sink)
	err := h.svc.SendMessageStream(c.Request.Context(), identity, req, guard)
	if err == nil {
		return
	}
	if !sink.started {
		// 还没开始推流，按普通 JSON 返回错误
		back.Result(c, nil, err)
		return
	}
	if !guard.Terminated() {
		if ferr := guard.Fail(errorMessage(err)); ferr != nil {
			zlog.Debug("chat stream error frame not delivered", zap.Error(ferr), zap.String("uid", identity.ID))
		}
	}
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	var req request.GetHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		zlog.Error("chat get history bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.GetHistory(c.Request.Context(), jwt.CurrentIdentity(c), req)
	back.Result(c, data, err)
}

func (h *ChatHandler) DeleteHistory(c *gin.Context) {
	var req request.DeleteHistoryRequest
	if err := c.BindJSON(&req); err != nil {
		zlog.Error("chat delete history bind error", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	if err := h.svc.DeleteHistory(c.Request.Context(), jwt.CurrentIdentity(c), req.HistoryID); err != nil {
		back.Result(c, nil, err)
		return
	}
	back.Message(c, "删除成功")
}

// sseSink 首帧写出前才发送 SSE 响应头，校验失败时仍可返回 JSON
type sseSink struct {
	c       *gin.Context
	started bool
}

func (s *sseSink) start() {
	if s.started {
		return
	}
	s.started = true
	s.c.Header("Content-Type", "text/event-stream; charset=utf-8")
	s.c.Header("Cache-Control", "no-cache")
	s.c.Header("Connection", "keep-alive")
	s.c.Header("X-Accel-Buffering", "no")
	s.c.Status(http.StatusOK)
}

func (s *sseSink) write(line string) error {
	s.start()
	if _, err := io.WriteString(s.c.Writer, line+"\n\n"); err != nil {
		return err
	}
	s.c.Writer.Flush()
	return nil
}

// Data 上游的 data 行原样写出
func (s *sseSink) Data(line string) error {
	return s.write(line)
}

func (s *sseSink) Done() error {
	return s.write("data: " + relay.DoneMarker)
}

func (s *sseSink) Fail(message string) error {
	return s.write("data: " + errorFrame(message))
}

func errorFrame(message string) string {
	b, _ := json.Marshal(map[string]string{"error": message})
	return string(b)
}

func errorMessage(err error) string {
	var ce *xerr.CodeError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return xerr.ErrServerError.Message
}
