package handler

import (
	"context"

	"TutorHub/internal/middleware/jwt"
	"TutorHub/internal/modules/chat/application/dto/request"
	"TutorHub/internal/modules/chat/application/service"
	"TutorHub/internal/modules/chat/infrastructure/relay"
	"TutorHub/pkg/ws"
	"TutorHub/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WsHandler struct {
	svc service.ChatService
}

func NewWsHandler(svc service.ChatService) *WsHandler {
	return &WsHandler{svc: svc}
}

// Connect websocket 版流式对话，同一连接上按顺序处理多次请求。
// 浏览器握手无法带自定义头，token 走 ?token=，由 jwt.AuthQuery 校验。
// 握手后连接被接管，请求 ctx 不再随对端断开而取消，断开由读协程发现并取消当前转发。
//
// 路由: GET /chat/ws?token=
func (h *WsHandler) Connect(c *gin.Context) {
	identity := jwt.CurrentIdentity(c)
	conn, err := ws.Upgrade(c.Writer, c.Request)
	if err != nil {
		zlog.Error("chat ws upgrade failed", zap.Error(err), zap.String("uid", identity.ID))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	for req := range ws.Receive[request.SendMessageRequest](ctx, conn, cancel) {
		guard := relay.NewGuard(&wsSink{conn: conn})
		err := h.svc.SendMessageStream(ctx, identity, req, guard)
		if ctx.Err() != nil {
			zlog.Debug("chat ws peer gone", zap.String("uid", identity.ID), zap.String("agent_id", req.AgentID))
			return
		}
		if err == nil || guard.Terminated() {
			continue
		}
		if ferr := guard.Fail(errorMessage(err)); ferr != nil {
			zlog.Debug("chat ws error frame not delivered", zap.Error(ferr), zap.String("uid", identity.ID))
			return
		}
	}
}

// wsSink 每帧一条文本消息，内容与 SSE 的 data 部分一致
type wsSink struct {
	conn *ws.Conn
}

// Data 一条 websocket 消息即一帧，只发送 data 内容
func (s *wsSink) Data(line string) error {
	payload, _ := relay.Payload(line)
	return s.conn.WriteText([]byte(payload))
}

func (s *wsSink) Done() error {
	return s.conn.WriteText([]byte(relay.DoneMarker))
}

func (s *wsSink) Fail(message string) error {
	return s.conn.WriteText([]byte(errorFrame(message)))
}
