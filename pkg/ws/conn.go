package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"TutorHub/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait = 10 * time.Second
	// 流式应答期间客户端提前发来的请求最多缓存这么多条
	receiveBuffer = 4
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Conn 单个 websocket 连接，写操作串行化并带写超时
type Conn struct {
	conn *websocket.Conn

	mu        sync.Mutex
	closeOnce sync.Once
}

func Upgrade(w http.ResponseWriter, r *http.Request) (*Conn, error) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c}, nil
}

func (c *Conn) ReadJSON(v any) error {
	return c.conn.ReadJSON(v)
}

func (c *Conn) WriteText(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Conn) WriteJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteText(b)
}

// Receive 后台持续读取 JSON 消息并按序投递。读取失败（对端断开、非法帧）或 ctx 结束时
// 调用 onClose 并关闭通道。同一连接只能调用一次。
func Receive[T any](ctx context.Context, c *Conn, onClose func()) <-chan T {
	out := make(chan T, receiveBuffer)
	go func() {
		defer close(out)
		defer onClose()
		for {
			var v T
			if err := c.conn.ReadJSON(&v); err != nil {
				zlog.Debug("ws read stopped", zap.Error(err))
				return
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Close 发送正常关闭帧后断开
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil && err != websocket.ErrCloseSent {
			zlog.Debug("ws close frame failed", zap.Error(err))
		}
		c.mu.Unlock()
		_ = c.conn.Close()
	})
}
