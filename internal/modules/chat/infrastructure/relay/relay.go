// Package relay 把上游 SSE 流逐行转发给调用方，保证只发出一个结束帧。
package relay

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// DoneMarker 流结束标记
const DoneMarker = "[DONE]"

const dataPrefix = "data:"

// Sink 下游输出，SSE 与 websocket 各有一种实现
type Sink interface {
	// Data 收到上游的一整行 data（含 "data:" 前缀，不含换行），字节不做改动
	Data(line string) error
	Done() error
	Fail(message string) error
}

// Guard 包装 Sink，结束帧（Done 或 Fail）最多发出一次，结束后的数据帧丢弃
type Guard struct {
	sink       Sink
	terminated bool
}

func NewGuard(sink Sink) *Guard {
	return &Guard{sink: sink}
}

func (g *Guard) Data(line string) error {
	if g.terminated {
		return nil
	}
	return g.sink.Data(line)
}

func (g *Guard) Done() error {
	if g.terminated {
		return nil
	}
	g.terminated = true
	return g.sink.Done()
}

func (g *Guard) Fail(message string) error {
	if g.terminated {
		return nil
	}
	g.terminated = true
	return g.sink.Fail(message)
}

func (g *Guard) Terminated() bool {
	return g.terminated
}

// Relay 按行读取上游，data 行连同前缀原样转发。
// 上游的 [DONE] 与连接关闭都会结束流，下游只收到一次 Done；读错误转为 Fail。
// 下游写失败（调用方断开）时立即返回，由调用方关闭上游连接。
func Relay(ctx context.Context, upstream io.Reader, sink Sink) error {
	g, ok := sink.(*Guard)
	if !ok {
		g = NewGuard(sink)
	}

	r := bufio.NewReader(upstream)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, readErr := r.ReadString('\n')
		line := strings.TrimRight(raw, "\r\n")
		if payload, ok := Payload(line); ok {
			if payload == DoneMarker {
				return g.Done()
			}
			if err := g.Data(line); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			return g.Done()
		}
		if readErr != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
			_ = g.Fail(readErr.Error())
			return readErr
		}
	}
}

// Payload 取出 data 行的内容，前缀后的单个空格视为分隔符。非 data 行或内容为空时返回 false
func Payload(line string) (string, bool) {
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}
	payload := strings.TrimPrefix(line[len(dataPrefix):], " ")
	if payload == "" {
		return "", false
	}
	return payload, true
}
