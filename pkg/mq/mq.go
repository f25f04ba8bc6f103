package mq

import (
	"context"
	"encoding/json"
	"strings"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type PublishResult struct {
	Partition int32
	Offset    int64
}

type Publisher interface {
	Publish(ctx context.Context, msg Message) (PublishResult, error)
	Close() error
}

// NewJSONMessage 以 JSON 编码事件体
func NewJSONMessage(topic, key string, v any) (Message, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Topic:   strings.TrimSpace(topic),
		Key:     []byte(key),
		Value:   b,
		Headers: map[string]string{"content-type": "application/json"},
	}, nil
}

// NopPublisher 未配置 broker 时使用，丢弃所有消息
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Message) (PublishResult, error) {
	return PublishResult{Partition: -1, Offset: -1}, nil
}

func (NopPublisher) Close() error { return nil }
