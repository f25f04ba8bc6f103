package provider

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrUnparseable 所有已知响应格式都不匹配
var ErrUnparseable = errors.New("unparseable completion response")

// shapeParser 尝试把响应体解析为某一种已知格式，不匹配时返回 false
type shapeParser func(body []byte) (*Completion, bool)

// 按顺序尝试，先匹配者生效
var shapeParsers = []shapeParser{
	parseVendorEnvelope,
	parseChoices,
	parseAnswer,
	parseResult,
	parseRawString,
}

// ParseCompletion 归一化非流式响应体
func ParseCompletion(body []byte) (*Completion, error) {
	for _, parse := range shapeParsers {
		if c, ok := parse(body); ok {
			if c.Usage == nil {
				c.Usage = map[string]any{}
			}
			return c, nil
		}
	}
	return nil, ErrUnparseable
}

// {"code":0,"data":{"generated_answer":"...","token_usage":{...}}}
func parseVendorEnvelope(body []byte) (*Completion, bool) {
	var v struct {
		Code *int `json:"code"`
		Data *struct {
			GeneratedAnswer string         `json:"generated_answer"`
			TokenUsage      map[string]any `json:"token_usage"`
		} `json:"data"`
	}
	if json.Unmarshal(body, &v) != nil || v.Code == nil || *v.Code != 0 || v.Data == nil || v.Data.GeneratedAnswer == "" {
		return nil, false
	}
	return &Completion{Content: v.Data.GeneratedAnswer, Usage: v.Data.TokenUsage}, true
}

// {"choices":[{"message":{"content":"..."}}],"usage":{...}}
func parseChoices(body []byte) (*Completion, bool) {
	var v struct {
		Choices []struct {
			Message *struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage map[string]any `json:"usage"`
	}
	if json.Unmarshal(body, &v) != nil || len(v.Choices) == 0 || v.Choices[0].Message == nil {
		return nil, false
	}
	return &Completion{Content: v.Choices[0].Message.Content, Usage: v.Usage}, true
}

func parseAnswer(body []byte) (*Completion, bool) {
	var v struct {
		Answer string         `json:"answer"`
		Usage  map[string]any `json:"usage"`
	}
	if json.Unmarshal(body, &v) != nil || v.Answer == "" {
		return nil, false
	}
	return &Completion{Content: v.Answer, Usage: v.Usage}, true
}

func parseResult(body []byte) (*Completion, bool) {
	var v struct {
		Result string         `json:"result"`
		Usage  map[string]any `json:"usage"`
	}
	if json.Unmarshal(body, &v) != nil || v.Result == "" {
		return nil, false
	}
	return &Completion{Content: v.Result, Usage: v.Usage}, true
}

// JSON 字符串或非 JSON 的纯文本
func parseRawString(body []byte) (*Completion, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}
	if trimmed[0] == '"' {
		var s string
		if json.Unmarshal(trimmed, &s) == nil && s != "" {
			return &Completion{Content: s}, true
		}
		return nil, false
	}
	if json.Valid(trimmed) {
		return nil, false
	}
	return &Completion{Content: string(trimmed)}, true
}
