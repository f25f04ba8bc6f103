package provider

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletionShapes(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		content string
		usage   map[string]any
	}{
		{
			name:    "vendor envelope",
			body:    `{"code":0,"data":{"generated_answer":"知识库回答","token_usage":{"total_tokens":9}}}`,
			content: "知识库回答",
			usage:   map[string]any{"total_tokens": float64(9)},
		},
		{
			name:    "openai choices",
			body:    `{"choices":[{"message":{"role":"assistant","content":"hello"}}],"usage":{"prompt_tokens":1}}`,
			content: "hello",
			usage:   map[string]any{"prompt_tokens": float64(1)},
		},
		{
			name:    "answer",
			body:    `{"answer":"a","usage":{"n":1}}`,
			content: "a",
			usage:   map[string]any{"n": float64(1)},
		},
		{
			name:    "result",
			body:    `{"result":"r"}`,
			content: "r",
			usage:   map[string]any{},
		},
		{
			name:    "json string",
			body:    `"plain answer"`,
			content: "plain answer",
			usage:   map[string]any{},
		},
		{
			name:    "text body",
			body:    "not json at all\n",
			content: "not json at all",
			usage:   map[string]any{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := ParseCompletion([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.content, c.Content)
			assert.Equal(t, tc.usage, c.Usage)
		})
	}
}

func TestParseCompletionVendorEnvelopeWinsOverChoices(t *testing.T) {
	body := `{
		"code": 0,
		"data": {"generated_answer": "from vendor", "token_usage": {"total_tokens": 1}},
		"choices": [{"message": {"content": "from choices"}}],
		"answer": "from answer"
	}`
	c, err := ParseCompletion([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "from vendor", c.Content)
}

func TestParseCompletionVendorEnvelopeRequiresZeroCode(t *testing.T) {
	body := `{"code":1001,"data":{"generated_answer":"x"},"choices":[{"message":{"content":"fallback"}}]}`
	c, err := ParseCompletion([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, "fallback", c.Content)
}

func TestParseCompletionUnparseable(t *testing.T) {
	for _, body := range []string{`{"code":1,"message":"bad"}`, `{}`, `[]`, ``, `""`} {
		_, err := ParseCompletion([]byte(body))
		assert.True(t, errors.Is(err, ErrUnparseable), body)
	}
}
