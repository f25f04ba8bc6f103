package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTableURL(t *testing.T) {
	app, table, err := ParseTableURL("https://example.feishu.cn/base/bascnAbC123?table=tblXyZ&view=vew1")
	require.NoError(t, err)
	assert.Equal(t, "bascnAbC123", app)
	assert.Equal(t, "tblXyZ", table)

	_, _, err = ParseTableURL("https://example.feishu.cn/sheets/abc")
	assert.ErrorIs(t, err, ErrInvalidTableURL)

	_, _, err = ParseTableURL("https://example.feishu.cn/base/bascnAbC123")
	assert.ErrorIs(t, err, ErrInvalidTableURL)
}

func TestFeishuCardLookup(t *testing.T) {
	card := &FeishuCard{Title: "排课表", Cities: []string{"all"}}
	v, ok := card.Lookup("cities")
	assert.True(t, ok)
	assert.Equal(t, []string{"all"}, v)

	_, ok = card.Lookup("app_secret")
	assert.False(t, ok)
}
