package feishu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeishu struct {
	tokenCalls atomic.Int32
	lastQuery  atomic.Value
	lastAuth   atomic.Value
}

func (f *fakeFeishu) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["app_secret"] != "secret" {
			_, _ = w.Write([]byte(`{"code":10014,"msg":"app secret invalid"}`))
			return
		}
		n := f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":                0,
			"tenant_access_token": "t-" + string(rune('0'+n)),
			"expire":              7200,
		})
	})
	mux.HandleFunc("/open-apis/bitable/v1/apps/app1/tables/tbl1/records", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		f.lastQuery.Store(r.URL.Query())
		f.lastAuth.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"code":0,"msg":"success","data":{"items":[{"record_id":"rec1"}],"has_more":false,"total":1}}`))
	})
	mux.HandleFunc("/open-apis/bitable/v1/apps/app1/tables/tbl1/fields", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"code":0,"data":{"items":[{"field_name":"课程"}]}}`))
	})
	mux.HandleFunc("/open-apis/bitable/v1/apps/app1/tables/missing/fields", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"code":1254041,"msg":"TableIdNotFound"}`))
	})
	mux.HandleFunc("/open-apis/bitable/v1/apps/app1/tables/gone/records", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":91403,"msg":"Forbidden"}`))
	})
	return mux
}

func newTestClient(t *testing.T, now *time.Time) (*Client, *fakeFeishu) {
	f := &fakeFeishu{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL + "/open-apis/", Now: func() time.Time { return *now }})
	return c, f
}

func TestGetValidTokenCachesUntilMargin(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	c, f := newTestClient(t, &now)
	cred := Credential{AppID: "cli_1", AppSecret: "secret"}
	ctx := context.Background()

	tok, err := c.Token(cred).GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-1", tok)
	assert.Equal(t, now.Add(7200*time.Second-DefaultRefreshMargin), c.Token(cred).Expiry())

	now = now.Add(6000 * time.Second)
	tok, err = c.Token(cred).GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-1", tok)
	assert.EqualValues(t, 1, f.tokenCalls.Load())

	// 进入安全余量后刷新
	now = now.Add(901 * time.Second)
	tok, err = c.Token(cred).GetValidToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t-2", tok)
	assert.EqualValues(t, 2, f.tokenCalls.Load())
}

func TestTokenRejected(t *testing.T) {
	now := time.Now()
	c, _ := newTestClient(t, &now)

	_, err := c.Token(Credential{AppID: "cli_1", AppSecret: "wrong"}).GetValidToken(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 10014, apiErr.Code)
}

func TestGetRecords(t *testing.T) {
	now := time.Now()
	c, f := newTestClient(t, &now)
	cred := Credential{AppID: "cli_1", AppSecret: "secret"}

	data, err := c.GetRecords(context.Background(), cred, "app1", "tbl1", RecordQuery{
		PageToken: "p2",
		Filter:    `CurrentValue.[城市]="上海"`,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"record_id":"rec1"}],"has_more":false,"total":1}`, string(data))

	q := f.lastQuery.Load().(url.Values)
	assert.Equal(t, []string{"20"}, q["page_size"])
	assert.Equal(t, []string{"p2"}, q["page_token"])
	assert.Equal(t, []string{`CurrentValue.[城市]="上海"`}, q["filter"])
	assert.Equal(t, "Bearer t-1", f.lastAuth.Load())
}

func TestGetFields(t *testing.T) {
	now := time.Now()
	c, _ := newTestClient(t, &now)
	cred := Credential{AppID: "cli_1", AppSecret: "secret"}

	data, err := c.GetFields(context.Background(), cred, "app1", "tbl1")
	require.NoError(t, err)
	assert.Contains(t, string(data), "课程")

	_, err = c.GetFields(context.Background(), cred, "app1", "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "TableIdNotFound", apiErr.Message)
}

func TestTokenRebuiltWhenSecretChanges(t *testing.T) {
	c := NewClient(Config{})
	a := c.Token(Credential{AppID: "cli_1", AppSecret: "s1"})
	assert.Same(t, a, c.Token(Credential{AppID: "cli_1", AppSecret: "s1"}))
	assert.NotSame(t, a, c.Token(Credential{AppID: "cli_1", AppSecret: "s2"}))
}

func TestGetRecordsReportsHTTPStatus(t *testing.T) {
	now := time.Now()
	c, _ := newTestClient(t, &now)

	_, err := c.GetRecords(context.Background(), Credential{AppID: "cli_1", AppSecret: "secret"}, "app1", "gone", RecordQuery{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, 91403, apiErr.Code)
}
