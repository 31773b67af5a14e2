package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/fittrack/internal/ai"
	"github.com/sakif/fittrack/internal/config"
	"github.com/sakif/fittrack/internal/handler"
	sqliteRepo "github.com/sakif/fittrack/internal/repository/sqlite"
	"github.com/sakif/fittrack/internal/session"
)

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	switch req.Purpose {
	case "diet_plan":
		return "Breakfast:Oatmeal:350", nil
	case "chat":
		return "Hello from the coach", nil
	}
	return "", ai.ErrEmptyResponse
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "server-test-secret-0123456789"
	return cfg
}

func newTestServer(t *testing.T, deps Deps) *httptest.Server {
	t.Helper()
	if deps.Store == nil {
		db, err := sqliteRepo.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		deps.Store = db
	}
	if deps.Completer == nil {
		deps.Completer = echoCompleter{}
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewMemoryStore(20, 0)
	}

	s, err := NewWithDeps(testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)), deps)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func send(t *testing.T, c *http.Client, method, url, body string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServer_SessionFlow(t *testing.T) {
	ts := newTestServer(t, Deps{})
	c := newClient(t)

	resp := send(t, c, http.MethodGet, ts.URL+"/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = send(t, c, http.MethodPost, ts.URL+"/auth/register",
		`{"email":"flow@example.com","name":"Flow","password":"secret123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, readBody(t, resp))

	// The cookie jar now carries the session.
	resp = send(t, c, http.MethodGet, ts.URL+"/api/me", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, c, http.MethodPut, ts.URL+"/api/profile",
		`{"age":28,"gender":"female","height":165,"weight":60,"activityLevel":"light","fitnessGoal":"maintain"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, readBody(t, resp))

	resp = send(t, c, http.MethodGet, ts.URL+"/api/plans/diet", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Oatmeal")

	resp = send(t, c, http.MethodPost, ts.URL+"/api/chat", `{"prompt":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Hello from the coach")

	resp = send(t, c, http.MethodPost, ts.URL+"/auth/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = send(t, c, http.MethodGet, ts.URL+"/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, Deps{})
	c := newClient(t)

	resp := send(t, c, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"database":"ok"`)

	resp = send(t, c, http.MethodGet, ts.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "fittrack_http_requests_total")
}

func TestServer_GitHubRoutesOnlyWhenConfigured(t *testing.T) {
	ts := newTestServer(t, Deps{})
	c := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}

	resp := send(t, c, http.MethodGet, ts.URL+"/auth/github/login", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_RedisHealthCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	client := session.NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ts := newTestServer(t, Deps{
		Sessions: session.NewRedisStore(client, 20, 0),
		Checks: map[string]handler.Pinger{
			"redis": handler.PingFunc(func(ctx context.Context) error { return session.Ping(ctx, client) }),
		},
	})
	c := newClient(t)

	resp := send(t, c, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	mr.Close()
	resp = send(t, c, http.MethodGet, ts.URL+"/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `"redis"`)
}

func TestNewWithDeps_RejectsWeakSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "short"

	_, err := NewWithDeps(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Deps{
		Sessions:  session.NewMemoryStore(20, 0),
		Completer: echoCompleter{},
	})
	assert.Error(t, err)
}
