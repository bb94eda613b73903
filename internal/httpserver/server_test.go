package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/mockingbird/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mockingbird/internal/logger"
	"github.com/MrSnakeDoc/mockingbird/internal/mockserver"
	"github.com/MrSnakeDoc/mockingbird/internal/store/file"
)

type adminFixture struct {
	api   *httptest.Server
	reg   *mockserver.Registry
	store *file.Store
}

func newFixture(t *testing.T) *adminFixture {
	t.Helper()

	return newFixtureWithStore(t, file.New(t.TempDir()))
}

func newFixtureWithStore(t *testing.T, st *file.Store) *adminFixture {
	t.Helper()

	log := logger.New("error", false)
	reg := mockserver.NewRegistry(st, log, mockserver.Options{Host: "127.0.0.1", DrainTimeout: time.Second})
	t.Cleanup(func() { _ = reg.Shutdown(context.Background()) })

	d := deps.Deps{
		Logger:    log,
		StartTime: time.Now(),
		Version:   "test",
		Registry:  reg,
		Store:     st,
	}
	api := httptest.NewServer(NewRouter(log, d))
	t.Cleanup(api.Close)

	return &adminFixture{api: api, reg: reg, store: st}
}

func (f *adminFixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.api.URL+path, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	out := map[string]any{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func freePort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestHealthEndpoints(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])

	code, body = f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ready"])

	code, body = f.do(t, http.MethodGet, "/infra", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "operational", body["mode"])
	components, ok := body["components"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, components, "store")
	assert.Contains(t, components, "registry")
}

func TestServerLifecycle(t *testing.T) {
	f := newFixture(t)
	port := freePort(t)
	base := "/api/servers/" + strconv.Itoa(port)

	code, body := f.do(t, http.MethodPost, base+"/start", "")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, true, body["isRunning"])

	code, _ = f.do(t, http.MethodPost, base+"/start", "")
	assert.Equal(t, http.StatusConflict, code)

	code, body = f.do(t, http.MethodPost, base+"/endpoints",
		`{"method":"post","path":"/users","response":{"status":201,"body":{"id":1}},"delay":0}`)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, f.store.Path(port), body["savedTo"])

	resp, err := http.Post("http://127.0.0.1:"+strconv.Itoa(port)+"/users", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"id":1}`, string(data))

	code, body = f.do(t, http.MethodPut, base+"/endpoints/error",
		`{"method":"POST","path":"/users","status":500,"message":"boom"}`)
	require.Equal(t, http.StatusOK, code, body)

	code, body = f.do(t, http.MethodPatch, base+"/endpoints/error",
		`{"method":"POST","path":"/users","enabled":false}`)
	require.Equal(t, http.StatusOK, code, body)
	ep, _ := body["endpoint"].(map[string]any)
	override, _ := ep["errorResponse"].(map[string]any)
	assert.Equal(t, false, override["enabled"])

	code, body = f.do(t, http.MethodGet, "/api/servers", "")
	require.Equal(t, http.StatusOK, code)
	servers, _ := body["servers"].([]any)
	assert.Len(t, servers, 1)

	code, _ = f.do(t, http.MethodDelete, base+"/endpoints?method=POST&path=/users", "")
	assert.Equal(t, http.StatusOK, code)

	code, body = f.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["endpoints"])

	code, _ = f.do(t, http.MethodPost, base+"/stop", "")
	assert.Equal(t, http.StatusOK, code)
	code, _ = f.do(t, http.MethodPost, base+"/stop", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = f.do(t, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["reloaded"])
}

func TestAdminValidation(t *testing.T) {
	f := newFixture(t)
	port := strconv.Itoa(freePort(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "bad port", method: http.MethodPost, path: "/api/servers/abc/start", want: http.StatusBadRequest},
		{name: "privileged port", method: http.MethodPost, path: "/api/servers/80/start", want: http.StatusBadRequest},
		{name: "unknown server", method: http.MethodGet, path: "/api/servers/" + port, want: http.StatusNotFound},
		{
			name: "add to stopped server", method: http.MethodPost, path: "/api/servers/" + port + "/endpoints",
			body: `{"method":"GET","path":"/x","response":{"body":1}}`, want: http.StatusNotFound,
		},
		{
			name: "bad method", method: http.MethodPost, path: "/api/servers/" + port + "/endpoints",
			body: `{"method":"TRACE","path":"/x","response":{"body":1}}`, want: http.StatusBadRequest,
		},
		{
			name: "unknown field", method: http.MethodPost, path: "/api/servers/" + port + "/endpoints",
			body: `{"verb":"GET"}`, want: http.StatusBadRequest,
		},
		{
			name: "error status too low", method: http.MethodPut, path: "/api/servers/" + port + "/endpoints/error",
			body: `{"method":"GET","path":"/x","status":200,"message":"m"}`, want: http.StatusBadRequest,
		},
		{
			name: "toggle without enabled", method: http.MethodPatch, path: "/api/servers/" + port + "/endpoints/error",
			body: `{"method":"GET","path":"/x"}`, want: http.StatusBadRequest,
		},
		{
			name: "remove without path", method: http.MethodDelete, path: "/api/servers/" + port + "/endpoints?method=GET",
			want: http.StatusBadRequest,
		},
		{
			name: "remove on unknown server", method: http.MethodDelete, path: "/api/servers/" + port + "/endpoints?method=GET&path=/x",
			want: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, code, body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEndpointSaveFailureIs500(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	f := newFixtureWithStore(t, file.New(filepath.Join(blocker, "cfg")))
	base := "/api/servers/" + strconv.Itoa(freePort(t))

	code, body := f.do(t, http.MethodPost, base+"/start", "")
	require.Equal(t, http.StatusCreated, code, body)

	code, body = f.do(t, http.MethodPost, base+"/endpoints",
		`{"method":"GET","path":"/ping","response":{"body":{"ok":true}}}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, body["error"], "failed to persist endpoints")

	code, _ = f.do(t, http.MethodDelete, base+"/endpoints?method=GET&path=/ping", "")
	assert.Equal(t, http.StatusInternalServerError, code)
}
