package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logviewer/config"
	"logviewer/server/handlers"
	"logviewer/service"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string, mod time.Time) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	mod := time.Date(2025, time.January, 5, 10, 0, 0, 0, time.Local)
	write("all-remote.log",
		"<134>Jan 5 10:00:00 syslog-client nginx: GET /api/users HTTP/1.1 200\n"+
			"<131>Jan 5 10:00:01 syslog-client nginx: Connection refused to backend server err\n",
		mod)
	write("hosts/app.log",
		"Jan 5 10:00:00 host1 myapp: Cache miss for key: cache_key_42\n"+
			"not a syslog line at all\n",
		mod.Add(time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(root, "broken.log"), 0o755))

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>viewer</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := config.Default()
	cfg.RootDir = root
	cfg.StaticDir = staticDir

	svc, err := service.New(cfg, nil)
	require.NoError(t, err)

	return NewServer(cfg, svc, nil), root
}

func TestServer(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		method       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "Health check returns 200",
			path:         "/api/health",
			method:       "GET",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Files endpoint returns 200",
			path:         "/api/files",
			method:       "GET",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Logs endpoint rejects traversal",
			path:         "/api/logs?file=../../etc/passwd",
			method:       "GET",
			expectedCode: http.StatusForbidden,
			expectedBody: `{"error":"Invalid file path"}` + "\n",
		},
		{
			name:         "Logs endpoint rejects absolute path outside root",
			path:         "/api/logs?file=/etc/passwd",
			method:       "GET",
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "Logs endpoint rejects bad lines",
			path:         "/api/logs?lines=many",
			method:       "GET",
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Logs endpoint with method not allowed",
			path:         "/api/logs",
			method:       "POST",
			expectedCode: http.StatusMethodNotAllowed,
		},
		{
			name:         "Preflight request",
			path:         "/api/logs",
			method:       "OPTIONS",
			expectedCode: http.StatusOK,
		},
		{
			name:         "Non-existent API endpoint returns 404",
			path:         "/api/nonexistent",
			method:       "GET",
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "Static asset",
			path:         "/app.js",
			method:       "GET",
			expectedCode: http.StatusOK,
			expectedBody: "console.log(1)",
		},
		{
			name:         "SPA route falls back to index",
			path:         "/files/hosts",
			method:       "GET",
			expectedCode: http.StatusOK,
			expectedBody: "<html>viewer</html>",
		},
	}

	server, _ := newTestServer(t)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			server.Handler().ServeHTTP(w, req)

			resp := w.Result()
			body, _ := io.ReadAll(resp.Body)

			assert.Equal(t, tc.expectedCode, resp.StatusCode)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, string(body))
			}
		})
	}
}

func get(t *testing.T, s *Server, path string, out any) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	resp := w.Result()
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestFilesEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body struct {
		Files []map[string]any `json:"files"`
	}
	get(t, server, "/api/files", &body)

	require.Len(t, body.Files, 2)
	assert.Equal(t, "hosts/app.log", body.Files[0]["path"])
	assert.Equal(t, "2025-01-05 11:00:00", body.Files[0]["modified"])
	assert.Equal(t, "all-remote.log", body.Files[1]["path"])
	assert.NotContains(t, body.Files[0], "full_path")
	assert.Len(t, body.Files[0], 3)
}

func TestLogsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body handlers.LogsResponse
	get(t, server, "/api/logs?file=hosts/app.log&lines=10&search=cache", &body)

	assert.Equal(t, "hosts/app.log", body.File)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "myapp", body.Logs[0].Tag)
	assert.Equal(t, "Cache miss for key: cache_key_42", body.Logs[0].Message)
	assert.False(t, body.Degraded)

	body = handlers.LogsResponse{}
	get(t, server, "/api/logs?file=hosts/app.log&level=err", &body)
	assert.Equal(t, 0, body.Count)
	assert.NotNil(t, body.Logs)
}

func TestLogsEndpoint_DefaultFile(t *testing.T) {
	server, _ := newTestServer(t)

	var body handlers.LogsResponse
	get(t, server, "/api/logs?level=ERR", &body)

	assert.Equal(t, "all-remote.log", body.File)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "nginx", body.Logs[0].Tag)
	require.NotNil(t, body.Logs[0].Priority)
	assert.Equal(t, "err", body.Logs[0].Priority.Level)
}

func TestLogsEndpoint_MissingAndDegraded(t *testing.T) {
	server, _ := newTestServer(t)

	var body handlers.LogsResponse
	resp := get(t, server, "/api/logs?file=nothing-here.log", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, body.Count)

	body = handlers.LogsResponse{}
	resp = get(t, server, "/api/logs?file=broken.log", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Degraded)
	require.Equal(t, 1, body.Count)
	assert.Contains(t, body.Logs[0].Message, "Error reading file")
}

func TestStatsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	var body map[string]any
	get(t, server, "/api/stats", &body)

	assert.Equal(t, float64(2), body["total_files"])
	assert.Contains(t, body, "total_size")
	assert.Equal(t, float64(0), body["total_size_mb"])
}

func TestServerIntegration(t *testing.T) {
	server, _ := newTestServer(t)

	// Pick a free port for the test
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	server.server.Addr = addr
	server.addr = addr

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
