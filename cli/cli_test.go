package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logviewer/catalog"
	"logviewer/models"
	"logviewer/server/handlers"
	"logviewer/utils"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeLogRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	content := strings.Join([]string{
		"Jan 15 10:30:45 webserver01 nginx: GET /index.html 200",
		"Jan 15 10:30:46 dbserver01 postgres: ERROR connection refused",
		"Jan 15 10:30:47 webserver01 nginx: POST /api 500 error",
	}, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "all-remote.log"), []byte(content), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "web"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "web", "nginx.log"), []byte("x\n"), 0o644))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "web", "nginx.log"), old, old))
	return root
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "logviewer "+utils.Version+"\n", out)
}

func TestFiles_JSON(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "files", "--root", root, "--json")
	require.NoError(t, err)

	var resp handlers.FilesResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Files, 2)
	assert.Equal(t, "all-remote.log", resp.Files[0].Path)
	assert.Equal(t, "web/nginx.log", resp.Files[1].Path)
	assert.NotContains(t, out, root)
}

func TestFiles_Table(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "files", "--root", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "PATH"))
	assert.True(t, strings.HasPrefix(lines[1], "all-remote.log"))
}

func TestLogs_DefaultFileText(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "logs", "--root", root, "--search", "webserver01", "--level", "error")
	require.NoError(t, err)
	assert.Equal(t, "Jan 15 10:30:47 webserver01 nginx: POST /api 500 error\n", out)
}

func TestLogs_JSON(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "logs", "all-remote.log", "--root", root, "--lines", "2", "--json")
	require.NoError(t, err)

	var resp handlers.LogsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "all-remote.log", resp.File)
	assert.Equal(t, 2, resp.Count)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "dbserver01", resp.Logs[0].Hostname)
	assert.Equal(t, "nginx", resp.Logs[1].Tag)
}

func TestLogs_MissingFileIsEmpty(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "logs", "nope.log", "--root", root)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestLogs_RejectsTraversal(t *testing.T) {
	root := writeLogRoot(t)

	_, _, err := run(t, "logs", "../../etc/passwd", "--root", root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrRejected))
}

func TestStats(t *testing.T) {
	root := writeLogRoot(t)

	out, _, err := run(t, "stats", "--root", root, "--json")
	require.NoError(t, err)

	var st models.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 2, st.FileCount)
	assert.Positive(t, st.TotalBytes)

	out, _, err = run(t, "stats", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Files:      2")
}

func TestConfigFileAndFlags(t *testing.T) {
	root := writeLogRoot(t)
	cfgPath := filepath.Join(t.TempDir(), "logviewer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("root_dir: /does/not/exist\ndefault_lines: 1\n"), 0o644))

	// --root wins over the file; default_lines still comes from it.
	out, _, err := run(t, "logs", "--config", cfgPath, "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "Jan 15 10:30:47 webserver01 nginx: POST /api 500 error\n", out)
}

func TestInvalidConfiguration(t *testing.T) {
	_, _, err := run(t, "files", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	cfgPath := filepath.Join(t.TempDir(), "logviewer.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("unknown_key: 1\n"), 0o644))
	_, _, err = run(t, "files", "--config", cfgPath)
	require.Error(t, err)
}

func TestGenerate_UDP(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	port := conn.LocalAddr().(*net.UDPAddr).Port
	out, _, err := run(t, "generate",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"--scenario", "security",
		"--count", "3",
		"--interval", "0s",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Sent 3 messages (0 errors)")

	buf := make([]byte, 2048)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), " sshd: ")
}

func TestGenerate_UnknownScenario(t *testing.T) {
	_, _, err := run(t, "generate", "--scenario", "mainframe", "--count", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scenario")
}

func TestCollect_NoListeners(t *testing.T) {
	_, _, err := run(t, "collect", "--root", t.TempDir(), "--udp-addr", "", "--tcp-addr", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no listener configured")
}
