package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/depcheck/core/config"
	"github.com/tristendillon/depcheck/core/fsprovider"
	"github.com/tristendillon/depcheck/core/models"
)

func newTestServer(t *testing.T, files map[string]string) (*Server, *httptest.Server) {
	t.Helper()

	root := t.TempDir()
	for name, body := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}

	local, err := fsprovider.NewLocal(root)
	require.NoError(t, err)

	s := NewServer(config.Default(), local)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getPayload(t *testing.T, url string) models.ReportPayload {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var payload models.ReportPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	return payload
}

func TestDependenciesScansPerRequest(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{
		"a.ts": `import { x } from "./b"`,
	})

	payload := getPayload(t, ts.URL+"/api/dependencies")
	assert.Equal(t, 1, payload.ScannedFiles)
	assert.Equal(t, 1, payload.TotalImports)
	require.Len(t, payload.UnresolvedImports, 1)
	assert.Equal(t, "a.ts", payload.UnresolvedImports[0].Source)
	assert.Equal(t, "import", payload.UnresolvedImports[0].ImportType)
	assert.Equal(t, 1, payload.Summary.UnresolvedCount)
}

func TestDependenciesPlaceholder(t *testing.T) {
	_, ts := newTestServer(t, map[string]string{"a.ts": ""})

	payload := getPayload(t, ts.URL+"/api/dependencies?placeholder=1")
	assert.Equal(t, 120, payload.ScannedFiles)
	assert.Equal(t, 543, payload.TotalImports)
	assert.Equal(t, 2, payload.Summary.UnresolvedCount)
	assert.Equal(t, 541, payload.Summary.ResolvedCount)

	payload = getPayload(t, ts.URL+"/api/dependencies?placeholder=false")
	assert.Equal(t, 1, payload.ScannedFiles)
}

func TestDependenciesServesPublishedReport(t *testing.T) {
	s, ts := newTestServer(t, map[string]string{"a.ts": ""})

	published := models.NewScanReport()
	published.ScannedFileCount = 42
	s.Publish(published)

	assert.Equal(t, 42, getPayload(t, ts.URL+"/api/dependencies").ScannedFiles)
}

func TestDependenciesFilesystemError(t *testing.T) {
	local, err := fsprovider.NewLocal(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	ts := httptest.NewServer(NewServer(config.Default(), local).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/dependencies")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "cannot scan project root")
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/api/dependencies", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLiveEndpointStreamsUpdates(t *testing.T) {
	s, ts := newTestServer(t, map[string]string{"a.ts": `import "react"`})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/dependencies/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first models.ReportPayload
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, 1, first.ScannedFiles)
	assert.Equal(t, 1, first.Summary.ResolvedCount)

	update := models.NewScanReport()
	update.ScannedFileCount = 7
	s.Publish(update)

	var second models.ReportPayload
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, 7, second.ScannedFiles)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe()
	assert.Equal(t, 1, hub.Len())

	hub.Broadcast(models.ReportPayload{ScannedFiles: 1})
	assert.Equal(t, 1, (<-ch).ScannedFiles)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Len())

	_, open := <-ch
	assert.False(t, open)

	// no subscribers, no panic
	hub.Broadcast(models.ReportPayload{})
}
