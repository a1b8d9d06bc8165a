package mcpsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatbox-community/mcpsync/pkg/errors"
	"github.com/chatbox-community/mcpsync/pkg/logging"
	"github.com/chatbox-community/mcpsync/pkg/registry"
)

const catalogPayload = `{
	"Data": {
		"Result": [
			{"id": "@amap/amap-maps", "chinese_name": "高德地图", "operational_urls": [{"url": "https://mcp.example/amap"}]},
			{"id": "@fetch/fetch", "name": "Fetch", "operational_urls": [{"url": "https://mcp.example/fetch"}]},
			{"id": "@broken/broken", "operational_urls": []}
		]
	}
}`

func catalogServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func noEnv(string) (string, bool) { return "", false }

func newTestSyncer(srvURL, registryPath string, opts ...Option) *Syncer {
	base := []Option{
		WithAPIKey("test-token"),
		WithAPIURL(srvURL),
		WithRegistryPath(registryPath),
		WithLogger(&logging.Nop),
		WithEnvLookup(noEnv),
	}
	return New(append(base, opts...)...)
}

func TestSyncBootstrapAndIdempotence(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")
	syncer := newTestSyncer(srv.URL, path)

	// First run bootstraps the registry and adds both valid servers; the
	// record with no endpoints is filtered out.
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Added)

	reg, err := registry.Load(path)
	require.NoError(t, err)
	servers := reg.MCPSettings().Servers
	require.Len(t, servers, 2)
	assert.Equal(t, "高德地图", servers[0].Name)
	assert.Equal(t, "Fetch", servers[1].Name)

	// No backup on first run: there was nothing to back up.
	_, err = os.Stat(path + registry.BackupSuffix)
	assert.True(t, os.IsNotExist(err))

	// Second run is a no-op and must not rewrite the file.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	result, err = syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.False(t, result.HasChanges())
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSyncRenamesAndBacksUp(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")

	seed := `{
		"settings": {
			"mcp": {
				"servers": [
					{"id": "keep-this-id", "name": "Old Amap", "enabled": false, "transport": {"type": "http", "url": "https://mcp.example/amap"}}
				]
			},
			"theme": "dark"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o644))

	syncer := newTestSyncer(srv.URL, path)
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Added)

	// The pre-sync file was backed up byte for byte.
	backed, err := os.ReadFile(path + registry.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, seed, string(backed))

	reg, err := registry.Load(path)
	require.NoError(t, err)
	servers := reg.MCPSettings().Servers
	require.Len(t, servers, 2)

	// Rename preserved id and enabled flag.
	assert.Equal(t, "keep-this-id", servers[0].ID)
	assert.Equal(t, "高德地图", servers[0].Name)
	assert.False(t, servers[0].Enabled)

	// Manual edits outside the server list survive.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	settings := doc["settings"].(map[string]any)
	assert.Equal(t, "dark", settings["theme"])
}

func TestSyncNoBackupOption(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings":{"mcp":{"servers":[]}}}`), 0o644))

	syncer := newTestSyncer(srv.URL, path, WithBackup(false))
	_, err := syncer.Sync(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(path + registry.BackupSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestSyncBackupFailureDoesNotAbortSave(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"settings":{"mcp":{"servers":[]}}}`), 0o644))

	// A directory squatting on the backup path makes the backup copy fail.
	require.NoError(t, os.Mkdir(path+registry.BackupSuffix, 0o755))

	syncer := newTestSyncer(srv.URL, path)
	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)

	// The merge result was still written.
	reg, err := registry.Load(path)
	require.NoError(t, err)
	assert.Len(t, reg.MCPSettings().Servers, 2)
}

func TestSyncMissingAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	syncer := New(
		WithRegistryPath(path),
		WithLogger(&logging.Nop),
		WithEnvLookup(noEnv),
	)

	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAPIKeyError(err))

	// Precondition failures happen before any file activity.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncAPIKeyFromEnv(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")

	syncer := New(
		WithAPIURL(srv.URL),
		WithRegistryPath(path),
		WithLogger(&logging.Nop),
		WithEnvLookup(func(key string) (string, bool) {
			if key == "MODELSCOPE_API_KEY" {
				return "test-token", true
			}
			return "", false
		}),
	)

	result, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Added)
}

func TestSyncNoValidServersLeavesRegistryUntouched(t *testing.T) {
	srv := catalogServer(t, `{"Data": {"Result": [{"name": "no urls"}]}}`)
	path := filepath.Join(t.TempDir(), "config.json")

	syncer := newTestSyncer(srv.URL, path)
	_, err := syncer.Sync(context.Background())
	require.ErrorIs(t, err, errors.ErrNoValidServers)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncTransportErrorLeavesRegistryUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	path := filepath.Join(t.TempDir(), "config.json")

	syncer := newTestSyncer(srv.URL, path)
	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncMalformedRegistryIsContentError(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	syncer := newTestSyncer(srv.URL, path)
	_, err := syncer.Sync(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsContent(err))
	assert.False(t, errors.IsTransport(err))
}

func TestExport(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	outPath := filepath.Join(t.TempDir(), "exported", "mcp.json")

	syncer := newTestSyncer(srv.URL, "")
	require.NoError(t, syncer.Export(context.Background(), outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc struct {
		MCPServers map[string]struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	require.Len(t, doc.MCPServers, 2)
	fetch := doc.MCPServers["fetch"]
	assert.Equal(t, "sse", fetch.Type)
	assert.Equal(t, "https://mcp.example/fetch/sse", fetch.URL)

	// Chinese display names keep their characters as slugs.
	amap := doc.MCPServers["高德地图"]
	assert.Equal(t, "https://mcp.example/amap/sse", amap.URL)
}

func TestExportNoValidServers(t *testing.T) {
	srv := catalogServer(t, `{"Data": {}}`)
	outPath := filepath.Join(t.TempDir(), "mcp.json")

	syncer := newTestSyncer(srv.URL, "")
	err := syncer.Export(context.Background(), outPath)
	require.ErrorIs(t, err, errors.ErrNoValidServers)

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncCancelledBeforeWrite(t *testing.T) {
	srv := catalogServer(t, catalogPayload)
	path := filepath.Join(t.TempDir(), "config.json")

	ctx, cancel := context.WithCancel(context.Background())
	syncer := newTestSyncer(srv.URL, path)

	// A run against a cancelled context fails without touching the file.
	cancel()
	_, err := syncer.Sync(ctx)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
