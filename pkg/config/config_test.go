package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinecone/pkg/engine"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 800, cfg.Viewport.Width)
	assert.Equal(t, 600, cfg.Viewport.Height)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 1.0, cfg.Font.Scale)
	assert.Equal(t, "http://127.0.0.1:8714", cfg.Viewer.ServerURL)
	assert.Equal(t, 2*time.Second, cfg.Viewer.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Scripts.Timeout)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
viewport:
  width: 1024
fetch:
  timeout: 500ms
  base_url: http://example.test/
log:
  level: debug
  format: json
font:
  scale: 1.5
server:
  addr: ":9000"
snapshot:
  path: /tmp/page.pcs
viewer:
  poll_interval: 10s
  scripts: true
scripts:
  timeout: 250ms
`))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Viewport.Width)
	assert.Equal(t, 600, cfg.Viewport.Height, "unset fields keep their default")
	assert.Equal(t, 500*time.Millisecond, cfg.Fetch.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 1.5, cfg.Font.Scale)
	assert.Equal(t, "/tmp/page.pcs", cfg.Snapshot.Path)
	assert.Equal(t, "http://:9000", cfg.Viewer.ServerURL)
	assert.Equal(t, 10*time.Second, cfg.Viewer.PollInterval)
	assert.True(t, cfg.Viewer.Scripts)
	assert.Equal(t, 250*time.Millisecond, cfg.Scripts.Timeout)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("viewport: [1, 2"))
	assert.Error(t, err)
	_, err = Parse([]byte("fetch:\n  timeout: soon\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "pinecone.yaml")
	require.NoError(t, os.WriteFile(path, []byte("viewport:\n  height: 300\n"), 0o644))
	cfg, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Viewport.Height)
}

func TestEngineConfig(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "error"
	ec := cfg.Engine()
	assert.Equal(t, 800.0, ec.Viewport.Width)
	assert.Equal(t, cfg.Fetch.Timeout, ec.FetchTimeout)

	e, err := engine.Setup(ec)
	require.NoError(t, err)
	assert.Equal(t, ec.Viewport, e.Viewport())
}

func TestExampleFile(t *testing.T) {
	cfg, err := LoadFile(filepath.Join("..", "..", "pinecone.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
