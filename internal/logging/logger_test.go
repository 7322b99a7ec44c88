package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForComponent_UsesHandlerInstalledLater(t *testing.T) {
	log := ForComponent(CompIndexing)

	var buf bytes.Buffer
	InitWithWriter(&buf, "debug")
	t.Cleanup(func() { Init(Config{}) })

	log.Info("project_indexed", "project_id", "p1", "documents", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "project_indexed", record["msg"])
	assert.Equal(t, CompIndexing, record["component"])
	assert.Equal(t, "p1", record["project_id"])
}

func TestForComponent_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn")
	t.Cleanup(func() { Init(Config{}) })

	ForComponent(CompSearch).Info("ignored")
	assert.Zero(t, buf.Len())

	ForComponent(CompSearch).With("query_id", "q").Warn("kept")
	assert.Contains(t, buf.String(), `"query_id":"q"`)
}

func TestInit_WritesRotatingFile(t *testing.T) {
	dir := t.TempDir()
	Init(Config{Dir: dir, Level: "info", Format: "text"})
	t.Cleanup(func() {
		Shutdown()
		Init(Config{})
	})

	ForComponent(CompEngine).Info("service_started")
	Shutdown()

	data, err := os.ReadFile(filepath.Join(dir, "search.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "service_started")
	assert.Contains(t, string(data), "component=engine")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("debug").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}
