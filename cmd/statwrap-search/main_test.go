package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutil "github.com/StatTag/StatWrap-sub000/internal/testing"
	"github.com/StatTag/StatWrap-sub000/model"
)

func resetFlags() {
	configPath, dataDir, projectsArg, logLevel = "", "", "", ""
	verbose = false
	searchType, searchProject, searchFileType = "", "", ""
	searchLimit = 10
	searchJSON = false
	indexRebuild = false
	serveAddr = ""
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return executeContext(t, context.Background(), args...)
}

func executeContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(ctx)
	return buf.String(), err
}

func projectsFlag(t *testing.T, projects ...model.Project) string {
	t.Helper()
	raw, err := json.Marshal(projects)
	require.NoError(t, err)
	return string(raw)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "data-dir", "projects", "log-level", "verbose"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "index", "search", "suggest", "stats", "export", "import", "delete-index"} {
		assert.True(t, names[want], want)
	}
}

func TestSearchCmd_Flags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)

	for _, name := range []string{"type", "project", "file-type", "json"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), name)
	}
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := execute(t, "search", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_RejectsUnknownType(t *testing.T) {
	_, err := execute(t, "search", "--data-dir", t.TempDir(), "--type", "table", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type")
}

func TestParseProjects(t *testing.T) {
	projects, err := parseProjects("")
	require.NoError(t, err)
	assert.Nil(t, projects)

	projects, err = parseProjects(`[{"id":"a","name":"A","path":"/a"}]`)
	require.NoError(t, err)
	assert.Equal(t, []model.Project{{ID: "a", Name: "A", Path: "/a"}}, projects)

	file := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"id":"b","path":"/b"}]`), 0o600))
	projects, err = parseProjects("@" + file)
	require.NoError(t, err)
	assert.Equal(t, "b", projects[0].ID)

	_, err = parseProjects(`{"id":"a"}`)
	assert.Error(t, err)

	_, err = parseProjects(`[{"id":"a","path":"/a"},{"id":"a","path":"/b"}]`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Duplicate project ID")

	_, err = parseProjects("@" + filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestIndexAndQueryCommands(t *testing.T) {
	dir := t.TempDir()
	projects := projectsFlag(t, testutil.ExampleProject(t, "P"))

	out, err := execute(t, "index", "--data-dir", dir, "--projects", projects)
	require.NoError(t, err)
	assert.Contains(t, out, "Full index:")
	assert.Contains(t, out, "added: P")

	// Later commands load the saved index without --projects.
	out, err = execute(t, "search", "--data-dir", dir, "variance")
	require.NoError(t, err)
	assert.Contains(t, out, "[file] readme.md")

	out, err = execute(t, "search", "--data-dir", dir, "--json", "-n", "5", "variance")
	require.NoError(t, err)
	var results model.GroupedResults
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results.Files, 1)
	assert.Equal(t, "readme.md", results.Files[0].Item.Name)

	out, err = execute(t, "search", "--data-dir", dir, "--type", "project", "variance")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")

	out, err = execute(t, "suggest", "--data-dir", dir, "read")
	require.NoError(t, err)
	assert.Contains(t, out, "readme.md")

	out, err = execute(t, "stats", "--data-dir", dir)
	require.NoError(t, err)
	var stats model.SearchStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats), out)
	assert.True(t, stats.Initialized)
	assert.Equal(t, 1, stats.IndexedProjects)

	out, err = execute(t, "index", "--data-dir", dir, "--rebuild")
	require.NoError(t, err)
	assert.Contains(t, out, "Rebuilt index:")
}

func TestIndexCmd_NeedsProjectsOrRebuild(t *testing.T) {
	_, err := execute(t, "index", "--data-dir", t.TempDir())
	assert.Error(t, err)

	_, err = execute(t, "index", "--data-dir", t.TempDir(), "--rebuild")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no index file")
}

func TestExportImportDeleteCommands(t *testing.T) {
	source := t.TempDir()
	_, err := execute(t, "index", "--data-dir", source, "--projects", projectsFlag(t, testutil.ExampleProject(t, "P")))
	require.NoError(t, err)

	exported := filepath.Join(t.TempDir(), "export.json")
	out, err := execute(t, "export", "--data-dir", source, exported)
	require.NoError(t, err)
	assert.Contains(t, out, "from 1 projects")

	target := t.TempDir()
	out, err = execute(t, "import", "--data-dir", target, exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	out, err = execute(t, "search", "--data-dir", target, "variance")
	require.NoError(t, err)
	assert.Contains(t, out, "readme.md")

	_, err = execute(t, "delete-index", "--data-dir", target)
	require.NoError(t, err)

	out, err = execute(t, "search", "--data-dir", target, "variance")
	require.NoError(t, err)
	assert.Contains(t, out, "No results")
}

func TestImportCmd_RejectsBadVersion(t *testing.T) {
	file := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"version":"0.9","documentStore":[]}`), 0o600))

	_, err := execute(t, "import", "--data-dir", t.TempDir(), file)
	assert.Error(t, err)
}

func TestServeCmd_StopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := executeContext(t, ctx, "serve", "--data-dir", t.TempDir(), "--addr", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Contains(t, out, "Listening on 127.0.0.1:0")
}
