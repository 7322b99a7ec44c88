// Package testing provides fixtures and helpers for testing the search service.
package testing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/model"
)

// NewTestSettings returns default settings with the index file placed in a
// per-test temp dir and yielding reduced to a no-op pause.
func NewTestSettings(t *testing.T) *config.Settings {
	t.Helper()
	s := config.DefaultSettings()
	s.Index.DataDir = t.TempDir()
	s.Performance.YieldPause = -1
	return s
}

// WriteProjectFiles creates files (relative path -> content) below a new temp
// dir and returns the dir.
func WriteProjectFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		WriteFile(t, root, rel, content)
	}
	return root
}

// WriteFile writes content at root/rel, creating parent directories.
func WriteFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// TouchLater bumps the modification time of root/rel by d.
func TouchLater(t *testing.T, root, rel string, d time.Duration) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(path)
	require.NoError(t, err)
	later := info.ModTime().Add(d)
	require.NoError(t, os.Chtimes(path, later, later))
}

// ExampleProject is the two-file project used across tests: readme.md about
// variance and main.py importing numpy.
func ExampleProject(t *testing.T, id string) model.Project {
	t.Helper()
	root := WriteProjectFiles(t, map[string]string{
		"readme.md": "Statistical analysis of variance",
		"main.py":   "import numpy",
	})
	return model.Project{ID: id, Name: "Project " + id, Path: root}
}

// RichProject is a project exercising every document type.
func RichProject(t *testing.T, id string) model.Project {
	t.Helper()
	root := WriteProjectFiles(t, map[string]string{
		"README.md":                 "Cohort study protocol with regression models",
		"code/analysis.R":           "fit <- lm(outcome ~ exposure)  # linear regression",
		"code/clean.py":             "import pandas as pd\n# data cleaning of the dataset",
		"data/raw/measurements.csv": "id,value\n1,2.5\n2,3.1",
		"data/image.png":            "\x89PNG\r\n\x1a\n\x00\x00binary",
		"node_modules/pkg/index.js": "module.exports = {}",
		".git/config":               "[core]",
		"docs/manuscript.tex":       "\\section{Methodology} Bayesian hierarchical model",
		"docs/latin1.txt":           "caf\xe9 au lait",
	})

	return model.Project{
		ID:          id,
		Name:        "Cardiology Cohort " + id,
		Path:        root,
		Description: "Longitudinal cohort of heart failure patients",
		Categories:  []string{"cardiology", "epidemiology"},
		Notes: []model.Note{
			{ID: "pn1", Author: "lead", Content: "Kickoff meeting agreed on the survey instrument"},
		},
		People: []model.Person{
			{
				ID:          "person-1",
				Name:        model.PersonName{First: "Ada", Last: "Lovelace"},
				Affiliation: "Northwestern University",
				Roles:       []string{"PI", "Statistician"},
				Notes:       []model.Note{{ID: "n1", Content: "Reviewed the hypothesis section"}},
			},
			{
				ID:   "person-2",
				Name: model.PersonName{First: "Grace", Last: "Hopper"},
			},
		},
		Assets: &model.Asset{
			URI:  root,
			Type: "directory",
			Children: []*model.Asset{
				{
					URI:   filepath.Join(root, "code", "analysis.R"),
					Type:  "file",
					Notes: []model.Note{{ID: "an1", Author: "ada", Content: "Model needs interaction terms"}},
				},
				{URI: filepath.Join(root, "code", "clean.py"), Type: "file"},
			},
		},
		ExternalAssets: &model.Asset{
			URI: "",
			Children: []*model.Asset{
				{URI: "https://example.org/registry/trial-42", Name: "Trial registry entry"},
			},
		},
		AssetGroups: []model.AssetGroup{
			{
				ID:      "g1",
				Name:    "Primary analysis",
				Details: "Scripts for the primary endpoint",
				Assets:  []model.AssetReference{{URI: filepath.Join(root, "code", "analysis.R")}},
			},
		},
	}
}
