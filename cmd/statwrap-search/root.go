package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StatTag/StatWrap-sub000/api"
	"github.com/StatTag/StatWrap-sub000/config"
	"github.com/StatTag/StatWrap-sub000/internal/engine"
	"github.com/StatTag/StatWrap-sub000/internal/logging"
	"github.com/StatTag/StatWrap-sub000/model"
)

var log = logging.ForComponent(logging.CompCLI)

var (
	configPath  string
	dataDir     string
	projectsArg string
	logLevel    string
	verbose     bool

	cliSettings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "statwrap-search",
	Short: "Full-text search over StatWrap projects",
	Long: `statwrap-search indexes StatWrap projects (metadata, people, notes,
assets and the files under each project directory) and answers ranked,
typo-tolerant queries over them.

Projects are passed with --projects as a JSON array of project descriptors,
or as @path to a file holding one.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) { logging.Shutdown() },
	DisableAutoGenTag: true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a TOML settings file")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the index file (overrides settings)")
	flags.StringVar(&projectsArg, "projects", "", "JSON array of project descriptors, or @file")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")
}

// setup loads settings, applies flag overrides and configures logging.
func setup(_ *cobra.Command, _ []string) error {
	settings, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		settings.Index.DataDir = dataDir
	}
	if logLevel != "" {
		settings.Logging.Level = logLevel
	}
	if verbose {
		settings.Logging.Level = "debug"
		settings.Logging.Stderr = true
	}

	logging.Init(logging.Config{
		Dir:        settings.Logging.Dir,
		Level:      settings.Logging.Level,
		Format:     settings.Logging.Format,
		MaxSizeMB:  settings.Logging.MaxSizeMB,
		MaxBackups: settings.Logging.MaxBackups,
		MaxAgeDays: settings.Logging.MaxAgeDays,
		Compress:   settings.Logging.Compress,
		Stderr:     settings.Logging.Stderr,
	})
	cliSettings = settings
	return nil
}

// parseProjects reads the --projects value: inline JSON, or @path.
func parseProjects(value string) ([]model.Project, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	raw := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading projects file: %w", err)
		}
		raw = data
	}

	var projects []model.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, fmt.Errorf("parsing projects: %w", err)
	}
	if result := api.ValidateProjects(projects); result.HasErrors() {
		problems := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			problems = append(problems, e.Field+": "+e.Message)
		}
		return nil, fmt.Errorf("invalid projects: %s", strings.Join(problems, "; "))
	}
	return projects, nil
}

// openService creates the service and brings it up: reconciled against
// --projects when given, otherwise loaded from the index file as-is.
func openService(ctx context.Context) (*engine.Service, error) {
	projects, err := parseProjects(projectsArg)
	if err != nil {
		return nil, err
	}

	svc, err := engine.New(cliSettings)
	if err != nil {
		return nil, err
	}

	if len(projects) > 0 {
		if _, err := svc.Initialize(ctx, projects); err != nil {
			_ = svc.Close()
			return nil, err
		}
		return svc, nil
	}

	opened, err := svc.Open(ctx)
	if err != nil {
		_ = svc.Close()
		return nil, err
	}
	if !opened {
		log.Warn("no_index", "path", svc.IndexPath())
	}
	return svc, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
