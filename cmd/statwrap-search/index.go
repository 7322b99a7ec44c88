package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/StatTag/StatWrap-sub000/internal/engine"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index projects and save the index file",
	Long: `Reconcile the index with --projects: new projects are indexed, projects no
longer listed are removed and projects whose path changed are re-walked.
With no index file every project is indexed from scratch.

--rebuild re-walks every project afterwards. Without --projects it rebuilds
the projects recorded in the index file.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "re-walk every project from scratch")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	projects, err := parseProjects(projectsArg)
	if err != nil {
		return err
	}
	if len(projects) == 0 && !indexRebuild {
		return errors.New("no projects given; pass --projects or --rebuild")
	}

	svc, err := engine.New(cliSettings)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	if len(projects) > 0 {
		result, err := svc.Initialize(cmd.Context(), projects)
		if err != nil {
			return err
		}
		printReconcile(cmd, result)
	} else {
		opened, err := svc.Open(cmd.Context())
		if err != nil {
			return err
		}
		if !opened {
			return fmt.Errorf("no index file at %s", svc.IndexPath())
		}
	}

	if indexRebuild {
		if err := svc.ReindexAll(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Rebuilt index: %d documents\n", svc.GetSearchStats().DocumentCount)
	}
	return nil
}

func printReconcile(cmd *cobra.Command, r engine.ReconcileResult) {
	out := cmd.OutOrStdout()
	if r.FullIndex {
		fmt.Fprintf(out, "Full index: %d documents\n", r.Documents)
	} else {
		fmt.Fprintf(out, "Index updated: %d documents\n", r.Documents)
	}
	for _, line := range []struct {
		label string
		ids   []string
	}{{"added", r.Added}, {"removed", r.Removed}, {"reindexed", r.Reindexed}} {
		if len(line.ids) > 0 {
			fmt.Fprintf(out, "  %s: %s\n", line.label, strings.Join(line.ids, ", "))
		}
	}
	if r.Refreshed > 0 {
		fmt.Fprintf(out, "  refreshed files: %d\n", r.Refreshed)
	}
}
