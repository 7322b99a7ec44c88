package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StatTag/StatWrap-sub000/internal/engine"
	"github.com/StatTag/StatWrap-sub000/internal/persistence"
	"github.com/StatTag/StatWrap-sub000/model"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print index statistics as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()
		return printJSON(cmd, svc.GetSearchStats())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the index and project summaries to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		payload := svc.ExportIndex()
		if err := persistence.SaveJSON(args[0], payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d documents from %d projects to %s\n",
			len(payload.DocumentStore), len(payload.ProjectsData), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the index with a previously exported file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var payload model.ExportPayload
		if err := persistence.LoadJSON(args[0], &payload); err != nil {
			return err
		}

		svc, err := engine.New(cliSettings)
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.ImportIndex(cmd.Context(), &payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d documents from %d projects\n",
			len(payload.DocumentStore), len(payload.IndexedProjects))
		return nil
	},
}

var deleteIndexCmd = &cobra.Command{
	Use:   "delete-index",
	Short: "Delete the index file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := engine.New(cliSettings)
		if err != nil {
			return err
		}
		defer svc.Close()

		if !svc.DeleteIndexFile() {
			return errors.New("index file could not be deleted")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", svc.IndexPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, exportCmd, importCmd, deleteIndexCmd)
}
