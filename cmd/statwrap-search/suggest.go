package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StatTag/StatWrap-sub000/api"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [partial]",
	Short: "Autocomplete a partial query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if result := api.ValidateSuggestionQuery(args[0]); result.HasErrors() {
		return errors.New(result.Errors[0].Message)
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	for _, s := range svc.GetSuggestions(args[0]) {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}
