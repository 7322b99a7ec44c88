package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/StatTag/StatWrap-sub000/api"
	"github.com/StatTag/StatWrap-sub000/model"
)

var (
	searchType     string
	searchProject  string
	searchFileType string
	searchLimit    int
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed projects",
	Long: `Run a ranked query against the index and print the hits across all
document types, best first. Longer terms also match with small typos.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "only return this document type")
	searchCmd.Flags().StringVar(&searchProject, "project", "", "only return documents of this project id")
	searchCmd.Flags().StringVar(&searchFileType, "file-type", "", "only return files with this extension")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the grouped results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	req := api.SearchRequest{
		Query:      args[0],
		Type:       searchType,
		ProjectID:  searchProject,
		FileType:   searchFileType,
		MaxResults: searchLimit,
	}
	if result := api.ValidateSearchRequest(&req); result.HasErrors() {
		return fmt.Errorf("%s: %s", result.Errors[0].Field, result.Errors[0].Message)
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	results := svc.Search(req.Query, req.Options())
	if searchJSON {
		return printJSON(cmd, results)
	}
	printResults(cmd, req.Query, results)
	return nil
}

func printResults(cmd *cobra.Command, query string, results *model.GroupedResults) {
	out := cmd.OutOrStdout()
	if results.Total() == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return
	}

	fmt.Fprintf(out, "Results for %q (%d, %dms):\n", query, results.Total(), results.Took)
	for i, r := range results.All {
		fmt.Fprintf(out, "%3d. [%s] %s (%.3f)\n", i+1, r.Type, r.Item.Name, r.Score)
		if location := resultLocation(r); location != "" {
			fmt.Fprintf(out, "     %s\n", location)
		}
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "     ... %s ...\n", h)
		}
	}
	if len(results.RemovedWords) > 0 {
		fmt.Fprintf(out, "Ignored: %v\n", results.RemovedWords)
	}
}

func resultLocation(r model.Result) string {
	switch {
	case r.Item.ProjectName != "" && r.Item.RelativePath != "":
		return r.Item.ProjectName + " / " + r.Item.RelativePath
	case r.Item.ProjectName != "":
		return r.Item.ProjectName
	}
	return r.Item.Path
}
