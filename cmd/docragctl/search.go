package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docrag/pkg/client"
)

var (
	searchLimit     int
	searchThreshold float64
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed chunks",
	Long:  `Runs a cosine similarity search over indexed chunks and prints the best matches.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum score in [0,1]")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	results, err := c.Search(cmd.Context(), client.SearchRequest{
		Query:     strings.Join(args, " "),
		TopK:      &searchLimit,
		Threshold: &searchThreshold,
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd, results)
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("[%d] %s, chunk %d (%.3f)\n", i+1, r.Filename, r.Ordinal, r.Score)
		cmd.Printf("    %s\n", snippet(r.Text, 160))
	}
	return nil
}

func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
