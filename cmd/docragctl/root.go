package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docrag/pkg/client"
)

var (
	serverURL string
	apiKey    string
	jsonOut   bool
)

// newClient is swapped in tests.
var newClient = func() (*client.Client, error) {
	return client.New(serverURL, client.WithAPIKey(apiKey))
}

var rootCmd = &cobra.Command{
	Use:           "docragctl",
	Short:         "Command line client for the docrag server",
	Long:          `Upload documents, follow ingestion jobs, chat with and search the indexed corpus.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("DOCRAG_URL", "http://localhost:8080"), "docrag server URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", os.Getenv("DOCRAG_API_KEY"), "API key (Bearer token)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print raw JSON")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
