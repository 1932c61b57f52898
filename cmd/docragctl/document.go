package main

import (
	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage indexed documents",
	Long:  `List, delete or re-index uploaded documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentReindexCmd = &cobra.Command{
	Use:   "reindex [doc-id]",
	Short: "Re-run ingestion over a stored document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReindex,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReindexCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	list, err := c.Documents(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd, list)
	}
	if len(list.Documents) == 0 {
		cmd.Println("No documents.")
		return nil
	}
	for _, d := range list.Documents {
		cmd.Printf("%s  %-8s %6d chunks  %s\n", d.DocumentID, d.Format, d.ChunkCount, d.Filename)
	}
	cmd.Printf("\n%d chunks across %d documents\n", list.TotalChunks, list.UniqueDocuments)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	if err := c.DeleteDocument(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runDocumentReindex(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	up, err := c.Reindex(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("%s: queued job %s\n", up.DocumentID, up.FileID)
	return nil
}
