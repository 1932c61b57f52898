package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docrag/pkg/client"
)

var uploadWait bool

var uploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload files for ingestion",
	Long:  `Uploads each file and prints its job id. With --wait, follows every job until it completes or fails.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWait, "wait", "w", false, "wait for ingestion to finish")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var failed int
	for _, path := range args {
		up, err := c.UploadFile(ctx, path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("%s: queued job %s (document %s)\n", up.Filename, up.FileID, up.DocumentID)
		if !uploadWait {
			continue
		}
		j, err := c.WaitForJob(ctx, up.FileID)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		printJobLine(cmd, j)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}

func printJobLine(cmd *cobra.Command, j client.Job) {
	line := fmt.Sprintf("%s  %-10s %3d%%  %s", j.FileID, j.Status, j.Progress, j.Message)
	if j.ChunksAdded != nil {
		line += fmt.Sprintf(" (%d chunks)", *j.ChunksAdded)
	}
	cmd.Println(line)
}
