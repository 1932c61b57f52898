package main

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show ingestion job status",
	Long:  `Shows one job, or every tracked job when no id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var waitCmd = &cobra.Command{
	Use:   "wait [job-id]",
	Short: "Wait for an ingestion job to finish",
	Args:  cobra.ExactArgs(1),
	RunE:  runWait,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(waitCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		j, err := c.Status(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(cmd, j)
		}
		printJobLine(cmd, j)
		return nil
	}

	jobs, err := c.Jobs(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd, jobs)
	}
	if len(jobs) == 0 {
		cmd.Println("No jobs.")
		return nil
	}
	for _, j := range jobs {
		printJobLine(cmd, j)
	}
	return nil
}

func runWait(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	j, err := c.WaitForJob(cmd.Context(), args[0])
	if j.FileID != "" {
		printJobLine(cmd, j)
	}
	return err
}
