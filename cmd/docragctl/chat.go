package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docrag/pkg/client"
)

var (
	chatMode  string
	chatNoRAG bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask a question about the indexed documents",
	Long: `Sends one chat turn. Modes: chat (default), summarize, deep-research.
Deep research also consults web search when the server has it configured.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMode, "mode", "m", client.ModeChat, "chat, summarize or deep-research")
	chatCmd.Flags().BoolVar(&chatNoRAG, "no-rag", false, "answer without retrieving document context")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	c, err := newClient()
	if err != nil {
		return err
	}
	useRAG := !chatNoRAG
	resp, err := c.Chat(cmd.Context(), client.ChatRequest{
		Message: strings.Join(args, " "),
		Mode:    chatMode,
		UseRAG:  &useRAG,
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd, resp)
	}

	cmd.Println(resp.Text)
	if resp.Degraded {
		cmd.PrintErrln("(context retrieval failed; answered without it)")
	}
	if len(resp.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, s := range resp.Sources {
			cmd.Printf("  %s, chunk %d (%.2f)\n", s.Filename, s.Ordinal, s.Score)
		}
	}
	if len(resp.WebSources) > 0 {
		cmd.Println()
		cmd.Println("Web:")
		for _, w := range resp.WebSources {
			if w.URL == "" {
				cmd.Printf("  %s\n", w.Title)
				continue
			}
			cmd.Printf("  %s (%s)\n", w.Title, w.URL)
		}
	}
	return nil
}
