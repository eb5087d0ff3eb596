package main

import (
	"os"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <flow-id>",
	Short: "Chat with a flow in the terminal",
	Long: `Starts a conversation on the given flow and reads replies from stdin.
With --conversation the conversation is persisted and resumed on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		conversationID, _ := cmd.Flags().GetString("conversation")
		fresh, _ := cmd.Flags().GetBool("fresh")
		jsonMode, _ := cmd.Flags().GetBool("json")
		plain, _ := cmd.Flags().GetBool("plain")

		return cli.Chat(cmd.Context(), app, cli.ChatOptions{
			FlowID:         args[0],
			ConversationID: conversationID,
			Fresh:          fresh,
			JSON:           jsonMode,
			Plain:          plain,
		}, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("conversation", "", "Persist the conversation under this id")
	runCmd.Flags().Bool("fresh", false, "Discard the stored conversation before starting")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
