package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage persisted conversations",
	Long:    `List, inspect, and remove conversations held by the configured store.`,
}

var conversationsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		ids, err := app.Sessions.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing conversations: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(ids) == 0 {
			fmt.Fprintln(out, "No conversations found.")
			return nil
		}

		fmt.Fprintln(out, "Conversations:")
		for _, id := range ids {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <conversation-id>",
	Short: "Print a conversation as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		conv, err := app.Sessions.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading conversation '%s': %w", args[0], err)
		}

		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling conversation: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var conversationsRmCmd = &cobra.Command{
	Use:   "rm <conversation-id>...",
	Short: "Remove one or more conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("requires at least 1 conversation id or --all")
		}

		app, err := loadApp(cmd.Context(), cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		ids := args
		if all {
			if ids, err = app.Sessions.List(cmd.Context()); err != nil {
				return fmt.Errorf("error listing conversations: %w", err)
			}
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, id := range ids {
			if err := app.Sessions.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(out, "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(out, "Removed conversation '%s'\n", id)
		}

		if failed > 0 {
			return fmt.Errorf("failed to remove %d conversations", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsLsCmd)
	conversationsCmd.AddCommand(conversationsShowCmd)
	conversationsCmd.AddCommand(conversationsRmCmd)

	conversationsRmCmd.Flags().Bool("all", false, "Remove every stored conversation")
}
