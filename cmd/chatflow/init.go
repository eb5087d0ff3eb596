package main

import (
	"fmt"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write a sample flow to start from",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		path, err := cli.Scaffold(dir, force)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\nTry it: chatflow run %s --dir %s\n", path, cli.WelcomeFlowID, dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite an existing sample flow")
}
