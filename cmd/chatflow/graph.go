package main

import (
	"fmt"

	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <flow-id>",
	Short: "Export the flow graph visualization",
	Long:  `Inspects a flow and outputs a Mermaid diagram (graph TD) with TRUE/FALSE branch labels.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := loadApp(ctx, cmd, args)
		if err != nil {
			return err
		}
		defer app.Close()

		g, err := app.Engine.Inspect(ctx, args[0])
		if err != nil {
			return fmt.Errorf("error inspecting flow: %w", err)
		}

		var overlay *graph.GraphOverlay
		if id, _ := cmd.Flags().GetString("conversation"); id != "" {
			conv, err := app.Sessions.Load(ctx, id)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{CurrentNode: conv.State.CurrentNodeID}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("conversation", "", "Highlight the node this stored conversation is waiting at")
}
