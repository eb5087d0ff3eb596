package main

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/aretw0/chatflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes chatflow conversations as MCP tools (send_message, get_conversation,
reset_conversation, get_flow) so agents can talk to a flow.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		srv := mcp.NewServer(app.Engine, app.Sessions, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting chatflow MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting chatflow MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
