package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/chatflow/internal/cli"
	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatflow",
	Short: "chatflow runs chatbot flows one conversational turn at a time",
	Long: `chatflow interprets chatbot flows (triggers, messages, questions, conditions,
media, webhooks) and keeps conversations resumable across turns.
Flows are read from a Loam repository, YAML/JSON files, Postgres or AWS SSM.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the flows (overrides flows.dir)")
	rootCmd.PersistentFlags().String("source", "", "Flow source: loam, file, postgres or paramstore")
	rootCmd.PersistentFlags().String("store", "", "Conversation store: memory, file, redis or dynamodb")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a chatflow.yaml config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file and environment, then applies persistent flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Flows.Dir = dir
	}
	if source, _ := cmd.Flags().GetString("source"); source != "" {
		cfg.Flows.Source = source
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store.Backend = store
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadApp builds the engine and stores for a command. The caller must Close the App.
func loadApp(ctx context.Context, cmd *cobra.Command, args []string) (*cli.App, error) {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, cfg, logger)
}
