package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/adapters/dynamodb"
	lambdaAdapter "github.com/aretw0/chatflow/pkg/adapters/lambda"
	"github.com/aretw0/chatflow/pkg/adapters/paramstore"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	flowPrefix := mustEnv("FLOW_PARAM_PREFIX")
	webhookTimeout := envInt("WEBHOOK_TIMEOUT_SECONDS", 10)
	ttlHours := envInt("STATE_TTL_HOURS", 24)
	maxSteps := envInt("MAX_STEPS", 100)

	level, err := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = slog.LevelInfo
	}
	logger := logging.New(level)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	source, err := paramstore.New(awsssm.NewFromConfig(cfg), flowPrefix)
	if err != nil {
		logger.Error("failed to create flow source", "err", err)
		os.Exit(1)
	}
	store, err := dynamodb.New(awsdynamodb.NewFromConfig(cfg), stateTable,
		dynamodb.WithTTL(time.Duration(ttlHours)*time.Hour))
	if err != nil {
		logger.Error("failed to create state store", "err", err)
		os.Exit(1)
	}

	// ---- Engine ----
	engine, err := chatflow.New("",
		chatflow.WithFlowSource(source),
		chatflow.WithWebhookTimeout(time.Duration(webhookTimeout)*time.Second),
		chatflow.WithMaxSteps(maxSteps),
		chatflow.WithLifecycleHooks(observability.LogHooks(logger)),
		chatflow.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create engine", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	sessions := session.NewManager(store, session.WithLogger(logger))
	h, err := lambdaAdapter.NewHandler(engine, sessions, lambdaAdapter.WithLogger(logger))
	if err != nil {
		logger.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
