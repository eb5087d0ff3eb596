// Package cli wires configuration into engines, stores and runners for the chatflow commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/adapters/dynamodb"
	"github.com/aretw0/chatflow/pkg/adapters/file"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/adapters/paramstore"
	"github.com/aretw0/chatflow/pkg/adapters/postgres"
	"github.com/aretw0/chatflow/pkg/adapters/redis"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/persistence/middleware"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"
)

// redisLockPrefix namespaces distributed locks next to the conversation keys.
const redisLockPrefix = "chatflow:"

// App bundles the engine and the collaborators built from a Config.
type App struct {
	Engine   *chatflow.Engine
	Sessions *session.Manager
	Registry *prometheus.Registry
	Logger   *slog.Logger

	closers []func() error
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Build creates an App from cfg. The AWS config is only loaded when a backend needs it.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	app := &App{Logger: logger}

	hooks := observability.LogHooks(logger)
	if cfg.Server.Metrics {
		app.Registry = prometheus.NewRegistry()
		hooks = hooks.Merge(observability.NewMetrics(app.Registry).Hooks())
	}

	awsCfg := lazyAWS(ctx)

	opts := []chatflow.Option{
		chatflow.WithLogger(logger),
		chatflow.WithLifecycleHooks(hooks),
		chatflow.WithWebhookTimeout(cfg.Engine.WebhookTimeout),
		chatflow.WithMaxSteps(cfg.Engine.MaxSteps),
	}

	src, err := app.buildSource(ctx, cfg, awsCfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	repoPath := ""
	if src != nil {
		opts = append(opts, chatflow.WithFlowSource(src))
	} else {
		repoPath = cfg.Flows.Dir
	}

	app.Engine, err = chatflow.New(repoPath, opts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	store, locker, err := app.buildStore(cfg, awsCfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if store, err = wrapStore(store, cfg.Store); err != nil {
		app.Close()
		return nil, err
	}
	sessionOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, sessionOpts...)

	logger.Debug("app ready", "source", cfg.Flows.Source, "store", cfg.Store.Backend)
	return app, nil
}

// buildSource returns nil for the Loam source; chatflow.New opens it from the directory.
func (a *App) buildSource(ctx context.Context, cfg *config.Config, awsCfg func() (aws.Config, error)) (ports.FlowSource, error) {
	switch cfg.Flows.Source {
	case config.SourceLoam:
		return nil, nil
	case config.SourceFile:
		return file.NewSource(cfg.Flows.Dir), nil
	case config.SourcePostgres:
		src, pool, err := postgres.Connect(ctx, cfg.Flows.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		return src, nil
	case config.SourceParamStore:
		c, err := awsCfg()
		if err != nil {
			return nil, err
		}
		return paramstore.New(awsssm.NewFromConfig(c), cfg.Flows.ParamPrefix)
	}
	return nil, fmt.Errorf("unknown flow source %q", cfg.Flows.Source)
}

func (a *App) buildStore(cfg *config.Config, awsCfg func() (aws.Config, error)) (ports.ConversationStore, ports.DistributedLocker, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memory.NewStore(), nil, nil
	case config.StoreFile:
		return file.NewStore(cfg.Store.Dir), nil, nil
	case config.StoreRedis:
		store := redis.New(cfg.Store.RedisAddr, cfg.Store.RedisPassword, cfg.Store.RedisDB, redis.WithTTL(cfg.Store.TTL))
		a.closers = append(a.closers, store.Close)
		return store, redis.NewLocker(store.Client(), redisLockPrefix), nil
	case config.StoreDynamoDB:
		c, err := awsCfg()
		if err != nil {
			return nil, nil, err
		}
		store, err := dynamodb.New(awsdynamodb.NewFromConfig(c), cfg.Store.Table, dynamodb.WithTTL(cfg.Store.TTL))
		return store, nil, err
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// wrapStore masks PII first so that sealed history never holds the raw values.
func wrapStore(store ports.ConversationStore, cfg config.StoreConfig) (ports.ConversationStore, error) {
	var mws []middleware.Middleware
	if len(cfg.MaskPatterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(cfg.MaskPatterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if cfg.EncryptionKey != "" {
		active, err := middleware.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, err
		}
		encCfg := middleware.EncryptionConfig{ActiveKey: active}
		for _, k := range cfg.FallbackKeys {
			key, err := middleware.ParseKey(strings.TrimSpace(k))
			if err != nil {
				return nil, err
			}
			encCfg.FallbackKeys = append(encCfg.FallbackKeys, key)
		}
		mw, err := middleware.NewEncryptionMiddleware(encCfg)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	return middleware.Chain(store, mws...), nil
}

func lazyAWS(ctx context.Context) func() (aws.Config, error) {
	var (
		loaded bool
		cfg    aws.Config
		err    error
	)
	return func() (aws.Config, error) {
		if !loaded {
			loaded = true
			cfg, err = awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				err = fmt.Errorf("failed to load AWS config: %w", err)
			}
		}
		return cfg, err
	}
}
