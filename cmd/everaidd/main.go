// Everaidd is the EverAid daemon: pack storage over NATS JetStream, the
// pack CRUD API, and the AI proxy endpoints.
//
// Configuration is loaded from an optional YAML file plus EVERAID_*
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start with defaults (NATS on localhost, port 8787)
//	everaidd
//
//	# Configure via environment
//	EVERAID_SERVER_PORT=9000 EVERAID_AI_API_KEY=sk-... everaidd
//
//	# Or via config file
//	everaidd -config /etc/everaid/config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/everaidhq/everaid/internal/aiproxy"
	"github.com/everaidhq/everaid/internal/config"
	"github.com/everaidhq/everaid/internal/kvstore"
	"github.com/everaidhq/everaid/internal/logging"
	"github.com/everaidhq/everaid/internal/packsvc"
	"github.com/everaidhq/everaid/internal/server"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("everaidd\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n", version, gitCommit, buildDate)
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

// run starts the daemon and blocks until the context is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes the logger
//  3. Connects to NATS and binds the JetStream KV bucket
//  4. Creates the pack service and AI proxy
//  5. Starts the HTTP server
//  6. Performs graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting everaidd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("nats_url", cfg.NATS.URL),
		zap.String("bucket", cfg.NATS.Bucket),
		zap.Bool("ai_enabled", cfg.AI.APIKey.IsSet()),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}
	defer deps.Close()

	packs := packsvc.NewService(deps.store, logger.Named("packs"))

	ai, err := aiproxy.NewService(aiproxy.Config{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		APIKey:  cfg.AI.APIKey.Value(),
	}, logger.Named("ai"))
	if err != nil {
		return fmt.Errorf("initializing AI proxy: %w", err)
	}
	if !ai.Configured() {
		logger.Warn("no AI API key configured, proxy will serve fallback responses")
	}

	// Seed on startup. Idempotent: existing packs are left untouched.
	if result, err := packs.Seed(ctx); err != nil {
		logger.Warn("startup seeding failed", zap.Error(err))
	} else {
		logger.Info("startup seeding", zap.Int("count", result.Count), zap.String("message", result.Message))
	}

	srv, err := server.NewServer(packs, ai, logger.Named("http"), cfg.Server)
	if err != nil {
		return fmt.Errorf("creating HTTP server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// dependencies holds the infrastructure handles.
type dependencies struct {
	natsConn *nats.Conn
	store    kvstore.Store
}

// Close releases infrastructure resources.
func (d *dependencies) Close() {
	if d.natsConn != nil {
		d.natsConn.Close()
	}
}

// initDependencies connects to NATS and binds the pack KV bucket.
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", cfg.NATS.URL, err)
	}
	logger.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))

	store, err := kvstore.NewNATSStore(ctx, nc, cfg.NATS.Bucket, logger.Named("kv"))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("binding KV bucket %s: %w", cfg.NATS.Bucket, err)
	}
	logger.Info("KV bucket ready", zap.String("bucket", cfg.NATS.Bucket))

	return &dependencies{natsConn: nc, store: store}, nil
}
