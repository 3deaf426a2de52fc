package main

import (
	"context"
	"fmt"
	"io/fs"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/poietai/poietai/internal/config"
	"github.com/poietai/poietai/internal/fleet"
	"github.com/poietai/poietai/internal/mcp"
	"github.com/poietai/poietai/internal/notify"
	"github.com/poietai/poietai/internal/secrets"
	"github.com/poietai/poietai/internal/server"
	"github.com/poietai/poietai/internal/store/postgres"
	redisstore "github.com/poietai/poietai/internal/store/redis"
	"github.com/poietai/poietai/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("POIETAI_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("POIETAI_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Open the credential vault.
	vault, err := secrets.NewVault(cfg.Vault.Passphrase)
	if err != nil {
		return err
	}

	// Create the orchestrator with the MCP ask_human bridge.
	orch := fleet.NewOrchestrator(
		store.Agents(),
		store.Tickets(),
		store.Projects(),
		store.Messages(),
		store.Secrets(),
		vault,
		pubsub,
		nil, // answerer wired below, after the MCP server exists
		fleet.Options{
			RunnerBin:      cfg.Runner.Bin,
			AllowedTools:   cfg.Runner.AllowedTools,
			ReviewInterval: cfg.GitHub.PollInterval,
			ReviewMaxPolls: cfg.GitHub.MaxPolls,
		},
	)

	mcpServer := mcp.NewServer(orch.OnQuestion)
	orch.SetAnswerer(mcpServer)
	defer orch.Shutdown()

	// Optional Slack notifications.
	if cfg.Slack.BotToken != "" {
		orch.SetNotifier(notify.NewNotifier(slacklib.New(cfg.Slack.BotToken), cfg.Slack.Channel))
		log.Info().Str("channel", cfg.Slack.Channel).Msg("Slack notifications enabled")
	}

	// Prepare embedded UI assets (strip "build/" prefix from fs paths).
	webAssets, err := fs.Sub(web.Assets, "build")
	if err != nil {
		return fmt.Errorf("web assets: %w", err)
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Broadcast roster snapshots for the canvas sidebar.
	go orch.Broadcast(ctx, cfg.Fleet.PollInterval)

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, vault, orch, mcpServer, webAssets)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
