package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/deckforge/deckforge-server/internal/config"
	"github.com/deckforge/deckforge-server/internal/game"
	"github.com/deckforge/deckforge-server/internal/server"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting deckforge server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	settings := game.Settings{
		HandSize:             cfg.Game.HandSize,
		StartingTreasure:     cfg.Game.StartingTreasure,
		StartingVictory:      cfg.Game.StartingVictory,
		MaxTurns:             cfg.Game.MaxTurns,
		TimeLimit:            cfg.Game.TimeLimit,
		EmptyPilesThreshold:  cfg.Game.EmptyPilesThreshold,
		BaseMultiplier:       cfg.Game.BaseMultiplier,
		CustomCardMultiplier: cfg.Game.CustomCardMultiplier,
	}

	engine := game.NewEngine(logger, settings)
	logger.Info("game engine initialized",
		zap.Int("hand_size", settings.HandSize),
		zap.Int("max_turns", settings.MaxTurns),
		zap.Duration("time_limit", settings.TimeLimit),
	)

	engine.StartSweeper(ctx, cfg.Game.SweepInterval)

	go func() {
		if wsErr := server.StartWebSocketServer(cfg.Server.WebSocket, engine, logger); wsErr != nil {
			logger.Error("WebSocket server error", zap.Error(wsErr))
		}
	}()

	logger.Info("deckforge server initialized",
		zap.String("version", version),
		zap.String("websocket_address", cfg.Server.WebSocket.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	for _, roomID := range engine.RoomIDs() {
		if destroyErr := engine.DestroyRoom(roomID); destroyErr != nil {
			logger.Warn("failed to destroy room during shutdown",
				zap.String("room_id", roomID),
				zap.Error(destroyErr),
			)
		}
	}

	logger.Info("deckforge server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
