// Package main is the entry point for the IDE backend server.
//
// main stays small:
//  1. Load configuration (.env file, then environment)
//  2. Build the logger
//  3. Hand both to internal/server and block in Start
//
// Everything else lives under internal/.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/ide-server/internal/config"
	"github.com/sakif/ide-server/internal/logging"
	"github.com/sakif/ide-server/internal/server"
)

func main() {
	// === 1. CONFIGURATION ===
	// Config errors are reported before the real logger exists, so use a
	// plain one at Info.
	cfg, err := config.Load()
	if err != nil {
		logging.New(slog.LevelInfo, os.Stderr).Error("invalid configuration",
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// === 2. LOGGING ===
	// Validate has already checked LOG_LEVEL, so this cannot fail here.
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(level, os.Stderr)
	slog.SetDefault(logger)

	// === 3. SERVER ===
	srv, err := server.New(server.Config{
		Port:            cfg.Port,
		DBPath:          cfg.DatabasePath(),
		UploadDir:       cfg.UploadDir,
		DefaultMimeType: cfg.DefaultMimeType,
		MaxUploadBytes:  cfg.MaxUploadBytes,
	}, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
