// Package main runs the LiftLog MCP server over stdio, backed by the same
// blob store as the HTTP server.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/liftlog/internal/blob"
	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/gateway"
	"github.com/claude/liftlog/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Log to stderr: stdout is the MCP transport.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		log.Error("failed to load training catalog", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := blob.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open blob store", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	gw := gateway.New(store, cfg.Storage.BlobName, log)

	s := mcp.New(gw, cat, Version, log)
	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
