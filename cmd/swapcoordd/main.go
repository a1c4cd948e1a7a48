// Package main provides swapcoordd, the cross-chain swap coordination
// server: a single HTTP process that sequences two peers through an
// atomic swap without ever touching their keys or broadcasting on their
// behalf.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atomic-swap-net/swapcoordd/internal/config"
	"github.com/atomic-swap-net/swapcoordd/internal/coordinator"
	"github.com/atomic-swap-net/swapcoordd/internal/rpc"
	"github.com/atomic-swap-net/swapcoordd/internal/storage"
	"github.com/atomic-swap-net/swapcoordd/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

func main() {
	var (
		dataDir     = flag.String("data-dir", "~/.swapcoordd", "Data directory")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		listenAddr  = flag.String("listen", "", "Listen address host:port, overrides config")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("swapcoordd %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	log := logging.New(&logging.Config{Level: "info", TimeFormat: time.TimeOnly})
	logging.SetDefault(log)

	cfg, err := config.LoadConfig(*dataDir)
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	cfg.DataDir = *dataDir
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log = logging.New(&logging.Config{Level: cfg.LogLevel, TimeFormat: time.TimeOnly})
	logging.SetDefault(log)
	log.Info("Config loaded", "path", config.ConfigPath(*dataDir))

	stores, err := storage.Open(storage.Config{BasePath: cfg.ResolvedDataDir()})
	if err != nil {
		log.Fatal("Failed to open storage", "error", err)
	}
	defer stores.Close()
	log.Info("Storage opened", "path", cfg.ResolvedDataDir())

	coord, err := coordinator.New(coordinator.Config{
		Stores: stores,
		Logger: log.Component("coordinator"),
	})
	if err != nil {
		log.Fatal("Failed to start coordinator", "error", err)
	}

	server := rpc.NewServer(rpc.Config{
		Coordinator: coord,
		Logger:      log.Component("rpc"),
	})

	addr := *listenAddr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.ListenAddr, cfg.ResolvePort())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(addr)
	}()

	printBanner(log, addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal("HTTP server stopped unexpectedly", "error", err)
	case <-sigCh:
		log.Info("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Goodbye!")
}

func printBanner(log *logging.Logger, addr string) {
	log.Info("")
	log.Info("=================================================")
	log.Infof("  swapcoordd %s", version)
	log.Info("=================================================")
	log.Info("")
	log.Infof("  API: http://%s", addr)
	log.Infof("  WS:  ws://%s/ws", addr)
	log.Info("")
	log.Info("=================================================")
	log.Info("")
}
