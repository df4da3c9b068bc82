// Package main implements the reference game server: a single game against
// a UCI engine, served over the JSON endpoints the terminal client uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessai/cmd/chess-server/cli"
	"chessai/internal/server/engine"
	"chessai/internal/server/http"
	"chessai/internal/server/processor"
	"chessai/internal/server/storage"

	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 5000, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, debug logging)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (disables persistence if empty)")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		enginePath  = flag.String("engine", engine.DefaultPath, "UCI engine binary")
		workers     = flag.Int("workers", 2, "Engine worker count")
	)
	flag.Parse()

	logger := newLogger(*dev)
	defer logger.Sync()

	if *pidLock && *pidPath == "" {
		logger.Fatal("-pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		pf, err := acquirePIDFile(*pidPath, *pidLock)
		if err != nil {
			logger.Fatal("failed to manage PID file", zap.Error(err))
		}
		defer pf.Release()
		logger.Info("PID file created", zap.String("path", *pidPath), zap.Bool("lock", *pidLock))
	}

	// 1. Storage (optional)
	var (
		recorder processor.Recorder
		health   http.HealthFunc
	)
	if *storagePath != "" {
		logger.Info("initializing persistent storage", zap.String("path", *storagePath))
		store, err := storage.NewStore(*storagePath, *dev, logger.Named("storage"))
		if err != nil {
			logger.Fatal("failed to initialize storage", zap.Error(err))
		}
		if err := store.InitDB(); err != nil {
			logger.Fatal("failed to initialize schema", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close storage cleanly", zap.Error(err))
			}
		}()
		recorder = store
		health = store.Health
	} else {
		logger.Info("persistent storage disabled (use -storage-path to enable)")
		health = func() string { return "disabled" }
	}

	// 2. Engine workers
	queue := processor.NewEngineQueue(*workers, *enginePath, logger.Named("engine"))

	// 3. Processor and HTTP app
	proc := processor.New(queue, recorder, logger.Named("processor"))
	app := http.NewFiberApp(proc, health, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)
	go func() {
		rate := 10
		if *dev {
			rate = 20
		}
		logger.Info("chess API server starting",
			zap.String("addr", "http://"+apiAddr),
			zap.String("engine", *enginePath),
			zap.Int("workers", *workers),
			zap.Int("rate_limit_per_sec", rate),
			zap.Bool("storage", *storagePath != ""),
		)
		if err := app.Listen(apiAddr); err != nil {
			logger.Error("API server listen error", zap.Error(err))
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	if err := queue.Shutdown(gracefulShutdownTimeout); err != nil {
		logger.Warn("engine queue shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(dev bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
