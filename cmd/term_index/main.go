package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-term-index/api"
	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/engine"
	"github.com/gcbaptista/go-term-index/internal/logger"
	"github.com/gcbaptista/go-term-index/internal/metrics"
)

const (
	version         = "v1.0.0"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Define command-line flags
	var (
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to a TOML server config file")
		port       = flag.Int("port", 0, "Port to run the server on (overrides the config file)")
		dataDir    = flag.String("data-dir", "", "Directory to store index data (overrides the config file)")
	)

	flag.Parse()

	if *help {
		fmt.Printf("Go Term Index - a trie-backed term dictionary with prefix and typo-tolerant lookup\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                              # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000                  # Start server on port 9000\n", os.Args[0])
		fmt.Printf("  %s --config /etc/terms.toml     # Load server settings from a file\n", os.Args[0])
		fmt.Printf("  %s --data-dir /tmp/terms        # Use custom data directory\n", os.Args[0])
		return
	}

	if *showVer {
		fmt.Printf("Go Term Index %s\n", version)
		return
	}

	cfg, err := config.LoadServerConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithConfig("term-index",
		logger.ParseLevel(cfg.Log.Level),
		cfg.Log.Timestamps,
		logger.ParseFormatter(cfg.Log.Format))
	m := metrics.New()

	log.Info("Using data directory", "dir", cfg.Storage.DataDir)
	termEngine := engine.NewEngine(cfg.Storage.DataDir,
		engine.WithLogger(log.WithPrefix("engine")),
		engine.WithMetrics(m),
		engine.WithMaxWorkers(cfg.Jobs.MaxWorkers))
	log.Info("Indexes loaded", "count", len(termEngine.ListIndexes()))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(),
		api.RequestLoggerMiddleware(log.WithPrefix("http")),
		api.MetricsMiddleware(m),
		api.CORSMiddleware(),
		api.RequestSizeLimitMiddleware(cfg.Server.MaxRequestBytes))
	api.SetupRoutes(router, termEngine, m, log.WithPrefix("api"))

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped", "err", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", "err", err)
		}
	}

	// Indexes are not persisted implicitly; unsaved words are reported.
	for _, name := range termEngine.ListIndexes() {
		index, err := termEngine.GetIndex(name)
		if err != nil {
			continue
		}
		if stats := index.Stats(); stats.Dirty && stats.Words > 0 {
			log.Warn("Index has words that were never persisted", "index", name, "words", stats.Words)
		}
	}
	termEngine.Close()
}
