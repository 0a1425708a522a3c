package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alaq/sc-podcast/app/api"
	"github.com/alaq/sc-podcast/app/cfg"
	"github.com/alaq/sc-podcast/app/extractor"
	"github.com/alaq/sc-podcast/app/feed"
	"github.com/alaq/sc-podcast/app/kvstore"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Best-effort local .env loading; absence is the normal case in
	// production.
	_ = godotenv.Load()

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Println("Starting sc-podcast server...")

	store := newStore(appCfg)
	defer store.Close()

	// Load per-feed override configurations
	configCache := feed.NewConfigCache(appCfg.FeedsDir)
	if err := configCache.Run(); err != nil {
		log.Fatal("Failed to load feed overrides:", err)
	}
	log.Printf("Loaded %d feed overrides", configCache.GetOverrideCount())

	// Initialize core components
	ytdlp := extractor.NewYTDLP(appCfg.ExtractorPath,
		time.Duration(appCfg.ExtractorTimeout)*time.Second)
	hydrator := feed.NewHydrator(store, ytdlp, appCfg.RefreshBudget)

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(ytdlp, hydrator, configCache, store)
	server := api.NewServer(apiHandler)

	// Create HTTP server with timeouts. Read/write allowances are generous:
	// a cold feed request runs the extractor once plus up to budget refetches.
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Feed:          http://localhost:%s/<channel-or-playlist-path>", appCfg.Port)
		log.Printf("  Stream:        http://localhost:%s/stream/<track-path>", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("sc-podcast server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("sc-podcast server shutdown complete")
}

// newStore picks the key-value backend: the remote REST store when
// credentials are configured, a local SQLite database when a path is given,
// else a no-op store that disables the caching subsystem entirely.
func newStore(appCfg *cfg.Cfg) kvstore.Store {
	if appCfg.KVRestURL != "" && appCfg.KVRestToken != "" {
		store := kvstore.NewRESTStore(appCfg.KVRestURL, appCfg.KVRestToken, appCfg.UserAgent)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			log.Printf("Warning: key-value store unreachable, proceeding anyway: %v", err)
		} else {
			log.Printf("Connected to key-value store at %s", appCfg.KVRestURL)
		}
		return store
	}

	if appCfg.CacheDBPath != "" {
		store, err := kvstore.NewSQLiteStore(appCfg.CacheDBPath)
		if err != nil {
			log.Printf("Warning: failed to open local cache %s, caching disabled: %v", appCfg.CacheDBPath, err)
			return kvstore.NewNoopStore()
		}
		log.Printf("Using local cache database at %s", appCfg.CacheDBPath)
		return store
	}

	log.Println("Warning: no key-value store configured, first-seen tracking and metadata caching disabled")
	return kvstore.NewNoopStore()
}
