/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the flight ledger server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Build the zap logger
  3. Initialize SQLite store
  4. Wire services, dispatcher, and HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence. Each flag has an env fallback loaded via godotenv:
    -port  / PORT        HTTP server port (default: 8080)
    -db    / DATABASE    SQLite database path (default: bitacora.db)
                         Use ":memory:" for an in-memory database
    -debug / LOG_DEBUG   Development logging (default: false)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Wait for in-flight notifications
  4. Close database connection

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/clubaereo/bitacora/api"
	"github.com/clubaereo/bitacora/flightops"
	"github.com/clubaereo/bitacora/store/sqlite"
)

func main() {
	// .env is optional; flags and real env vars win.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE", "bitacora.db"), "SQLite database path")
	debug := flag.Bool("debug", envBool("LOG_DEBUG"), "development logging")
	flag.Parse()

	log, err := buildLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err), zap.String("path", *dbPath))
	}
	defer store.Close()

	dispatcher := flightops.NewDispatcher(&flightops.LogNotifier{Log: log}, log)
	approvals := flightops.NewApprovalService(store, log)
	approvals.Dispatcher = dispatcher

	handler := api.NewHandler(store, approvals, log)
	router := api.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting",
			zap.Int("port", *port),
			zap.String("database", *dbPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	dispatcher.Wait()
	log.Info("server stopped")
}

func buildLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}
