package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"lanchat/auth"
	"lanchat/observability"
	"lanchat/repositories"
	"lanchat/runtime"
	"lanchat/runtime/workers"
	"lanchat/services"
	"lanchat/storage"
	transporthttp "lanchat/transport/http"
	"lanchat/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & stores
	messageRepository, err := repositories.NewMessageRepository(db, log, config.MaxMessageLength)
	if err != nil {
		return err
	}
	defer func() { _ = messageRepository.Close() }()
	secretRepository := repositories.NewSecretRepository(db)
	sessions := auth.NewSessionStore(config.SessionTTL, nil, log)
	signer := auth.NewTokenSigner(config.TokenKey, config.SessionTTL)
	uploads, err := storage.NewUploadStore(config.UploadDir, log)
	if err != nil {
		return err
	}

	// 4. Presence, fanout, supervision
	monitor := observability.NewMonitor(log)
	presence := runtime.NewRegistry()
	bus := runtime.NewBus(log, presence, monitor, config.BufferSize)
	sweeper := workers.NewSessionSweeper(log, sessions, config.SessionSweepInterval)
	sup := workers.NewSupervisor(log).Add(bus, sweeper)

	// 5. Context & signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sup.Run(ctx)

	// 6. Services & transport
	gate := services.NewGateService(secretRepository, log)
	chat := services.NewChatService(messageRepository, bus, monitor, log)
	handler := transporthttp.NewHandler(log, gate, chat, sessions, signer, bus, presence, uploads, monitor)
	wsServer := ws.NewServer(log, handler, presence, bus, chat, monitor,
		config.ConnectionBufferSize, config.PingInterval)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:    address,
		Handler: transporthttp.NewRouter(handler, wsServer),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
