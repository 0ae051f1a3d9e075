/*
Package main is the entry point for the Battle Royal voting room server.

It loads configuration, initializes the global logging system, restores the
persisted admin identity and appearance settings, starts the room event loop
and HTTP server, and gracefully handles operating system interrupt signals
(SIGINT, SIGTERM) for a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CALEBPOTZ/battleroyal/internal/app/room"
	"github.com/CALEBPOTZ/battleroyal/internal/app/store"
	"github.com/CALEBPOTZ/battleroyal/internal/configs"
	"github.com/CALEBPOTZ/battleroyal/internal/handler"
	"github.com/CALEBPOTZ/battleroyal/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("config_file", cfg.ConfigFile).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore persisted admin identity and appearance, then start the room.
	configStore := store.New(cfg.ConfigFile)
	persisted := configStore.Load()

	state := room.NewState(persisted.AdminUsername, persisted.Appearance)
	votingRoom := room.NewRoom(state, configStore)
	go votingRoom.Run()

	// Setup HTTP server and routes
	router := handler.Router(&handler.AppDeps{
		Room:   votingRoom,
		Config: cfg,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Battle Royal Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	votingRoom.Stop()

	logx.Info("Server gracefully stopped.")
}
