package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"placementdash/internal/config"
	"placementdash/internal/container"
	"placementdash/internal/profiling"
	"placementdash/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	logger := appContainer.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			addr := net.JoinHostPort(appConfig.Server.Host, appConfig.Profiling.Port)
			if err := profiling.Start(ctx, addr, logger); err != nil {
				logger.Error("[Profiling] pprof server failed: %v", err)
			}
		}()
	}

	server := ui.NewServer(appContainer.DashboardService, ui.ServerOptions{
		GinMode:        appConfig.Server.GinMode,
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		ServiceAccount: appContainer.Credentials.ClientEmail,
		Logger:         logger,
	})

	if err := server.Start(ctx, appConfig.Server.Addr()); err != nil {
		logger.Error("[Server] %v", err)
		appContainer.Shutdown(context.Background())
		os.Exit(1)
	}
}
