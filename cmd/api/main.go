package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"cotdex/internal/config"
	"cotdex/internal/container"
	"cotdex/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	if err := c.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := c.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	server := ui.NewServer(c.Network, ui.Options{
		Metrics: appConfig.Metrics.Enabled,
		Logger:  c.Logger,
	})
	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Printf("Server failed: %v", err)
	}
}
