package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shoplens/internal/api"
	"shoplens/internal/config"
	"shoplens/internal/container"
	"shoplens/ui"
	"shoplens/ui/middleware"

	"github.com/gin-gonic/gin"
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

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A source that cannot be read yet is reported per request, not fatal
	if err := appContainer.Warm(ctx); err != nil {
		log.Printf("Warning: initial dataset load failed: %v", err)
	}

	// JSON API
	gin.SetMode(appConfig.Server.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.EnsureDataset(appContainer.Warm))
	api.NewDashboardHandler(appContainer.Dashboard).RegisterRoutes(router)

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// HTML dashboard
	dashboardUI, err := ui.NewApp(ui.Config{Port: appConfig.UI.Port}, appContainer.Dashboard)
	if err != nil {
		log.Fatalf("Failed to create UI app: %v", err)
	}
	uiDone := make(chan error, 1)
	go func() {
		uiDone <- dashboardUI.Start(ctx)
	}()

	go func() {
		log.Printf("Starting API server on port %s", appConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}
	if err := <-uiDone; err != nil {
		log.Printf("UI server error: %v", err)
	}
}
