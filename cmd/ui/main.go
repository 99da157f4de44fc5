package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"shoplens/internal/config"
	"shoplens/internal/container"
	"shoplens/ui"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	app, err := ui.NewApp(ui.Config{Port: appConfig.UI.Port}, appContainer.Dashboard)
	if err != nil {
		log.Fatal("Failed to create UI app:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting dashboard UI on http://localhost:%s", appConfig.UI.Port)
	if err := app.Start(ctx); err != nil {
		log.Fatal(err)
	}
}
