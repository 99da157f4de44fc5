package container

import (
	"context"
	"fmt"
	"log"

	jsonsource "shoplens/adapters/api"
	"shoplens/adapters/excel"
	"shoplens/adapters/postgres"
	"shoplens/app"
	"shoplens/domain/dataset"
	"shoplens/internal"
	"shoplens/internal/config"
	datacache "shoplens/internal/dataset"
	"shoplens/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Data access
	Loader ports.DatasetLoader
	Cache  *datacache.Cache
	Layout *config.Layout

	// Services
	Dashboard *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	c := &Container{
		Config: cfg,
	}

	layout, err := config.LoadLayout(cfg.Dashboard.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	c.Layout = layout

	if err := c.initLoader(); err != nil {
		return nil, fmt.Errorf("failed to initialize data source: %w", err)
	}

	c.Cache = datacache.NewCache(cfg.Dashboard.CacheSize)
	c.Dashboard = app.NewDashboardService(c.Loader, c.Cache, c.Layout, cfg.Dashboard.Workers)

	log.Printf("Container initialized: source=%s views=%d workers=%d", cfg.Source.Kind, len(layout.Views), cfg.Dashboard.Workers)
	return c, nil
}

// initLoader picks the dataset loader for the configured source kind
func (c *Container) initLoader() error {
	src := c.Config.Source
	switch src.Kind {
	case config.SourceFile:
		excelConfig := excel.DefaultExcelConfig(src.Path)
		if src.Sheet != "" {
			excelConfig.Sheet = src.Sheet
		}
		c.Loader = excel.NewLoader(excelConfig)

	case config.SourceJSON:
		c.Loader = jsonsource.NewLoader(jsonsource.JSONSource{
			Location: src.Path,
			DataPath: src.DataPath,
			Known:    dataset.ShoppingSchema(),
		})

	case config.SourceSQL:
		db, err := postgres.Open(src.Driver, src.DSN)
		if err != nil {
			return err
		}
		return c.InitWithDatabase(db)

	default:
		return fmt.Errorf("unknown source kind %q", src.Kind)
	}
	return nil
}

// InitWithDatabase wires a table-backed loader on an open connection
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	// Test database connection
	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.DB = db

	loader, err := postgres.NewDatasetRepository(db, c.Config.Source.DSN, c.Config.Source.Table, dataset.ShoppingSchema())
	if err != nil {
		return err
	}
	c.Loader = loader
	return nil
}

// Warm loads the dataset once so the first request does not pay for it
func (c *Container) Warm(ctx context.Context) error {
	_, err := c.Dashboard.Dataset(ctx)
	return err
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
