// Package app wires the application services together.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ollamadesk/ollamadesk/src/chat"
	"github.com/ollamadesk/ollamadesk/src/config"
	"github.com/ollamadesk/ollamadesk/src/dbconn"
	"github.com/ollamadesk/ollamadesk/src/kvstore"
	"github.com/ollamadesk/ollamadesk/src/ollama"
	"github.com/ollamadesk/ollamadesk/src/storage"
	"github.com/ollamadesk/ollamadesk/src/tools"
)

// App holds all services. Construct one with New and share it by reference.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       *storage.DB
	Client      *ollama.Client
	Cache       *chat.Cache
	Chat        *chat.Service
	Settings    kvstore.Store
	Connections *dbconn.Manager
	Toolbox     *tools.Toolbox
}

// Options control construction beyond the config file.
type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// DatabasePath overrides both the config and the default location.
	DatabasePath string

	// DisableTools skips the query toolbox, leaving chat plain.
	DisableTools bool
}

// New initializes every service. Call Close when done.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	paths := config.GetDefaultStoragePaths()
	dbPath := paths.DatabasePath
	if cfg.DatabasePath != "" {
		dbPath = cfg.DatabasePath
	}
	if opts.DatabasePath != "" {
		dbPath = opts.DatabasePath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	client := ollama.NewClient(ollama.Config{
		BaseURL:      cfg.ServerHost,
		Timeout:      120 * time.Second,
		DefaultModel: cfg.DefaultModel,
		Logger:       logger,
	})

	settings, err := kvstore.NewFileStore(afero.NewOsFs(), paths.SettingsPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	connections := dbconn.NewManager(settings, logger)

	var (
		toolbox *tools.Toolbox
		runner  *tools.Runner
	)
	if !opts.DisableTools {
		toolbox = tools.NewToolbox()
		toolbox.Use(tools.LoggingMiddleware(logger.With("component", "toolbox")))
		if err := tools.NewDatabaseTools(connections, logger).RegisterAll(toolbox); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to register tools: %w", err)
		}
		runner = tools.NewRunner(client, toolbox, logger)
	}

	cache := chat.NewCache(logger)
	service := chat.NewService(store, client, cache, runner, logger)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Client:      client,
		Cache:       cache,
		Chat:        service,
		Settings:    settings,
		Connections: connections,
		Toolbox:     toolbox,
	}, nil
}

// Close releases all resources held by the app.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
