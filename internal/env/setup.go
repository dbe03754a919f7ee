package environment

import (
	"context"
	"fmt"
	"log/slog"

	"gym-cutoff/internal/config"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type closer func()

type Env struct {
	Config   *config.Config
	Logger   *slog.Logger
	Servers  *Servers
	Clients  *Clients
	Services *Services

	Closers []closer
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig(ctx context.Context) (config.Config, error) {
	_ = godotenv.Load()

	var cfg config.Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return config.Config{}, fmt.Errorf("env processing: %w", err)
	}
	return cfg, nil
}

func Setup(ctx context.Context) (*Env, error) {
	cfg, err := LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	logger := NewLogger(cfg)

	clients, err := newClients(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("newClients: %w", err)
	}

	services, err := newServices(ctx, clients, &cfg, logger)
	if err != nil {
		clients.SQLiteDB.Close()
		return nil, fmt.Errorf("newServices: %w", err)
	}

	return &Env{
		Config:   &cfg,
		Logger:   logger,
		Servers:  newServers(cfg, logger, clients),
		Clients:  clients,
		Services: services,
		Closers: []closer{
			func() {
				if err := clients.SQLiteDB.Close(); err != nil {
					logger.Error("Failed to close database", "error", err)
				}
			},
		},
	}, nil
}
