package environment

import (
	"context"
	"log/slog"

	"gym-cutoff/internal/config"
	"gym-cutoff/internal/infra/sqlite3"
	"gym-cutoff/internal/infra/telegram"

	"github.com/pkg/errors"
)

type Clients struct {
	SQLiteDB    *sqlite3.DB
	TelegramBot *telegram.Client
}

func newClients(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Clients, error) {
	sqliteDB, err := OpenDB(ctx, cfg.DB, logger)
	if err != nil {
		return nil, err
	}

	telegramBot, err := provideTelegramBot(cfg, logger)
	if err != nil {
		sqliteDB.Close()
		return nil, err
	}

	return &Clients{
		SQLiteDB:    sqliteDB,
		TelegramBot: telegramBot,
	}, nil
}

// OpenDB opens the cut-off database and applies pending migrations.
func OpenDB(ctx context.Context, cfg config.SQLiteConfig, logger *slog.Logger) (*sqlite3.DB, error) {
	db, err := provideSQLiteDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := sqlite3.Migrate(db.DB.DB, logger); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate sqlite database")
	}

	return db, nil
}

// OpenExistingDB opens the cut-off database as is. The file and schema are
// left untouched, so callers must check the schema themselves.
func OpenExistingDB(ctx context.Context, cfg config.SQLiteConfig) (*sqlite3.DB, error) {
	return provideSQLiteDB(ctx, cfg)
}

func provideSQLiteDB(ctx context.Context, cfg config.SQLiteConfig) (*sqlite3.DB, error) {
	db, err := sqlite3.New(ctx,
		sqlite3.WithPath(cfg.Path),
		sqlite3.WithMaxOpenConns(cfg.MaxOpenConns),
		sqlite3.WithMaxIdleConns(cfg.MaxIdleConns),
		sqlite3.WithConnMaxLifetime(cfg.MaxLifetime),
		sqlite3.WithBusyTimeout(cfg.BusyTimeout),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite database")
	}

	return db, nil
}

func provideTelegramBot(cfg config.Config, logger *slog.Logger) (*telegram.Client, error) {
	// Without a token the admin bot stays off and alerts go to the log.
	if cfg.Telegram.BotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN is empty, admin bot disabled")
		return nil, nil
	}

	client, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.RateLimit, logger)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram client")
	}

	return client, nil
}
