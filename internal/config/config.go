package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	DB               SQLiteConfig            `env:",prefix=DB_"`
	Telegram         TelegramConfig          `env:",prefix=TELEGRAM_"`
	Integrity        IntegrityConfig         `env:",prefix=INTEGRITY_"`
}

type TelegramConfig struct {
	// An empty token disables the admin bot and operator alerts.
	BotToken string        `env:"BOT_TOKEN"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
	AdminIDs []int64       `env:"ADMIN_IDS"`
	Language string        `env:"LANGUAGE,default=en"`
	// Messages per second shared by all outgoing sends.
	RateLimit float64 `env:"RATE_LIMIT,default=30"`
}

type IntegrityConfig struct {
	Enabled  bool   `env:"ENABLED,default=true"`
	Schedule string `env:"SCHEDULE,default=*/15 * * * *"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

type SQLiteConfig struct {
	Path         string        `env:"PATH,default=./data/cutoffs.db"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS,default=25"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS,default=5"`
	MaxLifetime  time.Duration `env:"MAX_LIFETIME,default=5m"`
	BusyTimeout  time.Duration `env:"BUSY_TIMEOUT,default=5s"`
}
