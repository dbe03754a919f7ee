package environment

import (
	"context"
	"log/slog"
	"time"

	"gym-cutoff/internal/config"
	"gym-cutoff/internal/infra/sqlite3"
	"gym-cutoff/internal/localization"
	"gym-cutoff/internal/storage"
	"gym-cutoff/internal/stories/audit"
	"gym-cutoff/internal/stories/cutoffs"
	"gym-cutoff/internal/telegram"
	"gym-cutoff/internal/telegram/cmds"
	"gym-cutoff/internal/workers"
	"gym-cutoff/internal/workers/integrity"

	"github.com/pkg/errors"
)

type Services struct {
	Cutoffs  *cutoffs.Service
	Resolver *cutoffs.Resolver
	Audit    *audit.Service

	// Nil when the admin bot is disabled.
	TelegramRouter *telegram.Router
	Workers        *workers.Manager
}

type notifier interface {
	NotifyAdmins(ctx context.Context, text string)
}

func newServices(_ context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	storageImpl := storage.New(clients.SQLiteDB.DB)

	var alerts notifier = telegram.NewLogNotifier(logger)
	if clients.TelegramBot != nil {
		alerts = telegram.NewAdminNotifier(clients.TelegramBot, cfg.Telegram.AdminIDs, logger)
	}

	s.Audit = audit.NewService(storageImpl, time.Now, logger.With("story", "audit"))
	s.Cutoffs = cutoffs.NewService(storageImpl, s.Audit, alerts, logger.With("story", "cutoffs"))
	s.Resolver = cutoffs.NewResolver(storageImpl, logger.With("story", "resolver"))

	if clients.TelegramBot != nil {
		localizer, err := localization.NewService()
		if err != nil {
			return nil, errors.Wrap(err, "load localization")
		}

		cutoffsCommand := cmds.NewCutoffsCommand(
			clients.TelegramBot,
			s.Cutoffs,
			s.Resolver,
			localizer,
			cfg.Telegram.Language,
			logger.With("command", "cutoffs"),
		)

		s.TelegramRouter = telegram.NewRouter(
			clients.TelegramBot,
			telegram.NewAdminChecker(cfg.Telegram.AdminIDs),
			localizer,
			cfg.Telegram.Language,
			cutoffsCommand,
		)
	}

	var jobs []workers.Worker
	if cfg.Integrity.Enabled {
		jobs = append(jobs, integrity.NewWorker(
			storageImpl,
			alerts,
			cfg.Integrity.Schedule,
			logger.With("worker", "integrity"),
		))
	}
	s.Workers = workers.NewManager(logger, jobs...)

	return &s, nil
}

// NewCutoffsService wires the edit pipeline for out-of-band tools that run
// without the bot. Alerts go to the log.
func NewCutoffsService(db *sqlite3.DB, logger *slog.Logger) *cutoffs.Service {
	storageImpl := storage.New(db.DB)
	auditService := audit.NewService(storageImpl, time.Now, logger.With("story", "audit"))
	return cutoffs.NewService(storageImpl, auditService, telegram.NewLogNotifier(logger), logger.With("story", "cutoffs"))
}
