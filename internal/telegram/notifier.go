package telegram

import (
	"context"
	"log/slog"
)

type messageSender interface {
	SendMessage(chatID int64, text string) error
}

// AdminNotifier fans operator alerts out to every admin chat.
type AdminNotifier struct {
	sender   messageSender
	adminIDs []int64
	logger   *slog.Logger
}

func NewAdminNotifier(sender messageSender, adminIDs []int64, logger *slog.Logger) *AdminNotifier {
	return &AdminNotifier{
		sender:   sender,
		adminIDs: adminIDs,
		logger:   logger,
	}
}

func (n *AdminNotifier) NotifyAdmins(ctx context.Context, text string) {
	if len(n.adminIDs) == 0 {
		n.logger.Warn("No admins configured for operator alert", "text", text)
		return
	}

	for _, id := range n.adminIDs {
		if ctx.Err() != nil {
			n.logger.Warn("Operator alert cancelled", "error", ctx.Err())
			return
		}
		if err := n.sender.SendMessage(id, text); err != nil {
			n.logger.Error("Failed to notify admin", "admin_id", id, "error", err)
		}
	}
}

// LogNotifier is used when no bot token is configured; alerts only reach the log.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyAdmins(_ context.Context, text string) {
	n.logger.Warn("Operator alert", "text", text)
}
