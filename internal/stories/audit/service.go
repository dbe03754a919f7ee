package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrWriteFailed = errors.New("audit log write failed")

// Service records admin actions.
type Service struct {
	storage Storage
	now     func() time.Time
	logger  *slog.Logger
}

func NewService(storage Storage, now func() time.Time, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		now:     now,
		logger:  logger,
	}
}

// Record appends one entry for actor. A zero correlationID gets a fresh one.
func (s *Service) Record(ctx context.Context, correlationID uuid.UUID, actor Actor, kind ActionKind, details string) (*Entry, error) {
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}

	entry := Entry{
		CorrelationID:   correlationID,
		ActorID:         actor.ID,
		ActorType:       actor.Type,
		ActionKind:      kind,
		Details:         details,
		ClientIP:        actor.ClientIP,
		ClientUserAgent: actor.UserAgent,
		CreatedAt:       s.now(),
	}

	created, err := s.storage.CreateAuditLog(ctx, entry)
	if err != nil {
		s.logger.Error("Failed to write audit log",
			"correlation_id", correlationID,
			"actor_id", actor.ID,
			"action", kind,
			"error", err)
		return nil, &writeError{cause: err}
	}

	return created, nil
}

type writeError struct {
	cause error
}

func (e *writeError) Error() string {
	return ErrWriteFailed.Error() + ": " + e.cause.Error()
}

func (e *writeError) Unwrap() error { return e.cause }

func (e *writeError) Is(target error) bool { return target == ErrWriteFailed }
