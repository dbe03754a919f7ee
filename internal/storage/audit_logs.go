package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gym-cutoff/internal/stories/audit"
)

const auditLogsTable = "audit_logs"

var auditLogRowFields = fields(auditLogRow{})

type auditLogRow struct {
	ID              int64     `db:"id"`
	CorrelationID   string    `db:"correlation_id"`
	ActorID         int64     `db:"actor_id"`
	ActorType       string    `db:"actor_type"`
	ActionKind      string    `db:"action_kind"`
	Details         string    `db:"details"`
	ClientIP        string    `db:"client_ip"`
	ClientUserAgent string    `db:"client_user_agent"`
	CreatedAt       time.Time `db:"created_at"`
}

func (a auditLogRow) ToModel() *audit.Entry {
	correlationID, _ := uuid.Parse(a.CorrelationID)
	return &audit.Entry{
		ID:              a.ID,
		CorrelationID:   correlationID,
		ActorID:         a.ActorID,
		ActorType:       audit.ActorType(a.ActorType),
		ActionKind:      audit.ActionKind(a.ActionKind),
		Details:         a.Details,
		ClientIP:        a.ClientIP,
		ClientUserAgent: a.ClientUserAgent,
		CreatedAt:       a.CreatedAt,
	}
}

// CreateAuditLog appends an entry. audit_logs rejects UPDATE and DELETE at the schema level.
func (s *storageImpl) CreateAuditLog(ctx context.Context, entry audit.Entry) (*audit.Entry, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	params := map[string]interface{}{
		"correlation_id":    entry.CorrelationID.String(),
		"actor_id":          entry.ActorID,
		"actor_type":        string(entry.ActorType),
		"action_kind":       string(entry.ActionKind),
		"details":           entry.Details,
		"client_ip":         entry.ClientIP,
		"client_user_agent": entry.ClientUserAgent,
		"created_at":        createdAt,
	}

	q, args, err := s.stmpBuilder().
		Insert(auditLogsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	created := entry
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}
