package audit

import "context"

type (
	// Storage appends audit rows. It never updates or deletes them.
	Storage interface {
		CreateAuditLog(ctx context.Context, entry Entry) (*Entry, error)
	}
)
