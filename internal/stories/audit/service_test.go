package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	entries []Entry
	err     error
}

func (f *fakeStorage) CreateAuditLog(_ context.Context, entry Entry) (*Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return &entry, nil
}

func newTestService(storage Storage) *Service {
	now := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return NewService(storage, now, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRecord(t *testing.T) {
	storage := &fakeStorage{}
	svc := newTestService(storage)
	correlationID := uuid.New()
	actor := Actor{ID: 7, Type: ActorAdmin, ClientIP: "10.0.0.1", UserAgent: "telegram"}

	entry, err := svc.Record(context.Background(), correlationID, actor, ActionUpdateTierCutoff, "Tier 1 / Monthly: admin 70 -> 80, owner 30 -> 20")
	require.NoError(t, err)

	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, correlationID, entry.CorrelationID)
	assert.Equal(t, int64(7), entry.ActorID)
	assert.Equal(t, ActorAdmin, entry.ActorType)
	assert.Equal(t, ActionUpdateTierCutoff, entry.ActionKind)
	assert.Equal(t, "10.0.0.1", entry.ClientIP)
	assert.Equal(t, "telegram", entry.ClientUserAgent)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), entry.CreatedAt)
	assert.Len(t, storage.entries, 1)
}

func TestRecord_AssignsCorrelationID(t *testing.T) {
	svc := newTestService(&fakeStorage{})

	entry, err := svc.Record(context.Background(), uuid.Nil, Actor{ID: 1, Type: ActorAdmin}, ActionCreateFeeCutoff, "created")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, entry.CorrelationID)
}

func TestRecord_WriteFailure(t *testing.T) {
	cause := errors.New("database is locked")
	svc := newTestService(&fakeStorage{err: cause})

	entry, err := svc.Record(context.Background(), uuid.New(), Actor{ID: 1, Type: ActorAdmin}, ActionUpdateFeeCutoff, "x")

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "audit log write failed: database is locked")
}
