package cutoffs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"gym-cutoff/internal/stories/audit"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStorage is an in-memory TxStorage. InFeeRulesTx works on a copy and
// keeps it only when fn succeeds.
type memStorage struct {
	mu        sync.Mutex
	tierRules []TierRule
	feeRules  []FeeRule
	nextID    int64

	listErr   error
	createErr error
	updates   int
}

func newMemStorage(tierRules []TierRule, feeRules []FeeRule) *memStorage {
	s := &memStorage{tierRules: tierRules, feeRules: feeRules}
	for _, r := range feeRules {
		s.nextID = max(s.nextID, r.ID)
	}
	return s
}

func (s *memStorage) GetTierRule(_ context.Context, tier Tier, duration Duration) (*TierRule, error) {
	for _, r := range s.tierRules {
		if r.Tier == tier && r.Duration == duration {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStorage) GetFeeRule(_ context.Context, id int64) (*FeeRule, error) {
	for _, r := range s.feeRules {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

func (s *memStorage) ListTierRules(context.Context) ([]*TierRule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*TierRule, 0, len(s.tierRules))
	for _, r := range s.tierRules {
		out = append(out, &r)
	}
	return out, nil
}

func (s *memStorage) ListFeeRules(context.Context) ([]*FeeRule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*FeeRule, 0, len(s.feeRules))
	for _, r := range s.feeRules {
		out = append(out, &r)
	}
	return out, nil
}

func (s *memStorage) UpdateTierRule(_ context.Context, tier Tier, duration Duration, admin, owner float64) (int64, error) {
	for i, r := range s.tierRules {
		if r.Tier == tier && r.Duration == duration {
			s.tierRules[i].AdminCutPercent = admin
			s.tierRules[i].OwnerCutPercent = owner
			s.updates++
			return 1, nil
		}
	}
	return 0, nil
}

func (s *memStorage) UpdateFeeRule(_ context.Context, rule FeeRule) (int64, error) {
	for i, r := range s.feeRules {
		if r.ID == rule.ID {
			rule.CreatedAt = r.CreatedAt
			s.feeRules[i] = rule
			s.updates++
			return 1, nil
		}
	}
	return 0, nil
}

func (s *memStorage) CreateFeeRule(_ context.Context, rule FeeRule) (*FeeRule, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	rule.ID = s.nextID
	s.feeRules = append(s.feeRules, rule)
	s.updates++
	return &rule, nil
}

func (s *memStorage) FindOverlappingFeeRules(_ context.Context, excludeID int64, start, end float64) ([]*FeeRule, error) {
	var out []*FeeRule
	for _, r := range s.feeRules {
		if r.ID != excludeID && r.Overlaps(start, end) {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (s *memStorage) InFeeRulesTx(_ context.Context, fn func(tx Storage) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memStorage{
		tierRules: slices.Clone(s.tierRules),
		feeRules:  slices.Clone(s.feeRules),
		nextID:    s.nextID,
		createErr: s.createErr,
	}
	if err := fn(tx); err != nil {
		return err
	}
	s.tierRules, s.feeRules, s.nextID = tx.tierRules, tx.feeRules, tx.nextID
	s.updates += tx.updates
	return nil
}

type recordedAudit struct {
	correlationID uuid.UUID
	actor         audit.Actor
	kind          audit.ActionKind
	details       string
}

type fakeAudit struct {
	entries []recordedAudit
	err     error
}

func (f *fakeAudit) Record(_ context.Context, id uuid.UUID, actor audit.Actor, kind audit.ActionKind, details string) (*audit.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.entries = append(f.entries, recordedAudit{correlationID: id, actor: actor, kind: kind, details: details})
	return &audit.Entry{ID: int64(len(f.entries)), CorrelationID: id, ActionKind: kind, Details: details}, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) NotifyAdmins(_ context.Context, text string) {
	f.messages = append(f.messages, text)
}

var errBoom = errors.New("boom")
