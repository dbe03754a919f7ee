package audit

import (
	"time"

	"github.com/google/uuid"
)

type ActorType string

const (
	ActorAdmin  ActorType = "admin"
	ActorOwner  ActorType = "owner"
	ActorMember ActorType = "member"
)

// ActionKind tags what an entry records.
type ActionKind string

const (
	ActionUpdateTierCutoff ActionKind = "update_tier_cutoff"
	ActionUpdateFeeCutoff  ActionKind = "update_fee_cutoff"
	ActionCreateFeeCutoff  ActionKind = "create_fee_cutoff"
)

// Actor identifies who performed a mutation and from where.
type Actor struct {
	ID        int64
	Type      ActorType
	ClientIP  string
	UserAgent string
}

type Entry struct {
	ID              int64
	CorrelationID   uuid.UUID
	ActorID         int64
	ActorType       ActorType
	ActionKind      ActionKind
	Details         string
	ClientIP        string
	ClientUserAgent string
	CreatedAt       time.Time
}
