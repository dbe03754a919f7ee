package cutoffs

import (
	"context"

	"github.com/google/uuid"

	"gym-cutoff/internal/stories/audit"
)

type (
	// Storage provides access to the tier and fee cut-off tables.
	// Getters return nil, nil when the row does not exist.
	Storage interface {
		GetTierRule(ctx context.Context, tier Tier, duration Duration) (*TierRule, error)
		GetFeeRule(ctx context.Context, id int64) (*FeeRule, error)
		ListTierRules(ctx context.Context) ([]*TierRule, error)
		ListFeeRules(ctx context.Context) ([]*FeeRule, error)
		UpdateTierRule(ctx context.Context, tier Tier, duration Duration, adminCutPercent, ownerCutPercent float64) (int64, error)
		UpdateFeeRule(ctx context.Context, rule FeeRule) (int64, error)
		CreateFeeRule(ctx context.Context, rule FeeRule) (*FeeRule, error)
		FindOverlappingFeeRules(ctx context.Context, excludeID int64, priceRangeStart, priceRangeEnd float64) ([]*FeeRule, error)
	}

	// TxStorage runs fn against a store bound to one write transaction.
	TxStorage interface {
		Storage
		InFeeRulesTx(ctx context.Context, fn func(tx Storage) error) error
	}

	AuditRecorder interface {
		Record(ctx context.Context, correlationID uuid.UUID, actor audit.Actor, kind audit.ActionKind, details string) (*audit.Entry, error)
	}

	// Notifier reaches the operators when an audit entry goes missing.
	Notifier interface {
		NotifyAdmins(ctx context.Context, text string)
	}

	overlapFinder interface {
		FindOverlappingFeeRules(ctx context.Context, excludeID int64, priceRangeStart, priceRangeEnd float64) ([]*FeeRule, error)
	}

	ruleReader interface {
		overlapFinder
		GetTierRule(ctx context.Context, tier Tier, duration Duration) (*TierRule, error)
	}
)
