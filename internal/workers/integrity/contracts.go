package integrity

import (
	"context"

	"gym-cutoff/internal/stories/cutoffs"
)

type (
	Storage interface {
		ListTierRules(ctx context.Context) ([]*cutoffs.TierRule, error)
		ListFeeRules(ctx context.Context) ([]*cutoffs.FeeRule, error)
	}

	Notifier interface {
		NotifyAdmins(ctx context.Context, text string)
	}
)
