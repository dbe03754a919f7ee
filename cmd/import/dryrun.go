package main

import (
	"context"

	"gym-cutoff/internal/stories/audit"
	"gym-cutoff/internal/stories/cutoffs"
)

type feeRuleFinder interface {
	FindOverlappingFeeRules(ctx context.Context, excludeID int64, start, end float64) ([]*cutoffs.FeeRule, error)
}

// dryRun validates rows against stored rules and against rows accepted
// earlier in the same file, without writing anything.
type dryRun struct {
	stored  feeRuleFinder
	pending []*cutoffs.FeeRule
}

func newDryRun(stored feeRuleFinder) *dryRun {
	return &dryRun{stored: stored}
}

func (d *dryRun) CreateFeeRule(ctx context.Context, _ audit.Actor, edit cutoffs.FeeEdit) (*cutoffs.FeeRule, error) {
	err := cutoffs.NewValidator(d).ValidateFeeEdit(ctx, 0,
		edit.PriceRangeStart, edit.PriceRangeEnd, edit.AdminCutPercent, edit.GymCutPercent)
	if err != nil {
		return nil, err
	}

	rule := &cutoffs.FeeRule{
		// Negative ids mark rules that only exist in this run.
		ID:              -int64(len(d.pending) + 1),
		PriceRangeStart: edit.PriceRangeStart,
		PriceRangeEnd:   edit.PriceRangeEnd,
		AdminCutPercent: edit.AdminCutPercent,
		GymCutPercent:   edit.GymCutPercent,
	}
	d.pending = append(d.pending, rule)
	return rule, nil
}

func (d *dryRun) FindOverlappingFeeRules(ctx context.Context, excludeID int64, start, end float64) ([]*cutoffs.FeeRule, error) {
	found, err := d.stored.FindOverlappingFeeRules(ctx, excludeID, start, end)
	if err != nil {
		return nil, err
	}
	for _, r := range d.pending {
		if r.ID != excludeID && r.Overlaps(start, end) {
			found = append(found, r)
		}
	}
	return found, nil
}
