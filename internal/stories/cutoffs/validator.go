package cutoffs

import (
	"context"
	"fmt"
	"math"
)

// percentTolerance is the accepted drift of a split from exactly 100.
const percentTolerance = 0.01

// Validator checks proposed edits before they are persisted.
type Validator struct {
	rules overlapFinder
}

func NewValidator(rules overlapFinder) *Validator {
	return &Validator{rules: rules}
}

// ValidateTierEdit rejects splits that do not add up to 100.
func (v *Validator) ValidateTierEdit(adminCutPercent, ownerCutPercent float64) error {
	return checkPercentages(adminCutPercent, ownerCutPercent)
}

// ValidateFeeEdit checks the percentage sum, then range order, then overlap
// with every other fee rule, stopping at the first failure.
func (v *Validator) ValidateFeeEdit(
	ctx context.Context,
	excludeID int64,
	priceRangeStart, priceRangeEnd float64,
	adminCutPercent, gymCutPercent float64,
) error {
	if err := checkPercentages(adminCutPercent, gymCutPercent); err != nil {
		return err
	}

	if !(priceRangeStart < priceRangeEnd) {
		return &ValidationError{
			Kind:            KindInvalidRange,
			PriceRangeStart: priceRangeStart,
			PriceRangeEnd:   priceRangeEnd,
		}
	}

	conflicts, err := v.rules.FindOverlappingFeeRules(ctx, excludeID, priceRangeStart, priceRangeEnd)
	if err != nil {
		return fmt.Errorf("find overlapping fee rules: %w", err)
	}
	if len(conflicts) > 0 {
		return &ValidationError{
			Kind:            KindOverlappingRange,
			PriceRangeStart: priceRangeStart,
			PriceRangeEnd:   priceRangeEnd,
			Conflicts:       conflicts,
		}
	}

	return nil
}

func checkPercentages(admin, counterparty float64) error {
	if !finite(admin) || !finite(counterparty) || !sumsToHundred(admin, counterparty) {
		return &ValidationError{
			Kind:                KindPercentageSumInvalid,
			AdminPercent:        admin,
			CounterpartyPercent: counterparty,
		}
	}
	return nil
}

func finite(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0)
}

func sumsToHundred(a, b float64) bool {
	return math.Abs(a+b-100) <= percentTolerance
}
