package cutoffs

import (
	"slices"
)

// CheckIntegrity re-applies the edit invariants to stored rules. It is used
// by the periodic integrity worker to spot rows that bypassed validation.
func CheckIntegrity(tierRules []*TierRule, feeRules []*FeeRule) []Violation {
	var violations []Violation

	for _, r := range tierRules {
		if checkPercentages(r.AdminCutPercent, r.OwnerCutPercent) != nil {
			violations = append(violations, Violation{Kind: ViolationTierPercentageSum, TierRule: r})
		}
	}

	sorted := slices.Clone(feeRules)
	slices.SortStableFunc(sorted, func(a, b *FeeRule) int {
		switch {
		case a.PriceRangeStart < b.PriceRangeStart:
			return -1
		case a.PriceRangeStart > b.PriceRangeStart:
			return 1
		}
		return 0
	})

	for i, r := range sorted {
		if checkPercentages(r.AdminCutPercent, r.GymCutPercent) != nil {
			violations = append(violations, Violation{Kind: ViolationFeePercentageSum, FeeRule: r})
		}
		if !(r.PriceRangeStart < r.PriceRangeEnd) {
			violations = append(violations, Violation{Kind: ViolationFeeRangeOrder, FeeRule: r})
		}
		for _, other := range sorted[i+1:] {
			if r.Overlaps(other.PriceRangeStart, other.PriceRangeEnd) {
				violations = append(violations, Violation{Kind: ViolationFeeRangeOverlap, FeeRule: r, Other: other})
			}
		}
	}

	return violations
}
