package cutoffs

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the membership quality tier a cut-off rule applies to.
type Tier string

const (
	Tier1 Tier = "Tier 1"
	Tier2 Tier = "Tier 2"
	Tier3 Tier = "Tier 3"
)

// KnownTiers lists tiers in display order.
var KnownTiers = []Tier{Tier1, Tier2, Tier3}

// Rank orders tiers for listing. Unlisted tiers share the lowest priority.
func (t Tier) Rank() int {
	if i := slices.Index(KnownTiers, t); i >= 0 {
		return i + 1
	}
	return len(KnownTiers) + 1
}

func (t Tier) IsKnown() bool {
	return slices.Contains(KnownTiers, t)
}

// ParseTier accepts "Tier 1", "tier_1", "tier1" and "1". Anything else is kept verbatim.
func ParseTier(s string) Tier {
	s = strings.TrimSpace(s)
	key := normalizeLabel(s)
	for _, t := range KnownTiers {
		if key == normalizeLabel(string(t)) || key == strings.TrimPrefix(normalizeLabel(string(t)), "tier") {
			return t
		}
	}
	return Tier(s)
}

// Duration is the membership billing period.
type Duration string

const (
	DurationDaily      Duration = "Daily"
	DurationWeekly     Duration = "Weekly"
	DurationMonthly    Duration = "Monthly"
	DurationQuarterly  Duration = "Quarterly"
	DurationHalfYearly Duration = "Half-Yearly"
	DurationYearly     Duration = "Yearly"
)

// KnownDurations lists durations in display order.
var KnownDurations = []Duration{
	DurationDaily,
	DurationWeekly,
	DurationMonthly,
	DurationQuarterly,
	DurationHalfYearly,
	DurationYearly,
}

// Rank orders durations for listing. Unlisted durations sort last.
func (d Duration) Rank() int {
	if i := slices.Index(KnownDurations, d); i >= 0 {
		return i + 1
	}
	return len(KnownDurations) + 1
}

func (d Duration) IsKnown() bool {
	return slices.Contains(KnownDurations, d)
}

// ParseDuration accepts any casing and "half_yearly" / "halfyearly" spellings.
func ParseDuration(s string) Duration {
	s = strings.TrimSpace(s)
	key := normalizeLabel(s)
	for _, d := range KnownDurations {
		if key == normalizeLabel(string(d)) {
			return d
		}
	}
	return Duration(s)
}

func normalizeLabel(s string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
}

// TierRule splits a tier+duration membership between platform and gym owner.
type TierRule struct {
	ID              int64
	Tier            Tier
	Duration        Duration
	AdminCutPercent float64
	OwnerCutPercent float64
	UpdatedAt       time.Time
}

// CompareTierRules orders by tier rank, then duration rank, then labels.
func CompareTierRules(a, b *TierRule) int {
	return cmp.Or(
		cmp.Compare(a.Tier.Rank(), b.Tier.Rank()),
		cmp.Compare(a.Duration.Rank(), b.Duration.Rank()),
		cmp.Compare(a.Tier, b.Tier),
		cmp.Compare(a.Duration, b.Duration),
	)
}

// SortTierRules sorts rules in place in listing order.
func SortTierRules(rules []*TierRule) {
	slices.SortStableFunc(rules, CompareTierRules)
}

// FeeRule splits a membership by its price. Bounds are inclusive.
type FeeRule struct {
	ID              int64
	PriceRangeStart float64
	PriceRangeEnd   float64
	AdminCutPercent float64
	GymCutPercent   float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (r *FeeRule) Contains(price float64) bool {
	return r.PriceRangeStart <= price && price <= r.PriceRangeEnd
}

// Overlaps reports whether [start, end] intersects the rule's range.
// Ranges sharing an endpoint overlap.
func (r *FeeRule) Overlaps(start, end float64) bool {
	return RangesOverlap(r.PriceRangeStart, r.PriceRangeEnd, start, end)
}

// RangesOverlap is the closed interval test: [a,b] and [c,d] overlap iff a<=d and c<=b.
func RangesOverlap(a, b, c, d float64) bool {
	return a <= d && c <= b
}

// SplitPercentages is the resolved share of a payment.
// Counterparty is the gym owner for tier rules and the gym for fee rules.
type SplitPercentages struct {
	PlatformPercent     float64
	CounterpartyPercent float64
}

// Apportion splits amount by the percentages. The platform share is rounded
// to cents and the counterparty receives the remainder, so both add up to amount.
func (s SplitPercentages) Apportion(amount decimal.Decimal) (platform, counterparty decimal.Decimal) {
	platform = amount.
		Mul(decimal.NewFromFloat(s.PlatformPercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)
	return platform, amount.Sub(platform)
}

// TierEdit is the proposed new split for a (tier, duration) pair.
type TierEdit struct {
	Tier            Tier
	Duration        Duration
	AdminCutPercent float64
	OwnerCutPercent float64
}

// FeeEdit is the proposed state of a fee rule. ID is ignored on create.
type FeeEdit struct {
	ID              int64
	PriceRangeStart float64
	PriceRangeEnd   float64
	AdminCutPercent float64
	GymCutPercent   float64
}

// ViolationKind names a stored-data invariant breach found by CheckIntegrity.
type ViolationKind string

const (
	ViolationTierPercentageSum ViolationKind = "tier_percentage_sum"
	ViolationFeePercentageSum  ViolationKind = "fee_percentage_sum"
	ViolationFeeRangeOrder     ViolationKind = "fee_range_order"
	ViolationFeeRangeOverlap   ViolationKind = "fee_range_overlap"
)

type Violation struct {
	Kind     ViolationKind
	TierRule *TierRule
	FeeRule  *FeeRule
	// Other is the second rule of an overlapping pair.
	Other *FeeRule
}
