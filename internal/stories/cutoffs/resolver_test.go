package cutoffs

import (
	"context"
	"errors"
	"testing"
)

func seededStorage() *memStorage {
	return newMemStorage(
		[]TierRule{
			{ID: 1, Tier: Tier1, Duration: DurationMonthly, AdminCutPercent: 70, OwnerCutPercent: 30},
			{ID: 2, Tier: Tier2, Duration: DurationYearly, AdminCutPercent: 75, OwnerCutPercent: 25},
		},
		[]FeeRule{
			{ID: 1, PriceRangeStart: 0, PriceRangeEnd: 500, AdminCutPercent: 70, GymCutPercent: 30},
			{ID: 2, PriceRangeStart: 501, PriceRangeEnd: 1000, AdminCutPercent: 65, GymCutPercent: 35},
		},
	)
}

func TestResolveByTier(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seededStorage(), discardLogger())

	got, err := r.ResolveByTier(ctx, Tier2, DurationYearly)
	if err != nil {
		t.Fatalf("ResolveByTier() error = %v", err)
	}
	want := SplitPercentages{PlatformPercent: 75, CounterpartyPercent: 25}
	if got != want {
		t.Errorf("ResolveByTier() = %+v, want %+v", got, want)
	}

	_, err = r.ResolveByTier(ctx, Tier3, DurationDaily)
	if !errors.Is(err, ErrRuleNotFound) {
		t.Fatalf("expected ErrRuleNotFound, got %v", err)
	}
}

func TestResolveByPrice(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(seededStorage(), discardLogger())

	tests := []struct {
		name     string
		price    float64
		want     SplitPercentages
		notFound bool
	}{
		{name: "price inside second range", price: 750, want: SplitPercentages{PlatformPercent: 65, CounterpartyPercent: 35}},
		{name: "lower bound inclusive", price: 0, want: SplitPercentages{PlatformPercent: 70, CounterpartyPercent: 30}},
		{name: "upper bound inclusive", price: 500, want: SplitPercentages{PlatformPercent: 70, CounterpartyPercent: 30}},
		{name: "next range start", price: 501, want: SplitPercentages{PlatformPercent: 65, CounterpartyPercent: 35}},
		{name: "gap between ranges", price: 500.5, notFound: true},
		{name: "price above every range", price: 5000, notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.ResolveByPrice(ctx, tt.price)
			if tt.notFound {
				if !errors.Is(err, ErrRuleNotFound) {
					t.Fatalf("expected ErrRuleNotFound, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveByPrice(%v) error = %v", tt.price, err)
			}
			if got != tt.want {
				t.Errorf("ResolveByPrice(%v) = %+v, want %+v", tt.price, got, tt.want)
			}
		})
	}
}

func TestResolveByPrice_PicksLowestRangeWhenDataOverlaps(t *testing.T) {
	store := newMemStorage(nil, []FeeRule{
		{ID: 7, PriceRangeStart: 400, PriceRangeEnd: 900, AdminCutPercent: 50, GymCutPercent: 50},
		{ID: 3, PriceRangeStart: 0, PriceRangeEnd: 600, AdminCutPercent: 70, GymCutPercent: 30},
	})

	got, err := NewResolver(store, discardLogger()).ResolveByPrice(context.Background(), 500)
	if err != nil {
		t.Fatalf("ResolveByPrice() error = %v", err)
	}
	if got.PlatformPercent != 70 {
		t.Errorf("expected the rule starting at 0, got %+v", got)
	}
}

type brokenReader struct{}

func (brokenReader) FindOverlappingFeeRules(context.Context, int64, float64, float64) ([]*FeeRule, error) {
	return nil, errBoom
}

func (brokenReader) GetTierRule(context.Context, Tier, Duration) (*TierRule, error) {
	return nil, errBoom
}

func TestResolver_StorageErrors(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(brokenReader{}, discardLogger())

	if _, err := r.ResolveByTier(ctx, Tier1, DurationMonthly); !errors.Is(err, errBoom) || errors.Is(err, ErrRuleNotFound) {
		t.Errorf("ResolveByTier() error = %v", err)
	}
	if _, err := r.ResolveByPrice(ctx, 10); !errors.Is(err, errBoom) || errors.Is(err, ErrRuleNotFound) {
		t.Errorf("ResolveByPrice() error = %v", err)
	}
}
