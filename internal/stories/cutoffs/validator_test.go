package cutoffs

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestValidateTierEdit(t *testing.T) {
	v := NewValidator(newMemStorage(nil, nil))

	tests := []struct {
		name    string
		admin   float64
		owner   float64
		wantErr bool
	}{
		{name: "exact", admin: 80, owner: 20},
		{name: "all to platform", admin: 100, owner: 0},
		{name: "within tolerance below", admin: 70, owner: 29.995},
		{name: "within tolerance above", admin: 70.005, owner: 30},
		{name: "tolerance boundary in float64", admin: 70.01, owner: 30, wantErr: true},
		{name: "beyond tolerance", admin: 70.02, owner: 30, wantErr: true},
		{name: "sum of 110", admin: 80, owner: 30, wantErr: true},
		{name: "only the sum is checked", admin: 110, owner: -10},
		{name: "NaN", admin: math.NaN(), owner: 30, wantErr: true},
		{name: "infinity", admin: math.Inf(1), owner: 30, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateTierEdit(tt.admin, tt.owner)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTierEdit(%v, %v) error = %v, wantErr %v", tt.admin, tt.owner, err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrPercentageSumInvalid) {
				t.Errorf("expected ErrPercentageSumInvalid, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Kind != KindPercentageSumInvalid {
				t.Fatalf("expected *ValidationError of kind %s, got %#v", KindPercentageSumInvalid, err)
			}
		})
	}
}

func TestValidateFeeEdit(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage(nil, []FeeRule{
		{ID: 1, PriceRangeStart: 0, PriceRangeEnd: 500, AdminCutPercent: 70, GymCutPercent: 30},
		{ID: 2, PriceRangeStart: 800, PriceRangeEnd: 1200, AdminCutPercent: 65, GymCutPercent: 35},
	})
	v := NewValidator(store)

	tests := []struct {
		name          string
		excludeID     int64
		start, end    float64
		admin, gym    float64
		wantKind      ErrorKind
		wantConflicts []int64
	}{
		{name: "fits in the gap", start: 501, end: 799, admin: 60, gym: 40},
		{name: "editing rule keeps its own range", excludeID: 2, start: 800, end: 1300, admin: 60, gym: 40},
		{name: "start equals end", start: 600, end: 600, admin: 60, gym: 40, wantKind: KindInvalidRange},
		{name: "start above end", start: 700, end: 600, admin: 60, gym: 40, wantKind: KindInvalidRange},
		{name: "overlaps two rules", start: 500, end: 1000, admin: 60, gym: 40, wantKind: KindOverlappingRange, wantConflicts: []int64{1, 2}},
		{name: "touching endpoint overlaps", start: 1200, end: 1500, admin: 60, gym: 40, wantKind: KindOverlappingRange, wantConflicts: []int64{2}},
		{name: "sum checked before range", start: 700, end: 600, admin: 60, gym: 60, wantKind: KindPercentageSumInvalid},
		{name: "range checked before overlap", start: 1000, end: 500, admin: 60, gym: 40, wantKind: KindInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFeeEdit(ctx, tt.excludeID, tt.start, tt.end, tt.admin, tt.gym)
			if tt.wantKind == "" {
				if err != nil {
					t.Fatalf("ValidateFeeEdit() unexpected error: %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", verr.Kind, tt.wantKind)
			}

			var ids []int64
			for _, c := range verr.Conflicts {
				ids = append(ids, c.ID)
			}
			if len(ids) != len(tt.wantConflicts) {
				t.Fatalf("conflicts = %v, want %v", ids, tt.wantConflicts)
			}
			for i := range ids {
				if ids[i] != tt.wantConflicts[i] {
					t.Errorf("conflicts = %v, want %v", ids, tt.wantConflicts)
				}
			}
		})
	}
}

type failingFinder struct{}

func (failingFinder) FindOverlappingFeeRules(context.Context, int64, float64, float64) ([]*FeeRule, error) {
	return nil, errBoom
}

func TestValidateFeeEdit_LookupError(t *testing.T) {
	err := NewValidator(failingFinder{}).ValidateFeeEdit(context.Background(), 0, 0, 100, 50, 50)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected lookup error to be wrapped, got %v", err)
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("lookup failures must not look like validation errors: %v", err)
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Kind:            KindOverlappingRange,
		PriceRangeStart: 500,
		PriceRangeEnd:   1000,
		Conflicts:       []*FeeRule{{ID: 1, PriceRangeStart: 800, PriceRangeEnd: 1200}},
	}
	want := "price range overlaps an existing rule: [500, 1000] conflicts with #1 [800, 1200]"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, ErrOverlappingRange) || errors.Is(err, ErrInvalidRange) {
		t.Errorf("errors.Is mismatch for %v", err)
	}
}

func TestValidateFeeEdit_Repeatable(t *testing.T) {
	ctx := context.Background()
	store := newMemStorage(nil, []FeeRule{
		{ID: 1, PriceRangeStart: 0, PriceRangeEnd: 500, AdminCutPercent: 70, GymCutPercent: 30},
		{ID: 2, PriceRangeStart: 800, PriceRangeEnd: 1200, AdminCutPercent: 65, GymCutPercent: 35},
	})
	v := NewValidator(store)

	tests := []struct {
		name       string
		start, end float64
		admin, gym float64
	}{
		{name: "accepted", start: 501, end: 799, admin: 60, gym: 40},
		{name: "overlap", start: 400, end: 900, admin: 60, gym: 40},
		{name: "bad sum", start: 501, end: 799, admin: 60, gym: 60},
		{name: "inverted range", start: 799, end: 501, admin: 60, gym: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := v.ValidateFeeEdit(ctx, 0, tt.start, tt.end, tt.admin, tt.gym)
			second := v.ValidateFeeEdit(ctx, 0, tt.start, tt.end, tt.admin, tt.gym)

			if (first == nil) != (second == nil) {
				t.Fatalf("results differ: %v then %v", first, second)
			}
			if first == nil {
				return
			}

			var a, b *ValidationError
			if !errors.As(first, &a) || !errors.As(second, &b) {
				t.Fatalf("expected validation errors, got %v and %v", first, second)
			}
			if a.Kind != b.Kind {
				t.Errorf("kinds differ: %s then %s", a.Kind, b.Kind)
			}
			if len(a.Conflicts) != len(b.Conflicts) {
				t.Fatalf("conflicts differ: %d then %d", len(a.Conflicts), len(b.Conflicts))
			}
			for i := range a.Conflicts {
				if a.Conflicts[i].ID != b.Conflicts[i].ID {
					t.Errorf("conflict[%d] = #%d then #%d", i, a.Conflicts[i].ID, b.Conflicts[i].ID)
				}
			}
		})
	}

	if store.updates != 0 {
		t.Errorf("validation wrote to the store")
	}
}
