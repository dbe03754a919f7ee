package cutoffs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPercentageSumInvalid = errors.New("percentages must sum to 100")
	ErrInvalidRange         = errors.New("price range start must be below end")
	ErrOverlappingRange     = errors.New("price range overlaps an existing rule")
	ErrRuleNotFound         = errors.New("cut-off rule not found")
)

type ErrorKind string

const (
	KindPercentageSumInvalid ErrorKind = "percentage_sum_invalid"
	KindInvalidRange         ErrorKind = "invalid_range"
	KindOverlappingRange     ErrorKind = "overlapping_range"
)

// ValidationError carries the rejected values so the caller can show
// exactly which invariant was broken.
type ValidationError struct {
	Kind ErrorKind

	// Set for KindPercentageSumInvalid.
	AdminPercent        float64
	CounterpartyPercent float64

	// Set for KindInvalidRange and KindOverlappingRange.
	PriceRangeStart float64
	PriceRangeEnd   float64
	Conflicts       []*FeeRule
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindPercentageSumInvalid:
		return fmt.Sprintf("%s: %g + %g = %g",
			ErrPercentageSumInvalid, e.AdminPercent, e.CounterpartyPercent, e.AdminPercent+e.CounterpartyPercent)
	case KindInvalidRange:
		return fmt.Sprintf("%s: [%g, %g]", ErrInvalidRange, e.PriceRangeStart, e.PriceRangeEnd)
	case KindOverlappingRange:
		conflicts := make([]string, 0, len(e.Conflicts))
		for _, c := range e.Conflicts {
			conflicts = append(conflicts, fmt.Sprintf("#%d [%g, %g]", c.ID, c.PriceRangeStart, c.PriceRangeEnd))
		}
		return fmt.Sprintf("%s: [%g, %g] conflicts with %s",
			ErrOverlappingRange, e.PriceRangeStart, e.PriceRangeEnd, strings.Join(conflicts, ", "))
	default:
		return "invalid cut-off edit"
	}
}

func (e *ValidationError) Is(target error) bool {
	switch e.Kind {
	case KindPercentageSumInvalid:
		return target == ErrPercentageSumInvalid
	case KindInvalidRange:
		return target == ErrInvalidRange
	case KindOverlappingRange:
		return target == ErrOverlappingRange
	}
	return false
}

// AuditError is returned next to a committed edit whose audit entry could
// not be written. The edit itself is not rolled back.
type AuditError struct {
	Err error
}

func (e *AuditError) Error() string {
	return "cut-off edit committed without audit entry: " + e.Err.Error()
}

func (e *AuditError) Unwrap() error {
	return e.Err
}
