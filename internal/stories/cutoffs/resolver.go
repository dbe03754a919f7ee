package cutoffs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gym-cutoff/internal/metrics"
)

var tracer = otel.Tracer("gym-cutoff/internal/stories/cutoffs")

// Resolver looks up the split for a completed payment. It never falls back
// to a default split: a missing rule is ErrRuleNotFound.
type Resolver struct {
	rules  ruleReader
	logger *slog.Logger
}

func NewResolver(rules ruleReader, logger *slog.Logger) *Resolver {
	return &Resolver{
		rules:  rules,
		logger: logger,
	}
}

func (r *Resolver) ResolveByTier(ctx context.Context, tier Tier, duration Duration) (SplitPercentages, error) {
	ctx, span := tracer.Start(ctx, "cutoffs.ResolveByTier", trace.WithAttributes(
		attribute.String("tier", string(tier)),
		attribute.String("duration", string(duration)),
	))
	defer span.End()

	rule, err := r.rules.GetTierRule(ctx, tier, duration)
	if err != nil {
		metrics.ResolverLookupsTotal.WithLabelValues("tier", "error").Inc()
		span.RecordError(err)
		return SplitPercentages{}, fmt.Errorf("get tier rule: %w", err)
	}
	if rule == nil {
		metrics.ResolverLookupsTotal.WithLabelValues("tier", "not_found").Inc()
		return SplitPercentages{}, fmt.Errorf("%w: %s / %s", ErrRuleNotFound, tier, duration)
	}

	metrics.ResolverLookupsTotal.WithLabelValues("tier", "found").Inc()
	return SplitPercentages{
		PlatformPercent:     rule.AdminCutPercent,
		CounterpartyPercent: rule.OwnerCutPercent,
	}, nil
}

// ResolveByPrice returns the split of the fee rule whose closed range holds price.
func (r *Resolver) ResolveByPrice(ctx context.Context, price float64) (SplitPercentages, error) {
	ctx, span := tracer.Start(ctx, "cutoffs.ResolveByPrice", trace.WithAttributes(
		attribute.Float64("price", price),
	))
	defer span.End()

	// A rule contains price iff it overlaps the degenerate range [price, price].
	matched, err := r.rules.FindOverlappingFeeRules(ctx, 0, price, price)
	if err != nil {
		metrics.ResolverLookupsTotal.WithLabelValues("price", "error").Inc()
		span.RecordError(err)
		return SplitPercentages{}, fmt.Errorf("find fee rules for price: %w", err)
	}
	if len(matched) == 0 {
		metrics.ResolverLookupsTotal.WithLabelValues("price", "not_found").Inc()
		return SplitPercentages{}, fmt.Errorf("%w: no fee range contains %g", ErrRuleNotFound, price)
	}

	rule := lo.MinBy(matched, func(a, b *FeeRule) bool {
		return a.PriceRangeStart < b.PriceRangeStart
	})
	if len(matched) > 1 {
		r.logger.Warn("Several fee rules contain price, using the lowest range",
			"price", price,
			"matched", len(matched),
			"rule_id", rule.ID)
	}

	metrics.ResolverLookupsTotal.WithLabelValues("price", "found").Inc()
	return SplitPercentages{
		PlatformPercent:     rule.AdminCutPercent,
		CounterpartyPercent: rule.GymCutPercent,
	}, nil
}
