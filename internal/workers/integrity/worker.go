package integrity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"gym-cutoff/internal/metrics"
	"gym-cutoff/internal/stories/cutoffs"
)

var allKinds = []cutoffs.ViolationKind{
	cutoffs.ViolationTierPercentageSum,
	cutoffs.ViolationFeePercentageSum,
	cutoffs.ViolationFeeRangeOrder,
	cutoffs.ViolationFeeRangeOverlap,
}

// Worker periodically re-checks stored cut-off rules against the edit
// invariants and alerts admins when rows break them.
type Worker struct {
	storage  Storage
	notifier Notifier
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron

	mu           sync.Mutex
	lastReported string
}

func NewWorker(storage Storage, notifier Notifier, schedule string, logger *slog.Logger) *Worker {
	return &Worker{
		storage:  storage,
		notifier: notifier,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(),
	}
}

func (w *Worker) Name() string {
	return "integrity"
}

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx := context.Background()
		if err := w.Run(ctx); err != nil {
			w.logger.Error("Integrity check failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule integrity worker: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping integrity worker")
	<-w.cron.Stop().Done()
}

// Run performs one check. Admins are alerted only when the set of
// violations differs from the last alert.
func (w *Worker) Run(ctx context.Context) error {
	tierRules, err := w.storage.ListTierRules(ctx)
	if err != nil {
		metrics.IntegrityRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list tier rules: %w", err)
	}

	feeRules, err := w.storage.ListFeeRules(ctx)
	if err != nil {
		metrics.IntegrityRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list fee rules: %w", err)
	}

	violations := cutoffs.CheckIntegrity(tierRules, feeRules)

	counts := lo.CountValuesBy(violations, func(v cutoffs.Violation) cutoffs.ViolationKind { return v.Kind })
	for _, kind := range allKinds {
		metrics.IntegrityViolations.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
	metrics.IntegrityRunsTotal.WithLabelValues("ok").Inc()

	w.logger.Info("Integrity check completed",
		"tier_rules", len(tierRules),
		"fee_rules", len(feeRules),
		"violations", len(violations))

	report := Report(violations)

	w.mu.Lock()
	changed := report != w.lastReported
	w.lastReported = report
	w.mu.Unlock()

	if changed && report != "" {
		w.notifier.NotifyAdmins(ctx, report)
	}

	return nil
}

// Report renders violations for an operator alert; empty when there are none.
func Report(violations []cutoffs.Violation) string {
	if len(violations) == 0 {
		return ""
	}

	lines := make([]string, 0, len(violations)+1)
	lines = append(lines, fmt.Sprintf("Cut-off integrity check found %d violation(s):", len(violations)))
	for _, v := range violations {
		lines = append(lines, "- "+describe(v))
	}
	return strings.Join(lines, "\n")
}

func describe(v cutoffs.Violation) string {
	switch v.Kind {
	case cutoffs.ViolationTierPercentageSum:
		return fmt.Sprintf("%s / %s splits %g%% / %g%%",
			v.TierRule.Tier, v.TierRule.Duration, v.TierRule.AdminCutPercent, v.TierRule.OwnerCutPercent)
	case cutoffs.ViolationFeePercentageSum:
		return fmt.Sprintf("fee rule #%d splits %g%% / %g%%",
			v.FeeRule.ID, v.FeeRule.AdminCutPercent, v.FeeRule.GymCutPercent)
	case cutoffs.ViolationFeeRangeOrder:
		return fmt.Sprintf("fee rule #%d has start %g not below end %g",
			v.FeeRule.ID, v.FeeRule.PriceRangeStart, v.FeeRule.PriceRangeEnd)
	case cutoffs.ViolationFeeRangeOverlap:
		return fmt.Sprintf("fee rules #%d [%g, %g] and #%d [%g, %g] overlap",
			v.FeeRule.ID, v.FeeRule.PriceRangeStart, v.FeeRule.PriceRangeEnd,
			v.Other.ID, v.Other.PriceRangeStart, v.Other.PriceRangeEnd)
	}
	return string(v.Kind)
}
