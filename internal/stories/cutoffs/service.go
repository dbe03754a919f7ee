package cutoffs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gym-cutoff/internal/metrics"
	"gym-cutoff/internal/stories/audit"
)

const (
	editKindTier      = "tier"
	editKindFeeUpdate = "fee_update"
	editKindFeeCreate = "fee_create"
)

// Service applies admin edits to cut-off rules: validate, persist, then audit.
type Service struct {
	storage  TxStorage
	audit    AuditRecorder
	notifier Notifier
	logger   *slog.Logger
	newID    func() uuid.UUID
}

func NewService(storage TxStorage, audit AuditRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		storage:  storage,
		audit:    audit,
		notifier: notifier,
		logger:   logger,
		newID:    uuid.New,
	}
}

// ListTierRules returns tier rules in tier rank, then duration rank order.
func (s *Service) ListTierRules(ctx context.Context) ([]*TierRule, error) {
	rules, err := s.storage.ListTierRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list tier rules")
	}
	SortTierRules(rules)
	return rules, nil
}

// ListFeeRules returns fee rules by ascending range start.
func (s *Service) ListFeeRules(ctx context.Context) ([]*FeeRule, error) {
	rules, err := s.storage.ListFeeRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list fee rules")
	}
	return rules, nil
}

// UpdateTierRule replaces the split of an existing (tier, duration) rule.
// A non-nil rule returned together with an *AuditError means the edit was
// committed but its audit entry is missing.
func (s *Service) UpdateTierRule(ctx context.Context, actor audit.Actor, edit TierEdit) (*TierRule, error) {
	ctx, span := tracer.Start(ctx, "cutoffs.UpdateTierRule", trace.WithAttributes(
		attribute.String("tier", string(edit.Tier)),
		attribute.String("duration", string(edit.Duration)),
	))
	defer span.End()

	correlationID := s.newID()
	logger := s.logger.With(
		"correlation_id", correlationID,
		"actor_id", actor.ID,
		"tier", edit.Tier,
		"duration", edit.Duration)

	if err := NewValidator(s.storage).ValidateTierEdit(edit.AdminCutPercent, edit.OwnerCutPercent); err != nil {
		return nil, s.fail(span, logger, editKindTier, err)
	}

	previous, err := s.storage.GetTierRule(ctx, edit.Tier, edit.Duration)
	if err != nil {
		return nil, s.fail(span, logger, editKindTier, errors.Wrap(err, "get tier rule"))
	}
	if previous == nil {
		return nil, s.fail(span, logger, editKindTier, tierNotFound(edit.Tier, edit.Duration))
	}

	affected, err := s.storage.UpdateTierRule(ctx, edit.Tier, edit.Duration, edit.AdminCutPercent, edit.OwnerCutPercent)
	if err != nil {
		return nil, s.fail(span, logger, editKindTier, errors.Wrap(err, "update tier rule"))
	}
	if affected == 0 {
		return nil, s.fail(span, logger, editKindTier, tierNotFound(edit.Tier, edit.Duration))
	}

	current, err := s.storage.GetTierRule(ctx, edit.Tier, edit.Duration)
	if err != nil {
		return nil, s.fail(span, logger, editKindTier, errors.Wrap(err, "reload tier rule"))
	}
	if current == nil {
		return nil, s.fail(span, logger, editKindTier, tierNotFound(edit.Tier, edit.Duration))
	}

	metrics.CutoffEditsTotal.WithLabelValues(editKindTier, "accepted").Inc()
	logger.Info("Tier cut-off updated",
		"admin_cut_percent", current.AdminCutPercent,
		"owner_cut_percent", current.OwnerCutPercent)

	details := fmt.Sprintf("%s / %s: admin %s -> %s, owner %s -> %s",
		current.Tier, current.Duration,
		pct(previous.AdminCutPercent), pct(current.AdminCutPercent),
		pct(previous.OwnerCutPercent), pct(current.OwnerCutPercent))

	return current, s.recordAudit(ctx, span, logger, correlationID, actor, audit.ActionUpdateTierCutoff, details)
}

// UpdateFeeRule moves an existing fee rule to a new range and split. The
// overlap check and the write share one transaction.
func (s *Service) UpdateFeeRule(ctx context.Context, actor audit.Actor, edit FeeEdit) (*FeeRule, error) {
	ctx, span := tracer.Start(ctx, "cutoffs.UpdateFeeRule", trace.WithAttributes(
		attribute.Int64("fee_rule_id", edit.ID),
	))
	defer span.End()

	correlationID := s.newID()
	logger := s.logger.With(
		"correlation_id", correlationID,
		"actor_id", actor.ID,
		"fee_rule_id", edit.ID)

	var previous, current *FeeRule
	err := s.storage.InFeeRulesTx(ctx, func(tx Storage) error {
		err := NewValidator(tx).ValidateFeeEdit(ctx, edit.ID,
			edit.PriceRangeStart, edit.PriceRangeEnd, edit.AdminCutPercent, edit.GymCutPercent)
		if err != nil {
			return err
		}

		previous, err = tx.GetFeeRule(ctx, edit.ID)
		if err != nil {
			return errors.Wrap(err, "get fee rule")
		}
		if previous == nil {
			return ErrRuleNotFound
		}

		affected, err := tx.UpdateFeeRule(ctx, FeeRule{
			ID:              edit.ID,
			PriceRangeStart: edit.PriceRangeStart,
			PriceRangeEnd:   edit.PriceRangeEnd,
			AdminCutPercent: edit.AdminCutPercent,
			GymCutPercent:   edit.GymCutPercent,
		})
		if err != nil {
			return errors.Wrap(err, "update fee rule")
		}
		if affected == 0 {
			return ErrRuleNotFound
		}

		current, err = tx.GetFeeRule(ctx, edit.ID)
		if err != nil {
			return errors.Wrap(err, "reload fee rule")
		}
		if current == nil {
			return ErrRuleNotFound
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, editKindFeeUpdate, unwrapTxError(err, edit.ID))
	}

	metrics.CutoffEditsTotal.WithLabelValues(editKindFeeUpdate, "accepted").Inc()
	logger.Info("Fee cut-off updated",
		"price_range_start", current.PriceRangeStart,
		"price_range_end", current.PriceRangeEnd,
		"admin_cut_percent", current.AdminCutPercent,
		"gym_cut_percent", current.GymCutPercent)

	details := fmt.Sprintf("fee rule #%d: range [%s, %s] -> [%s, %s], admin %s -> %s, gym %s -> %s",
		current.ID,
		pct(previous.PriceRangeStart), pct(previous.PriceRangeEnd),
		pct(current.PriceRangeStart), pct(current.PriceRangeEnd),
		pct(previous.AdminCutPercent), pct(current.AdminCutPercent),
		pct(previous.GymCutPercent), pct(current.GymCutPercent))

	return current, s.recordAudit(ctx, span, logger, correlationID, actor, audit.ActionUpdateFeeCutoff, details)
}

// CreateFeeRule adds a new fee rule under the same checks as an update.
func (s *Service) CreateFeeRule(ctx context.Context, actor audit.Actor, edit FeeEdit) (*FeeRule, error) {
	ctx, span := tracer.Start(ctx, "cutoffs.CreateFeeRule", trace.WithAttributes(
		attribute.Float64("price_range_start", edit.PriceRangeStart),
		attribute.Float64("price_range_end", edit.PriceRangeEnd),
	))
	defer span.End()

	correlationID := s.newID()
	logger := s.logger.With(
		"correlation_id", correlationID,
		"actor_id", actor.ID)

	var created *FeeRule
	err := s.storage.InFeeRulesTx(ctx, func(tx Storage) error {
		// No stored rule has id 0, so nothing is excluded from the overlap check.
		err := NewValidator(tx).ValidateFeeEdit(ctx, 0,
			edit.PriceRangeStart, edit.PriceRangeEnd, edit.AdminCutPercent, edit.GymCutPercent)
		if err != nil {
			return err
		}

		created, err = tx.CreateFeeRule(ctx, FeeRule{
			PriceRangeStart: edit.PriceRangeStart,
			PriceRangeEnd:   edit.PriceRangeEnd,
			AdminCutPercent: edit.AdminCutPercent,
			GymCutPercent:   edit.GymCutPercent,
		})
		if err != nil {
			return errors.Wrap(err, "create fee rule")
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, editKindFeeCreate, unwrapTxError(err, 0))
	}

	metrics.CutoffEditsTotal.WithLabelValues(editKindFeeCreate, "accepted").Inc()
	logger.Info("Fee cut-off created",
		"fee_rule_id", created.ID,
		"price_range_start", created.PriceRangeStart,
		"price_range_end", created.PriceRangeEnd)

	details := fmt.Sprintf("fee rule #%d created: range [%s, %s], admin %s, gym %s",
		created.ID,
		pct(created.PriceRangeStart), pct(created.PriceRangeEnd),
		pct(created.AdminCutPercent), pct(created.GymCutPercent))

	return created, s.recordAudit(ctx, span, logger, correlationID, actor, audit.ActionCreateFeeCutoff, details)
}

func (s *Service) recordAudit(
	ctx context.Context,
	span trace.Span,
	logger *slog.Logger,
	correlationID uuid.UUID,
	actor audit.Actor,
	kind audit.ActionKind,
	details string,
) error {
	if _, err := s.audit.Record(ctx, correlationID, actor, kind, details); err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		span.RecordError(err)
		logger.Error("Cut-off edit committed without audit entry", "action", kind, "error", err)
		s.notifier.NotifyAdmins(ctx, fmt.Sprintf(
			"Audit entry missing for committed %s (correlation %s): %s", kind, correlationID, details))
		return &AuditError{Err: err}
	}
	return nil
}

func (s *Service) fail(span trace.Span, logger *slog.Logger, kind string, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		metrics.CutoffEditsTotal.WithLabelValues(kind, "rejected").Inc()
		logger.Info("Cut-off edit rejected", "reason", verr.Kind, "error", err)
	case errors.Is(err, ErrRuleNotFound):
		metrics.CutoffEditsTotal.WithLabelValues(kind, "not_found").Inc()
		logger.Info("Cut-off edit targets a missing rule", "error", err)
	default:
		metrics.CutoffEditsTotal.WithLabelValues(kind, "error").Inc()
		logger.Error("Cut-off edit failed", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// unwrapTxError strips the transaction wrapper from domain errors so callers
// see the validation or not-found error itself.
func unwrapTxError(err error, feeRuleID int64) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	if errors.Is(err, ErrRuleNotFound) {
		return fmt.Errorf("%w: fee rule #%d", ErrRuleNotFound, feeRuleID)
	}
	return err
}

func tierNotFound(tier Tier, duration Duration) error {
	return fmt.Errorf("%w: %s / %s", ErrRuleNotFound, tier, duration)
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
