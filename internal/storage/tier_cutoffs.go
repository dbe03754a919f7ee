package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"gym-cutoff/internal/stories/cutoffs"
)

const tierCutoffsTable = "tier_cutoffs"

var tierRuleRowFields = fields(tierRuleRow{})

type tierRuleRow struct {
	ID              int64     `db:"id"`
	Tier            string    `db:"tier"`
	Duration        string    `db:"duration"`
	AdminCutPercent float64   `db:"admin_cut_percent"`
	OwnerCutPercent float64   `db:"owner_cut_percent"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (t tierRuleRow) ToModel() *cutoffs.TierRule {
	return &cutoffs.TierRule{
		ID:              t.ID,
		Tier:            cutoffs.Tier(t.Tier),
		Duration:        cutoffs.Duration(t.Duration),
		AdminCutPercent: t.AdminCutPercent,
		OwnerCutPercent: t.OwnerCutPercent,
		UpdatedAt:       t.UpdatedAt,
	}
}

func (s *storageImpl) GetTierRule(ctx context.Context, tier cutoffs.Tier, duration cutoffs.Duration) (*cutoffs.TierRule, error) {
	q, args, err := s.stmpBuilder().
		Select(tierRuleRowFields).
		From(tierCutoffsTable).
		Where(sq.Eq{"tier": string(tier), "duration": string(duration)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row tierRuleRow
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

// ListTierRules orders by tier rank, then duration rank; unknown labels go last.
func (s *storageImpl) ListTierRules(ctx context.Context) ([]*cutoffs.TierRule, error) {
	tiers := lo.Map(cutoffs.KnownTiers, func(t cutoffs.Tier, _ int) string { return string(t) })
	durations := lo.Map(cutoffs.KnownDurations, func(d cutoffs.Duration, _ int) string { return string(d) })

	q, args, err := s.stmpBuilder().
		Select(tierRuleRowFields).
		From(tierCutoffsTable).
		OrderBy(rankExpr("tier", tiers), rankExpr("duration", durations), "tier", "duration").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []tierRuleRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	return lo.Map(rows, func(r tierRuleRow, _ int) *cutoffs.TierRule { return r.ToModel() }), nil
}

// UpdateTierRule returns the number of rows changed; 0 means the pair does not exist.
func (s *storageImpl) UpdateTierRule(
	ctx context.Context,
	tier cutoffs.Tier,
	duration cutoffs.Duration,
	adminCutPercent, ownerCutPercent float64,
) (int64, error) {
	q, args, err := s.stmpBuilder().
		Update(tierCutoffsTable).
		Set("admin_cut_percent", adminCutPercent).
		Set("owner_cut_percent", ownerCutPercent).
		Set("updated_at", s.now()).
		Where(sq.Eq{"tier": string(tier), "duration": string(duration)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return affected, nil
}
