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

const feeCutoffsTable = "fee_cutoffs"

var feeRuleRowFields = fields(feeRuleRow{})

type feeRuleRow struct {
	ID              int64     `db:"id"`
	PriceRangeStart float64   `db:"price_range_start"`
	PriceRangeEnd   float64   `db:"price_range_end"`
	AdminCutPercent float64   `db:"admin_cut_percent"`
	GymCutPercent   float64   `db:"gym_cut_percent"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (f feeRuleRow) ToModel() *cutoffs.FeeRule {
	return &cutoffs.FeeRule{
		ID:              f.ID,
		PriceRangeStart: f.PriceRangeStart,
		PriceRangeEnd:   f.PriceRangeEnd,
		AdminCutPercent: f.AdminCutPercent,
		GymCutPercent:   f.GymCutPercent,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

func (s *storageImpl) CreateFeeRule(ctx context.Context, rule cutoffs.FeeRule) (*cutoffs.FeeRule, error) {
	params := map[string]interface{}{
		"price_range_start": rule.PriceRangeStart,
		"price_range_end":   rule.PriceRangeEnd,
		"admin_cut_percent": rule.AdminCutPercent,
		"gym_cut_percent":   rule.GymCutPercent,
		"created_at":        s.now(),
		"updated_at":        s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(feeCutoffsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetFeeRule(ctx, id)
}

func (s *storageImpl) GetFeeRule(ctx context.Context, id int64) (*cutoffs.FeeRule, error) {
	q, args, err := s.stmpBuilder().
		Select(feeRuleRowFields).
		From(feeCutoffsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var row feeRuleRow
	if err := s.db.GetContext(ctx, &row, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return row.ToModel(), nil
}

func (s *storageImpl) ListFeeRules(ctx context.Context) ([]*cutoffs.FeeRule, error) {
	return s.selectFeeRules(ctx, s.stmpBuilder().
		Select(feeRuleRowFields).
		From(feeCutoffsTable).
		OrderBy("price_range_start ASC", "id ASC"))
}

func (s *storageImpl) UpdateFeeRule(ctx context.Context, rule cutoffs.FeeRule) (int64, error) {
	q, args, err := s.stmpBuilder().
		Update(feeCutoffsTable).
		Set("price_range_start", rule.PriceRangeStart).
		Set("price_range_end", rule.PriceRangeEnd).
		Set("admin_cut_percent", rule.AdminCutPercent).
		Set("gym_cut_percent", rule.GymCutPercent).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": rule.ID}).
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

// FindOverlappingFeeRules returns rules whose closed range intersects
// [priceRangeStart, priceRangeEnd], skipping excludeID. Touching endpoints
// count as overlap.
func (s *storageImpl) FindOverlappingFeeRules(
	ctx context.Context,
	excludeID int64,
	priceRangeStart, priceRangeEnd float64,
) ([]*cutoffs.FeeRule, error) {
	return s.selectFeeRules(ctx, s.stmpBuilder().
		Select(feeRuleRowFields).
		From(feeCutoffsTable).
		Where(sq.LtOrEq{"price_range_start": priceRangeEnd}).
		Where(sq.GtOrEq{"price_range_end": priceRangeStart}).
		Where(sq.NotEq{"id": excludeID}).
		OrderBy("price_range_start ASC", "id ASC"))
}

func (s *storageImpl) selectFeeRules(ctx context.Context, query sq.SelectBuilder) ([]*cutoffs.FeeRule, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []feeRuleRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	return lo.Map(rows, func(r feeRuleRow, _ int) *cutoffs.FeeRule { return r.ToModel() }), nil
}
