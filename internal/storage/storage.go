package storage

import (
	"context"
	"database/sql"
	"reflect"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"gym-cutoff/internal/infra/sqlite3"
	"gym-cutoff/internal/stories/cutoffs"
)

// executor is satisfied by both *sqlx.DB and *sqlx.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type storageImpl struct {
	db  executor
	now func() time.Time

	// withTx is nil on a transaction-bound store.
	withTx sqlite3.TxManager
}

func New(db *sqlx.DB) *storageImpl {
	return &storageImpl{
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
		withTx: sqlite3.WithTx(db, nil),
	}
}

func (s *storageImpl) stmpBuilder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// InFeeRulesTx runs fn on a store bound to a single transaction. The sqlite
// connection opens transactions with BEGIN IMMEDIATE, so the write lock is
// held from the first read and concurrent fee edits serialize.
func (s *storageImpl) InFeeRulesTx(ctx context.Context, fn func(tx cutoffs.Storage) error) error {
	if s.withTx == nil {
		return fn(s)
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&storageImpl{db: tx, now: s.now})
	})
}

// fields returns the db-tagged columns of a row struct.
func fields(data any) string {
	var cols []string
	r := reflect.TypeOf(data)
	for i := 0; i < r.NumField(); i++ {
		if tag := r.Field(i).Tag.Get("db"); tag != "" {
			cols = append(cols, tag)
		}
	}
	return strings.Join(cols, ",")
}

// rankExpr orders column by the position of its value in labels; other values rank last.
func rankExpr(column string, labels []string) string {
	var b strings.Builder
	b.WriteString("CASE ")
	b.WriteString(column)
	for i, l := range labels {
		b.WriteString(" WHEN '")
		b.WriteString(strings.ReplaceAll(l, "'", "''"))
		b.WriteString("' THEN ")
		b.WriteString(strconv.Itoa(i + 1))
	}
	b.WriteString(" ELSE ")
	b.WriteString(strconv.Itoa(len(labels) + 1))
	b.WriteString(" END")
	return b.String()
}
