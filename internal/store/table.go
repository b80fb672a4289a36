package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// table adapts one TableSpec to the reconciler's keyed-table contract.
// args must return one value per spec value column, in column order.
type table[T any] struct {
	db   querier
	spec TableSpec
	args func(T) []any
	key  func(T) string
}

func newTable[T any](db querier, spec TableSpec, key func(T) string, args func(T) []any) *table[T] {
	return &table[T]{db: db, spec: spec, key: key, args: args}
}

func (t *table[T]) Name() string { return t.spec.Name }

func (t *table[T]) Keys(ctx context.Context) ([]string, error) {
	rows, err := t.db.Query(ctx, fmt.Sprintf("SELECT %s FROM %s",
		pgx.Identifier{t.spec.KeyCol}.Sanitize(), t.spec.Ident()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (t *table[T]) Upsert(ctx context.Context, row T) error {
	cols := make([]string, 0, len(t.spec.ValueCols)+1)
	cols = append(cols, pgx.Identifier{t.spec.KeyCol}.Sanitize())
	assignments := make([]string, 0, len(t.spec.ValueCols))
	for _, c := range t.spec.ValueCols {
		ident := pgx.Identifier{c}.Sanitize()
		cols = append(cols, ident)
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", ident, ident))
	}

	placeholders := make([]string, len(cols))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		t.spec.Ident(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
		pgx.Identifier{t.spec.KeyCol}.Sanitize(),
		strings.Join(assignments, ", "))

	args := append([]any{t.key(row)}, t.args(row)...)
	if len(args) != len(cols) {
		return fmt.Errorf("%s: %d values for %d columns", t.spec.Name, len(args), len(cols))
	}
	_, err := t.db.Exec(ctx, sql, args...)
	return err
}

func (t *table[T]) Delete(ctx context.Context, key string) error {
	_, err := t.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		t.spec.Ident(), pgx.Identifier{t.spec.KeyCol}.Sanitize()), key)
	return err
}
