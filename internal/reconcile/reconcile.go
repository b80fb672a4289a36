// Package reconcile implements the full-replace-by-diff reconciliation pass:
// every entity in the new set is upserted by identity key, and every
// persisted key absent from the new set is deleted. Rewriting unchanged rows
// costs extra writes but guarantees eventual correctness even after a
// partially failed earlier pass.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
)

// Table is one keyed persisted entity set. Implementations are expected to
// scope all three operations to a single transaction so a pass commits or
// fails as a whole.
type Table[T any] interface {
	// Name identifies the table for logging.
	Name() string
	// Keys returns the currently persisted identity keys.
	Keys(ctx context.Context) ([]string, error)
	// Upsert inserts the row or overwrites all fields of an existing one.
	Upsert(ctx context.Context, row T) error
	// Delete removes the row with the given key.
	Delete(ctx context.Context, key string) error
}

// Result summarizes one reconciliation pass.
type Result struct {
	Upserted int
	Deleted  []string
}

// Sync makes the persisted set equal to next. After a successful pass the
// table holds exactly the keys of next, each with current field values.
// Running Sync twice with the same next set is a no-op the second time apart
// from the rewrites.
func Sync[T any](ctx context.Context, tbl Table[T], next []T, key func(T) string) (Result, error) {
	existing, err := tbl.Keys(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("reading keys of %s: %w", tbl.Name(), err)
	}

	for _, row := range next {
		if err := tbl.Upsert(ctx, row); err != nil {
			return Result{}, fmt.Errorf("upserting %q into %s: %w", key(row), tbl.Name(), err)
		}
	}

	currentKeys := lo.Map(next, func(row T, _ int) string { return key(row) })
	stale := lo.Without(existing, currentKeys...)
	for _, k := range stale {
		if err := tbl.Delete(ctx, k); err != nil {
			return Result{}, fmt.Errorf("deleting %q from %s: %w", k, tbl.Name(), err)
		}
		slog.Info("reconcile: deleted stale row", "table", tbl.Name(), "key", k)
	}

	return Result{Upserted: len(next), Deleted: stale}, nil
}
