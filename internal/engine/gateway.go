package engine

import "context"

// The gateway applies planner output to the store. Creation batches are
// all-or-nothing: payload problems are almost always a caller bug, and a
// half-created batch is worse than none. Update and delete batches are
// per-item resilient: one stale identifier should not abort an otherwise
// valid selection, so failures are collected and reported against the
// matched count instead.

// createBatch runs every mutation inside one transaction; any failure rolls
// the whole batch back.
func (e *Engine) createBatch(ctx context.Context, muts []func(Store) error) error {
	err := e.store.Transact(ctx, func(s Store) error {
		for _, mut := range muts {
			if err := mut(s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storeErr("batch create", err)
	}
	return nil
}

// applyEach applies one mutation per batch position independently, returning
// how many succeeded. The batch membership was fixed by the planner before
// the first mutation runs, so failures never change it.
func (e *Engine) applyEach(ctx context.Context, total int, apply func(i int, s Store) error) int {
	applied := 0
	for i := 0; i < total; i++ {
		if err := apply(i, e.store); err != nil {
			continue
		}
		applied++
	}
	return applied
}
