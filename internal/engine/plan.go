package engine

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// selectionMode names the mutually exclusive bulk-selection forms.
type selectionMode int

// selectSingle and related constants order the selection precedence: an
// explicit item list wins over a broadcast, which wins over an identifier
// list; anything else addresses a single entity.
const (
	selectSingle selectionMode = iota
	selectItems
	selectBroadcast
	selectIDs
)

// mode classifies the decoded bulk surface.
func (bp bulkParams) mode() selectionMode {
	switch {
	case len(bp.Items) > 0:
		return selectItems
	case bp.HasFilter || bp.UpdateAll || bp.DeleteAll:
		return selectBroadcast
	case len(bp.IDs) > 0:
		return selectIDs
	default:
		return selectSingle
	}
}

// guardFor derives the confirmation gate for a destructive selection. A
// broadcast needs its explicit scope flag; enumerating identifiers is itself
// the scope confirmation.
func (bp bulkParams) guardFor(mode selectionMode) Guard {
	switch mode {
	case selectBroadcast:
		return Guard{ScopeConfirmed: bp.UpdateAll || bp.DeleteAll, ActionConfirmed: bp.Confirm}
	default:
		return Guard{ScopeConfirmed: true, ActionConfirmed: bp.Confirm}
	}
}

// eventSnapshot reads the event set once, ordered deterministically. Bulk
// planning never re-reads it mid-batch, so a mutation in item k cannot
// change the batch membership.
func (e *Engine) eventSnapshot(ctx context.Context) ([]domain.Event, error) {
	events, err := e.store.ListEvents(ctx)
	if err != nil {
		return nil, storeErr("event snapshot", err)
	}
	slices.SortFunc(events, func(a, b domain.Event) int {
		if a.StartAt.Equal(b.StartAt) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.StartAt.Before(b.StartAt) {
			return -1
		}
		return 1
	})
	return events, nil
}

// taskSnapshot reads the task set once, ordered deterministically.
func (e *Engine) taskSnapshot(ctx context.Context) ([]domain.Task, error) {
	tasks, err := e.store.ListTasks(ctx)
	if err != nil {
		return nil, storeErr("task snapshot", err)
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(a.ID, b.ID)
		}
		if a.CreatedAt.Before(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return tasks, nil
}

// categoryFilter states how a filter's category reference applies to the
// selection.
type categoryFilter int

const (
	categoryOff   categoryFilter = iota // no category constraint
	categoryMatch                       // keep entities in the resolved category
	categoryNone                        // unknown reference, select nothing
)

// filterCategoryID resolves a filter's category reference to a stored id.
// An unknown reference selects nothing rather than falling through to the
// uncategorized set.
func (e *Engine) filterCategoryID(ctx context.Context, f filterParams) (string, categoryFilter, error) {
	ref, ok := f.Category.Value()
	if !ok || strings.TrimSpace(ref) == "" {
		return "", categoryOff, nil
	}
	cat, err := e.lookupCategory(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", categoryNone, nil
		}
		return "", categoryOff, err
	}
	return cat.ID, categoryMatch, nil
}

// filterEvents applies the selection filter to an event snapshot.
func (e *Engine) filterEvents(ctx context.Context, events []domain.Event, f filterParams) ([]domain.Event, error) {
	categoryID, catMode, err := e.filterCategoryID(ctx, f)
	if err != nil {
		return nil, err
	}
	if catMode == categoryNone {
		return []domain.Event{}, nil
	}
	out := make([]domain.Event, 0, len(events))
	for _, ev := range events {
		if catMode == categoryMatch && ev.CategoryID != categoryID {
			continue
		}
		if day, ok := f.Date.Value(); ok && !ev.OccursOn(day) {
			continue
		}
		if from, ok := f.From.Value(); ok && ev.EndAt.Before(from) {
			continue
		}
		if to, ok := f.To.Value(); ok && ev.StartAt.After(to) {
			continue
		}
		if p, ok := f.Priority.Value(); ok && !strings.EqualFold(string(ev.Priority), p) {
			continue
		}
		if completed, ok := f.Completed.Value(); ok && ev.Completed != completed {
			continue
		}
		if q, ok := f.Query.Value(); ok && !matchesQuery(q, ev.Title, ev.Notes, ev.Location) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// filterTasks applies the selection filter to a task snapshot. The date
// filter matches the task's due day.
func (e *Engine) filterTasks(ctx context.Context, tasks []domain.Task, f filterParams) ([]domain.Task, error) {
	categoryID, catMode, err := e.filterCategoryID(ctx, f)
	if err != nil {
		return nil, err
	}
	if catMode == categoryNone {
		return []domain.Task{}, nil
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if catMode == categoryMatch && t.CategoryID != categoryID {
			continue
		}
		if day, ok := f.Date.Value(); ok && !dueOn(t.DueAt, day) {
			continue
		}
		if from, ok := f.From.Value(); ok && (t.DueAt == nil || t.DueAt.Before(from)) {
			continue
		}
		if to, ok := f.To.Value(); ok && (t.DueAt == nil || t.DueAt.After(to)) {
			continue
		}
		if p, ok := f.Priority.Value(); ok && !strings.EqualFold(string(t.Priority), p) {
			continue
		}
		if completed, ok := f.Completed.Value(); ok && t.Completed != completed {
			continue
		}
		if q, ok := f.Query.Value(); ok && !matchesQuery(q, t.Title, t.Notes, strings.Join(t.Tags, " ")) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// dueOn reports whether a due instant falls inside the civil day.
func dueOn(due *time.Time, day time.Time) bool {
	if due == nil {
		return false
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	return !due.Before(dayStart) && due.Before(dayEnd)
}

// matchesQuery reports a case-insensitive substring hit in any haystack.
func matchesQuery(query string, haystacks ...string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), query) {
			return true
		}
	}
	return false
}
