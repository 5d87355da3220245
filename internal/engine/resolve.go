package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// Entity resolution maps a loose reference (identifier or display name) onto
// one stored entity. Identifier lookup wins; otherwise the name is matched
// after normalization (case-fold, trim, collapse whitespace). When several
// stored entities normalize to the same key, the earliest-created one wins,
// with ties broken on the lexicographically smallest identifier, so
// resolution is deterministic even over latent duplicates.

// notFoundErr builds a NotFound failure naming the missed reference.
func notFoundErr(entity, ref string) error {
	return &FieldError{Field: entity, Kind: ErrNotFound, Detail: fmt.Sprintf("no %s matching %q", entity, ref)}
}

// stablePick returns the index of the earliest-created candidate.
func stablePick(created []time.Time, ids []string) int {
	best := 0
	for i := 1; i < len(created); i++ {
		if created[i].Before(created[best]) {
			best = i
			continue
		}
		if created[i].Equal(created[best]) && ids[i] < ids[best] {
			best = i
		}
	}
	return best
}

// resolveEvent finds an event by identifier or normalized title.
func (e *Engine) resolveEvent(ctx context.Context, id, title Field[string]) (domain.Event, error) {
	if ref, ok := id.Value(); ok && ref != "" {
		ev, err := e.store.GetEvent(ctx, ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return domain.Event{}, notFoundErr("event", ref)
			}
			return domain.Event{}, storeErr("event lookup", err)
		}
		return ev, nil
	}
	name, ok := title.Value()
	key := domain.NormalizeName(name)
	if !ok || key == "" {
		return domain.Event{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or title required"}
	}
	events, err := e.store.ListEvents(ctx)
	if err != nil {
		return domain.Event{}, storeErr("event lookup", err)
	}
	var (
		matches []domain.Event
		created []time.Time
		ids     []string
	)
	for _, ev := range events {
		if domain.NormalizeName(ev.Title) == key {
			matches = append(matches, ev)
			created = append(created, ev.CreatedAt)
			ids = append(ids, ev.ID)
		}
	}
	if len(matches) == 0 {
		return domain.Event{}, notFoundErr("event", name)
	}
	return matches[stablePick(created, ids)], nil
}

// resolveTask finds a task by identifier or normalized title.
func (e *Engine) resolveTask(ctx context.Context, id, title Field[string]) (domain.Task, error) {
	if ref, ok := id.Value(); ok && ref != "" {
		t, err := e.store.GetTask(ctx, ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return domain.Task{}, notFoundErr("task", ref)
			}
			return domain.Task{}, storeErr("task lookup", err)
		}
		return t, nil
	}
	name, ok := title.Value()
	key := domain.NormalizeName(name)
	if !ok || key == "" {
		return domain.Task{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or title required"}
	}
	tasks, err := e.store.ListTasks(ctx)
	if err != nil {
		return domain.Task{}, storeErr("task lookup", err)
	}
	var (
		matches []domain.Task
		created []time.Time
		ids     []string
	)
	for _, t := range tasks {
		if domain.NormalizeName(t.Title) == key {
			matches = append(matches, t)
			created = append(created, t.CreatedAt)
			ids = append(ids, t.ID)
		}
	}
	if len(matches) == 0 {
		return domain.Task{}, notFoundErr("task", name)
	}
	return matches[stablePick(created, ids)], nil
}

// resolveHabit finds a habit by identifier or normalized name.
func (e *Engine) resolveHabit(ctx context.Context, id, name Field[string]) (domain.Habit, error) {
	if ref, ok := id.Value(); ok && ref != "" {
		h, err := e.store.GetHabit(ctx, ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return domain.Habit{}, notFoundErr("habit", ref)
			}
			return domain.Habit{}, storeErr("habit lookup", err)
		}
		return h, nil
	}
	raw, ok := name.Value()
	key := domain.NormalizeName(raw)
	if !ok || key == "" {
		return domain.Habit{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or name required"}
	}
	habits, err := e.store.ListHabits(ctx)
	if err != nil {
		return domain.Habit{}, storeErr("habit lookup", err)
	}
	var (
		matches []domain.Habit
		created []time.Time
		ids     []string
	)
	for _, h := range habits {
		if domain.NormalizeName(h.Name) == key {
			matches = append(matches, h)
			created = append(created, h.CreatedAt)
			ids = append(ids, h.ID)
		}
	}
	if len(matches) == 0 {
		return domain.Habit{}, notFoundErr("habit", raw)
	}
	return matches[stablePick(created, ids)], nil
}

// resolveGoal finds a goal by identifier or normalized title.
func (e *Engine) resolveGoal(ctx context.Context, id, title Field[string]) (domain.Goal, error) {
	if ref, ok := id.Value(); ok && ref != "" {
		g, err := e.store.GetGoal(ctx, ref)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return domain.Goal{}, notFoundErr("goal", ref)
			}
			return domain.Goal{}, storeErr("goal lookup", err)
		}
		return g, nil
	}
	raw, ok := title.Value()
	key := domain.NormalizeName(raw)
	if !ok || key == "" {
		return domain.Goal{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or title required"}
	}
	goals, err := e.store.ListGoals(ctx)
	if err != nil {
		return domain.Goal{}, storeErr("goal lookup", err)
	}
	var (
		matches []domain.Goal
		created []time.Time
		ids     []string
	)
	for _, g := range goals {
		if domain.NormalizeName(g.Title) == key {
			matches = append(matches, g)
			created = append(created, g.CreatedAt)
			ids = append(ids, g.ID)
		}
	}
	if len(matches) == 0 {
		return domain.Goal{}, notFoundErr("goal", raw)
	}
	return matches[stablePick(created, ids)], nil
}

// lookupCategory finds an active category by identifier or normalized name
// without creating one.
func (e *Engine) lookupCategory(ctx context.Context, ref string) (domain.Category, error) {
	cat, err := e.store.GetCategory(ctx, ref)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Category{}, storeErr("category lookup", err)
	}
	key := domain.NormalizeName(ref)
	if key == "" {
		return domain.Category{}, notFoundErr("category", ref)
	}
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return domain.Category{}, storeErr("category lookup", err)
	}
	var (
		matches []domain.Category
		created []time.Time
		ids     []string
	)
	for _, c := range categories {
		if !c.Active {
			continue
		}
		if domain.NormalizeName(c.Name) == key {
			matches = append(matches, c)
			created = append(created, c.CreatedAt)
			ids = append(ids, c.ID)
		}
	}
	if len(matches) == 0 {
		return domain.Category{}, notFoundErr("category", ref)
	}
	return matches[stablePick(created, ids)], nil
}

// findOrCreateCategory returns the active category matching the normalized
// name, refreshing color/icon when new ones are given, or creates one with
// configured defaults. Two calls with the same normalized name return the
// same identifier.
func (e *Engine) findOrCreateCategory(ctx context.Context, name, color, icon string) (domain.Category, bool, error) {
	existing, err := e.lookupCategory(ctx, name)
	if err == nil {
		if color != "" || icon != "" {
			existing.SetAppearance(color, icon, e.clock())
			if err := e.store.UpdateCategory(ctx, existing); err != nil {
				return domain.Category{}, false, storeErr("category update", err)
			}
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Category{}, false, err
	}

	if color == "" {
		color = e.cfg.DefaultCategoryColor
	}
	if icon == "" {
		icon = e.cfg.DefaultCategoryIcon
	}
	categories, listErr := e.store.ListCategories(ctx)
	if listErr != nil {
		return domain.Category{}, false, storeErr("category lookup", listErr)
	}
	cat, err := domain.NewCategory(domain.CategoryInput{
		ID:        e.idGen(),
		Name:      name,
		Color:     color,
		Icon:      icon,
		SortOrder: len(categories),
	}, e.clock())
	if err != nil {
		return domain.Category{}, false, err
	}
	if err := e.store.CreateCategory(ctx, cat); err != nil {
		return domain.Category{}, false, storeErr("category create", err)
	}
	return cat, true, nil
}

// resolveCategoryField maps a tri-state category reference onto a stored
// category id: absent keeps the current value, null clears it, and a value
// goes through find-or-create so callers never pre-create categories.
func (e *Engine) resolveCategoryField(ctx context.Context, ref Field[string], current string) (string, error) {
	if !ref.Present() {
		return current, nil
	}
	if ref.Null() {
		return "", nil
	}
	name, _ := ref.Value()
	if domain.NormalizeName(name) == "" {
		return "", nil
	}
	cat, _, err := e.findOrCreateCategory(ctx, name, "", "")
	if err != nil {
		return "", err
	}
	return cat.ID, nil
}
