package engine

import (
	"context"
	"fmt"

	"github.com/hylla/dagord/internal/domain"
)

// executeCategory routes one category action.
func (e *Engine) executeCategory(ctx context.Context, action string, raw map[string]any) (Result, error) {
	switch action {
	case "create":
		return e.createCategory(ctx, raw)
	case "update":
		return e.updateCategory(ctx, raw)
	case "delete":
		return e.deleteCategory(ctx, raw)
	case "list", "search":
		return e.listCategories(ctx, raw)
	default:
		return Result{}, &UnsupportedError{Entity: "category", Action: action}
	}
}

// createCategory goes through find-or-create, so creating a name that already
// exists returns the existing category instead of a duplicate.
func (e *Engine) createCategory(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeCategoryParams(raw)
	if err != nil {
		return Result{}, err
	}
	name, err := RequireNonEmpty("name", p.Name)
	if err != nil {
		return Result{}, err
	}
	cat, created, err := e.findOrCreateCategory(ctx, name, p.Color.Or(""), p.Icon.Or(""))
	if err != nil {
		return Result{}, err
	}
	if !created {
		return okID(fmt.Sprintf("Category %q already exists", cat.Name), cat.ID), nil
	}
	return okID(fmt.Sprintf("Created category %q", cat.Name), cat.ID), nil
}

func (e *Engine) updateCategory(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeCategoryParams(raw)
	if err != nil {
		return Result{}, err
	}
	ref := p.ID.Or(p.Name.Or(""))
	if ref == "" {
		return Result{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or name required"}
	}
	cat, err := e.lookupCategory(ctx, ref)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	if _, hasID := p.ID.Value(); hasID {
		if name, hasName := p.Name.Value(); hasName {
			if err := e.checkCategoryName(ctx, cat.ID, name); err != nil {
				return Result{}, err
			}
			if err := cat.Rename(name, now); err != nil {
				return Result{}, &FieldError{Field: "name", Kind: ErrRequiredField}
			}
		}
	}
	cat.SetAppearance(p.Color.Or(""), p.Icon.Or(""), now)
	if order, ok := p.SortOrder.Value(); ok {
		cat.SortOrder = int(order)
	}
	if err := e.store.UpdateCategory(ctx, cat); err != nil {
		return Result{}, storeErr("category update", err)
	}
	return okID(fmt.Sprintf("Updated category %q", cat.Name), cat.ID), nil
}

// checkCategoryName rejects a rename that would collide with another active
// category under the normalized key.
func (e *Engine) checkCategoryName(ctx context.Context, selfID, name string) error {
	key := domain.NormalizeName(name)
	if key == "" {
		return &FieldError{Field: "name", Kind: ErrRequiredField}
	}
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return storeErr("category lookup", err)
	}
	for _, c := range categories {
		if !c.Active || c.ID == selfID {
			continue
		}
		if domain.NormalizeName(c.Name) == key {
			return &FieldError{Field: "name", Kind: ErrRange, Detail: fmt.Sprintf("category %q already exists", c.Name)}
		}
	}
	return nil
}

// deleteCategory deactivates the category and clears every reference to it,
// all inside one transaction, so no entity is left pointing at a dead
// category.
func (e *Engine) deleteCategory(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeCategoryParams(raw)
	if err != nil {
		return Result{}, err
	}
	ref := p.ID.Or(p.Name.Or(""))
	if ref == "" {
		return Result{}, &FieldError{Field: "id", Kind: ErrRequiredField, Detail: "id or name required"}
	}
	cat, err := e.lookupCategory(ctx, ref)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	err = e.store.Transact(ctx, func(s Store) error {
		events, err := s.ListEvents(ctx)
		if err != nil {
			return err
		}
		for _, ev := range events {
			if ev.CategoryID != cat.ID {
				continue
			}
			ev.CategoryID = ""
			ev.Touch(now)
			if err := s.UpdateEvent(ctx, ev); err != nil {
				return err
			}
		}
		tasks, err := s.ListTasks(ctx)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			if t.CategoryID != cat.ID {
				continue
			}
			t.CategoryID = ""
			t.Touch(now)
			if err := s.UpdateTask(ctx, t); err != nil {
				return err
			}
		}
		habits, err := s.ListHabits(ctx)
		if err != nil {
			return err
		}
		for _, h := range habits {
			if h.CategoryID != cat.ID {
				continue
			}
			h.CategoryID = ""
			h.UpdatedAt = now.UTC()
			if err := s.UpdateHabit(ctx, h); err != nil {
				return err
			}
		}
		goals, err := s.ListGoals(ctx)
		if err != nil {
			return err
		}
		for _, g := range goals {
			if g.CategoryID != cat.ID {
				continue
			}
			g.CategoryID = ""
			g.Touch(now)
			if err := s.UpdateGoal(ctx, g); err != nil {
				return err
			}
		}
		cat.Deactivate(now)
		return s.UpdateCategory(ctx, cat)
	})
	if err != nil {
		return Result{}, storeErr("category delete", err)
	}
	return okID(fmt.Sprintf("Deleted category %q", cat.Name), cat.ID), nil
}

func (e *Engine) listCategories(ctx context.Context, raw map[string]any) (Result, error) {
	query, err := stringField(raw, "query")
	if err != nil {
		return Result{}, err
	}
	categories, err := e.store.ListCategories(ctx)
	if err != nil {
		return Result{}, storeErr("category list", err)
	}
	items := make([]map[string]any, 0, len(categories))
	for _, c := range categories {
		if !c.Active {
			continue
		}
		if q, ok := query.Value(); ok && !matchesQuery(q, c.Name) {
			continue
		}
		items = append(items, categoryItem(c))
	}
	return okItems(fmt.Sprintf("Found %d categories", len(items)), items), nil
}

// categoryItem renders one category for result payloads.
func categoryItem(c domain.Category) map[string]any {
	item := map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"sortOrder": c.SortOrder,
	}
	if c.Color != "" {
		item["color"] = c.Color
	}
	if c.Icon != "" {
		item["icon"] = c.Icon
	}
	return item
}
