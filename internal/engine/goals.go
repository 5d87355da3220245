package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// executeGoal routes one goal action.
func (e *Engine) executeGoal(ctx context.Context, action string, raw map[string]any) (Result, error) {
	switch action {
	case "create":
		return e.createGoal(ctx, raw)
	case "update":
		return e.updateGoal(ctx, raw)
	case "delete":
		return e.deleteGoal(ctx, raw)
	case "list", "search":
		return e.listGoals(ctx, raw)
	case "progress":
		return e.progressGoal(ctx, raw)
	default:
		return Result{}, &UnsupportedError{Entity: "goal", Action: action}
	}
}

// checkGoalHabits verifies every linked habit exists.
func (e *Engine) checkGoalHabits(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := e.store.GetHabit(ctx, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFoundErr("habit", id)
			}
			return storeErr("habit lookup", err)
		}
	}
	return nil
}

func (e *Engine) createGoal(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeGoalParams(raw)
	if err != nil {
		return Result{}, err
	}
	title, err := RequireNonEmpty("title", p.Title)
	if err != nil {
		return Result{}, err
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, "")
	if err != nil {
		return Result{}, err
	}
	habits, _ := p.Habits.Value()
	if err := e.checkGoalHabits(ctx, habits); err != nil {
		return Result{}, err
	}
	milestones := p.Milestones
	for i := range milestones {
		if milestones[i].ID == "" {
			milestones[i].ID = e.idGen()
		}
	}
	var targetDate *time.Time
	if d, ok := p.TargetDate.Value(); ok {
		targetDate = &d
	}
	goal, err := domain.NewGoal(domain.GoalInput{
		ID:          e.idGen(),
		Title:       title,
		Kind:        domain.GoalKind(p.Kind.Or("")),
		TargetValue: p.Target.Or(0),
		TargetDate:  targetDate,
		Milestones:  milestones,
		HabitIDs:    habits,
		CategoryID:  categoryID,
	}, e.clock())
	if err != nil {
		return Result{}, goalFieldErr(err)
	}
	if err := e.store.CreateGoal(ctx, goal); err != nil {
		return Result{}, storeErr("goal create", err)
	}
	return okID(fmt.Sprintf("Created goal %q", goal.Title), goal.ID), nil
}

// goalFieldErr maps a domain validation failure onto the offending field.
func goalFieldErr(err error) error {
	switch err {
	case domain.ErrInvalidGoalKind:
		return &FieldError{Field: "type", Kind: ErrRange, Detail: "unknown goal type"}
	case domain.ErrInvalidTarget:
		return &FieldError{Field: "target", Kind: ErrRange, Detail: "numeric goals need a positive target"}
	case domain.ErrInvalidTitle:
		return &FieldError{Field: "title", Kind: ErrRequiredField}
	default:
		return err
	}
}

func (e *Engine) updateGoal(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeGoalParams(raw)
	if err != nil {
		return Result{}, err
	}
	g, err := e.resolveGoal(ctx, p.ID, p.Title)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	if _, hasID := p.ID.Value(); hasID {
		if title, hasTitle := p.Title.Value(); hasTitle {
			if err := g.Rename(title, now); err != nil {
				return Result{}, &FieldError{Field: "title", Kind: ErrRequiredField}
			}
		}
	}
	if kind, ok := p.Kind.Value(); ok {
		k := domain.GoalKind(kind)
		switch k {
		case domain.GoalMilestone, domain.GoalNumeric, domain.GoalHabit, domain.GoalProject:
			g.Kind = k
		default:
			return Result{}, &FieldError{Field: "type", Kind: ErrRange, Detail: "unknown goal type"}
		}
	}
	if target, ok := p.Target.Value(); ok {
		g.TargetValue = target
	}
	if g.Kind == domain.GoalNumeric && g.TargetValue <= 0 {
		return Result{}, &FieldError{Field: "target", Kind: ErrRange, Detail: "numeric goals need a positive target"}
	}
	if p.TargetDate.Present() {
		if d, ok := p.TargetDate.Value(); ok {
			td := d.UTC()
			g.TargetDate = &td
		} else {
			g.TargetDate = nil
		}
	}
	if len(p.Milestones) > 0 {
		for i := range p.Milestones {
			if p.Milestones[i].ID == "" {
				p.Milestones[i].ID = e.idGen()
			}
		}
		g.Milestones = p.Milestones
	}
	if habits, ok := p.Habits.Value(); ok {
		if err := e.checkGoalHabits(ctx, habits); err != nil {
			return Result{}, err
		}
		g.HabitIDs = habits
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, g.CategoryID)
	if err != nil {
		return Result{}, err
	}
	g.CategoryID = categoryID
	g.Touch(now)
	if err := e.store.UpdateGoal(ctx, g); err != nil {
		return Result{}, storeErr("goal update", err)
	}
	return okID(fmt.Sprintf("Updated goal %q", g.Title), g.ID), nil
}

func (e *Engine) deleteGoal(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeGoalParams(raw)
	if err != nil {
		return Result{}, err
	}
	g, err := e.resolveGoal(ctx, p.ID, p.Title)
	if err != nil {
		return Result{}, err
	}
	if err := e.store.DeleteGoal(ctx, g.ID); err != nil {
		return Result{}, storeErr("goal delete", err)
	}
	return okID(fmt.Sprintf("Deleted goal %q", g.Title), g.ID), nil
}

func (e *Engine) listGoals(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeGoalParams(raw)
	if err != nil {
		return Result{}, err
	}
	query, err := stringField(raw, "query")
	if err != nil {
		return Result{}, err
	}
	goals, err := e.store.ListGoals(ctx)
	if err != nil {
		return Result{}, storeErr("goal list", err)
	}
	categoryID := ""
	if ref, ok := p.Category.Value(); ok {
		cat, err := e.lookupCategory(ctx, ref)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return Result{}, err
			}
			return okItems("Found 0 goals", nil), nil
		}
		categoryID = cat.ID
	}
	items := make([]map[string]any, 0, len(goals))
	for _, g := range goals {
		if categoryID != "" && g.CategoryID != categoryID {
			continue
		}
		if q, ok := query.Value(); ok && !matchesQuery(q, g.Title) {
			continue
		}
		items = append(items, goalItem(g))
	}
	return okItems(fmt.Sprintf("Found %d goals", len(items)), items), nil
}

// progressGoal advances a goal, either numerically or by completing a
// milestone. Completion is monotonic.
func (e *Engine) progressGoal(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeGoalParams(raw)
	if err != nil {
		return Result{}, err
	}
	g, err := e.resolveGoal(ctx, p.ID, p.Title)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	advanced := false
	if ref, ok := p.Milestone.Value(); ok {
		if !g.CompleteMilestone(ref, now) {
			matched := false
			for i := range g.Milestones {
				if domain.NormalizeName(g.Milestones[i].Title) == domain.NormalizeName(ref) {
					g.CompleteMilestone(g.Milestones[i].ID, now)
					matched = true
					break
				}
			}
			if !matched {
				return Result{}, notFoundErr("milestone", ref)
			}
		}
		advanced = true
	}
	if current, ok := p.Current.Value(); ok {
		g.SetProgress(current, now)
		advanced = true
	} else if delta, ok := p.Delta.Value(); ok {
		g.SetProgress(g.CurrentValue+delta, now)
		advanced = true
	}
	if !advanced {
		return Result{}, &FieldError{Field: "current", Kind: ErrRequiredField, Detail: "progress needs current, delta, or milestone"}
	}
	if err := e.store.UpdateGoal(ctx, g); err != nil {
		return Result{}, storeErr("goal update", err)
	}
	return okID(fmt.Sprintf("Goal %q at %.0f%%", g.Title, g.Progress()*100), g.ID), nil
}

// goalItem renders one goal for result payloads.
func goalItem(g domain.Goal) map[string]any {
	item := map[string]any{
		"id":       g.ID,
		"title":    g.Title,
		"type":     string(g.Kind),
		"progress": g.Progress(),
	}
	if g.TargetValue > 0 {
		item["target"] = g.TargetValue
		item["current"] = g.CurrentValue
	}
	if g.TargetDate != nil {
		item["targetDate"] = g.TargetDate.Format(time.RFC3339)
	}
	if len(g.Milestones) > 0 {
		ms := make([]map[string]any, 0, len(g.Milestones))
		for _, m := range g.Milestones {
			ms = append(ms, map[string]any{"id": m.ID, "title": m.Title, "done": m.Done})
		}
		item["milestones"] = ms
	}
	if len(g.HabitIDs) > 0 {
		item["habits"] = g.HabitIDs
	}
	if g.CategoryID != "" {
		item["categoryId"] = g.CategoryID
	}
	if g.CompletedAt != nil {
		item["completedAt"] = g.CompletedAt.Format(time.RFC3339)
	}
	return item
}
