package engine

import (
	"errors"
	"testing"
)

// TestGoalCreateNumericNeedsTarget verifies numeric goals reject a missing
// or non-positive target.
func TestGoalCreateNumericNeedsTarget(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	_, err := runAction(t, eng, "goal", "create", map[string]any{"title": "Read books", "type": "numeric"})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "target" {
		t.Fatalf("err = %v, want FieldError on target", err)
	}
	res := mustRun(t, eng, "goal", "create", map[string]any{
		"title":  "Read books",
		"type":   "numeric",
		"target": 12,
	})
	if res.ID == "" {
		t.Fatal("expected created goal id")
	}
}

// TestGoalProgressNumeric verifies absolute and delta progress and that
// completion is monotonic.
func TestGoalProgressNumeric(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	goal := mustRun(t, eng, "goal", "create", map[string]any{
		"title":  "Save money",
		"type":   "numeric",
		"target": 10,
	})

	res := mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "current": 4})
	if res.Message != `Goal "Save money" at 40%` {
		t.Fatalf("Message = %q", res.Message)
	}

	mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "delta": 6})
	g := store.goals[goal.ID]
	if g.CurrentValue != 10 {
		t.Fatalf("CurrentValue = %v, want 10", g.CurrentValue)
	}
	if g.CompletedAt == nil {
		t.Fatal("reaching the target must stamp completion")
	}
	stamp := *g.CompletedAt

	res = mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "current": 2})
	g = store.goals[goal.ID]
	if g.CompletedAt == nil || !g.CompletedAt.Equal(stamp) {
		t.Fatal("completion must survive a later lower value")
	}
	if res.Message != `Goal "Save money" at 100%` {
		t.Fatalf("Message = %q, want completion pinned at 100%%", res.Message)
	}
}

// TestGoalProgressMilestone verifies milestone completion by id and by
// normalized title, and full completion when the last milestone lands.
func TestGoalProgressMilestone(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	goal := mustRun(t, eng, "goal", "create", map[string]any{
		"title":      "Write book",
		"type":       "milestone",
		"milestones": []any{"Draft", "Edit", "Publish"},
	})

	mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "milestone": "  dRaFt "})
	g := store.goals[goal.ID]
	if !g.Milestones[0].Done {
		t.Fatal("expected Draft marked done via title match")
	}
	if g.Milestones[1].Done || g.Milestones[2].Done {
		t.Fatal("only the named milestone may be marked")
	}

	mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "milestone": g.Milestones[1].ID})
	mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "milestone": "Publish"})
	g = store.goals[goal.ID]
	if g.CompletedAt == nil {
		t.Fatal("completing every milestone must stamp the goal")
	}
	if g.Progress() != 1 {
		t.Fatalf("Progress = %v, want 1", g.Progress())
	}

	_, err := runAction(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "milestone": "Sequel"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for unknown milestone", err)
	}
}

// TestGoalProgressRequiresInput verifies an empty progress payload fails.
func TestGoalProgressRequiresInput(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	goal := mustRun(t, eng, "goal", "create", map[string]any{"title": "Drift", "type": "project"})
	_, err := runAction(t, eng, "goal", "progress", map[string]any{"id": goal.ID})
	if !errors.Is(err, ErrRequiredField) {
		t.Fatalf("err = %v, want ErrRequiredField", err)
	}
}

// TestGoalHabitLinksChecked verifies linked habits must exist.
func TestGoalHabitLinksChecked(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	_, err := runAction(t, eng, "goal", "create", map[string]any{
		"title":  "Consistency",
		"type":   "habit",
		"habits": []any{"no-such-habit"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	habit := mustRun(t, eng, "habit", "create", map[string]any{"name": "Run"})
	res := mustRun(t, eng, "goal", "create", map[string]any{
		"title":  "Consistency",
		"type":   "habit",
		"habits": []any{habit.ID},
	})
	g := store.goals[res.ID]
	if len(g.HabitIDs) != 1 || g.HabitIDs[0] != habit.ID {
		t.Fatalf("HabitIDs = %v, want [%s]", g.HabitIDs, habit.ID)
	}
}

// TestGoalUpdateTargetDateTriState verifies target dates set and clear.
func TestGoalUpdateTargetDateTriState(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	goal := mustRun(t, eng, "goal", "create", map[string]any{
		"title":      "Marathon",
		"type":       "numeric",
		"target":     42,
		"targetDate": "2026-10-01",
	})
	if store.goals[goal.ID].TargetDate == nil {
		t.Fatal("expected target date set")
	}
	mustRun(t, eng, "goal", "update", map[string]any{"id": goal.ID, "targetDate": nil})
	if store.goals[goal.ID].TargetDate != nil {
		t.Fatal("null target date must clear")
	}
}

// TestGoalListItemsCarryProgress verifies the listed shape exposes derived
// progress and milestone states.
func TestGoalListItemsCarryProgress(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	goal := mustRun(t, eng, "goal", "create", map[string]any{
		"title":      "Renovate",
		"type":       "project",
		"milestones": []any{"Plan", "Build"},
	})
	mustRun(t, eng, "goal", "progress", map[string]any{"id": goal.ID, "milestone": "Plan"})

	res := mustRun(t, eng, "goal", "list", nil)
	if *res.MatchedCount != 1 {
		t.Fatalf("MatchedCount = %d, want 1", *res.MatchedCount)
	}
	if res.Items[0]["progress"] != 0.5 {
		t.Fatalf("progress = %v, want 0.5", res.Items[0]["progress"])
	}
	milestones, ok := res.Items[0]["milestones"].([]map[string]any)
	if !ok || len(milestones) != 2 {
		t.Fatalf("milestones = %v, want 2 entries", res.Items[0]["milestones"])
	}
	if milestones[0]["done"] != true || milestones[1]["done"] != false {
		t.Fatalf("milestone done flags = %v", milestones)
	}
}

// TestGoalUpdateKindChange verifies a type change is applied and re-checks
// the numeric target requirement.
func TestGoalUpdateKindChange(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "goal", "create", map[string]any{
		"title":      "Ship v2",
		"type":       "milestone",
		"milestones": []any{"Draft", "Review"},
	})

	_, err := runAction(t, eng, "goal", "update", map[string]any{"id": res.ID, "type": "numeric"})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "target" {
		t.Fatalf("err = %v, want FieldError on target", err)
	}
	if g := store.goals[res.ID]; string(g.Kind) != "milestone" {
		t.Fatalf("rejected update changed kind to %q", g.Kind)
	}

	_, err = runAction(t, eng, "goal", "update", map[string]any{"id": res.ID, "type": "sprint"})
	if !errors.As(err, &fe) || fe.Field != "type" {
		t.Fatalf("err = %v, want FieldError on type", err)
	}

	mustRun(t, eng, "goal", "update", map[string]any{"id": res.ID, "type": "numeric", "target": 100})
	g := store.goals[res.ID]
	if string(g.Kind) != "numeric" || g.TargetValue != 100 {
		t.Fatalf("kind/target = %q/%v, want numeric/100", g.Kind, g.TargetValue)
	}
}

// TestGoalListSurfacesStoreFailure verifies a category lookup failure in a
// filtered list is reported instead of masquerading as an empty result.
func TestGoalListSurfacesStoreFailure(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	mustRun(t, eng, "goal", "create", map[string]any{"title": "Save money", "type": "project"})
	store.failList = errors.New("disk io failure")

	_, err := runAction(t, eng, "goal", "list", map[string]any{"category": "work"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want persistence failure", err)
	}
}
