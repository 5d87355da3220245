package engine

import (
	"errors"
	"testing"
	"time"
)

// TestHabitCreateDefaults verifies binary/daily defaulting.
func TestHabitCreateDefaults(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{"name": "Read"})
	h := store.habits[res.ID]
	if string(h.Tracking) != "binary" {
		t.Fatalf("Tracking = %q, want binary", h.Tracking)
	}
	if string(h.Frequency) != "daily" {
		t.Fatalf("Frequency = %q, want daily", h.Frequency)
	}
	if !h.Active {
		t.Fatal("new habits must start active")
	}
}

// TestHabitCreateValidation verifies field-mapped domain failures.
func TestHabitCreateValidation(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := runAction(t, eng, "habit", "create", map[string]any{"name": "Run", "type": "telepathic"})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "type" {
		t.Fatalf("err = %v, want FieldError on type", err)
	}

	_, err = runAction(t, eng, "habit", "create", map[string]any{"name": "Run", "frequency": "custom"})
	if !errors.As(err, &fe) || fe.Field != "frequency" {
		t.Fatalf("err = %v, want FieldError on frequency", err)
	}

	_, err = runAction(t, eng, "habit", "create", map[string]any{"name": "Run", "target": -5})
	if !errors.As(err, &fe) || fe.Field != "target" {
		t.Fatalf("err = %v, want FieldError on target", err)
	}
}

// TestHabitCustomDaysNormalized verifies custom-frequency days are deduped
// and sorted.
func TestHabitCustomDaysNormalized(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{
		"name":      "Gym",
		"frequency": "custom",
		"days":      []any{5, 1, 3, 1},
	})
	h := store.habits[res.ID]
	want := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	if len(h.CustomDays) != len(want) {
		t.Fatalf("CustomDays = %v, want %v", h.CustomDays, want)
	}
	for i, d := range want {
		if h.CustomDays[i] != d {
			t.Fatalf("CustomDays = %v, want %v", h.CustomDays, want)
		}
	}
}

// TestHabitLogStreaks verifies streak progression: same day is a no-op,
// consecutive days extend, gaps reset, best never falls.
func TestHabitLogStreaks(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{"name": "Meditate"})
	logDay := func(day string) Result {
		return mustRun(t, eng, "habit", "log", map[string]any{"id": res.ID, "date": day})
	}

	logDay("2026-04-01")
	if h := store.habits[res.ID]; h.CurrentStreak != 1 || h.BestStreak != 1 {
		t.Fatalf("streaks = %d/%d, want 1/1", h.CurrentStreak, h.BestStreak)
	}
	logDay("2026-04-01")
	if h := store.habits[res.ID]; h.CurrentStreak != 1 {
		t.Fatalf("same-day relog streak = %d, want 1", h.CurrentStreak)
	}
	logDay("2026-04-02")
	logDay("2026-04-03")
	if h := store.habits[res.ID]; h.CurrentStreak != 3 || h.BestStreak != 3 {
		t.Fatalf("streaks = %d/%d, want 3/3", h.CurrentStreak, h.BestStreak)
	}
	out := logDay("2026-04-10")
	h := store.habits[res.ID]
	if h.CurrentStreak != 1 {
		t.Fatalf("streak after gap = %d, want 1", h.CurrentStreak)
	}
	if h.BestStreak != 3 {
		t.Fatalf("best streak = %d, want 3 preserved", h.BestStreak)
	}
	if out.Message != `Logged habit "Meditate" for 2026-04-10 (streak 1)` {
		t.Fatalf("Message = %q", out.Message)
	}
}

// TestHabitLogDefaultsToToday verifies the clock supplies the civil day when
// no date is given.
func TestHabitLogDefaultsToToday(t *testing.T) {
	eng, store, clk := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{"name": "Walk"})
	mustRun(t, eng, "habit", "log", map[string]any{"id": res.ID})
	want := clk.now.UTC().Format(time.DateOnly)
	if h := store.habits[res.ID]; h.LastLoggedDay != want {
		t.Fatalf("LastLoggedDay = %q, want %q", h.LastLoggedDay, want)
	}
}

// TestHabitListFilters verifies the paused filter and that an unknown
// category reference selects nothing instead of failing.
func TestHabitListFilters(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	mustRun(t, eng, "habit", "create", map[string]any{"name": "Read"})
	paused := mustRun(t, eng, "habit", "create", map[string]any{"name": "Stretch"})
	mustRun(t, eng, "habit", "update", map[string]any{"id": paused.ID, "paused": true})

	res := mustRun(t, eng, "habit", "list", map[string]any{"paused": true})
	if *res.MatchedCount != 1 || res.Items[0]["name"] != "Stretch" {
		t.Fatalf("paused filter items = %v", res.Items)
	}

	res = mustRun(t, eng, "habit", "list", map[string]any{"category": "No Such Category"})
	if *res.MatchedCount != 0 {
		t.Fatalf("MatchedCount = %d, want 0 for unknown category", *res.MatchedCount)
	}
}

// TestHabitUpdateFrequencyAndDays verifies combined frequency validation.
func TestHabitUpdateFrequencyAndDays(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{"name": "Journal"})

	_, err := runAction(t, eng, "habit", "update", map[string]any{"id": res.ID, "frequency": "custom"})
	if !errors.Is(err, ErrRequiredField) {
		t.Fatalf("err = %v, want ErrRequiredField for custom without days", err)
	}

	mustRun(t, eng, "habit", "update", map[string]any{
		"id":        res.ID,
		"frequency": "custom",
		"days":      []any{0, 6},
	})
	h := store.habits[res.ID]
	if string(h.Frequency) != "custom" || len(h.CustomDays) != 2 {
		t.Fatalf("habit = %+v, want custom weekend frequency", h)
	}
}

// TestHabitDeleteByName verifies name-addressed deletion.
func TestHabitDeleteByName(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	mustRun(t, eng, "habit", "create", map[string]any{"name": "Floss"})
	res := mustRun(t, eng, "habit", "delete", map[string]any{"name": "floss"})
	if res.Message != `Deleted habit "Floss"` {
		t.Fatalf("Message = %q", res.Message)
	}
	if len(store.habits) != 0 {
		t.Fatalf("len(habits) = %d, want 0", len(store.habits))
	}
}

// TestHabitLogValueGatesStreak verifies a measured entry advances the
// streak only when it meets the habit's target, while the amount is kept
// either way.
func TestHabitLogValueGatesStreak(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{
		"name":   "Pushups",
		"type":   "quantity",
		"target": 50,
	})

	short := mustRun(t, eng, "habit", "log", map[string]any{"id": res.ID, "value": 20})
	if short.Message != `Logged habit "Pushups" for 2026-04-01 (target not met, streak 0)` {
		t.Fatalf("Message = %q", short.Message)
	}
	h := store.habits[res.ID]
	if h.CurrentStreak != 0 || h.LastLoggedDay != "" {
		t.Fatalf("short log advanced streak: %+v", h)
	}
	if h.LastValue != 20 {
		t.Fatalf("LastValue = %v, want 20", h.LastValue)
	}

	full := mustRun(t, eng, "habit", "log", map[string]any{"id": res.ID, "value": 50})
	if full.Message != `Logged habit "Pushups" for 2026-04-01 (streak 1)` {
		t.Fatalf("Message = %q", full.Message)
	}
	h = store.habits[res.ID]
	if h.CurrentStreak != 1 || h.LastValue != 50 {
		t.Fatalf("full log state = %+v", h)
	}

	_, err := runAction(t, eng, "habit", "log", map[string]any{"id": res.ID, "value": -3})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "value" {
		t.Fatalf("err = %v, want FieldError on value", err)
	}
}

// TestHabitLogWithoutValueCounts verifies a plain completion tap still
// advances the streak for measured habits.
func TestHabitLogWithoutValueCounts(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "habit", "create", map[string]any{
		"name":   "Stretch",
		"type":   "duration",
		"target": 15,
	})
	mustRun(t, eng, "habit", "log", map[string]any{"id": res.ID})
	if h := store.habits[res.ID]; h.CurrentStreak != 1 {
		t.Fatalf("CurrentStreak = %d, want 1", h.CurrentStreak)
	}
}

// TestHabitListSurfacesStoreFailure verifies a category lookup failure in a
// filtered list is reported instead of masquerading as an empty result.
func TestHabitListSurfacesStoreFailure(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	mustRun(t, eng, "habit", "create", map[string]any{"name": "Floss"})
	store.failList = errors.New("disk io failure")

	_, err := runAction(t, eng, "habit", "list", map[string]any{"category": "work"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want persistence failure", err)
	}
}
