package engine

import (
	"errors"
	"testing"
	"time"
)

// TestTaskCreateLinksEventAndParent verifies referential checks on creation.
func TestTaskCreateLinksEventAndParent(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	event := mustRun(t, eng, "event", "create", map[string]any{"title": "Launch"})
	parent := mustRun(t, eng, "task", "create", map[string]any{"title": "Prepare launch"})

	res := mustRun(t, eng, "task", "create", map[string]any{
		"title":    "Write announcement",
		"eventId":  event.ID,
		"parentId": parent.ID,
	})
	task := store.tasks[res.ID]
	if task.EventID != event.ID {
		t.Fatalf("EventID = %q, want %q", task.EventID, event.ID)
	}
	if task.ParentID != parent.ID {
		t.Fatalf("ParentID = %q, want %q", task.ParentID, parent.ID)
	}

	_, err := runAction(t, eng, "task", "create", map[string]any{
		"title":   "Orphan",
		"eventId": "missing-event",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	_, err = runAction(t, eng, "task", "create", map[string]any{
		"title":    "Orphan",
		"parentId": "missing-task",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// TestTaskParentCycleRejected verifies self-parenting and ancestor cycles
// are both rejected.
func TestTaskParentCycleRejected(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	a := mustRun(t, eng, "task", "create", map[string]any{"title": "A"})
	b := mustRun(t, eng, "task", "create", map[string]any{"title": "B", "parentId": a.ID})

	_, err := runAction(t, eng, "task", "update", map[string]any{"id": a.ID, "parentId": a.ID})
	if !errors.Is(err, ErrRange) {
		t.Fatalf("self parent err = %v, want ErrRange", err)
	}
	_, err = runAction(t, eng, "task", "update", map[string]any{"id": a.ID, "parentId": b.ID})
	if !errors.Is(err, ErrRange) {
		t.Fatalf("cycle err = %v, want ErrRange", err)
	}
	if store.tasks[a.ID].ParentID != "" {
		t.Fatal("rejected reparent must not persist")
	}
}

// TestTaskBulkUpdateResilient verifies a stale id skips without aborting the
// rest of the selection.
func TestTaskBulkUpdateResilient(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ids := make([]any, 0, 5)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		res := mustRun(t, eng, "task", "create", map[string]any{"title": title})
		ids = append(ids, res.ID)
	}
	ids = append(ids, "stale-id")

	res := mustRun(t, eng, "task", "update", map[string]any{
		"ids":      ids,
		"priority": "high",
	})
	if *res.MatchedCount != 5 || *res.UpdatedCount != 4 {
		t.Fatalf("counts = %d/%d, want 5/4", *res.MatchedCount, *res.UpdatedCount)
	}
	for _, task := range store.tasks {
		if string(task.Priority) != "high" {
			t.Fatalf("task %q priority = %q, want high", task.Title, task.Priority)
		}
	}
}

// TestTaskUpdateAutoNotes verifies {auto} derives field content from the
// entity's own title without renaming it.
func TestTaskUpdateAutoNotes(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "task", "create", map[string]any{"title": "Submit report"})
	mustRun(t, eng, "task", "update", map[string]any{
		"title": "Submit report",
		"notes": "{auto}",
	})
	task := store.tasks[res.ID]
	if task.Notes != "Notes for Submit report" {
		t.Fatalf("Notes = %q, want derived notes", task.Notes)
	}
	if task.Title != "Submit report" {
		t.Fatalf("Title = %q, want unchanged", task.Title)
	}
}

// TestTaskRenameNeedsID verifies an id-addressed update treats title as the
// new name.
func TestTaskRenameNeedsID(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "task", "create", map[string]any{"title": "Old name"})
	mustRun(t, eng, "task", "update", map[string]any{"id": res.ID, "title": "New name"})
	if store.tasks[res.ID].Title != "New name" {
		t.Fatalf("Title = %q, want New name", store.tasks[res.ID].Title)
	}
}

// TestTaskDueTriState verifies due dates set, survive, and clear on null.
func TestTaskDueTriState(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	res := mustRun(t, eng, "task", "create", map[string]any{
		"title":   "Pay rent",
		"dueDate": "2026-05-01",
	})
	task := store.tasks[res.ID]
	if task.DueAt == nil || !task.DueAt.Equal(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("DueAt = %v, want 2026-05-01 midnight UTC", task.DueAt)
	}

	mustRun(t, eng, "task", "update", map[string]any{"id": res.ID, "priority": "low"})
	if store.tasks[res.ID].DueAt == nil {
		t.Fatal("absent due field must keep the date")
	}

	mustRun(t, eng, "task", "update", map[string]any{"id": res.ID, "dueDate": nil})
	if store.tasks[res.ID].DueAt != nil {
		t.Fatal("null due field must clear the date")
	}
}

// TestTaskCompleteStampsTime verifies completion records the instant and
// reopening clears it.
func TestTaskCompleteStampsTime(t *testing.T) {
	eng, store, clk := newTestEngine(t)
	res := mustRun(t, eng, "task", "create", map[string]any{"title": "Ship it"})
	clk.advance(2 * time.Hour)

	mustRun(t, eng, "task", "complete", map[string]any{"id": res.ID})
	task := store.tasks[res.ID]
	if !task.Completed {
		t.Fatal("expected task completed")
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(clk.now) {
		t.Fatalf("CompletedAt = %v, want %v", task.CompletedAt, clk.now)
	}

	mustRun(t, eng, "task", "complete", map[string]any{"id": res.ID, "completed": false})
	task = store.tasks[res.ID]
	if task.Completed || task.CompletedAt != nil {
		t.Fatal("reopening must clear the completion stamp")
	}
}

// TestTaskListFilters verifies due-day and completion filters.
func TestTaskListFilters(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	mustRun(t, eng, "task", "create", map[string]any{"title": "Today", "dueDate": "2026-04-02"})
	mustRun(t, eng, "task", "create", map[string]any{"title": "Tomorrow", "dueDate": "2026-04-03"})
	done := mustRun(t, eng, "task", "create", map[string]any{"title": "Done", "dueDate": "2026-04-02"})
	mustRun(t, eng, "task", "complete", map[string]any{"id": done.ID})

	res := mustRun(t, eng, "task", "list", map[string]any{
		"filter": map[string]any{"date": "2026-04-02", "completed": false},
	})
	if *res.MatchedCount != 1 || res.Items[0]["title"] != "Today" {
		t.Fatalf("filtered items = %v, want only Today", res.Items)
	}
}

// TestTaskDeleteExplicitIDsNeedConfirm verifies enumerated deletes still
// require the confirm flag.
func TestTaskDeleteExplicitIDsNeedConfirm(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	a := mustRun(t, eng, "task", "create", map[string]any{"title": "A"})
	b := mustRun(t, eng, "task", "create", map[string]any{"title": "B"})

	_, err := runAction(t, eng, "task", "delete", map[string]any{"ids": []any{a.ID, b.ID}})
	if !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
	if len(store.tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2 after rejected delete", len(store.tasks))
	}

	res := mustRun(t, eng, "task", "delete", map[string]any{"ids": []any{a.ID, b.ID}, "confirm": true})
	if *res.UpdatedCount != 2 {
		t.Fatalf("UpdatedCount = %d, want 2", *res.UpdatedCount)
	}
	if len(store.tasks) != 0 {
		t.Fatalf("len(tasks) = %d, want 0", len(store.tasks))
	}
}

// TestTaskUnknownFilterCategoryUpdatesNothing verifies a broadcast update
// whose filter names a missing category touches zero tasks.
func TestTaskUnknownFilterCategoryUpdatesNothing(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	mustRun(t, eng, "task", "create", map[string]any{"title": "Untag me not"})

	res := mustRun(t, eng, "task", "update", map[string]any{
		"filter":    map[string]any{"category": "ghost"},
		"updateAll": true,
		"confirm":   true,
		"priority":  "high",
	})
	if res.MatchedCount == nil || *res.MatchedCount != 0 {
		t.Fatalf("MatchedCount = %v, want 0", res.MatchedCount)
	}
	for _, task := range store.tasks {
		if task.Priority == "high" {
			t.Fatalf("task %q was updated through an unknown category", task.Title)
		}
	}
}
