package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// executeTask routes one task action.
func (e *Engine) executeTask(ctx context.Context, action string, raw map[string]any) (Result, error) {
	switch action {
	case "create":
		return e.createTasks(ctx, raw)
	case "update":
		return e.updateTasks(ctx, raw)
	case "delete":
		return e.deleteTasks(ctx, raw)
	case "list", "search":
		return e.listTasks(ctx, raw)
	case "complete":
		return e.completeTask(ctx, raw)
	default:
		return Result{}, &UnsupportedError{Entity: "task", Action: action}
	}
}

// checkTaskParent verifies a proposed parent exists and walking its ancestor
// chain never reaches the task itself.
func (e *Engine) checkTaskParent(ctx context.Context, taskID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == taskID {
		return &FieldError{Field: "parentId", Kind: ErrRange, Detail: "task cannot be its own parent"}
	}
	tasks, err := e.taskSnapshot(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	if _, ok := byID[parentID]; !ok {
		return notFoundErr("task", parentID)
	}
	// The walk is bounded by the snapshot size, so even corrupt chains end.
	current := parentID
	for range tasks {
		parent, ok := byID[current]
		if !ok || parent.ParentID == "" {
			return nil
		}
		if parent.ParentID == taskID {
			return &FieldError{Field: "parentId", Kind: ErrRange, Detail: "parent assignment forms a cycle"}
		}
		current = parent.ParentID
	}
	return nil
}

// buildTask decodes, validates, and resolves one task payload.
func (e *Engine) buildTask(ctx context.Context, m map[string]any) (domain.Task, error) {
	p, err := decodeTaskParams(m)
	if err != nil {
		return domain.Task{}, err
	}
	title, err := RequireNonEmpty("title", p.Title)
	if err != nil {
		return domain.Task{}, err
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, "")
	if err != nil {
		return domain.Task{}, err
	}
	var due *time.Time
	if d, ok := p.Due.Value(); ok {
		due = &d
	}
	eventID := p.Event.Or("")
	if eventID != "" {
		if _, err := e.store.GetEvent(ctx, eventID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return domain.Task{}, notFoundErr("event", eventID)
			}
			return domain.Task{}, storeErr("event lookup", err)
		}
	}
	id := e.idGen()
	parentID := p.Parent.Or("")
	if err := e.checkTaskParent(ctx, id, parentID); err != nil {
		return domain.Task{}, err
	}
	tags, _ := p.Tags.Value()
	return domain.NewTask(domain.TaskInput{
		ID:         id,
		Title:      title,
		DueAt:      due,
		Priority:   domain.Priority(p.Priority.Or("")),
		CategoryID: categoryID,
		Tags:       tags,
		Notes:      p.Notes.Or(""),
		EventID:    eventID,
		ParentID:   parentID,
	}, e.clock())
}

// createTasks creates one task, or a batch atomically when items are given.
func (e *Engine) createTasks(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}
	if len(bp.Items) == 0 {
		task, err := e.buildTask(ctx, raw)
		if err != nil {
			return Result{}, err
		}
		if err := e.store.CreateTask(ctx, task); err != nil {
			return Result{}, storeErr("task create", err)
		}
		return okID(fmt.Sprintf("Created task %q", task.Title), task.ID), nil
	}

	tasks := make([]domain.Task, 0, len(bp.Items))
	for i, item := range bp.Items {
		task, err := e.buildTask(ctx, item)
		if err != nil {
			return Result{}, &FieldError{Field: fmt.Sprintf("items[%d]", i), Kind: ErrDecode, Detail: err.Error()}
		}
		tasks = append(tasks, task)
	}
	muts := make([]func(Store) error, 0, len(tasks))
	for _, task := range tasks {
		t := task
		muts = append(muts, func(s Store) error { return s.CreateTask(ctx, t) })
	}
	if err := e.createBatch(ctx, muts); err != nil {
		return Result{}, err
	}
	return okCounts(fmt.Sprintf("Created %d tasks", len(tasks)), len(tasks), len(tasks)), nil
}

// taskTemplateTarget snapshots one task for contextual expansion.
func (e *Engine) taskTemplateTarget(ctx context.Context, t domain.Task, index, total int) TemplateTarget {
	categoryName := ""
	if t.CategoryID != "" {
		if cat, err := e.store.GetCategory(ctx, t.CategoryID); err == nil {
			categoryName = cat.Name
		}
	}
	return TemplateTarget{
		Label:    t.Title,
		Kind:     "task",
		Category: categoryName,
		Priority: string(t.Priority),
		Index:    index,
		Total:    total,
	}
}

// applyTaskParams merges a tri-state payload into one task, expanding
// contextual markers against the target snapshot.
func (e *Engine) applyTaskParams(ctx context.Context, t *domain.Task, p taskParams, tt TemplateTarget) error {
	now := e.clock()
	if title, hasTitle := p.Title.Value(); hasTitle {
		if err := t.Rename(title, now); err != nil {
			return &FieldError{Field: "title", Kind: ErrRequiredField}
		}
	}
	if p.Due.Present() {
		if d, ok := p.Due.Value(); ok {
			due := d
			t.DueAt = &due
		} else {
			t.DueAt = nil
		}
	}
	if p.Priority.Present() {
		priority := domain.Priority(p.Priority.Or(string(domain.PriorityMedium)))
		if err := t.SetPriority(priority, now); err != nil {
			return &FieldError{Field: "priority", Kind: ErrRange, Detail: string(priority)}
		}
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, t.CategoryID)
	if err != nil {
		return err
	}
	t.CategoryID = categoryID
	if p.Tags.Present() {
		tags, _ := p.Tags.Value()
		expanded := make([]string, 0, len(tags))
		for _, tag := range tags {
			expanded = append(expanded, ExpandTemplate(tag, FieldTags, tt))
		}
		t.Tags = domain.NormalizeTags(expanded)
	}
	if p.Notes.Present() {
		t.Notes = ExpandTemplate(p.Notes.Or(""), FieldNotes, tt)
	}
	if p.Event.Present() {
		eventID := p.Event.Or("")
		if eventID != "" {
			if _, err := e.store.GetEvent(ctx, eventID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return notFoundErr("event", eventID)
				}
				return storeErr("event lookup", err)
			}
		}
		t.EventID = eventID
	}
	if p.Parent.Present() {
		parentID := p.Parent.Or("")
		if err := e.checkTaskParent(ctx, t.ID, parentID); err != nil {
			return err
		}
		if err := t.Reparent(parentID, now); err != nil {
			return &FieldError{Field: "parentId", Kind: ErrRange, Detail: err.Error()}
		}
	}
	if completed, hasCompleted := p.Completed.Value(); hasCompleted {
		t.SetCompleted(completed, now)
	}
	t.Touch(now)
	return nil
}

// updateTasks updates one task or a planned batch of tasks.
func (e *Engine) updateTasks(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}

	switch bp.mode() {
	case selectItems:
		matched := len(bp.Items)
		updated := e.applyEach(ctx, matched, func(i int, s Store) error {
			p, err := decodeTaskParams(bp.Items[i])
			if err != nil {
				return err
			}
			t, err := e.resolveTask(ctx, p.ID, p.Title)
			if err != nil {
				return err
			}
			tt := e.taskTemplateTarget(ctx, t, i+1, matched)
			if err := e.applyTaskParams(ctx, &t, p, tt); err != nil {
				return err
			}
			return s.UpdateTask(ctx, t)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d tasks", updated, matched), matched, updated), nil

	case selectBroadcast:
		snapshot, err := e.taskSnapshot(ctx)
		if err != nil {
			return Result{}, err
		}
		targets, err := e.filterTasks(ctx, snapshot, bp.Filter)
		if err != nil {
			return Result{}, err
		}
		if err := bp.guardFor(selectBroadcast).Allow(len(targets)); err != nil {
			return Result{}, err
		}
		p, err := decodeTaskParams(raw)
		if err != nil {
			return Result{}, err
		}
		updated := e.applyEach(ctx, len(targets), func(i int, s Store) error {
			t := targets[i]
			tt := e.taskTemplateTarget(ctx, t, i+1, len(targets))
			broadcast := p
			broadcast.ID = Field[string]{}
			broadcast.Title = Field[string]{}
			if err := e.applyTaskParams(ctx, &t, broadcast, tt); err != nil {
				return err
			}
			return s.UpdateTask(ctx, t)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d tasks", updated, len(targets)), len(targets), updated), nil

	case selectIDs:
		p, err := decodeTaskParams(raw)
		if err != nil {
			return Result{}, err
		}
		matched := len(bp.IDs)
		updated := e.applyEach(ctx, matched, func(i int, s Store) error {
			t, err := e.resolveTask(ctx, FieldOf(bp.IDs[i]), Field[string]{})
			if err != nil {
				return err
			}
			tt := e.taskTemplateTarget(ctx, t, i+1, matched)
			payload := p
			payload.ID = Field[string]{}
			if err := e.applyTaskParams(ctx, &t, payload, tt); err != nil {
				return err
			}
			return s.UpdateTask(ctx, t)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d tasks", updated, matched), matched, updated), nil

	default:
		p, err := decodeTaskParams(raw)
		if err != nil {
			return Result{}, err
		}
		t, err := e.resolveTask(ctx, p.ID, p.Title)
		if err != nil {
			return Result{}, err
		}
		tt := e.taskTemplateTarget(ctx, t, 1, 1)
		payload := p
		payload.ID = Field[string]{}
		if _, hasID := p.ID.Value(); !hasID {
			payload.Title = Field[string]{}
		}
		if err := e.applyTaskParams(ctx, &t, payload, tt); err != nil {
			return Result{}, err
		}
		if err := e.store.UpdateTask(ctx, t); err != nil {
			return Result{}, storeErr("task update", err)
		}
		return okID(fmt.Sprintf("Updated task %q", t.Title), t.ID), nil
	}
}

// deleteTasks deletes one task or a guarded batch of tasks.
func (e *Engine) deleteTasks(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}

	switch bp.mode() {
	case selectBroadcast:
		snapshot, err := e.taskSnapshot(ctx)
		if err != nil {
			return Result{}, err
		}
		targets, err := e.filterTasks(ctx, snapshot, bp.Filter)
		if err != nil {
			return Result{}, err
		}
		guard := Guard{ScopeConfirmed: bp.DeleteAll, ActionConfirmed: bp.Confirm}
		if err := guard.Allow(len(targets)); err != nil {
			return Result{}, err
		}
		deleted := e.applyEach(ctx, len(targets), func(i int, s Store) error {
			return s.DeleteTask(ctx, targets[i].ID)
		})
		return okCounts(fmt.Sprintf("Deleted %d of %d tasks", deleted, len(targets)), len(targets), deleted), nil

	case selectIDs:
		if err := bp.guardFor(selectIDs).Allow(len(bp.IDs)); err != nil {
			return Result{}, err
		}
		deleted := e.applyEach(ctx, len(bp.IDs), func(i int, s Store) error {
			return s.DeleteTask(ctx, bp.IDs[i])
		})
		return okCounts(fmt.Sprintf("Deleted %d of %d tasks", deleted, len(bp.IDs)), len(bp.IDs), deleted), nil

	default:
		p, err := decodeTaskParams(raw)
		if err != nil {
			return Result{}, err
		}
		t, err := e.resolveTask(ctx, p.ID, p.Title)
		if err != nil {
			return Result{}, err
		}
		if err := e.store.DeleteTask(ctx, t.ID); err != nil {
			return Result{}, storeErr("task delete", err)
		}
		return okID(fmt.Sprintf("Deleted task %q", t.Title), t.ID), nil
	}
}

// listTasks lists or searches tasks against a consistent snapshot.
func (e *Engine) listTasks(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}
	filter := bp.Filter
	if !filter.Query.Present() {
		if q, err := stringField(raw, "query"); err == nil && q.Present() {
			filter.Query = q
		}
	}
	snapshot, err := e.taskSnapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	matches, err := e.filterTasks(ctx, snapshot, filter)
	if err != nil {
		return Result{}, err
	}
	items := make([]map[string]any, 0, len(matches))
	for _, t := range matches {
		items = append(items, taskItem(t))
	}
	return okItems(fmt.Sprintf("Found %d tasks", len(items)), items), nil
}

// completeTask marks one task completed, stamping the completion time.
func (e *Engine) completeTask(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeTaskParams(raw)
	if err != nil {
		return Result{}, err
	}
	t, err := e.resolveTask(ctx, p.ID, p.Title)
	if err != nil {
		return Result{}, err
	}
	t.SetCompleted(p.Completed.Or(true), e.clock())
	if err := e.store.UpdateTask(ctx, t); err != nil {
		return Result{}, storeErr("task update", err)
	}
	return okID(fmt.Sprintf("Completed task %q", t.Title), t.ID), nil
}

// taskItem renders one task for result payloads.
func taskItem(t domain.Task) map[string]any {
	item := map[string]any{
		"id":       t.ID,
		"title":    t.Title,
		"priority": string(t.Priority),
	}
	if t.DueAt != nil {
		item["dueDate"] = t.DueAt.Format(time.RFC3339)
	}
	if t.CategoryID != "" {
		item["categoryId"] = t.CategoryID
	}
	if len(t.Tags) > 0 {
		item["tags"] = t.Tags
	}
	if t.Notes != "" {
		item["notes"] = t.Notes
	}
	if t.EventID != "" {
		item["eventId"] = t.EventID
	}
	if t.ParentID != "" {
		item["parentId"] = t.ParentID
	}
	if t.Completed {
		item["completed"] = true
		if t.CompletedAt != nil {
			item["completedAt"] = t.CompletedAt.Format(time.RFC3339)
		}
	}
	return item
}
