package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// executeEvent routes one event action.
func (e *Engine) executeEvent(ctx context.Context, action string, raw map[string]any) (Result, error) {
	switch action {
	case "create":
		return e.createEvents(ctx, raw)
	case "update":
		return e.updateEvents(ctx, raw)
	case "delete":
		return e.deleteEvents(ctx, raw)
	case "list", "search":
		return e.listEvents(ctx, raw)
	case "complete":
		return e.completeEvent(ctx, raw)
	default:
		return Result{}, &UnsupportedError{Entity: "event", Action: action}
	}
}

// buildEvent decodes, validates, and resolves one event payload into a
// persistable entity. Category names go through find-or-create.
func (e *Engine) buildEvent(ctx context.Context, m map[string]any) (domain.Event, error) {
	p, err := decodeEventParams(m)
	if err != nil {
		return domain.Event{}, err
	}
	title, err := RequireNonEmpty("title", p.Title)
	if err != nil {
		return domain.Event{}, err
	}
	allDay := p.AllDay.Or(false)
	start, end, err := ResolveTimeRange(p.Start, p.End, e.clock(), e.cfg.DefaultEventDuration, allDay)
	if err != nil {
		return domain.Event{}, err
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, "")
	if err != nil {
		return domain.Event{}, err
	}
	tags, _ := p.Tags.Value()
	return domain.NewEvent(domain.EventInput{
		ID:         e.idGen(),
		Title:      title,
		StartAt:    start,
		EndAt:      end,
		AllDay:     allDay,
		CategoryID: categoryID,
		Notes:      p.Notes.Or(""),
		Location:   p.Location.Or(""),
		Tags:       tags,
		Priority:   domain.Priority(p.Priority.Or("")),
	}, e.clock())
}

// createEvents creates one event, or a batch atomically when items are given.
func (e *Engine) createEvents(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}
	if len(bp.Items) == 0 {
		event, err := e.buildEvent(ctx, raw)
		if err != nil {
			return Result{}, err
		}
		if err := e.store.CreateEvent(ctx, event); err != nil {
			return Result{}, storeErr("event create", err)
		}
		return okID(fmt.Sprintf("Created event %q", event.Title), event.ID), nil
	}

	// All items are decoded and validated before anything is persisted, so a
	// bad item leaves zero events behind.
	events := make([]domain.Event, 0, len(bp.Items))
	for i, item := range bp.Items {
		event, err := e.buildEvent(ctx, item)
		if err != nil {
			return Result{}, &FieldError{Field: fmt.Sprintf("items[%d]", i), Kind: ErrDecode, Detail: err.Error()}
		}
		events = append(events, event)
	}
	muts := make([]func(Store) error, 0, len(events))
	for _, event := range events {
		ev := event
		muts = append(muts, func(s Store) error { return s.CreateEvent(ctx, ev) })
	}
	if err := e.createBatch(ctx, muts); err != nil {
		return Result{}, err
	}
	return okCounts(fmt.Sprintf("Created %d events", len(events)), len(events), len(events)), nil
}

// applyEventParams merges a tri-state payload into one event, expanding
// contextual markers against the target snapshot.
func (e *Engine) applyEventParams(ctx context.Context, ev *domain.Event, p eventParams, tt TemplateTarget) error {
	now := e.clock()
	if title, hasTitle := p.Title.Value(); hasTitle {
		if err := ev.Rename(title, now); err != nil {
			return &FieldError{Field: "title", Kind: ErrRequiredField}
		}
	}
	if p.Start.Present() || p.End.Present() || p.AllDay.Present() {
		start := p.Start.Or(ev.StartAt)
		end := p.End.Or(ev.EndAt)
		allDay := p.AllDay.Or(ev.AllDay)
		if err := ev.Reschedule(start, end, allDay, now); err != nil {
			return &FieldError{Field: "end", Kind: ErrRange, Detail: "end before start"}
		}
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, ev.CategoryID)
	if err != nil {
		return err
	}
	ev.CategoryID = categoryID
	if p.Notes.Present() {
		ev.Notes = ExpandTemplate(p.Notes.Or(""), FieldNotes, tt)
	}
	if p.Location.Present() {
		ev.Location = ExpandTemplate(p.Location.Or(""), FieldLocation, tt)
	}
	if p.Tags.Present() {
		tags, _ := p.Tags.Value()
		expanded := make([]string, 0, len(tags))
		for _, tag := range tags {
			expanded = append(expanded, ExpandTemplate(tag, FieldTags, tt))
		}
		ev.Tags = domain.NormalizeTags(expanded)
	}
	if p.Priority.Present() {
		priority := domain.Priority(p.Priority.Or(string(domain.PriorityMedium)))
		if !domain.IsValidPriority(priority) {
			return &FieldError{Field: "priority", Kind: ErrRange, Detail: string(priority)}
		}
		ev.Priority = priority
	}
	if completed, hasCompleted := p.Completed.Value(); hasCompleted {
		ev.SetCompleted(completed, now)
	}
	ev.Touch(now)
	return nil
}

// eventTemplateTarget snapshots one event for contextual expansion.
func (e *Engine) eventTemplateTarget(ctx context.Context, ev domain.Event, index, total int) TemplateTarget {
	categoryName := ""
	if ev.CategoryID != "" {
		if cat, err := e.store.GetCategory(ctx, ev.CategoryID); err == nil {
			categoryName = cat.Name
		}
	}
	return TemplateTarget{
		Label:    ev.Title,
		Kind:     "event",
		Category: categoryName,
		Priority: string(ev.Priority),
		Index:    index,
		Total:    total,
	}
}

// updateEvents updates one event or a planned batch of events.
func (e *Engine) updateEvents(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}

	switch bp.mode() {
	case selectItems:
		matched := len(bp.Items)
		updated := e.applyEach(ctx, matched, func(i int, s Store) error {
			p, err := decodeEventParams(bp.Items[i])
			if err != nil {
				return err
			}
			ev, err := e.resolveEvent(ctx, p.ID, p.Title)
			if err != nil {
				return err
			}
			tt := e.eventTemplateTarget(ctx, ev, i+1, matched)
			// Per-item payloads carry their own title; only absent fields keep
			// the stored value.
			if err := e.applyEventParams(ctx, &ev, p, tt); err != nil {
				return err
			}
			return s.UpdateEvent(ctx, ev)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d events", updated, matched), matched, updated), nil

	case selectBroadcast:
		snapshot, err := e.eventSnapshot(ctx)
		if err != nil {
			return Result{}, err
		}
		targets, err := e.filterEvents(ctx, snapshot, bp.Filter)
		if err != nil {
			return Result{}, err
		}
		if err := bp.guardFor(selectBroadcast).Allow(len(targets)); err != nil {
			return Result{}, err
		}
		p, err := decodeEventParams(raw)
		if err != nil {
			return Result{}, err
		}
		updated := e.applyEach(ctx, len(targets), func(i int, s Store) error {
			ev := targets[i]
			tt := e.eventTemplateTarget(ctx, ev, i+1, len(targets))
			broadcast := p
			broadcast.ID = Field[string]{}
			broadcast.Title = Field[string]{}
			if err := e.applyEventParams(ctx, &ev, broadcast, tt); err != nil {
				return err
			}
			return s.UpdateEvent(ctx, ev)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d events", updated, len(targets)), len(targets), updated), nil

	case selectIDs:
		p, err := decodeEventParams(raw)
		if err != nil {
			return Result{}, err
		}
		matched := len(bp.IDs)
		updated := e.applyEach(ctx, matched, func(i int, s Store) error {
			ev, err := e.resolveEvent(ctx, FieldOf(bp.IDs[i]), Field[string]{})
			if err != nil {
				return err
			}
			tt := e.eventTemplateTarget(ctx, ev, i+1, matched)
			payload := p
			payload.ID = Field[string]{}
			if err := e.applyEventParams(ctx, &ev, payload, tt); err != nil {
				return err
			}
			return s.UpdateEvent(ctx, ev)
		})
		return okCounts(fmt.Sprintf("Updated %d of %d events", updated, matched), matched, updated), nil

	default:
		p, err := decodeEventParams(raw)
		if err != nil {
			return Result{}, err
		}
		ev, err := e.resolveEvent(ctx, p.ID, p.Title)
		if err != nil {
			return Result{}, err
		}
		tt := e.eventTemplateTarget(ctx, ev, 1, 1)
		payload := p
		payload.ID = Field[string]{}
		if _, hasID := p.ID.Value(); !hasID {
			// Without an id the title addressed the event; it is not a rename.
			payload.Title = Field[string]{}
		}
		if err := e.applyEventParams(ctx, &ev, payload, tt); err != nil {
			return Result{}, err
		}
		if err := e.store.UpdateEvent(ctx, ev); err != nil {
			return Result{}, storeErr("event update", err)
		}
		return okID(fmt.Sprintf("Updated event %q", ev.Title), ev.ID), nil
	}
}

// deleteEvents deletes one event or a guarded batch of events.
func (e *Engine) deleteEvents(ctx context.Context, raw map[string]any) (Result, error) {
	bp, err := decodeBulkParams(raw)
	if err != nil {
		return Result{}, err
	}

	switch bp.mode() {
	case selectBroadcast:
		snapshot, err := e.eventSnapshot(ctx)
		if err != nil {
			return Result{}, err
		}
		targets, err := e.filterEvents(ctx, snapshot, bp.Filter)
		if err != nil {
			return Result{}, err
		}
		guard := Guard{ScopeConfirmed: bp.DeleteAll, ActionConfirmed: bp.Confirm}
		if err := guard.Allow(len(targets)); err != nil {
			return Result{}, err
		}
		deleted := e.applyEach(ctx, len(targets), func(i int, s Store) error {
			return s.DeleteEvent(ctx, targets[i].ID)
		})
		return okCounts(fmt.Sprintf("Deleted %d of %d events", deleted, len(targets)), len(targets), deleted), nil

	case selectIDs:
		if err := bp.guardFor(selectIDs).Allow(len(bp.IDs)); err != nil {
			return Result{}, err
		}
		deleted := e.applyEach(ctx, len(bp.IDs), func(i int, s Store) error {
			return s.DeleteEvent(ctx, bp.IDs[i])
		})
		return okCounts(fmt.Sprintf("Deleted %d of %d events", deleted, len(bp.IDs)), len(bp.IDs), deleted), nil

	default:
		p, err := decodeEventParams(raw)
		if err != nil {
			return Result{}, err
		}
		ev, err := e.resolveEvent(ctx, p.ID, p.Title)
		if err != nil {
			return Result{}, err
		}
		if err := e.store.DeleteEvent(ctx, ev.ID); err != nil {
			return Result{}, storeErr("event delete", err)
		}
		return okID(fmt.Sprintf("Deleted event %q", ev.Title), ev.ID), nil
	}
}

// listEvents lists or searches events against a consistent snapshot.
func (e *Engine) listEvents(ctx context.Context, raw map[string]any) (Result, error) {
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
	snapshot, err := e.eventSnapshot(ctx)
	if err != nil {
		return Result{}, err
	}
	matches, err := e.filterEvents(ctx, snapshot, filter)
	if err != nil {
		return Result{}, err
	}
	items := make([]map[string]any, 0, len(matches))
	for _, ev := range matches {
		items = append(items, eventItem(ev))
	}
	return okItems(fmt.Sprintf("Found %d events", len(items)), items), nil
}

// completeEvent marks one event completed.
func (e *Engine) completeEvent(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeEventParams(raw)
	if err != nil {
		return Result{}, err
	}
	ev, err := e.resolveEvent(ctx, p.ID, p.Title)
	if err != nil {
		return Result{}, err
	}
	ev.SetCompleted(p.Completed.Or(true), e.clock())
	if err := e.store.UpdateEvent(ctx, ev); err != nil {
		return Result{}, storeErr("event update", err)
	}
	return okID(fmt.Sprintf("Completed event %q", ev.Title), ev.ID), nil
}

// eventItem renders one event for result payloads.
func eventItem(ev domain.Event) map[string]any {
	item := map[string]any{
		"id":    ev.ID,
		"title": ev.Title,
		"start": ev.StartAt.Format(time.RFC3339),
		"end":   ev.EndAt.Format(time.RFC3339),
	}
	if ev.AllDay {
		item["allDay"] = true
	}
	if ev.CategoryID != "" {
		item["categoryId"] = ev.CategoryID
	}
	if ev.Notes != "" {
		item["notes"] = ev.Notes
	}
	if ev.Location != "" {
		item["location"] = ev.Location
	}
	if len(ev.Tags) > 0 {
		item["tags"] = ev.Tags
	}
	if ev.Priority != "" {
		item["priority"] = string(ev.Priority)
	}
	if ev.Completed {
		item["completed"] = true
	}
	return item
}
