package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// executeHabit routes one habit action.
func (e *Engine) executeHabit(ctx context.Context, action string, raw map[string]any) (Result, error) {
	switch action {
	case "create":
		return e.createHabit(ctx, raw)
	case "update":
		return e.updateHabit(ctx, raw)
	case "delete":
		return e.deleteHabit(ctx, raw)
	case "list", "search":
		return e.listHabits(ctx, raw)
	case "log":
		return e.logHabit(ctx, raw)
	default:
		return Result{}, &UnsupportedError{Entity: "habit", Action: action}
	}
}

func weekdaysOf(days []int) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		out = append(out, time.Weekday(d))
	}
	return out
}

func (e *Engine) createHabit(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeHabitParams(raw)
	if err != nil {
		return Result{}, err
	}
	name, err := RequireNonEmpty("name", p.Name)
	if err != nil {
		return Result{}, err
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, "")
	if err != nil {
		return Result{}, err
	}
	days, _ := p.Days.Value()
	habit, err := domain.NewHabit(domain.HabitInput{
		ID:         e.idGen(),
		Name:       name,
		Tracking:   domain.TrackingKind(p.Tracking.Or("")),
		Frequency:  domain.Frequency(p.Frequency.Or("")),
		CustomDays: weekdaysOf(days),
		GoalTarget: p.Target.Or(0),
		CategoryID: categoryID,
	}, e.clock())
	if err != nil {
		return Result{}, habitFieldErr(err)
	}
	if err := e.store.CreateHabit(ctx, habit); err != nil {
		return Result{}, storeErr("habit create", err)
	}
	return okID(fmt.Sprintf("Created habit %q", habit.Name), habit.ID), nil
}

// habitFieldErr maps a domain validation failure onto the offending field.
func habitFieldErr(err error) error {
	switch err {
	case domain.ErrInvalidTracking:
		return &FieldError{Field: "type", Kind: ErrRange, Detail: "unknown tracking type"}
	case domain.ErrInvalidFrequency:
		return &FieldError{Field: "frequency", Kind: ErrRange, Detail: "unknown or incomplete frequency"}
	case domain.ErrInvalidTarget:
		return &FieldError{Field: "target", Kind: ErrRange, Detail: "target must not be negative"}
	case domain.ErrInvalidName:
		return &FieldError{Field: "name", Kind: ErrRequiredField}
	default:
		return err
	}
}

func (e *Engine) updateHabit(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeHabitParams(raw)
	if err != nil {
		return Result{}, err
	}
	h, err := e.resolveHabit(ctx, p.ID, p.Name)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	if _, hasID := p.ID.Value(); hasID {
		if name, hasName := p.Name.Value(); hasName {
			if err := h.Rename(name, now); err != nil {
				return Result{}, &FieldError{Field: "name", Kind: ErrRequiredField}
			}
		}
	}
	if tracking, ok := p.Tracking.Value(); ok {
		kind := domain.TrackingKind(tracking)
		switch kind {
		case domain.TrackingBinary, domain.TrackingQuantity, domain.TrackingDuration, domain.TrackingQuality:
			h.Tracking = kind
		default:
			return Result{}, &FieldError{Field: "type", Kind: ErrRange, Detail: tracking}
		}
	}
	if p.Frequency.Present() || p.Days.Present() {
		freq := domain.Frequency(p.Frequency.Or(string(h.Frequency)))
		days := h.CustomDays
		if d, ok := p.Days.Value(); ok {
			days = domain.NormalizeWeekdays(weekdaysOf(d))
		}
		switch freq {
		case domain.FrequencyDaily, domain.FrequencyWeekly:
		case domain.FrequencyCustom:
			if len(days) == 0 {
				return Result{}, &FieldError{Field: "days", Kind: ErrRequiredField, Detail: "custom frequency needs days"}
			}
		default:
			return Result{}, &FieldError{Field: "frequency", Kind: ErrRange, Detail: string(freq)}
		}
		h.Frequency = freq
		h.CustomDays = days
	}
	if target, ok := p.Target.Value(); ok {
		if target < 0 {
			return Result{}, &FieldError{Field: "target", Kind: ErrRange, Detail: "target must not be negative"}
		}
		h.GoalTarget = target
	}
	categoryID, err := e.resolveCategoryField(ctx, p.Category, h.CategoryID)
	if err != nil {
		return Result{}, err
	}
	h.CategoryID = categoryID
	if paused, ok := p.Paused.Value(); ok {
		h.SetPaused(paused, now)
	}
	if active, ok := p.Active.Value(); ok {
		h.SetActive(active, now)
	}
	h.UpdatedAt = now.UTC()
	if err := e.store.UpdateHabit(ctx, h); err != nil {
		return Result{}, storeErr("habit update", err)
	}
	return okID(fmt.Sprintf("Updated habit %q", h.Name), h.ID), nil
}

func (e *Engine) deleteHabit(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeHabitParams(raw)
	if err != nil {
		return Result{}, err
	}
	h, err := e.resolveHabit(ctx, p.ID, p.Name)
	if err != nil {
		return Result{}, err
	}
	if err := e.store.DeleteHabit(ctx, h.ID); err != nil {
		return Result{}, storeErr("habit delete", err)
	}
	return okID(fmt.Sprintf("Deleted habit %q", h.Name), h.ID), nil
}

func (e *Engine) listHabits(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeHabitParams(raw)
	if err != nil {
		return Result{}, err
	}
	query, err := stringField(raw, "query")
	if err != nil {
		return Result{}, err
	}
	habits, err := e.store.ListHabits(ctx)
	if err != nil {
		return Result{}, storeErr("habit list", err)
	}
	categoryID := ""
	if ref, ok := p.Category.Value(); ok {
		cat, err := e.lookupCategory(ctx, ref)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return Result{}, err
			}
			return okItems("Found 0 habits", nil), nil
		}
		categoryID = cat.ID
	}
	items := make([]map[string]any, 0, len(habits))
	for _, h := range habits {
		if !h.Active {
			continue
		}
		if categoryID != "" && h.CategoryID != categoryID {
			continue
		}
		if q, ok := query.Value(); ok && !matchesQuery(q, h.Name) {
			continue
		}
		if paused, ok := p.Paused.Value(); ok && h.Paused != paused {
			continue
		}
		items = append(items, habitItem(h))
	}
	return okItems(fmt.Sprintf("Found %d habits", len(items)), items), nil
}

// logHabit records a tracking entry for one civil day and advances streaks.
func (e *Engine) logHabit(ctx context.Context, raw map[string]any) (Result, error) {
	p, err := decodeHabitParams(raw)
	if err != nil {
		return Result{}, err
	}
	h, err := e.resolveHabit(ctx, p.ID, p.Name)
	if err != nil {
		return Result{}, err
	}
	now := e.clock()
	day := now.UTC().Format(time.DateOnly)
	if d, ok := p.Date.Value(); ok {
		day = d.UTC().Format(time.DateOnly)
	}
	counted := true
	if v, ok := p.Value.Value(); ok {
		if v < 0 {
			return Result{}, &FieldError{Field: "value", Kind: ErrRange, Detail: "value must not be negative"}
		}
		counted = h.LogValue(day, v, now)
	} else {
		h.Log(day, now)
	}
	if err := e.store.UpdateHabit(ctx, h); err != nil {
		return Result{}, storeErr("habit update", err)
	}
	if !counted {
		return okID(fmt.Sprintf("Logged habit %q for %s (target not met, streak %d)", h.Name, day, h.CurrentStreak), h.ID), nil
	}
	return okID(fmt.Sprintf("Logged habit %q for %s (streak %d)", h.Name, day, h.CurrentStreak), h.ID), nil
}

// habitItem renders one habit for result payloads.
func habitItem(h domain.Habit) map[string]any {
	item := map[string]any{
		"id":            h.ID,
		"name":          h.Name,
		"type":          string(h.Tracking),
		"frequency":     string(h.Frequency),
		"currentStreak": h.CurrentStreak,
		"bestStreak":    h.BestStreak,
	}
	if len(h.CustomDays) > 0 {
		days := make([]int, 0, len(h.CustomDays))
		for _, d := range h.CustomDays {
			days = append(days, int(d))
		}
		item["days"] = days
	}
	if h.GoalTarget > 0 {
		item["target"] = h.GoalTarget
	}
	if h.CategoryID != "" {
		item["categoryId"] = h.CategoryID
	}
	if h.LastLoggedDay != "" {
		item["lastLogged"] = h.LastLoggedDay
	}
	if h.LastValue > 0 {
		item["lastValue"] = h.LastValue
	}
	if h.Paused {
		item["paused"] = true
	}
	return item
}
