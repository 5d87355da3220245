package domain

import (
	"strings"
	"time"
)

type Event struct {
	ID         string
	Title      string
	StartAt    time.Time
	EndAt      time.Time
	AllDay     bool
	CategoryID string
	Notes      string
	Location   string
	Tags       []string
	Priority   Priority
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type EventInput struct {
	ID         string
	Title      string
	StartAt    time.Time
	EndAt      time.Time
	AllDay     bool
	CategoryID string
	Notes      string
	Location   string
	Tags       []string
	Priority   Priority
}

func NewEvent(in EventInput, now time.Time) (Event, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Event{}, ErrInvalidID
	}
	if in.Title == "" {
		return Event{}, ErrInvalidTitle
	}
	if err := checkEventRange(in.StartAt, in.EndAt, in.AllDay); err != nil {
		return Event{}, err
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !IsValidPriority(in.Priority) {
		return Event{}, ErrInvalidPriority
	}

	return Event{
		ID:         in.ID,
		Title:      in.Title,
		StartAt:    in.StartAt.UTC(),
		EndAt:      in.EndAt.UTC(),
		AllDay:     in.AllDay,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Notes:      strings.TrimSpace(in.Notes),
		Location:   strings.TrimSpace(in.Location),
		Tags:       NormalizeTags(in.Tags),
		Priority:   in.Priority,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

func (e *Event) Reschedule(start, end time.Time, allDay bool, now time.Time) error {
	if err := checkEventRange(start, end, allDay); err != nil {
		return err
	}
	e.StartAt = start.UTC()
	e.EndAt = end.UTC()
	e.AllDay = allDay
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Event) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	e.Title = title
	e.UpdatedAt = now.UTC()
	return nil
}

func (e *Event) SetCompleted(completed bool, now time.Time) {
	e.Completed = completed
	e.UpdatedAt = now.UTC()
}

func (e *Event) Touch(now time.Time) {
	e.UpdatedAt = now.UTC()
}

// OccursOn reports whether any part of the event falls inside the civil day.
func (e Event) OccursOn(day time.Time) bool {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	return e.StartAt.Before(dayEnd) && !e.EndAt.Before(dayStart)
}

// checkEventRange requires end after start; equal instants only for all-day events.
func checkEventRange(start, end time.Time, allDay bool) error {
	if end.Before(start) {
		return ErrInvalidTimeRange
	}
	if end.Equal(start) && !allDay {
		return ErrInvalidTimeRange
	}
	return nil
}

func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
