package domain

import (
	"strings"
	"time"
)

type Task struct {
	ID          string
	Title       string
	DueAt       *time.Time
	Priority    Priority
	CategoryID  string
	Tags        []string
	Notes       string
	EventID     string
	ParentID    string
	Completed   bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskInput struct {
	ID         string
	Title      string
	DueAt      *time.Time
	Priority   Priority
	CategoryID string
	Tags       []string
	Notes      string
	EventID    string
	ParentID   string
}

func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !IsValidPriority(in.Priority) {
		return Task{}, ErrInvalidPriority
	}
	if in.ParentID == in.ID && in.ID != "" {
		return Task{}, ErrParentCycle
	}

	return Task{
		ID:         in.ID,
		Title:      in.Title,
		DueAt:      normalizeInstant(in.DueAt),
		Priority:   in.Priority,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Tags:       NormalizeTags(in.Tags),
		Notes:      strings.TrimSpace(in.Notes),
		EventID:    strings.TrimSpace(in.EventID),
		ParentID:   strings.TrimSpace(in.ParentID),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

func (t *Task) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	t.Title = title
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) SetPriority(p Priority, now time.Time) error {
	if !IsValidPriority(p) {
		return ErrInvalidPriority
	}
	t.Priority = p
	t.UpdatedAt = now.UTC()
	return nil
}

// SetCompleted stamps CompletedAt on the first completion and clears it on reopen.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	ts := now.UTC()
	t.Completed = completed
	if completed {
		t.CompletedAt = &ts
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = ts
}

// Reparent assigns a new parent. Cycle prevention against the stored ancestor
// chain is the caller's responsibility; only self-parenting is rejected here.
func (t *Task) Reparent(parentID string, now time.Time) error {
	parentID = strings.TrimSpace(parentID)
	if parentID == t.ID && parentID != "" {
		return ErrParentCycle
	}
	t.ParentID = parentID
	t.UpdatedAt = now.UTC()
	return nil
}

func (t *Task) Touch(now time.Time) {
	t.UpdatedAt = now.UTC()
}

func normalizeInstant(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := ts.UTC().Truncate(time.Second)
	return &v
}
