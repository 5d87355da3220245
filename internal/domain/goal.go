package domain

import (
	"slices"
	"strings"
	"time"
)

type GoalKind string

const (
	GoalMilestone GoalKind = "milestone"
	GoalNumeric   GoalKind = "numeric"
	GoalHabit     GoalKind = "habit"
	GoalProject   GoalKind = "project"
)

var validGoalKinds = []GoalKind{GoalMilestone, GoalNumeric, GoalHabit, GoalProject}

type Milestone struct {
	ID    string
	Title string
	Done  bool
}

type Goal struct {
	ID          string
	Title       string
	Kind        GoalKind
	TargetValue float64
	CurrentValue float64
	TargetDate  *time.Time
	Milestones  []Milestone
	HabitIDs    []string
	CategoryID  string
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type GoalInput struct {
	ID          string
	Title       string
	Kind        GoalKind
	TargetValue float64
	TargetDate  *time.Time
	Milestones  []Milestone
	HabitIDs    []string
	CategoryID  string
}

func NewGoal(in GoalInput, now time.Time) (Goal, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)

	if in.ID == "" {
		return Goal{}, ErrInvalidID
	}
	if in.Title == "" {
		return Goal{}, ErrInvalidTitle
	}
	if in.Kind == "" {
		in.Kind = GoalNumeric
	}
	if !slices.Contains(validGoalKinds, in.Kind) {
		return Goal{}, ErrInvalidGoalKind
	}
	if in.Kind == GoalNumeric && in.TargetValue <= 0 {
		return Goal{}, ErrInvalidTarget
	}

	return Goal{
		ID:          in.ID,
		Title:       in.Title,
		Kind:        in.Kind,
		TargetValue: in.TargetValue,
		TargetDate:  normalizeInstant(in.TargetDate),
		Milestones:  normalizeMilestones(in.Milestones),
		HabitIDs:    uniqueIDs(in.HabitIDs),
		CategoryID:  strings.TrimSpace(in.CategoryID),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (g *Goal) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	g.Title = title
	g.UpdatedAt = now.UTC()
	return nil
}

// Progress derives completion in [0,1] from the goal's own state.
func (g Goal) Progress() float64 {
	var p float64
	switch g.Kind {
	case GoalMilestone, GoalProject:
		if len(g.Milestones) == 0 {
			break
		}
		done := 0
		for _, m := range g.Milestones {
			if m.Done {
				done++
			}
		}
		p = float64(done) / float64(len(g.Milestones))
	default:
		if g.TargetValue > 0 {
			p = g.CurrentValue / g.TargetValue
		}
	}
	if g.CompletedAt != nil && p < 1 {
		p = 1
	}
	return clamp01(p)
}

// SetProgress records a new current value. Completion is monotonic: once the
// goal has completed, a lower value never clears CompletedAt.
func (g *Goal) SetProgress(value float64, now time.Time) {
	if value < 0 {
		value = 0
	}
	g.CurrentValue = value
	ts := now.UTC()
	if g.CompletedAt == nil && g.TargetValue > 0 && value >= g.TargetValue {
		g.CompletedAt = &ts
	}
	g.UpdatedAt = ts
}

func (g *Goal) CompleteMilestone(milestoneID string, now time.Time) bool {
	for i := range g.Milestones {
		if g.Milestones[i].ID != milestoneID {
			continue
		}
		g.Milestones[i].Done = true
		ts := now.UTC()
		if g.CompletedAt == nil && g.Progress() >= 1 {
			g.CompletedAt = &ts
		}
		g.UpdatedAt = ts
		return true
	}
	return false
}

func (g *Goal) Touch(now time.Time) {
	g.UpdatedAt = now.UTC()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func normalizeMilestones(in []Milestone) []Milestone {
	out := make([]Milestone, 0, len(in))
	for _, m := range in {
		m.ID = strings.TrimSpace(m.ID)
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func uniqueIDs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, raw := range in {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
