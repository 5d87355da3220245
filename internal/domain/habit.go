package domain

import (
	"slices"
	"strings"
	"time"
)

type TrackingKind string

const (
	TrackingBinary   TrackingKind = "binary"
	TrackingQuantity TrackingKind = "quantity"
	TrackingDuration TrackingKind = "duration"
	TrackingQuality  TrackingKind = "quality"
)

var validTrackingKinds = []TrackingKind{TrackingBinary, TrackingQuantity, TrackingDuration, TrackingQuality}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

var validFrequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyCustom}

type Habit struct {
	ID            string
	Name          string
	Tracking      TrackingKind
	Frequency     Frequency
	CustomDays    []time.Weekday
	GoalTarget    float64
	CategoryID    string
	CurrentStreak int
	BestStreak    int
	LastLoggedDay string
	LastValue     float64
	Active        bool
	Paused        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type HabitInput struct {
	ID         string
	Name       string
	Tracking   TrackingKind
	Frequency  Frequency
	CustomDays []time.Weekday
	GoalTarget float64
	CategoryID string
}

func NewHabit(in HabitInput, now time.Time) (Habit, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)

	if in.ID == "" {
		return Habit{}, ErrInvalidID
	}
	if in.Name == "" {
		return Habit{}, ErrInvalidName
	}
	if in.Tracking == "" {
		in.Tracking = TrackingBinary
	}
	if !slices.Contains(validTrackingKinds, in.Tracking) {
		return Habit{}, ErrInvalidTracking
	}
	if in.Frequency == "" {
		in.Frequency = FrequencyDaily
	}
	if !slices.Contains(validFrequencies, in.Frequency) {
		return Habit{}, ErrInvalidFrequency
	}
	if in.Frequency == FrequencyCustom && len(in.CustomDays) == 0 {
		return Habit{}, ErrInvalidFrequency
	}
	if in.GoalTarget < 0 {
		return Habit{}, ErrInvalidTarget
	}

	return Habit{
		ID:         in.ID,
		Name:       in.Name,
		Tracking:   in.Tracking,
		Frequency:  in.Frequency,
		CustomDays: NormalizeWeekdays(in.CustomDays),
		GoalTarget: in.GoalTarget,
		CategoryID: strings.TrimSpace(in.CategoryID),
		Active:     true,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}, nil
}

func (h *Habit) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	h.Name = name
	h.UpdatedAt = now.UTC()
	return nil
}

func (h *Habit) SetPaused(paused bool, now time.Time) {
	h.Paused = paused
	h.UpdatedAt = now.UTC()
}

func (h *Habit) SetActive(active bool, now time.Time) {
	h.Active = active
	h.UpdatedAt = now.UTC()
}

// Log records a tracking entry for one civil day (YYYY-MM-DD). The current
// streak extends on consecutive logged days and resets after a gap; the best
// streak never decreases. Logging the same day twice is a no-op for streaks.
func (h *Habit) Log(day string, now time.Time) {
	if day == h.LastLoggedDay {
		h.UpdatedAt = now.UTC()
		return
	}
	if isNextDay(h.LastLoggedDay, day) {
		h.CurrentStreak++
	} else {
		h.CurrentStreak = 1
	}
	if h.CurrentStreak > h.BestStreak {
		h.BestStreak = h.CurrentStreak
	}
	h.LastLoggedDay = day
	h.UpdatedAt = now.UTC()
}

// LogValue records a measured entry for one civil day. The amount is always
// kept, but the day joins the streak only when it meets the habit's target.
// It reports whether the day counted.
func (h *Habit) LogValue(day string, value float64, now time.Time) bool {
	h.LastValue = value
	if !h.targetMet(value) {
		h.UpdatedAt = now.UTC()
		return false
	}
	h.Log(day, now)
	return true
}

// targetMet checks a logged amount against the habit's target. Habits
// without a target accept any positive amount.
func (h *Habit) targetMet(value float64) bool {
	if h.GoalTarget > 0 {
		return value >= h.GoalTarget
	}
	return value > 0
}

func isNextDay(prev, next string) bool {
	if prev == "" {
		return false
	}
	p, err := time.Parse(time.DateOnly, prev)
	if err != nil {
		return false
	}
	n, err := time.Parse(time.DateOnly, next)
	if err != nil {
		return false
	}
	return n.Sub(p) == 24*time.Hour
}

// NormalizeWeekdays drops out-of-range values and duplicates, sorted.
func NormalizeWeekdays(days []time.Weekday) []time.Weekday {
	out := make([]time.Weekday, 0, len(days))
	seen := map[time.Weekday]struct{}{}
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}
