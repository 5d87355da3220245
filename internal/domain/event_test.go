package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// TestNewEventValidation verifies required fields and range rules.
func TestNewEventValidation(t *testing.T) {
	start := testNow
	end := testNow.Add(time.Hour)

	if _, err := NewEvent(EventInput{Title: "x", StartAt: start, EndAt: end}, testNow); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("err = %v, want ErrInvalidID", err)
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "  ", StartAt: start, EndAt: end}, testNow); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("err = %v, want ErrInvalidTitle", err)
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "x", StartAt: end, EndAt: start}, testNow); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "x", StartAt: start, EndAt: start}, testNow); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange for zero-length timed event", err)
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "x", StartAt: start, EndAt: start, AllDay: true}, testNow); err != nil {
		t.Fatalf("all-day zero-length event rejected: %v", err)
	}
	if _, err := NewEvent(EventInput{ID: "e1", Title: "x", StartAt: start, EndAt: end, Priority: "urgent-ish"}, testNow); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("err = %v, want ErrInvalidPriority", err)
	}
}

// TestEventRescheduleKeepsInvariant verifies a bad range leaves the event
// unchanged.
func TestEventRescheduleKeepsInvariant(t *testing.T) {
	ev, err := NewEvent(EventInput{ID: "e1", Title: "x", StartAt: testNow, EndAt: testNow.Add(time.Hour)}, testNow)
	if err != nil {
		t.Fatalf("NewEvent error: %v", err)
	}
	if err := ev.Reschedule(testNow, testNow.Add(-time.Hour), false, testNow); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("err = %v, want ErrInvalidTimeRange", err)
	}
	if !ev.EndAt.Equal(testNow.Add(time.Hour)) {
		t.Fatal("rejected reschedule must not mutate the event")
	}
}

// TestEventOccursOn verifies day overlap including multi-day spans.
func TestEventOccursOn(t *testing.T) {
	ev, err := NewEvent(EventInput{
		ID:      "e1",
		Title:   "Offsite",
		StartAt: time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 4, 3, 11, 0, 0, 0, time.UTC),
	}, testNow)
	if err != nil {
		t.Fatalf("NewEvent error: %v", err)
	}
	for _, day := range []int{1, 2, 3} {
		if !ev.OccursOn(time.Date(2026, 4, day, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("OccursOn(April %d) = false", day)
		}
	}
	if ev.OccursOn(time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatal("OccursOn(April 4) = true")
	}
}

// TestNormalizeTags verifies folding, trimming, and dedupe order.
func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Health ", "health", "", "WORK"})
	if len(got) != 2 || got[0] != "health" || got[1] != "work" {
		t.Fatalf("NormalizeTags() = %v", got)
	}
}

// TestNormalizeName verifies the case-folded whitespace-collapsed key.
func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Deep   Work "); got != "deep work" {
		t.Fatalf("NormalizeName() = %q, want %q", got, "deep work")
	}
	if got := NormalizeName("   "); got != "" {
		t.Fatalf("NormalizeName(blank) = %q, want empty", got)
	}
}
