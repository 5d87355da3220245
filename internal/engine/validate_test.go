package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestRequireNonEmpty verifies trim and tri-state handling.
func TestRequireNonEmpty(t *testing.T) {
	if v, err := RequireNonEmpty("title", FieldOf(" Standup ")); err != nil || v != "Standup" {
		t.Fatalf("RequireNonEmpty() = %q, %v", v, err)
	}
	for name, f := range map[string]Field[string]{
		"absent": {},
		"null":   NullField[string](),
		"blank":  FieldOf("   "),
	} {
		if _, err := RequireNonEmpty("title", f); !errors.Is(err, ErrRequiredField) {
			t.Fatalf("%s: err = %v, want ErrRequiredField", name, err)
		}
	}
}

// TestRequireIdentifier verifies the well-formedness bounds.
func TestRequireIdentifier(t *testing.T) {
	if v, err := RequireIdentifier("id", FieldOf("abc-123")); err != nil || v != "abc-123" {
		t.Fatalf("RequireIdentifier() = %q, %v", v, err)
	}
	if _, err := RequireIdentifier("id", FieldOf("has space")); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier for embedded space", err)
	}
	if _, err := RequireIdentifier("id", FieldOf(strings.Repeat("x", 200))); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier for oversized id", err)
	}
	if _, err := RequireIdentifier("id", Field[string]{}); !errors.Is(err, ErrRequiredField) {
		t.Fatalf("err = %v, want ErrRequiredField for absent id", err)
	}
}

// TestResolveTimeRange verifies defaulting and ordering.
func TestResolveTimeRange(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	s, e, err := ResolveTimeRange(Field[time.Time]{}, Field[time.Time]{}, now, time.Hour, false)
	if err != nil {
		t.Fatalf("ResolveTimeRange() error: %v", err)
	}
	if !s.Equal(now) || !e.Equal(now.Add(time.Hour)) {
		t.Fatalf("range = %v..%v, want now..now+1h", s, e)
	}

	s, e, err = ResolveTimeRange(FieldOf(now), Field[time.Time]{}, now, time.Hour, true)
	if err != nil {
		t.Fatalf("ResolveTimeRange() all-day error: %v", err)
	}
	if !e.Equal(s) {
		t.Fatalf("all-day end = %v, want equal to start %v", e, s)
	}

	_, _, err = ResolveTimeRange(FieldOf(now), FieldOf(now.Add(-time.Minute)), now, time.Hour, false)
	if !errors.Is(err, ErrRange) {
		t.Fatalf("err = %v, want ErrRange for end before start", err)
	}
}

// TestNumericRange verifies inclusive bounds.
func TestNumericRange(t *testing.T) {
	if v, err := NumericRange("value", 5, 0, 10); err != nil || v != 5 {
		t.Fatalf("NumericRange() = %v, %v", v, err)
	}
	if _, err := NumericRange("value", 11, 0, 10); !errors.Is(err, ErrRange) {
		t.Fatalf("err = %v, want ErrRange", err)
	}
	if _, err := NumericRange("value", -1, 0, 10); !errors.Is(err, ErrRange) {
		t.Fatalf("err = %v, want ErrRange", err)
	}
}

// TestGuardAllow verifies both confirmation flags are required.
func TestGuardAllow(t *testing.T) {
	cases := []struct {
		guard Guard
		pass  bool
	}{
		{Guard{}, false},
		{Guard{ScopeConfirmed: true}, false},
		{Guard{ActionConfirmed: true}, false},
		{Guard{ScopeConfirmed: true, ActionConfirmed: true}, true},
	}
	for _, tc := range cases {
		err := tc.guard.Allow(4)
		if tc.pass && err != nil {
			t.Fatalf("Allow(%+v) = %v, want nil", tc.guard, err)
		}
		if !tc.pass {
			var confirmation *ConfirmationError
			if !errors.As(err, &confirmation) || confirmation.Matched != 4 {
				t.Fatalf("Allow(%+v) = %v, want ConfirmationError with count", tc.guard, err)
			}
		}
	}
}
