package engine

import (
	"fmt"
	"strings"
	"time"
)

// maxIdentifierLen bounds well-formed identifiers.
const maxIdentifierLen = 128

// RequireNonEmpty returns the trimmed value or a RequiredField failure when
// the field is absent, null, or blank.
func RequireNonEmpty(field string, f Field[string]) (string, error) {
	v, ok := f.Value()
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &FieldError{Field: field, Kind: ErrRequiredField}
	}
	return v, nil
}

// RequireIdentifier returns a well-formed identifier or an InvalidIdentifier
// failure. Identifiers are non-empty, contain no whitespace, and stay within
// a sane length bound.
func RequireIdentifier(field string, f Field[string]) (string, error) {
	v, ok := f.Value()
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", &FieldError{Field: field, Kind: ErrRequiredField}
	}
	if len(v) > maxIdentifierLen || strings.ContainsAny(v, " \t\n") {
		return "", &FieldError{Field: field, Kind: ErrInvalidIdentifier, Detail: fmt.Sprintf("malformed identifier %q", v)}
	}
	return v, nil
}

// ResolveTimeRange fills in the start/end defaults and enforces ordering:
// absent start defaults to now, absent end to start plus the default
// duration (or start itself for all-day events). End before start fails
// with a Range error; equal instants are left to the domain layer, which
// permits them only for all-day events.
func ResolveTimeRange(start, end Field[time.Time], now time.Time, defaultDuration time.Duration, allDay bool) (time.Time, time.Time, error) {
	s, ok := start.Value()
	if !ok {
		s = now
	}
	e, ok := end.Value()
	if !ok {
		if allDay {
			e = s
		} else {
			e = s.Add(defaultDuration)
		}
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, &FieldError{Field: "end", Kind: ErrRange, Detail: "end before start"}
	}
	return s.UTC(), e.UTC(), nil
}

// NumericRange enforces inclusive bounds on one numeric field.
func NumericRange(field string, v, min, max float64) (float64, error) {
	if v < min || v > max {
		return 0, &FieldError{Field: field, Kind: ErrRange, Detail: fmt.Sprintf("%v outside [%v, %v]", v, min, max)}
	}
	return v, nil
}
