package engine

import (
	"errors"
	"fmt"
)

// Result is the single response shape every action resolves to. Empty
// optional fields are omitted from the wire form rather than emitted as
// explicit nulls.
type Result struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	ID           string           `json:"id,omitempty"`
	Items        []map[string]any `json:"items,omitempty"`
	MatchedCount *int             `json:"matchedCount,omitempty"`
	UpdatedCount *int             `json:"updatedCount,omitempty"`
}

// ok builds a plain success result.
func ok(message string) Result {
	return Result{Success: true, Message: message}
}

// okID builds a success result carrying one entity identifier.
func okID(message, id string) Result {
	return Result{Success: true, Message: message, ID: id}
}

// okItems builds a success result carrying listed entities.
func okItems(message string, items []map[string]any) Result {
	r := Result{Success: true, Message: message, Items: items}
	n := len(items)
	r.MatchedCount = &n
	return r
}

// okCounts builds a success result for a bulk mutation, reporting how many
// entities were selected versus how many were actually changed.
func okCounts(message string, matched, updated int) Result {
	return Result{Success: true, Message: message, MatchedCount: &matched, UpdatedCount: &updated}
}

// failure folds any engine error into a structured failure result. Every
// error in the taxonomy is recovered here; nothing propagates as a fault.
func failure(err error) Result {
	res := Result{Success: false, Message: err.Error()}
	var confirmation *ConfirmationError
	if errors.As(err, &confirmation) {
		res.MatchedCount = &confirmation.Matched
	}
	switch {
	case errors.Is(err, ErrConfirmationRequired):
		res.Message = fmt.Sprintf("This is a bulk operation; confirm it explicitly. %s", err.Error())
	case errors.Is(err, ErrNotFound):
		res.Message = fmt.Sprintf("Nothing matched: %s", err.Error())
	}
	return res
}
