package domain

import "slices"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func IsValidPriority(p Priority) bool {
	return slices.Contains(validPriorities, p)
}
