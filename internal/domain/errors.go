package domain

import "errors"

var (
	ErrInvalidID        = errors.New("invalid id")
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidName      = errors.New("invalid name")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidTimeRange = errors.New("end before start")
	ErrInvalidTracking  = errors.New("invalid tracking kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidGoalKind  = errors.New("invalid goal kind")
	ErrInvalidTarget    = errors.New("invalid target value")
	ErrParentCycle      = errors.New("parent assignment forms a cycle")
)
