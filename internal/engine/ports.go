package engine

import (
	"context"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// Store is the persistence port the engine mutates through. Implementations
// must serialize writes; Transact wraps every mutation issued through the
// callback's Store in one transaction that rolls back when the callback
// returns an error.
type Store interface {
	CreateEvent(context.Context, domain.Event) error
	UpdateEvent(context.Context, domain.Event) error
	GetEvent(context.Context, string) (domain.Event, error)
	ListEvents(context.Context) ([]domain.Event, error)
	DeleteEvent(context.Context, string) error

	CreateTask(context.Context, domain.Task) error
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, string) (domain.Task, error)
	ListTasks(context.Context) ([]domain.Task, error)
	DeleteTask(context.Context, string) error

	CreateHabit(context.Context, domain.Habit) error
	UpdateHabit(context.Context, domain.Habit) error
	GetHabit(context.Context, string) (domain.Habit, error)
	ListHabits(context.Context) ([]domain.Habit, error)
	DeleteHabit(context.Context, string) error

	CreateGoal(context.Context, domain.Goal) error
	UpdateGoal(context.Context, domain.Goal) error
	GetGoal(context.Context, string) (domain.Goal, error)
	ListGoals(context.Context) ([]domain.Goal, error)
	DeleteGoal(context.Context, string) error

	CreateCategory(context.Context, domain.Category) error
	UpdateCategory(context.Context, domain.Category) error
	GetCategory(context.Context, string) (domain.Category, error)
	ListCategories(context.Context) ([]domain.Category, error)
	DeleteCategory(context.Context, string) error

	Transact(context.Context, func(Store) error) error
}

// IDGenerator returns unique identifiers for new entities.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time
