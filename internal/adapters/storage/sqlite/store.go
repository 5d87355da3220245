package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/dagord/internal/domain"
	"github.com/hylla/dagord/internal/engine"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// queryer is the read/write contract shared by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Store persists engine entities in a local sqlite database.
type Store struct {
	db *sql.DB
	q  queryer
}

// Open opens the database at path, creating the directory and schema as
// needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db, q: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*Store, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// cache=shared keeps the schema alive across pooled connections, but a
	// second pooled connection would still see an independent database once
	// the first closes. One connection is enough for tests.
	db.SetMaxOpenConns(1)
	s := &Store{db: db, q: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema.
func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			icon TEXT NOT NULL DEFAULT '',
			active INTEGER NOT NULL DEFAULT 1,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			start_at TEXT NOT NULL,
			end_at TEXT NOT NULL,
			all_day INTEGER NOT NULL DEFAULT 0,
			category_id TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			priority TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			due_at TEXT,
			priority TEXT NOT NULL,
			category_id TEXT NOT NULL DEFAULT '',
			tags_json TEXT NOT NULL DEFAULT '[]',
			notes TEXT NOT NULL DEFAULT '',
			event_id TEXT NOT NULL DEFAULT '',
			parent_id TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			tracking TEXT NOT NULL,
			frequency TEXT NOT NULL,
			days_json TEXT NOT NULL DEFAULT '[]',
			goal_target REAL NOT NULL DEFAULT 0,
			category_id TEXT NOT NULL DEFAULT '',
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			last_logged_day TEXT NOT NULL DEFAULT '',
			last_value REAL NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1,
			paused INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			kind TEXT NOT NULL,
			target_value REAL NOT NULL DEFAULT 0,
			current_value REAL NOT NULL DEFAULT 0,
			target_date TEXT,
			milestones_json TEXT NOT NULL DEFAULT '[]',
			habit_ids_json TEXT NOT NULL DEFAULT '[]',
			category_id TEXT NOT NULL DEFAULT '',
			completed_at TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at, id);`,
		`CREATE INDEX IF NOT EXISTS idx_events_category ON events(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at, id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_category ON tasks(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_habits_category ON habits(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_goals_category ON goals(category_id);`,
		`CREATE INDEX IF NOT EXISTS idx_categories_sort ON categories(sort_order, name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Transact runs fn against a transaction-backed store, committing only when
// fn succeeds. Nested calls reuse the outer transaction.
func (s *Store) Transact(ctx context.Context, fn func(engine.Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateEvent inserts one event row.
func (s *Store) CreateEvent(ctx context.Context, ev domain.Event) error {
	tagsJSON, err := json.Marshal(ev.Tags)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO events(id, title, start_at, end_at, all_day, category_id, notes, location, tags_json, priority, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.Title, ts(ev.StartAt), ts(ev.EndAt), boolInt(ev.AllDay), ev.CategoryID, ev.Notes, ev.Location, string(tagsJSON), string(ev.Priority), boolInt(ev.Completed), ts(ev.CreatedAt), ts(ev.UpdatedAt))
	return err
}

// UpdateEvent rewrites one event row.
func (s *Store) UpdateEvent(ctx context.Context, ev domain.Event) error {
	tagsJSON, err := json.Marshal(ev.Tags)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE events
		SET title = ?, start_at = ?, end_at = ?, all_day = ?, category_id = ?, notes = ?, location = ?, tags_json = ?, priority = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`, ev.Title, ts(ev.StartAt), ts(ev.EndAt), boolInt(ev.AllDay), ev.CategoryID, ev.Notes, ev.Location, string(tagsJSON), string(ev.Priority), boolInt(ev.Completed), ts(ev.UpdatedAt), ev.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetEvent returns one event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, title, start_at, end_at, all_day, category_id, notes, location, tags_json, priority, completed, created_at, updated_at
		FROM events
		WHERE id = ?
	`, id)
	return scanEvent(row)
}

// ListEvents returns all events in start order.
func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, start_at, end_at, all_day, category_id, notes, location, tags_json, priority, completed, created_at, updated_at
		FROM events
		ORDER BY start_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// DeleteEvent removes one event row.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateTask inserts one task row.
func (s *Store) CreateTask(ctx context.Context, t domain.Task) error {
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO tasks(id, title, due_at, priority, category_id, tags_json, notes, event_id, parent_id, completed, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, nullableTS(t.DueAt), string(t.Priority), t.CategoryID, string(tagsJSON), t.Notes, t.EventID, t.ParentID, boolInt(t.Completed), nullableTS(t.CompletedAt), ts(t.CreatedAt), ts(t.UpdatedAt))
	return err
}

// UpdateTask rewrites one task row.
func (s *Store) UpdateTask(ctx context.Context, t domain.Task) error {
	tagsJSON, err := json.Marshal(t.Tags)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, due_at = ?, priority = ?, category_id = ?, tags_json = ?, notes = ?, event_id = ?, parent_id = ?, completed = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, t.Title, nullableTS(t.DueAt), string(t.Priority), t.CategoryID, string(tagsJSON), t.Notes, t.EventID, t.ParentID, boolInt(t.Completed), nullableTS(t.CompletedAt), ts(t.UpdatedAt), t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns one task by id.
func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, title, due_at, priority, category_id, tags_json, notes, event_id, parent_id, completed, completed_at, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`, id)
	return scanTask(row)
}

// ListTasks returns all tasks in creation order.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, due_at, priority, category_id, tags_json, notes, event_id, parent_id, completed, completed_at, created_at, updated_at
		FROM tasks
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTask removes one task row.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateHabit inserts one habit row.
func (s *Store) CreateHabit(ctx context.Context, h domain.Habit) error {
	daysJSON, err := json.Marshal(weekdayInts(h.CustomDays))
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO habits(id, name, tracking, frequency, days_json, goal_target, category_id, current_streak, best_streak, last_logged_day, last_value, active, paused, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.ID, h.Name, string(h.Tracking), string(h.Frequency), string(daysJSON), h.GoalTarget, h.CategoryID, h.CurrentStreak, h.BestStreak, h.LastLoggedDay, h.LastValue, boolInt(h.Active), boolInt(h.Paused), ts(h.CreatedAt), ts(h.UpdatedAt))
	return err
}

// UpdateHabit rewrites one habit row.
func (s *Store) UpdateHabit(ctx context.Context, h domain.Habit) error {
	daysJSON, err := json.Marshal(weekdayInts(h.CustomDays))
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE habits
		SET name = ?, tracking = ?, frequency = ?, days_json = ?, goal_target = ?, category_id = ?, current_streak = ?, best_streak = ?, last_logged_day = ?, last_value = ?, active = ?, paused = ?, updated_at = ?
		WHERE id = ?
	`, h.Name, string(h.Tracking), string(h.Frequency), string(daysJSON), h.GoalTarget, h.CategoryID, h.CurrentStreak, h.BestStreak, h.LastLoggedDay, h.LastValue, boolInt(h.Active), boolInt(h.Paused), ts(h.UpdatedAt), h.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetHabit returns one habit by id.
func (s *Store) GetHabit(ctx context.Context, id string) (domain.Habit, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, tracking, frequency, days_json, goal_target, category_id, current_streak, best_streak, last_logged_day, last_value, active, paused, created_at, updated_at
		FROM habits
		WHERE id = ?
	`, id)
	return scanHabit(row)
}

// ListHabits returns all habits in creation order.
func (s *Store) ListHabits(ctx context.Context) ([]domain.Habit, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, tracking, frequency, days_json, goal_target, category_id, current_streak, best_streak, last_logged_day, last_value, active, paused, created_at, updated_at
		FROM habits
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHabit removes one habit row.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateGoal inserts one goal row.
func (s *Store) CreateGoal(ctx context.Context, g domain.Goal) error {
	milestonesJSON, habitsJSON, err := goalJSON(g)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO goals(id, title, kind, target_value, current_value, target_date, milestones_json, habit_ids_json, category_id, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, g.ID, g.Title, string(g.Kind), g.TargetValue, g.CurrentValue, nullableTS(g.TargetDate), milestonesJSON, habitsJSON, g.CategoryID, nullableTS(g.CompletedAt), ts(g.CreatedAt), ts(g.UpdatedAt))
	return err
}

// UpdateGoal rewrites one goal row.
func (s *Store) UpdateGoal(ctx context.Context, g domain.Goal) error {
	milestonesJSON, habitsJSON, err := goalJSON(g)
	if err != nil {
		return err
	}
	res, err := s.q.ExecContext(ctx, `
		UPDATE goals
		SET title = ?, kind = ?, target_value = ?, current_value = ?, target_date = ?, milestones_json = ?, habit_ids_json = ?, category_id = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, g.Title, string(g.Kind), g.TargetValue, g.CurrentValue, nullableTS(g.TargetDate), milestonesJSON, habitsJSON, g.CategoryID, nullableTS(g.CompletedAt), ts(g.UpdatedAt), g.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetGoal returns one goal by id.
func (s *Store) GetGoal(ctx context.Context, id string) (domain.Goal, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, title, kind, target_value, current_value, target_date, milestones_json, habit_ids_json, category_id, completed_at, created_at, updated_at
		FROM goals
		WHERE id = ?
	`, id)
	return scanGoal(row)
}

// ListGoals returns all goals in creation order.
func (s *Store) ListGoals(ctx context.Context) ([]domain.Goal, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, kind, target_value, current_value, target_date, milestones_json, habit_ids_json, category_id, completed_at, created_at, updated_at
		FROM goals
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGoal removes one goal row.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateCategory inserts one category row.
func (s *Store) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO categories(id, name, color, icon, active, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Color, c.Icon, boolInt(c.Active), c.SortOrder, ts(c.CreatedAt), ts(c.UpdatedAt))
	return err
}

// UpdateCategory rewrites one category row.
func (s *Store) UpdateCategory(ctx context.Context, c domain.Category) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, color = ?, icon = ?, active = ?, sort_order = ?, updated_at = ?
		WHERE id = ?
	`, c.Name, c.Color, c.Icon, boolInt(c.Active), c.SortOrder, ts(c.UpdatedAt), c.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetCategory returns one category by id.
func (s *Store) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, color, icon, active, sort_order, created_at, updated_at
		FROM categories
		WHERE id = ?
	`, id)
	return scanCategory(row)
}

// ListCategories returns all categories in display order.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, color, icon, active, sort_order, created_at, updated_at
		FROM categories
		ORDER BY sort_order ASC, name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCategory removes one category row.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent handles scan event.
func scanEvent(s scanner) (domain.Event, error) {
	var (
		ev         domain.Event
		startRaw   string
		endRaw     string
		allDay     int
		tagsRaw    string
		priority   string
		completed  int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&ev.ID, &ev.Title, &startRaw, &endRaw, &allDay, &ev.CategoryID, &ev.Notes, &ev.Location, &tagsRaw, &priority, &completed, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Event{}, engine.ErrNotFound
		}
		return domain.Event{}, err
	}
	if err := json.Unmarshal([]byte(tagsRaw), &ev.Tags); err != nil {
		return domain.Event{}, fmt.Errorf("decode events.tags_json: %w", err)
	}
	ev.StartAt = parseTS(startRaw)
	ev.EndAt = parseTS(endRaw)
	ev.AllDay = allDay != 0
	ev.Priority = domain.Priority(priority)
	ev.Completed = completed != 0
	ev.CreatedAt = parseTS(createdRaw)
	ev.UpdatedAt = parseTS(updatedRaw)
	return ev, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t            domain.Task
		dueRaw       sql.NullString
		priority     string
		tagsRaw      string
		completed    int
		completedRaw sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := s.Scan(&t.ID, &t.Title, &dueRaw, &priority, &t.CategoryID, &tagsRaw, &t.Notes, &t.EventID, &t.ParentID, &completed, &completedRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, engine.ErrNotFound
		}
		return domain.Task{}, err
	}
	if err := json.Unmarshal([]byte(tagsRaw), &t.Tags); err != nil {
		return domain.Task{}, fmt.Errorf("decode tasks.tags_json: %w", err)
	}
	t.DueAt = parseNullTS(dueRaw)
	t.Priority = domain.Priority(priority)
	t.Completed = completed != 0
	t.CompletedAt = parseNullTS(completedRaw)
	t.CreatedAt = parseTS(createdRaw)
	t.UpdatedAt = parseTS(updatedRaw)
	return t, nil
}

// scanHabit handles scan habit.
func scanHabit(s scanner) (domain.Habit, error) {
	var (
		h          domain.Habit
		tracking   string
		frequency  string
		daysRaw    string
		active     int
		paused     int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&h.ID, &h.Name, &tracking, &frequency, &daysRaw, &h.GoalTarget, &h.CategoryID, &h.CurrentStreak, &h.BestStreak, &h.LastLoggedDay, &h.LastValue, &active, &paused, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Habit{}, engine.ErrNotFound
		}
		return domain.Habit{}, err
	}
	var days []int
	if err := json.Unmarshal([]byte(daysRaw), &days); err != nil {
		return domain.Habit{}, fmt.Errorf("decode habits.days_json: %w", err)
	}
	for _, d := range days {
		h.CustomDays = append(h.CustomDays, time.Weekday(d))
	}
	h.Tracking = domain.TrackingKind(tracking)
	h.Frequency = domain.Frequency(frequency)
	h.Active = active != 0
	h.Paused = paused != 0
	h.CreatedAt = parseTS(createdRaw)
	h.UpdatedAt = parseTS(updatedRaw)
	return h, nil
}

// scanGoal handles scan goal.
func scanGoal(s scanner) (domain.Goal, error) {
	var (
		g             domain.Goal
		kind          string
		targetDateRaw sql.NullString
		milestonesRaw string
		habitsRaw     string
		completedRaw  sql.NullString
		createdRaw    string
		updatedRaw    string
	)
	if err := s.Scan(&g.ID, &g.Title, &kind, &g.TargetValue, &g.CurrentValue, &targetDateRaw, &milestonesRaw, &habitsRaw, &g.CategoryID, &completedRaw, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Goal{}, engine.ErrNotFound
		}
		return domain.Goal{}, err
	}
	if err := json.Unmarshal([]byte(milestonesRaw), &g.Milestones); err != nil {
		return domain.Goal{}, fmt.Errorf("decode goals.milestones_json: %w", err)
	}
	if err := json.Unmarshal([]byte(habitsRaw), &g.HabitIDs); err != nil {
		return domain.Goal{}, fmt.Errorf("decode goals.habit_ids_json: %w", err)
	}
	g.Kind = domain.GoalKind(kind)
	g.TargetDate = parseNullTS(targetDateRaw)
	g.CompletedAt = parseNullTS(completedRaw)
	g.CreatedAt = parseTS(createdRaw)
	g.UpdatedAt = parseTS(updatedRaw)
	return g, nil
}

// scanCategory handles scan category.
func scanCategory(s scanner) (domain.Category, error) {
	var (
		c          domain.Category
		active     int
		createdRaw string
		updatedRaw string
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &active, &c.SortOrder, &createdRaw, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Category{}, engine.ErrNotFound
		}
		return domain.Category{}, err
	}
	c.Active = active != 0
	c.CreatedAt = parseTS(createdRaw)
	c.UpdatedAt = parseTS(updatedRaw)
	return c, nil
}

// goalJSON encodes the goal's nested collections.
func goalJSON(g domain.Goal) (string, string, error) {
	milestones := g.Milestones
	if milestones == nil {
		milestones = []domain.Milestone{}
	}
	milestonesJSON, err := json.Marshal(milestones)
	if err != nil {
		return "", "", err
	}
	habitIDs := g.HabitIDs
	if habitIDs == nil {
		habitIDs = []string{}
	}
	habitsJSON, err := json.Marshal(habitIDs)
	if err != nil {
		return "", "", err
	}
	return string(milestonesJSON), string(habitsJSON), nil
}

// weekdayInts converts weekdays to their storable integer form.
func weekdayInts(days []time.Weekday) []int {
	out := make([]int, 0, len(days))
	for _, d := range days {
		out = append(out, int(d))
	}
	return out
}

// boolInt stores booleans as 0/1.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}
