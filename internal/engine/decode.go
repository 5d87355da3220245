package engine

import (
	"fmt"
	"time"

	"github.com/hylla/dagord/internal/domain"
)

// The decoder is the only component that touches raw parameter maps. Every
// downstream component works on the typed structs below, where each field is
// tri-state (see Field).

// eventParams is the decoded event payload.
type eventParams struct {
	ID        Field[string]
	Title     Field[string]
	Start     Field[time.Time]
	End       Field[time.Time]
	AllDay    Field[bool]
	Category  Field[string]
	Notes     Field[string]
	Location  Field[string]
	Tags      Field[[]string]
	Priority  Field[string]
	Completed Field[bool]
}

// taskParams is the decoded task payload.
type taskParams struct {
	ID        Field[string]
	Title     Field[string]
	Due       Field[time.Time]
	Priority  Field[string]
	Category  Field[string]
	Tags      Field[[]string]
	Notes     Field[string]
	Event     Field[string]
	Parent    Field[string]
	Completed Field[bool]
}

// habitParams is the decoded habit payload.
type habitParams struct {
	ID        Field[string]
	Name      Field[string]
	Tracking  Field[string]
	Frequency Field[string]
	Days      Field[[]int]
	Target    Field[float64]
	Category  Field[string]
	Paused    Field[bool]
	Active    Field[bool]
	Value     Field[float64]
	Date      Field[time.Time]
}

// goalParams is the decoded goal payload.
type goalParams struct {
	ID         Field[string]
	Title      Field[string]
	Kind       Field[string]
	Target     Field[float64]
	Current    Field[float64]
	Delta      Field[float64]
	TargetDate Field[time.Time]
	Milestones []domain.Milestone
	Milestone  Field[string]
	Habits     Field[[]string]
	Category   Field[string]
}

// categoryParams is the decoded category payload.
type categoryParams struct {
	ID        Field[string]
	Name      Field[string]
	Color     Field[string]
	Icon      Field[string]
	SortOrder Field[float64]
}

// filterParams is the decoded bulk-selection filter.
type filterParams struct {
	Date      Field[time.Time]
	From      Field[time.Time]
	To        Field[time.Time]
	Category  Field[string]
	Priority  Field[string]
	Completed Field[bool]
	Query     Field[string]
}

// bulkParams carries the selection and confirmation surface shared by the
// bulk-capable actions.
type bulkParams struct {
	Items     []map[string]any
	IDs       []string
	Filter    filterParams
	HasFilter bool
	UpdateAll bool
	DeleteAll bool
	Confirm   bool
}

// decodeEventParams decodes one untyped map into a typed event payload.
func decodeEventParams(m map[string]any) (eventParams, error) {
	var p eventParams
	var err error
	if p.ID, err = stringField(m, "id"); err != nil {
		return p, err
	}
	if p.Title, err = stringField(m, "title"); err != nil {
		return p, err
	}
	if p.Start, err = timeField(m, "start"); err != nil {
		return p, err
	}
	if p.End, err = timeField(m, "end"); err != nil {
		return p, err
	}
	if p.AllDay, err = boolField(m, "allDay"); err != nil {
		return p, err
	}
	if p.Category, err = stringField(m, "category"); err != nil {
		return p, err
	}
	if p.Notes, err = stringField(m, "notes"); err != nil {
		return p, err
	}
	if p.Location, err = stringField(m, "location"); err != nil {
		return p, err
	}
	if p.Tags, err = stringsField(m, "tags"); err != nil {
		return p, err
	}
	if p.Priority, err = stringField(m, "priority"); err != nil {
		return p, err
	}
	if p.Completed, err = boolField(m, "completed"); err != nil {
		return p, err
	}
	return p, nil
}

// decodeTaskParams decodes one untyped map into a typed task payload.
func decodeTaskParams(m map[string]any) (taskParams, error) {
	var p taskParams
	var err error
	if p.ID, err = stringField(m, "id"); err != nil {
		return p, err
	}
	if p.Title, err = stringField(m, "title"); err != nil {
		return p, err
	}
	if p.Due, err = timeField(m, "dueDate"); err != nil {
		return p, err
	}
	if !p.Due.Present() {
		if p.Due, err = timeField(m, "due"); err != nil {
			return p, err
		}
	}
	if p.Priority, err = stringField(m, "priority"); err != nil {
		return p, err
	}
	if p.Category, err = stringField(m, "category"); err != nil {
		return p, err
	}
	if p.Tags, err = stringsField(m, "tags"); err != nil {
		return p, err
	}
	if p.Notes, err = stringField(m, "notes"); err != nil {
		return p, err
	}
	if p.Event, err = stringField(m, "eventId"); err != nil {
		return p, err
	}
	if p.Parent, err = stringField(m, "parentId"); err != nil {
		return p, err
	}
	if p.Completed, err = boolField(m, "completed"); err != nil {
		return p, err
	}
	return p, nil
}

// decodeHabitParams decodes one untyped map into a typed habit payload.
func decodeHabitParams(m map[string]any) (habitParams, error) {
	var p habitParams
	var err error
	if p.ID, err = stringField(m, "id"); err != nil {
		return p, err
	}
	if p.Name, err = stringField(m, "name"); err != nil {
		return p, err
	}
	if p.Tracking, err = stringField(m, "type"); err != nil {
		return p, err
	}
	if p.Frequency, err = stringField(m, "frequency"); err != nil {
		return p, err
	}
	if p.Days, err = intsField(m, "days"); err != nil {
		return p, err
	}
	if p.Target, err = numberField(m, "target"); err != nil {
		return p, err
	}
	if p.Category, err = stringField(m, "category"); err != nil {
		return p, err
	}
	if p.Paused, err = boolField(m, "paused"); err != nil {
		return p, err
	}
	if p.Active, err = boolField(m, "active"); err != nil {
		return p, err
	}
	if p.Value, err = numberField(m, "value"); err != nil {
		return p, err
	}
	if p.Date, err = timeField(m, "date"); err != nil {
		return p, err
	}
	return p, nil
}

// decodeGoalParams decodes one untyped map into a typed goal payload.
func decodeGoalParams(m map[string]any) (goalParams, error) {
	var p goalParams
	var err error
	if p.ID, err = stringField(m, "id"); err != nil {
		return p, err
	}
	if p.Title, err = stringField(m, "title"); err != nil {
		return p, err
	}
	if p.Kind, err = stringField(m, "type"); err != nil {
		return p, err
	}
	if p.Target, err = numberField(m, "target"); err != nil {
		return p, err
	}
	if p.Current, err = numberField(m, "current"); err != nil {
		return p, err
	}
	if p.Delta, err = numberField(m, "delta"); err != nil {
		return p, err
	}
	if p.TargetDate, err = timeField(m, "targetDate"); err != nil {
		return p, err
	}
	if p.Milestones, err = milestoneList(m, "milestones"); err != nil {
		return p, err
	}
	if p.Milestone, err = stringField(m, "milestone"); err != nil {
		return p, err
	}
	if p.Habits, err = stringsField(m, "habits"); err != nil {
		return p, err
	}
	if p.Category, err = stringField(m, "category"); err != nil {
		return p, err
	}
	return p, nil
}

// decodeCategoryParams decodes one untyped map into a typed category payload.
func decodeCategoryParams(m map[string]any) (categoryParams, error) {
	var p categoryParams
	var err error
	if p.ID, err = stringField(m, "id"); err != nil {
		return p, err
	}
	if p.Name, err = stringField(m, "name"); err != nil {
		return p, err
	}
	if p.Color, err = stringField(m, "color"); err != nil {
		return p, err
	}
	if p.Icon, err = stringField(m, "icon"); err != nil {
		return p, err
	}
	if p.SortOrder, err = numberField(m, "sortOrder"); err != nil {
		return p, err
	}
	return p, nil
}

// decodeBulkParams decodes the shared selection/confirmation surface.
func decodeBulkParams(m map[string]any) (bulkParams, error) {
	var bp bulkParams
	var err error
	if bp.Items, err = itemList(m, "items"); err != nil {
		return bp, err
	}
	if bp.IDs, err = stringList(m, "ids"); err != nil {
		return bp, err
	}
	rawFilter, ok := m["filter"]
	if ok && rawFilter != nil {
		filterMap, isMap := rawFilter.(map[string]any)
		if !isMap {
			return bp, decodeErr("filter", "expected object")
		}
		if bp.Filter, err = decodeFilterParams(filterMap); err != nil {
			return bp, err
		}
		bp.HasFilter = true
	}
	updateAll, err := boolField(m, "updateAll")
	if err != nil {
		return bp, err
	}
	bp.UpdateAll = updateAll.Or(false)
	deleteAll, err := boolField(m, "deleteAll")
	if err != nil {
		return bp, err
	}
	bp.DeleteAll = deleteAll.Or(false)
	confirm, err := boolField(m, "confirm")
	if err != nil {
		return bp, err
	}
	bp.Confirm = confirm.Or(false)
	return bp, nil
}

// decodeFilterParams decodes the bulk-selection filter object.
func decodeFilterParams(m map[string]any) (filterParams, error) {
	var f filterParams
	var err error
	if f.Date, err = timeField(m, "date"); err != nil {
		return f, err
	}
	if f.From, err = timeField(m, "from"); err != nil {
		return f, err
	}
	if f.To, err = timeField(m, "to"); err != nil {
		return f, err
	}
	if f.Category, err = stringField(m, "category"); err != nil {
		return f, err
	}
	if f.Priority, err = stringField(m, "priority"); err != nil {
		return f, err
	}
	if f.Completed, err = boolField(m, "completed"); err != nil {
		return f, err
	}
	if f.Query, err = stringField(m, "query"); err != nil {
		return f, err
	}
	return f, nil
}

// stringField extracts one tri-state string field.
func stringField(m map[string]any, key string) (Field[string], error) {
	raw, ok := m[key]
	if !ok {
		return Field[string]{}, nil
	}
	if raw == nil {
		return NullField[string](), nil
	}
	s, ok := raw.(string)
	if !ok {
		return Field[string]{}, decodeErr(key, fmt.Sprintf("expected string, got %T", raw))
	}
	return FieldOf(s), nil
}

// boolField extracts one tri-state boolean field.
func boolField(m map[string]any, key string) (Field[bool], error) {
	raw, ok := m[key]
	if !ok {
		return Field[bool]{}, nil
	}
	if raw == nil {
		return NullField[bool](), nil
	}
	b, ok := raw.(bool)
	if !ok {
		return Field[bool]{}, decodeErr(key, fmt.Sprintf("expected boolean, got %T", raw))
	}
	return FieldOf(b), nil
}

// numberField extracts one tri-state numeric field.
func numberField(m map[string]any, key string) (Field[float64], error) {
	raw, ok := m[key]
	if !ok {
		return Field[float64]{}, nil
	}
	if raw == nil {
		return NullField[float64](), nil
	}
	f, ok := asFloat(raw)
	if !ok {
		return Field[float64]{}, decodeErr(key, fmt.Sprintf("expected number, got %T", raw))
	}
	return FieldOf(f), nil
}

// timeField extracts one tri-state instant field from an RFC 3339 timestamp
// or a YYYY-MM-DD civil date (decoded as midnight UTC).
func timeField(m map[string]any, key string) (Field[time.Time], error) {
	raw, ok := m[key]
	if !ok {
		return Field[time.Time]{}, nil
	}
	if raw == nil {
		return NullField[time.Time](), nil
	}
	s, ok := raw.(string)
	if !ok {
		return Field[time.Time]{}, decodeErr(key, fmt.Sprintf("expected timestamp string, got %T", raw))
	}
	ts, err := ParseInstant(s)
	if err != nil {
		return Field[time.Time]{}, decodeErr(key, fmt.Sprintf("not an ISO timestamp or date: %q", s))
	}
	return FieldOf(ts), nil
}

// stringsField extracts one tri-state string-list field. A bare string is
// accepted as a single-element list; conversational payloads emit both.
func stringsField(m map[string]any, key string) (Field[[]string], error) {
	raw, ok := m[key]
	if !ok {
		return Field[[]string]{}, nil
	}
	if raw == nil {
		return NullField[[]string](), nil
	}
	switch v := raw.(type) {
	case string:
		return FieldOf([]string{v}), nil
	case []string:
		return FieldOf(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return Field[[]string]{}, decodeErr(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected string, got %T", item))
			}
			out = append(out, s)
		}
		return FieldOf(out), nil
	default:
		return Field[[]string]{}, decodeErr(key, fmt.Sprintf("expected string array, got %T", raw))
	}
}

// intsField extracts one tri-state int-list field.
func intsField(m map[string]any, key string) (Field[[]int], error) {
	raw, ok := m[key]
	if !ok {
		return Field[[]int]{}, nil
	}
	if raw == nil {
		return NullField[[]int](), nil
	}
	list, ok := raw.([]any)
	if !ok {
		return Field[[]int]{}, decodeErr(key, fmt.Sprintf("expected integer array, got %T", raw))
	}
	out := make([]int, 0, len(list))
	for i, item := range list {
		f, ok := asFloat(item)
		if !ok || f != float64(int(f)) {
			return Field[[]int]{}, decodeErr(fmt.Sprintf("%s[%d]", key, i), "expected integer")
		}
		out = append(out, int(f))
	}
	return FieldOf(out), nil
}

// stringList extracts an optional plain list of strings (no null state).
func stringList(m map[string]any, key string) ([]string, error) {
	f, err := stringsField(m, key)
	if err != nil {
		return nil, err
	}
	v, _ := f.Value()
	return v, nil
}

// itemList extracts the optional per-entity payload list.
func itemList(m map[string]any, key string) ([]map[string]any, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		if typed, isTyped := raw.([]map[string]any); isTyped {
			return typed, nil
		}
		return nil, decodeErr(key, fmt.Sprintf("expected object array, got %T", raw))
	}
	out := make([]map[string]any, 0, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, decodeErr(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected object, got %T", item))
		}
		out = append(out, obj)
	}
	return out, nil
}

// milestoneList extracts goal milestones from strings or {title, done} objects.
func milestoneList(m map[string]any, key string) ([]domain.Milestone, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, decodeErr(key, fmt.Sprintf("expected array, got %T", raw))
	}
	out := make([]domain.Milestone, 0, len(list))
	for i, item := range list {
		switch v := item.(type) {
		case string:
			out = append(out, domain.Milestone{Title: v})
		case map[string]any:
			title, err := stringField(v, "title")
			if err != nil {
				return nil, err
			}
			done, err := boolField(v, "done")
			if err != nil {
				return nil, err
			}
			out = append(out, domain.Milestone{Title: title.Or(""), Done: done.Or(false)})
		default:
			return nil, decodeErr(fmt.Sprintf("%s[%d]", key, i), fmt.Sprintf("expected string or object, got %T", item))
		}
	}
	return out, nil
}

// asFloat widens the numeric representations JSON decoding and direct map
// construction produce.
func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ParseInstant parses an RFC 3339 timestamp or a YYYY-MM-DD civil date.
func ParseInstant(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
