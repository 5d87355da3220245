package engine

import (
	"strconv"
	"strings"
)

// Contextual markers expanded during bulk content generation.
const (
	markerAuto    = "{auto}"
	markerContext = "{context}"
	markerUnique  = "{unique}"
)

// TemplateField selects the field-appropriate derivation for {auto}.
type TemplateField string

// FieldNotes and related constants name the templatable fields.
const (
	FieldTitle    TemplateField = "title"
	FieldNotes    TemplateField = "notes"
	FieldLocation TemplateField = "location"
	FieldTags     TemplateField = "tags"
)

// TemplateTarget is the per-entity snapshot a template is expanded against.
// Index is 1-based; Total is the batch size.
type TemplateTarget struct {
	Label    string
	Kind     string
	Category string
	Priority string
	Index    int
	Total    int
}

// HasMarkers reports whether a template contains any contextual marker.
func HasMarkers(template string) bool {
	return strings.Contains(template, markerAuto) ||
		strings.Contains(template, markerContext) ||
		strings.Contains(template, markerUnique)
}

// ExpandTemplate substitutes the contextual markers for one entity at one
// batch position. It is pure: identical (template, target, field) inputs
// yield identical output. Templates without markers pass through verbatim,
// which is the "same value for all" broadcast path.
func ExpandTemplate(template string, field TemplateField, t TemplateTarget) string {
	if !HasMarkers(template) {
		return template
	}
	out := strings.ReplaceAll(template, markerAuto, autoValue(field, t))
	out = strings.ReplaceAll(out, markerContext, contextValue(t))
	out = strings.ReplaceAll(out, markerUnique, uniqueValue(t))
	return out
}

// autoValue derives the field-appropriate value from the entity's own label.
func autoValue(field TemplateField, t TemplateTarget) string {
	switch field {
	case FieldNotes:
		return "Notes for " + t.Label
	case FieldLocation:
		return "Location for " + t.Label
	case FieldTags:
		return tagToken(t.Label)
	default:
		return t.Label
	}
}

// contextValue composes the entity's categorical attributes.
func contextValue(t TemplateTarget) string {
	kind := t.Kind
	if kind == "" {
		kind = "item"
	}
	switch {
	case t.Priority != "" && t.Category != "":
		return t.Priority + " priority " + kind + " in " + t.Category
	case t.Priority != "":
		return t.Priority + " priority " + kind
	case t.Category != "":
		return kind + " in " + t.Category
	default:
		return kind
	}
}

// uniqueValue renders the ordinal position within the batch.
func uniqueValue(t TemplateTarget) string {
	return strconv.Itoa(t.Index) + " of " + strconv.Itoa(t.Total)
}

// tagToken folds a label into a tag-shaped token.
func tagToken(label string) string {
	folded := strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.Fields(folded), "-")
}
