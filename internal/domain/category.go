package domain

import (
	"strings"
	"time"
)

type Category struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	Active    bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CategoryInput struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	SortOrder int
}

func NewCategory(in CategoryInput, now time.Time) (Category, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)

	if in.ID == "" {
		return Category{}, ErrInvalidID
	}
	if in.Name == "" {
		return Category{}, ErrInvalidName
	}

	return Category{
		ID:        in.ID,
		Name:      in.Name,
		Color:     strings.TrimSpace(in.Color),
		Icon:      strings.TrimSpace(in.Icon),
		Active:    true,
		SortOrder: in.SortOrder,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}, nil
}

func (c *Category) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	c.Name = name
	c.UpdatedAt = now.UTC()
	return nil
}

func (c *Category) SetAppearance(color, icon string, now time.Time) {
	color = strings.TrimSpace(color)
	icon = strings.TrimSpace(icon)
	if color != "" {
		c.Color = color
	}
	if icon != "" {
		c.Icon = icon
	}
	c.UpdatedAt = now.UTC()
}

func (c *Category) Deactivate(now time.Time) {
	c.Active = false
	c.UpdatedAt = now.UTC()
}

// NormalizeName produces the case-folded, whitespace-collapsed key used for
// name matching and uniqueness among active categories.
func NormalizeName(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(folded), " ")
}
