// Package model defines the core domain types for the money book.
package model

import (
	"fmt"
	"strings"
)

// CategoryType indicates whether a category applies to income or expense entries.
type CategoryType string

const (
	// CategoryTypeIncome represents income categories.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents expense categories.
	CategoryTypeExpense CategoryType = "expense"
)

// ParseCategoryType normalizes a raw type value, accepting both the English
// enum values and the localized Korean forms used in CSV files.
func ParseCategoryType(s string) (CategoryType, error) {
	switch strings.TrimSpace(s) {
	case "income", "수입":
		return CategoryTypeIncome, nil
	case "expense", "지출":
		return CategoryTypeExpense, nil
	default:
		return "", fmt.Errorf("invalid category type %q", s)
	}
}

// Localized returns the Korean display form of the type (수입/지출).
func (t CategoryType) Localized() string {
	if t == CategoryTypeIncome {
		return "수입"
	}
	return "지출"
}

// Valid reports whether the type is one of the two known enum values.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Category is one node of the section/category/subcategory taxonomy (관/항/목).
// Subcategory may be empty for section- or category-only nodes.
type Category struct {
	ID          string
	Type        CategoryType
	Section     string
	Category    string
	Subcategory string
	Order       int
}

// CompositeKey derives the uniqueness key used for duplicate detection: the
// lowercase concatenation of type|section|category|subcategory with labels
// trimmed. It is never stored as a primary key.
func (c Category) CompositeKey() string {
	return strings.ToLower(fmt.Sprintf("%s|%s|%s|%s",
		c.Type,
		strings.TrimSpace(c.Section),
		strings.TrimSpace(c.Category),
		strings.TrimSpace(c.Subcategory),
	))
}

// Same reports whether two categories refer to the same taxonomy node,
// ignoring case and surrounding whitespace on all label fields.
func (c Category) Same(other Category) bool {
	return c.CompositeKey() == other.CompositeKey()
}

// Trimmed returns a copy with surrounding whitespace removed from the three
// label fields.
func (c Category) Trimmed() Category {
	c.Section = strings.TrimSpace(c.Section)
	c.Category = strings.TrimSpace(c.Category)
	c.Subcategory = strings.TrimSpace(c.Subcategory)
	return c
}

// Validate checks the fields required of every category row.
func (c Category) Validate() error {
	if !c.Type.Valid() {
		return fmt.Errorf("invalid category type %q", c.Type)
	}
	if strings.TrimSpace(c.Section) == "" {
		return fmt.Errorf("category section cannot be empty")
	}
	if strings.TrimSpace(c.Category) == "" {
		return fmt.Errorf("category name cannot be empty")
	}
	return nil
}

// DefaultCategories are the starter rows seeded by the reset command and
// written into otherwise empty category exports as a template.
func DefaultCategories() []Category {
	return []Category{
		{Type: CategoryTypeIncome, Section: "급여", Category: "상여금", Subcategory: "1분기"},
		{Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Subcategory: "반찬재료"},
	}
}
