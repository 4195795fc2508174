package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Transaction is a single dated income or expense entry. The section,
// category and subcategory labels are denormalized copies of the taxonomy at
// the time of entry; renaming a category does not cascade to past entries.
type Transaction struct {
	ID          string
	Date        string
	Type        CategoryType
	Section     string
	Category    string
	Subcategory string
	Amount      int64
	Memo        string
}

// Trimmed returns a copy with surrounding whitespace removed from all free
// text fields.
func (t Transaction) Trimmed() Transaction {
	t.Date = strings.TrimSpace(t.Date)
	t.Section = strings.TrimSpace(t.Section)
	t.Category = strings.TrimSpace(t.Category)
	t.Subcategory = strings.TrimSpace(t.Subcategory)
	t.Memo = strings.TrimSpace(t.Memo)
	return t
}

// Validate checks the fields required of every transaction row.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Date) == "" {
		return fmt.Errorf("transaction date cannot be empty")
	}
	if !t.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", t.Type)
	}
	if strings.TrimSpace(t.Section) == "" {
		return fmt.Errorf("transaction section cannot be empty")
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("transaction category cannot be empty")
	}
	if t.Amount < 0 {
		return fmt.Errorf("transaction amount cannot be negative: %d", t.Amount)
	}
	return nil
}

// ParseAmount converts a raw amount cell into an integer number of the base
// currency unit. Thousands separators, currency symbols and surrounding
// whitespace are stripped before parsing. Unparseable input is rejected
// rather than coerced to zero so bad rows fail loudly at the boundary.
func ParseAmount(raw string) (int64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, raw)
	if cleaned == "" || cleaned == "-" {
		return 0, fmt.Errorf("unparseable amount %q", raw)
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q: %w", raw, err)
	}
	return n, nil
}
