package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/model"
)

// AddCategory inserts a new category with a fresh id and the next display
// order (max existing order + 1; an empty store starts at 0). Label fields
// are trimmed before insert. The store is deliberately permissive about
// composite-key duplicates here; callers perform the duplicate check before
// adding, and only ReplaceAllCategories deduplicates.
func (s *Store) AddCategory(ctx context.Context, cat model.Category) (*model.Category, error) {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateCategory(cat); err != nil {
		return nil, err
	}

	nextOrder, err := nextDisplayOrder(ctx, db)
	if err != nil {
		return nil, err
	}

	created := cat.Trimmed()
	created.ID = uuid.NewString()
	created.Order = nextOrder

	_, err = db.ExecContext(ctx,
		`INSERT INTO categories (id, type, section, category, subcategory, display_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.Type, created.Section, created.Category, created.Subcategory, created.Order,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to add category: %v", common.ErrWrite, err)
	}

	slog.Info("added category",
		"type", created.Type,
		"section", created.Section,
		"category", created.Category,
		"subcategory", created.Subcategory,
		"order", created.Order)
	return &created, nil
}

// nextDisplayOrder reads the next free display position. This is a read, so
// a failure surfaces as a plain query error rather than ErrWrite.
func nextDisplayOrder(ctx context.Context, db *sql.DB) (int, error) {
	var maxOrder sql.NullInt64
	err := db.QueryRowContext(ctx, `SELECT MAX(display_order) FROM categories`).Scan(&maxOrder)
	if err != nil {
		return 0, fmt.Errorf("failed to query max display order: %w", err)
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// UpdateCategory replaces the full record keyed by id. Label fields are
// trimmed. A storage-level constraint violation maps to ErrConflict; other
// faults map to ErrWrite.
func (s *Store) UpdateCategory(ctx context.Context, cat model.Category) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if err := validateString(cat.ID, "id"); err != nil {
		return err
	}
	if err := validateCategory(cat); err != nil {
		return err
	}

	updated := cat.Trimmed()
	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO categories (id, type, section, category, subcategory, display_order)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		updated.ID, updated.Type, updated.Section, updated.Category, updated.Subcategory, updated.Order,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: category already exists", common.ErrConflict)
		}
		return fmt.Errorf("%w: failed to update category: %v", common.ErrWrite, err)
	}

	slog.Debug("updated category", "id", updated.ID)
	return nil
}

// DeleteCategory removes a category by id. Deleting an id that does not
// exist is a no-op success.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete category: %v", common.ErrWrite, err)
	}
	return nil
}

// GetCategories returns every category ascending by display order. Records
// lacking an order (legacy or partially migrated data) are assigned their
// scan position as a fallback before sorting, so the result is always
// totally ordered.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, type, section, category, subcategory, display_order FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("failed to close rows", "error", cerr)
		}
	}()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var order sql.NullInt64
		if err := rows.Scan(&cat.ID, &cat.Type, &cat.Section, &cat.Category, &cat.Subcategory, &order); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if order.Valid {
			cat.Order = int(order.Int64)
		} else {
			cat.Order = len(categories)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Order < categories[j].Order
	})

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// ReplaceAllCategories clears the store and repopulates it from the given
// list: composite-key duplicates are dropped (first occurrence wins), the
// survivors are sorted income-before-expense then by section, category and
// subcategory, and each gets a fresh id and a dense 0-based order by final
// position. Clear and insert run in one database transaction, so a failure
// mid-insert rolls back to the pre-replace state.
func (s *Store) ReplaceAllCategories(ctx context.Context, categories []model.Category) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	for i, cat := range categories {
		if err := validateCategory(cat); err != nil {
			return fmt.Errorf("category at index %d: %w", i, err)
		}
	}

	prepared := prepareReplacement(categories)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("%w: failed to clear categories: %v", common.ErrWrite, err)
	}
	for _, cat := range prepared {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (id, type, section, category, subcategory, display_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cat.ID, cat.Type, cat.Section, cat.Category, cat.Subcategory, cat.Order,
		); err != nil {
			return fmt.Errorf("%w: failed to add category during import: %v", common.ErrWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrWrite, err)
	}

	slog.Info("replaced categories", "count", len(prepared), "dropped", len(categories)-len(prepared))
	return nil
}

// ClearAllCategories empties the category store unconditionally.
func (s *Store) ClearAllCategories(ctx context.Context) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("%w: failed to clear categories: %v", common.ErrWrite, err)
	}
	slog.Info("cleared all categories")
	return nil
}

// prepareReplacement trims, dedupes, sorts and reindexes an import list.
// Income sorts before expense; within a type the sort is case-sensitive
// lexicographic on section, category, then subcategory, so an empty
// subcategory comes before any non-empty one.
func prepareReplacement(categories []model.Category) []model.Category {
	trimmed := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		trimmed = append(trimmed, cat.Trimmed())
	}

	unique := dedupeCategories(trimmed)

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := unique[i], unique[j]
		if a.Type != b.Type {
			return a.Type == model.CategoryTypeIncome
		}
		if a.Section != b.Section {
			return strings.Compare(a.Section, b.Section) < 0
		}
		if a.Category != b.Category {
			return strings.Compare(a.Category, b.Category) < 0
		}
		return strings.Compare(a.Subcategory, b.Subcategory) < 0
	})

	for i := range unique {
		unique[i].ID = uuid.NewString()
	}
	return reindexCategories(unique)
}
