package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/sehyunpark/moneybook/internal/model"
)

// expectedSchemaVersion is the latest schema version the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const expectedSchemaVersion = 3

// migration represents a database schema migration.
type migration struct {
	up          func(*sql.Tx) error
	description string
	version     int
}

func categoriesSchema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			section TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			display_order INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_type ON categories(type)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_order ON categories(display_order)`,
	}
}

func transactionsSchema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			date TEXT NOT NULL,
			type TEXT NOT NULL,
			section TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL DEFAULT '',
			amount INTEGER NOT NULL,
			memo TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_type ON transactions(type)`,
	}
}

var migrations = []migration{
	{
		version:     1,
		description: "Initial schema",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					type TEXT NOT NULL,
					section TEXT NOT NULL,
					category TEXT NOT NULL,
					subcategory TEXT NOT NULL DEFAULT ''
				)`,
				`CREATE INDEX idx_categories_type ON categories(type)`,
			}
			queries = append(queries, transactionsSchema()...)

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		version:     2,
		description: "Add display ordering to categories",
		up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE categories ADD COLUMN display_order INTEGER`,
				`CREATE INDEX idx_categories_order ON categories(display_order)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		version:     3,
		description: "Rebuild stores, dedupe categories and reassign dense order",
		up:          rebuildStores,
	},
}

// rebuildStores snapshots both tables, drops and recreates them with the
// current layout, then rehydrates: categories are deduplicated by composite
// key (first occurrence wins) and reassigned a dense 0-based order by array
// position; transactions are reinserted unmodified. Upgrade doubles as a
// repair pass for data written by older versions.
func rebuildStores(tx *sql.Tx) error {
	categories, err := snapshotCategories(tx)
	if err != nil {
		return err
	}
	transactions, err := snapshotTransactions(tx)
	if err != nil {
		return err
	}

	for _, table := range []string{tableCategories, tableTransactions} {
		if _, err := tx.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	for _, stmt := range append(categoriesSchema(), transactionsSchema()...) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to recreate schema: %w", err)
		}
	}

	rebuilt := reindexCategories(dedupeCategories(categories))
	for _, cat := range rebuilt {
		if _, err := tx.Exec(
			`INSERT INTO categories (id, type, section, category, subcategory, display_order)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			cat.ID, cat.Type, cat.Section, cat.Category, cat.Subcategory, cat.Order,
		); err != nil {
			return fmt.Errorf("failed to restore category %s: %w", cat.ID, err)
		}
	}
	for _, txn := range transactions {
		if _, err := tx.Exec(
			`INSERT INTO transactions (id, date, type, section, category, subcategory, amount, memo)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID, txn.Date, txn.Type, txn.Section, txn.Category, txn.Subcategory, txn.Amount, txn.Memo,
		); err != nil {
			return fmt.Errorf("failed to restore transaction %s: %w", txn.ID, err)
		}
	}

	if dropped := len(categories) - len(rebuilt); dropped > 0 {
		slog.Info("dropped duplicate categories during rebuild", "count", dropped)
	}
	return nil
}

func snapshotCategories(tx *sql.Tx) ([]model.Category, error) {
	rows, err := tx.Query(
		`SELECT id, type, section, category, subcategory, display_order FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot categories: %w", err)
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
	return categories, nil
}

func snapshotTransactions(tx *sql.Tx) ([]model.Transaction, error) {
	rows, err := tx.Query(
		`SELECT id, date, type, section, category, subcategory, amount, memo FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot transactions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("failed to close rows", "error", cerr)
		}
	}()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		if err := rows.Scan(&txn.ID, &txn.Date, &txn.Type, &txn.Section, &txn.Category, &txn.Subcategory, &txn.Amount, &txn.Memo); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// dedupeCategories removes composite-key duplicates, keeping the first
// occurrence of each key.
func dedupeCategories(categories []model.Category) []model.Category {
	seen := make(map[string]bool, len(categories))
	unique := make([]model.Category, 0, len(categories))
	for _, cat := range categories {
		key := cat.CompositeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, cat)
	}
	return unique
}

// reindexCategories reassigns a dense 0-based order by slice position.
func reindexCategories(categories []model.Category) []model.Category {
	for i := range categories {
		categories[i].Order = i
	}
	return categories
}

// migrate applies all pending database migrations to db.
func migrate(ctx context.Context, db *sql.DB) error {
	var currentVersion int
	err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, txErr := db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := m.up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.version, commitErr)
		}

		slog.Info("Applied migration",
			"version", m.version,
			"description", m.description)
	}

	var finalVersion int
	err = db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != expectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", expectedSchemaVersion, finalVersion)
	}

	return nil
}
