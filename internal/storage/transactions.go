package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/model"
)

// AddTransaction inserts a new entry, trimming text fields and assigning an
// id when the caller did not supply one.
func (s *Store) AddTransaction(ctx context.Context, txn model.Transaction) (*model.Transaction, error) {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	created := txn.Trimmed()
	if created.ID == "" {
		created.ID = uuid.NewString()
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, type, section, category, subcategory, amount, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.Date, created.Type, created.Section, created.Category, created.Subcategory, created.Amount, created.Memo,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to add transaction: %v", common.ErrWrite, err)
	}

	slog.Info("added transaction", "id", created.ID, "date", created.Date, "amount", created.Amount)
	return &created, nil
}

// UpdateTransaction replaces the full record keyed by id. The caller must
// supply the complete record; the id argument wins over any id set on it.
func (s *Store) UpdateTransaction(ctx context.Context, id string, txn model.Transaction) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	updated := txn.Trimmed()
	updated.ID = id

	_, err = db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transactions (id, date, type, section, category, subcategory, amount, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		updated.ID, updated.Date, updated.Type, updated.Section, updated.Category, updated.Subcategory, updated.Amount, updated.Memo,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update transaction: %v", common.ErrWrite, err)
	}

	slog.Debug("updated transaction", "id", updated.ID)
	return nil
}

// DeleteTransaction removes an entry by id. Deleting an id that does not
// exist is a no-op success.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%w: failed to delete transaction: %v", common.ErrWrite, err)
	}
	return nil
}

// GetTransactions returns all entries most recent first. Dates are stored as
// given, in any of the accepted input formats, so ordering parses each date
// rather than comparing raw strings; entries on the same day keep their scan
// order.
func (s *Store) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, date, type, section, category, subcategory, amount, memo FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
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

	sort.SliceStable(transactions, func(i, j int) bool {
		return dateSortKey(transactions[i].Date).After(dateSortKey(transactions[j].Date))
	})

	slog.Debug("retrieved transactions", "count", len(transactions))
	return transactions, nil
}

// ReplaceAllTransactions clears the store and reinserts every record with a
// fresh id and trimmed text fields. Clear and insert run in one database
// transaction, so a failure mid-insert rolls back to the pre-replace state.
func (s *Store) ReplaceAllTransactions(ctx context.Context, transactions []model.Transaction) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	for i, txn := range transactions {
		if err := validateTransaction(txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrWrite, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("%w: failed to clear transactions: %v", common.ErrWrite, err)
	}
	for _, txn := range transactions {
		fresh := txn.Trimmed()
		fresh.ID = uuid.NewString()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, date, type, section, category, subcategory, amount, memo)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			fresh.ID, fresh.Date, fresh.Type, fresh.Section, fresh.Category, fresh.Subcategory, fresh.Amount, fresh.Memo,
		); err != nil {
			return fmt.Errorf("%w: failed to add transaction during import: %v", common.ErrWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrWrite, err)
	}

	slog.Info("replaced transactions", "count", len(transactions))
	return nil
}

// ClearAllTransactions empties the transaction store unconditionally.
func (s *Store) ClearAllTransactions(ctx context.Context) error {
	db, err := s.ensureConn(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("%w: failed to clear transactions: %v", common.ErrWrite, err)
	}
	slog.Info("cleared all transactions")
	return nil
}

// dateFormats are the layouts accepted at the CSV boundary. Dates that match
// none of them sort to the epoch, which pushes them to the end of the
// most-recent-first listing.
var dateFormats = []string{"2006-01-02", "02/01/2006", "2006.01.02", "2006.01.02."}

func dateSortKey(date string) time.Time {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, date); err == nil {
			return t
		}
	}
	return time.Time{}
}
