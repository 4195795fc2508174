package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sehyunpark/moneybook/internal/model"
)

// Helper function to create a migrated test store.
func createTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// rawConn opens a second, independent connection to the same database file.
func rawConn(t *testing.T, store *Store) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", store.dbPath+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("Failed to open raw connection: %v", err)
	}
	return db
}

func TestStore_LazyConnect(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewStore(filepath.Join(tmpDir, "lazy.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { _ = store.Close() }()

	// No connection yet; the first operation opens and migrates.
	ctx := context.Background()
	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("First operation failed: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("Expected empty store, got %d categories", len(categories))
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("Failed to get schema version: %v", err)
	}
	if version != expectedSchemaVersion {
		t.Errorf("Expected schema version %d, got %d", expectedSchemaVersion, version)
	}
}

func TestStore_ConcurrentConnect(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.GetCategories(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent operation failed: %v", err)
	}
}

func TestStore_RecoversFromDroppedTable(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeIncome,
		Section: "급여", Category: "월급", Amount: 1000,
	}); err != nil {
		t.Fatalf("Failed to add transaction: %v", err)
	}

	// Simulate an external factory reset that removed one object store.
	raw := rawConn(t, store)
	if _, err := raw.Exec(`DROP TABLE categories`); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}
	if err := raw.Close(); err != nil {
		t.Fatalf("Failed to close raw connection: %v", err)
	}

	// The next operation must repair the missing store...
	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("Expected recovery, got error: %v", err)
	}
	if len(categories) != 0 {
		t.Errorf("Expected recreated store to be empty, got %d rows", len(categories))
	}

	// ...without touching rows in the surviving store.
	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Expected transaction to survive recovery, got %d rows", len(transactions))
	}
}

func TestStore_ClearAllScenario(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := store.AddCategory(ctx, model.Category{
		Type: model.CategoryTypeIncome, Section: "급여", Category: "상여금", Subcategory: "1분기",
	}); err != nil {
		t.Fatalf("Failed to add category: %v", err)
	}
	if _, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeIncome,
		Section: "급여", Category: "상여금", Subcategory: "1분기", Amount: 500000,
	}); err != nil {
		t.Fatalf("Failed to add transaction: %v", err)
	}

	if err := store.ClearAllCategories(ctx); err != nil {
		t.Fatalf("Failed to clear categories: %v", err)
	}
	if err := store.ClearAllTransactions(ctx); err != nil {
		t.Fatalf("Failed to clear transactions: %v", err)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("Failed to get categories: %v", err)
	}
	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(categories) != 0 || len(transactions) != 0 {
		t.Errorf("Expected both stores empty, got %d categories and %d transactions",
			len(categories), len(transactions))
	}
}
