package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/model"
)

func TestStore_AddTransaction_NormalizedAmountRoundTrip(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// The boundary normalizes "12,345" before the store sees it.
	amount, err := model.ParseAmount("12,345")
	if err != nil {
		t.Fatalf("Failed to parse amount: %v", err)
	}

	if _, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeExpense,
		Section: "식비", Category: "부식비", Amount: amount,
	}); err != nil {
		t.Fatalf("Failed to add transaction: %v", err)
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}
	if transactions[0].Amount != 12345 {
		t.Errorf("Expected amount 12345, got %d", transactions[0].Amount)
	}
}

func TestStore_AddTransaction_LabelScenario(t *testing.T) {
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

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}
	txn := transactions[0]
	if txn.Amount != 500000 {
		t.Errorf("Expected amount 500000, got %d", txn.Amount)
	}
	if txn.Section != "급여" || txn.Category != "상여금" || txn.Subcategory != "1분기" {
		t.Errorf("Label fields changed: %+v", txn)
	}
}

func TestStore_GetTransactions_MostRecentFirst(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	for _, date := range []string{"2024-01-05", "2024-03-01", "2024-02-15"} {
		if _, err := store.AddTransaction(ctx, model.Transaction{
			Date: date, Type: model.CategoryTypeExpense,
			Section: "식비", Category: "부식비", Amount: 100,
		}); err != nil {
			t.Fatalf("Failed to add transaction for %s: %v", date, err)
		}
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}

	want := []string{"2024-03-01", "2024-02-15", "2024-01-05"}
	if len(transactions) != len(want) {
		t.Fatalf("Expected %d transactions, got %d", len(want), len(transactions))
	}
	for i, txn := range transactions {
		if txn.Date != want[i] {
			t.Errorf("Position %d: got date %s, want %s", i, txn.Date, want[i])
		}
	}
}

func TestStore_GetTransactions_MixedDateFormats(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	// Same ordering must hold across the accepted input formats.
	for _, date := range []string{"2024.01.05", "01/03/2024", "2024-02-15"} {
		if _, err := store.AddTransaction(ctx, model.Transaction{
			Date: date, Type: model.CategoryTypeIncome,
			Section: "급여", Category: "월급", Amount: 100,
		}); err != nil {
			t.Fatalf("Failed to add transaction for %s: %v", date, err)
		}
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	want := []string{"01/03/2024", "2024-02-15", "2024.01.05"}
	for i, txn := range transactions {
		if txn.Date != want[i] {
			t.Errorf("Position %d: got date %s, want %s", i, txn.Date, want[i])
		}
	}
}

func TestStore_UpdateTransaction_FullReplace(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeExpense,
		Section: "식비", Category: "부식비", Amount: 100, Memo: "old",
	})
	if err != nil {
		t.Fatalf("Failed to add transaction: %v", err)
	}

	replacement := model.Transaction{
		Date: "2024-06-02", Type: model.CategoryTypeExpense,
		Section: "교통", Category: "대중교통", Amount: 200,
	}
	if err := store.UpdateTransaction(ctx, created.ID, replacement); err != nil {
		t.Fatalf("Failed to update transaction: %v", err)
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}
	txn := transactions[0]
	if txn.ID != created.ID {
		t.Errorf("Update must keep the id, got %q want %q", txn.ID, created.ID)
	}
	if txn.Section != "교통" || txn.Amount != 200 || txn.Memo != "" {
		t.Errorf("Record not fully replaced: %+v", txn)
	}
}

func TestStore_DeleteTransaction_Idempotent(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	created, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeExpense,
		Section: "식비", Category: "부식비", Amount: 100,
	})
	if err != nil {
		t.Fatalf("Failed to add transaction: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.DeleteTransaction(ctx, created.ID); err != nil {
			t.Errorf("Delete attempt %d failed: %v", i+1, err)
		}
	}
}

func TestStore_ReplaceAllTransactions(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seeded, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2023-01-01", Type: model.CategoryTypeExpense,
		Section: "없어질", Category: "항목", Amount: 1,
	})
	if err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}

	input := []model.Transaction{
		{Date: "2024-06-01", Type: model.CategoryTypeIncome, Section: " 급여 ", Category: "월급", Amount: 1000},
		{Date: "2024-06-02", Type: model.CategoryTypeExpense, Section: "식비", Category: "부식비", Amount: 2000, Memo: " 장보기 "},
	}
	if err := store.ReplaceAllTransactions(ctx, input); err != nil {
		t.Fatalf("ReplaceAllTransactions failed: %v", err)
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("Expected 2 transactions, got %d", len(transactions))
	}
	for _, txn := range transactions {
		if txn.ID == "" || txn.ID == seeded.ID {
			t.Errorf("Expected fresh ids, got %q", txn.ID)
		}
		if txn.Section != "급여" && txn.Section != "식비" {
			t.Errorf("Unexpected section %q", txn.Section)
		}
		if txn.Memo == " 장보기 " {
			t.Errorf("Memo not trimmed")
		}
	}
}

func TestStore_ReplaceAllTransactions_RejectsInvalidInput(t *testing.T) {
	store, cleanup := createTestStore(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.AddTransaction(ctx, model.Transaction{
		Date: "2024-06-01", Type: model.CategoryTypeIncome,
		Section: "급여", Category: "월급", Amount: 1000,
	}); err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}

	// One invalid record rejects the whole batch before the clear.
	input := []model.Transaction{
		{Date: "2024-06-02", Type: model.CategoryTypeExpense, Section: "식비", Category: "부식비", Amount: 100},
		{Date: "", Type: model.CategoryTypeExpense, Section: "식비", Category: "부식비", Amount: 100},
	}
	err := store.ReplaceAllTransactions(ctx, input)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !errors.Is(err, common.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}

	transactions, err := store.GetTransactions(ctx)
	if err != nil {
		t.Fatalf("Failed to get transactions: %v", err)
	}
	if len(transactions) != 1 {
		t.Errorf("Store must be untouched after rejected batch, got %d rows", len(transactions))
	}
}
