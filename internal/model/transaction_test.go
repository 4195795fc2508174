package model

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{input: "12345", want: 12345},
		{input: "12,345", want: 12345},
		{input: "₩1,234,567", want: 1234567},
		{input: " 500000 ", want: 500000},
		{input: "-2,000", want: -2000},
		{input: "0", want: 0},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "-", wantErr: true},
		{input: "₩", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %d", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{
		Date: "2024-06-01", Type: CategoryTypeExpense,
		Section: "식비", Category: "부식비", Amount: 100,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid transaction, got %v", err)
	}

	tests := []struct {
		name string
		txn  Transaction
	}{
		{"blank date", Transaction{Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Amount: 100}},
		{"unknown type", Transaction{Date: "2024-06-01", Type: "transfer", Section: "식비", Category: "부식비"}},
		{"blank section", Transaction{Date: "2024-06-01", Type: CategoryTypeExpense, Category: "부식비"}},
		{"blank category", Transaction{Date: "2024-06-01", Type: CategoryTypeExpense, Section: "식비"}},
		{"negative amount", Transaction{Date: "2024-06-01", Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Amount: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.txn.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestTransaction_Trimmed(t *testing.T) {
	txn := Transaction{
		Date: " 2024-06-01 ", Section: " 식비", Category: "부식비 ",
		Subcategory: " 반찬재료 ", Memo: " 장보기 ",
	}
	got := txn.Trimmed()
	if got.Date != "2024-06-01" || got.Section != "식비" || got.Category != "부식비" ||
		got.Subcategory != "반찬재료" || got.Memo != "장보기" {
		t.Errorf("Fields not trimmed: %+v", got)
	}
}
