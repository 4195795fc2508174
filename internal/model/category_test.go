package model

import "testing"

func TestCompositeKey(t *testing.T) {
	tests := []struct {
		name string
		a    Category
		b    Category
		same bool
	}{
		{
			name: "identical",
			a:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Subcategory: "반찬재료"},
			b:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Subcategory: "반찬재료"},
			same: true,
		},
		{
			name: "whitespace insensitive",
			a:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비"},
			b:    Category{Type: CategoryTypeExpense, Section: " 식비 ", Category: "부식비 "},
			same: true,
		},
		{
			name: "case insensitive",
			a:    Category{Type: CategoryTypeIncome, Section: "Salary", Category: "Bonus"},
			b:    Category{Type: CategoryTypeIncome, Section: "salary", Category: "BONUS"},
			same: true,
		},
		{
			name: "type distinguishes",
			a:    Category{Type: CategoryTypeIncome, Section: "식비", Category: "부식비"},
			b:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비"},
			same: false,
		},
		{
			name: "subcategory distinguishes",
			a:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비", Subcategory: "반찬재료"},
			b:    Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비"},
			same: false,
		},
		{
			name: "ids and order are ignored",
			a:    Category{ID: "x", Order: 3, Type: CategoryTypeExpense, Section: "식비", Category: "부식비"},
			b:    Category{ID: "y", Order: 9, Type: CategoryTypeExpense, Section: "식비", Category: "부식비"},
			same: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Same(tt.b); got != tt.same {
				t.Errorf("Same() = %v, want %v (keys %q vs %q)",
					got, tt.same, tt.a.CompositeKey(), tt.b.CompositeKey())
			}
		})
	}
}

func TestParseCategoryType(t *testing.T) {
	tests := []struct {
		input   string
		want    CategoryType
		wantErr bool
	}{
		{input: "income", want: CategoryTypeIncome},
		{input: "expense", want: CategoryTypeExpense},
		{input: "수입", want: CategoryTypeIncome},
		{input: "지출", want: CategoryTypeExpense},
		{input: " 수입 ", want: CategoryTypeIncome},
		{input: "transfer", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategoryType(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCategoryType(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryType_Localized(t *testing.T) {
	if got := CategoryTypeIncome.Localized(); got != "수입" {
		t.Errorf("Expected 수입, got %q", got)
	}
	if got := CategoryTypeExpense.Localized(); got != "지출" {
		t.Errorf("Expected 지출, got %q", got)
	}
}

func TestCategory_Validate(t *testing.T) {
	valid := Category{Type: CategoryTypeExpense, Section: "식비", Category: "부식비"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid category, got %v", err)
	}

	tests := []struct {
		name string
		cat  Category
	}{
		{"missing type", Category{Section: "식비", Category: "부식비"}},
		{"unknown type", Category{Type: "transfer", Section: "식비", Category: "부식비"}},
		{"blank section", Category{Type: CategoryTypeExpense, Section: "  ", Category: "부식비"}},
		{"blank category", Category{Type: CategoryTypeExpense, Section: "식비", Category: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cat.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}

	// Empty subcategory is a legal taxonomy node.
	noSub := Category{Type: CategoryTypeIncome, Section: "급여", Category: "월급"}
	if err := noSub.Validate(); err != nil {
		t.Errorf("Empty subcategory must validate, got %v", err)
	}
}
