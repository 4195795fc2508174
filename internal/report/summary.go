// Package report aggregates transactions into the figures shown by the
// stats command: income/expense totals, per-section breakdowns and monthly
// sums.
package report

import (
	"sort"
	"time"

	"github.com/sehyunpark/moneybook/internal/model"
)

// Summary holds aggregate figures over a set of transactions.
type Summary struct {
	TotalIncome  int64
	TotalExpense int64
	Count        int
}

// Balance is income minus expense.
func (s Summary) Balance() int64 {
	return s.TotalIncome - s.TotalExpense
}

// SectionTotal is one row of a per-section breakdown, largest amounts first.
type SectionTotal struct {
	Section string
	Amount  int64
}

// MonthTotal is one month's income and expense sums.
type MonthTotal struct {
	Month   string // yyyy-mm
	Income  int64
	Expense int64
}

// Summarize computes overall totals.
func Summarize(transactions []model.Transaction) Summary {
	var s Summary
	for _, txn := range transactions {
		switch txn.Type {
		case model.CategoryTypeIncome:
			s.TotalIncome += txn.Amount
		case model.CategoryTypeExpense:
			s.TotalExpense += txn.Amount
		}
		s.Count++
	}
	return s
}

// BySection sums amounts per section for one type, sorted by amount
// descending with section name as the tie-break.
func BySection(transactions []model.Transaction, txnType model.CategoryType) []SectionTotal {
	sums := make(map[string]int64)
	for _, txn := range transactions {
		if txn.Type != txnType {
			continue
		}
		sums[txn.Section] += txn.Amount
	}

	totals := make([]SectionTotal, 0, len(sums))
	for section, amount := range sums {
		totals = append(totals, SectionTotal{Section: section, Amount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Section < totals[j].Section
	})
	return totals
}

// ByMonth sums income and expense per calendar month, oldest first. Entries
// whose date parses in none of the accepted formats are skipped.
func ByMonth(transactions []model.Transaction) []MonthTotal {
	sums := make(map[string]*MonthTotal)
	for _, txn := range transactions {
		t, ok := parseDate(txn.Date)
		if !ok {
			continue
		}
		month := t.Format("2006-01")
		entry := sums[month]
		if entry == nil {
			entry = &MonthTotal{Month: month}
			sums[month] = entry
		}
		if txn.Type == model.CategoryTypeIncome {
			entry.Income += txn.Amount
		} else {
			entry.Expense += txn.Amount
		}
	}

	months := make([]MonthTotal, 0, len(sums))
	for _, entry := range sums {
		months = append(months, *entry)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months
}

// FilterMonth keeps only the transactions falling in the given yyyy-mm
// month.
func FilterMonth(transactions []model.Transaction, month string) []model.Transaction {
	var filtered []model.Transaction
	for _, txn := range transactions {
		t, ok := parseDate(txn.Date)
		if !ok {
			continue
		}
		if t.Format("2006-01") == month {
			filtered = append(filtered, txn)
		}
	}
	return filtered
}

var dateFormats = []string{"2006-01-02", "02/01/2006", "2006.01.02", "2006.01.02."}

func parseDate(date string) (time.Time, bool) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
