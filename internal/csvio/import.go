package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/sehyunpark/moneybook/internal/common"
	"github.com/sehyunpark/moneybook/internal/model"
)

// utf8BOM is tolerated at the start of imported files; spreadsheet tools
// write it on save.
const utf8BOM = "\uFEFF"

// readRecords parses a CSV stream into maps keyed by canonical field name.
// A header row is required; unknown header cells are carried through under
// their raw name so validation can report them. Rows whose cells are all
// empty are skipped.
func readRecords(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty, header row required", common.ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %v", common.ErrValidation, err)
	}

	fields := make([]string, len(header))
	for i, cell := range header {
		cell = strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM))
		if canonical := canonicalField(cell); canonical != "" {
			fields[i] = canonical
		} else {
			fields[i] = cell
		}
	}

	var records []map[string]string
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", common.ErrValidation, line, err)
		}

		record := make(map[string]string, len(fields))
		empty := true
		for i, cell := range row {
			if i >= len(fields) {
				break
			}
			cell = strings.TrimSpace(cell)
			record[fields[i]] = cell
			if cell != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// ParseCategories reads a category CSV and returns validated records.
// Validation is fail-fast: one bad row rejects the whole import before any
// store mutation happens.
func ParseCategories(r io.Reader) ([]model.Category, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	categories := make([]model.Category, 0, len(records))
	for i, record := range records {
		catType, err := model.ParseCategoryType(record["type"])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrValidation, i+1, err)
		}
		cat := model.Category{
			Type:        catType,
			Section:     record["section"],
			Category:    record["category"],
			Subcategory: record["subcategory"],
		}
		if err := cat.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrValidation, i+1, err)
		}
		categories = append(categories, cat)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: no category rows found", common.ErrValidation)
	}
	return categories, nil
}

// ParseTransactions reads a transaction CSV and returns validated records.
// Amounts may carry thousands separators; they are normalized to integers
// here, and unparseable amounts reject the import.
func ParseTransactions(r io.Reader) ([]model.Transaction, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}

	transactions := make([]model.Transaction, 0, len(records))
	for i, record := range records {
		txnType, err := model.ParseCategoryType(record["type"])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrValidation, i+1, err)
		}
		amount, err := model.ParseAmount(record["amount"])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrValidation, i+1, err)
		}
		txn := model.Transaction{
			Date:        record["date"],
			Type:        txnType,
			Section:     record["section"],
			Category:    record["category"],
			Subcategory: record["subcategory"],
			Amount:      amount,
			Memo:        record["memo"],
		}
		if err := txn.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", common.ErrValidation, i+1, err)
		}
		transactions = append(transactions, txn)
	}
	return transactions, nil
}
