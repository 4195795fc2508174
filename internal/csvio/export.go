package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/sehyunpark/moneybook/internal/model"
)

// writeCSV emits rows with the localized header line, a leading UTF-8 BOM
// and CRLF line endings so the file opens cleanly in spreadsheet tools.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCategories exports categories with localized headers. An empty list
// exports the default starter rows so the file doubles as an import
// template.
func WriteCategories(w io.Writer, categories []model.Category) error {
	if len(categories) == 0 {
		categories = model.DefaultCategories()
	}

	header := make([]string, len(categoryHeaders))
	for i, h := range categoryHeaders {
		header[i] = h.kor
	}

	rows := make([][]string, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, []string{
			cat.Type.Localized(),
			cat.Section,
			cat.Category,
			cat.Subcategory,
		})
	}
	return writeCSV(w, header, rows)
}

// WriteTransactions exports transactions with localized headers; dates are
// normalized to yyyy.mm.dd and types rendered in their localized form.
func WriteTransactions(w io.Writer, transactions []model.Transaction) error {
	header := make([]string, len(transactionHeaders))
	for i, h := range transactionHeaders {
		header[i] = h.kor
	}

	rows := make([][]string, 0, len(transactions))
	for _, txn := range transactions {
		rows = append(rows, []string{
			NormalizeDate(txn.Date),
			txn.Type.Localized(),
			txn.Section,
			txn.Category,
			txn.Subcategory,
			strconv.FormatInt(txn.Amount, 10),
			txn.Memo,
		})
	}
	return writeCSV(w, header, rows)
}

// ExportFilename builds the date-stamped default download name, e.g.
// moneybook_transactions_2026-08-29.csv.
func ExportFilename(kind string, now time.Time) string {
	return fmt.Sprintf("moneybook_%s_%s.csv", kind, now.Format("2006-01-02"))
}
