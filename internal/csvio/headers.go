// Package csvio implements the CSV import/export boundary: localized
// headers, fail-fast row validation, and spreadsheet-friendly output
// (UTF-8 BOM, CRLF line endings).
package csvio

// Canonical column names and their localized headers. Import accepts either
// form; export always writes the localized headers.
var transactionHeaders = []struct {
	field string
	kor   string
}{
	{"date", "날짜"},
	{"type", "유형"},
	{"section", "관"},
	{"category", "항"},
	{"subcategory", "목"},
	{"amount", "금액"},
	{"memo", "메모"},
}

var categoryHeaders = []struct {
	field string
	kor   string
}{
	{"type", "유형"},
	{"section", "관"},
	{"category", "항"},
	{"subcategory", "목"},
}

// canonicalField maps one raw header cell (English or Korean) to its
// canonical field name, or returns "" when the header is unknown.
func canonicalField(header string) string {
	for _, h := range transactionHeaders {
		if header == h.field || header == h.kor {
			return h.field
		}
	}
	return ""
}
