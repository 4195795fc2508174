package csvio

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	dateDashed  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	dateSlashed = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	dateDotted  = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}\.?$`)
)

// NormalizeDate converts any of the accepted input forms (yyyy-mm-dd,
// dd/mm/yyyy, yyyy.mm.dd with an optional trailing dot) to the canonical
// yyyy.mm.dd display form. Unrecognized values pass through unchanged;
// dates are stored as given and only normalized for export.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case dateDashed.MatchString(s):
		parts := strings.Split(s, "-")
		return fmt.Sprintf("%s.%s.%s", parts[0], parts[1], parts[2])
	case dateSlashed.MatchString(s):
		parts := strings.Split(s, "/")
		return fmt.Sprintf("%s.%s.%s", parts[2], parts[1], parts[0])
	case dateDotted.MatchString(s):
		return strings.TrimSuffix(s, ".")
	default:
		return s
	}
}
