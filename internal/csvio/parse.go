// Package csvio converts business records to and from the CSV files used by
// the admin import/export screens.
package csvio

import (
	"errors"
	"fmt"
	"strings"
)

// RequiredColumns must all be present in an import header, in any order and
// any letter case.
var RequiredColumns = []string{"title", "phone", "city", "type"}

var ErrNotCSV = errors.New("File must be a CSV file")

// MissingColumnsError rejects a whole import whose header lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Columns, ", "))
}

// Record is a candidate business read from one data row.
type Record struct {
	Title string `json:"title"`
	Phone string `json:"phone"`
	City  string `json:"city"`
	Type  string `json:"type"`
}

// CheckFilename accepts only names ending in ".csv".
func CheckFilename(name string) error {
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), ".csv") {
		return ErrNotCSV
	}
	return nil
}

// Parse reads the header and every non-blank data row of text. Rows whose
// title is empty are dropped. Blank input or a header without data rows
// yields an empty slice.
func Parse(text string) ([]Record, error) {
	text = strings.TrimPrefix(text, "\ufeff")
	text = strings.TrimSpace(text)
	if text == "" {
		return []Record{}, nil
	}

	lines := splitRows(text)

	header := SplitLine(lines[0])
	columns := make([]string, len(header))
	present := make(map[string]bool, len(header))
	for i, h := range header {
		columns[i] = stripQuotes(strings.ToLower(strings.TrimSpace(h)))
		present[columns[i]] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	records := []Record{}
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		values := SplitLine(line)
		row := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(values) {
				row[col] = values[i]
			} else {
				row[col] = ""
			}
		}

		if row["title"] == "" {
			continue
		}
		records = append(records, Record{
			Title: row["title"],
			Phone: row["phone"],
			City:  row["city"],
			Type:  row["type"],
		})
	}

	return records, nil
}

// splitRows cuts text into rows at line breaks outside double quotes, so a
// quoted value may span lines. A doubled quote flips the state twice and
// leaves it unchanged.
func splitRows(text string) []string {
	var (
		rows     []string
		start    int
		inQuotes bool
	)
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '"':
			inQuotes = !inQuotes
		case '\n':
			if inQuotes {
				continue
			}
			end := i
			if end > start && text[end-1] == '\r' {
				end--
			}
			rows = append(rows, text[start:end])
			start = i + 1
		}
	}
	return append(rows, text[start:])
}

// SplitLine splits one CSV line on commas outside double quotes. A doubled
// quote inside a quoted field yields a literal quote. Fields are trimmed.
func SplitLine(line string) []string {
	var (
		values   []string
		current  strings.Builder
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			values = append(values, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	values = append(values, strings.TrimSpace(current.String()))

	return values
}

// stripQuotes removes at most one leading and one trailing double quote. It
// only applies to column names: in values an edge quote can only come from a
// "" escape and must be kept.
func stripQuotes(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
