package sheet

import (
	"regexp"
	"strings"
)

// Record is one data row keyed by normalized header. Built once by
// RowsToRecords and treated as read-only afterwards.
type Record map[string]string

// Get returns the value stored under a normalized header.
func (r Record) Get(key string) (string, bool) {
	v, ok := r[key]
	return v, ok
}

// First returns the first non-empty value among keys, or "".
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if v := r[k]; v != "" {
			return v
		}
	}
	return ""
}

var (
	whitespaceRun  = regexp.MustCompile(`[\s\p{Zs}]+`)
	nonHeaderChars = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeHeader lower-cases h, turns whitespace runs (including
// non-breaking spaces) into "_" and drops
// anything outside [a-z0-9_]. "E-Mail" and "e mail" become "email" and
// "e_mail" respectively.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = whitespaceRun.ReplaceAllString(h, "_")
	return nonHeaderChars.ReplaceAllString(h, "")
}

// NormalizeHeaders applies NormalizeHeader to every cell of a header row.
func NormalizeHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = NormalizeHeader(h)
	}
	return headers
}

// RowsToRecords treats rows[0] as the header row and maps every following
// row onto it positionally. Short rows pad with "", long rows are cut at the
// header width. When two headers normalize to the same key the right-most
// column wins.
func RowsToRecords(rows [][]string) []Record {
	if len(rows) < 2 {
		return []Record{}
	}

	headers := NormalizeHeaders(rows[0])
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(headers))
		for j, h := range headers {
			value := ""
			if j < len(row) {
				value = strings.TrimSpace(row[j])
			}
			rec[h] = value
		}
		records = append(records, rec)
	}
	return records
}
