package sheet

import (
	"fmt"
	"io"
	"strings"
)

// ParseCSV splits published-sheet CSV text into rows of trimmed cells.
//
// Quoted fields may hold commas, quotes ("" escapes one) and line breaks.
// Outside quotes a row ends at \n, \r\n or a lone \r. Malformed quoting is
// never an error: each quote toggles quoted mode, so an unterminated quote
// carries through to the end of input.
func ParseCSV(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			row = append(row, cur.String())
			cur.Reset()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			row = append(row, cur.String())
			rows = append(rows, row)
			row = nil
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}

	if cur.Len() > 0 || len(row) > 0 {
		row = append(row, cur.String())
		rows = append(rows, row)
	}

	// a blank final line is not a row
	if n := len(rows); n > 0 && len(rows[n-1]) == 1 && rows[n-1][0] == "" {
		rows = rows[:n-1]
	}

	for _, r := range rows {
		for j := range r {
			r[j] = strings.TrimSpace(r[j])
		}
	}
	return rows
}

// ReadCSV drains r and parses it with ParseCSV.
func ReadCSV(r io.Reader) ([][]string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV body: %w", err)
	}
	return ParseCSV(string(body)), nil
}
