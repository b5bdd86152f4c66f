// Package tokenizer turns raw spreadsheet-export text into rows of cells.
// It is quote-aware (embedded commas and newlines inside quoted fields,
// doubled-quote escapes) and never fails: malformed quoting degrades
// gracefully instead of erroring, which matters because the input is
// hand-edited spreadsheet content, not standards-compliant CSV.
package tokenizer

import "github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"

// Tokenize scans text character by character into a 2-D cell array.
//
// Outside quotes: ',' ends a field, '\n' ends a row, '\r' is ignored.
// A '"' toggles quote mode; inside quotes a doubled '""' emits one literal
// quote. A trailing unterminated field or row is flushed. Empty input
// yields nil.
func Tokenize(text string) []common.Row {
	if text == "" {
		return nil
	}

	var (
		rows     []common.Row
		row      common.Row
		field    []rune
		inQuotes bool
	)

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if inQuotes {
			if c == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field = append(field, '"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field = append(field, c)
			}
			continue
		}

		switch c {
		case '"':
			inQuotes = true
		case ',':
			row = append(row, string(field))
			field = field[:0]
		case '\r':
			// ignored
		case '\n':
			row = append(row, string(field))
			rows = append(rows, row)
			row = nil
			field = field[:0]
		default:
			field = append(field, c)
		}
	}

	// Flush an unterminated trailing field/row (no final newline).
	if len(field) > 0 || len(row) > 0 {
		row = append(row, string(field))
		rows = append(rows, row)
	}

	return rows
}
