// Package assembler builds typed data rows from the tokenized rows below a
// located header.
package assembler

import (
	"strconv"
	"strings"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

// displayModeAliases are the header names, lower-cased, that mark the
// display-mode column.
var displayModeAliases = []string{"顯示模式", "display mode", "display_mode", "mode"}

// Result is the assembled record set. Collisions counts header names that
// occurred more than once; colliding columns silently overwrite earlier
// ones in each record, matching the source format's behavior, but the count
// makes the ambiguity observable to callers.
type Result struct {
	Header     []string
	Data       []common.DataRow
	Collisions int
}

// Assemble builds the header and data rows from rows strictly after
// headerIndex. Header cells are trimmed; blank ones synthesize "col{N}".
// Cell values are trimmed, and rows shorter than the header pad with "".
// A row is kept only when at least one of its values is non-empty. The
// display-mode column, when present, is parsed into flags on each row.
func Assemble(rows []common.Row, headerIndex int) Result {
	var res Result
	if headerIndex < 0 || headerIndex >= len(rows) {
		return res
	}

	seen := make(map[string]bool, len(rows[headerIndex]))
	for i, h := range rows[headerIndex] {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "col" + strconv.Itoa(i)
		}
		if seen[name] {
			res.Collisions++
		}
		seen[name] = true
		res.Header = append(res.Header, name)
	}

	displayKey := displayModeColumn(res.Header)

	for i := headerIndex + 1; i < len(rows); i++ {
		row := rows[i]
		cells := make(map[string]string, len(res.Header))
		hasValue := false
		for j, name := range res.Header {
			v := ""
			if j < len(row) {
				v = strings.TrimSpace(row[j])
			}
			cells[name] = v
			if v != "" {
				hasValue = true
			}
		}
		if !hasValue {
			continue
		}

		var flags common.DisplayFlagSet
		if displayKey != "" {
			flags = common.ParseDisplayFlags(cells[displayKey])
		}
		res.Data = append(res.Data, common.DataRow{Cells: cells, Flags: flags})
	}

	return res
}

// displayModeColumn returns the header name of the display-mode column, or
// "". Each alias is tried in turn, exact lower-cased match before substring
// match, mirroring how the renderers pick fields.
func displayModeColumn(header []string) string {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(h)
	}
	for _, alias := range displayModeAliases {
		for i, h := range lower {
			if h == alias {
				return header[i]
			}
		}
		for i, h := range lower {
			if strings.Contains(h, alias) {
				return header[i]
			}
		}
	}
	return ""
}
