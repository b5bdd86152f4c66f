// Package locator finds the structure inside a tokenized sheet export: the
// leading metadata block and the true column-header row. The sheets it reads
// are hand-maintained, so both jobs are recognition problems, not lookups.
package locator

import (
	"strings"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

// Canonical meta keys. Sheet authors write the bilingual labels below;
// callers look values up by canonical key via LookupMeta.
const (
	KeyMode          = "mode"
	KeyNote          = "note"
	KeyDate          = "date"
	KeyDays          = "days"
	KeyTitle         = "title"
	KeyMasterAgenda  = "master agenda"
	KeyRelatedAgenda = "related agenda"
)

// metaAliases maps each canonical key to the literal first-cell labels
// (lower-cased) that mark a meta row.
var metaAliases = map[string][]string{
	KeyMode:          {"模式", "mode"},
	KeyNote:          {"備註", "note"},
	KeyDate:          {"日期", "date"},
	KeyDays:          {"日程表", "行程表", "days"},
	KeyTitle:         {"標題", "title"},
	KeyMasterAgenda:  {"總議程", "master agenda"},
	KeyRelatedAgenda: {"相關議程", "related agenda", "多相關議程", "multi related agenda"},
}

// agendaKeys are the canonical keys whose raw cell arrays are retained on
// the Meta, so agenda token re-parsing can see empty slot positions.
var agendaKeys = map[string]bool{
	KeyMasterAgenda:  true,
	KeyRelatedAgenda: true,
}

// metaLookahead bounds how many leading rows are considered for the block.
const metaLookahead = 30

// canonicalFor returns the canonical key for a trimmed, lower-cased first
// cell, or "" when the cell is not a recognized meta label.
func canonicalFor(label string) string {
	for canonical, aliases := range metaAliases {
		for _, a := range aliases {
			if label == a {
				return canonical
			}
		}
	}
	return ""
}

// ExtractMeta scans rows from the top and folds the contiguous run of meta
// rows into a Meta. A row is a meta row iff its first cell, trimmed and
// lower-cased, exactly equals a recognized label; scanning stops at the
// first row that is not. For each meta row the cells from index 1 onward
// are trimmed and the non-empty ones newline-joined; a repeated key appends
// to the existing value. Agenda-type rows additionally retain their raw
// cell array under the literal key.
//
// The returned cursor is the index of the first row after the block (0 when
// no meta rows were found).
func ExtractMeta(rows []common.Row) (common.Meta, int) {
	meta := common.NewMeta()
	cursor := 0

	limit := len(rows)
	if limit > metaLookahead {
		limit = metaLookahead
	}

	for i := 0; i < limit; i++ {
		row := rows[i]
		if len(row) == 0 {
			break
		}
		label := strings.ToLower(strings.TrimSpace(row[0]))
		canonical := canonicalFor(label)
		if canonical == "" {
			break
		}

		key := strings.TrimSpace(row[0])
		var vals []string
		for _, cell := range row[1:] {
			if v := strings.TrimSpace(cell); v != "" {
				vals = append(vals, v)
			}
		}
		if key != "" && len(vals) > 0 {
			meta.Append(key, strings.Join(vals, "\n"))
		}
		if agendaKeys[canonical] {
			raw := make(common.Row, len(row)-1)
			copy(raw, row[1:])
			meta.AppendRaw(key, raw)
		}
		cursor = i + 1
	}

	return meta, cursor
}

// LookupMeta resolves a canonical key against a Meta whose stored keys are
// the literal label cells. Matching is trim- and case-insensitive over the
// alias table, so call sites never case-fold ad hoc.
func LookupMeta(meta common.Meta, canonicalKey string) string {
	aliases, ok := metaAliases[canonicalKey]
	if !ok {
		return ""
	}
	// Alias order is preference order; among stored keys folding to the
	// same alias, the one seen first in the sheet wins.
	for _, a := range aliases {
		for _, storedKey := range meta.Keys {
			if strings.ToLower(strings.TrimSpace(storedKey)) != a {
				continue
			}
			if value := meta.Values[storedKey]; value != "" {
				return value
			}
		}
	}
	return ""
}

// AgendaCells returns the retained raw agenda cells, master agenda rows
// before related ones, slot order preserved within each.
func AgendaCells(meta common.Meta) common.Row {
	var cells common.Row
	for _, canonical := range []string{KeyMasterAgenda, KeyRelatedAgenda} {
		for _, a := range metaAliases[canonical] {
			for _, storedKey := range meta.Keys {
				if strings.ToLower(strings.TrimSpace(storedKey)) == a {
					cells = append(cells, meta.RawRows[storedKey]...)
				}
			}
		}
	}
	return cells
}

// ModeValue returns the sheet's declared mode, trimmed; "" when unset.
func ModeValue(meta common.Meta) string {
	return strings.TrimSpace(LookupMeta(meta, KeyMode))
}
