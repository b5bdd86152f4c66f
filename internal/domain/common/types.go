// Package common holds the record types shared across the sheet pipeline.
package common

// Row is one tokenized CSV row. A row has no identity beyond its position
// and is never mutated once produced.
type Row []string

// Meta is the key/value block folded out of the leading rows of a sheet.
// Values of repeated keys are newline-joined. Keys records each distinct
// literal key in first-seen sheet order so alias resolution stays
// deterministic. RawRows keeps the unfiltered cell array for agenda-type
// keys so downstream token parsing can see empty slot positions without
// re-tokenizing the whole sheet.
type Meta struct {
	Values  map[string]string `json:"values"`
	Keys    []string          `json:"-"`
	RawRows map[string]Row    `json:"-"`
}

// NewMeta returns an empty, ready-to-fill Meta.
func NewMeta() Meta {
	return Meta{
		Values:  make(map[string]string),
		RawRows: make(map[string]Row),
	}
}

// Get returns the joined value for a literal key, or "".
func (m Meta) Get(key string) string {
	if m.Values == nil {
		return ""
	}
	return m.Values[key]
}

// Append adds a value under key, newline-joining with any existing content.
func (m *Meta) Append(key, value string) {
	m.recordKey(key)
	if existing, ok := m.Values[key]; ok && existing != "" {
		m.Values[key] = existing + "\n" + value
		return
	}
	m.Values[key] = value
}

// AppendRaw retains the unfiltered cells of key, preserving slot order.
func (m *Meta) AppendRaw(key string, cells Row) {
	m.recordKey(key)
	m.RawRows[key] = append(m.RawRows[key], cells...)
}

func (m *Meta) recordKey(key string) {
	for _, k := range m.Keys {
		if k == key {
			return
		}
	}
	m.Keys = append(m.Keys, key)
}

// DataRow is one assembled data record: cell values keyed by header name,
// plus the display flags parsed from the row's display-mode cell.
type DataRow struct {
	Cells map[string]string `json:"cells"`
	Flags DisplayFlagSet    `json:"flags"`
}

// ParsedSheet is the typed record one load produces. It is constructed once
// and replaced wholesale on the next load; consumers must not mutate it.
//
// Every entry of Data has exactly one key per header name. Blank header
// cells synthesize "col{N}" names; duplicate header names overwrite earlier
// columns (an accepted ambiguity of the source format).
type ParsedSheet struct {
	Header []string  `json:"header"`
	Data   []DataRow `json:"data"`
	Meta   Meta      `json:"meta"`
}
