package common

import "strings"

// DisplayFlag is one row-level display directive. The source spreadsheets
// encode these as a delimited digit list ("0", "1,2", ...) in a display-mode
// column; they are parsed once at assembly time and carried on each row.
type DisplayFlag uint8

const (
	// FlagHidden removes the row from every rendered view.
	FlagHidden DisplayFlag = 1 << iota
	// FlagStrike renders the row struck through.
	FlagStrike
	// FlagGrayDeprioritized grays the row out and sorts it last.
	FlagGrayDeprioritized
	// FlagRestrictedVisibility shows the row only when the caller holds the
	// restricted-row capability code.
	FlagRestrictedVisibility
)

// DisplayFlagSet is the set of display flags on one row.
type DisplayFlagSet uint8

// ParseDisplayFlags parses a raw display-mode cell. Tokens are separated by
// commas (ASCII or fullwidth) or whitespace; unrecognized tokens are ignored.
func ParseDisplayFlags(raw string) DisplayFlagSet {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	var set DisplayFlagSet
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) {
		switch strings.TrimSpace(tok) {
		case "0":
			set |= DisplayFlagSet(FlagHidden)
		case "1":
			set |= DisplayFlagSet(FlagStrike)
		case "2":
			set |= DisplayFlagSet(FlagGrayDeprioritized)
		case "3":
			set |= DisplayFlagSet(FlagRestrictedVisibility)
		}
	}
	return set
}

// Has reports whether the set contains flag.
func (s DisplayFlagSet) Has(flag DisplayFlag) bool {
	return s&DisplayFlagSet(flag) != 0
}
