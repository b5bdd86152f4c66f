package locator

import "regexp"

// tokenListRe matches any run of the delimiters sheet authors use inside a
// single cell: whitespace, ASCII/fullwidth commas, 頓號, semicolons,
// newlines. One splitter shared by day pagination and agenda parsing.
var tokenListRe = regexp.MustCompile(`[\s,，、;；]+`)

// SplitTokenList splits a delimited cell value into trimmed, non-empty
// tokens.
func SplitTokenList(raw string) []string {
	var out []string
	for _, tok := range tokenListRe.Split(raw, -1) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
