// Package money detects the currency of free-text price strings and
// annotates foreign-currency amounts with an approximate NT$ conversion.
// Only explicitly foreign lines are touched: NT amounts and lines with no
// currency marker pass through unchanged, so ambiguous prices are never
// silently rewritten.
package money

import (
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// Code is a detected currency code. The empty code means "no currency
// marker found".
type Code string

const (
	USD Code = "USD"
	JPY Code = "JPY"
	CNY Code = "CNY"
	KRW Code = "KRW"
	HKD Code = "HKD"
	NTD Code = "NTD"
)

// defaultRates are the approximate to-NT$ conversion rates. They are a
// convenience for rough totals, not a market feed; override per process
// with SetExchangeRates.
var defaultRates = map[Code]decimal.Decimal{
	USD: decimal.NewFromFloat(31.5),
	JPY: decimal.NewFromFloat(0.2),
	CNY: decimal.NewFromFloat(4.4),
	KRW: decimal.NewFromFloat(0.024),
	HKD: decimal.NewFromFloat(4.0),
	NTD: decimal.NewFromInt(1),
}

var (
	ratesMu       sync.RWMutex
	rateOverrides = map[Code]decimal.Decimal{}
)

// SetExchangeRates overrides rates process-wide. Only positive rates for
// known codes are applied; others are ignored.
func SetExchangeRates(overrides map[Code]decimal.Decimal) {
	ratesMu.Lock()
	defer ratesMu.Unlock()
	for code, rate := range overrides {
		if _, known := defaultRates[code]; known && rate.IsPositive() {
			rateOverrides[code] = rate
		}
	}
}

// ResetExchangeRates drops all overrides, restoring the defaults.
func ResetExchangeRates() {
	ratesMu.Lock()
	defer ratesMu.Unlock()
	rateOverrides = map[Code]decimal.Decimal{}
}

func rateFor(code Code) (decimal.Decimal, bool) {
	ratesMu.RLock()
	defer ratesMu.RUnlock()
	if r, ok := rateOverrides[code]; ok {
		return r, true
	}
	r, ok := defaultRates[code]
	return r, ok
}

var (
	ntdWordRe    = regexp.MustCompile(`\b(ntd|twd)\b`)
	ntPrefixRe   = regexp.MustCompile(`(?i)\bnt\s*\$?\b`)
	leadDollarRe = regexp.MustCompile(`^\s*\$`)
	numberRe     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	unitSuffixRe = regexp.MustCompile(`((?:/|／)\s*(?:\d+\s*)?人)\s*$`)
	lineSplitRe  = regexp.MustCompile(`\r?\n|；|;|、`)
)

// DetectCurrency applies the ordered marker rules to one line. NT markers
// short-circuit everything: an NT-marked line is never converted, whatever
// else it contains.
func DetectCurrency(raw string) Code {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	sl := strings.ToLower(s)

	if ntdWordRe.MatchString(sl) || ntPrefixRe.MatchString(s) ||
		strings.Contains(sl, "台幣") || strings.Contains(sl, "新台幣") {
		return NTD
	}
	if strings.Contains(sl, "hkd") || strings.Contains(sl, "hk$") ||
		strings.Contains(sl, "港幣") || strings.Contains(sl, "港元") {
		return HKD
	}
	if strings.Contains(sl, "krw") || strings.Contains(s, "₩") ||
		strings.Contains(sl, "韓幣") || strings.Contains(sl, "韓元") {
		return KRW
	}
	if strings.Contains(sl, "rmb") || strings.Contains(sl, "cny") ||
		strings.Contains(sl, "人民幣") {
		return CNY
	}
	if strings.Contains(sl, "usd") || strings.Contains(sl, "us$") ||
		strings.Contains(sl, "美金") || strings.Contains(sl, "美元") {
		return USD
	}
	if strings.Contains(sl, "jpy") || strings.Contains(s, "円") ||
		strings.Contains(sl, "日幣") || strings.Contains(sl, "日圓") ||
		strings.Contains(sl, "日元") {
		return JPY
	}
	// Bare yen sign defaults to JPY unless an RMB marker shares the line.
	if strings.Contains(s, "¥") || strings.Contains(s, "￥") {
		return JPY
	}
	if leadDollarRe.MatchString(s) {
		return USD
	}
	return ""
}

// parseNumberLoose extracts the first numeric token, commas stripped.
func parseNumberLoose(raw string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	m := numberRe.FindString(s)
	if m == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// formatNT renders a converted amount as "NT$1,234", rounded to whole
// dollars.
func formatNT(n decimal.Decimal) string {
	rounded := n.Round(0)
	s := rounded.String()
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "NT$" + b.String()
	if neg {
		out = "NT$-" + b.String()
	}
	return out
}

// splitUnitSuffix peels a trailing per-person suffix ("/人", "／2人") off a
// line so the conversion can be reattached per unit.
func splitUnitSuffix(line string) (base, suffix string) {
	m := unitSuffixRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line, ""
	}
	suffix = strings.TrimRight(line[m[2]:m[3]], " ")
	base = strings.TrimRight(line[:m[2]], " ")
	return base, suffix
}

// DisplayPrice normalizes one price line. Lines detected as NTD, lines
// with no currency marker, and lines with no parseable number are returned
// unchanged. A same-line NT value from preferredNT, when parseable, takes
// precedence over the rate table.
func DisplayPrice(rawLine, preferredNT string) string {
	line := strings.TrimSpace(rawLine)
	if line == "" {
		return ""
	}

	currency := DetectCurrency(line)
	if currency == NTD || currency == "" {
		return line
	}

	amount, ok := parseNumberLoose(line)
	if !ok {
		return line
	}

	nt, haveNT := parseNumberLoose(preferredNT)
	if !haveNT {
		rate, found := rateFor(currency)
		if !found {
			return line
		}
		nt = amount.Mul(rate)
	}

	ntText := formatNT(nt)
	if base, suffix := splitUnitSuffix(line); suffix != "" {
		return base + suffix + "(約" + ntText + suffix + ")"
	}
	return line + "(約" + ntText + ")"
}

// SplitLines breaks a multi-line price cell into its individual lines
// (newline, semicolon or 頓號 separated).
func SplitLines(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range lineSplitRe.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DisplayPriceBlock processes a whole price cell: each line independently,
// paired positionally with the converted-NT cell's lines (first NT line as
// fallback), rejoined with newlines.
func DisplayPriceBlock(priceRaw, priceNTRaw string) string {
	lines := SplitLines(priceRaw)
	if len(lines) == 0 {
		return ""
	}
	ntLines := SplitLines(priceNTRaw)

	out := make([]string, len(lines))
	for i, line := range lines {
		ntLine := ""
		if len(ntLines) > 0 {
			if i < len(ntLines) {
				ntLine = ntLines[i]
			} else {
				ntLine = ntLines[0]
			}
		}
		out[i] = DisplayPrice(line, ntLine)
	}
	return strings.Join(out, "\n")
}
