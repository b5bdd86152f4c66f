package locator

import (
	"math"
	"regexp"
	"strings"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

// ScoreWeights tunes the heuristic header scorer. The defaults are
// empirically tuned against real sheets, not analytically derived; keep
// them configurable for future retuning.
type ScoreWeights struct {
	NonEmpty    float64 // reward per non-empty cell
	Textish     float64 // reward per cell containing Latin or CJK letters
	NumericOnly float64 // penalty per numeric-only cell
	URLLike     float64 // penalty per http(s) URL cell
	LongCell    float64 // penalty per cell of >= longCellLen runes
	TimeLike    float64 // penalty per cell starting like HH:MM
}

// DefaultScoreWeights are the hand-tuned production values.
var DefaultScoreWeights = ScoreWeights{
	NonEmpty:    2,
	Textish:     1,
	NumericOnly: 1.2,
	URLLike:     1.5,
	LongCell:    0.3,
	TimeLike:    1.0,
}

const (
	headerLookahead = 30
	longCellLen     = 20
)

var (
	scheduleHeaderRe = regexp.MustCompile(`(?i)時刻表|schedule`)
	numericOnlyRe    = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	absoluteURLRe    = regexp.MustCompile(`(?i)^https?://`)
	timeLikeRe       = regexp.MustCompile(`^\d{1,2}:\d{2}`)
	textishRe        = regexp.MustCompile(`[A-Za-z\x{4e00}-\x{9fff}]`)
)

// isScheduleMode reports whether mode declares an itinerary sheet.
func isScheduleMode(mode string) bool {
	m := strings.ToLower(strings.TrimSpace(mode))
	return m == "行程" || m == "schedule"
}

// LocateHeader returns the index of the true column-header row.
//
// Itinerary sheets carry a literal timetable marker, so schedule mode scans
// every row for a cell matching 時刻表/schedule and falls back to the
// heuristic from index 0 when none exists. Every other mode uses the
// heuristic scorer over the window starting at cursor.
func LocateHeader(rows []common.Row, cursor int, mode string) int {
	return LocateHeaderWeighted(rows, cursor, mode, DefaultScoreWeights)
}

// LocateHeaderWeighted is LocateHeader with explicit scorer weights.
func LocateHeaderWeighted(rows []common.Row, cursor int, mode string, w ScoreWeights) int {
	if isScheduleMode(mode) {
		for i, row := range rows {
			for _, cell := range row {
				if scheduleHeaderRe.MatchString(cell) {
					return i
				}
			}
		}
		return heuristicHeaderIndex(rows, 0, w)
	}
	return heuristicHeaderIndex(rows, cursor, w)
}

// heuristicHeaderIndex scores each candidate row in a bounded window and
// returns the best one. Header rows are short, textual and non-repetitive;
// data rows tend to be numeric, URL-bearing or timestamp-bearing. The
// scorer is a hand-tuned discriminator, intentionally conservative: when no
// row is scoreable it fails toward start.
func heuristicHeaderIndex(rows []common.Row, start int, w ScoreWeights) int {
	bestIdx := start
	bestScore := math.Inf(-1)

	end := start + headerLookahead
	if end > len(rows) {
		end = len(rows)
	}

	for i := start; i < end; i++ {
		cells := make([]string, len(rows[i]))
		for j, c := range rows[i] {
			cells[j] = strings.TrimSpace(c)
		}

		nonEmpty := 0
		hasURL := false
		for _, v := range cells {
			if v == "" {
				continue
			}
			nonEmpty++
			if absoluteURLRe.MatchString(v) {
				hasURL = true
			}
		}
		if nonEmpty < 2 {
			continue
		}
		// Rows full of links are data rows, never headers.
		if hasURL {
			continue
		}

		if s := scoreRow(cells, w); s > bestScore {
			bestScore = s
			bestIdx = i
		}
	}
	return bestIdx
}

func scoreRow(cells []string, w ScoreWeights) float64 {
	var nonEmpty, textish, numeric, urlish, longish, timeLike int

	for _, v := range cells {
		if v == "" {
			continue
		}
		nonEmpty++
		if numericOnlyRe.MatchString(v) {
			numeric++
		}
		if absoluteURLRe.MatchString(v) {
			urlish++
		}
		if timeLikeRe.MatchString(v) {
			timeLike++
		}
		if textishRe.MatchString(v) {
			textish++
		}
		if len([]rune(v)) >= longCellLen {
			longish++
		}
	}

	return float64(nonEmpty)*w.NonEmpty +
		float64(textish)*w.Textish -
		float64(numeric)*w.NumericOnly -
		float64(urlish)*w.URLLike -
		float64(longish)*w.LongCell -
		float64(timeLike)*w.TimeLike
}
