// Package daynav computes prev/next navigation across the sibling sheet
// tabs ("days") a multi-day itinerary spreads over. It derives targets
// only; fetching the target tab is the caller's job.
package daynav

import (
	"regexp"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/locator"
)

// Sheet-tab gids are always numeric; anything else in the day list is
// author noise.
var gidRe = regexp.MustCompile(`^\d+$`)

// State is the derived day-navigation state for one load. Index is
// recomputed from the active gid on every derivation, never independently
// mutated.
type State struct {
	GIDs  []string `json:"gids"`
	Index int      `json:"index"`
}

// ParseDayGIDs reads the day list from meta (日程表, with 行程表/days as
// aliases) and returns the numeric gid tokens in order.
func ParseDayGIDs(meta common.Meta) []string {
	raw := locator.LookupMeta(meta, locator.KeyDays)
	if raw == "" {
		return nil
	}
	var gids []string
	for _, tok := range locator.SplitTokenList(raw) {
		if gidRe.MatchString(tok) {
			gids = append(gids, tok)
		}
	}
	return gids
}

// CurrentIndex returns the position of activeGid in gids, or 0 when it is
// absent.
func CurrentIndex(gids []string, activeGid string) int {
	for i, g := range gids {
		if g == activeGid {
			return i
		}
	}
	return 0
}

// Navigate returns the gid delta steps away from index, clamped to the
// list bounds. Empty gid lists yield "".
func Navigate(gids []string, index, delta int) string {
	if len(gids) == 0 {
		return ""
	}
	i := index + delta
	if i < 0 {
		i = 0
	}
	if i > len(gids)-1 {
		i = len(gids) - 1
	}
	return gids[i]
}

// Derive builds the full state for a loaded sheet and its active gid.
func Derive(meta common.Meta, activeGid string) State {
	gids := ParseDayGIDs(meta)
	return State{GIDs: gids, Index: CurrentIndex(gids, activeGid)}
}
