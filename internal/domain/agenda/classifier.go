// Package agenda classifies cross-referenced sheet tabs ("related
// agendas") into the buckets the viewer offers alongside a day's
// itinerary: a personal tab, a notes tab, a shopping tab, everything else.
// Classification inspects each referenced tab's own mode metadata; the
// fetching/parsing needed for that is injected, so the classifier itself
// does no I/O.
package agenda

import (
	"context"
	"regexp"
	"strings"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/locator"
)

// Item is one normalized agenda reference: a bare numeric token becomes a
// gid, an absolute http(s) token a direct URL.
type Item struct {
	GID string
	URL string
}

// Key is the dedup key for an item.
func (it Item) Key() string {
	if it.GID != "" {
		return it.GID
	}
	return it.URL
}

// Ref is one classified agenda entry.
type Ref struct {
	GID   string `json:"gid,omitempty"`
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
}

// Bucket is the classified agenda set for one load. Each named bucket is
// first-match-wins; later items of an already-filled class land in Other.
type Bucket struct {
	Personal *Ref  `json:"personal,omitempty"`
	Note     *Ref  `json:"note,omitempty"`
	Shopping *Ref  `json:"shopping,omitempty"`
	Other    []Ref `json:"other"`
}

// WithoutPersonal returns a copy with the personal bucket omitted, for
// callers lacking the personal capability code. Classification itself is
// code-agnostic.
func (b Bucket) WithoutPersonal() Bucket {
	b.Personal = nil
	return b
}

// TabInfo is what resolving a referenced tab yields: its declared mode and
// title. Either may be empty.
type TabInfo struct {
	Mode  string
	Title string
}

// Resolver fetches and shallowly parses one referenced tab by gid.
type Resolver func(ctx context.Context, gid string) (TabInfo, error)

var (
	gidTokenRe = regexp.MustCompile(`^\d+$`)
	urlTokenRe = regexp.MustCompile(`(?i)^https?://`)
	gidParamRe = regexp.MustCompile(`[?&#]gid=([0-9]+)`)
)

// ParseItems normalizes the raw agenda cells retained on a sheet's meta
// into items, deduplicated by gid/URL. Tokens that are neither numeric nor
// absolute URLs are dropped. A URL carrying a gid= parameter contributes
// its gid so the tab can still be resolved.
func ParseItems(cells common.Row) []Item {
	var items []Item
	seen := make(map[string]bool)

	for _, cell := range cells {
		for _, tok := range locator.SplitTokenList(cell) {
			var it Item
			switch {
			case gidTokenRe.MatchString(tok):
				it = Item{GID: tok}
			case urlTokenRe.MatchString(tok):
				it = Item{URL: tok}
				if m := gidParamRe.FindStringSubmatch(tok); m != nil {
					it.GID = m[1]
				}
			default:
				continue
			}
			if seen[it.Key()] {
				continue
			}
			seen[it.Key()] = true
			items = append(items, it)
		}
	}
	return items
}

// class is the mode-string classification of one tab.
type class int

const (
	classNote class = iota
	classPersonal
	classShopping
)

// classify buckets a resolved mode string. Unclassifiable and empty modes
// fall open into the note class so no referenced tab is silently dropped.
func classifyMode(mode string) class {
	m := strings.ToLower(strings.TrimSpace(mode))
	hasPersonal := strings.Contains(m, "個人")
	hasNote := strings.Contains(m, "注意")

	switch {
	case hasPersonal && hasNote:
		return classPersonal
	case strings.Contains(m, "採購") || strings.Contains(m, "購物") || strings.Contains(m, "shopping"):
		return classShopping
	default:
		return classNote
	}
}

// Classify resolves each item's tab in input order and fills the bucket.
// Resolution failures are treated as an empty mode, so failing tabs still
// surface (in the note slot or Other) rather than disappearing.
func Classify(ctx context.Context, items []Item, resolve Resolver) Bucket {
	var bucket Bucket

	for _, item := range items {
		var info TabInfo
		if item.GID != "" && resolve != nil {
			if resolved, err := resolve(ctx, item.GID); err == nil {
				info = resolved
			}
		}

		ref := Ref{GID: item.GID, URL: item.URL, Title: info.Title}

		switch classifyMode(info.Mode) {
		case classPersonal:
			if bucket.Personal == nil {
				bucket.Personal = &ref
				continue
			}
		case classShopping:
			if bucket.Shopping == nil {
				bucket.Shopping = &ref
				continue
			}
		case classNote:
			if bucket.Note == nil {
				bucket.Note = &ref
				continue
			}
		}
		bucket.Other = append(bucket.Other, ref)
	}

	return bucket
}
