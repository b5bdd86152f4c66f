// Package view maps a sheet's declared mode to the set of views a client
// may render, and holds the per-load view-selection state machine.
package view

import (
	"strings"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
)

// ID names one renderable view.
type ID string

const (
	Grid     ID = "grid"
	List     ID = "list"
	Schedule ID = "schedule"
	Shopping ID = "shopping"
	Note     ID = "note"
	Raw      ID = "raw"
)

// Routing is the ordered view set for a mode plus its default.
type Routing struct {
	Views   []ID `json:"views"`
	Default ID   `json:"default"`
}

// Route maps a sheet's mode value to its view routing. Matching is exact
// after trimming and case-folding; anything unrecognized, including the
// empty mode, routes to the generic grid set.
func Route(modeValue string) Routing {
	switch strings.ToLower(strings.TrimSpace(modeValue)) {
	case "行程", "schedule":
		return Routing{Views: []ID{Schedule, List, Raw}, Default: Schedule}
	case "採購清單", "shopping":
		return Routing{Views: []ID{Shopping, List, Raw}, Default: Shopping}
	default:
		return Routing{Views: []ID{Grid, List, Raw}, Default: Grid}
	}
}

// State is the view-selection state for one loaded sheet. It is created
// alongside the ParsedSheet and mutated only through Switch.
type State struct {
	Available []ID `json:"availableViews"`
	Current   ID   `json:"currentView"`
}

// NewState builds the initial state for a mode value.
func NewState(modeValue string) State {
	r := Route(modeValue)
	return State{Available: r.Views, Current: r.Default}
}

// Switch moves Current to target, which must be a member of Available.
func (s *State) Switch(target ID) error {
	for _, v := range s.Available {
		if v == target {
			s.Current = target
			return nil
		}
	}
	return common.ErrViewUnavailable
}
