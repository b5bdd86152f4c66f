// Package handler exposes the sheet service over JSON HTTP. The active
// document, tab and capability codes all round-trip through query
// parameters so any state is shareable as a URL.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/agenda"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/capability"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/daynav"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/service"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/source"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/view"
)

// Options carries the handler's static configuration.
type Options struct {
	// DefaultDocID is the document served when the request names none.
	DefaultDocID string
	// PersonalCode unlocks the personal agenda bucket.
	PersonalCode string
	// RestrictedCode unlocks rows flagged restricted-visibility.
	RestrictedCode string
}

// Handler serves the sheet API.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	opts   Options
}

// New creates a Handler.
func New(svc *service.Service, logger *slog.Logger, opts Options) *Handler {
	return &Handler{svc: svc, logger: logger, opts: opts}
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/sheet", h.Sheet)
	mux.HandleFunc("POST /v1/view", h.View)
	mux.HandleFunc("GET /v1/day/prev", h.DayPrev)
	mux.HandleFunc("GET /v1/day/next", h.DayNext)
	mux.HandleFunc("GET /v1/agenda", h.Agenda)
}

// stateResponse is the JSON shape of one AppState, after capability
// filtering.
type stateResponse struct {
	LoadID      string             `json:"loadId"`
	DocID       string             `json:"docId"`
	GID         string             `json:"gid"`
	Sheet       common.ParsedSheet `json:"sheet"`
	View        view.State         `json:"view"`
	Days        daynav.State       `json:"days"`
	Agenda      agenda.Bucket      `json:"agenda"`
	HeaderIndex int                `json:"headerIndex"`
	Collisions  int                `json:"collisions"`
	AllDays     bool               `json:"allDays"`
}

// Sheet loads a document tab and returns the full state. Query parameters:
// doc (explicit document ID), url (a pasted spreadsheet URL), gid, code.
func (h *Handler) Sheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docID := source.ResolveDocID(q.Get("doc"), q.Get("url"), h.opts.DefaultDocID)
	if docID == "" {
		h.writeError(w, http.StatusBadRequest, common.ErrBadRequest)
		return
	}
	gid := source.ResolveGID(q.Get("gid"), q.Get("url"))

	st, err := h.svc.Load(r.Context(), docID, gid)
	if err != nil {
		h.writeLoadError(w, err)
		return
	}
	h.writeState(w, st, h.caps(r))
}

// viewRequest is the POST /v1/view body. An empty View with AllDays set
// toggles only the aggregate.
type viewRequest struct {
	View    string `json:"view"`
	AllDays *bool  `json:"allDays,omitempty"`
}

// View switches the current view and/or the all-days aggregate.
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, common.ErrBadRequest)
		return
	}
	if req.View == "" && req.AllDays == nil {
		h.writeError(w, http.StatusBadRequest, common.ErrBadRequest)
		return
	}

	var st *service.AppState
	var err error
	if req.View != "" {
		st, err = h.svc.SwitchView(view.ID(req.View))
	}
	if err == nil && req.AllDays != nil {
		st, err = h.svc.SetAllDays(*req.AllDays)
	}
	if err != nil {
		h.writeStateError(w, err)
		return
	}
	h.writeState(w, st, h.caps(r))
}

// DayPrev loads the previous day tab.
func (h *Handler) DayPrev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, -1)
}

// DayNext loads the next day tab.
func (h *Handler) DayNext(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, 1)
}

func (h *Handler) navigate(w http.ResponseWriter, r *http.Request, delta int) {
	st, err := h.svc.NavigateDay(r.Context(), delta)
	if err != nil {
		if errors.Is(err, common.ErrNoSheet) {
			h.writeStateError(w, err)
			return
		}
		h.writeLoadError(w, err)
		return
	}
	h.writeState(w, st, h.caps(r))
}

// Agenda returns the classified agenda buckets of the current load.
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Current()
	if st == nil {
		h.writeStateError(w, common.ErrNoSheet)
		return
	}
	bucket := st.Agenda
	if !h.caps(r).Has(h.opts.PersonalCode) {
		bucket = bucket.WithoutPersonal()
	}
	h.writeJSON(w, http.StatusOK, bucket)
}

func (h *Handler) caps(r *http.Request) capability.Set {
	return capability.ParseSet(r.URL.Query().Get("code"))
}

// writeState renders one state with the caller's capabilities applied:
// the personal agenda bucket and restricted-visibility rows are omitted
// without the matching code.
func (h *Handler) writeState(w http.ResponseWriter, st *service.AppState, caps capability.Set) {
	sheet := st.Sheet
	if !caps.Has(h.opts.RestrictedCode) {
		sheet.Data = filterRestricted(sheet.Data)
	}
	bucket := st.Agenda
	if !caps.Has(h.opts.PersonalCode) {
		bucket = bucket.WithoutPersonal()
	}

	h.writeJSON(w, http.StatusOK, stateResponse{
		LoadID:      st.LoadID.String(),
		DocID:       st.DocID,
		GID:         st.GID,
		Sheet:       sheet,
		View:        st.View,
		Days:        st.Days,
		Agenda:      bucket,
		HeaderIndex: st.HeaderIndex,
		Collisions:  st.Collisions,
		AllDays:     st.AllDays,
	})
}

func filterRestricted(data []common.DataRow) []common.DataRow {
	out := make([]common.DataRow, 0, len(data))
	for _, row := range data {
		if row.Flags.Has(common.FlagRestrictedVisibility) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// writeLoadError maps load-pipeline failures: malformed requests are the
// caller's fault, everything else is an upstream fetch problem.
func (h *Handler) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, common.ErrBadRequest) {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeError(w, http.StatusBadGateway, err)
}

// writeStateError maps state-transition failures.
func (h *Handler) writeStateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNoSheet):
		h.writeError(w, http.StatusNotFound, err)
	case errors.Is(err, common.ErrViewUnavailable):
		h.writeError(w, http.StatusConflict, err)
	default:
		h.writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}
