// Package service orchestrates a sheet load end to end: fetch one tab's
// CSV, recognize its structure, assemble records, derive the view, day and
// agenda state, and publish the result as one immutable AppState.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/agenda"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/common"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/daynav"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/assembler"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/locator"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/tokenizer"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/source"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/view"
	"github.com/FACorreiaa/smart-sheet-viewer/pkg/observability"
)

// AppState is the complete result of one load. It is built once, installed
// wholesale and never mutated in place; every state transition produces a
// fresh copy.
type AppState struct {
	LoadID      uuid.UUID          `json:"loadId"`
	DocID       string             `json:"docId"`
	GID         string             `json:"gid"`
	Sheet       common.ParsedSheet `json:"sheet"`
	View        view.State         `json:"view"`
	Days        daynav.State       `json:"days"`
	Agenda      agenda.Bucket      `json:"agenda"`
	HeaderIndex int                `json:"headerIndex"`
	Collisions  int                `json:"collisions"`
	AllDays     bool               `json:"allDays"`
	LoadedAt    time.Time          `json:"loadedAt"`
}

// Service owns the current AppState and the pipeline that produces it.
type Service struct {
	fetcher source.Fetcher
	logger  *slog.Logger
	tracer  trace.Tracer
	weights locator.ScoreWeights

	mu    sync.RWMutex
	state *AppState
	seq   uint64
}

// NewService creates a sheet service around a fetcher.
func NewService(fetcher source.Fetcher, logger *slog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		logger:  logger,
		tracer:  otel.Tracer("sheet/service"),
		weights: locator.DefaultScoreWeights,
	}
}

// SetScoreWeights overrides the header-scorer weights for subsequent loads.
func (s *Service) SetScoreWeights(w locator.ScoreWeights) {
	s.mu.Lock()
	s.weights = w
	s.mu.Unlock()
}

// Current returns the latest installed state, or nil before the first
// successful load.
func (s *Service) Current() *AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Load fetches one tab and rebuilds the whole state from it. A load that
// finishes after a newer one started is not installed; the newest load wins
// regardless of completion order. On success the returned state is never
// nil: a superseded load yields the latest installed state, or its own
// uninstalled result while no load has installed yet.
func (s *Service) Load(ctx context.Context, docID, gid string) (*AppState, error) {
	ctx, span := s.tracer.Start(ctx, "sheet.Load", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	span.SetAttributes(
		attribute.String("sheet.doc_id", docID),
		attribute.String("sheet.gid", gid),
	)

	s.mu.Lock()
	s.seq++
	gen := s.seq
	weights := s.weights
	s.mu.Unlock()

	start := time.Now()

	text, err := s.fetcher.FetchCSV(ctx, docID, gid)
	if err != nil {
		observability.LoadsTotal.WithLabelValues("fetch_error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Warn("sheet fetch failed", "doc_id", docID, "gid", gid, "error", err)
		return nil, fmt.Errorf("load sheet: %w", err)
	}

	rows := tokenizer.Tokenize(text)
	if len(rows) == 0 {
		observability.LoadsTotal.WithLabelValues("empty").Inc()
		span.SetStatus(codes.Error, common.ErrEmptyCSV.Error())
		return nil, fmt.Errorf("load sheet: %w", common.ErrEmptyCSV)
	}

	meta, cursor := locator.ExtractMeta(rows)
	mode := locator.ModeValue(meta)
	headerIdx := locator.LocateHeaderWeighted(rows, cursor, mode, weights)
	asm := assembler.Assemble(rows, headerIdx)

	items := agenda.ParseItems(locator.AgendaCells(meta))
	bucket := agenda.Classify(ctx, items, s.tabResolver(docID))

	state := &AppState{
		LoadID: uuid.New(),
		DocID:  docID,
		GID:    gid,
		Sheet: common.ParsedSheet{
			Header: asm.Header,
			Data:   asm.Data,
			Meta:   meta,
		},
		View:        view.NewState(mode),
		Days:        daynav.Derive(meta, gid),
		Agenda:      bucket,
		HeaderIndex: headerIdx,
		Collisions:  asm.Collisions,
		LoadedAt:    time.Now(),
	}

	s.mu.Lock()
	stale := gen != s.seq
	winner := s.state
	if !stale {
		s.state = state
	}
	s.mu.Unlock()

	if stale {
		// A newer load started while this one was in flight; its result
		// owns the state now. Until any load has installed, the winner is
		// still nil, so serve the built result without installing it.
		observability.LoadsTotal.WithLabelValues("stale").Inc()
		s.logger.Debug("discarding stale load", "load_id", state.LoadID, "gid", gid)
		if winner == nil {
			return state, nil
		}
		return winner, nil
	}

	observability.LoadsTotal.WithLabelValues("ok").Inc()
	observability.LoadDuration.Observe(time.Since(start).Seconds())
	observability.HeaderRowIndex.Observe(float64(headerIdx))
	span.SetStatus(codes.Ok, "ok")
	s.logger.Info("sheet loaded",
		"load_id", state.LoadID,
		"doc_id", docID,
		"gid", gid,
		"mode", mode,
		"header_index", headerIdx,
		"rows", len(asm.Data),
		"days", len(state.Days.GIDs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return state, nil
}

// SwitchView moves the current view to target. Leaving the schedule view
// clears the all-days aggregate, which only that view can render.
func (s *Service) SwitchView(target view.ID) (*AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, common.ErrNoSheet
	}

	next := *s.state
	if err := next.View.Switch(target); err != nil {
		return nil, err
	}
	if s.state.View.Current == view.Schedule && target != view.Schedule {
		next.AllDays = false
	}
	s.state = &next
	return &next, nil
}

// SetAllDays toggles the schedule view's all-days aggregate. It is only
// honored while the schedule view is current.
func (s *Service) SetAllDays(on bool) (*AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, common.ErrNoSheet
	}
	if on && s.state.View.Current != view.Schedule {
		return nil, common.ErrViewUnavailable
	}

	next := *s.state
	next.AllDays = on
	s.state = &next
	return &next, nil
}

// NavigateDay loads the tab delta steps away in the day list, clamped to
// its ends. With no day list, or when the clamp lands on the tab already
// shown, the current state is returned unchanged.
func (s *Service) NavigateDay(ctx context.Context, delta int) (*AppState, error) {
	s.mu.RLock()
	st := s.state
	s.mu.RUnlock()
	if st == nil {
		return nil, common.ErrNoSheet
	}

	target := daynav.Navigate(st.Days.GIDs, st.Days.Index, delta)
	if target == "" || target == st.GID {
		return st, nil
	}
	return s.Load(ctx, st.DocID, target)
}

// tabResolver resolves a referenced tab by fetching it and reading only
// its meta block.
func (s *Service) tabResolver(docID string) agenda.Resolver {
	return func(ctx context.Context, gid string) (agenda.TabInfo, error) {
		text, err := s.fetcher.FetchCSV(ctx, docID, gid)
		if err != nil {
			return agenda.TabInfo{}, err
		}
		meta, _ := locator.ExtractMeta(tokenizer.Tokenize(text))
		return agenda.TabInfo{
			Mode:  locator.ModeValue(meta),
			Title: locator.LookupMeta(meta, locator.KeyTitle),
		}, nil
	}
}
