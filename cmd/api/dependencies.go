package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/money"
	sheethandler "github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/handler"
	sheetservice "github.com/FACorreiaa/smart-sheet-viewer/internal/domain/sheet/service"
	"github.com/FACorreiaa/smart-sheet-viewer/internal/domain/source"
	"github.com/FACorreiaa/smart-sheet-viewer/pkg/config"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Fetcher      source.Fetcher
	SheetService *sheetservice.Service
	SheetHandler *sheethandler.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initFetcher()
	deps.initRates()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initFetcher picks the CSV source: the local sample when configured,
// otherwise the Google export endpoint.
func (d *Dependencies) initFetcher() {
	if path := d.Config.Sheet.SamplePath; path != "" {
		d.Fetcher = source.SampleLoader{Path: path}
		d.Logger.Info("using sample data source", "path", path)
		return
	}
	d.Fetcher = source.NewClient(&http.Client{Timeout: 30 * time.Second})
}

// initRates applies configured exchange-rate overrides process-wide.
func (d *Dependencies) initRates() {
	if len(d.Config.Sheet.ExchangeRates) == 0 {
		return
	}
	overrides := make(map[money.Code]decimal.Decimal, len(d.Config.Sheet.ExchangeRates))
	for code, rate := range d.Config.Sheet.ExchangeRates {
		overrides[money.Code(code)] = rate
	}
	money.SetExchangeRates(overrides)
	d.Logger.Info("exchange rate overrides applied", "count", len(overrides))
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.SheetService = sheetservice.NewService(d.Fetcher, d.Logger)
	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.SheetHandler = sheethandler.New(d.SheetService, d.Logger, sheethandler.Options{
		DefaultDocID:   d.Config.Sheet.DefaultDocID,
		PersonalCode:   d.Config.Sheet.PersonalCode,
		RestrictedCode: d.Config.Sheet.RestrictedCode,
	})
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	d.Logger.Info("cleanup completed")
}
