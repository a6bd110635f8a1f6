package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/fiscal/internal/depreciation"
	"github.com/cleared-dev/fiscal/internal/id"
	"github.com/cleared-dev/fiscal/internal/model"
)

// ClassSource resolves depreciation classes for new assets and for the calculator.
type ClassSource interface {
	depreciation.RateSource
	Exists(classID string) bool
}

// Service runs depreciation and asset lifecycle operations over a Ledger.
type Service struct {
	ledger  Ledger
	classes ClassSource
	calc    *depreciation.Calculator
	log     *zap.Logger
}

// NewService creates a ledger Service.
func NewService(l Ledger, classes ClassSource, log *zap.Logger) *Service {
	return &Service{
		ledger:  l,
		classes: classes,
		calc:    depreciation.NewCalculator(classes),
		log:     log.Named("ledger"),
	}
}

// Ledger returns the underlying store.
func (s *Service) Ledger() Ledger {
	return s.ledger
}

// AssetParams holds the inputs for a new capital asset.
type AssetParams struct {
	Description  string
	ClassID      string
	AcquiredOn   time.Time
	PreTaxAmount decimal.Decimal
	TaxPaid      decimal.Decimal
	FundedBy     model.FundingSource
}

// AddAsset validates the class and stores a new asset.
func (s *Service) AddAsset(ctx context.Context, p AssetParams) (model.CapitalAsset, error) {
	if !s.classes.Exists(p.ClassID) {
		return model.CapitalAsset{}, fmt.Errorf("%w: %q", model.ErrClassNotFound, p.ClassID)
	}
	a, err := model.NewCapitalAsset(p.Description, p.ClassID, p.AcquiredOn, p.PreTaxAmount, p.TaxPaid, p.FundedBy)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	a, err = s.ledger.AddAsset(ctx, a)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	s.log.Info("asset added",
		zap.String("asset_id", a.ID),
		zap.String("class_id", a.ClassID),
		zap.String("total_cost", a.TotalCost.StringFixed(2)))
	return a, nil
}

// Dispose records the sale or scrapping of an asset. It is still depreciated
// in the disposal year and not after.
func (s *Service) Dispose(ctx context.Context, assetID string, on time.Time, amount decimal.Decimal) (model.CapitalAsset, error) {
	a, err := s.ledger.Dispose(ctx, assetID, on, amount)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	s.log.Info("asset disposed",
		zap.String("asset_id", a.ID),
		zap.String("disposed_on", on.Format(model.DateFormat)),
		zap.String("proceeds", amount.StringFixed(2)))
	return a, nil
}

// Schedule projects an asset's depreciation from fromYear without recording it.
func (s *Service) Schedule(ctx context.Context, assetID string, fromYear, years int) ([]depreciation.Result, error) {
	a, err := s.ledger.Asset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return s.calc.Schedule(a, fromYear, years)
}

// SkipReason says why Depreciate recorded nothing for an asset.
type SkipReason string

const (
	SkipAlreadyRecorded SkipReason = "already_recorded"
	SkipNotYetAcquired  SkipReason = "not_yet_acquired"
	SkipNothingToClaim  SkipReason = "nothing_to_claim"
)

// Skip is an asset that Depreciate passed over.
type Skip struct {
	AssetID string
	Reason  SkipReason
}

// RunReport describes one depreciation run.
type RunReport struct {
	FiscalYear int
	Recorded   []model.DepreciationEntry
	Skipped    []Skip
	Errors     []model.EntityError
}

// Total is the depreciation recorded by the run.
func (r RunReport) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range r.Recorded {
		total = total.Add(e.Amount)
	}
	return total
}

// Depreciate computes and records fiscalYear's depreciation for every asset.
// Rerunning a year is safe: assets that already have an entry are skipped.
// A failing asset is reported in the RunReport and the run continues; the
// returned error is reserved for ledger read failures and cancellation.
func (s *Service) Depreciate(ctx context.Context, fiscalYear int) (RunReport, error) {
	report := RunReport{FiscalYear: fiscalYear}
	assets, rejected, err := s.ledger.Assets(ctx)
	if err != nil {
		return report, err
	}
	// An asset with a rejected row has an unreliable book value; it is
	// reported once and left out of the run.
	held := make(map[string]bool, len(rejected))
	for _, r := range rejected {
		report.Errors = append(report.Errors, r)
		held[rejectedAssetID(r)] = true
		s.log.Warn("ledger row rejected", zap.String("ref", r.ID), zap.Error(r.Err))
	}
	entries, err := s.ledger.Entries(ctx)
	if err != nil {
		return report, err
	}
	latest := make(map[string]int, len(assets))
	for _, e := range entries {
		if e.FiscalYear > latest[e.AssetID] {
			latest[e.AssetID] = e.FiscalYear
		}
	}

	entryDate := model.FiscalYearWindow(fiscalYear).End
	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if held[a.ID] {
			continue
		}
		log := s.log.With(zap.String("asset_id", a.ID), zap.Int("fiscal_year", fiscalYear))

		if a.AcquiredOn.Year() > fiscalYear {
			report.Skipped = append(report.Skipped, Skip{a.ID, SkipNotYetAcquired})
			continue
		}
		if last, ok := latest[a.ID]; ok && last >= fiscalYear {
			if last == fiscalYear {
				report.Skipped = append(report.Skipped, Skip{a.ID, SkipAlreadyRecorded})
				continue
			}
			// Book value already reflects a later year.
			err := fmt.Errorf("%w: asset %s already has an entry for %d", model.ErrInvalidFiscalYear, a.ID, last)
			report.Errors = append(report.Errors, model.EntityError{Kind: model.EntityAsset, ID: a.ID, Err: err})
			log.Warn("depreciation out of order", zap.Error(err))
			continue
		}

		res, err := s.calc.ComputeYear(a, fiscalYear)
		if err != nil {
			report.Errors = append(report.Errors, model.EntityError{Kind: model.EntityAsset, ID: a.ID, Err: err})
			log.Warn("depreciation failed", zap.Error(err))
			continue
		}
		if res.Amount.IsZero() {
			report.Skipped = append(report.Skipped, Skip{a.ID, SkipNothingToClaim})
			continue
		}

		entry := res.Entry(entryDate)
		if _, err := s.ledger.Record(ctx, entry); err != nil {
			if errors.Is(err, model.ErrDuplicateDepreciationEntry) {
				report.Skipped = append(report.Skipped, Skip{a.ID, SkipAlreadyRecorded})
				continue
			}
			report.Errors = append(report.Errors, model.EntityError{Kind: model.EntityDepreciationEntry, ID: entry.Key(), Err: err})
			log.Warn("recording depreciation failed", zap.Error(err))
			continue
		}
		report.Recorded = append(report.Recorded, entry)
		log.Debug("depreciation recorded",
			zap.String("amount", entry.Amount.StringFixed(2)),
			zap.Bool("half_year", entry.HalfYear),
			zap.String("remaining", res.RemainingBookValue.StringFixed(2)))
	}

	s.log.Info("depreciation run complete",
		zap.Int("fiscal_year", fiscalYear),
		zap.Int("recorded", len(report.Recorded)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("errors", len(report.Errors)),
		zap.String("total", report.Total().StringFixed(2)))
	return report, nil
}

// rejectedAssetID is the asset a rejected asset or entry row belongs to.
func rejectedAssetID(r model.EntityError) string {
	if r.Kind == model.EntityDepreciationEntry {
		if assetID, _, err := id.ParseEntryKey(r.ID); err == nil {
			return assetID
		}
	}
	return r.ID
}
