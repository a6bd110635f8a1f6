package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/id"
)

// FundingSource records who paid for a purchase.
type FundingSource string

const (
	FundedByCompany   FundingSource = "company"
	FundedByPrincipal FundingSource = "principal"
)

// IsValid reports whether f is a known funding source.
func (f FundingSource) IsValid() bool {
	return f == FundedByCompany || f == FundedByPrincipal
}

// CapitalAsset is a depreciable purchase and its running ledger.
//
// BookValue always equals TotalCost - AccumulatedDepreciation and never
// goes below zero. Only Apply moves the ledger forward.
type CapitalAsset struct {
	ID                      string
	Description             string
	ClassID                 string
	AcquiredOn              time.Time
	PreTaxAmount            decimal.Decimal
	TaxPaid                 decimal.Decimal
	TotalCost               decimal.Decimal
	DepreciableBase         decimal.Decimal
	AccumulatedDepreciation decimal.Decimal
	BookValue               decimal.Decimal
	FundedBy                FundingSource
	DisposedOn              time.Time // zero while held
	DisposalAmount          decimal.Decimal
}

// NewCapitalAsset builds an asset with an untouched ledger: the base and book
// value both start at the total cost.
func NewCapitalAsset(description, classID string, acquiredOn time.Time, preTax, taxPaid decimal.Decimal, fundedBy FundingSource) (CapitalAsset, error) {
	if !preTax.IsPositive() {
		return CapitalAsset{}, fmt.Errorf("%w: purchase amount %s must be positive", ErrInvalidAmount, preTax)
	}
	if taxPaid.IsNegative() {
		return CapitalAsset{}, fmt.Errorf("%w: tax paid %s must not be negative", ErrInvalidAmount, taxPaid)
	}
	if fundedBy == "" {
		fundedBy = FundedByCompany
	}
	if !fundedBy.IsValid() {
		return CapitalAsset{}, fmt.Errorf("unknown funding source %q", fundedBy)
	}
	total := preTax.Add(taxPaid)
	return CapitalAsset{
		Description:             description,
		ClassID:                 classID,
		AcquiredOn:              civilDate(acquiredOn),
		PreTaxAmount:            preTax,
		TaxPaid:                 taxPaid,
		TotalCost:               total,
		DepreciableBase:         total,
		AccumulatedDepreciation: decimal.Zero,
		BookValue:               total,
		FundedBy:                fundedBy,
	}, nil
}

// IsDisposed reports whether the asset has left the business.
func (a CapitalAsset) IsDisposed() bool {
	return !a.DisposedOn.IsZero()
}

// Validate checks the ledger invariants.
func (a CapitalAsset) Validate() error {
	if !a.TotalCost.Equal(a.PreTaxAmount.Add(a.TaxPaid)) {
		return fmt.Errorf("%w: asset %s total cost %s != purchase %s + tax %s",
			ErrInvalidAmount, a.ID, a.TotalCost, a.PreTaxAmount, a.TaxPaid)
	}
	if !a.BookValue.Equal(a.TotalCost.Sub(a.AccumulatedDepreciation)) {
		return fmt.Errorf("%w: asset %s book value %s != cost %s - accumulated %s",
			ErrInvalidAmount, a.ID, a.BookValue, a.TotalCost, a.AccumulatedDepreciation)
	}
	if a.BookValue.IsNegative() {
		return fmt.Errorf("%w: asset %s book value %s is negative", ErrInvalidAmount, a.ID, a.BookValue)
	}
	if a.AccumulatedDepreciation.IsNegative() || a.AccumulatedDepreciation.GreaterThan(a.TotalCost) {
		return fmt.Errorf("%w: asset %s accumulated depreciation %s outside 0..%s",
			ErrInvalidAmount, a.ID, a.AccumulatedDepreciation, a.TotalCost)
	}
	return nil
}

// Apply returns the asset with entry's depreciation added to its ledger.
func (a CapitalAsset) Apply(entry DepreciationEntry) (CapitalAsset, error) {
	if entry.AssetID != a.ID {
		return a, fmt.Errorf("entry %s does not belong to asset %s", entry.Key(), a.ID)
	}
	if entry.Amount.IsNegative() {
		return a, fmt.Errorf("%w: depreciation %s is negative", ErrInvalidAmount, entry.Amount)
	}
	if entry.Amount.GreaterThan(a.BookValue) {
		return a, fmt.Errorf("%w: depreciation %s exceeds book value %s", ErrInvalidAmount, entry.Amount, a.BookValue)
	}
	a.AccumulatedDepreciation = a.AccumulatedDepreciation.Add(entry.Amount)
	a.BookValue = a.TotalCost.Sub(a.AccumulatedDepreciation)
	return a, nil
}

// DepreciationEntry is one year of recorded depreciation for one asset.
// Entries are append-only; there is at most one per (asset, fiscal year).
type DepreciationEntry struct {
	AssetID    string
	FiscalYear int
	Amount     decimal.Decimal
	HalfYear   bool
	EntryDate  time.Time
}

// Key identifies the entry by asset and fiscal year, e.g. "A-0003/2024".
func (e DepreciationEntry) Key() string {
	return id.FormatEntryKey(e.AssetID, e.FiscalYear)
}
