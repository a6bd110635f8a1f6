// Package depreciation computes declining-balance capital cost allowance
// with the half-year rule in the acquisition year.
package depreciation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

const places = 2

var half = decimal.New(5, -1)

// RateSource resolves a depreciation class to its annual rate.
type RateSource interface {
	Rate(classID string) (decimal.Decimal, error)
}

// Calculator computes one year of depreciation for one asset. It holds no
// state between calls.
type Calculator struct {
	rates RateSource
}

// NewCalculator creates a Calculator over a class registry.
func NewCalculator(rates RateSource) *Calculator {
	return &Calculator{rates: rates}
}

// Result is the outcome of a single fiscal year.
type Result struct {
	AssetID            string
	FiscalYear         int
	Amount             decimal.Decimal
	HalfYear           bool
	RemainingBookValue decimal.Decimal
}

// Entry turns the result into the ledger entry that records it.
func (r Result) Entry(entryDate time.Time) model.DepreciationEntry {
	return model.DepreciationEntry{
		AssetID:    r.AssetID,
		FiscalYear: r.FiscalYear,
		Amount:     r.Amount,
		HalfYear:   r.HalfYear,
		EntryDate:  entryDate,
	}
}

// ComputeYear returns the depreciation of asset for fiscalYear.
//
// asset.BookValue must be the book value at the start of fiscalYear. Calling
// this twice for the same year without applying the first result to the
// asset gives a wrong declining-balance base.
func (c *Calculator) ComputeYear(asset model.CapitalAsset, fiscalYear int) (Result, error) {
	rate, err := c.rates.Rate(asset.ClassID)
	if err != nil {
		return Result{}, fmt.Errorf("asset %s: %w", asset.ID, err)
	}
	if err := asset.Validate(); err != nil {
		return Result{}, err
	}

	acquired := asset.AcquiredOn.Year()
	if fiscalYear < acquired {
		return Result{}, fmt.Errorf("%w: asset %s acquired in %d cannot be depreciated for %d",
			model.ErrInvalidFiscalYear, asset.ID, acquired, fiscalYear)
	}

	res := Result{
		AssetID:            asset.ID,
		FiscalYear:         fiscalYear,
		Amount:             decimal.Zero,
		HalfYear:           acquired == fiscalYear,
		RemainingBookValue: asset.BookValue,
	}
	if !asset.BookValue.IsPositive() {
		return res, nil
	}
	if asset.IsDisposed() && asset.DisposedOn.Year() < fiscalYear {
		return res, nil
	}

	var candidate decimal.Decimal
	if res.HalfYear {
		candidate = asset.DepreciableBase.Mul(rate).Mul(half)
	} else {
		candidate = asset.BookValue.Mul(rate)
	}
	candidate = candidate.Round(places)

	res.Amount = decimal.Min(candidate, asset.BookValue)
	res.RemainingBookValue = asset.BookValue.Sub(res.Amount)
	return res, nil
}

// Schedule projects depreciation for up to years fiscal years starting at
// fromYear. Each year's result is applied before the next is computed.
// The schedule stops early once nothing more can be depreciated.
func (c *Calculator) Schedule(asset model.CapitalAsset, fromYear, years int) ([]Result, error) {
	var out []Result
	for i := 0; i < years; i++ {
		res, err := c.ComputeYear(asset, fromYear+i)
		if err != nil {
			return out, err
		}
		out = append(out, res)
		if res.RemainingBookValue.IsZero() || res.Amount.IsZero() {
			break
		}
		asset, err = asset.Apply(res.Entry(time.Date(res.FiscalYear, time.December, 31, 0, 0, 0, 0, time.UTC)))
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
