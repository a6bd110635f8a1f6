// Package summary rolls a company's transactions for a date window into a
// single PeriodSummary.
//
// The computation is an ordered list of pure stages. Each stage reads the
// inputs and the summary produced so far and returns the summary with its
// own figure filled in. Later stages depend on earlier figures, so the order
// in Stages is fixed.
package summary

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// RateSource resolves a depreciation class to its annual rate.
type RateSource interface {
	Rate(classID string) (decimal.Decimal, error)
}

// Input is everything a summary is computed from. Records outside Window
// may be present; stages ignore them.
//
// Rates is required: without it every asset is reported as unusable.
// Rejected carries rows the ledger could not load; they are reported as-is
// and entries they name are left out.
type Input struct {
	Company     model.Company
	Window      model.DateWindow
	Rates       RateSource
	Rejected    []model.EntityError
	Sales       []model.Sale
	Purchases   []model.Purchase
	Dividends   []model.Dividend
	Assets      []model.CapitalAsset
	Entries     []model.DepreciationEntry
	Remittances []model.TaxRemittance
}

// Stage computes one figure of the summary.
type Stage struct {
	Name  string
	Apply func(in Input, s model.PeriodSummary) model.PeriodSummary
}

var pipeline = []Stage{
	{Name: "gross_income", Apply: grossIncome},
	{Name: "tax_collected", Apply: taxCollected},
	{Name: "total_expenses", Apply: totalExpenses},
	{Name: "purchase_tax", Apply: purchaseTax},
	{Name: "total_depreciation", Apply: totalDepreciation},
	{Name: "cca_estimate", Apply: ccaEstimate},
	{Name: "pre_tax_income", Apply: preTaxIncome},
	{Name: "income_tax", Apply: incomeTax},
	{Name: "post_tax_income", Apply: postTaxIncome},
	{Name: "tax_remittance", Apply: taxRemittance},
	{Name: "dividends_paid", Apply: dividendsPaid},
	{Name: "retained_earnings", Apply: retainedEarnings},
}

// Stages returns the pipeline in execution order.
func Stages() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// Summarize computes the period summary. Records that fail validation are
// left out and reported in the summary's Errors; everything else still
// contributes.
func Summarize(in Input) model.PeriodSummary {
	clean, errs := screen(in)

	s := newSummary(in)
	s.AssetsTotal = len(in.Assets) + rejectedAssets(in.Rejected)
	s.AssetsProcessed = len(clean.Assets)
	s.Errors = append(append([]model.EntityError(nil), in.Rejected...), errs...)

	for _, st := range pipeline {
		s = st.Apply(clean, s)
	}
	return s
}

func newSummary(in Input) model.PeriodSummary {
	return model.PeriodSummary{
		Company:                      in.Company.Name,
		WindowStart:                  in.Window.Start,
		WindowEnd:                    in.Window.End,
		FiscalYear:                   in.Window.FiscalYear(),
		GrossIncome:                  decimal.Zero,
		TaxCollected:                 decimal.Zero,
		TotalExpenses:                decimal.Zero,
		TaxPaidAsCost:                decimal.Zero,
		TaxPaidAsCredit:              decimal.Zero,
		TotalDepreciation:            decimal.Zero,
		CapitalCostAllowanceEstimate: decimal.Zero,
		PreTaxIncome:                 decimal.Zero,
		IncomeTax:                    decimal.Zero,
		PostTaxIncome:                decimal.Zero,
		DirectRemittances:            decimal.Zero,
		TaxRemittanceDue:             decimal.Zero,
		DividendsPaid:                decimal.Zero,
		RetainedEarnings:             decimal.Zero,
	}
}

func rejectedAssets(rejected []model.EntityError) int {
	n := 0
	for _, r := range rejected {
		if r.Kind == model.EntityAsset {
			n++
		}
	}
	return n
}
