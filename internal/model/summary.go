package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodSummary is the computed financial view of one company over one
// date window. It is regenerated on every request and never stored.
type PeriodSummary struct {
	Company     string    `json:"company"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	FiscalYear  int       `json:"fiscal_year"`

	GrossIncome                  decimal.Decimal `json:"gross_income"`
	TaxCollected                 decimal.Decimal `json:"tax_collected"`
	TotalExpenses                decimal.Decimal `json:"total_expenses"`
	TaxPaidAsCost                decimal.Decimal `json:"tax_paid_as_cost"`
	TaxPaidAsCredit              decimal.Decimal `json:"tax_paid_as_credit"`
	TotalDepreciation            decimal.Decimal `json:"total_depreciation"`
	CapitalCostAllowanceEstimate decimal.Decimal `json:"capital_cost_allowance_estimate"`
	PreTaxIncome                 decimal.Decimal `json:"pre_tax_income"`
	IncomeTax                    decimal.Decimal `json:"income_tax"`
	PostTaxIncome                decimal.Decimal `json:"post_tax_income"`
	DirectRemittances            decimal.Decimal `json:"direct_remittances"`
	TaxRemittanceDue             decimal.Decimal `json:"tax_remittance_due"`
	DividendsPaid                decimal.Decimal `json:"dividends_paid"`
	RetainedEarnings             decimal.Decimal `json:"retained_earnings"`

	AssetsTotal     int           `json:"assets_total"`
	AssetsProcessed int           `json:"assets_processed"`
	Errors          []EntityError `json:"errors,omitempty"`
}
