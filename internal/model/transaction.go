package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxAmounts is the taxable shape shared by sales and purchases.
// TaxAmount is derived from PreTaxAmount when the record is created and is
// not settable on its own.
type TaxAmounts struct {
	PreTaxAmount decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
}

// SaleStatus is the settlement state of a sale.
type SaleStatus string

const (
	SaleStatusDraft   SaleStatus = "draft"
	SaleStatusIssued  SaleStatus = "issued"
	SaleStatusSettled SaleStatus = "settled"
	SaleStatusPaid    SaleStatus = "paid"
)

// IsValid reports whether s is a known sale status.
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusIssued, SaleStatusSettled, SaleStatusPaid:
		return true
	}
	return false
}

// IsSettled reports whether the sale counts as earned income.
func (s SaleStatus) IsSettled() bool {
	return s == SaleStatusSettled || s == SaleStatusPaid
}

// Sale is an invoice or ad-hoc income record.
type Sale struct {
	ID           string
	Date         time.Time
	Client       string
	Description  string
	ClientExempt bool
	Status       SaleStatus
	TaxAmounts
}

// Purchase is an expense record.
type Purchase struct {
	ID           string
	Date         time.Time
	Vendor       string
	Description  string
	VendorExempt bool
	FundedBy     FundingSource
	TaxAmounts
}

// TaxRemittance is tax paid directly to the authority.
type TaxRemittance struct {
	ID        string
	Date      time.Time
	Amount    decimal.Decimal
	Reference string
}
