package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DividendStatus is the lifecycle state of a dividend declaration.
type DividendStatus string

const (
	DividendDeclared DividendStatus = "declared"
	DividendPaid     DividendStatus = "paid"
)

// IsValid reports whether s is a known dividend status.
func (s DividendStatus) IsValid() bool {
	return s == DividendDeclared || s == DividendPaid
}

// Dividend is a declaration and, once paid, its payment.
// Only paid dividends reduce retained earnings.
type Dividend struct {
	ID         string
	Amount     decimal.Decimal
	DeclaredOn time.Time
	PaidOn     time.Time // zero until paid
	Status     DividendStatus
}

// IsPaid reports whether the dividend has been paid out.
func (d Dividend) IsPaid() bool {
	return d.Status == DividendPaid
}

// EffectiveDate is the payment date when known, else the declaration date.
func (d Dividend) EffectiveDate() time.Time {
	if !d.PaidOn.IsZero() {
		return d.PaidOn
	}
	return d.DeclaredOn
}
