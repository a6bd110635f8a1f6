package model

import "github.com/shopspring/decimal"

// Company carries the company-level settings in effect when a figure is computed.
type Company struct {
	Name              string
	Jurisdiction      string
	SalesTaxRate      decimal.Decimal
	SmallBusinessRate decimal.Decimal
	TaxRegistered     bool
}
