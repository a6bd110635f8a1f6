package model

import "github.com/shopspring/decimal"

// DepreciationClass is one row of the capital cost allowance class table.
type DepreciationClass struct {
	ID          string
	Rate        decimal.Decimal // annual rate as a fraction, e.g. 0.30
	Description string
}
