// Package taxcalc computes sales and purchase tax on a single transaction.
package taxcalc

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// Places is the number of decimal places money is rounded to.
const Places = 2

var one = decimal.NewFromInt(1)

// ComputeTax returns preTax * rate rounded to cents, or zero when exempt.
// A non-positive preTax is an error, never clamped.
func ComputeTax(preTax, rate decimal.Decimal, exempt bool) (decimal.Decimal, error) {
	if !preTax.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: pre-tax amount %s must be positive", model.ErrInvalidAmount, preTax)
	}
	if rate.IsNegative() || rate.GreaterThan(one) {
		return decimal.Zero, fmt.Errorf("%w: tax rate %s outside 0..1", model.ErrInvalidAmount, rate)
	}
	if exempt {
		return decimal.Zero, nil
	}
	return preTax.Mul(rate).Round(Places), nil
}

// PreTaxFromTotal backs the pre-tax amount out of a tax-inclusive total,
// rounded to cents. Recomputing tax on the result may differ from the
// original total by a cent.
func PreTaxFromTotal(total, rate decimal.Decimal, exempt bool) (decimal.Decimal, error) {
	if !total.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: total %s must be positive", model.ErrInvalidAmount, total)
	}
	if rate.IsNegative() || rate.GreaterThan(one) {
		return decimal.Zero, fmt.Errorf("%w: tax rate %s outside 0..1", model.ErrInvalidAmount, rate)
	}
	if exempt {
		return total.Round(Places), nil
	}
	return total.DivRound(one.Add(rate), Places), nil
}

// Compute returns the full tax breakdown of a transaction.
func Compute(preTax, rate decimal.Decimal, exempt bool) (model.TaxAmounts, error) {
	tax, err := ComputeTax(preTax, rate, exempt)
	if err != nil {
		return model.TaxAmounts{}, err
	}
	return model.TaxAmounts{
		PreTaxAmount: preTax,
		TaxAmount:    tax,
		Total:        preTax.Add(tax),
	}, nil
}

// Rerate recomputes stored amounts at a new rate. Stored tax is never
// recomputed implicitly; callers must ask for this.
func Rerate(amounts model.TaxAmounts, rate decimal.Decimal, exempt bool) (model.TaxAmounts, error) {
	return Compute(amounts.PreTaxAmount, rate, exempt)
}

// PurchaseTax is tax paid on purchases split by how it is recovered.
type PurchaseTax struct {
	AsCost   decimal.Decimal // absorbed as cost by an unregistered company
	AsCredit decimal.Decimal // claimable input tax credit for a registered company
}

// Add returns the sum of two splits.
func (p PurchaseTax) Add(o PurchaseTax) PurchaseTax {
	return PurchaseTax{AsCost: p.AsCost.Add(o.AsCost), AsCredit: p.AsCredit.Add(o.AsCredit)}
}

// SplitPurchaseTax assigns tax paid to the credit pool when the company is
// registered and to the cost pool otherwise. Pass the registration status
// in effect now, not the one at purchase time.
func SplitPurchaseTax(taxPaid decimal.Decimal, registered bool) PurchaseTax {
	if registered {
		return PurchaseTax{AsCost: decimal.Zero, AsCredit: taxPaid}
	}
	return PurchaseTax{AsCost: taxPaid, AsCredit: decimal.Zero}
}
