package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/records"
	"github.com/cleared-dev/fiscal/internal/taxcalc"
)

// Plan is what a statement becomes once classified. Deposits are settled
// sales and withdrawals are company-funded purchases, both with tax backed
// out of the bank amount at the configured rate. Transfers are skipped.
type Plan struct {
	Sales     []records.SaleParams
	Purchases []records.PurchaseParams
	Skipped   []Line
}

// NewPlan turns classified lines into records to add.
func NewPlan(lines []Line, rate decimal.Decimal) (Plan, error) {
	var p Plan
	for _, l := range lines {
		if l.Kind == KindTransfer {
			p.Skipped = append(p.Skipped, l)
			continue
		}
		preTax, err := taxcalc.PreTaxFromTotal(l.Amount, rate, false)
		if err != nil {
			return Plan{}, fmt.Errorf("%s: %w", l.Reference, err)
		}
		switch l.Kind {
		case KindDeposit:
			p.Sales = append(p.Sales, records.SaleParams{
				Date:         l.Date,
				Client:       l.Description,
				Description:  l.Reference,
				PreTaxAmount: preTax,
				Status:       model.SaleStatusSettled,
			})
		case KindWithdrawal:
			p.Purchases = append(p.Purchases, records.PurchaseParams{
				Date:         l.Date,
				Vendor:       l.Description,
				Description:  l.Reference,
				PreTaxAmount: preTax,
				FundedBy:     model.FundedByCompany,
			})
		default:
			return Plan{}, fmt.Errorf("%s: unclassified line %q", l.Reference, l.Kind)
		}
	}
	return p, nil
}

// Result lists the ids of the records an Apply created.
type Result struct {
	Sales     []string
	Purchases []string
}

// Apply writes the plan's records to store at rate.
func Apply(store *records.Store, p Plan, rate decimal.Decimal) (Result, error) {
	var res Result
	for _, sp := range p.Sales {
		s, err := store.AddSale(sp, rate)
		if err != nil {
			return res, fmt.Errorf("adding sale %s: %w", sp.Description, err)
		}
		res.Sales = append(res.Sales, s.ID)
	}
	for _, pp := range p.Purchases {
		pu, err := store.AddPurchase(pp, rate)
		if err != nil {
			return res, fmt.Errorf("adding purchase %s: %w", pp.Description, err)
		}
		res.Purchases = append(res.Purchases, pu.ID)
	}
	return res, nil
}
