package summary

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/taxcalc"
)

// 1. Σ pre-tax of settled sales in the window.
func grossIncome(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, sale := range settledSales(in) {
		total = total.Add(sale.PreTaxAmount)
	}
	s.GrossIncome = total
	return s
}

// 2. Σ tax over the same settled set as gross income.
func taxCollected(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, sale := range settledSales(in) {
		total = total.Add(sale.TaxAmount)
	}
	s.TaxCollected = total
	return s
}

// 3. Σ pre-tax of purchases in the window, whoever funded them.
func totalExpenses(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, p := range in.Purchases {
		if in.Window.Contains(p.Date) {
			total = total.Add(p.PreTaxAmount)
		}
	}
	s.TotalExpenses = total
	return s
}

// 4. Purchase tax split by the company's registration status now.
func purchaseTax(in Input, s model.PeriodSummary) model.PeriodSummary {
	split := taxcalc.PurchaseTax{AsCost: decimal.Zero, AsCredit: decimal.Zero}
	for _, p := range in.Purchases {
		if in.Window.Contains(p.Date) {
			split = split.Add(taxcalc.SplitPurchaseTax(p.TaxAmount, in.Company.TaxRegistered))
		}
	}
	s.TaxPaidAsCost = split.AsCost
	s.TaxPaidAsCredit = split.AsCredit
	return s
}

// 5. Σ recorded depreciation entries dated in the window. An asset bought
// before the window still contributes when its entry falls inside.
func totalDepreciation(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, e := range in.Entries {
		if in.Window.Contains(e.EntryDate) {
			total = total.Add(e.Amount)
		}
	}
	s.TotalDepreciation = total
	return s
}

// 6. Forward-looking Σ base × rate for assets acquired by the window end.
// Reported on its own; it is never added to recorded depreciation. Unlike
// the plain rule, assets disposed before the window start are left out.
func ccaEstimate(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, a := range in.Assets {
		if a.AcquiredOn.After(in.Window.End) {
			continue
		}
		if a.IsDisposed() && a.DisposedOn.Before(in.Window.Start) {
			continue
		}
		rate, err := in.Rates.Rate(a.ClassID)
		if err != nil {
			continue
		}
		total = total.Add(a.DepreciableBase.Mul(rate).Round(taxcalc.Places))
	}
	s.CapitalCostAllowanceEstimate = total
	return s
}

// 7. Gross income less expenses less recorded depreciation.
func preTaxIncome(_ Input, s model.PeriodSummary) model.PeriodSummary {
	s.PreTaxIncome = s.GrossIncome.Sub(s.TotalExpenses).Sub(s.TotalDepreciation)
	return s
}

// 8. Small-business tax on pre-tax income. A loss is taxed at zero, never credited.
func incomeTax(in Input, s model.PeriodSummary) model.PeriodSummary {
	tax := s.PreTaxIncome.Mul(in.Company.SmallBusinessRate).Round(taxcalc.Places)
	s.IncomeTax = decimal.Max(decimal.Zero, tax)
	return s
}

// 9.
func postTaxIncome(_ Input, s model.PeriodSummary) model.PeriodSummary {
	s.PostTaxIncome = s.PreTaxIncome.Sub(s.IncomeTax)
	return s
}

// 10. Tax collected less input tax credits less direct remittances.
// Tax absorbed as cost does not reduce what is owed.
func taxRemittance(in Input, s model.PeriodSummary) model.PeriodSummary {
	direct := decimal.Zero
	for _, r := range in.Remittances {
		if in.Window.Contains(r.Date) {
			direct = direct.Add(r.Amount)
		}
	}
	s.DirectRemittances = direct
	s.TaxRemittanceDue = s.TaxCollected.Sub(s.TaxPaidAsCredit).Sub(direct)
	return s
}

// 11. Only dividends actually paid in the window count.
func dividendsPaid(in Input, s model.PeriodSummary) model.PeriodSummary {
	total := decimal.Zero
	for _, d := range in.Dividends {
		if d.IsPaid() && in.Window.Contains(d.EffectiveDate()) {
			total = total.Add(d.Amount)
		}
	}
	s.DividendsPaid = total
	return s
}

// 12.
func retainedEarnings(_ Input, s model.PeriodSummary) model.PeriodSummary {
	s.RetainedEarnings = s.PostTaxIncome.Sub(s.DividendsPaid)
	return s
}

func settledSales(in Input) []model.Sale {
	var out []model.Sale
	for _, sale := range in.Sales {
		if sale.Status.IsSettled() && in.Window.Contains(sale.Date) {
			out = append(out, sale)
		}
	}
	return out
}
