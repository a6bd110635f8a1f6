package summary

import (
	"fmt"

	"github.com/cleared-dev/fiscal/internal/model"
)

// screen drops records that cannot be trusted and reports each one. Only
// in-window transactions are checked; assets are checked regardless of the
// window because their class drives the allowance estimate.
func screen(in Input) (Input, []model.EntityError) {
	var errs []model.EntityError
	fail := func(kind model.EntityKind, id string, err error) {
		errs = append(errs, model.EntityError{Kind: kind, ID: id, Err: err})
	}

	out := in
	out.Sales = nil
	for _, s := range in.Sales {
		if !in.Window.Contains(s.Date) {
			continue
		}
		if err := checkTaxAmounts(s.TaxAmounts); err != nil {
			fail(model.EntitySale, s.ID, err)
			continue
		}
		out.Sales = append(out.Sales, s)
	}

	out.Purchases = nil
	for _, p := range in.Purchases {
		if !in.Window.Contains(p.Date) {
			continue
		}
		if err := checkTaxAmounts(p.TaxAmounts); err != nil {
			fail(model.EntityPurchase, p.ID, err)
			continue
		}
		out.Purchases = append(out.Purchases, p)
	}

	out.Dividends = nil
	for _, d := range in.Dividends {
		if !in.Window.Contains(d.EffectiveDate()) {
			continue
		}
		if !d.Amount.IsPositive() {
			fail(model.EntityDividend, d.ID, fmt.Errorf("%w: dividend %s must be positive", model.ErrInvalidAmount, d.Amount))
			continue
		}
		out.Dividends = append(out.Dividends, d)
	}

	out.Remittances = nil
	for _, r := range in.Remittances {
		if !in.Window.Contains(r.Date) {
			continue
		}
		if !r.Amount.IsPositive() {
			fail(model.EntityRemittance, r.ID, fmt.Errorf("%w: remittance %s must be positive", model.ErrInvalidAmount, r.Amount))
			continue
		}
		out.Remittances = append(out.Remittances, r)
	}

	out.Assets = nil
	held := make(map[string]bool, len(in.Assets))
	for _, a := range in.Assets {
		if in.Rates == nil {
			fail(model.EntityAsset, a.ID, fmt.Errorf("%w: no class rates for %s", model.ErrClassNotFound, a.ClassID))
			continue
		}
		if _, err := in.Rates.Rate(a.ClassID); err != nil {
			fail(model.EntityAsset, a.ID, err)
			continue
		}
		if err := a.Validate(); err != nil {
			fail(model.EntityAsset, a.ID, err)
			continue
		}
		held[a.ID] = true
		out.Assets = append(out.Assets, a)
	}

	failed := make(map[string]bool)
	for _, a := range in.Assets {
		if !held[a.ID] {
			failed[a.ID] = true
		}
	}
	rejectedEntries := make(map[string]bool)
	for _, r := range in.Rejected {
		switch r.Kind {
		case model.EntityAsset:
			failed[r.ID] = true
		case model.EntityDepreciationEntry:
			rejectedEntries[r.ID] = true
		}
	}

	out.Entries = nil
	seen := make(map[string]bool)
	for _, e := range in.Entries {
		if !in.Window.Contains(e.EntryDate) {
			continue
		}
		switch {
		case failed[e.AssetID], rejectedEntries[e.Key()]:
			// Already reported.
			continue
		case !held[e.AssetID]:
			fail(model.EntityDepreciationEntry, e.Key(), fmt.Errorf("%w: %s", model.ErrAssetNotFound, e.AssetID))
			continue
		case e.Amount.IsNegative():
			fail(model.EntityDepreciationEntry, e.Key(), fmt.Errorf("%w: depreciation %s is negative", model.ErrInvalidAmount, e.Amount))
			continue
		case seen[e.Key()]:
			fail(model.EntityDepreciationEntry, e.Key(), model.ErrDuplicateDepreciationEntry)
			continue
		}
		seen[e.Key()] = true
		out.Entries = append(out.Entries, e)
	}

	return out, errs
}

func checkTaxAmounts(t model.TaxAmounts) error {
	if !t.PreTaxAmount.IsPositive() {
		return fmt.Errorf("%w: pre-tax amount %s must be positive", model.ErrInvalidAmount, t.PreTaxAmount)
	}
	if t.TaxAmount.IsNegative() {
		return fmt.Errorf("%w: tax amount %s is negative", model.ErrInvalidAmount, t.TaxAmount)
	}
	if sum := t.PreTaxAmount.Add(t.TaxAmount); !t.Total.Equal(sum) {
		return fmt.Errorf("%w: total %s != pre-tax %s + tax %s", model.ErrInvalidAmount, t.Total, t.PreTaxAmount, t.TaxAmount)
	}
	return nil
}
