// Package records stores the company's sales, purchases, dividends and tax
// remittances as CSV files under records/.
package records

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/id"
	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/taxcalc"
)

// Dir is the records directory relative to the project root.
const Dir = "records"

// File names under Dir.
const (
	SalesFile       = "sales.csv"
	PurchasesFile   = "purchases.csv"
	DividendsFile   = "dividends.csv"
	RemittancesFile = "remittances.csv"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// Records is everything stored for a period.
type Records struct {
	Sales       []model.Sale
	Purchases   []model.Purchase
	Dividends   []model.Dividend
	Remittances []model.TaxRemittance
}

// Store reads and appends records under a project root.
type Store struct {
	repoRoot string
}

// NewStore creates a Store rooted at repoRoot.
func NewStore(repoRoot string) *Store {
	return &Store{repoRoot: repoRoot}
}

// SaleParams holds the inputs for a new sale.
type SaleParams struct {
	Date         time.Time
	Client       string
	Description  string
	PreTaxAmount decimal.Decimal
	ClientExempt bool
	Status       model.SaleStatus
}

// AddSale computes tax at rate, assigns the next sale id and appends the sale.
func (s *Store) AddSale(p SaleParams, rate decimal.Decimal) (model.Sale, error) {
	if p.Status == "" {
		p.Status = model.SaleStatusIssued
	}
	if !p.Status.IsValid() {
		return model.Sale{}, fmt.Errorf("unknown sale status %q", p.Status)
	}
	amounts, err := taxcalc.Compute(p.PreTaxAmount, rate, p.ClientExempt)
	if err != nil {
		return model.Sale{}, err
	}
	existing, err := s.Sales()
	if err != nil {
		return model.Sale{}, err
	}
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	sale := model.Sale{
		ID:           id.Next(id.PrefixSale, ids),
		Date:         p.Date,
		Client:       p.Client,
		Description:  p.Description,
		ClientExempt: p.ClientExempt,
		Status:       p.Status,
		TaxAmounts:   amounts,
	}
	if err := appendTo(s.path(SalesFile), SaleHeader, []model.Sale{sale}, MarshalSale); err != nil {
		return model.Sale{}, err
	}
	return sale, nil
}

// PurchaseParams holds the inputs for a new purchase.
type PurchaseParams struct {
	Date         time.Time
	Vendor       string
	Description  string
	PreTaxAmount decimal.Decimal
	VendorExempt bool
	FundedBy     model.FundingSource
}

// AddPurchase computes tax at rate, assigns the next purchase id and appends the purchase.
func (s *Store) AddPurchase(p PurchaseParams, rate decimal.Decimal) (model.Purchase, error) {
	if p.FundedBy == "" {
		p.FundedBy = model.FundedByCompany
	}
	if !p.FundedBy.IsValid() {
		return model.Purchase{}, fmt.Errorf("unknown funding source %q", p.FundedBy)
	}
	amounts, err := taxcalc.Compute(p.PreTaxAmount, rate, p.VendorExempt)
	if err != nil {
		return model.Purchase{}, err
	}
	existing, err := s.Purchases()
	if err != nil {
		return model.Purchase{}, err
	}
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	purchase := model.Purchase{
		ID:           id.Next(id.PrefixPurchase, ids),
		Date:         p.Date,
		Vendor:       p.Vendor,
		Description:  p.Description,
		VendorExempt: p.VendorExempt,
		FundedBy:     p.FundedBy,
		TaxAmounts:   amounts,
	}
	if err := appendTo(s.path(PurchasesFile), PurchaseHeader, []model.Purchase{purchase}, MarshalPurchase); err != nil {
		return model.Purchase{}, err
	}
	return purchase, nil
}

// AddDividend declares a dividend.
func (s *Store) AddDividend(amount decimal.Decimal, declaredOn time.Time) (model.Dividend, error) {
	if !amount.IsPositive() {
		return model.Dividend{}, fmt.Errorf("%w: dividend %s must be positive", model.ErrInvalidAmount, amount)
	}
	existing, err := s.Dividends()
	if err != nil {
		return model.Dividend{}, err
	}
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	d := model.Dividend{
		ID:         id.Next(id.PrefixDividend, ids),
		Amount:     amount.Round(taxcalc.Places),
		DeclaredOn: declaredOn,
		Status:     model.DividendDeclared,
	}
	if err := appendTo(s.path(DividendsFile), DividendHeader, []model.Dividend{d}, MarshalDividend); err != nil {
		return model.Dividend{}, err
	}
	return d, nil
}

// MarkDividendPaid records payment of a declared dividend.
func (s *Store) MarkDividendPaid(dividendID string, paidOn time.Time) (model.Dividend, error) {
	all, err := s.Dividends()
	if err != nil {
		return model.Dividend{}, err
	}
	for i, d := range all {
		if d.ID != dividendID {
			continue
		}
		if d.IsPaid() {
			return model.Dividend{}, fmt.Errorf("dividend %s already paid on %s", d.ID, d.PaidOn.Format(model.DateFormat))
		}
		if paidOn.Before(d.DeclaredOn) {
			return model.Dividend{}, fmt.Errorf("dividend %s cannot be paid before it was declared", d.ID)
		}
		d.PaidOn = paidOn
		d.Status = model.DividendPaid
		all[i] = d
		if err := rewrite(s.path(DividendsFile), func(w io.Writer) error { return WriteDividends(w, all) }); err != nil {
			return model.Dividend{}, err
		}
		return d, nil
	}
	return model.Dividend{}, fmt.Errorf("%w: dividend %s", ErrNotFound, dividendID)
}

// AddRemittance records tax paid directly to the authority.
func (s *Store) AddRemittance(amount decimal.Decimal, date time.Time, reference string) (model.TaxRemittance, error) {
	if !amount.IsPositive() {
		return model.TaxRemittance{}, fmt.Errorf("%w: remittance %s must be positive", model.ErrInvalidAmount, amount)
	}
	existing, err := s.Remittances()
	if err != nil {
		return model.TaxRemittance{}, err
	}
	ids := make([]string, len(existing))
	for i, e := range existing {
		ids[i] = e.ID
	}
	r := model.TaxRemittance{
		ID:        id.Next(id.PrefixRemittance, ids),
		Date:      date,
		Amount:    amount.Round(taxcalc.Places),
		Reference: reference,
	}
	if err := appendTo(s.path(RemittancesFile), RemittanceHeader, []model.TaxRemittance{r}, MarshalRemittance); err != nil {
		return model.TaxRemittance{}, err
	}
	return r, nil
}

// Load returns every record dated within w. Dividends are placed by their
// effective date.
func (s *Store) Load(w model.DateWindow) (Records, error) {
	var out Records

	sales, err := s.Sales()
	if err != nil {
		return out, err
	}
	for _, v := range sales {
		if w.Contains(v.Date) {
			out.Sales = append(out.Sales, v)
		}
	}

	purchases, err := s.Purchases()
	if err != nil {
		return out, err
	}
	for _, v := range purchases {
		if w.Contains(v.Date) {
			out.Purchases = append(out.Purchases, v)
		}
	}

	dividends, err := s.Dividends()
	if err != nil {
		return out, err
	}
	for _, v := range dividends {
		if w.Contains(v.EffectiveDate()) {
			out.Dividends = append(out.Dividends, v)
		}
	}

	remittances, err := s.Remittances()
	if err != nil {
		return out, err
	}
	for _, v := range remittances {
		if w.Contains(v.Date) {
			out.Remittances = append(out.Remittances, v)
		}
	}
	return out, nil
}

// Rerate recomputes tax on every sale and purchase in w at rate, keeping each
// record's exemption. It returns the number of records whose amounts changed.
func (s *Store) Rerate(w model.DateWindow, rate decimal.Decimal) (int, error) {
	sales, err := s.Sales()
	if err != nil {
		return 0, err
	}
	purchases, err := s.Purchases()
	if err != nil {
		return 0, err
	}

	salesChanged, purchasesChanged := 0, 0
	for i, v := range sales {
		if !w.Contains(v.Date) {
			continue
		}
		amounts, err := taxcalc.Rerate(v.TaxAmounts, rate, v.ClientExempt)
		if err != nil {
			return 0, fmt.Errorf("sale %s: %w", v.ID, err)
		}
		if !amounts.TaxAmount.Equal(v.TaxAmount) {
			sales[i].TaxAmounts = amounts
			salesChanged++
		}
	}
	for i, v := range purchases {
		if !w.Contains(v.Date) {
			continue
		}
		amounts, err := taxcalc.Rerate(v.TaxAmounts, rate, v.VendorExempt)
		if err != nil {
			return 0, fmt.Errorf("purchase %s: %w", v.ID, err)
		}
		if !amounts.TaxAmount.Equal(v.TaxAmount) {
			purchases[i].TaxAmounts = amounts
			purchasesChanged++
		}
	}

	if salesChanged > 0 {
		if err := rewrite(s.path(SalesFile), func(w io.Writer) error { return WriteSales(w, sales) }); err != nil {
			return 0, err
		}
	}
	if purchasesChanged > 0 {
		if err := rewrite(s.path(PurchasesFile), func(w io.Writer) error { return WritePurchases(w, purchases) }); err != nil {
			return salesChanged, err
		}
	}
	return salesChanged + purchasesChanged, nil
}

// Sales reads every stored sale.
func (s *Store) Sales() ([]model.Sale, error) {
	return readFile(s.path(SalesFile), ReadSales)
}

// Purchases reads every stored purchase.
func (s *Store) Purchases() ([]model.Purchase, error) {
	return readFile(s.path(PurchasesFile), ReadPurchases)
}

// Dividends reads every stored dividend.
func (s *Store) Dividends() ([]model.Dividend, error) {
	return readFile(s.path(DividendsFile), ReadDividends)
}

// Remittances reads every stored remittance.
func (s *Store) Remittances() ([]model.TaxRemittance, error) {
	return readFile(s.path(RemittancesFile), ReadRemittances)
}

func (s *Store) path(name string) string {
	return filepath.Join(s.repoRoot, Dir, name)
}

// readFile returns nil for a file that does not exist yet.
func readFile[T any](path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	vs, err := read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vs, nil
}

// appendTo appends rows, creating the file with its header when new.
func appendTo[T any](path, header string, vs []T, marshal func(T) []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating records dir: %w", err)
	}

	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if !isNew {
		header = ""
	}
	if err := writeRows(f, header, vs, marshal); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

// rewrite replaces path with the output of write via a temp file rename.
func rewrite(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating records dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
