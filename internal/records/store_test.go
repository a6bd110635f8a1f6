package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fiscal/internal/model"
)

var rate13 = decimal.New(13, -2)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAddSale(t *testing.T) {
	s := NewStore(t.TempDir())

	first, err := s.AddSale(SaleParams{
		Date:         day(2024, 3, 1),
		Client:       "Northwind",
		Description:  "consulting",
		PreTaxAmount: dec("10000"),
	}, rate13)
	require.NoError(t, err)
	assert.Equal(t, "S-0001", first.ID)
	assert.Equal(t, model.SaleStatusIssued, first.Status)
	assert.Equal(t, "1300.00", first.TaxAmount.StringFixed(2))
	assert.Equal(t, "11300.00", first.Total.StringFixed(2))

	second, err := s.AddSale(SaleParams{
		Date:         day(2024, 3, 2),
		Client:       "Overseas Co",
		PreTaxAmount: dec("500"),
		ClientExempt: true,
		Status:       model.SaleStatusPaid,
	}, rate13)
	require.NoError(t, err)
	assert.Equal(t, "S-0002", second.ID)
	assert.True(t, second.TaxAmount.IsZero())

	all, err := s.Sales()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Northwind", all[0].Client)
	assert.True(t, all[1].ClientExempt)
	assert.Equal(t, model.SaleStatusPaid, all[1].Status)
}

func TestAddSale_RejectsBadInput(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.AddSale(SaleParams{Date: day(2024, 1, 1), PreTaxAmount: dec("0")}, rate13)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = s.AddSale(SaleParams{Date: day(2024, 1, 1), PreTaxAmount: dec("10"), Status: "lost"}, rate13)
	assert.Error(t, err)

	all, err := s.Sales()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddPurchase(t *testing.T) {
	s := NewStore(t.TempDir())

	p, err := s.AddPurchase(PurchaseParams{
		Date:         day(2024, 5, 5),
		Vendor:       "Office Depot",
		PreTaxAmount: dec("1000"),
	}, rate13)
	require.NoError(t, err)
	assert.Equal(t, "P-0001", p.ID)
	assert.Equal(t, model.FundedByCompany, p.FundedBy)
	assert.Equal(t, "130.00", p.TaxAmount.StringFixed(2))

	_, err = s.AddPurchase(PurchaseParams{Date: day(2024, 5, 5), PreTaxAmount: dec("10"), FundedBy: "bank"}, rate13)
	assert.Error(t, err)
}

func TestDividendLifecycle(t *testing.T) {
	s := NewStore(t.TempDir())

	d, err := s.AddDividend(dec("2500"), day(2024, 11, 30))
	require.NoError(t, err)
	assert.Equal(t, "D-0001", d.ID)
	assert.False(t, d.IsPaid())

	_, err = s.MarkDividendPaid("D-0001", day(2024, 11, 1))
	assert.Error(t, err, "cannot be paid before declaration")

	paid, err := s.MarkDividendPaid("D-0001", day(2025, 1, 15))
	require.NoError(t, err)
	assert.True(t, paid.IsPaid())

	_, err = s.MarkDividendPaid("D-0001", day(2025, 1, 16))
	assert.Error(t, err, "already paid")

	_, err = s.MarkDividendPaid("D-0404", day(2025, 1, 16))
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.Dividends()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, day(2025, 1, 15), all[0].PaidOn)

	_, err = s.AddDividend(dec("-1"), day(2024, 1, 1))
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestAddRemittance(t *testing.T) {
	s := NewStore(t.TempDir())

	r, err := s.AddRemittance(dec("450.5"), day(2024, 4, 30), "Q1 HST")
	require.NoError(t, err)
	assert.Equal(t, "R-0001", r.ID)
	assert.Equal(t, "450.50", r.Amount.StringFixed(2))

	_, err = s.AddRemittance(decimal.Zero, day(2024, 4, 30), "")
	assert.ErrorIs(t, err, model.ErrInvalidAmount)
}

func TestLoad_FiltersByWindow(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.AddSale(SaleParams{Date: day(2023, 12, 31), PreTaxAmount: dec("100")}, rate13)
	require.NoError(t, err)
	_, err = s.AddSale(SaleParams{Date: day(2024, 1, 1), PreTaxAmount: dec("200")}, rate13)
	require.NoError(t, err)
	_, err = s.AddPurchase(PurchaseParams{Date: day(2024, 12, 31), PreTaxAmount: dec("50")}, rate13)
	require.NoError(t, err)
	_, err = s.AddRemittance(dec("10"), day(2025, 1, 1), "")
	require.NoError(t, err)

	// Declared in 2023, paid in 2024: belongs to 2024.
	_, err = s.AddDividend(dec("100"), day(2023, 12, 15))
	require.NoError(t, err)
	_, err = s.MarkDividendPaid("D-0001", day(2024, 1, 10))
	require.NoError(t, err)
	// Declared in 2024, unpaid.
	_, err = s.AddDividend(dec("300"), day(2024, 6, 1))
	require.NoError(t, err)

	got, err := s.Load(model.FiscalYearWindow(2024))
	require.NoError(t, err)
	require.Len(t, got.Sales, 1)
	assert.Equal(t, "S-0002", got.Sales[0].ID)
	require.Len(t, got.Purchases, 1)
	assert.Empty(t, got.Remittances)
	require.Len(t, got.Dividends, 2)
	assert.Equal(t, "D-0001", got.Dividends[0].ID)
	assert.Equal(t, "D-0002", got.Dividends[1].ID)
}

func TestLoad_EmptyRepo(t *testing.T) {
	got, err := NewStore(t.TempDir()).Load(model.FiscalYearWindow(2024))
	require.NoError(t, err)
	assert.Empty(t, got.Sales)
	assert.Empty(t, got.Purchases)
	assert.Empty(t, got.Dividends)
	assert.Empty(t, got.Remittances)
}

func TestStoredTaxIsNotRecomputed(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.AddSale(SaleParams{Date: day(2024, 3, 1), PreTaxAmount: dec("1000")}, rate13)
	require.NoError(t, err)

	// A later sale at a new rate leaves the first one alone.
	_, err = s.AddSale(SaleParams{Date: day(2024, 7, 1), PreTaxAmount: dec("1000")}, dec("0.15"))
	require.NoError(t, err)

	all, err := s.Sales()
	require.NoError(t, err)
	assert.Equal(t, "130.00", all[0].TaxAmount.StringFixed(2))
	assert.Equal(t, "150.00", all[1].TaxAmount.StringFixed(2))
}

func TestRerate(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.AddSale(SaleParams{Date: day(2024, 3, 1), PreTaxAmount: dec("1000")}, rate13)
	require.NoError(t, err)
	_, err = s.AddSale(SaleParams{Date: day(2024, 3, 2), PreTaxAmount: dec("1000"), ClientExempt: true}, rate13)
	require.NoError(t, err)
	_, err = s.AddSale(SaleParams{Date: day(2025, 1, 2), PreTaxAmount: dec("1000")}, rate13)
	require.NoError(t, err)
	_, err = s.AddPurchase(PurchaseParams{Date: day(2024, 6, 1), PreTaxAmount: dec("200")}, rate13)
	require.NoError(t, err)

	n, err := s.Rerate(model.FiscalYearWindow(2024), dec("0.05"))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "the exempt sale and the 2025 sale are unchanged")

	sales, err := s.Sales()
	require.NoError(t, err)
	assert.Equal(t, "50.00", sales[0].TaxAmount.StringFixed(2))
	assert.Equal(t, "1050.00", sales[0].Total.StringFixed(2))
	assert.True(t, sales[1].TaxAmount.IsZero())
	assert.Equal(t, "130.00", sales[2].TaxAmount.StringFixed(2))

	purchases, err := s.Purchases()
	require.NoError(t, err)
	assert.Equal(t, "10.00", purchases[0].TaxAmount.StringFixed(2))

	// Same rate again is a no-op.
	n, err = s.Rerate(model.FiscalYearWindow(2024), dec("0.05"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFileLayout(t *testing.T) {
	root := t.TempDir()
	s := NewStore(root)
	_, err := s.AddSale(SaleParams{Date: day(2024, 3, 1), Client: "Acme, Inc.", PreTaxAmount: dec("10")}, rate13)
	require.NoError(t, err)
	_, err = s.AddSale(SaleParams{Date: day(2024, 3, 2), PreTaxAmount: dec("20")}, rate13)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, Dir, SalesFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "one header and two rows")
	assert.Equal(t, SaleHeader, lines[0])
	assert.Equal(t, `S-0001,2024-03-01,"Acme, Inc.",,false,issued,10.00,1.30,11.30`, lines[1])
}
