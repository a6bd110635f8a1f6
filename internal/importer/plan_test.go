package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fiscal/internal/model"
	"github.com/cleared-dev/fiscal/internal/records"
)

var rate = decimal.RequireFromString("0.13")

func TestNewPlan_Classifies(t *testing.T) {
	p, err := NewPlan(parseStatement(t), rate)
	require.NoError(t, err)

	require.Len(t, p.Sales, 1)
	sale := p.Sales[0]
	assert.Equal(t, "ACME CONSULTING INVOICE 1042", sale.Client)
	assert.Equal(t, model.SaleStatusSettled, sale.Status)
	assert.Equal(t, "3097.35", sale.PreTaxAmount.StringFixed(2))

	require.Len(t, p.Purchases, 3)
	assert.Equal(t, "STAPLES #1123", p.Purchases[1].Vendor)
	assert.Equal(t, "100.00", p.Purchases[1].PreTaxAmount.StringFixed(2))
	assert.Equal(t, "chase_20250106_STAPLES112", p.Purchases[1].Description)
	assert.Equal(t, model.FundedByCompany, p.Purchases[1].FundedBy)
	assert.Equal(t, "chase_20250120_CHK1043", p.Purchases[2].Description)

	require.Len(t, p.Skipped, 1)
	assert.Equal(t, KindTransfer, p.Skipped[0].Kind)
}

func TestNewPlan_UnclassifiedLine(t *testing.T) {
	_, err := NewPlan([]Line{{Amount: decimal.NewFromInt(5), Reference: "r"}}, rate)
	require.Error(t, err)
}

func TestNewPlan_Empty(t *testing.T) {
	p, err := NewPlan(nil, rate)
	require.NoError(t, err)
	assert.Empty(t, p.Sales)
	assert.Empty(t, p.Purchases)
}

func TestApply(t *testing.T) {
	store := records.NewStore(t.TempDir())
	p, err := NewPlan(parseStatement(t), rate)
	require.NoError(t, err)

	res, err := Apply(store, p, rate)
	require.NoError(t, err)
	assert.Equal(t, []string{"S-0001"}, res.Sales)
	assert.Equal(t, []string{"P-0001", "P-0002", "P-0003"}, res.Purchases)

	purchases, err := store.Purchases()
	require.NoError(t, err)
	require.Len(t, purchases, 3)
	assert.Equal(t, "113.00", purchases[1].Total.StringFixed(2), "tax recomputed on the backed-out amount")
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), purchases[1].Date)
}
