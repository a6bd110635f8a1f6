package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewCapitalAsset(t *testing.T) {
	a, err := NewCapitalAsset("Laptop", "50", time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC), dec("2000.00"), dec("260.00"), "")
	require.NoError(t, err)

	assert.Equal(t, "2260.00", a.TotalCost.StringFixed(2))
	assert.True(t, a.DepreciableBase.Equal(a.TotalCost))
	assert.True(t, a.BookValue.Equal(a.TotalCost))
	assert.True(t, a.AccumulatedDepreciation.IsZero())
	assert.Equal(t, FundedByCompany, a.FundedBy)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), a.AcquiredOn)
	assert.NoError(t, a.Validate())
}

func TestNewCapitalAsset_InvalidAmounts(t *testing.T) {
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewCapitalAsset("x", "8", when, decimal.Zero, decimal.Zero, FundedByCompany)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewCapitalAsset("x", "8", when, dec("-1"), decimal.Zero, FundedByCompany)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewCapitalAsset("x", "8", when, dec("100"), dec("-1"), FundedByCompany)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewCapitalAsset("x", "8", when, dec("100"), decimal.Zero, "bank")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	a, err := NewCapitalAsset("Van", "10", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), dec("10000"), decimal.Zero, FundedByPrincipal)
	require.NoError(t, err)
	a.ID = "A-0001"

	a, err = a.Apply(DepreciationEntry{AssetID: "A-0001", FiscalYear: 2023, Amount: dec("1500")})
	require.NoError(t, err)
	assert.Equal(t, "1500.00", a.AccumulatedDepreciation.StringFixed(2))
	assert.Equal(t, "8500.00", a.BookValue.StringFixed(2))
	assert.NoError(t, a.Validate())
}

func TestApply_Rejects(t *testing.T) {
	a, err := NewCapitalAsset("Van", "10", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), dec("100"), decimal.Zero, FundedByCompany)
	require.NoError(t, err)
	a.ID = "A-0001"

	_, err = a.Apply(DepreciationEntry{AssetID: "A-0002", FiscalYear: 2023, Amount: dec("1")})
	assert.Error(t, err, "entry for another asset")

	_, err = a.Apply(DepreciationEntry{AssetID: "A-0001", FiscalYear: 2023, Amount: dec("100.01")})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = a.Apply(DepreciationEntry{AssetID: "A-0001", FiscalYear: 2023, Amount: dec("-1")})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestValidate_BrokenLedger(t *testing.T) {
	a, err := NewCapitalAsset("Desk", "8", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), dec("500"), decimal.Zero, FundedByCompany)
	require.NoError(t, err)

	a.BookValue = dec("400")
	assert.ErrorIs(t, a.Validate(), ErrInvalidAmount)

	a.AccumulatedDepreciation = dec("600")
	a.BookValue = dec("-100")
	assert.ErrorIs(t, a.Validate(), ErrInvalidAmount)
}

func TestEntryKey(t *testing.T) {
	e := DepreciationEntry{AssetID: "A-0003", FiscalYear: 2024}
	assert.Equal(t, "A-0003/2024", e.Key())
}

func TestEntityError(t *testing.T) {
	err := EntityError{Kind: EntityAsset, ID: "A-0009", Err: ErrClassNotFound}
	assert.True(t, errors.Is(err, ErrClassNotFound))
	assert.Equal(t, "asset A-0009: depreciation class not found", err.Error())

	data, jerr := err.MarshalJSON()
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"kind":"asset","id":"A-0009","error":"depreciation class not found"}`, string(data))
}
