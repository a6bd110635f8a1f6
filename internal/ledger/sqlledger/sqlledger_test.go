package sqlledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fiscal/internal/classes"
	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/ledger/ledgertest"
	"github.com/cleared-dev/fiscal/internal/logger"
	"github.com/cleared-dev/fiscal/internal/model"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger", "fiscal.db"), logger.Nop(), "error")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedgerContract(t *testing.T) {
	ledgertest.Run(t, func(t *testing.T) ledger.Ledger {
		return openTestLedger(t)
	})
}

func TestUniqueIndexBacksDuplicateCheck(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a, err := l.AddAsset(ctx, ledgertest.NewAsset(t, "8", jan, "1000"))
	require.NoError(t, err)

	row := EntryModelFromEntity(model.DepreciationEntry{
		AssetID: a.ID, FiscalYear: 2024, Amount: decimal.NewFromInt(1), EntryDate: jan,
	})
	require.NoError(t, l.db.Create(row).Error)

	dup := EntryModelFromEntity(model.DepreciationEntry{
		AssetID: a.ID, FiscalYear: 2024, Amount: decimal.NewFromInt(2), EntryDate: jan,
	})
	err = l.db.Create(dup).Error
	require.Error(t, err)
}

func TestDecimalsSurviveStorage(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	a, err := model.NewCapitalAsset("precise", "8", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString("1234567890.12"), decimal.RequireFromString("0.01"), model.FundedByPrincipal)
	require.NoError(t, err)

	a, err = l.AddAsset(ctx, a)
	require.NoError(t, err)

	got, err := l.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234567890.13", got.TotalCost.StringFixed(2))
	assert.Equal(t, model.FundedByPrincipal, got.FundedBy)
}

func TestServiceOverSQLite(t *testing.T) {
	l := openTestLedger(t)
	s := ledger.NewService(l, classes.Default(), logger.Nop())
	ctx := context.Background()

	a, err := s.AddAsset(ctx, ledger.AssetParams{
		ClassID:      "10",
		AcquiredOn:   time.Date(2023, 8, 14, 0, 0, 0, 0, time.UTC),
		PreTaxAmount: decimal.NewFromInt(10000),
	})
	require.NoError(t, err)

	for _, year := range []int{2023, 2024, 2025} {
		_, err := s.Depreciate(ctx, year)
		require.NoError(t, err)
	}
	// A rerun is a no-op.
	report, err := s.Depreciate(ctx, 2025)
	require.NoError(t, err)
	assert.Empty(t, report.Recorded)

	got, err := l.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "4165.00", got.BookValue.StringFixed(2))
	assert.Equal(t, "5835.00", got.AccumulatedDepreciation.StringFixed(2))
}

func TestAssetsRejectsCorruptRow(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	bad, err := l.AddAsset(ctx, ledgertest.NewAsset(t, "8", jan, "1000"))
	require.NoError(t, err)
	_, err = l.AddAsset(ctx, ledgertest.NewAsset(t, "10", jan, "2000"))
	require.NoError(t, err)

	// Accumulated depreciation larger than the cost.
	require.NoError(t, l.db.Model(&AssetModel{}).Where("id = ?", bad.ID).
		Update("accumulated_depreciation", decimal.NewFromInt(5000)).Error)

	assets, rejected, err := l.Assets(ctx)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, "A-0002", assets[0].ID)
	require.Len(t, rejected, 1)
	assert.Equal(t, model.EntityAsset, rejected[0].Kind)
	assert.Equal(t, bad.ID, rejected[0].ID)
	assert.ErrorIs(t, rejected[0], model.ErrInvalidAmount)
}
