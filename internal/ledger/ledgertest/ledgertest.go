// Package ledgertest checks that a ledger.Ledger implementation behaves like
// the CSV ledger.
package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/model"
)

// Run exercises a fresh, empty ledger from newLedger in each subtest.
func Run(t *testing.T, newLedger func(t *testing.T) ledger.Ledger) {
	t.Run("AddAssetAssignsIDs", func(t *testing.T) { addAssetAssignsIDs(t, newLedger(t)) })
	t.Run("AssetNotFound", func(t *testing.T) { assetNotFound(t, newLedger(t)) })
	t.Run("RecordAppliesEntry", func(t *testing.T) { recordAppliesEntry(t, newLedger(t)) })
	t.Run("RecordRejectsDuplicate", func(t *testing.T) { recordRejectsDuplicate(t, newLedger(t)) })
	t.Run("RecordRejectsOverBookValue", func(t *testing.T) { recordRejectsOverBookValue(t, newLedger(t)) })
	t.Run("Dispose", func(t *testing.T) { dispose(t, newLedger(t)) })
	t.Run("Empty", func(t *testing.T) { empty(t, newLedger(t)) })
}

// NewAsset returns an unstored asset of the given class and cost.
func NewAsset(t *testing.T, classID string, acquired time.Time, cost string) model.CapitalAsset {
	t.Helper()
	a, err := model.NewCapitalAsset("test asset", classID, acquired,
		decimal.RequireFromString(cost), decimal.Zero, model.FundedByCompany)
	require.NoError(t, err)
	return a
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func entry(assetID string, year int, amount string) model.DepreciationEntry {
	return model.DepreciationEntry{
		AssetID:    assetID,
		FiscalYear: year,
		Amount:     decimal.RequireFromString(amount),
		EntryDate:  day(year, 12, 31),
	}
}

func addAssetAssignsIDs(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	a, err := l.AddAsset(ctx, NewAsset(t, "8", day(2024, 1, 5), "1000"))
	require.NoError(t, err)
	assert.Equal(t, "A-0001", a.ID)

	b, err := l.AddAsset(ctx, NewAsset(t, "10", day(2024, 2, 5), "2000"))
	require.NoError(t, err)
	assert.Equal(t, "A-0002", b.ID)

	all, rejected, err := l.Assets(ctx)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, all, 2)
	assert.Equal(t, "A-0001", all[0].ID)
	assert.Equal(t, "8", all[0].ClassID)
	assert.Equal(t, day(2024, 1, 5), all[0].AcquiredOn)
	assert.Equal(t, "2000.00", all[1].BookValue.StringFixed(2))
}

func assetNotFound(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	_, err := l.Asset(ctx, "A-0404")
	assert.ErrorIs(t, err, model.ErrAssetNotFound)

	_, err = l.Record(ctx, entry("A-0404", 2024, "1"))
	assert.ErrorIs(t, err, model.ErrAssetNotFound)
}

func recordAppliesEntry(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	a, err := l.AddAsset(ctx, NewAsset(t, "10", day(2023, 8, 14), "10000"))
	require.NoError(t, err)

	updated, err := l.Record(ctx, entry(a.ID, 2023, "1500"))
	require.NoError(t, err)
	assert.Equal(t, "8500.00", updated.BookValue.StringFixed(2))

	updated, err = l.Record(ctx, entry(a.ID, 2024, "2550"))
	require.NoError(t, err)
	assert.Equal(t, "5950.00", updated.BookValue.StringFixed(2))

	stored, err := l.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "4050.00", stored.AccumulatedDepreciation.StringFixed(2))
	assert.Equal(t, "5950.00", stored.BookValue.StringFixed(2))
	require.NoError(t, stored.Validate())

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2023, entries[0].FiscalYear)

	has, err := l.HasEntry(ctx, a.ID, 2024)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = l.HasEntry(ctx, a.ID, 2025)
	require.NoError(t, err)
	assert.False(t, has)
}

func recordRejectsDuplicate(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	a, err := l.AddAsset(ctx, NewAsset(t, "8", day(2024, 1, 1), "1000"))
	require.NoError(t, err)

	_, err = l.Record(ctx, entry(a.ID, 2024, "100"))
	require.NoError(t, err)

	_, err = l.Record(ctx, entry(a.ID, 2024, "50"))
	assert.ErrorIs(t, err, model.ErrDuplicateDepreciationEntry)

	stored, err := l.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "900.00", stored.BookValue.StringFixed(2), "rejected entry is not applied")
}

func recordRejectsOverBookValue(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	a, err := l.AddAsset(ctx, NewAsset(t, "12", day(2024, 1, 1), "100"))
	require.NoError(t, err)

	_, err = l.Record(ctx, entry(a.ID, 2024, "100.01"))
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func dispose(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	a, err := l.AddAsset(ctx, NewAsset(t, "8", day(2022, 3, 1), "1000"))
	require.NoError(t, err)
	_, err = l.Record(ctx, entry(a.ID, 2022, "100"))
	require.NoError(t, err)

	_, err = l.Dispose(ctx, a.ID, day(2021, 1, 1), decimal.Zero)
	assert.Error(t, err, "before acquisition")

	d, err := l.Dispose(ctx, a.ID, day(2024, 6, 30), decimal.RequireFromString("400"))
	require.NoError(t, err)
	assert.True(t, d.IsDisposed())
	assert.Equal(t, "900.00", d.BookValue.StringFixed(2), "disposal keeps depreciation history")

	stored, err := l.Asset(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 6, 30), stored.DisposedOn)
	assert.Equal(t, "400.00", stored.DisposalAmount.StringFixed(2))

	_, err = l.Dispose(ctx, a.ID, day(2024, 7, 1), decimal.Zero)
	assert.Error(t, err, "already disposed")

	_, err = l.Dispose(ctx, "A-0404", day(2024, 7, 1), decimal.Zero)
	assert.ErrorIs(t, err, model.ErrAssetNotFound)
}

func empty(t *testing.T, l ledger.Ledger) {
	ctx := context.Background()
	assets, rejected, err := l.Assets(ctx)
	require.NoError(t, err)
	assert.Empty(t, assets)
	assert.Empty(t, rejected)
	entries, err := l.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
