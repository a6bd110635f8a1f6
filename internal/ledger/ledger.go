// Package ledger persists capital assets and their depreciation entries and
// runs year-end depreciation against them.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// Ledger stores assets and the append-only depreciation entries applied to them.
//
// Record must reject a second entry for the same asset and fiscal year with
// model.ErrDuplicateDepreciationEntry, and an entry larger than the asset's
// book value with model.ErrInvalidAmount. The entry and the asset's updated
// book value become visible together or not at all.
//
// Assets returns every asset it could load. A stored asset or entry that
// cannot be loaded is returned as a rejection instead, and the other assets
// are unaffected. The error is reserved for storage failures.
type Ledger interface {
	Assets(ctx context.Context) ([]model.CapitalAsset, []model.EntityError, error)
	Asset(ctx context.Context, assetID string) (model.CapitalAsset, error)
	AddAsset(ctx context.Context, asset model.CapitalAsset) (model.CapitalAsset, error)
	Dispose(ctx context.Context, assetID string, on time.Time, amount decimal.Decimal) (model.CapitalAsset, error)
	Entries(ctx context.Context) ([]model.DepreciationEntry, error)
	HasEntry(ctx context.Context, assetID string, fiscalYear int) (bool, error)
	Record(ctx context.Context, entry model.DepreciationEntry) (model.CapitalAsset, error)
}
