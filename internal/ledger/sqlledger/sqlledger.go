// Package sqlledger is a ledger.Ledger backed by a sqlite database through gorm.
package sqlledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cleared-dev/fiscal/internal/id"
	"github.com/cleared-dev/fiscal/internal/ledger"
	"github.com/cleared-dev/fiscal/internal/logger"
	"github.com/cleared-dev/fiscal/internal/model"
)

// Ledger stores assets and depreciation entries in sqlite.
type Ledger struct {
	db *gorm.DB
}

var _ ledger.Ledger = (*Ledger)(nil)

// Open opens (creating if needed) the database at path and migrates the schema.
func Open(path string, log *zap.Logger, logLevel string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.NewGormLogger(log, logger.GormLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}
	if err := db.AutoMigrate(&AssetModel{}, &EntryModel{}); err != nil {
		return nil, fmt.Errorf("migrating ledger database: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error {
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Assets returns every asset ordered by id. Rows that do not form a valid
// asset are rejected individually.
func (l *Ledger) Assets(ctx context.Context) ([]model.CapitalAsset, []model.EntityError, error) {
	var rows []AssetModel
	if err := l.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("listing assets: %w", err)
	}
	assets := make([]model.CapitalAsset, 0, len(rows))
	var rejected []model.EntityError
	for i := range rows {
		a, err := rows[i].ToEntity()
		if err != nil {
			rejected = append(rejected, model.EntityError{Kind: model.EntityAsset, ID: rows[i].ID, Err: err})
			continue
		}
		assets = append(assets, a)
	}
	return assets, rejected, nil
}

// Asset returns one asset by id.
func (l *Ledger) Asset(ctx context.Context, assetID string) (model.CapitalAsset, error) {
	return findAsset(l.db.WithContext(ctx), assetID)
}

// AddAsset assigns the next asset id and inserts the asset.
func (l *Ledger) AddAsset(ctx context.Context, asset model.CapitalAsset) (model.CapitalAsset, error) {
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&AssetModel{}).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("listing asset ids: %w", err)
		}
		asset.ID = id.Next(id.PrefixAsset, ids)
		if err := asset.Validate(); err != nil {
			return err
		}
		if err := tx.Create(AssetModelFromEntity(asset)).Error; err != nil {
			return fmt.Errorf("inserting asset: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.CapitalAsset{}, err
	}
	return asset, nil
}

// Dispose marks an asset as sold or scrapped.
func (l *Ledger) Dispose(ctx context.Context, assetID string, on time.Time, amount decimal.Decimal) (model.CapitalAsset, error) {
	var out model.CapitalAsset
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := findAsset(tx, assetID)
		if err != nil {
			return err
		}
		if a.IsDisposed() {
			return fmt.Errorf("asset %s already disposed on %s", a.ID, a.DisposedOn.Format(model.DateFormat))
		}
		if on.Before(a.AcquiredOn) {
			return fmt.Errorf("%w: asset %s cannot be disposed before it was acquired", model.ErrInvalidFiscalYear, a.ID)
		}
		if amount.IsNegative() {
			return fmt.Errorf("%w: disposal proceeds %s must not be negative", model.ErrInvalidAmount, amount)
		}
		on = civil(on)
		err = tx.Model(&AssetModel{}).Where("id = ?", assetID).
			Updates(map[string]any{"disposed_on": on, "disposal_amount": amount}).Error
		if err != nil {
			return fmt.Errorf("updating asset: %w", err)
		}
		a.DisposedOn = on
		a.DisposalAmount = amount
		out = a
		return nil
	})
	return out, err
}

// Entries returns every entry in insertion order.
func (l *Ledger) Entries(ctx context.Context) ([]model.DepreciationEntry, error) {
	var rows []EntryModel
	if err := l.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing depreciation entries: %w", err)
	}
	entries := make([]model.DepreciationEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToEntity()
	}
	return entries, nil
}

// HasEntry reports whether the asset already has an entry for fiscalYear.
func (l *Ledger) HasEntry(ctx context.Context, assetID string, fiscalYear int) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&EntryModel{}).
		Where("asset_id = ? AND fiscal_year = ?", assetID, fiscalYear).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("checking depreciation entry: %w", err)
	}
	return n > 0, nil
}

// Record inserts entry and advances the asset's accumulated depreciation in
// one transaction.
func (l *Ledger) Record(ctx context.Context, entry model.DepreciationEntry) (model.CapitalAsset, error) {
	var out model.CapitalAsset
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := findAsset(tx, entry.AssetID)
		if err != nil {
			return err
		}
		updated, err := a.Apply(entry)
		if err != nil {
			return err
		}
		if err := tx.Create(EntryModelFromEntity(entry)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", model.ErrDuplicateDepreciationEntry, entry.Key())
			}
			return fmt.Errorf("inserting depreciation entry: %w", err)
		}
		err = tx.Model(&AssetModel{}).Where("id = ?", a.ID).
			Update("accumulated_depreciation", updated.AccumulatedDepreciation).Error
		if err != nil {
			return fmt.Errorf("updating asset: %w", err)
		}
		out = updated
		return nil
	})
	return out, err
}

func findAsset(db *gorm.DB, assetID string) (model.CapitalAsset, error) {
	var row AssetModel
	err := db.Where("id = ?", assetID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CapitalAsset{}, fmt.Errorf("%w: %s", model.ErrAssetNotFound, assetID)
	}
	if err != nil {
		return model.CapitalAsset{}, fmt.Errorf("loading asset %s: %w", assetID, err)
	}
	return row.ToEntity()
}
