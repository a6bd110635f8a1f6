package sqlledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// Decimals are stored as text so sqlite's numeric affinity never rounds them.

// AssetModel is the GORM model for a capital asset.
type AssetModel struct {
	ID                      string          `gorm:"primaryKey;size:16"`
	Description             string          `gorm:"not null;default:''"`
	ClassID                 string          `gorm:"size:16;not null"`
	AcquiredOn              time.Time       `gorm:"type:date;not null"`
	PreTaxAmount            decimal.Decimal `gorm:"type:varchar(32);not null"`
	TaxPaid                 decimal.Decimal `gorm:"type:varchar(32);not null"`
	AccumulatedDepreciation decimal.Decimal `gorm:"type:varchar(32);not null"`
	FundedBy                string          `gorm:"size:16;not null"`
	DisposedOn              *time.Time      `gorm:"type:date"`
	DisposalAmount          decimal.Decimal `gorm:"type:varchar(32);not null"`
	CreatedAt               time.Time       `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (AssetModel) TableName() string {
	return "assets"
}

// ToEntity converts the model to a domain asset with its ledger filled in.
func (m *AssetModel) ToEntity() (model.CapitalAsset, error) {
	a, err := model.NewCapitalAsset(m.Description, m.ClassID, m.AcquiredOn,
		m.PreTaxAmount, m.TaxPaid, model.FundingSource(m.FundedBy))
	if err != nil {
		return model.CapitalAsset{}, err
	}
	a.ID = m.ID
	a.AccumulatedDepreciation = m.AccumulatedDepreciation
	a.BookValue = a.TotalCost.Sub(m.AccumulatedDepreciation)
	if m.DisposedOn != nil {
		a.DisposedOn = civil(*m.DisposedOn)
		a.DisposalAmount = m.DisposalAmount
	}
	return a, a.Validate()
}

// AssetModelFromEntity creates a model from a domain asset.
func AssetModelFromEntity(a model.CapitalAsset) *AssetModel {
	m := &AssetModel{
		ID:                      a.ID,
		Description:             a.Description,
		ClassID:                 a.ClassID,
		AcquiredOn:              a.AcquiredOn,
		PreTaxAmount:            a.PreTaxAmount,
		TaxPaid:                 a.TaxPaid,
		AccumulatedDepreciation: a.AccumulatedDepreciation,
		FundedBy:                string(a.FundedBy),
		DisposalAmount:          a.DisposalAmount,
	}
	if a.IsDisposed() {
		on := a.DisposedOn
		m.DisposedOn = &on
	}
	return m
}

// EntryModel is the GORM model for a depreciation entry. The unique index
// enforces one entry per asset and fiscal year.
type EntryModel struct {
	ID         uint            `gorm:"primaryKey"`
	AssetID    string          `gorm:"size:16;not null;uniqueIndex:idx_entry_asset_year"`
	FiscalYear int             `gorm:"not null;uniqueIndex:idx_entry_asset_year"`
	Amount     decimal.Decimal `gorm:"type:varchar(32);not null"`
	HalfYear   bool            `gorm:"not null;default:false"`
	EntryDate  time.Time       `gorm:"type:date;not null"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

// TableName returns the table name for the model
func (EntryModel) TableName() string {
	return "depreciation_entries"
}

// ToEntity converts the model to a domain entry.
func (m *EntryModel) ToEntity() model.DepreciationEntry {
	return model.DepreciationEntry{
		AssetID:    m.AssetID,
		FiscalYear: m.FiscalYear,
		Amount:     m.Amount,
		HalfYear:   m.HalfYear,
		EntryDate:  civil(m.EntryDate),
	}
}

// EntryModelFromEntity creates a model from a domain entry.
func EntryModelFromEntity(e model.DepreciationEntry) *EntryModel {
	return &EntryModel{
		AssetID:    e.AssetID,
		FiscalYear: e.FiscalYear,
		Amount:     e.Amount,
		HalfYear:   e.HalfYear,
		EntryDate:  e.EntryDate,
	}
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
