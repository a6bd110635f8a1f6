package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/id"
	"github.com/cleared-dev/fiscal/internal/model"
)

// Dir is the ledger directory relative to the project root.
const Dir = "ledger"

// File names under Dir.
const (
	AssetsFile       = "assets.csv"
	DepreciationFile = "depreciation.csv"
)

// CSV is a Ledger over ledger/assets.csv and ledger/depreciation.csv.
// Recording an entry is a single append, so a book value is never stored
// separately from the entries that produce it. It assumes a single writer.
type CSV struct {
	repoRoot string
}

// NewCSV creates a CSV ledger rooted at repoRoot.
func NewCSV(repoRoot string) *CSV {
	return &CSV{repoRoot: repoRoot}
}

var _ Ledger = (*CSV)(nil)

// Assets returns every asset with its recorded entries applied. An entry
// that cannot be applied is rejected and its asset stays at the last good
// state.
func (l *CSV) Assets(ctx context.Context) ([]model.CapitalAsset, []model.EntityError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	assets, err := l.readAssets()
	if err != nil {
		return nil, nil, err
	}
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, nil, err
	}
	assets, rejected := replay(assets, entries)
	return assets, rejected, nil
}

// Asset returns one asset by id.
func (l *CSV) Asset(ctx context.Context, assetID string) (model.CapitalAsset, error) {
	assets, _, err := l.Assets(ctx)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	for _, a := range assets {
		if a.ID == assetID {
			return a, nil
		}
	}
	return model.CapitalAsset{}, fmt.Errorf("%w: %s", model.ErrAssetNotFound, assetID)
}

// AddAsset assigns the next asset id and stores the asset. Only assets with
// an untouched ledger can be added.
func (l *CSV) AddAsset(ctx context.Context, asset model.CapitalAsset) (model.CapitalAsset, error) {
	if err := ctx.Err(); err != nil {
		return model.CapitalAsset{}, err
	}
	if !asset.AccumulatedDepreciation.IsZero() {
		return model.CapitalAsset{}, fmt.Errorf("%w: new asset already has accumulated depreciation %s",
			model.ErrInvalidAmount, asset.AccumulatedDepreciation)
	}
	existing, err := l.readAssets()
	if err != nil {
		return model.CapitalAsset{}, err
	}
	ids := make([]string, len(existing))
	for i, a := range existing {
		ids[i] = a.ID
	}
	asset.ID = id.Next(id.PrefixAsset, ids)
	if err := asset.Validate(); err != nil {
		return model.CapitalAsset{}, err
	}

	if err := appendRow(l.path(AssetsFile), AssetHeader, MarshalAsset(asset)); err != nil {
		return model.CapitalAsset{}, err
	}
	return asset, nil
}

// Dispose marks an asset as sold or scrapped.
func (l *CSV) Dispose(ctx context.Context, assetID string, on time.Time, amount decimal.Decimal) (model.CapitalAsset, error) {
	if err := ctx.Err(); err != nil {
		return model.CapitalAsset{}, err
	}
	assets, err := l.readAssets()
	if err != nil {
		return model.CapitalAsset{}, err
	}
	idx := -1
	for i, a := range assets {
		if a.ID == assetID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.CapitalAsset{}, fmt.Errorf("%w: %s", model.ErrAssetNotFound, assetID)
	}
	if err := checkDisposal(assets[idx], on, amount); err != nil {
		return model.CapitalAsset{}, err
	}
	assets[idx].DisposedOn = on
	assets[idx].DisposalAmount = amount

	var b strings.Builder
	if err := WriteAssets(&b, assets); err != nil {
		return model.CapitalAsset{}, err
	}
	if err := replaceFile(l.path(AssetsFile), []byte(b.String())); err != nil {
		return model.CapitalAsset{}, err
	}
	return l.Asset(ctx, assetID)
}

// Entries returns every recorded entry in file order.
func (l *CSV) Entries(ctx context.Context) ([]model.DepreciationEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := l.path(DepreciationFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}

// HasEntry reports whether the asset already has an entry for fiscalYear.
func (l *CSV) HasEntry(ctx context.Context, assetID string, fiscalYear int) (bool, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return false, err
	}
	key := id.FormatEntryKey(assetID, fiscalYear)
	for _, e := range entries {
		if e.Key() == key {
			return true, nil
		}
	}
	return false, nil
}

// Record appends entry and returns the asset with it applied.
func (l *CSV) Record(ctx context.Context, entry model.DepreciationEntry) (model.CapitalAsset, error) {
	asset, err := l.Asset(ctx, entry.AssetID)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	exists, err := l.HasEntry(ctx, entry.AssetID, entry.FiscalYear)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	if exists {
		return model.CapitalAsset{}, fmt.Errorf("%w: %s", model.ErrDuplicateDepreciationEntry, entry.Key())
	}
	updated, err := asset.Apply(entry)
	if err != nil {
		return model.CapitalAsset{}, err
	}
	if err := appendRow(l.path(DepreciationFile), EntryHeader, MarshalEntry(entry)); err != nil {
		return model.CapitalAsset{}, err
	}
	return updated, nil
}

func (l *CSV) readAssets() ([]model.CapitalAsset, error) {
	path := l.path(AssetsFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	assets, err := ReadAssets(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return assets, nil
}

func (l *CSV) path(name string) string {
	return filepath.Join(l.repoRoot, Dir, name)
}

// replay applies entries to their assets in fiscal-year order. Entries for
// unknown assets and repeated keys are left for the summary to report. Once
// an entry fails to apply, it and every later entry of that asset are
// rejected.
func replay(assets []model.CapitalAsset, entries []model.DepreciationEntry) ([]model.CapitalAsset, []model.EntityError) {
	sorted := make([]model.DepreciationEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FiscalYear < sorted[j].FiscalYear })

	index := make(map[string]int, len(assets))
	for i, a := range assets {
		index[a.ID] = i
	}
	seen := make(map[string]bool, len(sorted))
	broken := make(map[string]string)
	var rejected []model.EntityError
	reject := func(e model.DepreciationEntry, err error) {
		rejected = append(rejected, model.EntityError{Kind: model.EntityDepreciationEntry, ID: e.Key(), Err: err})
	}
	for _, e := range sorted {
		i, ok := index[e.AssetID]
		if !ok || seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		if first, ok := broken[e.AssetID]; ok {
			reject(e, fmt.Errorf("%w: follows rejected entry %s", model.ErrInvalidAmount, first))
			continue
		}
		a, err := assets[i].Apply(e)
		if err != nil {
			broken[e.AssetID] = e.Key()
			reject(e, err)
			continue
		}
		assets[i] = a
	}
	return assets, rejected
}

func checkDisposal(a model.CapitalAsset, on time.Time, amount decimal.Decimal) error {
	if a.IsDisposed() {
		return fmt.Errorf("asset %s already disposed on %s", a.ID, a.DisposedOn.Format(model.DateFormat))
	}
	if on.Before(a.AcquiredOn) {
		return fmt.Errorf("%w: asset %s cannot be disposed before it was acquired", model.ErrInvalidFiscalYear, a.ID)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: disposal proceeds %s must not be negative", model.ErrInvalidAmount, amount)
	}
	return nil
}

// appendRow appends one CSV row, creating the file with its header when new.
func appendRow(path, header string, row []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
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

	if isNew {
		if _, err := fmt.Fprintln(f, header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	if err := writeRow(f, row); err != nil {
		return fmt.Errorf("appending to %s: %w", path, err)
	}
	return nil
}

func replaceFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
