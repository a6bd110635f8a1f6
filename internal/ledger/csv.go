package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

// AssetHeader is the CSV header for assets.csv. Only acquisition and disposal
// facts are stored; book values are rebuilt from depreciation.csv.
const AssetHeader = "asset_id,description,class_id,acquired_on,pre_tax,tax_paid,funded_by,disposed_on,disposal_amount"

// EntryHeader is the CSV header for depreciation.csv.
const EntryHeader = "asset_id,fiscal_year,amount,half_year,entry_date"

const (
	assetFields    = 9
	assetColID     = 0
	assetColDesc   = 1
	assetColClass  = 2
	assetColAcq    = 3
	assetColPreTax = 4
	assetColTax    = 5
	assetColFund   = 6
	assetColDisp   = 7
	assetColDispAm = 8

	entryFields   = 5
	entryColAsset = 0
	entryColYear  = 1
	entryColAmt   = 2
	entryColHalf  = 3
	entryColDate  = 4
)

// ReadAssets reads all assets from an assets.csv reader. The returned assets
// carry no depreciation; callers replay entries onto them.
func ReadAssets(r io.Reader) ([]model.CapitalAsset, error) {
	records, err := readAll(r, assetFields)
	if err != nil {
		return nil, err
	}
	var assets []model.CapitalAsset
	for i, rec := range records {
		a, err := UnmarshalAsset(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		assets = append(assets, a)
	}
	return assets, nil
}

// WriteAssets writes assets to an assets.csv writer (including header).
func WriteAssets(w io.Writer, assets []model.CapitalAsset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(AssetHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range assets {
		if err := cw.Write(MarshalAsset(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadEntries reads all entries from a depreciation.csv reader.
func ReadEntries(r io.Reader) ([]model.DepreciationEntry, error) {
	records, err := readAll(r, entryFields)
	if err != nil {
		return nil, err
	}
	var entries []model.DepreciationEntry
	for i, rec := range records {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeRow(w io.Writer, row []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAsset converts an asset's stored facts to a CSV row.
func MarshalAsset(a model.CapitalAsset) []string {
	row := make([]string, assetFields)
	row[assetColID] = a.ID
	row[assetColDesc] = a.Description
	row[assetColClass] = a.ClassID
	row[assetColAcq] = a.AcquiredOn.Format(model.DateFormat)
	row[assetColPreTax] = a.PreTaxAmount.StringFixed(2)
	row[assetColTax] = a.TaxPaid.StringFixed(2)
	row[assetColFund] = string(a.FundedBy)
	if a.IsDisposed() {
		row[assetColDisp] = a.DisposedOn.Format(model.DateFormat)
		row[assetColDispAm] = a.DisposalAmount.StringFixed(2)
	}
	return row
}

// UnmarshalAsset converts a CSV row to an asset with an untouched ledger.
func UnmarshalAsset(record []string) (model.CapitalAsset, error) {
	if len(record) != assetFields {
		return model.CapitalAsset{}, fmt.Errorf("expected %d fields, got %d", assetFields, len(record))
	}
	acquired, err := time.Parse(model.DateFormat, record[assetColAcq])
	if err != nil {
		return model.CapitalAsset{}, fmt.Errorf("parsing acquired_on %q: %w", record[assetColAcq], err)
	}
	preTax, err := decimal.NewFromString(record[assetColPreTax])
	if err != nil {
		return model.CapitalAsset{}, fmt.Errorf("parsing pre_tax %q: %w", record[assetColPreTax], err)
	}
	taxPaid, err := decimal.NewFromString(record[assetColTax])
	if err != nil {
		return model.CapitalAsset{}, fmt.Errorf("parsing tax_paid %q: %w", record[assetColTax], err)
	}
	a, err := model.NewCapitalAsset(record[assetColDesc], record[assetColClass], acquired,
		preTax, taxPaid, model.FundingSource(record[assetColFund]))
	if err != nil {
		return model.CapitalAsset{}, err
	}
	a.ID = record[assetColID]

	if record[assetColDisp] != "" {
		a.DisposedOn, err = time.Parse(model.DateFormat, record[assetColDisp])
		if err != nil {
			return model.CapitalAsset{}, fmt.Errorf("parsing disposed_on %q: %w", record[assetColDisp], err)
		}
		a.DisposalAmount, err = decimal.NewFromString(record[assetColDispAm])
		if err != nil {
			return model.CapitalAsset{}, fmt.Errorf("parsing disposal_amount %q: %w", record[assetColDispAm], err)
		}
	}
	return a, nil
}

// MarshalEntry converts a DepreciationEntry to a CSV row.
func MarshalEntry(e model.DepreciationEntry) []string {
	row := make([]string, entryFields)
	row[entryColAsset] = e.AssetID
	row[entryColYear] = strconv.Itoa(e.FiscalYear)
	row[entryColAmt] = e.Amount.StringFixed(2)
	row[entryColHalf] = strconv.FormatBool(e.HalfYear)
	row[entryColDate] = e.EntryDate.Format(model.DateFormat)
	return row
}

// UnmarshalEntry converts a CSV row to a DepreciationEntry.
func UnmarshalEntry(record []string) (model.DepreciationEntry, error) {
	if len(record) != entryFields {
		return model.DepreciationEntry{}, fmt.Errorf("expected %d fields, got %d", entryFields, len(record))
	}
	year, err := strconv.Atoi(record[entryColYear])
	if err != nil {
		return model.DepreciationEntry{}, fmt.Errorf("parsing fiscal_year %q: %w", record[entryColYear], err)
	}
	amount, err := decimal.NewFromString(record[entryColAmt])
	if err != nil {
		return model.DepreciationEntry{}, fmt.Errorf("parsing amount %q: %w", record[entryColAmt], err)
	}
	halfYear, err := strconv.ParseBool(record[entryColHalf])
	if err != nil {
		return model.DepreciationEntry{}, fmt.Errorf("parsing half_year %q: %w", record[entryColHalf], err)
	}
	date, err := time.Parse(model.DateFormat, record[entryColDate])
	if err != nil {
		return model.DepreciationEntry{}, fmt.Errorf("parsing entry_date %q: %w", record[entryColDate], err)
	}
	return model.DepreciationEntry{
		AssetID:    record[entryColAsset],
		FiscalYear: year,
		Amount:     amount,
		HalfYear:   halfYear,
		EntryDate:  date,
	}, nil
}

// readAll returns the data rows of a headed CSV.
func readAll(r io.Reader, numFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}
