package records

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

// CSV headers, one per records file.
const (
	SaleHeader       = "sale_id,date,client,description,client_exempt,status,pre_tax,tax,total"
	PurchaseHeader   = "purchase_id,date,vendor,description,vendor_exempt,funded_by,pre_tax,tax,total"
	DividendHeader   = "dividend_id,amount,declared_on,paid_on,status"
	RemittanceHeader = "remittance_id,date,amount,reference"
)

const (
	saleFields   = 9
	saleColID    = 0
	saleColDate  = 1
	saleColCli   = 2
	saleColDesc  = 3
	saleColExmpt = 4
	saleColStat  = 5
	saleColPre   = 6
	saleColTax   = 7
	saleColTotal = 8

	purchFields   = 9
	purchColID    = 0
	purchColDate  = 1
	purchColVend  = 2
	purchColDesc  = 3
	purchColExmpt = 4
	purchColFund  = 5
	purchColPre   = 6
	purchColTax   = 7
	purchColTotal = 8

	divFields   = 5
	divColID    = 0
	divColAmt   = 1
	divColDecl  = 2
	divColPaid  = 3
	divColState = 4

	remitFields  = 4
	remitColID   = 0
	remitColDate = 1
	remitColAmt  = 2
	remitColRef  = 3
)

// readRows reads a headed CSV and unmarshals every data row.
func readRows[T any](r io.Reader, numFields int, unmarshal func([]string) (T, error)) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Skip header row.
	var out []T
	for i, row := range rows[1:] {
		v, err := unmarshal(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// writeRows writes header then one row per value. With an empty header only
// the rows are written, for appending to an existing file.
func writeRows[T any](w io.Writer, header string, vs []T, marshal func(T) []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if header != "" {
		if err := cw.Write(strings.Split(header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, v := range vs {
		if err := cw.Write(marshal(v)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSales reads all rows from a sales.csv reader.
func ReadSales(r io.Reader) ([]model.Sale, error) {
	return readRows(r, saleFields, UnmarshalSale)
}

// WriteSales writes sales to a sales.csv writer (including header).
func WriteSales(w io.Writer, sales []model.Sale) error {
	return writeRows(w, SaleHeader, sales, MarshalSale)
}

// ReadPurchases reads all rows from a purchases.csv reader.
func ReadPurchases(r io.Reader) ([]model.Purchase, error) {
	return readRows(r, purchFields, UnmarshalPurchase)
}

// WritePurchases writes purchases to a purchases.csv writer (including header).
func WritePurchases(w io.Writer, purchases []model.Purchase) error {
	return writeRows(w, PurchaseHeader, purchases, MarshalPurchase)
}

// ReadDividends reads all rows from a dividends.csv reader.
func ReadDividends(r io.Reader) ([]model.Dividend, error) {
	return readRows(r, divFields, UnmarshalDividend)
}

// WriteDividends writes dividends to a dividends.csv writer (including header).
func WriteDividends(w io.Writer, dividends []model.Dividend) error {
	return writeRows(w, DividendHeader, dividends, MarshalDividend)
}

// ReadRemittances reads all rows from a remittances.csv reader.
func ReadRemittances(r io.Reader) ([]model.TaxRemittance, error) {
	return readRows(r, remitFields, UnmarshalRemittance)
}

// WriteRemittances writes remittances to a remittances.csv writer (including header).
func WriteRemittances(w io.Writer, rs []model.TaxRemittance) error {
	return writeRows(w, RemittanceHeader, rs, MarshalRemittance)
}

// MarshalSale converts a Sale to a CSV row.
func MarshalSale(s model.Sale) []string {
	row := make([]string, saleFields)
	row[saleColID] = s.ID
	row[saleColDate] = s.Date.Format(model.DateFormat)
	row[saleColCli] = s.Client
	row[saleColDesc] = s.Description
	row[saleColExmpt] = strconv.FormatBool(s.ClientExempt)
	row[saleColStat] = string(s.Status)
	row[saleColPre] = s.PreTaxAmount.StringFixed(2)
	row[saleColTax] = s.TaxAmount.StringFixed(2)
	row[saleColTotal] = s.Total.StringFixed(2)
	return row
}

// UnmarshalSale converts a CSV row to a Sale.
func UnmarshalSale(record []string) (model.Sale, error) {
	if len(record) != saleFields {
		return model.Sale{}, fmt.Errorf("expected %d fields, got %d", saleFields, len(record))
	}
	date, err := parseDate("date", record[saleColDate])
	if err != nil {
		return model.Sale{}, err
	}
	exempt, err := parseBool("client_exempt", record[saleColExmpt])
	if err != nil {
		return model.Sale{}, err
	}
	status := model.SaleStatus(record[saleColStat])
	if !status.IsValid() {
		return model.Sale{}, fmt.Errorf("unknown sale status %q", record[saleColStat])
	}
	amounts, err := parseAmounts(record[saleColPre], record[saleColTax], record[saleColTotal])
	if err != nil {
		return model.Sale{}, err
	}
	return model.Sale{
		ID:           record[saleColID],
		Date:         date,
		Client:       record[saleColCli],
		Description:  record[saleColDesc],
		ClientExempt: exempt,
		Status:       status,
		TaxAmounts:   amounts,
	}, nil
}

// MarshalPurchase converts a Purchase to a CSV row.
func MarshalPurchase(p model.Purchase) []string {
	row := make([]string, purchFields)
	row[purchColID] = p.ID
	row[purchColDate] = p.Date.Format(model.DateFormat)
	row[purchColVend] = p.Vendor
	row[purchColDesc] = p.Description
	row[purchColExmpt] = strconv.FormatBool(p.VendorExempt)
	row[purchColFund] = string(p.FundedBy)
	row[purchColPre] = p.PreTaxAmount.StringFixed(2)
	row[purchColTax] = p.TaxAmount.StringFixed(2)
	row[purchColTotal] = p.Total.StringFixed(2)
	return row
}

// UnmarshalPurchase converts a CSV row to a Purchase.
func UnmarshalPurchase(record []string) (model.Purchase, error) {
	if len(record) != purchFields {
		return model.Purchase{}, fmt.Errorf("expected %d fields, got %d", purchFields, len(record))
	}
	date, err := parseDate("date", record[purchColDate])
	if err != nil {
		return model.Purchase{}, err
	}
	exempt, err := parseBool("vendor_exempt", record[purchColExmpt])
	if err != nil {
		return model.Purchase{}, err
	}
	funded := model.FundingSource(record[purchColFund])
	if !funded.IsValid() {
		return model.Purchase{}, fmt.Errorf("unknown funding source %q", record[purchColFund])
	}
	amounts, err := parseAmounts(record[purchColPre], record[purchColTax], record[purchColTotal])
	if err != nil {
		return model.Purchase{}, err
	}
	return model.Purchase{
		ID:           record[purchColID],
		Date:         date,
		Vendor:       record[purchColVend],
		Description:  record[purchColDesc],
		VendorExempt: exempt,
		FundedBy:     funded,
		TaxAmounts:   amounts,
	}, nil
}

// MarshalDividend converts a Dividend to a CSV row. paid_on is empty until paid.
func MarshalDividend(d model.Dividend) []string {
	row := make([]string, divFields)
	row[divColID] = d.ID
	row[divColAmt] = d.Amount.StringFixed(2)
	row[divColDecl] = d.DeclaredOn.Format(model.DateFormat)
	if !d.PaidOn.IsZero() {
		row[divColPaid] = d.PaidOn.Format(model.DateFormat)
	}
	row[divColState] = string(d.Status)
	return row
}

// UnmarshalDividend converts a CSV row to a Dividend.
func UnmarshalDividend(record []string) (model.Dividend, error) {
	if len(record) != divFields {
		return model.Dividend{}, fmt.Errorf("expected %d fields, got %d", divFields, len(record))
	}
	amount, err := parseDecimal("amount", record[divColAmt])
	if err != nil {
		return model.Dividend{}, err
	}
	declared, err := parseDate("declared_on", record[divColDecl])
	if err != nil {
		return model.Dividend{}, err
	}
	var paid time.Time
	if record[divColPaid] != "" {
		paid, err = parseDate("paid_on", record[divColPaid])
		if err != nil {
			return model.Dividend{}, err
		}
	}
	status := model.DividendStatus(record[divColState])
	if !status.IsValid() {
		return model.Dividend{}, fmt.Errorf("unknown dividend status %q", record[divColState])
	}
	return model.Dividend{
		ID:         record[divColID],
		Amount:     amount,
		DeclaredOn: declared,
		PaidOn:     paid,
		Status:     status,
	}, nil
}

// MarshalRemittance converts a TaxRemittance to a CSV row.
func MarshalRemittance(r model.TaxRemittance) []string {
	row := make([]string, remitFields)
	row[remitColID] = r.ID
	row[remitColDate] = r.Date.Format(model.DateFormat)
	row[remitColAmt] = r.Amount.StringFixed(2)
	row[remitColRef] = r.Reference
	return row
}

// UnmarshalRemittance converts a CSV row to a TaxRemittance.
func UnmarshalRemittance(record []string) (model.TaxRemittance, error) {
	if len(record) != remitFields {
		return model.TaxRemittance{}, fmt.Errorf("expected %d fields, got %d", remitFields, len(record))
	}
	date, err := parseDate("date", record[remitColDate])
	if err != nil {
		return model.TaxRemittance{}, err
	}
	amount, err := parseDecimal("amount", record[remitColAmt])
	if err != nil {
		return model.TaxRemittance{}, err
	}
	return model.TaxRemittance{
		ID:        record[remitColID],
		Date:      date,
		Amount:    amount,
		Reference: record[remitColRef],
	}, nil
}

func parseAmounts(pre, tax, total string) (model.TaxAmounts, error) {
	var a model.TaxAmounts
	var err error
	if a.PreTaxAmount, err = parseDecimal("pre_tax", pre); err != nil {
		return a, err
	}
	if a.TaxAmount, err = parseDecimal("tax", tax); err != nil {
		return a, err
	}
	if a.Total, err = parseDecimal("total", total); err != nil {
		return a, err
	}
	return a, nil
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}

func parseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return t, nil
}

func parseBool(field, s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return b, nil
}
