package classes

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/fiscal/internal/model"
)

const (
	numFields = 3
	colID     = 0
	colRate   = 1
	colDesc   = 2
)

// ReadClasses reads cca-classes.csv.
func ReadClasses(r io.Reader) ([]model.DepreciationClass, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading classes CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var classes []model.DepreciationClass
	for i, rec := range records[1:] {
		c, err := UnmarshalClass(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		classes = append(classes, c)
	}
	return classes, nil
}

// WriteClasses writes cca-classes.csv.
func WriteClasses(w io.Writer, classes []model.DepreciationClass) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"class_id", "rate", "description"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range classes {
		if err := cw.Write(MarshalClass(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalClass converts a DepreciationClass to a CSV row.
func MarshalClass(c model.DepreciationClass) []string {
	row := make([]string, numFields)
	row[colID] = c.ID
	row[colRate] = c.Rate.String()
	row[colDesc] = c.Description
	return row
}

// UnmarshalClass converts a CSV row to a DepreciationClass.
func UnmarshalClass(record []string) (model.DepreciationClass, error) {
	if len(record) != numFields {
		return model.DepreciationClass{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	rate, err := decimal.NewFromString(record[colRate])
	if err != nil {
		return model.DepreciationClass{}, fmt.Errorf("parsing rate %q: %w", record[colRate], err)
	}

	return model.DepreciationClass{
		ID:          record[colID],
		Rate:        rate,
		Description: record[colDesc],
	}, nil
}
