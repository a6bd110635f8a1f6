package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Engine error taxonomy. Callers wrap these with context and test with errors.Is.
var (
	ErrClassNotFound              = errors.New("depreciation class not found")
	ErrInvalidAmount              = errors.New("invalid amount")
	ErrInvalidFiscalYear          = errors.New("invalid fiscal year")
	ErrDuplicateDepreciationEntry = errors.New("duplicate depreciation entry")
	ErrInvalidWindow              = errors.New("invalid date window")
	ErrAssetNotFound              = errors.New("asset not found")
)

// EntityKind names the kind of record an EntityError refers to.
type EntityKind string

const (
	EntityAsset             EntityKind = "asset"
	EntityDepreciationEntry EntityKind = "depreciation_entry"
	EntitySale              EntityKind = "sale"
	EntityPurchase          EntityKind = "purchase"
	EntityDividend          EntityKind = "dividend"
	EntityRemittance        EntityKind = "remittance"
)

// EntityError ties an error to the single record that caused it, so a
// period computation can skip that record and keep going.
type EntityError struct {
	Kind EntityKind
	ID   string
	Err  error
}

func (e EntityError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.ID, e.Err)
}

func (e EntityError) Unwrap() error {
	return e.Err
}

// MarshalJSON flattens the wrapped error to its message.
func (e EntityError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Kind  EntityKind `json:"kind"`
		ID    string     `json:"id"`
		Error string     `json:"error"`
	}{e.Kind, e.ID, msg})
}
