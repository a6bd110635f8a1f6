// Package auditlog keeps an append-only CSV record of every mutating command.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Action names what a logged command did.
type Action string

const (
	ActionInit       Action = "init"
	ActionAddAsset   Action = "add_asset"
	ActionDispose    Action = "dispose_asset"
	ActionDepreciate Action = "depreciate"
	ActionAddSale    Action = "add_sale"
	ActionAddPurch   Action = "add_purchase"
	ActionDeclare    Action = "declare_dividend"
	ActionPay        Action = "pay_dividend"
	ActionRemit      Action = "remit_tax"
	ActionRerate     Action = "rerate"
	ActionImport     Action = "import_statement"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp  time.Time
	RunID      string
	Action     Action
	Details    string
	Ref        string // record id or entry key the action touched
	CommitHash string
}

// Header is the CSV header for fiscal-log.csv.
const Header = "timestamp,run_id,action,details,ref,commit_hash"

const (
	numFields     = 6
	logDir        = "logs"
	logFile       = "logs/fiscal-log.csv"
	colTimestamp  = 0
	colRunID      = 1
	colAction     = 2
	colDetails    = 3
	colRef        = 4
	colCommitHash = 5
)

// NewRunID returns a fresh id shared by every entry of one command run.
func NewRunID() string {
	return uuid.NewString()
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colAction] = string(e.Action)
	row[colDetails] = e.Details
	row[colRef] = e.Ref
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if _, err := uuid.Parse(record[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run_id %q: %w", record[colRunID], err)
	}

	return Entry{
		Timestamp:  ts,
		RunID:      record[colRunID],
		Action:     Action(record[colAction]),
		Details:    record[colDetails],
		Ref:        record[colRef],
		CommitHash: record[colCommitHash],
	}, nil
}

// Append writes entries to <repoRoot>/logs/fiscal-log.csv, creating the file and header if needed.
func Append(repoRoot string, entries []Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/fiscal-log.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	path := filepath.Join(repoRoot, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

// Run returns entries belonging to one command run.
func Run(entries []Entry, runID string) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.RunID == runID {
			out = append(out, e)
		}
	}
	return out
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
