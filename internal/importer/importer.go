// Package importer turns bank statement exports into sales and purchases.
package importer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownFormat   = errors.New("unknown statement format")
	ErrAlreadyImported = errors.New("statement already imported")
)

// Kind is what a statement line means for the books.
type Kind string

const (
	KindDeposit    Kind = "deposit"    // money received, becomes a sale
	KindWithdrawal Kind = "withdrawal" // money spent, becomes a purchase
	KindTransfer   Kind = "transfer"   // moves between own accounts, ignored
)

// Line is one classified bank statement row. Amount is the absolute value.
type Line struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Kind        Kind
	Reference   string
}

// Parser converts a bank statement export into classified Lines.
type Parser interface {
	Parse(r io.Reader) ([]Line, error)
	Format() string
}

// Registry maps format names to parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{parsers: make(map[string]Parser, len(parsers))}
	for _, p := range parsers {
		r.parsers[strings.ToLower(p.Format())] = p
	}
	return r
}

// DefaultRegistry knows every built-in statement format.
func DefaultRegistry() *Registry {
	return NewRegistry(&ChaseParser{})
}

// Lookup returns the parser for format, case-insensitively.
func (r *Registry) Lookup(format string) (Parser, error) {
	p, ok := r.parsers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownFormat, format, strings.Join(r.Formats(), ", "))
	}
	return p, nil
}

// Formats lists the registered format names in order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dir is the project subdirectory statements are dropped into.
const Dir = "import"

// ProcessedDir holds statements whose records have been written.
const ProcessedDir = "processed"

// Statement is a statement file waiting in Dir.
type Statement struct {
	Name string
	Path string
}

// Pending lists the statement files in <root>/import/ by name. A file
// whose name is already in import/processed/ fails with ErrAlreadyImported
// so the same export is never booked twice.
func Pending(root string) ([]Statement, error) {
	dir := filepath.Join(root, Dir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var out []Statement
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, ProcessedDir, e.Name())); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyImported, e.Name())
		}
		out = append(out, Statement{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	return out, nil
}

// Archive moves an imported statement into import/processed/.
func Archive(root string, s Statement) error {
	dst := filepath.Join(root, Dir, ProcessedDir, s.Name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrAlreadyImported, s.Name)
	}
	if err := os.Rename(s.Path, dst); err != nil {
		return fmt.Errorf("archiving %s: %w", s.Name, err)
	}
	return nil
}
