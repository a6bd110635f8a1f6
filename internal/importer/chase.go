package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChaseParser reads Chase checking-account CSV exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//
// Details says which way money moved (DEBIT, CREDIT, CHECK, DSLIP) and Type
// is Chase's transaction code.
type ChaseParser struct{}

func (p *ChaseParser) Format() string { return "chase" }

var chaseHeader = []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"}

const (
	chaseDetails = iota
	chaseDate
	chaseDescription
	chaseAmount
	chaseType
	chaseBalance
	chaseCheckNumber
)

// Codes for money moving between the owner's own accounts.
var chaseTransferTypes = map[string]bool{
	"ACCT_XFER": true,
	"LOAN_PMT":  true,
}

// Parse classifies each row. Zero-amount rows are dropped.
func (p *ChaseParser) Parse(r io.Reader) ([]Line, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(chaseHeader)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading chase header: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(header[chaseDate]), chaseHeader[chaseDate]) {
		return nil, fmt.Errorf("not a chase export: column 2 is %q", header[chaseDate])
	}

	var lines []Line
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		l, ok, err := chaseLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if ok {
			lines = append(lines, l)
		}
	}
}

func chaseLine(rec []string) (Line, bool, error) {
	date, err := time.Parse("01/02/2006", rec[chaseDate])
	if err != nil {
		return Line{}, false, fmt.Errorf("parsing date %q: %w", rec[chaseDate], err)
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(rec[chaseAmount], ",", ""))
	if err != nil {
		return Line{}, false, fmt.Errorf("parsing amount %q: %w", rec[chaseAmount], err)
	}
	if amount.IsZero() {
		return Line{}, false, nil
	}

	kind, err := chaseKind(strings.ToUpper(rec[chaseDetails]), strings.ToUpper(rec[chaseType]), amount)
	if err != nil {
		return Line{}, false, err
	}
	desc := strings.Join(strings.Fields(rec[chaseDescription]), " ")
	return Line{
		Date:        date,
		Description: desc,
		Amount:      amount.Abs(),
		Kind:        kind,
		Reference:   chaseRef(date, desc, strings.TrimSpace(rec[chaseCheckNumber])),
	}, true, nil
}

// chaseKind checks the amount's sign against Details before trusting it.
func chaseKind(details, code string, amount decimal.Decimal) (Kind, error) {
	in := amount.IsPositive()
	switch details {
	case "CREDIT", "DSLIP":
		if !in {
			return "", fmt.Errorf("%s row with negative amount %s", details, amount)
		}
	case "DEBIT", "CHECK":
		if in {
			return "", fmt.Errorf("%s row with positive amount %s", details, amount)
		}
	default:
		return "", fmt.Errorf("unknown details %q", details)
	}
	if chaseTransferTypes[code] {
		return KindTransfer, nil
	}
	if in {
		return KindDeposit, nil
	}
	return KindWithdrawal, nil
}

// chaseRef is chase_<date>_CHK<number> for cheques and deposit slips, and
// chase_<date>_<first ten alphanumerics of the description> otherwise.
func chaseRef(date time.Time, desc, checkNumber string) string {
	if checkNumber != "" {
		return fmt.Sprintf("chase_%s_CHK%s", date.Format("20060102"), checkNumber)
	}
	var b strings.Builder
	for _, r := range desc {
		if b.Len() == 10 {
			break
		}
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), b.String())
}
