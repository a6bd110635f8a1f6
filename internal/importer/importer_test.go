package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseStatement = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,01/03/2025,GITHUB *PRO   SUBSCRIPTION,-4.00,ACH_DEBIT,9996.00,
DEBIT,01/06/2025,STAPLES #1123,-113.00,DEBIT_CARD,9883.00,
DEBIT,01/09/2025,ONLINE TRANSFER TO SAV,-500.00,ACCT_XFER,9383.00,
CREDIT,01/15/2025,ACME CONSULTING INVOICE 1042,"3,500.00",ACH_CREDIT,12883.00,
CHECK,01/20/2025,CHECK 1043,-90.40,CHECK_PAID,12792.60,1043
DEBIT,01/22/2025,INTERAC FEE,0.00,FEE_TRANSACTION,12792.60,
`

func parseStatement(t *testing.T) []Line {
	t.Helper()
	p := &ChaseParser{}
	lines, err := p.Parse(strings.NewReader(chaseStatement))
	require.NoError(t, err)
	return lines
}

func TestChaseParser_Parse(t *testing.T) {
	lines := parseStatement(t)
	require.Len(t, lines, 5, "zero-amount rows are dropped")

	assert.Equal(t, "GITHUB *PRO SUBSCRIPTION", lines[0].Description, "whitespace collapsed")
	assert.Equal(t, "4.00", lines[0].Amount.StringFixed(2), "amounts are absolute")
	assert.Equal(t, KindWithdrawal, lines[0].Kind)
	assert.Equal(t, 2025, lines[0].Date.Year())
	assert.Equal(t, 1, int(lines[0].Date.Month()))
	assert.Equal(t, 3, lines[0].Date.Day())

	assert.Equal(t, KindTransfer, lines[2].Kind)

	assert.Equal(t, "ACME CONSULTING INVOICE 1042", lines[3].Description)
	assert.Equal(t, KindDeposit, lines[3].Kind)
	assert.Equal(t, "3500.00", lines[3].Amount.StringFixed(2))

	assert.Equal(t, KindWithdrawal, lines[4].Kind)
}

func TestChaseParser_Reference(t *testing.T) {
	lines := parseStatement(t)
	assert.Equal(t, "chase_20250103_GITHUBPROS", lines[0].Reference)
	assert.Equal(t, "chase_20250120_CHK1043", lines[4].Reference, "cheques are referenced by number")
}

func TestChaseParser_Empty(t *testing.T) {
	p := &ChaseParser{}
	lines, err := p.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, lines)

	lines, err = p.Parse(strings.NewReader("Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"))
	require.NoError(t, err)
	assert.Nil(t, lines)
}

func TestChaseParser_Errors(t *testing.T) {
	const header = "Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #\n"
	cases := []struct {
		name, input, want string
	}{
		{"bad date", header + "DEBIT,NOTADATE,desc,-4.00,ACH_DEBIT,100.00,\n", "parsing date"},
		{"bad amount", header + "DEBIT,01/03/2025,desc,NOTANUMBER,ACH_DEBIT,100.00,\n", "parsing amount"},
		{"credit out", header + "CREDIT,01/03/2025,desc,-4.00,ACH_CREDIT,100.00,\n", "negative amount"},
		{"debit in", header + "DEBIT,01/03/2025,desc,4.00,ACH_DEBIT,100.00,\n", "positive amount"},
		{"unknown details", header + "HOLD,01/03/2025,desc,4.00,ACH_DEBIT,100.00,\n", "unknown details"},
		{"wrong export", "Date,Amount,Memo,A,B,C,D\n", "not a chase export"},
		{"short row", header + "DEBIT,01/03/2025,desc\n", "row 2"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := (&ChaseParser{}).Parse(strings.NewReader(c.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.want)
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()
	p, err := r.Lookup("CHASE")
	require.NoError(t, err)
	assert.Equal(t, "chase", p.Format())
	assert.Equal(t, []string{"chase"}, r.Formats())

	_, err = r.Lookup("ofx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
	assert.Contains(t, err.Error(), "known: chase")
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

func TestPending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, Dir, "march.csv"))
	writeFile(t, filepath.Join(dir, Dir, "feb.CSV"))
	writeFile(t, filepath.Join(dir, Dir, "notes.txt"))
	writeFile(t, filepath.Join(dir, Dir, ProcessedDir, "jan.csv"))

	got, err := Pending(dir)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "feb.CSV", got[0].Name)
	assert.Equal(t, "march.csv", got[1].Name)
	assert.Equal(t, filepath.Join(dir, Dir, "march.csv"), got[1].Path)
}

func TestPending_NoImportDir(t *testing.T) {
	got, err := Pending(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPending_RejectsReimport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, Dir, "jan.csv"))
	writeFile(t, filepath.Join(dir, Dir, ProcessedDir, "jan.csv"))

	_, err := Pending(dir)
	assert.ErrorIs(t, err, ErrAlreadyImported)
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, Dir, "jan.csv"))
	pending, err := Pending(dir)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, Archive(dir, pending[0]))

	_, err = os.Stat(pending[0].Path)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, Dir, ProcessedDir, "jan.csv"))
	assert.NoError(t, err)

	// A second copy of the same file is refused.
	writeFile(t, pending[0].Path)
	assert.ErrorIs(t, Archive(dir, pending[0]), ErrAlreadyImported)
}
