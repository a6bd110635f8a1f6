package classes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/fiscal/internal/model"
)

func TestDefault(t *testing.T) {
	r := Default()
	assert.Len(t, r.All(), len(DefaultClasses()))

	rate, err := r.Rate("10")
	require.NoError(t, err)
	assert.Equal(t, "0.3", rate.String())

	desc, err := r.Description("50")
	require.NoError(t, err)
	assert.Equal(t, "Computer hardware and systems software", desc)

	assert.True(t, r.Exists("10.1"))
	assert.False(t, r.Exists("99"))
}

func TestUnknownClass(t *testing.T) {
	r := Default()

	_, err := r.Rate("99")
	assert.ErrorIs(t, err, model.ErrClassNotFound)

	_, err = r.Description("99")
	assert.ErrorIs(t, err, model.ErrClassNotFound)

	_, err = r.Get("")
	assert.ErrorIs(t, err, model.ErrClassNotFound)
}

func TestNewRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		classes []model.DepreciationClass
	}{
		{"empty id", []model.DepreciationClass{{ID: "", Rate: decimal.RequireFromString("0.1")}}},
		{"duplicate", []model.DepreciationClass{
			{ID: "8", Rate: decimal.RequireFromString("0.2")},
			{ID: "8", Rate: decimal.RequireFromString("0.3")},
		}},
		{"zero rate", []model.DepreciationClass{{ID: "8", Rate: decimal.Zero}}},
		{"rate above one", []model.DepreciationClass{{ID: "8", Rate: decimal.RequireFromString("1.01")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.classes)
			assert.Error(t, err)
		})
	}
}

func TestSubstituteTable(t *testing.T) {
	// A test table replaces the defaults without touching any shared state.
	r, err := NewRegistry([]model.DepreciationClass{
		{ID: "X", Rate: decimal.RequireFromString("0.5"), Description: "Test class"},
	})
	require.NoError(t, err)

	assert.True(t, r.Exists("X"))
	assert.False(t, r.Exists("10"))
	assert.True(t, Default().Exists("10"))
}

func TestAllIsCopy(t *testing.T) {
	r := Default()
	all := r.All()
	all[0].Rate = decimal.NewFromInt(1)

	rate, err := r.Rate(all[0].ID)
	require.NoError(t, err)
	assert.False(t, rate.Equal(decimal.NewFromInt(1)), "mutating All() must not change the registry")
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Default().Save(dir))

	_, err := os.Stat(filepath.Join(dir, "classes", "cca-classes.csv"))
	require.NoError(t, err)

	got, err := Load(dir)
	require.NoError(t, err)

	want := DefaultClasses()
	require.Len(t, got.All(), len(want))
	for _, c := range want {
		g, err := got.Get(c.ID)
		require.NoError(t, err, "class %s should exist", c.ID)
		assert.True(t, c.Rate.Equal(g.Rate), "class %s rate", c.ID)
		assert.Equal(t, c.Description, g.Description)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
