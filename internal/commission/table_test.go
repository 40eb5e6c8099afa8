package commission

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createWorkbook(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "rates.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestDefaultTableComplete(t *testing.T) {
	t.Parallel()

	table := DefaultTable()
	for _, area := range []AreaType{AreaSuburb, AreaRural, AreaInnerCity} {
		for _, b := range Brackets() {
			r, ok := table.Lookup(area, b)
			require.True(t, ok, "%s %s", area, b)
			assert.NotEmpty(t, r.Commission)
			assert.NotEmpty(t, r.Marketing)
		}
	}

	r, _ := table.Lookup(AreaSuburb, Bracket1mTo1_5m)
	assert.Equal(t, "1.65-1.85%", r.Commission)
	assert.Equal(t, "$8,000-$9,000", r.Marketing)

	_, ok := table.Lookup(AreaSuburb, BracketUnknown)
	assert.False(t, ok)
}

func TestLoadWorkbook(t *testing.T) {
	path := createWorkbook(t, map[string][][]string{
		"rural": {
			{"Bracket", "Commission", "Marketing"},
			{"$1m-$1.5m", " 2.50-2.70% ", "$6,500-$7,500"},
			{"not a bracket", "x", "y"},
			{"$2m-$2.5m"},
		},
		"Notes": {
			{"$1m-$1.5m", "9%", "$1"},
		},
	})

	table, err := LoadWorkbook(path)
	require.NoError(t, err)

	r, ok := table.Lookup(AreaRural, Bracket1mTo1_5m)
	require.True(t, ok)
	assert.Equal(t, "2.50-2.70%", r.Commission)
	assert.Equal(t, "$6,500-$7,500", r.Marketing)

	// Untouched cells keep their defaults.
	r, _ = table.Lookup(AreaSuburb, Bracket1mTo1_5m)
	assert.Equal(t, "1.65-1.85%", r.Commission)
	r, _ = table.Lookup(AreaRural, Bracket2mTo2_5m)
	assert.Equal(t, "1.75-2.00%", r.Commission)
}

func TestLoadWorkbook_NoRows(t *testing.T) {
	path := createWorkbook(t, map[string][][]string{
		"Sheet1": {{"a", "b", "c"}},
	})

	_, err := LoadWorkbook(path)
	assert.Error(t, err)
}

func TestLoadWorkbook_MissingFile(t *testing.T) {
	_, err := LoadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
