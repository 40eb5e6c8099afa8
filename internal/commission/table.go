package commission

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// Rates is the commission range and marketing cost for one bracket.
type Rates struct {
	Commission string
	Marketing  string
}

// Table holds standard rates per area type and bracket.
type Table struct {
	rates map[AreaType]map[Bracket]Rates
}

// Lookup returns the rates for an area and bracket. Unknown combinations
// yield empty strings.
func (t *Table) Lookup(area AreaType, b Bracket) (Rates, bool) {
	byBracket, ok := t.rates[area]
	if !ok {
		return Rates{}, false
	}
	r, ok := byBracket[b]
	return r, ok
}

// Set overrides the rates for one cell of the table.
func (t *Table) Set(area AreaType, b Bracket, r Rates) {
	if t.rates == nil {
		t.rates = make(map[AreaType]map[Bracket]Rates)
	}
	if t.rates[area] == nil {
		t.rates[area] = make(map[Bracket]Rates)
	}
	t.rates[area][b] = r
}

func newTable(commission, marketing map[AreaType][]string) *Table {
	t := &Table{}
	for area, rates := range commission {
		for i, b := range Brackets() {
			t.Set(area, b, Rates{Commission: rates[i], Marketing: marketing[area][i]})
		}
	}
	return t
}

// DefaultTable returns the built-in suburb, rural and inner city tables.
func DefaultTable() *Table {
	return newTable(
		map[AreaType][]string{
			AreaSuburb: {
				"1.80-2.00%", "1.80-2.00%", "1.80-2.00%", "1.65-1.85%",
				"1.60-1.80%", "1.50-1.75%", "1.50-1.75%", "1.50-1.75%",
				"1.50-1.75%", "1.45-1.65%", "1.35-1.55%", "1.30-1.50%",
			},
			AreaInnerCity: {
				"1.70-1.90%", "1.70-1.90%", "1.65-1.85%", "1.55-1.75%",
				"1.50-1.70%", "1.45-1.65%", "1.45-1.65%", "1.40-1.60%",
				"1.40-1.60%", "1.35-1.55%", "1.25-1.45%", "1.20-1.40%",
			},
			AreaRural: {
				"2.20-2.50%", "2.20-2.50%", "2.00-2.30%", "1.90-2.20%",
				"1.80-2.10%", "1.75-2.00%", "1.75-2.00%", "1.70-1.95%",
				"1.65-1.90%", "1.60-1.85%", "1.50-1.75%", "1.45-1.70%",
			},
		},
		map[AreaType][]string{
			AreaSuburb: {
				"$7,000-$8,000", "$7,000-$8,000", "$7,000-$8,000", "$8,000-$9,000",
				"$8,000-$9,000", "$9,000-$10,000", "$9,000-$10,000", "$9,000-$10,000",
				"$9,000-$10,000", "$9,000-$10,000", "$10,000+", "$10,000+",
			},
			AreaInnerCity: {
				"$6,000-$7,000", "$6,000-$7,000", "$7,000-$8,000", "$7,000-$8,000",
				"$8,000-$9,000", "$8,000-$9,000", "$9,000-$10,000", "$9,000-$10,000",
				"$9,000-$10,000", "$10,000+", "$10,000+", "$10,000+",
			},
			AreaRural: {
				"$4,000-$5,000", "$4,000-$5,000", "$5,000-$6,000", "$5,000-$6,000",
				"$6,000-$7,000", "$6,000-$7,000", "$7,000-$8,000", "$7,000-$8,000",
				"$8,000-$9,000", "$8,000-$9,000", "$9,000-$10,000", "$10,000+",
			},
		},
	)
}

// LoadWorkbook starts from DefaultTable and overrides cells from an XLSX
// workbook. Each sheet named after an area type ("suburb", "rural",
// "inner_city") holds rows of bracket, commission range, marketing range;
// a header row is skipped when its first cell is not a bracket.
func LoadWorkbook(path string) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "commission: open workbook")
	}

	t := DefaultTable()
	var loaded int
	for _, sheet := range f.Sheets {
		area, ok := ParseAreaType(sheet.Name)
		if !ok {
			zap.L().Debug("commission: skipping sheet", zap.String("sheet", sheet.Name))
			continue
		}
		for _, row := range sheet.Rows {
			cells := rowToStrings(row)
			if len(cells) < 3 {
				continue
			}
			b, ok := ParseBracket(cells[0])
			if !ok {
				continue
			}
			t.Set(area, b, Rates{
				Commission: strings.TrimSpace(cells[1]),
				Marketing:  strings.TrimSpace(cells[2]),
			})
			loaded++
		}
	}
	if loaded == 0 {
		return nil, eris.Errorf("commission: workbook %s has no rate rows", path)
	}
	zap.L().Info("commission: loaded rate workbook", zap.String("path", path), zap.Int("rows", loaded))
	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
