package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTable() *Table {
	return &Table{
		Headers: []string{"Name", "Qty", "Price"},
		Rows: [][]string{
			{"apples", "3", "1.20"},
			{"pears"},
		},
		RowStyles: []RowOverride{
			{Row: 0, BgColor: "#EEEEEE", TextColor: "#111111"},
			{Row: 99, BgColor: "#FF0000"},
		},
		CellStyles: []CellOverride{
			{Row: 0, Col: 2, TextColor: "#00FF00", HorizontalAlignment: "right"},
			{Row: 0, Col: 99, BgColor: "#FF0000"},
			{Row: -1, Col: 0, BgColor: "#FF0000"},
		},
	}
}

func TestTable_CellAt(t *testing.T) {
	tbl := sampleTable()

	t.Run("ExistingCell", func(t *testing.T) {
		assert.Equal(t, "apples", tbl.CellAt(0, 0))
		assert.Equal(t, "1.20", tbl.CellAt(0, 2))
	})

	t.Run("ShortRowPadsBlank", func(t *testing.T) {
		assert.Equal(t, "pears", tbl.CellAt(1, 0))
		assert.Equal(t, "", tbl.CellAt(1, 1))
		assert.Equal(t, "", tbl.CellAt(1, 2))
	})

	t.Run("OutOfRangeIsBlank", func(t *testing.T) {
		assert.Equal(t, "", tbl.CellAt(5, 0))
		assert.Equal(t, "", tbl.CellAt(0, 5))
		assert.Equal(t, "", tbl.CellAt(-1, 0))
	})
}

func TestTable_OverridesFor(t *testing.T) {
	tbl := sampleTable()

	t.Run("RowThenCellOrder", func(t *testing.T) {
		bg, fg, _, hAlign, _ := tbl.OverridesFor(0, 2)
		// Row override supplies the background, the cell override wins
		// the text color.
		assert.Equal(t, "#EEEEEE", bg)
		assert.Equal(t, "#00FF00", fg)
		assert.Equal(t, "right", hAlign)
	})

	t.Run("RowOverrideOnly", func(t *testing.T) {
		bg, fg, _, hAlign, _ := tbl.OverridesFor(0, 0)
		assert.Equal(t, "#EEEEEE", bg)
		assert.Equal(t, "#111111", fg)
		assert.Equal(t, "", hAlign)
	})

	t.Run("OutOfRangeOverridesSkipped", func(t *testing.T) {
		bg, fg, _, _, _ := tbl.OverridesFor(99, 0)
		assert.Equal(t, "", bg)
		assert.Equal(t, "", fg)
	})

	t.Run("UntouchedCellHasNoOverrides", func(t *testing.T) {
		bg, fg, wrap, hAlign, vAlign := tbl.OverridesFor(1, 1)
		assert.Equal(t, "", bg)
		assert.Equal(t, "", fg)
		assert.False(t, wrap)
		assert.Equal(t, "", hAlign)
		assert.Equal(t, "", vAlign)
	})
}
