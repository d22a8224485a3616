package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeSheet saves rows (header first) to a temp spreadsheet.
func writeSheet(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "items.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadXLSXJapaneseHeaders(t *testing.T) {
	path := writeSheet(t, "内訳", [][]any{
		{"分類", "工種", "名称", "規格", "単位", "数量"},
		{"電気設備", "配線工事", "ケーブル配線", "VVF 2.0mm", "m", 120},
		{nil, nil, "照明器具取付", nil, "台", 8.5},
		{},
		{"空調設備", nil, "エアコン設置", nil, "台", "2"},
	})

	items, err := LoadXLSX(path, "内訳")
	require.NoError(t, err)
	require.Len(t, items, 3, "blank row skipped")

	assert.Equal(t, "電気設備", *items[0].CustomCategory)
	assert.Equal(t, "VVF 2.0mm", *items[0].Specification)
	assert.Equal(t, 120.0, items[0].Quantity)

	assert.Nil(t, items[1].CustomCategory)
	assert.Nil(t, items[1].WorkType)
	assert.Nil(t, items[1].Specification)
	assert.Equal(t, 8.5, items[1].Quantity)

	assert.Equal(t, 2.0, items[2].Quantity)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
	}
}

func TestLoadXLSXKeyHeadersFirstSheet(t *testing.T) {
	path := writeSheet(t, "Sheet1", [][]any{
		{"Quantity", "unit", "NAME", "note"},
		{3, "式", "仮設工事"},
	})

	items, err := LoadXLSX(path, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "仮設工事", items[0].Name)
	assert.Equal(t, "式", items[0].Unit)
	assert.Equal(t, 3.0, items[0].Quantity)
}

func TestLoadXLSXErrors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		path := writeSheet(t, "Sheet1", [][]any{{"名称", "単位"}, {"a", "m"}})
		_, err := LoadXLSX(path, "")
		assert.ErrorIs(t, err, types.ErrMissingColumn)
	})

	t.Run("bad quantity", func(t *testing.T) {
		path := writeSheet(t, "Sheet1", [][]any{{"名称", "単位", "数量"}, {"a", "m", "many"}})
		_, err := LoadXLSX(path, "")
		assert.ErrorIs(t, err, types.ErrCoercionFailed)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("empty quantity", func(t *testing.T) {
		path := writeSheet(t, "Sheet1", [][]any{{"名称", "単位", "数量"}, {"a", "m"}})
		_, err := LoadXLSX(path, "")
		assert.ErrorIs(t, err, types.ErrCoercionFailed)
	})

	t.Run("unknown sheet", func(t *testing.T) {
		path := writeSheet(t, "Sheet1", [][]any{{"名称", "単位", "数量"}})
		_, err := LoadXLSX(path, "missing")
		assert.Error(t, err)
	})
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	items := []types.Item{
		{CustomCategory: types.StringPtr("電気設備"), Name: "ケーブル配線", Unit: "m", Quantity: 12.5},
		{Name: "照明器具取付", Specification: types.StringPtr("LED"), Unit: "台", Quantity: 8},
	}
	path := filepath.Join(t.TempDir(), "export.xlsx")
	require.NoError(t, WriteXLSX(path, "明細", statement.Schema(), items))

	loaded, err := LoadXLSX(path, "明細")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "電気設備", *loaded[0].CustomCategory)
	assert.Nil(t, loaded[0].Specification)
	assert.Equal(t, 12.5, loaded[0].Quantity)
	assert.Nil(t, loaded[1].CustomCategory)
	assert.Equal(t, "LED", *loaded[1].Specification)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	t.Run("bare array", func(t *testing.T) {
		p := write("array.json", `[
			{"id": "a", "customCategory": "電気設備", "workType": null, "name": "配線", "specification": null, "unit": "m", "quantity": 10},
			{"id": "b", "customCategory": null, "name": "照明", "unit": "台", "quantity": 2}
		]`)
		items, err := LoadJSON(p)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, types.ItemID("a"), items[0].ID)
		assert.Equal(t, "電気設備", *items[0].CustomCategory)
		assert.Nil(t, items[0].WorkType)
		assert.Nil(t, items[1].CustomCategory)
		assert.Equal(t, 1, items[1].Position)
	})

	t.Run("items wrapper", func(t *testing.T) {
		p := write("wrapped.json", `{"items": [{"name": "配線", "unit": "m", "quantity": 1}]}`)
		items, err := LoadJSON(p)
		require.NoError(t, err)
		require.Len(t, items, 1)
	})

	t.Run("malformed", func(t *testing.T) {
		p := write("bad.json", `[{"name": 1}]`)
		_, err := LoadJSON(p)
		assert.Error(t, err)
	})
}

func TestLoadDispatch(t *testing.T) {
	_, err := Load("items.csv", "")
	assert.ErrorIs(t, err, types.ErrUnsupportedSource)

	p := filepath.Join(t.TempDir(), "items.JSON")
	require.NoError(t, os.WriteFile(p, []byte(`[]`), 0o600))
	items, err := Load(p, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}
