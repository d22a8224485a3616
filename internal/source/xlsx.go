package source

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/xuri/excelize/v2"
)

// requiredColumns must appear in a spreadsheet header.
var requiredColumns = []string{types.FieldName, types.FieldUnit, types.FieldQuantity}

// headerIndex maps field names to column indexes.
// A header cell matches a field by its key (case-insensitive) or its label.
func headerIndex(header []string) (map[string]int, error) {
	schema := statement.Schema()
	index := make(map[string]int)
	for col, cell := range header {
		cell = strings.TrimSpace(cell)
		for _, f := range schema.Fields() {
			if strings.EqualFold(cell, f.Name) || cell == f.Label {
				if _, dup := index[f.Name]; !dup {
					index[f.Name] = col
				}
			}
		}
	}

	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrMissingColumn, name)
		}
	}
	return index, nil
}

// LoadXLSX reads items from a spreadsheet. The first row is the header.
// Blank rows are skipped; empty optional cells become null.
func LoadXLSX(path, sheet string) ([]types.Item, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in %s", path)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, fmt.Errorf("sheet not found: %s", sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet is empty: %s", sheet)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var items []types.Item
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		// Row numbers as shown in the spreadsheet
		item, err := parseRow(row, index, i+2)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return finish(items)
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, index map[string]int, rowNum int) (types.Item, error) {
	cell := func(field string) string {
		col, ok := index[field]
		if !ok || col >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[col])
	}
	nullable := func(field string) *string {
		if v := cell(field); v != "" {
			return &v
		}
		return nil
	}

	q, err := table.Coerce(cell(types.FieldQuantity), table.KindNumber)
	if err != nil {
		return types.Item{}, fmt.Errorf("row %d: quantity %q: %w", rowNum, cell(types.FieldQuantity), err)
	}

	return types.Item{
		CustomCategory: nullable(types.FieldCustomCategory),
		WorkType:       nullable(types.FieldWorkType),
		Name:           cell(types.FieldName),
		Specification:  nullable(types.FieldSpecification),
		Unit:           cell(types.FieldUnit),
		Quantity:       q.Value.(float64),
	}, nil
}

// WriteXLSX writes rows to a new spreadsheet: a label header row, then one
// row per record in the given order. Numbers stay numeric; nulls stay empty.
func WriteXLSX[R table.Record](path, sheet string, schema table.Schema, rows []R) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet: %w", err)
		}
	}

	fields := schema.Fields()
	for col, field := range fields {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, field.Label); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for r, rec := range rows {
		for col, field := range fields {
			v, ok := rec.Value(field.Name)
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
