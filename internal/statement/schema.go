// Package statement binds itemized-statement items to the table engine.
package statement

import (
	"strconv"

	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
)

// Schema is the column layout of the itemized-statement detail view.
// Every text column is filterable; quantity is sort-only.
func Schema() table.Schema {
	return table.NewSchema(
		table.StringField(types.FieldCustomCategory, "分類"),
		table.StringField(types.FieldWorkType, "工種"),
		table.StringField(types.FieldName, "名称"),
		table.StringField(types.FieldSpecification, "規格"),
		table.StringField(types.FieldUnit, "単位"),
		table.NumberField(types.FieldQuantity, "数量"),
	)
}

// NewEngine builds a detail-view engine over items.
func NewEngine(items []types.Item, opts ...table.Option) *table.Engine[types.Item] {
	return table.New(Schema(), items, opts...)
}

// Cells renders an item as display strings in schema column order.
// Null fields render as "".
func Cells(schema table.Schema, item types.Item) []string {
	fields := schema.Fields()
	out := make([]string, len(fields))
	for i, f := range fields {
		v, ok := item.Value(f.Name)
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			out[i] = val
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}
	return out
}
