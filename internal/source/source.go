// Package source loads itemized-statement items from files and exports
// derived views back to spreadsheets.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sitekit/sitekit/internal/types"
)

// Load reads items from path, choosing the reader by file extension.
// sheet applies to spreadsheets only; "" selects the first sheet.
func Load(path, sheet string) ([]types.Item, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path, sheet)
	case ".json":
		return LoadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedSource, filepath.Ext(path))
	}
}

// finish assigns positions in file order and enforces the item limit.
func finish(items []types.Item) ([]types.Item, error) {
	if len(items) > types.MaxItemsPerStatement {
		return nil, fmt.Errorf("%w: %d exceeds %d", types.ErrTooManyItems, len(items), types.MaxItemsPerStatement)
	}
	for i := range items {
		items[i].Position = i
	}
	return items, nil
}
