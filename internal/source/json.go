package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sitekit/sitekit/internal/types"
)

// LoadJSON reads items from a REST payload: either a bare array of items
// or an object with an "items" array.
func LoadJSON(path string) ([]types.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []types.Item
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var payload struct {
			Items []types.Item `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
		items = payload.Items
	} else if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return finish(items)
}
