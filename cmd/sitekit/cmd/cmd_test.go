package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsJSON = `[
  {"customCategory": "電気設備", "workType": "配線工事", "name": "ケーブル配線", "specification": "VVF 2.0mm", "unit": "m", "quantity": 120},
  {"customCategory": "電気設備", "workType": "照明工事", "name": "照明器具取付", "specification": null, "unit": "台", "quantity": 8},
  {"customCategory": "空調設備", "workType": null, "name": "エアコン設置", "specification": null, "unit": "台", "quantity": 2},
  {"customCategory": null, "workType": null, "name": "諸経費", "specification": null, "unit": "式", "quantity": 1}
]`

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "sitekit %s: %s", strings.Join(args, " "), out.String())
	return out.String()
}

func TestCLIEndToEnd(t *testing.T) {
	dir := t.TempDir()
	itemsPath := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(itemsPath, []byte(itemsJSON), 0o600))
	db := "sqlite://" + filepath.Join(dir, "cache", "sitekit.db")

	out := run(t, "migrate", "up", "--db-url", db)
	assert.Contains(t, out, "applied 001_initial_schema.sql")

	out = run(t, "import", itemsPath, "--db-url", db, "--project", "現場A", "--title", "第1回")
	m := regexp.MustCompile(`created statement (\S+) with 4 items`).FindStringSubmatch(out)
	require.NotNil(t, m, out)
	id := m[1]

	out = run(t, "list", "--db-url", db)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "現場A")

	out = run(t, "view", id, "--db-url", db, "--filter", "customCategory=電気", "--sort", "quantity")
	assert.Contains(t, out, "現場A / 第1回")
	assert.Contains(t, out, "照明器具取付")
	assert.NotContains(t, out, "エアコン設置")
	assert.Contains(t, out, "1 / 1 ページ  (2 件)")
	assert.Less(t, strings.Index(out, "照明器具取付"), strings.Index(out, "ケーブル配線"), "quantity 8 sorts before 120")
}

func TestRenderViewEmpty(t *testing.T) {
	out := renderView("内訳書", statement.Schema(), table.View[types.Item]{CurrentPage: 1})
	assert.Contains(t, out, "条件に一致する明細はありません")
	assert.Contains(t, out, "1 / 1 ページ  (0 件)")
}

func TestRenderViewSortIndicator(t *testing.T) {
	e := statement.NewEngine([]types.Item{
		{Name: "a", Unit: "m", Quantity: 2},
		{Name: "b", Unit: "m", Quantity: 1},
	})
	e.SetSort(types.FieldQuantity)
	e.SetSort(types.FieldQuantity)

	out := renderView("内訳書", statement.Schema(), e.View())
	assert.Contains(t, out, "数量 ▼")
	assert.Less(t, strings.Index(out, " a "), strings.Index(out, " b "))
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level, format string
		wantErr       bool
	}{
		{"info", "json", false},
		{"debug", "text", false},
		{"loud", "json", true},
		{"info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			l, err := newLogger(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}
