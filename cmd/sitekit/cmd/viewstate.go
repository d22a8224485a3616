package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sitekit/sitekit/internal/core/config"
	"github.com/sitekit/sitekit/internal/core/session"
	"github.com/sitekit/sitekit/internal/source"
	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/spf13/cobra"
)

// fileLoader serves a single items file as a statement without touching the cache.
type fileLoader struct {
	path  string
	sheet string
}

func (f fileLoader) GetStatement(_ context.Context, id types.StatementID) (types.Statement, error) {
	return types.Statement{ID: id, Title: filepath.Base(f.path)}, nil
}

func (f fileLoader) ListItems(_ context.Context, _ types.StatementID) ([]types.Item, error) {
	return source.Load(f.path, f.sheet)
}

// addSourceFlags registers flags selecting where a view's items come from.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("source", "", "read items from an .xlsx or .json file instead of the cache")
	cmd.Flags().String("sheet", "", "spreadsheet sheet name for --source")
	cmd.Flags().Int("page-size", 0, "rows per page (default: view.page_size)")
	cmd.Flags().Bool("kana-insensitive", false, "treat hiragana and katakana as equal when filtering")
}

// addViewFlags registers the initial filter, sort and page flags.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("filter", nil, "column filter as field=needle (repeatable)")
	cmd.Flags().String("sort", "", "field to sort by")
	cmd.Flags().Bool("desc", false, "sort descending")
	cmd.Flags().Int("page", 1, "page to show")
}

// openSession opens a view session over the cached statement named by args,
// or over the --source file.
func openSession(ctx context.Context, cmd *cobra.Command, cfg *config.AppConfig, args []string) (*session.Session, func(), error) {
	opts := []table.Option{table.WithPageSize(cfg.PageSize)}
	if n, _ := cmd.Flags().GetInt("page-size"); n > 0 {
		opts = append(opts, table.WithPageSize(n))
	}
	if kana, _ := cmd.Flags().GetBool("kana-insensitive"); kana || cfg.KanaInsensitive {
		opts = append(opts, table.WithKanaInsensitive())
	}

	if path, _ := cmd.Flags().GetString("source"); path != "" {
		if len(args) > 0 {
			return nil, nil, fmt.Errorf("statement ID and --source are mutually exclusive")
		}
		sheet, _ := cmd.Flags().GetString("sheet")
		if sheet == "" {
			sheet = cfg.ImportSheet
		}
		m, err := session.NewManager(fileLoader{path: path, sheet: sheet}, logger.Named("session"), opts...)
		if err != nil {
			return nil, nil, err
		}
		s, err := m.Open(ctx, types.StatementID(path))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = m.Close(s.ID()) }, nil
	}

	if len(args) != 1 {
		return nil, nil, fmt.Errorf("statement ID or --source required")
	}
	id, err := types.ParseStatementID(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid statement ID %q: %w", args[0], err)
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	m, err := session.NewManager(st, logger.Named("session"), opts...)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	s, err := m.Open(ctx, id)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return s, func() {
		_ = m.Close(s.ID())
		closeStore()
	}, nil
}

// applyViewFlags replays --filter, --sort, --desc and --page onto a session.
func applyViewFlags(cmd *cobra.Command, s *session.Session) error {
	schema := statement.Schema()

	filters, _ := cmd.Flags().GetStringArray("filter")
	for _, f := range filters {
		field, needle, ok := strings.Cut(f, "=")
		if !ok {
			return fmt.Errorf("invalid --filter %q (expected field=needle)", f)
		}
		if def, known := schema.Field(field); !known || !def.CanFilter() {
			return fmt.Errorf("cannot filter on %q", field)
		}
		s.SetFilterValue(field, needle)
	}

	if field, _ := cmd.Flags().GetString("sort"); field != "" {
		if def, known := schema.Field(field); !known || !def.Sortable {
			return fmt.Errorf("cannot sort on %q", field)
		}
		s.SetSort(field)
		if desc, _ := cmd.Flags().GetBool("desc"); desc {
			s.SetSort(field)
		}
	}

	if page, _ := cmd.Flags().GetInt("page"); page != 1 {
		s.SetPage(page)
	}
	return nil
}
