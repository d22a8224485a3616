package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sitekit/sitekit/internal/core/store"
	"github.com/sitekit/sitekit/internal/source"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import statement items from an .xlsx or .json file",
	Long: `Reads items from a spreadsheet or a JSON payload and stores them in the
snapshot cache. Without --statement a new statement is created.

With --statement the statement's items are replaced. The write is rejected
if the statement changed since --expected-updated-at (default: the value
read just before writing).`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().String("project", "", "project name for a new statement")
	importCmd.Flags().String("title", "", "title for a new statement (default: file name)")
	importCmd.Flags().String("statement", "", "existing statement ID to replace items of")
	importCmd.Flags().String("sheet", "", "spreadsheet sheet name (default: import.sheet or first sheet)")
	importCmd.Flags().String("expected-updated-at", "", "RFC3339 updated_at the replacement is based on")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	sheet := cfg.ImportSheet
	if cmd.Flags().Changed("sheet") {
		sheet, _ = cmd.Flags().GetString("sheet")
	}

	items, err := source.Load(path, sheet)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	if err := store.ValidateItems(items); err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	statementFlag, _ := cmd.Flags().GetString("statement")

	if statementFlag == "" {
		project, _ := cmd.Flags().GetString("project")
		title, _ := cmd.Flags().GetString("title")
		if project == "" {
			return fmt.Errorf("--project required when creating a statement")
		}
		if title == "" {
			title = path
		}

		created, err := st.CreateStatement(ctx, types.Statement{ProjectName: project, Title: title})
		if err != nil {
			return err
		}
		if _, err := st.ReplaceItems(ctx, created.ID, items, created.UpdatedAt); err != nil {
			return err
		}
		fmt.Fprintf(out, "created statement %s with %d items\n", created.ID, len(items))
		return nil
	}

	id, err := types.ParseStatementID(statementFlag)
	if err != nil {
		return fmt.Errorf("invalid statement ID %q: %w", statementFlag, err)
	}
	current, err := st.GetStatement(ctx, id)
	if err != nil {
		return err
	}

	expected := current.UpdatedAt
	if s, _ := cmd.Flags().GetString("expected-updated-at"); s != "" {
		expected, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("invalid --expected-updated-at: %w", err)
		}
	}

	existing, err := st.ListItems(ctx, id)
	if err != nil {
		return err
	}
	if store.ContentETag(existing) == store.ContentETag(items) && expected.Equal(current.UpdatedAt) {
		logger.Info("import skipped, items unchanged", zap.String("statement_id", string(id)))
		fmt.Fprintf(out, "statement %s unchanged\n", id)
		return nil
	}

	updatedAt, err := st.ReplaceItems(ctx, id, items, expected)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "replaced %d items in statement %s (updated_at %s)\n",
		len(items), id, updatedAt.Format(time.RFC3339Nano))
	return nil
}
