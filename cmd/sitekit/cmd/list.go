package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached statements",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	statements, err := st.ListStatements(ctx)
	if err != nil {
		return err
	}
	if len(statements) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no statements cached - run 'sitekit import' first")
		return nil
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "工事名", "内訳書", "更新日時").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range statements {
		t.Row(string(s.ID), s.ProjectName, s.Title, s.UpdatedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}
