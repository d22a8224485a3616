package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
	"github.com/sitekit/sitekit/internal/ui/browse"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view [STATEMENT_ID]",
	Short: "Print one page of a statement's items",
	Long: `Prints one page of items after applying filters and sort.

Example:
  sitekit view 0190f3c4-... --filter customCategory=電気 --sort quantity --desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	addSourceFlags(viewCmd)
	addViewFlags(viewCmd)
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

func runView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	s, done, err := openSession(ctx, cmd, cfg, args)
	if err != nil {
		return err
	}
	defer done()

	if err := applyViewFlags(cmd, s); err != nil {
		return err
	}

	title := s.Statement().Title
	if p := s.Statement().ProjectName; p != "" {
		title = p + " / " + title
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderView(title, statement.Schema(), s.View()))
	return nil
}

// renderView draws a page of items as a bordered table with a pager line.
func renderView(title string, schema table.Schema, v table.View[types.Item]) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")

	if v.Empty() {
		sb.WriteString(browse.EmptyMessage)
		sb.WriteString("\n")
		sb.WriteString(browse.PagerLine(v))
		return sb.String()
	}

	fields := schema.Fields()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Label
		if v.Sort.Field == f.Name {
			if v.Sort.Direction == table.Desc {
				headers[i] += " ▼"
			} else {
				headers[i] += " ▲"
			}
		}
	}

	rows := make([][]string, len(v.Rows))
	for i, item := range v.Rows {
		rows[i] = statement.Cells(schema, item)
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if col < len(fields) && fields[col].Kind == table.KindNumber {
				return numberStyle
			}
			return cellStyle
		})

	sb.WriteString(t.String())
	sb.WriteString("\n")
	sb.WriteString(browse.PagerLine(v))
	return sb.String()
}
