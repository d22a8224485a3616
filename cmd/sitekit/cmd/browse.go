package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/ui/browse"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse [STATEMENT_ID]",
	Short: "Interactively filter, sort and page a statement's items",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addSourceFlags(browseCmd)
	addViewFlags(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
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

	p := tea.NewProgram(browse.New(s, statement.Schema(), title), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
