// Package browse is the interactive terminal view of one itemized statement.
package browse

import (
	"fmt"
	"strconv"
	"strings"

	bubbletable "github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sitekit/sitekit/internal/statement"
	"github.com/sitekit/sitekit/internal/table"
	"github.com/sitekit/sitekit/internal/types"
)

// Controller is the view state the browser drives.
// *session.Session and *table.Engine[types.Item] both satisfy it.
type Controller interface {
	SetFilterValue(field, needle string)
	ClearFilters()
	SetSort(field string)
	SetPage(page int)
	View() table.View[types.Item]
	Filters() map[string]string
}

// EmptyMessage is shown when the current filters match nothing.
const EmptyMessage = "条件に一致する明細はありません"

const tableFocus = -1

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	emptyStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11")).Padding(1, 2)
	inputStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	activeInput = inputStyle.BorderForeground(lipgloss.Color("12"))
)

// Model is the bubbletea model for the statement browser.
type Model struct {
	ctrl   Controller
	title  string
	schema table.Schema

	table    bubbletable.Model
	fields   []table.Field // filterable, one input each
	inputs   []textinput.Model
	focus    int // input index or tableFocus
	view     table.View[types.Item]
	width    int
	height   int
	quitting bool
}

// New creates a browser over ctrl. title is shown above the table.
func New(ctrl Controller, schema table.Schema, title string) Model {
	fields := schema.FilterableFields()
	inputs := make([]textinput.Model, len(fields))
	filters := ctrl.Filters()
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = f.Label + " "
		in.Placeholder = "絞り込み"
		in.CharLimit = 100
		in.Width = 14
		in.SetValue(filters[f.Name])
		inputs[i] = in
	}

	t := bubbletable.New(
		bubbletable.WithFocused(true),
		bubbletable.WithHeight(types.DefaultPageSize),
	)

	m := Model{
		ctrl:   ctrl,
		title:  title,
		schema: schema,
		table:  t,
		fields: fields,
		inputs: inputs,
		focus:  tableFocus,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width - 2)
		m.table.SetHeight(max(msg.Height-10, 3))
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.focus == tableFocus {
			return m.updateTable(msg)
		}
		return m.updateInput(msg)
	}
	return m, nil
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "/", "tab":
		return m.focusInput(0)
	case "shift+tab":
		return m.focusInput(len(m.inputs) - 1)
	case "n", "right", "pgdown":
		m.ctrl.SetPage(m.view.CurrentPage + 1)
		m.refresh()
		return m, nil
	case "p", "left", "pgup":
		m.ctrl.SetPage(m.view.CurrentPage - 1)
		m.refresh()
		return m, nil
	case "home":
		m.ctrl.SetPage(1)
		m.refresh()
		return m, nil
	case "end":
		m.ctrl.SetPage(m.view.TotalPages)
		m.refresh()
		return m, nil
	case "c":
		m.ctrl.ClearFilters()
		for i := range m.inputs {
			m.inputs[i].SetValue("")
		}
		m.refresh()
		return m, nil
	}

	// Number keys toggle sort on the matching column; 0 restores source order
	if n, err := strconv.Atoi(key); err == nil {
		fields := m.schema.Fields()
		switch {
		case n == 0:
			m.ctrl.SetSort("")
			m.refresh()
		case n >= 1 && n <= len(fields):
			m.ctrl.SetSort(fields[n-1].Name)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m.focusInput(m.focus + 1)
	case "shift+tab":
		return m.focusInput(m.focus - 1)
	case "esc", "enter":
		return m.focusInput(tableFocus)
	}

	in := m.inputs[m.focus]
	before := in.Value()
	var cmd tea.Cmd
	in, cmd = in.Update(msg)
	m.inputs[m.focus] = in

	// Live filtering: one mutator per edit
	if in.Value() != before {
		m.ctrl.SetFilterValue(m.fields[m.focus].Name, in.Value())
		m.refresh()
	}
	return m, cmd
}

// focusInput moves focus to input i; out-of-range i returns focus to the table.
func (m Model) focusInput(i int) (tea.Model, tea.Cmd) {
	if m.focus != tableFocus {
		m.inputs[m.focus].Blur()
	}
	if i < 0 || i >= len(m.inputs) {
		m.focus = tableFocus
		m.table.Focus()
		return m, nil
	}
	m.focus = i
	m.table.Blur()
	return m, m.inputs[i].Focus()
}

// refresh pulls the current view from the controller into the table.
func (m *Model) refresh() {
	m.view = m.ctrl.View()

	fields := m.schema.Fields()
	cols := make([]bubbletable.Column, len(fields))
	for i, f := range fields {
		title := fmt.Sprintf("%d %s", i+1, f.Label)
		if m.view.Sort.Field == f.Name {
			if m.view.Sort.Direction == table.Desc {
				title += " ▼"
			} else {
				title += " ▲"
			}
		}
		width := 14
		if f.Kind == table.KindNumber {
			width = 10
		}
		cols[i] = bubbletable.Column{Title: title, Width: width}
	}

	rows := make([]bubbletable.Row, len(m.view.Rows))
	for i, item := range m.view.Rows {
		rows[i] = bubbletable.Row(statement.Cells(m.schema, item))
	}

	// Columns first: SetRows renders against the current column count
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// CurrentView returns the view last rendered.
func (m Model) CurrentView() table.View[types.Item] {
	return m.view
}

// Focus returns the focused filter field name, "" when the table has focus.
func (m Model) Focus() string {
	if m.focus == tableFocus {
		return ""
	}
	return m.fields[m.focus].Name
}

// Quitting reports whether the user asked to leave.
func (m Model) Quitting() bool {
	return m.quitting
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")

	boxes := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		style := inputStyle
		if i == m.focus {
			style = activeInput
		}
		boxes[i] = style.Render(in.View())
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	sb.WriteString("\n")

	if m.view.Empty() {
		sb.WriteString(emptyStyle.Render(EmptyMessage))
	} else {
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n")

	sb.WriteString(PagerLine(m.view))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("[/] 絞り込み  [1-6] 並べ替え  [0] 並べ替え解除  [n/p] ページ  [c] 条件クリア  [q] 終了"))
	return sb.String()
}

// PagerLine summarizes the pagination state of v.
func PagerLine[R table.Record](v table.View[R]) string {
	return fmt.Sprintf("%d / %d ページ  (%d 件)", v.CurrentPage, max(v.TotalPages, 1), v.TotalFilteredCount)
}
