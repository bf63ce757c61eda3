package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/converter"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/repository"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/schema"
	"github.com/jamjamdgtls-maker/car-rental-excel-addin/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateMenu
	stateTable
	stateConfirmDelete
	stateError
)

// Opener builds repositories for a workbook chosen in the file picker.
type Opener func(path string) *repository.Repositories

type Model struct {
	state      state
	filepicker filepicker.Model
	open       Opener
	repos      *repository.Repositories
	cursor     int
	current    repository.Table
	records    []types.Record
	table      table.Model
	pending    int
	status     string
	err        error
	width      int
	height     int
}

// recordsLoadedMsg carries the rows of one table. Loads can finish after
// the user has moved on, so the table name travels with them.
type recordsLoadedMsg struct {
	table   string
	records []types.Record
	err     error
}

type mutationDoneMsg struct {
	status string
	err    error
}

// InitialModel opens straight onto the entity menu of repos.
func InitialModel(repos *repository.Repositories) Model {
	return Model{
		state: stateMenu,
		repos: repos,
		table: newTable(),
	}
}

// PickerModel starts with a file picker and opens the chosen workbook.
func PickerModel(open Opener) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(colorHeader)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(colorMuted)

	return Model{
		state:      stateFilePicker,
		filepicker: fp,
		open:       open,
		table:      newTable(),
	}
}

func newTable() table.Model {
	return table.New(
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(tableStyles()),
	)
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	if m.state == stateFilePicker {
		return m.filepicker.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, status and help lines.
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)
		m.table.SetHeight(height)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.state {
		case stateFilePicker:
			if msg.String() == "q" {
				return m, tea.Quit
			}

		case stateMenu:
			entities := m.repos.Catalog().Entities()
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(entities)-1 {
					m.cursor++
				}
			case "s":
				m.status = "Seeding demo data..."
				return m, seedDemo(m.repos)
			case "enter":
				t, err := m.repos.ByEntity(entities[m.cursor])
				if err != nil {
					m.err = err
					m.state = stateError
					return m, nil
				}
				m.current = t
				m.records = nil
				m.table.SetRows(nil)
				m.table.SetColumns(columnsFor(t.Schema()))
				m.state = stateTable
				m.status = "Loading..."
				return m, loadRecords(t)
			}
			return m, nil

		case stateTable:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc":
				m.state = stateMenu
				m.status = ""
				return m, nil
			case "r":
				m.status = "Refreshing..."
				return m, loadRecords(m.current)
			case "s":
				m.status = "Seeding demo data..."
				return m, seedDemo(m.repos)
			case "d":
				if len(m.records) == 0 {
					return m, nil
				}
				m.pending = m.records[m.table.Cursor()].Position
				m.state = stateConfirmDelete
				return m, nil
			}
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd

		case stateConfirmDelete:
			switch msg.String() {
			case "y", "Y":
				m.state = stateTable
				m.status = "Deleting..."
				return m, deleteRecord(m.current, m.pending)
			case "n", "N", "esc":
				m.state = stateTable
				return m, nil
			}
			return m, nil

		case stateError:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "enter", "esc":
				m.err = nil
				if m.repos == nil {
					m.state = stateFilePicker
				} else {
					m.state = stateMenu
				}
				return m, nil
			}
			return m, nil
		}

	case recordsLoadedMsg:
		if m.current == nil || msg.table != m.current.Schema().Table {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.records = msg.records
		m.table.SetRows(rowsFor(m.current.Schema(), msg.records))
		if m.table.Cursor() >= len(msg.records) {
			m.table.SetCursor(max(len(msg.records)-1, 0))
		}
		m.status = fmt.Sprintf("%d row(s)", len(msg.records))
		return m, nil

	case mutationDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.status = msg.status
		// Positions are only valid until the next change, so reload.
		if m.current != nil && m.state == stateTable {
			return m, loadRecords(m.current)
		}
		return m, nil
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.repos = m.open(path)
			m.state = stateMenu
			m.status = "Opened " + filepath.Base(path)
			return m, nil
		}

		return m, cmd
	}

	return m, nil
}

func loadRecords(t repository.Table) tea.Cmd {
	return func() tea.Msg {
		records, err := t.List(context.Background())
		return recordsLoadedMsg{table: t.Schema().Table, records: records, err: err}
	}
}

func deleteRecord(t repository.Table, position int) tea.Cmd {
	return func() tea.Msg {
		err := t.Delete(context.Background(), position)
		return mutationDoneMsg{status: fmt.Sprintf("Deleted row %d", position), err: err}
	}
}

func seedDemo(repos *repository.Repositories) tea.Cmd {
	return func() tea.Msg {
		err := repos.SeedDemo(context.Background())
		return mutationDoneMsg{status: "Demo data seeded", err: err}
	}
}

func columnsFor(s types.TableSchema) []table.Column {
	cols := []table.Column{{Title: "#", Width: 4}}
	for _, h := range s.Headers() {
		width := len(h) + 2
		if width < 10 {
			width = 10
		}
		cols = append(cols, table.Column{Title: h, Width: width})
	}
	return cols
}

func rowsFor(s types.TableSchema, records []types.Record) []table.Row {
	rows := make([]table.Row, len(records))
	for i, rec := range records {
		row := table.Row{fmt.Sprint(rec.Position)}
		for _, h := range s.Headers() {
			row = append(row, converter.ToText(rec.Get(schema.Normalize(h))))
		}
		rows[i] = row
	}
	return rows
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateMenu:
		return m.viewMenu()
	case stateTable:
		return m.viewTable()
	case stateConfirmDelete:
		return m.viewConfirmDelete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🚗 Car Rental Workbook"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select the .xlsx workbook to open"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🚗 Car Rental Workbook"))
	s.WriteString("\n")
	if m.status != "" {
		s.WriteString(SubtitleStyle.Render(m.status))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	catalog := m.repos.Catalog()
	for i, entity := range catalog.Entities() {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
		}

		t := catalog.All()[i]
		line := fmt.Sprintf("%s %-12s %s!%s", cursor, entity, t.Sheet, t.Table)
		if m.cursor == i {
			line = SelectedStyle.Render(line)
		} else {
			line = UnselectedStyle.Render(line)
		}

		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: navigate • enter: open • s: seed demo data • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewTable() string {
	var s strings.Builder

	ts := m.current.Schema()
	s.WriteString(TitleStyle.Render(ts.Sheet))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • %s", ts.Table, m.status)))
	s.WriteString("\n")
	s.WriteString(m.table.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • d: delete • r: refresh • s: seed • esc: back • q: quit"))

	return s.String()
}

func (m Model) viewConfirmDelete() string {
	var s strings.Builder

	s.WriteString(WarningStyle.Render(fmt.Sprintf("Delete row %d from %s?", m.pending, m.current.Schema().Table)))
	s.WriteString("\n\n")
	s.WriteString("Rows below it move up by one.")
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("y: delete • n: cancel"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: back • q: quit"))

	return BoxStyle.Render(s.String())
}
