package cli

import (
	"fmt"
	"os"

	"github.com/Anajrajeev/AutoScrum/pkg/storage"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive story board TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("AUTOSCRUM_SKIP_BOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialBoardModel())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
var okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

type boardModel struct {
	table    table.Model
	features int
	stories  int
	warnings []string
	err      error
}

func initialBoardModel() boardModel {
	cwd, _ := os.Getwd()
	repo := storage.NewFilesystemRepository(cwd)

	features, err := repo.ListFeatures()
	if err != nil {
		return boardModel{err: err}
	}

	stories, err := repo.ListAllStories()
	if err != nil {
		return boardModel{err: err}
	}

	columns := []table.Column{
		{Title: "Status", Width: 12},
		{Title: "Assignee", Width: 12},
		{Title: "Pts", Width: 4},
		{Title: "Priority", Width: 8},
		{Title: "Story", Width: 40},
		{Title: "Key", Width: 12},
	}

	rows := []table.Row{}
	for _, story := range stories {
		assignee := "-"
		if story.Assignee != "" {
			assignee = story.Assignee
		}
		key := "-"
		if story.ExternalKey != "" {
			key = story.ExternalKey
		}
		rows = append(rows, table.Row{
			string(story.Status), assignee,
			fmt.Sprintf("%d", story.Points), string(story.Priority),
			story.Title, key,
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	warnings := []string{}
	for _, f := range features {
		run, err := repo.LoadRun(f.ID)
		if err != nil {
			continue
		}
		for _, w := range run.PreviewWarnings {
			warnings = append(warnings, fmt.Sprintf("[%s] %s", f.Name, w.Message))
		}
	}

	return boardModel{
		table:    t,
		features: len(features),
		stories:  len(stories),
		warnings: warnings,
	}
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading board: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("AutoScrum Board  %d features, %d stories", m.features, m.stories))

	warningsView := ""
	if len(m.warnings) > 0 {
		warningsView = warnStyle.Render("\nCapacity warnings:\n")
		for _, w := range m.warnings {
			warningsView += fmt.Sprintf("- %s\n", w)
		}
	} else {
		warningsView = okStyle.Render("\nCapacity: OK")
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"\nStories:",
			m.table.View(),
			warningsView,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
