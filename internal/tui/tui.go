package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"govbrief/internal/core"
)

// model holds the preview state: the newsletter's sections on the left, the
// selected section's body on the right.
type model struct {
	newsletter  core.Newsletter
	sections    []string
	selectedIdx int
	width       int
	height      int
	scroll      int
	quitting    bool
}

// newModel builds the preview state for one newsletter. Sections are shown
// in the configured order, with any stragglers sorted at the end.
func newModel(n core.Newsletter) model {
	var ordered []string
	seen := make(map[string]bool)
	for _, name := range n.Config.Sections {
		if _, ok := n.Sections[name]; ok {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range n.Sections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	return model{newsletter: n, sections: ordered}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			if m.selectedIdx > 0 {
				m.selectedIdx--
				m.scroll = 0
			}
		case "down", "j":
			if m.selectedIdx < len(m.sections)-1 {
				m.selectedIdx++
				m.scroll = 0
			}
		case "pgup":
			if m.scroll > 0 {
				m.scroll--
			}
		case "pgdown":
			m.scroll++
		}
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Quitting...\n"
	}

	docStyle := lipgloss.NewStyle().Margin(1, 2)
	titleStyle := lipgloss.NewStyle().Bold(true)
	listStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(m.width/3 - 4)
	detailStyle := lipgloss.NewStyle().Border(lipgloss.NormalBorder(), true).Padding(1).Width(2*m.width/3 - 4)

	var list strings.Builder
	fmt.Fprintf(&list, "%s\n%d articles\n\n", m.newsletter.Title, m.newsletter.TotalArticles)
	if len(m.sections) == 0 {
		list.WriteString("No sections.")
	}
	for i, name := range m.sections {
		cursor := " "
		if i == m.selectedIdx {
			cursor = ">"
		}
		fmt.Fprintf(&list, "%s %s\n", cursor, name)
	}

	detail := "Select a section to preview."
	if m.selectedIdx < len(m.sections) {
		name := m.sections[m.selectedIdx]
		detail = titleStyle.Render(name) + "\n\n" + m.pageBody(m.newsletter.Sections[name])
	}

	leftPane := listStyle.Render(list.String())
	rightPane := detailStyle.Render(detail)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)

	help := "\n\n[up/k] Prev | [down/j] Next | [pgup/pgdown] Scroll | [q] Quit"

	return docStyle.Render(mainContent + help)
}

// pageBody returns the visible slice of a section body for the current
// scroll offset.
func (m model) pageBody(body string) string {
	lines := strings.Split(body, "\n")
	pageSize := m.height - 10
	if pageSize < 5 {
		pageSize = 5
	}
	start := m.scroll * pageSize
	if start >= len(lines) {
		start = len(lines) - 1
		if start < 0 {
			start = 0
		}
	}
	end := start + pageSize
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// Preview starts an interactive preview of a generated newsletter.
func Preview(n core.Newsletter) error {
	p := tea.NewProgram(newModel(n), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run preview: %w", err)
	}
	return nil
}
