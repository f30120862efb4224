package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowlens/pkg/cache"
	"github.com/matzehuels/flowlens/pkg/io"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listLineStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// Record status labels shown in the list.
const (
	statusNew      = "new"
	statusCompared = "compared"
)

// =============================================================================
// ResultListModel - Interactive result browser
// =============================================================================

// ResultListModel is the bubbletea model for browsing rendered flows. The
// list view shows one row per flow; enter opens the diagram text, tab
// switches between the old and new side of a comparison.
type ResultListModel struct {
	Records []io.Record
	Cursor  int
	Height  int
	Offset  int

	Viewing bool
	Side    cache.Side
	Scroll  int
}

// NewResultListModel creates a new result browser.
func NewResultListModel(records []io.Record) ResultListModel {
	return ResultListModel{
		Records: records,
		Height:  15,
		Side:    cache.SideNew,
	}
}

func (m ResultListModel) Init() tea.Cmd {
	return nil
}

func (m ResultListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Viewing {
			return m.updateDiagram(msg)
		}
		return m.updateList(msg)
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ResultListModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Offset {
				m.Offset = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(m.Records)-1 {
			m.Cursor++
			if m.Cursor >= m.Offset+m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case "enter":
		if len(m.Records) == 0 {
			return m, nil
		}
		m.Viewing = true
		m.Side = cache.SideNew
		m.Scroll = 0
	}
	return m, nil
}

func (m ResultListModel) updateDiagram(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.Viewing = false
	case "tab":
		if m.Records[m.Cursor].Difference.Old != nil {
			if m.Side == cache.SideNew {
				m.Side = cache.SideOld
			} else {
				m.Side = cache.SideNew
			}
			m.Scroll = 0
		}
	case "up", "k":
		if m.Scroll > 0 {
			m.Scroll--
		}
	case "down", "j":
		if m.Scroll < len(m.lines())-1 {
			m.Scroll++
		}
	case "pgup":
		m.Scroll = max(m.Scroll-m.Height, 0)
	case "pgdown":
		m.Scroll = max(min(m.Scroll+m.Height, len(m.lines())-1), 0)
	}
	return m, nil
}

// lines returns the diagram text of the selected record and side.
func (m ResultListModel) lines() []string {
	d := m.Records[m.Cursor].Difference
	text := d.New
	if m.Side == cache.SideOld && d.Old != nil {
		text = *d.Old
	}
	return strings.Split(strings.TrimRight(text, "\n"), "\n")
}

func (m ResultListModel) View() string {
	if m.Viewing {
		return m.viewDiagram()
	}
	return m.viewList()
}

func (m ResultListModel) viewList() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Rendered Flows"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ open  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Records))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Records[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		oldLines := "-"
		if r.Difference.Old != nil {
			oldLines = fmt.Sprintf("%d", lineCount(*r.Difference.Old))
		}
		rows = append(rows, []string{cursor, r.Path, recordStatus(r), oldLines, fmt.Sprintf("%d", lineCount(r.Difference.New))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Flow", "Status", "Old", "New").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			idx := m.Offset + row
			if idx >= len(m.Records) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			switch col {
			case 1:
				if idx == m.Cursor {
					return base.Foreground(colorCyan)
				}
				return base.Foreground(colorWhite)
			case 2:
				if recordStatus(m.Records[idx]) == statusNew {
					return base.Inherit(styleAdded)
				}
				return base.Inherit(styleModified)
			case 3, 4:
				return base.Foreground(colorGray)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Records))))

	return b.String()
}

func (m ResultListModel) viewDiagram() string {
	var b strings.Builder
	r := m.Records[m.Cursor]

	b.WriteString(StyleTitle.Render(r.Path))
	b.WriteString("  ")
	b.WriteString(StyleHighlight.Render(string(m.Side)))
	b.WriteString("\n")
	help := "↑/↓ scroll  esc back  q quit"
	if r.Difference.Old != nil {
		help = "↑/↓ scroll  tab old/new  esc back  q quit"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	lines := m.lines()
	end := min(m.Scroll+m.Height, len(lines))
	for _, line := range lines[m.Scroll:end] {
		b.WriteString(listLineStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  lines %d-%d of %d", m.Scroll+1, end, len(lines))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func recordStatus(r io.Record) string {
	if r.Difference.Old == nil {
		return statusNew
	}
	return statusCompared
}

func lineCount(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
