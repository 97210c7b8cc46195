package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/hydro-project/flowviz/pkg/engine"
	"github.com/hydro-project/flowviz/pkg/model"
)

// List styles, shared with the container/node browser below.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command: an interactive browser over
// a document's visible entities, letting a user collapse/expand
// containers and watch the visible set change live.
func (c *CLI) exploreCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "explore [doc.json]",
		Short: "Interactively browse and collapse/expand a graph document",
		Long: `Interactively browse a graph document's visible entities.

Navigate with the arrow keys, press enter on a container to toggle
collapse/expand, and press 'q' to quit. On exit, the (possibly mutated)
document is written back out.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite input)")
	return cmd
}

func (c *CLI) runExplore(input, output string) error {
	s, err := model.ReadJSONFile(input)
	if err != nil {
		return fmt.Errorf("load document %s: %w", input, err)
	}

	m := newExploreModel(s)
	p := tea.NewProgram(m)
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run explorer: %w", err)
	}
	final := finalModel.(exploreModel)
	if final.err != nil {
		return fmt.Errorf("explore: %w", final.err)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = input
	}
	if err := model.WriteJSONFile(outputPath, s); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}
	printSuccess("Saved %s", outputPath)
	return nil
}

// exploreRow is one browsable entity: a visible node or a visible
// container, whichever the core's visibility sets currently include.
type exploreRow struct {
	id        string
	kind      string // "node" or "container"
	label     string
	collapsed bool
}

// exploreModel is the bubbletea model for the container/node browser.
type exploreModel struct {
	state  *model.State
	rows   []exploreRow
	cursor int
	offset int
	height int
	err    error
}

func newExploreModel(s *model.State) exploreModel {
	m := exploreModel{state: s, height: 15}
	m.reload()
	return m
}

func (m *exploreModel) reload() {
	var rows []exploreRow
	for _, id := range sortedIDs(m.state.VisibleNodes()) {
		n, _ := m.state.GetNode(id)
		rows = append(rows, exploreRow{id: id, kind: "node", label: n.Label})
	}
	for _, id := range sortedIDs(m.state.VisibleContainers()) {
		c, _ := m.state.GetContainer(id)
		rows = append(rows, exploreRow{id: id, kind: "container", label: c.Label, collapsed: c.Collapsed})
	}
	m.rows = rows
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.rows) == 0 {
				return m, nil
			}
			row := m.rows[m.cursor]
			if row.kind != "container" {
				return m, nil
			}
			var err error
			if row.collapsed {
				err = engine.Expand(m.state, row.id)
			} else {
				err = engine.Collapse(m.state, row.id)
			}
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.reload()
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Visible Entities"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ collapse/expand container  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		state := "—"
		if r.kind == "container" {
			if r.collapsed {
				state = "collapsed"
			} else {
				state = "expanded"
			}
		}
		rows = append(rows, []string{cursor, r.id, r.kind, r.label, state})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Kind", "Label", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.rows))))

	return b.String()
}
