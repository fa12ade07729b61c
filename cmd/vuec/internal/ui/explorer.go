package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/recera/vuec/pkg/compiler/ast"
)

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Filter   key.Binding
	Back     key.Binding
	Accept   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
	Help     key.Binding
}

var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("g", "first"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("G", "last"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	Accept: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "apply filter"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "scroll details up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "scroll details down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// Explorer is a TUI for browsing a parsed template.
type Explorer struct {
	width  int
	height int

	title    string
	tree     *ast.Tree
	warnings []string

	rows    []Row
	visible []int // indices into rows, in display order
	cursor  int
	offset  int

	filter    textinput.Model
	filtering bool
	detail    viewport.Model

	showHelp bool
	quitting bool
}

// NewExplorer creates an explorer over tree.
func NewExplorer(title string, tree *ast.Tree, warnings []string) Explorer {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter nodes"
	filter.CharLimit = 80

	m := Explorer{
		title:    title,
		tree:     tree,
		warnings: warnings,
		rows:     Rows(tree),
		filter:   filter,
		detail:   viewport.New(40, 10),
		width:    80,
		height:   24,
	}
	m.applyFilter()
	return m
}

// Init initializes the model
func (m Explorer) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m Explorer) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.filter.SetValue("")
		m.filter.Blur()
		m.filtering = false
		m.applyFilter()
		return m, nil
	case key.Matches(msg, DefaultKeyMap.Accept):
		m.filter.Blur()
		m.filtering = false
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

func (m Explorer) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DefaultKeyMap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, DefaultKeyMap.Help):
		m.showHelp = !m.showHelp
		m.layout()
	case key.Matches(msg, DefaultKeyMap.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, DefaultKeyMap.Back):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.applyFilter()
		}
	case key.Matches(msg, DefaultKeyMap.Up):
		m.moveTo(m.cursor - 1)
	case key.Matches(msg, DefaultKeyMap.Down):
		m.moveTo(m.cursor + 1)
	case key.Matches(msg, DefaultKeyMap.Top):
		m.moveTo(0)
	case key.Matches(msg, DefaultKeyMap.Bottom):
		m.moveTo(len(m.visible) - 1)
	case key.Matches(msg, DefaultKeyMap.PageUp):
		m.detail.SetYOffset(m.detail.YOffset - m.detail.Height/2)
	case key.Matches(msg, DefaultKeyMap.PageDown):
		m.detail.SetYOffset(m.detail.YOffset + m.detail.Height/2)
	}
	return m, nil
}

// applyFilter recomputes the visible rows. Without a query the rows keep
// tree order; otherwise they are ranked by fuzzy match distance.
func (m *Explorer) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	m.visible = m.visible[:0]
	if query == "" {
		for i := range m.rows {
			m.visible = append(m.visible, i)
		}
	} else {
		labels := make([]string, len(m.rows))
		for i, r := range m.rows {
			labels[i] = r.Label
		}
		ranks := fuzzy.RankFindFold(query, labels)
		sort.Stable(ranks)
		for _, r := range ranks {
			m.visible = append(m.visible, r.OriginalIndex)
		}
	}
	m.offset = 0
	m.moveTo(0)
}

func (m *Explorer) moveTo(i int) {
	if i >= len(m.visible) {
		i = len(m.visible) - 1
	}
	if i < 0 {
		i = 0
	}
	m.cursor = i

	listHeight := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if listHeight > 0 && m.cursor >= m.offset+listHeight {
		m.offset = m.cursor - listHeight + 1
	}

	if n, ok := m.Selected(); ok {
		m.detail.SetContent(Details(m.tree, n))
	} else {
		m.detail.SetContent(mutedStyle.Render("no matching nodes"))
	}
	m.detail.GotoTop()
}

// Selected returns the node under the cursor.
func (m Explorer) Selected() (*ast.Node, bool) {
	if len(m.visible) == 0 {
		return nil, false
	}
	return m.tree.Get(m.rows[m.visible[m.cursor]].ID)
}

// Visible returns the labels of the rows that pass the filter.
func (m Explorer) Visible() []string {
	out := make([]string, len(m.visible))
	for i, idx := range m.visible {
		out[i] = m.rows[idx].Label
	}
	return out
}

// chrome is the number of lines used by the header, filter and footer.
func (m Explorer) chrome() int {
	lines := 6
	if len(m.warnings) > 0 {
		lines++
	}
	if m.showHelp {
		lines += 2
	}
	return lines
}

func (m Explorer) listHeight() int {
	return max(m.height-m.chrome(), 1)
}

func (m *Explorer) layout() {
	m.detail.Width = max(m.width/2-4, 10)
	m.detail.Height = m.listHeight()
	m.moveTo(m.cursor)
}

// View renders the UI
func (m Explorer) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString(" " + subtitleStyle.Render(fmt.Sprintf("%d nodes", len(m.rows))))
	b.WriteString("\n")
	if len(m.warnings) > 0 {
		b.WriteString(warningStyle.Render(fmt.Sprintf("⚠ %d warnings: %s", len(m.warnings), m.warnings[0])))
		b.WriteString("\n")
	}
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	listWidth := max(m.width-m.detail.Width-8, 10)
	listStyle, detailStyle := activePaneStyle, paneStyle
	if m.filtering {
		listStyle, detailStyle = paneStyle, paneStyle
	}
	list := listStyle.Width(listWidth).Height(m.listHeight()).Render(m.renderList(listWidth))
	detail := detailStyle.Height(m.listHeight()).Render(m.detail.View())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, detail))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(helpStyle.Render("/ filter • esc clear • enter apply • ↑/↓ move • g/G first/last"))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("pgup/pgdn scroll details • ? toggle help • q quit"))
	} else {
		b.WriteString(helpStyle.Render("? help • q quit"))
	}
	return b.String()
}

func (m Explorer) renderList(width int) string {
	if len(m.visible) == 0 {
		return mutedStyle.Render("no matching nodes")
	}
	end := min(m.offset+m.listHeight(), len(m.visible))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		row := m.rows[m.visible[i]]
		indent := ""
		if m.filter.Value() == "" {
			indent = strings.Repeat("  ", row.Depth)
		}
		line := indent + truncate(row.Label, max(width-2-len(indent), 4))
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("› "+line))
		} else {
			lines = append(lines, "  "+line)
		}
	}
	return strings.Join(lines, "\n")
}
