package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	dashboardMaxLines = 2000
	// title line + rule
	headerHeight = 2
	// rule + help line
	footerHeight = 2
	// pane title above each viewport
	paneTitleHeight = 1
	// column between the two panes
	dividerWidth = 1
)

// Messages for bubbletea
type lineMsg LogLine

type statusMsg struct {
	tag    Tag
	status string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Switch key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "follow"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "stop servers"),
		),
	}
}

// pane is one server's scrollback.
type pane struct {
	tag      Tag
	viewport viewport.Model
	buffer   *LogBuffer
}

func newPane(tag Tag) *pane {
	vp := viewport.New(40, 20)
	vp.MouseWheelEnabled = true
	return &pane{tag: tag, viewport: vp, buffer: NewLogBuffer(dashboardMaxLines)}
}

// refresh reloads the viewport, following the tail only if the user has
// not scrolled away from it.
func (p *pane) refresh() {
	atBottom := p.viewport.AtBottom()
	p.viewport.SetContent(strings.Join(p.buffer.GetAll(), "\n"))
	if atBottom {
		p.viewport.GotoBottom()
	}
}

// dashboardModel is the bubbletea model behind Dashboard. Backend and
// frontend output go to their own pane; SETUP and ERROR lines go to both.
type dashboardModel struct {
	panes    []*pane
	focus    int
	styles   Styles
	keys     keyMap
	status   map[Tag]string
	urls     map[Tag]string
	width    int
	height   int
	ready    bool
	quitting bool
}

func newDashboardModel(styles Styles) *dashboardModel {
	return &dashboardModel{
		panes:  []*pane{newPane(TagBackend), newPane(TagFrontend)},
		styles: styles,
		keys:   defaultKeyMap(),
		status: map[Tag]string{
			TagBackend:  "pending",
			TagFrontend: "pending",
		},
		urls: map[Tag]string{},
	}
}

// Init implements tea.Model
func (m *dashboardModel) Init() tea.Cmd {
	return nil
}

// panesFor returns the panes a line belongs in.
func (m *dashboardModel) panesFor(tag Tag) []*pane {
	for _, p := range m.panes {
		if p.tag == tag {
			return []*pane{p}
		}
	}
	return m.panes
}

func (m *dashboardModel) resize() {
	paneWidth := max((m.width-dividerWidth)/2, 1)
	paneHeight := max(m.height-headerHeight-footerHeight-paneTitleHeight, 1)
	for _, p := range m.panes {
		p.viewport.Width = paneWidth
		p.viewport.Height = paneHeight
		p.refresh()
	}
}

// Update implements tea.Model
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	focused := m.panes[m.focus]

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Switch):
			m.focus = (m.focus + 1) % len(m.panes)
			return m, nil
		case key.Matches(msg, m.keys.Top):
			focused.viewport.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			focused.viewport.GotoBottom()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case lineMsg:
		line := LogLine(msg)
		if url, ok := DetectURL(line.Text); ok && m.urls[line.Tag] == "" {
			m.urls[line.Tag] = url
		}
		rendered := m.styles.Render(line)
		for _, p := range m.panesFor(line.Tag) {
			p.buffer.Append(rendered)
			p.refresh()
		}
		return m, nil

	case statusMsg:
		m.status[msg.tag] = msg.status
		return m, nil
	}

	var cmd tea.Cmd
	focused.viewport, cmd = focused.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m *dashboardModel) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}
	if !m.ready {
		return "Starting...\n"
	}

	columns := make([]string, 0, 2*len(m.panes)-1)
	for i, p := range m.panes {
		if i > 0 {
			columns = append(columns, m.renderDivider(p.viewport.Height+paneTitleHeight))
		}
		columns = append(columns, m.renderPane(i, p))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, columns...),
		m.renderFooter(),
	)
}

func (m *dashboardModel) renderPane(i int, p *pane) string {
	title := m.styles.Tags[p.tag].Render(string(p.tag)) + " " + m.status[p.tag]
	if url := m.urls[p.tag]; url != "" {
		title += " " + m.styles.Muted.Render(url)
	}
	if i == m.focus {
		title = m.styles.Accent.Render("▸ ") + title
	}
	title = lipgloss.NewStyle().Width(p.viewport.Width).MaxWidth(p.viewport.Width).Render(title)
	return lipgloss.JoinVertical(lipgloss.Left, title, p.viewport.View())
}

func (m *dashboardModel) renderDivider(height int) string {
	return m.styles.Muted.Render(strings.TrimSuffix(strings.Repeat("│\n", max(height, 1)), "\n"))
}

func (m *dashboardModel) renderHeader() string {
	title := m.styles.Accent.Render("devrun")
	rule := m.styles.Muted.Render(strings.Repeat("─", max(m.width, 1)))
	return title + "\n" + rule
}

func (m *dashboardModel) renderFooter() string {
	help := fmt.Sprintf("%s scroll • %s switch pane • %s top • %s follow • %s quit",
		m.styles.Accent.Render("↑↓/jk"),
		m.styles.Accent.Render("tab"),
		m.styles.Accent.Render("g"),
		m.styles.Accent.Render("G"),
		m.styles.Accent.Render("q"))
	rule := m.styles.Muted.Render(strings.Repeat("─", max(m.width, 1)))
	return rule + "\n" + m.styles.Muted.Render(help)
}
