package explorer

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/odatascope/odatascope/internal/fetch"
	"github.com/odatascope/odatascope/internal/metadata"
	"github.com/odatascope/odatascope/internal/store"
)

// viewMode selects which screen is showing.
type viewMode int

const (
	modeBrowse viewMode = iota
	modeDiagram
)

// focusPane selects which browse pane receives keys.
type focusPane int

const (
	focusSidebar focusPane = iota
	focusDetail
)

// sidebarRow is one line of the entity sidebar, either a namespace header
// or an entity beneath one.
type sidebarRow struct {
	header bool
	ns     string
	entity *metadata.Entity
	hint   string
}

// Model is the bubbletea model for the metadata explorer.
type Model struct {
	store   *store.Store
	fetcher *fetch.Fetcher
	source  string

	mode  viewMode
	focus focusPane

	search    textinput.Model
	searching bool

	spin    spinner.Model
	loading bool

	sidebarCursor int
	detailCursor  int
	diagramCursor int

	statusMsg string
	width     int
	height    int
}

type loadDoneMsg struct {
	err error
}

// NewModel creates the explorer model. source may be empty for an explorer
// opened without a document.
func NewModel(st *store.Store, fetcher *fetch.Fetcher, source string) Model {
	search := textinput.New()
	search.Placeholder = "search entities, properties, types..."
	search.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		store:   st,
		fetcher: fetcher,
		source:  source,
		search:  search,
		spin:    spin,
		width:   100,
		height:  30,
	}
}

func (m Model) Init() tea.Cmd {
	if m.source == "" {
		return textinput.Blink
	}
	m.store.SetLoading(true)
	return tea.Batch(m.spin.Tick, m.loadCmd())
}

// loadCmd fetches and parses the metadata document off the UI goroutine.
func (m Model) loadCmd() tea.Cmd {
	st, fetcher, source := m.store, m.fetcher, m.source
	return func() tea.Msg {
		xmlText, err := fetcher.Acquire(context.Background(), source)
		if err != nil {
			st.SetLoading(false)
			st.PublishError(err.Error())
			return loadDoneMsg{err: err}
		}
		err = st.Load(xmlText)
		return loadDoneMsg{err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadDoneMsg:
		m.loading = false
		m.sidebarCursor = 0
		m.detailCursor = 0
		if msg.err == nil {
			m.statusMsg = summaryLine(m.store.Snapshot())
		}
		return m, nil

	case spinner.TickMsg:
		if m.store.Snapshot().Loading {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.mode == modeDiagram {
			return m.updateDiagram(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.store.SetSearchQuery("")
		m.sidebarCursor = 0
		return m, nil

	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil

	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.store.SetSearchQuery(m.search.Value())
	m.sidebarCursor = 0
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "/":
		m.searching = true
		m.focus = focusSidebar
		return m, m.search.Focus()

	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusDetail
		} else {
			m.focus = focusSidebar
		}
		return m, nil

	case "d":
		if m.store.SelectedEntity() != nil {
			m.mode = modeDiagram
			m.diagramCursor = 0
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.updateSidebar(msg)
	}
	return m.updateDetail(msg)
}

func (m Model) updateSidebar(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.sidebarRows()

	switch msg.String() {
	case "up", "k":
		m.moveSidebarCursor(-1, len(rows))

	case "down", "j":
		m.moveSidebarCursor(1, len(rows))

	case "home":
		m.sidebarCursor = 0

	case "end":
		if len(rows) > 0 {
			m.sidebarCursor = len(rows) - 1
		}

	case "c":
		if r, ok := m.currentRow(rows); ok {
			m.store.ToggleNamespace(r.ns)
			m.clampSidebarCursor()
		}

	case "enter", " ":
		r, ok := m.currentRow(rows)
		if !ok {
			return m, nil
		}
		if r.header {
			m.store.ToggleNamespace(r.ns)
			m.clampSidebarCursor()
			return m, nil
		}
		// A sidebar pick always re-roots the diagram on the chosen entity.
		m.store.StartDiagramFrom(r.entity)
		m.detailCursor = 0
		m.focus = focusDetail
	}

	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	view := m.store.CurrentView()
	if view == nil {
		return m, nil
	}
	props := viewProperties(view)

	switch msg.String() {
	case "up", "k":
		if m.detailCursor > 0 {
			m.detailCursor--
		}

	case "down", "j":
		if m.detailCursor < len(props)-1 {
			m.detailCursor++
		}

	case "enter":
		if m.detailCursor < len(props) {
			p := props[m.detailCursor]
			if inner, ok := metadata.CollectionInner(p.Type); ok && m.store.IsComplexCollection(p.Type) {
				m.store.NavigateInto(p.Name, inner)
				m.detailCursor = 0
			}
		}

	case "backspace", "b":
		m.store.NavigateBack()
		m.detailCursor = 0

	case "esc":
		m.store.NavigateToIndex(-1)
		m.detailCursor = 0
	}

	return m, nil
}

func (m Model) updateDiagram(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	graph := m.store.DiagramGraph()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc", "d":
		m.mode = modeBrowse
		return m, nil

	case "left", "h", "up", "k":
		if m.diagramCursor > 0 {
			m.diagramCursor--
		}

	case "right", "l", "down", "j":
		if graph != nil && m.diagramCursor < len(graph.Nodes)-1 {
			m.diagramCursor++
		}

	case "enter", " ":
		if graph != nil && m.diagramCursor < len(graph.Nodes) {
			m.store.ToggleDiagramNode(graph.Nodes[m.diagramCursor].ID)
			m.clampDiagramCursor()
		}

	case "s":
		if graph != nil && m.diagramCursor < len(graph.Nodes) {
			node := graph.Nodes[m.diagramCursor]
			if node.Entity != nil {
				m.store.SelectFromDiagram(node.Entity.Name)
				m.mode = modeBrowse
				m.focus = focusDetail
				m.detailCursor = 0
			}
		}

	case "r":
		m.store.ResetDiagram()
		m.diagramCursor = 0
	}

	return m, nil
}

// viewProperties returns the property list of whichever type the detail
// pane is showing.
func viewProperties(v *store.View) []metadata.Property {
	if v.Complex != nil {
		return v.Complex.Properties
	}
	if v.Entity != nil {
		return v.Entity.Properties
	}
	return nil
}

func (m *Model) moveSidebarCursor(delta, total int) {
	if total == 0 {
		return
	}
	m.sidebarCursor += delta
	if m.sidebarCursor < 0 {
		m.sidebarCursor = 0
	}
	if m.sidebarCursor >= total {
		m.sidebarCursor = total - 1
	}
}

func (m *Model) clampSidebarCursor() {
	if n := len(m.sidebarRows()); m.sidebarCursor >= n {
		m.sidebarCursor = max(0, n-1)
	}
}

func (m *Model) clampDiagramCursor() {
	g := m.store.DiagramGraph()
	if g == nil {
		m.diagramCursor = 0
		return
	}
	if m.diagramCursor >= len(g.Nodes) {
		m.diagramCursor = max(0, len(g.Nodes)-1)
	}
}

func (m Model) currentRow(rows []sidebarRow) (sidebarRow, bool) {
	if m.sidebarCursor < 0 || m.sidebarCursor >= len(rows) {
		return sidebarRow{}, false
	}
	return rows[m.sidebarCursor], true
}
