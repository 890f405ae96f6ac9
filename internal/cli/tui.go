package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"seehuhn.de/go/geom/vec"

	"github.com/matzehuels/panzoom/pkg/config"
	"github.com/matzehuels/panzoom/pkg/gesture"
	"github.com/matzehuels/panzoom/pkg/render/text"
	"github.com/matzehuels/panzoom/pkg/script"
	"github.com/matzehuels/panzoom/pkg/viewport"
)

const (
	// chromeRows is the number of terminal rows not used by the plot: the
	// title, the status line and the help line.
	chromeRows = 3

	// panFraction is how far one key press pans, as a share of the plot.
	panFraction = 0.1

	// zoomDelta is the pixel-mode wheel delta of one zoom key or wheel notch.
	zoomDelta = 100.0
)

// exploreMargins leave room for tick labels in a terminal: eight columns on
// the left and two rows below the plot.
var exploreMargins = viewport.Margins{Top: 2, Right: 2, Bottom: 4, Left: 8}

// Styles
var (
	exploreTitleStyle  = StyleTitle.Padding(0, 1)
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
	exploreUserStyle   = lipgloss.NewStyle().Foreground(colorGreen)
)

// =============================================================================
// Zoom Target
// =============================================================================

// zoomTarget selects which axes keyboard zoom and pan act on.
type zoomTarget int

const (
	targetBoth zoomTarget = iota
	targetX
	targetY
)

func (t zoomTarget) String() string {
	switch t {
	case targetX:
		return "x"
	case targetY:
		return "y"
	}
	return "x+y"
}

// =============================================================================
// Key Bindings
// =============================================================================

type exploreKeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	ZoomIn  key.Binding
	ZoomOut key.Binding
	Target  key.Binding
	Reset   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// ShortHelp implements help.KeyMap.
func (k exploreKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.ZoomIn, k.ZoomOut, k.Target, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k exploreKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.ZoomIn, k.ZoomOut, k.Target},
		{k.Reset, k.Help, k.Quit},
	}
}

var exploreKeys = exploreKeyMap{
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
	ZoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
	ZoomOut: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
	Target:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "x / y / both")),
	Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// =============================================================================
// ExploreModel - Interactive chart viewport
// =============================================================================

// ExploreModel is the bubbletea model for exploring a chart in the terminal.
// One terminal cell is one text.CellWidth x text.CellHeight pixel block of
// viewport space. Mouse wheel over the plot zooms both axes, over an axis
// only that axis; dragging pans.
type ExploreModel struct {
	Chart *config.Chart

	v       *viewport.Viewport
	surface *text.Surface
	rec     *script.Recorder
	keys    exploreKeyMap
	help    help.Model

	target   zoomTarget
	width    int
	height   int
	dragging bool

	last  []script.Notification
	point *viewport.DataPoint
	err   error
}

// NewExploreModel builds a viewport for chart on a text surface. The
// viewport stays unsized until the first window size message.
func NewExploreModel(chart *config.Chart) (ExploreModel, error) {
	surf := text.New()
	rec := &script.Recorder{}
	cfg := rec.Attach(chart.ViewportConfig(viewport.Config{Surface: surf}))
	margins := exploreMargins
	cfg.Margins = &margins
	v, err := viewport.New(cfg)
	if err != nil {
		return ExploreModel{}, err
	}
	return ExploreModel{
		Chart:   chart,
		v:       v,
		surface: surf,
		rec:     rec,
		keys:    exploreKeys,
		help:    help.New(),
	}, nil
}

// Viewport returns the viewport being explored.
func (m ExploreModel) Viewport() *viewport.Viewport { return m.v }

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		rows := msg.Height - chromeRows
		if rows < 0 {
			rows = 0
		}
		// Resizing drops any active drag.
		m.dragging = false
		m.do(func() error {
			return m.v.Resize(float64(msg.Width)*text.CellWidth, float64(rows)*text.CellHeight)
		})

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m ExploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	plot := m.v.PlotRect()
	dx := (plot.URx - plot.LLx) * panFraction
	dy := (plot.URy - plot.LLy) * panFraction

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Target):
		m.target = (m.target + 1) % 3
	case key.Matches(msg, m.keys.Reset):
		m.point = nil
		m.do(m.v.Reset)
	case key.Matches(msg, m.keys.ZoomIn):
		m.do(func() error { return m.v.Wheel(m.focus(), -zoomDelta, gesture.WheelPixel, false) })
	case key.Matches(msg, m.keys.ZoomOut):
		m.do(func() error { return m.v.Wheel(m.focus(), zoomDelta, gesture.WheelPixel, false) })
	case key.Matches(msg, m.keys.Left):
		m.do(func() error { return m.pan(vec.Vec2{X: dx}) })
	case key.Matches(msg, m.keys.Right):
		m.do(func() error { return m.pan(vec.Vec2{X: -dx}) })
	case key.Matches(msg, m.keys.Up):
		m.do(func() error { return m.pan(vec.Vec2{Y: dy}) })
	case key.Matches(msg, m.keys.Down):
		m.do(func() error { return m.pan(vec.Vec2{Y: -dy}) })
	}
	return m, nil
}

func (m *ExploreModel) handleMouse(msg tea.MouseMsg) {
	p := m.pixel(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.do(func() error { return m.v.Wheel(p, -zoomDelta, gesture.WheelPixel, msg.Ctrl) })
	case msg.Button == tea.MouseButtonWheelDown:
		m.do(func() error { return m.v.Wheel(p, zoomDelta, gesture.WheelPixel, msg.Ctrl) })
	case msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress:
		m.do(func() error {
			dp, err := m.v.Click(p.X, p.Y, vec.Vec2{})
			if err == nil {
				m.point = &dp
			}
			return err
		})
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.dragging = true
		m.do(func() error { return m.v.PointerDown(0, p) })
	case msg.Action == tea.MouseActionMotion && m.dragging:
		m.do(func() error { return m.v.PointerMove(0, p) })
	case msg.Action == tea.MouseActionRelease && m.dragging:
		m.dragging = false
		m.do(func() error { return m.v.PointerUp(0) })
	}
}

// do runs one viewport operation and collects its notifications.
func (m *ExploreModel) do(fn func() error) {
	m.err = fn()
	m.last = m.rec.Take()
}

// pan drags a single pointer by d from the current focus.
func (m *ExploreModel) pan(d vec.Vec2) error {
	from := m.focus()
	if err := m.v.PointerDown(0, from); err != nil {
		return err
	}
	if err := m.v.PointerMove(0, from.Add(d)); err != nil {
		return err
	}
	return m.v.PointerUp(0)
}

// focus is where keyboard gestures happen: the plot centre for both axes,
// below the plot for x alone and left of it for y alone.
func (m ExploreModel) focus() vec.Vec2 {
	plot := m.v.PlotRect()
	c := vec.Vec2{X: (plot.LLx + plot.URx) / 2, Y: (plot.LLy + plot.URy) / 2}
	switch m.target {
	case targetX:
		c.Y = plot.URy + text.CellHeight
	case targetY:
		c.X = plot.LLx - text.CellWidth
	}
	return c
}

// pixel converts a terminal cell to the viewport pixel at its centre.
func (m ExploreModel) pixel(col, row int) vec.Vec2 {
	return vec.Vec2{
		X: (float64(col) + 0.5) * text.CellWidth,
		Y: (float64(row-1) + 0.5) * text.CellHeight,
	}
}

func (m ExploreModel) View() string {
	var b strings.Builder

	title := m.Chart.Title
	if title == "" {
		title = appName
	}
	b.WriteString(exploreTitleStyle.Render(title))
	b.WriteString("\n")

	if !m.v.Ready() {
		b.WriteString(StyleWarning.Render("Terminal too small"))
		b.WriteString("\n")
		return b.String()
	}

	grid := m.surface.Render(m.v.Context())
	b.WriteString(grid.String())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// status summarizes both domains, the gesture target and the last result.
func (m ExploreModel) status() string {
	x, y := m.v.XScale().Domain(), m.v.YScale().Domain()
	line := exploreStatusStyle.Render(fmt.Sprintf("x %s  y %s  [%s]", x, y, m.target))

	switch {
	case m.err != nil:
		line += "  " + exploreErrorStyle.Render(m.err.Error())
	case m.point != nil:
		line += "  " + StyleHighlight.Render(fmt.Sprintf("(%g, %g)", m.point.X, m.point.Y))
	}
	if n := len(m.last); n > 0 {
		note := fmt.Sprintf("%d notified", n)
		if m.last[n-1].User {
			line += "  " + exploreUserStyle.Render(note)
		} else {
			line += "  " + StyleDim.Render(note)
		}
	}
	return line
}
