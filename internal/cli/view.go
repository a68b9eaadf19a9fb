package cli

import (
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/davemaier/orbitmap/pkg/engine"
	"github.com/davemaier/orbitmap/pkg/pipeline"
	"github.com/davemaier/orbitmap/pkg/snapshot"
	"github.com/davemaier/orbitmap/pkg/tree"
)

// viewCommand creates the view command for exploring a map in the terminal.
func (c *CLI) viewCommand() *cobra.Command {
	popts := pipeline.Options{}
	popts.SetLayoutDefaults()

	cmd := &cobra.Command{
		Use:   "view [snapshot.json]",
		Short: "Explore a folder map interactively in the terminal",
		Long: `Explore a folder map interactively in the terminal.

The layout runs live: folders orbit their parents and settle as you watch.
Use j/k or the arrow keys to move the selection, enter or space to expand
or collapse the selected folder, d to pick the folder up and drag it with
the arrow keys (d again drops it), and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.ReadSnapshotFile(args[0])
			if err != nil {
				return fmt.Errorf("load snapshot %s: %w", args[0], err)
			}
			if err := snap.Validate(); err != nil {
				return err
			}
			t := snap.Tree()

			popts.Engine.Logger = c.Logger
			eng := engine.New(popts.Engine)
			eng.SetViewport(pipeline.DefaultWidth, pipeline.DefaultHeight)
			eng.SetTree(t)
			defer eng.Detach()
			expandToDepth(eng, popts.ExpandDepth)

			m := newViewModel(eng, snap.Name)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&popts.ExpandDepth, "expand-depth", popts.ExpandDepth, "open every branch shallower than this depth")
	return cmd
}

// expandToDepth opens every branch shallower than depth, parents first so
// each toggle lands on a visible node.
func expandToDepth(eng *engine.Engine, depth int) {
	t := eng.Tree()
	var open []*tree.Node
	for _, n := range t.Nodes() {
		if !n.IsLeaf() && n.Depth < depth {
			open = append(open, n)
		}
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].Depth < open[j].Depth })
	for _, n := range open {
		if !eng.Expansion().IsExpanded(n.ID) {
			eng.ToggleExpand(n.ID)
		}
	}
}

// =============================================================================
// Model
// =============================================================================

const viewFPS = 30

type viewTickMsg time.Time

func viewTick() tea.Cmd {
	return tea.Tick(time.Second/viewFPS, func(t time.Time) tea.Msg {
		return viewTickMsg(t)
	})
}

var (
	viewLeafStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	viewBranchStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	viewSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	viewEdgeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	viewStatusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	viewTitleStyle    = lipgloss.NewStyle().Bold(true)
)

// viewModel runs the engine inside a bubbletea program, projecting the
// simulated positions onto the terminal grid each frame.
type viewModel struct {
	eng  *engine.Engine
	name string

	cols, rows int
	selected   int    // index into visibleIDs
	dragging   string // node id while a keyboard drag is active
}

func newViewModel(eng *engine.Engine, name string) viewModel {
	return viewModel{eng: eng, name: name}
}

func (m viewModel) Init() tea.Cmd {
	return viewTick()
}

// visibleIDs lists the currently simulated nodes in tree order, so the
// selection cursor walks parents before children.
func (m viewModel) visibleIDs() []string {
	present := make(map[string]bool)
	for _, p := range m.eng.Positions() {
		present[p.ID] = true
	}
	t := m.eng.Tree()
	ids := make([]string, 0, len(present))
	for _, id := range t.IDs() {
		if present[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewTickMsg:
		if !m.eng.Settled() {
			m.eng.Step(1)
		}
		if n := len(m.visibleIDs()); m.selected >= n && n > 0 {
			m.selected = n - 1
		}
		return m, viewTick()

	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		// Terminal cells are roughly twice as tall as wide; double the
		// simulated height so circles stay circular on screen.
		if m.cols > 0 && m.rows > 2 {
			m.eng.SetViewport(float64(m.cols), float64((m.rows-2)*2))
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.dragging != "" {
				m.eng.DragEnd(m.dragging)
				m.dragging = ""
				return m, nil
			}
			return m, tea.Quit
		case "d":
			if m.dragging != "" {
				m.eng.DragEnd(m.dragging)
				m.dragging = ""
				return m, nil
			}
			ids := m.visibleIDs()
			if m.selected >= 0 && m.selected < len(ids) {
				m.dragging = ids[m.selected]
				m.eng.DragStart(m.dragging)
			}
		case "up", "k":
			if m.dragging != "" {
				m.moveDrag(0, -dragStep)
			} else if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.dragging != "" {
				m.moveDrag(0, dragStep)
			} else if m.selected < len(m.visibleIDs())-1 {
				m.selected++
			}
		case "left", "h":
			if m.dragging != "" {
				m.moveDrag(-dragStep, 0)
			}
		case "right", "l":
			if m.dragging != "" {
				m.moveDrag(dragStep, 0)
			}
		case "enter", " ":
			if m.dragging != "" {
				m.eng.DragEnd(m.dragging)
				m.dragging = ""
				return m, nil
			}
			ids := m.visibleIDs()
			if m.selected < len(ids) {
				m.eng.ToggleExpand(ids[m.selected])
			}
		}
		return m, nil
	}
	return m, nil
}

// dragStep is the distance one keypress moves a dragged node, in simulated
// units.
const dragStep = 4.0

func (m *viewModel) moveDrag(dx, dy float64) {
	for _, p := range m.eng.Positions() {
		if p.ID == m.dragging {
			m.eng.DragMove(m.dragging, p.X+dx, p.Y+dy)
			return
		}
	}
}

// drawLabel writes label into row one rune per cell starting at col,
// clipped at the right edge. Ranging over a string yields byte offsets,
// so the column is tracked separately to keep multibyte names contiguous.
func drawLabel(row []string, col int, label string, style lipgloss.Style) {
	for _, r := range label {
		if col >= len(row) {
			return
		}
		row[col] = style.Render(string(r))
		col++
	}
}

func (m viewModel) View() string {
	if m.cols == 0 || m.rows < 4 {
		return "loading..."
	}

	gridRows := m.rows - 2
	grid := make([][]string, gridRows)
	for i := range grid {
		grid[i] = make([]string, m.cols)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	put := func(x, y float64, s string) (int, int, bool) {
		col, row := int(x), int(y/2)
		if col < 0 || col >= m.cols || row < 0 || row >= gridRows {
			return 0, 0, false
		}
		grid[row][col] = s
		return col, row, true
	}

	for _, l := range m.eng.EdgeLines() {
		put((l.X1+l.X2)/2, (l.Y1+l.Y2)/2, viewEdgeStyle.Render("·"))
	}

	ids := m.visibleIDs()
	if m.selected >= len(ids) {
		m.selected = len(ids) - 1
	}
	t := m.eng.Tree()
	exp := m.eng.Expansion()
	var selectedName string
	for _, p := range m.eng.Positions() {
		n, ok := t.Node(p.ID)
		if !ok {
			continue
		}
		marker, style := "●", viewLeafStyle
		if !n.IsLeaf() {
			style = viewBranchStyle
			if exp.IsExpanded(p.ID) {
				marker = "◉"
			} else {
				marker = "○"
			}
		}
		isSelected := m.selected >= 0 && m.selected < len(ids) && ids[m.selected] == p.ID
		if isSelected {
			style = viewSelectedStyle
			selectedName = n.Name
		}
		if col, row, ok := put(p.X, p.Y, style.Render(marker)); ok && isSelected {
			drawLabel(grid[row], col+1, " "+n.Name, style)
		}
	}

	var out string
	out += viewTitleStyle.Render(m.name)
	if selectedName != "" {
		out += viewStatusStyle.Render("  " + selectedName)
	}
	out += "\n"
	for _, row := range grid {
		for _, cell := range row {
			out += cell
		}
		out += "\n"
	}

	status := "settling"
	if m.eng.Settled() {
		status = "settled"
	}
	help := "j/k select · enter expand · d drag · q quit"
	if m.dragging != "" {
		status = "dragging"
		help = "arrows move · d drop · esc release"
	}
	out += viewStatusStyle.Render(fmt.Sprintf("%s · %d folders · %s", status, len(ids), help))
	return out
}
