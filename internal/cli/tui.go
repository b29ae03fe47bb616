package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dverbeek/patchwork/pkg/editor"
	"github.com/dverbeek/patchwork/pkg/snapshot"
)

// editCommand creates the edit command: open a snapshot in the terminal
// viewer, move and connect nodes with the keyboard, and save back to disk.
func (c *CLI) editCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <snapshot.json>",
		Short: "Edit a snapshot in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.editorOptions()
			if err != nil {
				return err
			}

			surf := editor.NewHeadless()
			ed := editor.New(surf, opts)

			if _, err := os.Stat(args[0]); err == nil {
				snap, err := snapshot.ReadFile(args[0])
				if err != nil {
					return err
				}
				if err := ed.Import(snap, true); err != nil {
					return err
				}
			}

			m := newCanvasModel(ed, surf, args[0])
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	return cmd
}

// canvasModel is the bubbletea model for the terminal canvas. All edits go
// through the editor facade; selection and connecting are driven by
// synthesized pointer input so the terminal exercises the same interaction
// machinery a pointer host would.
type canvasModel struct {
	ed   *editor.Editor
	surf *editor.Headless
	path string

	width  int
	height int
	status string
}

func newCanvasModel(ed *editor.Editor, surf *editor.Headless, path string) canvasModel {
	return canvasModel{
		ed:     ed,
		surf:   surf,
		path:   path,
		width:  80,
		height: 24,
		status: "ready",
	}
}

func (m canvasModel) Init() tea.Cmd {
	return nil
}

func (m canvasModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.cycleSelection(1)
		case "shift+tab":
			m.cycleSelection(-1)
		case "up":
			m.moveSelected(0, -gridStepY)
		case "down":
			m.moveSelected(0, gridStepY)
		case "left":
			m.moveSelected(-gridStepX, 0)
		case "right":
			m.moveSelected(gridStepX, 0)
		case "c":
			m.connectToNext()
		case "d", "delete", "backspace":
			m.ed.KeyDown("Delete", false)
			m.status = "deleted selection"
		case "+", "=":
			m.ed.ZoomIn()
			m.status = fmt.Sprintf("zoom %.1f", m.ed.Zoom())
		case "-":
			m.ed.ZoomOut()
			m.status = fmt.Sprintf("zoom %.1f", m.ed.Zoom())
		case "0":
			m.ed.ResetZoom()
			m.status = "zoom 1.0"
		case "s":
			if err := snapshot.WriteFile(m.ed.Export(true), m.path); err != nil {
				m.status = "save failed: " + err.Error()
			} else {
				m.status = "saved " + m.path
			}
		}
	}
	return m, nil
}

// nodeIDs lists the active module's node ids in stable order.
func (m *canvasModel) nodeIDs() []string {
	nodes := m.ed.Graph().NodesIn(m.ed.Graph().Active())
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// cycleSelection clicks the next node's body center.
func (m *canvasModel) cycleSelection(step int) {
	ids := m.nodeIDs()
	if len(ids) == 0 {
		return
	}
	idx := 0
	if sel := m.ed.Selection(); sel.Kind == editor.HitNode {
		for i, id := range ids {
			if id == sel.Node {
				idx = (i + step + len(ids)) % len(ids)
				break
			}
		}
	}
	m.clickNode(ids[idx])
}

func (m *canvasModel) clickNode(id string) {
	rect, ok := m.surf.NodeRect(id)
	if !ok {
		return
	}
	c := rect.Center()
	m.ed.PointerDown(c.X, c.Y)
	m.ed.PointerUp(c.X, c.Y)
	m.status = "selected " + id
}

func (m *canvasModel) moveSelected(dx, dy float64) {
	sel := m.ed.Selection()
	if sel.Kind != editor.HitNode {
		return
	}
	n, ok := m.ed.Graph().Node(sel.Node)
	if !ok {
		return
	}
	m.ed.MoveNode(sel.Node, n.X+dx, n.Y+dy, false)
}

// connectToNext drags from the selected node's first output to the next
// node's first input, through the pointer state machine.
func (m *canvasModel) connectToNext() {
	sel := m.ed.Selection()
	if sel.Kind != editor.HitNode {
		m.status = "select a node first"
		return
	}
	ids := m.nodeIDs()
	if len(ids) < 2 {
		return
	}
	var target string
	for i, id := range ids {
		if id == sel.Node {
			target = ids[(i+1)%len(ids)]
			break
		}
	}

	out, okOut := m.surf.OutputAnchor(sel.Node, 1)
	in, okIn := m.surf.InputAnchor(target, 1)
	if !okOut || !okIn {
		m.status = "no free ports"
		return
	}
	m.ed.PointerDown(out.Center().X, out.Center().Y)
	m.ed.PointerMove(in.Center().X, in.Center().Y)
	m.ed.PointerUp(in.Center().X, in.Center().Y)
	m.status = fmt.Sprintf("connect %s %s %s", sel.Node, iconArrow, target)
}
