package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/dragsync/internal/engine"
	"github.com/zjrosen/dragsync/internal/ui/styles"
)

const shadowLine = "┄┄ drop here ┄┄"

func makeItemZoneID(col, index int) string { return fmt.Sprintf("board-item-%d-%d", col, index) }

func makeColumnZoneID(col int) string { return fmt.Sprintf("board-column-%d", col) }

func makeShadowZoneID(col int) string { return fmt.Sprintf("board-shadow-%d", col) }

// columnView renders one box. cursor is the selected row, or the drop
// position while dragging, and is ignored when the column is not focused.
type columnView struct {
	index    int
	box      *engine.Box
	title    string
	color    lipgloss.TerminalColor
	focused  bool
	cursor   int
	dragged  *engine.Node
	dragging bool
	label    func(*engine.Node) string
}

func (c columnView) heading() string {
	return fmt.Sprintf("%s (%d) · %s", c.title, c.box.Len(), c.box.GroupID())
}

// lines renders the item rows, each wrapped in its zone, plus the shadow
// row while dragging over this column. The shadow has its own zone so a
// pointer resting on it keeps the current drop position.
func (c columnView) lines(innerWidth int) []string {
	nodes := c.box.Nodes()
	showShadow := c.dragging && c.focused

	if len(nodes) == 0 && !showShadow {
		return []string{styles.EmptyStyle.Render("No items")}
	}

	out := make([]string, 0, len(nodes)+1)
	for i, n := range nodes {
		if showShadow && i == c.cursor {
			out = append(out, c.shadow(innerWidth))
		}
		out = append(out, zone.Mark(makeItemZoneID(c.index, i), c.row(i, n, innerWidth)))
	}
	if showShadow && c.cursor >= len(nodes) {
		out = append(out, c.shadow(innerWidth))
	}
	return out
}

func (c columnView) shadow(innerWidth int) string {
	return zone.Mark(makeShadowZoneID(c.index), styles.ShadowStyle.Render(ansi.Truncate(shadowLine, innerWidth, "")))
}

func (c columnView) row(i int, n *engine.Node, innerWidth int) string {
	text := ansi.Truncate(c.label(n), max(innerWidth-2, 1), "…")

	switch {
	case n == c.dragged:
		return styles.GrabbedStyle.Render("⠿ " + text)
	case c.focused && !c.dragging && i == c.cursor:
		return styles.SelectionIndicatorStyle.Render(">") + " " + styles.ItemStyle.Render(text)
	default:
		return "  " + styles.ItemStyle.Render(text)
	}
}

func (c columnView) render(width, height int) string {
	content := strings.Join(c.lines(max(width-2, 1)), "\n")
	rendered := styles.RenderWithTitleBorder(content, c.heading(), width, height, c.focused, c.color, c.color)
	return zone.Mark(makeColumnZoneID(c.index), rendered)
}
