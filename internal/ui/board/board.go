// Package board is the terminal host for the drag-and-drop registry: each
// configured container is a column, items are dragged with the keyboard or
// the mouse, and every reconciliation shows up in the activity line.
package board

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/dragsync/internal/dnd"
	"github.com/zjrosen/dragsync/internal/engine"
	"github.com/zjrosen/dragsync/internal/keys"
	"github.com/zjrosen/dragsync/internal/log"
	"github.com/zjrosen/dragsync/internal/pubsub"
	"github.com/zjrosen/dragsync/internal/ui/styles"
)

// ItemsFileChangedMsg is sent when the watched items file changes.
type ItemsFileChangedMsg struct{}

// Options configures the board model.
type Options struct {
	ShowStatusBar bool
	// Watch delivers a signal per items file change. Nil disables reloads.
	Watch <-chan struct{}
}

// Model is the bubbletea model of the board.
type Model struct {
	host       *Host
	keys       keys.KeyMap
	help       help.Model
	showHelp   bool
	showStatus bool

	focused int
	cursors []int
	width   int
	height  int

	lastChange string
	lastLog    string

	changes *pubsub.ContinuousListener[dnd.Change]
	logs    *log.LogListener
	watch   <-chan struct{}
}

// New creates the board over host. Listeners live as long as ctx.
func New(ctx context.Context, host *Host, opts Options) Model {
	return Model{
		host:       host,
		keys:       keys.DefaultKeyMap(),
		help:       help.New(),
		showStatus: opts.ShowStatusBar,
		cursors:    make([]int, len(host.Boxes())),
		changes:    pubsub.NewContinuousListener(ctx, host.Changes()),
		logs:       log.NewListener(ctx),
		watch:      opts.Watch,
	}
}

// Init starts listening for changes, log entries and items file edits.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.changes.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	if m.watch != nil {
		cmds = append(cmds, waitForItemsFile(m.watch))
	}
	return tea.Batch(cmds...)
}

func waitForItemsFile(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return ItemsFileChangedMsg{}
	}
}

// Focused returns the focused column index.
func (m Model) Focused() int { return m.focused }

// Cursor returns the cursor of the focused column.
func (m Model) Cursor() int { return m.cursors[m.focused] }

// Host returns the board's host.
func (m Model) Host() *Host { return m.host }

func (m Model) box(col int) *engine.Box {
	boxes := m.host.Boxes()
	if col < 0 || col >= len(boxes) {
		return nil
	}
	return boxes[col]
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pubsub.Event[dnd.Change]:
		m.lastChange = msg.Payload.String()
		return m, m.changes.Listen()

	case log.LogEvent:
		m.lastLog = msg.Payload
		return m, m.logs.Listen()

	case ItemsFileChangedMsg:
		if m.host.Dragging() {
			_ = m.host.Cancel()
		}
		if err := m.host.Reload(); err != nil {
			log.ErrorErr(log.CatUI, "Reloading items failed", err)
			m.host.setStatus(StatusError, "reload: %v", err)
		}
		m.clampCursors()
		return m, waitForItemsFile(m.watch)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		if m.host.Dragging() {
			_ = m.host.Cancel()
		}
		return m, tea.Quit
	}
	if m.host.Dragging() {
		return m.handleDragKey(msg), nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.focus(m.focused - 1)
	case key.Matches(msg, m.keys.Right):
		m.focus(m.focused + 1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, false)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, false)
	case key.Matches(msg, m.keys.Grab):
		if b := m.box(m.focused); b != nil {
			if err := m.host.Grab(b, m.Cursor()); err == nil {
				_ = m.host.Hover(b, m.Cursor())
			}
		}
	case key.Matches(msg, m.keys.Inspect):
		if b := m.box(m.focused); b != nil {
			if desc, ok := m.host.Inspect(b, m.Cursor()); ok {
				m.host.setStatus(StatusInfo, "%s", desc)
			}
		}
	case key.Matches(msg, m.keys.Verify):
		m.verifyAll()
	case key.Matches(msg, m.keys.Reload):
		if err := m.host.Reload(); err != nil {
			m.host.setStatus(StatusError, "reload: %v", err)
		}
		m.clampCursors()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keys.ToggleStatus):
		m.showStatus = !m.showStatus
	}
	return m, nil
}

// handleDragKey moves the drop position, which ranges over every row plus
// the tail of the focused column.
func (m Model) handleDragKey(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.focus(m.focused - 1)
		m.hover()
	case key.Matches(msg, m.keys.Right):
		m.focus(m.focused + 1)
		m.hover()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1, true)
		m.hover()
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1, true)
		m.hover()
	case key.Matches(msg, m.keys.Drop):
		m.settle(m.host.Drop(m.box(m.focused), m.Cursor()))
	case key.Matches(msg, m.keys.Spill):
		m.settle(m.host.Spill())
	case key.Matches(msg, m.keys.Cancel):
		m.settle(m.host.Cancel())
	}
	return m
}

func (m *Model) hover() {
	if b := m.box(m.focused); b != nil {
		_ = m.host.Hover(b, m.Cursor())
	}
}

func (m *Model) settle(err error) {
	if err != nil && !errors.Is(err, engine.ErrNotDragging) {
		m.host.setStatus(StatusError, "%v", err)
	}
	m.clampCursors()
}

func (m *Model) focus(col int) {
	if col < 0 || col >= len(m.cursors) {
		return
	}
	m.focused = col
	m.clampCursors()
}

func (m *Model) moveCursor(delta int, dragging bool) {
	m.cursors[m.focused] += delta
	m.clampCursor(m.focused, dragging)
}

func (m *Model) clampCursors() {
	for i := range m.cursors {
		m.clampCursor(i, m.host.Dragging())
	}
}

// clampCursor bounds a cursor to the rows of its column, or to the rows plus
// the tail position while dragging.
func (m *Model) clampCursor(col int, dragging bool) {
	b := m.box(col)
	if b == nil {
		return
	}
	hi := b.Len() - 1
	if dragging {
		hi = b.Len()
	}
	m.cursors[col] = max(min(m.cursors[col], hi), 0)
}

func (m *Model) verifyAll() {
	var errs []error
	for _, g := range m.host.Registry().State().Groups() {
		if err := m.host.Registry().Verify(g.ID()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		m.host.setStatus(StatusSuccess, "all containers in sync")
		return
	}
	m.host.setStatus(StatusError, "%s", firstLine(errors.Join(errs...).Error()))
}

// handleMouse maps presses, motion and releases onto the gesture: press on an
// item grabs it, motion hovers, release drops where the pointer is or spills
// outside every column.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionMotion {
		return m
	}
	col, index, ok := m.hitTest(msg)

	switch msg.Action {
	case tea.MouseActionPress:
		if !ok || m.host.Dragging() {
			return m
		}
		b := m.box(col)
		if index >= b.Len() {
			return m
		}
		m.focused = col
		m.cursors[col] = index
		if err := m.host.Grab(b, index); err == nil {
			m.hover()
		}

	case tea.MouseActionMotion:
		if !ok || !m.host.Dragging() {
			return m
		}
		m.focused = col
		m.cursors[col] = index
		m.hover()

	case tea.MouseActionRelease:
		if !m.host.Dragging() {
			return m
		}
		if !ok {
			m.settle(m.host.Spill())
			return m
		}
		m.focused = col
		m.cursors[col] = index
		m.settle(m.host.Drop(m.box(col), index))
	}
	return m
}

// hitTest finds the column and drop index under the pointer. The shadow row
// maps to the drop position it shows, and a point inside a column but below
// its items is the tail.
func (m Model) hitTest(msg tea.MouseMsg) (col, index int, ok bool) {
	if m.host.Dragging() {
		if z := zone.Get(makeShadowZoneID(m.focused)); z != nil && z.InBounds(msg) {
			return m.focused, m.Cursor(), true
		}
	}
	for c, b := range m.host.Boxes() {
		for i := range b.Len() {
			if z := zone.Get(makeItemZoneID(c, i)); z != nil && z.InBounds(msg) {
				return c, i, true
			}
		}
	}
	for c, b := range m.host.Boxes() {
		if z := zone.Get(makeColumnZoneID(c)); z != nil && z.InBounds(msg) {
			return c, b.Len(), true
		}
	}
	return 0, 0, false
}

// View renders the board.
func (m Model) View() string {
	boxes := m.host.Boxes()
	if len(boxes) == 0 {
		return lipgloss.NewStyle().Width(m.width).Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(styles.ItemMutedStyle.Render("No containers configured"))
	}

	footer := m.footer()
	height := max(m.height-lipgloss.Height(footer), 3)
	width := max(m.width/len(boxes), 8)

	dragging := m.host.Dragging()
	dragged := m.host.Dragged()
	cols := make([]string, len(boxes))
	for i, b := range boxes {
		color := lipgloss.TerminalColor(styles.BorderDefaultColor)
		if c := m.host.Color(b); c != "" {
			color = lipgloss.Color(c)
		}
		cols[i] = columnView{
			index:    i,
			box:      b,
			title:    m.host.Title(b),
			color:    color,
			focused:  i == m.focused,
			cursor:   m.cursors[i],
			dragged:  dragged,
			dragging: dragging,
			label:    m.host.Label,
		}.render(width, height)
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	if footer == "" {
		return zone.Scan(board)
	}
	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, board, footer))
}

func (m Model) footer() string {
	var parts []string
	if m.showStatus {
		parts = append(parts, m.statusLine())
		if m.lastChange != "" {
			parts = append(parts, styles.StatusBarStyle.Render("last change: "+m.lastChange))
		}
	}
	if m.showHelp {
		parts = append(parts, m.help.FullHelpView(m.keys.FullHelp()))
	} else if m.host.Dragging() {
		parts = append(parts, m.help.ShortHelpView(m.keys.Dragging()))
	} else {
		parts = append(parts, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) statusLine() string {
	st := m.host.Status()
	text := st.Text
	if m.host.Dragging() {
		mode := "moving"
		if m.host.Copying() {
			mode = "copying"
		}
		text = fmt.Sprintf("%s %s", mode, m.host.Label(m.host.Dragged()))
	}

	style := styles.StatusBarStyle
	switch st.Level {
	case StatusSuccess:
		style = style.Inherit(styles.StatusSuccessStyle)
	case StatusWarning:
		style = style.Inherit(styles.StatusWarningStyle)
	case StatusError:
		style = style.Inherit(styles.StatusErrorStyle)
	}
	line := style.Render(text)
	if m.lastLog != "" && st.Level == StatusInfo && !m.host.Dragging() {
		line = lipgloss.JoinHorizontal(lipgloss.Top, line, styles.StatusBarStyle.Render("· "+firstLine(m.lastLog)))
	}
	return line
}
