package cmd

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/dragsync/internal/ui/board"
)

// app adapts the board to tea.Model.
type app struct {
	board board.Model
}

func newApp(b board.Model) *app { return &app{board: b} }

func (a *app) Init() tea.Cmd { return a.board.Init() }

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.board, cmd = a.board.Update(msg)
	return a, cmd
}

func (a *app) View() string { return a.board.View() }
