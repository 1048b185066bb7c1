package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct {
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// StatementLoadedMsg is sent once an import produced an active session.
type StatementLoadedMsg struct{}

func StatementLoaded() tea.Msg {
	return StatementLoadedMsg{}
}
