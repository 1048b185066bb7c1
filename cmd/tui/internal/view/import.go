package view

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	svc *reconcile.Service

	state      importState
	filePicker filepicker.Model

	summary reconcile.Summary
	stmt    statement.Statement
	status  string
	err     error
}

func NewImportModel(svc *reconcile.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".ofx", ".qfx", ".csv", ".xlsx"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		filePicker: fp,
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateResult && m.err == nil {
		return "Enter: reconcile | Esc: pick another file"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			return m.handleEsc()
		case tea.KeyEnter:
			if m.state == importStateResult && m.err == nil {
				return m, StatementLoaded
			}
		}

	case importResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = describeImportError(msg.err)
			return m, nil
		}

		m.stmt = msg.stmt
		m.summary = msg.summary
		m.status = fmt.Sprintf("Imported %d movements, %d with a suggestion.", msg.summary.Movements, msg.summary.Suggested)

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult:
		m.state = importStateFilePick
		m.err = nil
		m.status = ""

		return m, m.filePicker.Init()
	case importStateImporting:
		return m, nil
	}

	return m, Back
}

func describeImportError(err error) string {
	var perr *statement.ParseError
	if errors.As(err, &perr) {
		return "Rejected: " + perr.Error()
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			"Select a statement (OFX, CGD CSV or XLSX):\n\n" + m.filePicker.View(),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)
	if m.err != nil {
		return style.Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.status) +
				"\n\n(Esc to go back)",
		)
	}

	info := fmt.Sprintf("%s %s (%s)\nClosing balance: %s\n",
		m.stmt.BankName, m.stmt.AccountNumber, m.stmt.Currency, FormatAmount(m.stmt.ClosingBalance))

	return style.Render(
		info + "\n" +
			lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render(m.status) +
			"\n\n(Enter to reconcile, Esc to pick another file)",
	)
}

type importResultMsg struct {
	stmt    statement.Statement
	summary reconcile.Summary
	err     error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return importResultMsg{err: err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		session, err := m.svc.Import(ctx, filepath.Base(path), data)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{stmt: session.Statement(), summary: session.Summary()}
	}
}
