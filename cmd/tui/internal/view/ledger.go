package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateStatus
	ledgerStateDelete
)

var statusFilters = []*transaction.Status{
	nil,
	new(transaction.StatusPending),
	new(transaction.StatusPaid),
	new(transaction.StatusCancelled),
}

var kindFilters = []*transaction.Kind{
	nil,
	new(transaction.KindExpense),
	new(transaction.KindIncome),
}

// ledgerForm is shared by pointer so huh keeps writing to the same values
// across model copies.
type ledgerForm struct {
	status  transaction.Status
	confirm bool
}

type LedgerModel struct {
	CommonModel
	txService *transaction.Service

	state ledgerState
	table table.Model
	txs   []*transaction.Transaction
	form  *huh.Form
	input *ledgerForm

	statusFilterIdx int
	kindFilterIdx   int
	timeframe       Timeframe

	loading bool
	err     error
	status  string
}

func NewLedgerModel(txSvc *transaction.Service) LedgerModel {
	columns := []table.Column{
		{Title: "Issue", Width: 12},
		{Title: "Due", Width: 12},
		{Title: "Kind", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Amount", Width: 12},
		{Title: "Description", Width: 40},
		{Title: "Cost center", Width: 16},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return LedgerModel{
		txService: txSvc,
		table:     t,
		input:     &ledgerForm{},
		loading:   true,
	}
}

func (m LedgerModel) Title() string { return "Ledger" }

func (m LedgerModel) ShortHelp() string {
	if m.state != ledgerStateBrowse {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: status | x: delete | s: status filter | k: kind filter | d: date filter | r: refresh"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m LedgerModel) filter() transaction.ListFilter {
	f := transaction.ListFilter{
		Status: statusFilters[m.statusFilterIdx],
		Kind:   kindFilters[m.kindFilterIdx],
	}

	if start, end, ok := m.timeframe.DateRange(time.Now()); ok {
		f.StartDate = &start
		f.EndDate = &end
	}

	return f
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadLedgerMsg:
		m.loading = false
		m.err = msg.err

		if msg.err != nil {
			return m, nil
		}

		m.txs = msg.txs
		m.refreshTable()

		return m, nil

	case ledgerSaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error saving: %v", msg.err)
		}

		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(msg.Height - 10)

		return m, nil
	}

	if m.state == ledgerStateBrowse {
		return m.updateBrowse(msg)
	}

	return m.updateForm(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadTxsCmd()
		case "e":
			return m.enterStatus()
		case "x":
			return m.enterDelete()
		case "s":
			m.statusFilterIdx = (m.statusFilterIdx + 1) % len(statusFilters)
			return m, m.loadTxsCmd()
		case "k":
			m.kindFilterIdx = (m.kindFilterIdx + 1) % len(kindFilters)
			return m, m.loadTxsCmd()
		case "d":
			m.timeframe = m.timeframe.Next()
			return m, m.loadTxsCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) selected() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m LedgerModel) enterStatus() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.input.status = tx.Status

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[transaction.Status]().
				Key("status").
				Title("Status").
				Options(
					huh.NewOption("Pending", transaction.StatusPending),
					huh.NewOption("Paid", transaction.StatusPaid),
					huh.NewOption("Cancelled", transaction.StatusCancelled),
				).
				Value(&m.input.status),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateStatus
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) enterDelete() (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.input.confirm = false

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title(fmt.Sprintf("Delete %q?", tx.Description)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&m.input.confirm),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateDelete
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	tx := m.selected()
	if tx == nil {
		return m, func() tea.Msg { return ledgerSaveMsg{} }
	}

	if m.state == ledgerStateDelete {
		if !m.input.confirm {
			return m, func() tea.Msg { return ledgerSaveMsg{} }
		}

		return m, m.deleteCmd(tx)
	}

	return m, m.statusCmd(tx, m.input.status)
}

func (m LedgerModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v", m.err))
	}

	statusLabel := "All"
	if f := statusFilters[m.statusFilterIdx]; f != nil {
		statusLabel = string(*f)
	}

	kindLabel := "All"
	if f := kindFilters[m.kindFilterIdx]; f != nil {
		kindLabel = string(*f)
	}

	header := fmt.Sprintf(
		"Filter: [s] Status: %s | [k] Kind: %s | [d] Date: %s",
		activeStyle(statusLabel),
		activeStyle(kindLabel),
		activeStyle(m.timeframe.String()),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state != ledgerStateBrowse && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		costCenter := ""
		if tx.CostCenter != nil {
			costCenter = *tx.CostCenter
		}

		rows = append(rows, table.Row{
			FormatDate(tx.IssueDate),
			FormatDate(tx.DueDate),
			string(tx.Kind),
			string(tx.Status),
			FormatAmount(tx.Amount),
			tx.Description,
			costCenter,
		})
	}

	m.table.SetRows(rows)
}

type loadLedgerMsg struct {
	txs []*transaction.Transaction
	err error
}

func (m LedgerModel) loadTxsCmd() tea.Cmd {
	filter := m.filter()

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		txs, err := m.txService.List(ctx, filter)

		return loadLedgerMsg{txs: txs, err: err}
	}
}

type ledgerSaveMsg struct {
	status string
	err    error
}

func (m LedgerModel) statusCmd(tx *transaction.Transaction, status transaction.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.UpdateStatus(ctx, tx.ID, status); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("%s marked %s.", tx.Description, status)}
	}
}

func (m LedgerModel) deleteCmd(tx *transaction.Transaction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.txService.Delete(ctx, tx.ID); err != nil {
			return ledgerSaveMsg{err: err}
		}

		return ledgerSaveMsg{status: fmt.Sprintf("%s deleted.", tx.Description)}
	}
}
