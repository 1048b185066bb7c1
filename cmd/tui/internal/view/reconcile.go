package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

type reconcileState int

const (
	reconcileStateList reconcileState = iota
	reconcileStateCreate
	reconcileStatePick
)

// resultItem wraps a match result to implement list.Item.
type resultItem struct {
	res matching.Result
}

func (i resultItem) Title() string {
	m := i.res.Movement
	return fmt.Sprintf("%s  %10s  %s", FormatDate(m.Date), FormatSigned(m.Amount), m.Description)
}

func (i resultItem) Description() string {
	m := i.res.Movement

	switch {
	case m.Status == statement.StatusReconciled && i.res.Suggestion != nil:
		return "linked: " + i.res.Suggestion.Description
	case m.Status == statement.StatusIgnored:
		return "ignored"
	case i.res.Matched():
		return fmt.Sprintf("suggested: %s (%d)", i.res.Suggestion.Description, i.res.Score)
	}

	return "no suggestion"
}

func (i resultItem) FilterValue() string { return i.res.Movement.Description }

type resultDelegate struct{}

func (d resultDelegate) Height() int                             { return 2 }
func (d resultDelegate) Spacing() int                            { return 1 }
func (d resultDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

var statusColors = map[statement.Status]lipgloss.Color{
	statement.StatusPending:    lipgloss.Color("214"),
	statement.StatusReconciled: lipgloss.Color("46"),
	statement.StatusIgnored:    lipgloss.Color("240"),
}

func (d resultDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(resultItem)
	if !ok {
		return
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	status := item.res.Movement.Status
	badge := lipgloss.NewStyle().
		Foreground(statusColors[status]).
		Render(fmt.Sprintf("[%-10s]", status))

	fmt.Fprintf(w, "%s%s %s\n", cursor, badge, item.Title())
	fmt.Fprintf(w, "    %s", lipgloss.NewStyle().Faint(true).Render(item.Description()))
}

// formFields is shared by pointer so huh keeps writing to the same values
// across model copies.
type formFields struct {
	description string
	costCenter  string
	candidate   string
}

type ReconcileModel struct {
	CommonModel
	svc *reconcile.Service

	state    reconcileState
	list     list.Model
	form     *huh.Form
	fields   *formFields
	selected matching.Result
	showAll  bool

	status string
	err    error
}

func NewReconcileModel(svc *reconcile.Service) ReconcileModel {
	l := list.New([]list.Item{}, resultDelegate{}, 0, 0)
	l.Title = "Movements"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()

	m := ReconcileModel{
		svc:    svc,
		list:   l,
		fields: &formFields{},
	}
	m.refreshItems()

	return m
}

func (m ReconcileModel) Title() string { return "Reconcile Statement" }

func (m ReconcileModel) ShortHelp() string {
	if m.state != reconcileStateList {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "r: accept suggestion | m: pick candidate | c: create | i: ignore | a: all/pending | ctrl+r: refresh | Esc: back"
}

func (m ReconcileModel) Init() tea.Cmd {
	return nil
}

func (m ReconcileModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionResultMsg:
		m.err = msg.err
		m.status = msg.status

		if msg.err != nil {
			m.status = describeActionError(msg.err)
		}

		m.refreshItems()

		return m, nil

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case reconcileStateCreate, reconcileStatePick:
		return m.updateForm(msg)
	}

	return m.updateList(msg)
}

func (m ReconcileModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "a":
			m.showAll = !m.showAll
			m.refreshItems()

			return m, nil
		case "ctrl+r":
			m.status = "Refreshing ledger candidates..."
			return m, m.refreshCmd()
		}

		if res, ok := m.current(); ok {
			switch keyMsg.String() {
			case "r":
				if !res.Matched() {
					m.status = "No suggestion for this movement."
					return m, nil
				}

				return m, m.reconcileCmd(res.Movement.ID, res.Suggestion.ID)
			case "i":
				return m, m.ignoreCmd(res.Movement.ID)
			case "c":
				return m.enterCreate(res)
			case "m":
				return m.enterPick(res)
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m ReconcileModel) current() (matching.Result, bool) {
	item, ok := m.list.SelectedItem().(resultItem)
	if !ok {
		return matching.Result{}, false
	}

	return item.res, true
}

func (m ReconcileModel) enterCreate(res matching.Result) (tea.Model, tea.Cmd) {
	if res.Movement.Status != statement.StatusPending {
		m.status = "Only pending movements can be reconciled."
		return m, nil
	}

	*m.fields = formFields{}
	m.selected = res

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Placeholder(res.Movement.Description).
				Description("Leave blank to use a learned alias or the bank text").
				Value(&m.fields.description),

			huh.NewInput().
				Key("cost_center").
				Title("Cost center").
				Value(&m.fields.costCenter),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = reconcileStateCreate

	return m, m.form.Init()
}

func (m ReconcileModel) enterPick(res matching.Result) (tea.Model, tea.Cmd) {
	if res.Movement.Status != statement.StatusPending {
		m.status = "Only pending movements can be reconciled."
		return m, nil
	}

	session, err := m.svc.Active()
	if err != nil {
		m.status = describeActionError(err)
		return m, nil
	}

	var options []huh.Option[string]

	for _, tx := range session.Pool() {
		if !matching.Compatible(res.Movement.Direction, tx.Kind) {
			continue
		}

		label := fmt.Sprintf("%s  %s  %s", FormatDate(tx.DueDate), FormatAmount(tx.Amount), tx.Description)
		options = append(options, huh.NewOption(label, tx.ID.String()))
	}

	if len(options) == 0 {
		m.status = "No compatible ledger entries in the pool."
		return m, nil
	}

	*m.fields = formFields{}
	m.selected = res

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("candidate").
				Title("Link to ledger entry").
				Options(options...).
				Value(&m.fields.candidate),
		),
	).WithWidth(70).WithShowHelp(false)

	m.state = reconcileStatePick

	return m, m.form.Init()
}

func (m ReconcileModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = reconcileStateList
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	state := m.state
	m.state = reconcileStateList
	m.form = nil

	if state == reconcileStatePick {
		id, err := uuid.Parse(m.fields.candidate)
		if err != nil {
			m.status = "Invalid ledger entry."
			return m, nil
		}

		return m, m.reconcileCmd(m.selected.Movement.ID, id)
	}

	fields := reconcile.DerivedFields{Description: strings.TrimSpace(m.fields.description)}
	if cc := strings.TrimSpace(m.fields.costCenter); cc != "" {
		fields.CostCenter = &cc
	}

	return m, m.createCmd(m.selected.Movement.ID, fields)
}

func (m *ReconcileModel) refreshItems() {
	session, err := m.svc.Active()
	if err != nil {
		m.list.SetItems(nil)
		m.status = describeActionError(err)

		return
	}

	results := session.Results()
	if !m.showAll {
		results = session.Pending()
	}

	items := make([]list.Item, 0, len(results))
	for _, r := range results {
		items = append(items, resultItem{res: r})
	}

	m.list.SetItems(items)

	scope := "pending"
	if m.showAll {
		scope = "all"
	}

	sum := session.Summary()
	m.list.Title = fmt.Sprintf("Movements (%s) | pending %d | reconciled %d | ignored %d",
		scope, sum.Pending, sum.Reconciled, sum.Ignored)
}

func describeActionError(err error) string {
	var collab *reconcile.CollaboratorError

	switch {
	case errors.Is(err, reconcile.ErrNoActiveStatement):
		return "No statement imported yet."
	case errors.Is(err, reconcile.ErrInvalidTransition):
		return "That movement or ledger entry is already taken."
	case errors.As(err, &collab):
		return fmt.Sprintf("Ledger unavailable, nothing changed: %v", collab.Err)
	}

	return fmt.Sprintf("Error: %v", err)
}

func (m ReconcileModel) View() string {
	if m.state != reconcileStateList && m.form != nil {
		mv := m.selected.Movement
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Render(fmt.Sprintf("%s  %s\n%s\n\n%s",
				FormatDate(mv.Date), FormatSigned(mv.Amount), mv.Description, m.form.View()))

		return lipgloss.NewStyle().Padding(1).Render(panel)
	}

	content := m.list.View()

	if m.status != "" {
		style := lipgloss.NewStyle().Faint(true)
		if m.err != nil {
			style = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		}

		content = style.Render(m.status) + "\n" + content
	}

	help := lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())

	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + help)
}

type actionResultMsg struct {
	status string
	err    error
}

func (m ReconcileModel) reconcileCmd(movementID string, txID uuid.UUID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.svc.Reconcile(ctx, movementID, txID)
		if err != nil {
			return actionResultMsg{err: err}
		}

		return actionResultMsg{status: "Linked to " + res.Suggestion.Description}
	}
}

func (m ReconcileModel) createCmd(movementID string, fields reconcile.DerivedFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		tx, _, err := m.svc.CreateAndReconcile(ctx, movementID, fields)
		if err != nil {
			return actionResultMsg{err: err}
		}

		return actionResultMsg{status: fmt.Sprintf("Created %s %s and linked it", tx.Kind, tx.Description)}
	}
}

func (m ReconcileModel) ignoreCmd(movementID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := m.svc.Ignore(ctx, movementID); err != nil {
			return actionResultMsg{err: err}
		}

		return actionResultMsg{status: "Movement ignored."}
	}
}

func (m ReconcileModel) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.svc.Refresh(ctx); err != nil {
			return actionResultMsg{err: err}
		}

		return actionResultMsg{status: "Candidates reloaded."}
	}
}
