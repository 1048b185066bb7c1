package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/conciliar/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/conciliar/internal/alias"
	aliasStore "github.com/MrJamesThe3rd/conciliar/internal/alias/store"
	"github.com/MrJamesThe3rd/conciliar/internal/config"
	"github.com/MrJamesThe3rd/conciliar/internal/database"
	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/logging"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
	txStore "github.com/MrJamesThe3rd/conciliar/internal/transaction/store"
)

const logFile = "conciliar-tui.log"

type model struct {
	txService        *transaction.Service
	reconcileService *reconcile.Service

	currentView View

	importView    view.ImportModel
	reconcileView view.ReconcileModel
	ledgerView    view.LedgerModel
}

type View int

const (
	ViewMenu      View = 0
	ViewImport    View = 1
	ViewReconcile View = 2
	ViewLedger    View = 3
)

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}

	// the terminal belongs to the UI, so logs go to a file
	f, err := tea.LogToFile(logFile, "")
	if err != nil {
		fatal("failed to open log file", err)
	}

	logger := logging.NewWithWriter(f, cfg.App.LogLevel)

	matchCfg, err := cfg.MatchingConfig()
	if err != nil {
		fatal("invalid matching config", err)
	}

	engine, err := matching.NewEngine(matchCfg)
	if err != nil {
		fatal("invalid matching config", err)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		fatal("failed to connect to database", err)
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(context.Background(), db); err != nil {
			fatal("failed to migrate database", err)
		}
	}

	txSvc := transaction.NewService(txStore.New(db))
	aliasSvc := alias.NewService(aliasStore.New(db))
	recSvc := reconcile.NewService(importer.NewService(), engine, txSvc, txSvc, aliasSvc, logger)

	return model{
		txService:        txSvc,
		reconcileService: recSvc,
		currentView:      ViewMenu,
		importView:       view.NewImportModel(recSvc),
		reconcileView:    view.NewReconcileModel(recSvc),
		ledgerView:       view.NewLedgerModel(txSvc),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.reconcileService)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewReconcile
				m.reconcileView = view.NewReconcileModel(m.reconcileService)

				return m, m.reconcileView.Init()
			case "3":
				m.currentView = ViewLedger
				m.ledgerView = view.NewLedgerModel(m.txService)

				return m, m.ledgerView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.StatementLoadedMsg:
		m.currentView = ViewReconcile
		m.reconcileView = view.NewReconcileModel(m.reconcileService)

		return m, m.reconcileView.Init()
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewReconcile:
		var newModel tea.Model
		newModel, cmd = m.reconcileView.Update(msg)
		m.reconcileView = newModel.(view.ReconcileModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		active := "none"
		if session, err := m.reconcileService.Active(); err == nil {
			st := session.Statement()
			sum := session.Summary()
			active = fmt.Sprintf("%s %s (%d pending)", st.BankName, st.AccountNumber, sum.Pending)
		}

		return lipgloss.NewStyle().Padding(2).Render(
			"Conciliar\n\n" +
				"Active statement: " + active + "\n\n" +
				"1. Import Statement\n" +
				"2. Reconcile Movements\n" +
				"3. Browse Ledger\n\n" +
				"q. Quit",
		)
	case ViewImport:
		return m.importView.View()
	case ViewReconcile:
		return m.reconcileView.View()
	case ViewLedger:
		return m.ledgerView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
