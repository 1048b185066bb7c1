package reconcile

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

// Service owns the active reconciliation session. Importing a statement
// replaces the previous session and everything tracked in it.
type Service struct {
	importer *importer.Service
	engine   *matching.Engine
	reader   LedgerReader
	writer   LedgerWriter
	aliases  Aliases
	logger   *slog.Logger

	mu     sync.RWMutex
	active *Session
}

// NewService wires the session collaborators. aliases may be nil.
func NewService(imp *importer.Service, engine *matching.Engine, reader LedgerReader, writer LedgerWriter, aliases Aliases, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		importer: imp,
		engine:   engine,
		reader:   reader,
		writer:   writer,
		aliases:  aliases,
		logger:   logger,
	}
}

// Import parses the file, matches it against the ledger and makes it the
// active session. On error the previous session stays active.
func (s *Service) Import(ctx context.Context, filename string, data []byte) (*Session, error) {
	st, err := s.importer.Import(filename, data)
	if err != nil {
		return nil, err
	}

	return s.Load(ctx, st)
}

// Load makes an already parsed statement the active session.
func (s *Service) Load(ctx context.Context, st *statement.Statement) (*Session, error) {
	session, err := NewSession(ctx, s.engine, s.reader, s.writer, st)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.active = session
	s.mu.Unlock()

	sum := session.Summary()
	s.logger.Info("statement imported",
		"format", st.Format,
		"account", st.AccountNumber,
		"movements", sum.Movements,
		"suggested", sum.Suggested,
	)

	return session, nil
}

func (s *Service) Active() (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return nil, ErrNoActiveStatement
	}

	return s.active, nil
}

func (s *Service) Discard() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
}

func (s *Service) Reconcile(ctx context.Context, movementID string, transactionID uuid.UUID) (matching.Result, error) {
	session, err := s.Active()
	if err != nil {
		return matching.Result{}, err
	}

	res, err := session.Reconcile(ctx, movementID, transactionID)
	if err != nil {
		return matching.Result{}, err
	}

	s.logger.Info("movement reconciled", "movement", movementID, "transaction", transactionID)

	return res, nil
}

// CreateAndReconcile creates the ledger entry for a movement and links it.
// Without an operator description the learned alias for the bank text is
// used; an operator description that differs from the bank text is learned.
func (s *Service) CreateAndReconcile(ctx context.Context, movementID string, fields DerivedFields) (*transaction.Transaction, matching.Result, error) {
	session, err := s.Active()
	if err != nil {
		return nil, matching.Result{}, err
	}

	current, err := session.Result(movementID)
	if err != nil {
		return nil, matching.Result{}, err
	}

	raw := current.Movement.Description
	learn := fields.Description != "" && fields.Description != raw

	if fields.Description == "" && s.aliases != nil {
		suggested, err := s.aliases.Suggest(ctx, raw)
		if err != nil {
			s.logger.Warn("alias lookup failed", "movement", movementID, "error", err)
		}

		fields.Description = suggested
	}

	tx, res, err := session.CreateAndReconcile(ctx, movementID, fields)
	if err != nil {
		return nil, matching.Result{}, err
	}

	s.logger.Info("movement reconciled with new transaction", "movement", movementID, "transaction", tx.ID)

	if learn && s.aliases != nil {
		if err := s.aliases.Learn(ctx, raw, fields.Description); err != nil {
			s.logger.Warn("learning alias failed", "movement", movementID, "error", err)
		}
	}

	return tx, res, nil
}

func (s *Service) Ignore(ctx context.Context, movementID string) (matching.Result, error) {
	session, err := s.Active()
	if err != nil {
		return matching.Result{}, err
	}

	res, err := session.Ignore(ctx, movementID)
	if err != nil {
		return matching.Result{}, err
	}

	s.logger.Info("movement ignored", "movement", movementID)

	return res, nil
}

func (s *Service) Refresh(ctx context.Context) error {
	session, err := s.Active()
	if err != nil {
		return err
	}

	return session.Refresh(ctx)
}
