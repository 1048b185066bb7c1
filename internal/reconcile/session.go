// Package reconcile tracks the reconciliation of one imported statement:
// the status of every movement, the pool of ledger candidates and the
// operator actions that move a movement out of PENDING.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

// DerivedFields are the operator inputs for a ledger entry created from a
// movement. An empty Description falls back to the movement description.
type DerivedFields struct {
	Description string
	CostCenter  *string
}

// Summary counts movements and sums their signed amounts per status.
type Summary struct {
	Movements       int
	Pending         int
	Reconciled      int
	Ignored         int
	Suggested       int // pending with a suggestion
	PendingTotal    decimal.Decimal
	ReconciledTotal decimal.Decimal
	IgnoredTotal    decimal.Decimal
}

// Session is the reconciliation state of one statement. All methods are
// safe for concurrent use. Actions on the same movement are serialized for
// their whole duration, ledger writes included; the session lock itself is
// never held across ledger I/O.
type Session struct {
	engine *matching.Engine
	reader LedgerReader
	writer LedgerWriter

	from, to time.Time
	hasRange bool

	// locks is built once and never modified, so it is read without mu.
	locks map[string]*sync.Mutex

	mu       sync.RWMutex
	stmt     statement.Statement
	index    map[string]int
	results  []matching.Result
	pool     []*transaction.Transaction
	linked   map[uuid.UUID]string
	imported time.Time
}

// NewSession builds a session over a copy of st's movements, loads the
// candidate pool for the statement period widened by the matching window
// and matches every movement.
func NewSession(ctx context.Context, engine *matching.Engine, reader LedgerReader, writer LedgerWriter, st *statement.Statement) (*Session, error) {
	s := &Session{
		engine:   engine,
		reader:   reader,
		writer:   writer,
		stmt:     *st,
		locks:    make(map[string]*sync.Mutex, len(st.Movements)),
		index:    make(map[string]int, len(st.Movements)),
		linked:   make(map[uuid.UUID]string),
		imported: time.Now(),
	}

	s.stmt.Movements = slices.Clone(st.Movements)

	for i, m := range s.stmt.Movements {
		s.locks[m.ID] = &sync.Mutex{}
		s.index[m.ID] = i
	}

	if minDate, maxDate, ok := st.DateRange(); ok {
		window := time.Duration(engine.Config().WindowDays) * 24 * time.Hour
		s.from, s.to, s.hasRange = minDate.Add(-window), maxDate.Add(window), true
	}

	pool, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.pool = pool
	s.results = engine.MatchAll(s.stmt.Movements, s.pool)

	return s, nil
}

func (s *Session) load(ctx context.Context) ([]*transaction.Transaction, error) {
	if !s.hasRange {
		return nil, nil
	}

	pool, err := s.reader.Candidates(ctx, s.from, s.to)
	if err != nil {
		return nil, &CollaboratorError{Op: "load candidates", Err: err}
	}

	return slices.Clone(pool), nil
}

// Period returns the date range the candidate pool is loaded for.
func (s *Session) Period() (time.Time, time.Time, bool) {
	return s.from, s.to, s.hasRange
}

func (s *Session) ImportedAt() time.Time {
	return s.imported
}

// Statement returns the statement with the current movement statuses.
func (s *Session) Statement() statement.Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.stmt
	st.Movements = slices.Clone(s.stmt.Movements)

	return st
}

// Results returns one result per movement in file order.
func (s *Session) Results() []matching.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.results)
}

// Pending returns the results of movements still awaiting an action.
func (s *Session) Pending() []matching.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []matching.Result

	for _, r := range s.results {
		if r.Movement.Status == statement.StatusPending {
			pending = append(pending, r)
		}
	}

	return pending
}

func (s *Session) Result(movementID string) (matching.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[movementID]
	if !ok {
		return matching.Result{}, fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
	}

	return s.results[i], nil
}

// Pool returns the ledger entries still available for linking.
func (s *Session) Pool() []*transaction.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.pool)
}

func (s *Session) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := Summary{Movements: len(s.results)}

	for _, r := range s.results {
		m := r.Movement

		switch m.Status {
		case statement.StatusPending:
			sum.Pending++
			sum.PendingTotal = sum.PendingTotal.Add(m.Amount)

			if r.Matched() {
				sum.Suggested++
			}
		case statement.StatusReconciled:
			sum.Reconciled++
			sum.ReconciledTotal = sum.ReconciledTotal.Add(m.Amount)
		case statement.StatusIgnored:
			sum.Ignored++
			sum.IgnoredTotal = sum.IgnoredTotal.Add(m.Amount)
		}
	}

	return sum
}

// Reconcile links a pending movement to a ledger entry of the pool.
func (s *Session) Reconcile(_ context.Context, movementID string, transactionID uuid.UUID) (matching.Result, error) {
	lock, err := s.lock(movementID)
	if err != nil {
		return matching.Result{}, err
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index[movementID]
	m := s.stmt.Movements[i]

	if m.Status != statement.StatusPending {
		return matching.Result{}, fmt.Errorf("movement %s is %s: %w", movementID, m.Status, ErrInvalidTransition)
	}

	if other, ok := s.linked[transactionID]; ok {
		return matching.Result{}, fmt.Errorf("transaction %s already linked to movement %s: %w", transactionID, other, ErrInvalidTransition)
	}

	idx := slices.IndexFunc(s.pool, func(tx *transaction.Transaction) bool { return tx.ID == transactionID })
	if idx < 0 {
		return matching.Result{}, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}

	tx := s.pool[idx]
	if !matching.Compatible(m.Direction, tx.Kind) {
		return matching.Result{}, fmt.Errorf("%s movement cannot link %s transaction: %w", m.Direction, tx.Kind, ErrInvalidTransition)
	}

	return s.link(i, tx), nil
}

// CreateAndReconcile records a new ledger entry derived from a pending
// movement and links the movement to it once the ledger acknowledges the
// write. A failed write leaves the movement pending.
func (s *Session) CreateAndReconcile(ctx context.Context, movementID string, fields DerivedFields) (*transaction.Transaction, matching.Result, error) {
	lock, err := s.lock(movementID)
	if err != nil {
		return nil, matching.Result{}, err
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	i := s.index[movementID]
	m := s.stmt.Movements[i]
	currency := s.stmt.Currency
	s.mu.RUnlock()

	if m.Status != statement.StatusPending {
		return nil, matching.Result{}, fmt.Errorf("movement %s is %s: %w", movementID, m.Status, ErrInvalidTransition)
	}

	tx, err := s.writer.Create(ctx, CreateParams(m, currency, fields))
	if err != nil {
		return nil, matching.Result{}, &CollaboratorError{Op: "create transaction", Err: err}
	}

	if tx == nil {
		return nil, matching.Result{}, &CollaboratorError{Op: "create transaction", Err: errors.New("ledger returned no transaction")}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return tx, s.link(i, tx), nil
}

// Ignore dismisses a pending movement.
func (s *Session) Ignore(_ context.Context, movementID string) (matching.Result, error) {
	lock, err := s.lock(movementID)
	if err != nil {
		return matching.Result{}, err
	}

	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index[movementID]
	if st := s.stmt.Movements[i].Status; st != statement.StatusPending {
		return matching.Result{}, fmt.Errorf("movement %s is %s: %w", movementID, st, ErrInvalidTransition)
	}

	s.stmt.Movements[i].Status = statement.StatusIgnored
	s.results[i].Movement = s.stmt.Movements[i]

	return s.results[i], nil
}

// Refresh reloads the candidate pool and rematches pending movements.
func (s *Session) Refresh(ctx context.Context) error {
	pool, err := s.load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = slices.DeleteFunc(pool, func(tx *transaction.Transaction) bool {
		_, taken := s.linked[tx.ID]
		return taken
	})
	s.rematchPending()

	return nil
}

// CreateParams derives the ledger entry for a movement: kind from the
// direction, unsigned amount, movement date as issue and due date, paid.
func CreateParams(m statement.Movement, currency string, fields DerivedFields) transaction.CreateParams {
	kind := transaction.KindExpense
	if m.Direction == statement.DirectionCredit {
		kind = transaction.KindIncome
	}

	desc := fields.Description
	if desc == "" {
		desc = m.Description
	}

	return transaction.CreateParams{
		Kind:           kind,
		Status:         transaction.StatusPaid,
		Description:    desc,
		RawDescription: m.Description,
		Amount:         m.Amount.Abs(),
		Currency:       currency,
		IssueDate:      m.Date,
		DueDate:        m.Date,
		CostCenter:     fields.CostCenter,
	}
}

func (s *Session) lock(movementID string) (*sync.Mutex, error) {
	lock, ok := s.locks[movementID]
	if !ok {
		return nil, fmt.Errorf("movement %s: %w", movementID, ErrNotFound)
	}

	return lock, nil
}

// link marks movement i reconciled against tx, takes tx out of the pool and
// rematches the remaining pending movements. Callers hold mu.
func (s *Session) link(i int, tx *transaction.Transaction) matching.Result {
	m := &s.stmt.Movements[i]
	m.Status = statement.StatusReconciled
	m.LinkedTransactionID = new(tx.ID)

	s.linked[tx.ID] = m.ID
	s.pool = slices.DeleteFunc(s.pool, func(p *transaction.Transaction) bool { return p.ID == tx.ID })

	res := s.engine.RematchOne(*m, []*transaction.Transaction{tx})
	res.Suggestion = tx
	s.results[i] = res

	s.rematchPending()

	return res
}

func (s *Session) rematchPending() {
	for i, m := range s.stmt.Movements {
		if m.Status == statement.StatusPending {
			s.results[i] = s.engine.RematchOne(m, s.pool)
		}
	}
}
