// Package ledgerfile keeps a ledger in a YAML file. It backs the offline
// CLI, where there is no database to match statements against.
package ledgerfile

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

const dateLayout = "2006-01-02"

type file struct {
	Transactions []record `yaml:"transactions"`
}

// record is the on-disk shape of a ledger entry. Amounts and dates are kept
// as strings so the file round-trips without float rounding.
type record struct {
	ID             string `yaml:"id,omitempty"`
	Kind           string `yaml:"kind"`
	Status         string `yaml:"status,omitempty"`
	Description    string `yaml:"description"`
	RawDescription string `yaml:"raw_description,omitempty"`
	Amount         string `yaml:"amount"`
	Currency       string `yaml:"currency,omitempty"`
	IssueDate      string `yaml:"issue_date"`
	DueDate        string `yaml:"due_date,omitempty"`
	CostCenter     string `yaml:"cost_center,omitempty"`
	Deleted        bool   `yaml:"deleted,omitempty"`
}

// Store implements transaction.Repository over a YAML file. Every write is
// saved back to the file when the store has a path.
type Store struct {
	path string

	mu  sync.RWMutex
	txs []*transaction.Transaction
}

// New returns an empty store that is never persisted.
func New() *Store {
	return &Store{}
}

// Load reads a ledger file. Entries without an id get one.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, err
	}

	s.path = path

	return s, nil
}

// Parse decodes ledger YAML into an unpersisted store.
func Parse(data []byte) (*Store, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing ledger: %w", err)
	}

	s := New()

	for i, r := range f.Transactions {
		tx, err := r.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		s.txs = append(s.txs, tx)
	}

	return s, nil
}

func (r record) toTransaction() (*transaction.Transaction, error) {
	tx := &transaction.Transaction{
		Kind:           transaction.Kind(strings.ToLower(r.Kind)),
		Status:         transaction.StatusPending,
		Description:    r.Description,
		RawDescription: r.RawDescription,
		Currency:       strings.ToUpper(r.Currency),
	}

	if r.ID == "" {
		tx.ID = uuid.New()
	} else {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q", transaction.ErrInvalidParams, r.ID)
		}

		tx.ID = id
	}

	if r.Status != "" {
		tx.Status = transaction.Status(strings.ToLower(r.Status))
	}

	if !tx.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", transaction.ErrInvalidParams, r.Kind)
	}

	if !tx.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", transaction.ErrInvalidParams, r.Status)
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount %q", transaction.ErrInvalidParams, r.Amount)
	}

	tx.Amount = amount

	if tx.IssueDate, err = time.Parse(dateLayout, r.IssueDate); err != nil {
		return nil, fmt.Errorf("%w: issue_date %q", transaction.ErrInvalidParams, r.IssueDate)
	}

	tx.DueDate = tx.IssueDate
	if r.DueDate != "" {
		if tx.DueDate, err = time.Parse(dateLayout, r.DueDate); err != nil {
			return nil, fmt.Errorf("%w: due_date %q", transaction.ErrInvalidParams, r.DueDate)
		}
	}

	if r.CostCenter != "" {
		tx.CostCenter = new(r.CostCenter)
	}

	if r.Deleted {
		tx.DeletedAt = new(time.Time{})
	}

	return tx, nil
}

func fromTransaction(tx *transaction.Transaction) record {
	r := record{
		ID:             tx.ID.String(),
		Kind:           string(tx.Kind),
		Status:         string(tx.Status),
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Amount:         tx.Amount.StringFixed(2),
		Currency:       tx.Currency,
		IssueDate:      tx.IssueDate.Format(dateLayout),
		Deleted:        tx.DeletedAt != nil,
	}

	if !tx.DueDate.Equal(tx.IssueDate) {
		r.DueDate = tx.DueDate.Format(dateLayout)
	}

	if tx.CostCenter != nil {
		r.CostCenter = *tx.CostCenter
	}

	return r
}

// Marshal encodes the ledger, deleted entries included.
func (s *Store) Marshal() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.marshal()
}

func (s *Store) marshal() ([]byte, error) {
	f := file{Transactions: make([]record, 0, len(s.txs))}
	for _, tx := range s.txs {
		f.Transactions = append(f.Transactions, fromTransaction(tx))
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshaling ledger: %w", err)
	}

	return data, nil
}

// persist must be called with mu held.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}

	data, err := s.marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	return nil
}

func (s *Store) find(id uuid.UUID) *transaction.Transaction {
	for _, tx := range s.txs {
		if tx.ID == id && tx.DeletedAt == nil {
			return tx
		}
	}

	return nil
}

func (s *Store) CreateTransaction(_ context.Context, tx *transaction.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx.ID = uuid.New()
	tx.CreatedAt = time.Now().UTC()

	stored := *tx
	s.txs = append(s.txs, &stored)

	if err := s.persist(); err != nil {
		s.txs = s.txs[:len(s.txs)-1]
		return err
	}

	return nil
}

func (s *Store) GetTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx := s.find(id)
	if tx == nil {
		return nil, transaction.ErrNotFound
	}

	found := *tx

	return &found, nil
}

func (s *Store) ListTransactions(_ context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*transaction.Transaction

	for _, tx := range s.txs {
		if tx.DeletedAt != nil || !matches(tx, filter) {
			continue
		}

		found := *tx
		txs = append(txs, &found)
	}

	slices.SortFunc(txs, func(a, b *transaction.Transaction) int {
		if c := a.IssueDate.Compare(b.IssueDate); c != 0 {
			return c
		}

		return cmp.Compare(a.ID.String(), b.ID.String())
	})

	return txs, nil
}

func matches(tx *transaction.Transaction, f transaction.ListFilter) bool {
	if f.Status != nil && tx.Status != *f.Status {
		return false
	}

	if f.Kind != nil && tx.Kind != *f.Kind {
		return false
	}

	return inRange(tx.IssueDate, f) || inRange(tx.DueDate, f)
}

func inRange(d time.Time, f transaction.ListFilter) bool {
	if f.StartDate != nil && d.Before(*f.StartDate) {
		return false
	}

	if f.EndDate != nil && d.After(*f.EndDate) {
		return false
	}

	return true
}

func (s *Store) UpdateStatus(_ context.Context, id uuid.UUID, status transaction.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.find(id)
	if tx == nil {
		return transaction.ErrNotFound
	}

	prev := tx.Status
	tx.Status = status
	tx.UpdatedAt = new(time.Now().UTC())

	if err := s.persist(); err != nil {
		tx.Status = prev
		return err
	}

	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.find(id)
	if tx == nil {
		return transaction.ErrNotFound
	}

	tx.DeletedAt = new(time.Now().UTC())

	if err := s.persist(); err != nil {
		tx.DeletedAt = nil
		return err
	}

	return nil
}
