package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Kind           Kind
	Status         Status
	Description    string
	RawDescription string
	Amount         decimal.Decimal
	Currency       string
	IssueDate      time.Time
	DueDate        time.Time
	CostCenter     *string
}

// ListFilter narrows a listing. StartDate and EndDate match entries whose
// issue or due date falls in the range.
type ListFilter struct {
	Status    *Status
	Kind      *Kind
	StartDate *time.Time
	EndDate   *time.Time
}

func (p CreateParams) validate() error {
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidParams, p.Kind)
	}

	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidParams, p.Status)
	}

	if !p.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidParams)
	}

	if p.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidParams)
	}

	if p.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date is required", ErrInvalidParams)
	}

	return nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	due := params.DueDate
	if due.IsZero() {
		due = params.IssueDate
	}

	tx := &Transaction{
		Kind:           params.Kind,
		Status:         params.Status,
		Description:    params.Description,
		RawDescription: params.RawDescription,
		Amount:         params.Amount,
		Currency:       params.Currency,
		IssueDate:      params.IssueDate,
		DueDate:        due,
		CostCenter:     params.CostCenter,
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidParams, status)
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, id)
}

// Candidates returns the entries eligible for matching against statement
// movements dated between from and to: everything not cancelled whose issue
// or due date falls in the range.
func (s *Service) Candidates(ctx context.Context, from, to time.Time) ([]*Transaction, error) {
	txs, err := s.repo.ListTransactions(ctx, ListFilter{StartDate: &from, EndDate: &to})
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}

	candidates := txs[:0]

	for _, tx := range txs {
		if tx.Status == StatusCancelled {
			continue
		}

		candidates = append(candidates, tx)
	}

	return candidates, nil
}
