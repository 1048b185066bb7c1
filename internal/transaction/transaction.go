package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tells whether a ledger entry is money in or money out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Status represents the payment lifecycle of a ledger entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusCancelled
}

// Transaction is a ledger entry (a payable or receivable).
type Transaction struct {
	ID             uuid.UUID
	Kind           Kind
	Status         Status
	Description    string
	RawDescription string          // bank text when created from a statement movement
	Amount         decimal.Decimal // unsigned; Kind gives the sign
	Currency       string
	IssueDate      time.Time
	DueDate        time.Time
	CostCenter     *string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
}
