package statement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction is the flow of a movement as declared by the bank.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Status is the reconciliation state of a movement.
type Status string

const (
	StatusPending    Status = "pending"
	StatusReconciled Status = "reconciled"
	StatusIgnored    Status = "ignored"
)

// Statement is a fully parsed bank statement.
type Statement struct {
	Format         string
	BankName       string
	BranchCode     string
	AccountNumber  string
	Currency       string
	ClosingBalance decimal.Decimal
	BalanceDate    *time.Time
	Movements      []Movement
}

// Movement is a single line of a statement.
type Movement struct {
	ID                  string
	Reference           string // identifier supplied by the bank, not guaranteed unique
	Date                time.Time
	Description         string
	Amount              decimal.Decimal // positive = credit, negative = debit
	Direction           Direction
	Status              Status
	LinkedTransactionID *uuid.UUID
}

// NewMovement builds a pending movement with a fresh session-local ID.
// The direction must already agree with the amount sign.
func NewMovement(date time.Time, description string, amount decimal.Decimal, dir Direction, reference string) Movement {
	return Movement{
		ID:          uuid.NewString(),
		Reference:   reference,
		Date:        Date(date),
		Description: description,
		Amount:      amount,
		Direction:   dir,
		Status:      StatusPending,
	}
}

// DirectionOf returns the direction implied by the amount sign.
// ok is false for a zero amount.
func DirectionOf(amount decimal.Decimal) (Direction, bool) {
	switch amount.Sign() {
	case 1:
		return DirectionCredit, true
	case -1:
		return DirectionDebit, true
	}

	return "", false
}

// Agrees reports whether dir matches the sign of amount.
func Agrees(dir Direction, amount decimal.Decimal) bool {
	implied, ok := DirectionOf(amount)
	return ok && implied == dir
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange returns the earliest and latest movement dates.
func (s *Statement) DateRange() (time.Time, time.Time, bool) {
	if len(s.Movements) == 0 {
		return time.Time{}, time.Time{}, false
	}

	minDate := s.Movements[0].Date
	maxDate := s.Movements[0].Date

	for _, m := range s.Movements[1:] {
		if m.Date.Before(minDate) {
			minDate = m.Date
		}

		if m.Date.After(maxDate) {
			maxDate = m.Date
		}
	}

	return minDate, maxDate, true
}

// Decoder turns raw statement bytes into a Statement.
type Decoder interface {
	// Name returns the decoder name, stored in Statement.Format.
	Name() string

	// Extensions returns the file extensions handled, with the leading dot.
	Extensions() []string

	// Match reports whether data carries the decoder's signature.
	Match(data []byte) bool

	Parse(data []byte) (*Statement, error)
}
