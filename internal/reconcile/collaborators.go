package reconcile

import (
	"context"
	"time"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

//go:generate mockgen -source=collaborators.go -destination=collaborators_mock.go -package=reconcile

// LedgerReader supplies the candidate pool for a statement period.
type LedgerReader interface {
	Candidates(ctx context.Context, from, to time.Time) ([]*transaction.Transaction, error)
}

// LedgerWriter durably records a ledger entry and returns it with its id.
type LedgerWriter interface {
	Create(ctx context.Context, params transaction.CreateParams) (*transaction.Transaction, error)
}

// Aliases maps raw bank text to the operator's preferred description.
type Aliases interface {
	Suggest(ctx context.Context, rawDescription string) (string, error)
	Learn(ctx context.Context, rawPattern, preferredDescription string) error
}
