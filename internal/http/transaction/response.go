package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

type transactionResponse struct {
	ID             uuid.UUID          `json:"id"`
	Kind           transaction.Kind   `json:"kind"`
	Status         transaction.Status `json:"status"`
	Description    string             `json:"description"`
	RawDescription string             `json:"raw_description,omitempty"`
	Amount         decimal.Decimal    `json:"amount"`
	Currency       string             `json:"currency,omitempty"`
	IssueDate      string             `json:"issue_date"`
	DueDate        string             `json:"due_date"`
	CostCenter     *string            `json:"cost_center,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      *time.Time         `json:"updated_at,omitempty"`
}

func toResponse(tx *transaction.Transaction) transactionResponse {
	return transactionResponse{
		ID:             tx.ID,
		Kind:           tx.Kind,
		Status:         tx.Status,
		Description:    tx.Description,
		RawDescription: tx.RawDescription,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		IssueDate:      tx.IssueDate.Format(time.DateOnly),
		DueDate:        tx.DueDate.Format(time.DateOnly),
		CostCenter:     tx.CostCenter,
		CreatedAt:      tx.CreatedAt,
		UpdatedAt:      tx.UpdatedAt,
	}
}

func toResponseList(txs []*transaction.Transaction) []transactionResponse {
	resp := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = toResponse(tx)
	}

	return resp
}
