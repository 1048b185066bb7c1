package statement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

type sessionResponse struct {
	Format         string           `json:"format"`
	BankName       string           `json:"bank_name"`
	BranchCode     string           `json:"branch_code,omitempty"`
	AccountNumber  string           `json:"account_number"`
	Currency       string           `json:"currency"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	BalanceDate    *time.Time       `json:"balance_date,omitempty"`
	Summary        summaryResponse  `json:"summary"`
	Results        []resultResponse `json:"results"`
}

type summaryResponse struct {
	Movements       int             `json:"movements"`
	Pending         int             `json:"pending"`
	Reconciled      int             `json:"reconciled"`
	Ignored         int             `json:"ignored"`
	Suggested       int             `json:"suggested"`
	PendingTotal    decimal.Decimal `json:"pending_total"`
	ReconciledTotal decimal.Decimal `json:"reconciled_total"`
	IgnoredTotal    decimal.Decimal `json:"ignored_total"`
}

type movementResponse struct {
	ID                  string              `json:"id"`
	Reference           string              `json:"reference,omitempty"`
	Date                string              `json:"date"`
	Description         string              `json:"description"`
	Amount              decimal.Decimal     `json:"amount"`
	Direction           statement.Direction `json:"direction"`
	Status              statement.Status    `json:"status"`
	LinkedTransactionID *uuid.UUID          `json:"linked_transaction_id,omitempty"`
}

type suggestionResponse struct {
	ID          uuid.UUID        `json:"id"`
	Kind        transaction.Kind `json:"kind"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	IssueDate   string           `json:"issue_date"`
	DueDate     string           `json:"due_date"`
}

type breakdownResponse struct {
	Amount      float64 `json:"amount"`
	Date        float64 `json:"date"`
	Description float64 `json:"description"`
}

type resultResponse struct {
	Movement   movementResponse    `json:"movement"`
	Suggestion *suggestionResponse `json:"suggestion,omitempty"`
	Score      int                 `json:"score"`
	Breakdown  breakdownResponse   `json:"breakdown"`
}

type createResponse struct {
	TransactionID uuid.UUID      `json:"transaction_id"`
	Result        resultResponse `json:"result"`
}

func toSessionResponse(s *reconcile.Session) sessionResponse {
	st := s.Statement()

	return sessionResponse{
		Format:         st.Format,
		BankName:       st.BankName,
		BranchCode:     st.BranchCode,
		AccountNumber:  st.AccountNumber,
		Currency:       st.Currency,
		ClosingBalance: st.ClosingBalance,
		BalanceDate:    st.BalanceDate,
		Summary:        toSummaryResponse(s.Summary()),
		Results:        toResultList(s.Results()),
	}
}

func toSummaryResponse(sum reconcile.Summary) summaryResponse {
	return summaryResponse{
		Movements:       sum.Movements,
		Pending:         sum.Pending,
		Reconciled:      sum.Reconciled,
		Ignored:         sum.Ignored,
		Suggested:       sum.Suggested,
		PendingTotal:    sum.PendingTotal,
		ReconciledTotal: sum.ReconciledTotal,
		IgnoredTotal:    sum.IgnoredTotal,
	}
}

func toResultResponse(r matching.Result) resultResponse {
	m := r.Movement

	resp := resultResponse{
		Movement: movementResponse{
			ID:                  m.ID,
			Reference:           m.Reference,
			Date:                m.Date.Format(time.DateOnly),
			Description:         m.Description,
			Amount:              m.Amount,
			Direction:           m.Direction,
			Status:              m.Status,
			LinkedTransactionID: m.LinkedTransactionID,
		},
		Score: r.Score,
		Breakdown: breakdownResponse{
			Amount:      r.Breakdown.Amount,
			Date:        r.Breakdown.Date,
			Description: r.Breakdown.Description,
		},
	}

	if tx := r.Suggestion; tx != nil {
		resp.Suggestion = &suggestionResponse{
			ID:          tx.ID,
			Kind:        tx.Kind,
			Description: tx.Description,
			Amount:      tx.Amount,
			IssueDate:   tx.IssueDate.Format(time.DateOnly),
			DueDate:     tx.DueDate.Format(time.DateOnly),
		}
	}

	return resp
}

func toResultList(results []matching.Result) []resultResponse {
	resp := make([]resultResponse, len(results))
	for i, r := range results {
		resp[i] = toResultResponse(r)
	}

	return resp
}
