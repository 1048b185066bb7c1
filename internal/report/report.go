// Package report renders a reconciliation session for people and
// spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
)

const dateLayout = "2006-01-02"

// Text renders a summary header followed by one line per movement:
// "* date | description | ±amount | status | linked".
func Text(st statement.Statement, sum reconcile.Summary, results []matching.Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s (%s)\n", st.BankName, st.AccountNumber, st.Currency)
	fmt.Fprintf(&sb, "Closing balance: %s\n", st.ClosingBalance.StringFixed(2))
	fmt.Fprintf(&sb, "Movements: %d | pending %d (%d suggested) | reconciled %d | ignored %d\n\n",
		sum.Movements, sum.Pending, sum.Suggested, sum.Reconciled, sum.Ignored)

	for _, r := range results {
		m := r.Movement
		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s\n",
			m.Date.Format(dateLayout), m.Description, signed(m), m.Status, linked(r))
	}

	return sb.String()
}

var csvHeader = []string{"date", "description", "amount", "direction", "status", "linked_transaction", "suggestion", "score", "reference"}

// WriteCSV writes one row per movement.
func WriteCSV(w io.Writer, results []matching.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, r := range results {
		m := r.Movement

		var linkedID, suggestion string
		if m.LinkedTransactionID != nil {
			linkedID = m.LinkedTransactionID.String()
		}

		if r.Suggestion != nil {
			suggestion = r.Suggestion.ID.String()
		}

		row := []string{
			m.Date.Format(dateLayout),
			m.Description,
			m.Amount.StringFixed(2),
			string(m.Direction),
			string(m.Status),
			linkedID,
			suggestion,
			fmt.Sprint(r.Score),
			m.Reference,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}

func signed(m statement.Movement) string {
	if m.Amount.IsPositive() {
		return "+" + m.Amount.StringFixed(2)
	}

	return m.Amount.StringFixed(2)
}

func linked(r matching.Result) string {
	switch {
	case r.Movement.LinkedTransactionID != nil && r.Suggestion != nil:
		return r.Suggestion.Description
	case r.Movement.LinkedTransactionID != nil:
		return r.Movement.LinkedTransactionID.String()
	case r.Movement.Status == statement.StatusPending && r.Suggestion != nil:
		return fmt.Sprintf("suggested: %s (%d)", r.Suggestion.Description, r.Score)
	}

	return "-"
}
