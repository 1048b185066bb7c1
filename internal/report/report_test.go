package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/report"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

func fixture() (statement.Statement, []matching.Result) {
	date := time.Date(2023, 11, 21, 0, 0, 0, 0, time.UTC)
	fuelID := uuid.MustParse("00000000-0000-0000-0000-0000000000f1")
	uberID := uuid.MustParse("00000000-0000-0000-0000-0000000000b2")

	fuel := statement.NewMovement(date, "POSTO IPIRANGA", decimal.RequireFromString("-350.5"), statement.DirectionDebit, "001")
	fuel.Status = statement.StatusReconciled
	fuel.LinkedTransactionID = &fuelID

	uber := statement.NewMovement(date, "UBER TRIP", decimal.RequireFromString("-23.90"), statement.DirectionDebit, "002")
	pix := statement.NewMovement(date, "PIX ACME", decimal.RequireFromString("1500"), statement.DirectionCredit, "003")
	pix.Status = statement.StatusIgnored

	st := statement.Statement{
		BankName:       "Itau",
		AccountNumber:  "56789",
		Currency:       "BRL",
		ClosingBalance: decimal.RequireFromString("1149.5"),
		Movements:      []statement.Movement{fuel, uber, pix},
	}

	results := []matching.Result{
		{Movement: fuel, Suggestion: &transaction.Transaction{ID: fuelID, Description: "Fuel"}, Score: 100},
		{Movement: uber, Suggestion: &transaction.Transaction{ID: uberID, Description: "Uber"}, Score: 92},
		{Movement: pix},
	}

	return st, results
}

func TestText(t *testing.T) {
	st, results := fixture()
	sum := reconcile.Summary{Movements: 3, Pending: 1, Suggested: 1, Reconciled: 1, Ignored: 1}

	got := report.Text(st, sum, results)

	assert.Contains(t, got, "Itau 56789 (BRL)")
	assert.Contains(t, got, "Closing balance: 1149.50")
	assert.Contains(t, got, "* 2023-11-21 | POSTO IPIRANGA | -350.50 | reconciled | Fuel\n")
	assert.Contains(t, got, "* 2023-11-21 | UBER TRIP | -23.90 | pending | suggested: Uber (92)\n")
	assert.Contains(t, got, "* 2023-11-21 | PIX ACME | +1500.00 | ignored | -\n")
}

func TestWriteCSV(t *testing.T) {
	_, results := fixture()

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, results))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "date", rows[0][0])
	assert.Equal(t, []string{
		"2023-11-21", "POSTO IPIRANGA", "-350.50", "debit", "reconciled",
		"00000000-0000-0000-0000-0000000000f1", "00000000-0000-0000-0000-0000000000f1", "100", "001",
	}, rows[1])
	assert.Equal(t, "", rows[2][5], "pending rows have no link")
	assert.Equal(t, "0", rows[3][7])
}
