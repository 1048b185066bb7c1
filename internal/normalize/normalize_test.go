package normalize_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/conciliar/internal/normalize"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

func TestText(t *testing.T) {
	type args struct {
		s string
	}

	type testCase struct {
		name string
		args args
		want string
	}

	tests := []testCase{
		{name: "Case and diacritics", args: args{s: "Pagamento ÁGUA São João"}, want: "pagamento agua sao joao"},
		{name: "Punctuation", args: args{s: "UBER *TRIP HELP.UBER.COM"}, want: "uber trip help uber com"},
		{name: "Whitespace", args: args{s: "  PA   GONDOMAR\tGONDOMAR  "}, want: "pa gondomar gondomar"},
		{name: "Empty", args: args{s: ""}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Text(tt.args.s))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"compra", "posto", "ipiranga"}, normalize.Tokens("Compra no Posto Ipiranga - posto"))
	assert.Empty(t, normalize.Tokens("a e o de"))
}

func TestMovementKey(t *testing.T) {
	d := time.Date(2023, 11, 21, 0, 0, 0, 0, time.UTC)
	m := statement.NewMovement(d, "Posto Ipiranga", decimal.RequireFromString("-350.50"), statement.DirectionDebit, "")

	key := normalize.MovementKey(m)

	assert.Equal(t, []string{"posto", "ipiranga"}, key.Tokens)
	assert.True(t, decimal.RequireFromString("-350.50").Equal(key.Amount))
	assert.Equal(t, []time.Time{d}, key.Dates)
}

func TestTransactionKey(t *testing.T) {
	issue := time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC)
	due := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)

	tx := &transaction.Transaction{
		ID:          uuid.New(),
		Kind:        transaction.KindExpense,
		Description: "Fuel",
		Amount:      decimal.RequireFromString("350.50"),
		IssueDate:   issue,
		DueDate:     due,
	}

	key := normalize.TransactionKey(tx)

	assert.True(t, decimal.RequireFromString("-350.50").Equal(key.Amount), "expenses are negative")
	assert.Equal(t, []time.Time{issue, due}, key.Dates)

	tx.Kind = transaction.KindIncome
	assert.True(t, decimal.RequireFromString("350.50").Equal(normalize.TransactionKey(tx).Amount))
}

func TestDayGap(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2023, 11, d, 0, 0, 0, 0, time.UTC) }

	a := normalize.Key{Dates: []time.Time{day(21)}}
	b := normalize.Key{Dates: []time.Time{day(10), day(23)}}

	gap, ok := normalize.DayGap(a, b)
	assert.True(t, ok)
	assert.Equal(t, 2, gap)

	_, ok = normalize.DayGap(a, normalize.Key{})
	assert.False(t, ok)
}

func TestTokenOverlap(t *testing.T) {
	type args struct {
		a, b []string
	}

	type testCase struct {
		name string
		args args
		want float64
	}

	tests := []testCase{
		{name: "Identical", args: args{a: []string{"posto", "ipiranga"}, b: []string{"posto", "ipiranga"}}, want: 1},
		{name: "Half", args: args{a: []string{"posto", "ipiranga"}, b: []string{"posto", "shell"}}, want: 0.5},
		{name: "Disjoint", args: args{a: []string{"uber"}, b: []string{"bolt"}}, want: 0},
		{name: "Empty side", args: args{a: nil, b: []string{"bolt"}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, normalize.TokenOverlap(tt.args.a, tt.args.b), 1e-9)
			assert.InDelta(t, tt.want, normalize.TokenOverlap(tt.args.b, tt.args.a), 1e-9, "symmetric")
		})
	}
}

func TestFuzzyTokenOverlap(t *testing.T) {
	a := []string{"pagamento", "ipiranga"}
	b := []string{"pagamentos", "ipiranga"}

	assert.InDelta(t, 0.5, normalize.TokenOverlap(a, b), 1e-9)
	assert.InDelta(t, 1.0, normalize.FuzzyTokenOverlap(a, b), 1e-9)
	assert.InDelta(t, 0.0, normalize.FuzzyTokenOverlap([]string{"uber"}, []string{"bolt"}), 1e-9)
}
