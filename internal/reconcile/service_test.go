package reconcile_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

const itauOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<BRANCHID>1234
<ACCTID>56789
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20231101
<DTEND>20231130
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20231121120000[-03:EST]
<TRNAMT>-350.50
<FITID>20231121001
<MEMO>POSTO IPIRANGA ABASTECIMENTO
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20231123
<TRNAMT>1500.00
<FITID>20231123001
<MEMO>PIX RECEBIDO ACME
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1149.50
<DTASOF>20231130
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

type serviceDeps struct {
	reader  *reconcile.MockLedgerReader
	writer  *reconcile.MockLedgerWriter
	aliases *reconcile.MockAliases
	svc     *reconcile.Service
}

func newService(t *testing.T) *serviceDeps {
	t.Helper()

	ctrl := gomock.NewController(t)

	engine, err := matching.NewEngine(matching.DefaultConfig())
	require.NoError(t, err)

	d := &serviceDeps{
		reader:  reconcile.NewMockLedgerReader(ctrl),
		writer:  reconcile.NewMockLedgerWriter(ctrl),
		aliases: reconcile.NewMockAliases(ctrl),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d.svc = reconcile.NewService(importer.NewService(), engine, d.reader, d.writer, d.aliases, logger)

	return d
}

func TestService_NoActiveStatement(t *testing.T) {
	d := newService(t)
	ctx := context.Background()

	_, err := d.svc.Active()
	assert.ErrorIs(t, err, reconcile.ErrNoActiveStatement)

	_, err = d.svc.Reconcile(ctx, "m", uuid.New())
	assert.ErrorIs(t, err, reconcile.ErrNoActiveStatement)

	_, _, err = d.svc.CreateAndReconcile(ctx, "m", reconcile.DerivedFields{})
	assert.ErrorIs(t, err, reconcile.ErrNoActiveStatement)

	_, err = d.svc.Ignore(ctx, "m")
	assert.ErrorIs(t, err, reconcile.ErrNoActiveStatement)

	assert.ErrorIs(t, d.svc.Refresh(ctx), reconcile.ErrNoActiveStatement)
}

func TestService_Import(t *testing.T) {
	d := newService(t)
	fuel := ledger(transaction.KindExpense, "350.50", day(21), "Posto Ipiranga - Abastecimento")

	d.reader.EXPECT().
		Candidates(gomock.Any(), day(18), day(26)).
		Return([]*transaction.Transaction{fuel}, nil)

	session, err := d.svc.Import(context.Background(), "extrato.ofx", []byte(itauOFX))
	require.NoError(t, err)

	active, err := d.svc.Active()
	require.NoError(t, err)
	assert.Same(t, session, active)

	st := session.Statement()
	assert.Equal(t, "56789", st.AccountNumber)
	require.Len(t, st.Movements, 2)

	results := session.Results()
	assert.Equal(t, fuel, results[0].Suggestion)
	assert.GreaterOrEqual(t, results[0].Score, matching.DefaultConfig().Threshold)
	assert.False(t, results[1].Matched())
}

func TestService_ImportReplacesActiveSession(t *testing.T) {
	d := newService(t)

	d.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

	first, err := d.svc.Import(context.Background(), "a.ofx", []byte(itauOFX))
	require.NoError(t, err)

	_, err = d.svc.Ignore(context.Background(), first.Statement().Movements[0].ID)
	require.NoError(t, err)

	second, err := d.svc.Import(context.Background(), "b.ofx", []byte(itauOFX))
	require.NoError(t, err)

	active, err := d.svc.Active()
	require.NoError(t, err)
	assert.Same(t, second, active)
	assert.Equal(t, 2, active.Summary().Pending, "previous statuses are discarded")
}

func TestService_ImportFailureKeepsPreviousSession(t *testing.T) {
	d := newService(t)

	d.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	first, err := d.svc.Import(context.Background(), "a.ofx", []byte(itauOFX))
	require.NoError(t, err)

	_, err = d.svc.Import(context.Background(), "notes.txt", []byte("hello"))
	assert.ErrorIs(t, err, statement.ErrUnrecognizedFormat)

	active, err := d.svc.Active()
	require.NoError(t, err)
	assert.Same(t, first, active)
}

func TestService_Discard(t *testing.T) {
	d := newService(t)

	d.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := d.svc.Import(context.Background(), "a.ofx", []byte(itauOFX))
	require.NoError(t, err)

	d.svc.Discard()

	_, err = d.svc.Active()
	assert.ErrorIs(t, err, reconcile.ErrNoActiveStatement)
}

func TestService_CreateAndReconcile_Aliases(t *testing.T) {
	type args struct {
		fields reconcile.DerivedFields
	}

	type testCase struct {
		name     string
		args     args
		setup    func(a *reconcile.MockAliases)
		wantDesc string
	}

	const raw = "POSTO IPIRANGA ABASTECIMENTO"

	tests := []testCase{
		{
			name: "Alias fills missing description",
			setup: func(a *reconcile.MockAliases) {
				a.EXPECT().Suggest(gomock.Any(), raw).Return("Fuel", nil)
			},
			wantDesc: "Fuel",
		},
		{
			name: "No alias keeps bank text",
			setup: func(a *reconcile.MockAliases) {
				a.EXPECT().Suggest(gomock.Any(), raw).Return("", nil)
			},
			wantDesc: raw,
		},
		{
			name: "Alias lookup failure keeps bank text",
			setup: func(a *reconcile.MockAliases) {
				a.EXPECT().Suggest(gomock.Any(), raw).Return("", errors.New("db down"))
			},
			wantDesc: raw,
		},
		{
			name: "Operator description is learned",
			args: args{fields: reconcile.DerivedFields{Description: "Fuel - van 2"}},
			setup: func(a *reconcile.MockAliases) {
				a.EXPECT().Learn(gomock.Any(), raw, "Fuel - van 2").Return(nil)
			},
			wantDesc: "Fuel - van 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newService(t)
			tt.setup(d.aliases)

			d.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

			session, err := d.svc.Import(context.Background(), "a.ofx", []byte(itauOFX))
			require.NoError(t, err)

			d.writer.EXPECT().
				Create(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, p transaction.CreateParams) (*transaction.Transaction, error) {
					assert.Equal(t, tt.wantDesc, p.Description)
					assert.Equal(t, raw, p.RawDescription)

					return &transaction.Transaction{ID: uuid.New(), Kind: p.Kind, Amount: p.Amount, IssueDate: p.IssueDate}, nil
				})

			tx, res, err := d.svc.CreateAndReconcile(context.Background(), session.Statement().Movements[0].ID, tt.args.fields)
			require.NoError(t, err)
			assert.Equal(t, transaction.KindExpense, tx.Kind)
			assert.Equal(t, statement.StatusReconciled, res.Movement.Status)
		})
	}
}

func TestService_CreateAndReconcile_FailureDoesNotLearn(t *testing.T) {
	d := newService(t)

	d.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	session, err := d.svc.Import(context.Background(), "a.ofx", []byte(itauOFX))
	require.NoError(t, err)

	d.writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	id := session.Statement().Movements[0].ID

	_, _, err = d.svc.CreateAndReconcile(context.Background(), id, reconcile.DerivedFields{Description: "Fuel"})

	var cerr *reconcile.CollaboratorError
	assert.ErrorAs(t, err, &cerr)

	res, err := session.Result(id)
	require.NoError(t, err)
	assert.Equal(t, statement.StatusPending, res.Movement.Status)
}
