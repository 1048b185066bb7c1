package statement_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	handler "github.com/MrJamesThe3rd/conciliar/internal/http/statement"
	"github.com/MrJamesThe3rd/conciliar/internal/importer"
	"github.com/MrJamesThe3rd/conciliar/internal/matching"
	"github.com/MrJamesThe3rd/conciliar/internal/reconcile"
	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

const ofxBody = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
CHARSET:1252

<OFX>
<BANKMSGSRSV1><STMTTRNRS><STMTRS>
<CURDEF>BRL
<BANKACCTFROM>
<BANKID>0341
<ACCTID>56789
</BANKACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20231121
<TRNAMT>-350.50
<FITID>1
<MEMO>POSTO IPIRANGA ABASTECIMENTO
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20231123
<TRNAMT>1500.00
<FITID>2
<MEMO>PIX RECEBIDO ACME
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1149.50
<DTASOF>20231130
</LEDGERBAL>
</STMTRS></STMTTRNRS></BANKMSGSRSV1>
</OFX>
`

type env struct {
	reader *reconcile.MockLedgerReader
	writer *reconcile.MockLedgerWriter
	server *httptest.Server
	fuel   *transaction.Transaction
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)

	engine, err := matching.NewEngine(matching.DefaultConfig())
	require.NoError(t, err)

	e := &env{
		reader: reconcile.NewMockLedgerReader(ctrl),
		writer: reconcile.NewMockLedgerWriter(ctrl),
		fuel: &transaction.Transaction{
			ID:          uuid.New(),
			Kind:        transaction.KindExpense,
			Status:      transaction.StatusPending,
			Description: "Posto Ipiranga - Abastecimento",
			Amount:      decimal.RequireFromString("350.50"),
			IssueDate:   time.Date(2023, 11, 21, 0, 0, 0, 0, time.UTC),
			DueDate:     time.Date(2023, 11, 21, 0, 0, 0, 0, time.UTC),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := reconcile.NewService(importer.NewService(), engine, e.reader, e.writer, nil, logger)

	r := chi.NewRouter()
	r.Route("/statement", handler.NewHandler(svc, 1<<20).Routes)

	e.server = httptest.NewServer(r)
	t.Cleanup(e.server.Close)

	return e
}

func (e *env) upload(t *testing.T, filename, content string) *http.Response {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(e.server.URL+"/statement", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func (e *env) post(t *testing.T, path, payload string) *http.Response {
	t.Helper()

	resp, err := http.Post(e.server.URL+path, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

type session struct {
	AccountNumber string `json:"account_number"`
	Summary       struct {
		Movements int `json:"movements"`
		Suggested int `json:"suggested"`
	} `json:"summary"`
	Results []struct {
		Movement struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"movement"`
		Suggestion *struct {
			ID uuid.UUID `json:"id"`
		} `json:"suggestion"`
		Score int `json:"score"`
	} `json:"results"`
}

func (e *env) importOK(t *testing.T) session {
	t.Helper()

	e.reader.EXPECT().Candidates(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]*transaction.Transaction{e.fuel}, nil)

	resp := e.upload(t, "extrato.ofx", ofxBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var s session
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))

	return s
}

func TestHandler_Import(t *testing.T) {
	e := newEnv(t)
	s := e.importOK(t)

	assert.Equal(t, "56789", s.AccountNumber)
	assert.Equal(t, 2, s.Summary.Movements)
	assert.Equal(t, 1, s.Summary.Suggested)
	require.Len(t, s.Results, 2)
	require.NotNil(t, s.Results[0].Suggestion)
	assert.Equal(t, e.fuel.ID, s.Results[0].Suggestion.ID)
	assert.Equal(t, 100, s.Results[0].Score)
	assert.Nil(t, s.Results[1].Suggestion)
}

func TestHandler_ImportErrors(t *testing.T) {
	type args struct {
		filename string
		content  string
	}

	type testCase struct {
		name       string
		args       args
		wantStatus int
	}

	tests := []testCase{
		{
			name:       "Unrecognized",
			args:       args{filename: "notes.txt", content: "hello"},
			wantStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:       "Missing account",
			args:       args{filename: "x.ofx", content: strings.Replace(ofxBody, "<ACCTID>56789\n", "", 1)},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "Malformed amount",
			args:       args{filename: "x.ofx", content: strings.Replace(ofxBody, "-350.50", "-35O.50", 1)},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)

			resp := e.upload(t, tt.args.filename, tt.args.content)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandler_NoActiveStatement(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.server.URL + "/statement")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ignore := e.post(t, "/statement/movements/abc/ignore", "")
	assert.Equal(t, http.StatusNotFound, ignore.StatusCode)
}

func TestHandler_ReconcileFlow(t *testing.T) {
	e := newEnv(t)
	s := e.importOK(t)

	path := "/statement/movements/" + s.Results[0].Movement.ID + "/reconcile"
	payload := `{"transaction_id":"` + e.fuel.ID.String() + `"}`

	resp := e.post(t, path, payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	again := e.post(t, path, payload)
	assert.Equal(t, http.StatusConflict, again.StatusCode)

	unknown := e.post(t, "/statement/movements/nope/ignore", "")
	assert.Equal(t, http.StatusNotFound, unknown.StatusCode)

	missingTx := e.post(t, "/statement/movements/"+s.Results[1].Movement.ID+"/reconcile", `{"transaction_id":"`+uuid.NewString()+`"}`)
	assert.Equal(t, http.StatusNotFound, missingTx.StatusCode)
}

func TestHandler_CreateFailureIsBadGateway(t *testing.T) {
	e := newEnv(t)
	s := e.importOK(t)

	e.writer.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	resp := e.post(t, "/statement/movements/"+s.Results[1].Movement.ID+"/create", `{"description":"ACME"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestHandler_Create(t *testing.T) {
	e := newEnv(t)
	s := e.importOK(t)
	id := uuid.New()

	e.writer.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p transaction.CreateParams) (*transaction.Transaction, error) {
			assert.Equal(t, transaction.KindIncome, p.Kind)
			assert.Equal(t, "ACME", p.Description)

			return &transaction.Transaction{ID: id, Kind: p.Kind, Amount: p.Amount, IssueDate: p.IssueDate}, nil
		})

	resp := e.post(t, "/statement/movements/"+s.Results[1].Movement.ID+"/create", `{"description":"ACME"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		TransactionID uuid.UUID `json:"transaction_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, id, body.TransactionID)
}

func TestHandler_Report(t *testing.T) {
	e := newEnv(t)
	e.importOK(t)

	resp, err := http.Get(e.server.URL + "/statement/report?format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(body), "\n"), "header plus one row per movement")

	text, err := http.Get(e.server.URL + "/statement/report")
	require.NoError(t, err)
	defer text.Body.Close()

	plain, err := io.ReadAll(text.Body)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "POSTO IPIRANGA ABASTECIMENTO")
}

func TestHandler_Discard(t *testing.T) {
	e := newEnv(t)
	e.importOK(t)

	req, err := http.NewRequest(http.MethodDelete, e.server.URL+"/statement", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	view, err := http.Get(e.server.URL + "/statement")
	require.NoError(t, err)
	defer view.Body.Close()

	assert.Equal(t, http.StatusNotFound, view.StatusCode)
}
