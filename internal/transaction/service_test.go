package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/conciliar/internal/transaction"
)

func TestService_Create(t *testing.T) {
	issue := time.Date(2023, 11, 21, 0, 0, 0, 0, time.UTC)

	valid := transaction.CreateParams{
		Kind:        transaction.KindExpense,
		Status:      transaction.StatusPending,
		Description: "Posto Ipiranga",
		Amount:      decimal.RequireFromString("350.50"),
		Currency:    "BRL",
		IssueDate:   issue,
	}

	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: valid},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "Unknown kind",
			args: args{params: func() transaction.CreateParams {
				p := valid
				p.Kind = "transfer"
				return p
			}()},
			wantErr: transaction.ErrInvalidParams,
		},
		{
			name: "Zero amount",
			args: args{params: func() transaction.CreateParams {
				p := valid
				p.Amount = decimal.Zero
				return p
			}()},
			wantErr: transaction.ErrInvalidParams,
		},
		{
			name: "Missing description",
			args: args{params: func() transaction.CreateParams {
				p := valid
				p.Description = ""
				return p
			}()},
			wantErr: transaction.ErrInvalidParams,
		},
		{
			name: "Missing issue date",
			args: args{params: func() transaction.CreateParams {
				p := valid
				p.IssueDate = time.Time{}
				return p
			}()},
			wantErr: transaction.ErrInvalidParams,
		},
		{
			name: "RepoError",
			args: args{params: valid},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, transaction.ErrInvalidParams) {
					assert.ErrorIs(t, err, transaction.ErrInvalidParams)
				}

				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, issue, got.DueDate, "due date defaults to issue date")
		})
	}
}

func TestService_List(t *testing.T) {
	type args struct {
		filter transaction.ListFilter
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return([]*transaction.Transaction{
						{ID: uuid.New()},
						{ID: uuid.New()},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "Error",
			args: args{filter: transaction.ListFilter{}},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), transaction.ListFilter{}).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.List(context.Background(), tt.args.filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)
	id := uuid.New()

	repo.EXPECT().UpdateStatus(gomock.Any(), id, transaction.StatusPaid).Return(nil)

	require.NoError(t, svc.UpdateStatus(context.Background(), id, transaction.StatusPaid))

	err := svc.UpdateStatus(context.Background(), id, "archived")
	assert.ErrorIs(t, err, transaction.ErrInvalidParams)
}

func TestService_Candidates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	from := time.Date(2023, 11, 18, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 11, 24, 0, 0, 0, 0, time.UTC)

	pending := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPending}
	paid := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusPaid}
	cancelled := &transaction.Transaction{ID: uuid.New(), Status: transaction.StatusCancelled}

	repo.EXPECT().
		ListTransactions(gomock.Any(), transaction.ListFilter{StartDate: &from, EndDate: &to}).
		Return([]*transaction.Transaction{pending, cancelled, paid}, nil)

	got, err := svc.Candidates(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, []*transaction.Transaction{pending, paid}, got)
}

func TestService_Candidates_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := svc.Candidates(context.Background(), time.Now(), time.Now())
	assert.Error(t, err)
}
