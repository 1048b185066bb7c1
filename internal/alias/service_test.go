package alias_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/conciliar/internal/alias"
)

func TestService_Suggest(t *testing.T) {
	type args struct {
		raw string
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *alias.MockRepository)
		want      string
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Match",
			args: args{raw: "  POSTO IPIRANGA 123 "},
			setupMock: func(m *alias.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "POSTO IPIRANGA 123").Return("Fuel", nil)
			},
			want: "Fuel",
		},
		{
			name: "No match",
			args: args{raw: "UNKNOWN"},
			setupMock: func(m *alias.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "UNKNOWN").Return("", nil)
			},
		},
		{
			name: "Blank skips lookup",
			args: args{raw: "   "},
		},
		{
			name: "Repo error",
			args: args{raw: "X"},
			setupMock: func(m *alias.MockRepository) {
				m.EXPECT().FindMatch(gomock.Any(), "X").Return("", errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := alias.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := alias.NewService(repo).Suggest(context.Background(), tt.args.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Learn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := alias.NewMockRepository(ctrl)
	svc := alias.NewService(repo)

	repo.EXPECT().CreateMapping(gomock.Any(), "UBER *TRIP", "Uber").Return(nil)

	require.NoError(t, svc.Learn(context.Background(), " UBER *TRIP ", "Uber"))
	require.NoError(t, svc.Learn(context.Background(), "Uber", "UBER"), "same text is not stored")

	err := svc.Learn(context.Background(), "", "Uber")
	assert.ErrorIs(t, err, alias.ErrInvalidMapping)
}

func TestService_ListAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := alias.NewMockRepository(ctrl)
	svc := alias.NewService(repo)
	id := uuid.New()

	repo.EXPECT().ListMappings(gomock.Any()).Return([]alias.Mapping{{ID: id, RawPattern: "UBER", PreferredDescription: "Uber"}}, nil)
	repo.EXPECT().DeleteMapping(gomock.Any(), id).Return(alias.ErrNotFound)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Uber", got[0].PreferredDescription)

	assert.ErrorIs(t, svc.Delete(context.Background(), id), alias.ErrNotFound)
}
