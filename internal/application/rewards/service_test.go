package rewards

import (
	"context"
	"errors"
	"testing"

	"github.com/gopay-wallet-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTxStore struct{ mock.Mock }

func (m *mockTxStore) ListAllByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if txs, _ := args.Get(0).([]domain.Transaction); txs != nil {
		return txs, args.Error(1)
	}
	return nil, args.Error(1)
}

func newService(ts *mockTxStore) Service {
	return NewService(ServiceDeps{TransactionRepo: ts})
}

func TestGet_NoTransactions_ZeroPoints(t *testing.T) {
	ts := &mockTxStore{}
	ts.On("ListAllByUser", mock.Anything, "u1").Return([]domain.Transaction{}, nil)

	r, err := newService(ts).Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, int64(0), r.Points)
	assert.Equal(t, rewardsList, r.RewardsList)
}

func TestGet_MixedDirections(t *testing.T) {
	ts := &mockTxStore{}
	ts.On("ListAllByUser", mock.Anything, "u1").Return([]domain.Transaction{
		{Type: domain.TransactionReceive, AmountCents: 100},
		{Type: domain.TransactionReceive, AmountCents: 50},
		{Type: domain.TransactionSend, AmountCents: 200},
		{Type: domain.TransactionSend, AmountCents: 30},
	}, nil)

	r, err := newService(ts).Get(context.Background(), "u1")

	require.NoError(t, err)
	// received 150/5 = 30, sent 230/10 = 23
	assert.Equal(t, int64(53), r.Points)
}

func TestGet_SumsBeforeDividing(t *testing.T) {
	ts := &mockTxStore{}
	// Each amount is below the divisor, but the total is not.
	ts.On("ListAllByUser", mock.Anything, "u1").Return([]domain.Transaction{
		{Type: domain.TransactionReceive, AmountCents: 3},
		{Type: domain.TransactionReceive, AmountCents: 3},
		{Type: domain.TransactionReceive, AmountCents: 4},
	}, nil)

	r, err := newService(ts).Get(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Points)
}

func TestGet_PropagatesStoreError(t *testing.T) {
	ts := &mockTxStore{}
	storeErr := errors.New("dynamo error")
	ts.On("ListAllByUser", mock.Anything, "u1").Return(nil, storeErr)

	_, err := newService(ts).Get(context.Background(), "u1")

	require.Error(t, err)
	assert.Equal(t, storeErr, err)
}
