package rewards

import (
	"context"

	"github.com/gopay-wallet-api/internal/domain"
)

// Points accrue per transaction direction: 1 point per 5 cents received and
// 1 point per 10 cents sent, computed over summed totals.
const (
	receiveDivisor = 5
	sendDivisor    = 10
)

var rewardsList = []string{
	"5% on amount received",
	"10% on amount sent",
}

type Service interface {
	Get(ctx context.Context, userID string) (*domain.Rewards, error)
}

type transactionStore interface {
	ListAllByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
}

type service struct {
	transactions transactionStore
}

type ServiceDeps struct {
	TransactionRepo transactionStore
}

func NewService(deps ServiceDeps) Service {
	return &service{transactions: deps.TransactionRepo}
}

// Get recomputes the user's points from their full transaction history.
// Totals are summed per direction before dividing, so sub-divisor amounts
// still contribute.
func (s *service) Get(ctx context.Context, userID string) (*domain.Rewards, error) {
	txs, err := s.transactions.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var received, sent int64
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionReceive:
			received += tx.AmountCents
		case domain.TransactionSend:
			sent += tx.AmountCents
		}
	}
	return &domain.Rewards{
		Points:      received/receiveDivisor + sent/sendDivisor,
		RewardsList: rewardsList,
	}, nil
}
