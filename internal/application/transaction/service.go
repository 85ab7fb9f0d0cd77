package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/gopay-wallet-api/internal/domain"
	"github.com/gopay-wallet-api/internal/pkg/id"
)

const receiptURLTTL = 15 * time.Minute

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateTransactionRequest) (*domain.Transaction, error)
	Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error)
	List(ctx context.Context, userID string, limit int, cursor string) ([]domain.Transaction, string, error)
	AttachReceipt(ctx context.Context, userID, transactionID, filename, b64Data string) error
	ReceiptURL(ctx context.Context, userID, transactionID string) (string, error)
}

type transactionStore interface {
	Put(ctx context.Context, tx *domain.Transaction) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.Transaction, string, error)
	SetReceiptKey(ctx context.Context, transactionID, key string) error
}

type receiptStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo     transactionStore
	receipts receiptStore
}

type ServiceDeps struct {
	TransactionRepo transactionStore
	ReceiptStore    receiptStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:     deps.TransactionRepo,
		receipts: deps.ReceiptStore,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	tx := &domain.Transaction{
		TransactionID:  id.New(),
		UserID:         userID,
		Title:          req.Title,
		AmountCents:    req.AmountCents,
		Type:           req.Type,
		Description:    req.Description,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Get returns the transaction only when it belongs to userID.
func (s *service) Get(ctx context.Context, userID, transactionID string) (*domain.Transaction, error) {
	tx, err := s.repo.Get(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != userID {
		return nil, fmt.Errorf("transaction belongs to another user: %w", domain.ErrForbidden)
	}
	return tx, nil
}

func (s *service) List(ctx context.Context, userID string, limit int, cursor string) ([]domain.Transaction, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, int32(limit), cursor)
}

// AttachReceipt stores a base64-encoded receipt image in S3 under a key
// derived from the transaction id and records that key on the transaction.
func (s *service) AttachReceipt(ctx context.Context, userID, transactionID, filename, b64Data string) error {
	tx, err := s.Get(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("receipts/%s/%s", tx.TransactionID, filename)
	if _, err := s.receipts.UploadBase64(ctx, key, b64Data); err != nil {
		return err
	}
	return s.repo.SetReceiptKey(ctx, tx.TransactionID, key)
}

// ReceiptURL returns a time-limited download URL for the receipt.
func (s *service) ReceiptURL(ctx context.Context, userID, transactionID string) (string, error) {
	tx, err := s.Get(ctx, userID, transactionID)
	if err != nil {
		return "", err
	}
	if tx.ReceiptKey == nil || *tx.ReceiptKey == "" {
		return "", fmt.Errorf("transaction has no receipt: %w", domain.ErrNotFound)
	}
	return s.receipts.PresignedURL(ctx, *tx.ReceiptKey, receiptURLTTL)
}
