package domain

import "time"

// Transaction types. Rewards accrue at different rates depending on direction.
const (
	TransactionSend    = "SEND"
	TransactionReceive = "RECEIVE"
)

// Transaction is a single money movement recorded against a user's wallet.
// Amounts are integer cents; the API never handles floating-point money.
type Transaction struct {
	TransactionID  string    `json:"id" dynamodbav:"transaction_id"`
	UserID         string    `json:"user_id" dynamodbav:"user_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	AmountCents    int64     `json:"amount_cents" dynamodbav:"amount_cents"`
	Type           string    `json:"type" dynamodbav:"type"` // "SEND" | "RECEIVE"
	Description    string    `json:"description,omitempty" dynamodbav:"description"`
	RecipientName  string    `json:"recipient_name,omitempty" dynamodbav:"recipient_name"`
	RecipientPhone string    `json:"recipient_phone,omitempty" dynamodbav:"recipient_phone"`
	ReceiptKey     *string   `json:"-" dynamodbav:"receipt_key"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateTransactionRequest struct {
	Title          string `json:"title" validate:"required"`
	AmountCents    int64  `json:"amount_cents" validate:"required,gt=0"`
	Type           string `json:"type" validate:"required,oneof=SEND RECEIVE"`
	Description    string `json:"description" validate:"max=500"`
	RecipientName  string `json:"recipient_name"`
	RecipientPhone string `json:"recipient_phone"`
}
