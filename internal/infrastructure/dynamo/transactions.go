package dynamo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gopay-wallet-api/internal/domain"
)

// TransactionRepo provides typed DynamoDB operations for the transactions table.
type TransactionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTransactionRepo(client *dynamodb.Client, tableName string) *TransactionRepo {
	return &TransactionRepo{client: client, tableName: tableName}
}

func (r *TransactionRepo) Put(ctx context.Context, tx *domain.Transaction) error {
	item, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TransactionRepo) Get(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("transaction_id", transactionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, domain.ErrNotFound)
	}
	var tx domain.Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepo) SetReceiptKey(ctx context.Context, transactionID, key string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldReceiptKey: key})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("transaction_id", transactionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// txCursor is the LastEvaluatedKey of a user_id-created_at GSI query. The GSI
// key plus the table key are all required to resume the query.
type txCursor struct {
	TransactionID string `json:"transaction_id" dynamodbav:"transaction_id"`
	UserID        string `json:"user_id" dynamodbav:"user_id"`
	CreatedAt     string `json:"created_at" dynamodbav:"created_at"`
}

// ListByUser queries the user_id-created_at GSI newest-first.
// cursor is an opaque page marker returned by the previous call; empty means
// the first page. Returns the items, the next cursor (empty when no more
// pages), and any error.
func (r *TransactionRepo) ListByUser(ctx context.Context, userID string, limit int32, cursor string) ([]domain.Transaction, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		start, err := decodeTxCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"transaction_id": &types.AttributeValueMemberS{Value: start.TransactionID},
			"user_id":        &types.AttributeValueMemberS{Value: start.UserID},
			"created_at":     &types.AttributeValueMemberS{Value: start.CreatedAt},
		}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var txs []domain.Transaction
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &txs); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if len(out.LastEvaluatedKey) > 0 {
		nextCursor, err = encodeTxCursor(out.LastEvaluatedKey)
		if err != nil {
			return nil, "", err
		}
	}
	return txs, nextCursor, nil
}

// ListAllByUser drains every page of a user's transactions. Used by the
// rewards calculation, which needs the full history.
func (r *TransactionRepo) ListAllByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var all []domain.Transaction
	cursor := ""
	for {
		page, next, err := r.ListByUser(ctx, userID, 100, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		cursor = next
	}
}

func encodeTxCursor(lastKey map[string]types.AttributeValue) (string, error) {
	var c txCursor
	if err := attributevalue.UnmarshalMap(lastKey, &c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeTxCursor(cursor string) (txCursor, error) {
	var c txCursor
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	if c.TransactionID == "" || c.UserID == "" || c.CreatedAt == "" {
		return c, fmt.Errorf("incomplete cursor")
	}
	return c, nil
}
