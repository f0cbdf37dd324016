package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// RecapRepo provides typed DynamoDB operations for the recaps table.
type RecapRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRecapRepo(client *dynamodb.Client, tableName string) *RecapRepo {
	return &RecapRepo{client: client, tableName: tableName}
}

// Put writes a recap unconditionally. Used by the recurring per-child path,
// which is append-only: every call carries a fresh recap id.
func (r *RecapRepo) Put(ctx context.Context, rec *domain.Recap) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal recap: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// PutIfAbsent writes a recap only when no record with its id exists.
// Returns domain.ErrAlreadyExists when the conditional check fails, leaving
// the stored record untouched. Used by the idempotent snippet path.
func (r *RecapRepo) PutIfAbsent(ctx context.Context, rec *domain.Recap) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal recap: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(recap_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("recap %s: %w", rec.RecapID, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *RecapRepo) Get(ctx context.Context, recapID string) (*domain.Recap, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("recap_id", recapID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("recap not found: %w", domain.ErrNotFound)
	}
	var rec domain.Recap
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListByUser queries the user_id-created_at GSI, newest recap first.
func (r *RecapRepo) ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Recap, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	var recaps []domain.Recap
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recaps); err != nil {
		return nil, err
	}
	return recaps, nil
}
