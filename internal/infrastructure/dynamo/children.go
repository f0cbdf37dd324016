package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// ChildRepo provides typed DynamoDB operations for the children table.
type ChildRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChildRepo(client *dynamodb.Client, tableName string) *ChildRepo {
	return &ChildRepo{client: client, tableName: tableName}
}

func (r *ChildRepo) Put(ctx context.Context, c *domain.Child) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal child: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ChildRepo) Get(ctx context.Context, childID string) (*domain.Child, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("child_id", childID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("child not found: %w", domain.ErrNotFound)
	}
	var c domain.Child
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser queries the user_id GSI and filters for enabled profiles.
func (r *ChildRepo) ListByUser(ctx context.Context, userID string) ([]domain.Child, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var children []domain.Child
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &children); err != nil {
		return nil, err
	}
	return children, nil
}
