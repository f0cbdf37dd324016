package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/yonasKu/sproutbook-api/internal/domain"
)

// EntryRepo provides typed DynamoDB operations for the journal entries table.
type EntryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEntryRepo(client *dynamodb.Client, tableName string) *EntryRepo {
	return &EntryRepo{client: client, tableName: tableName}
}

// created_at is the sort key of the user_id-created_at GSI, and DynamoDB
// compares string keys byte-wise. RFC3339Nano drops trailing zeros, so its
// encodings do not sort chronologically ("00.5Z" < "00Z"). Entries store and
// query created_at in this fixed-width layout instead.
const entryTimeLayout = "2006-01-02T15:04:05.000000000Z"

func entryTime(t time.Time) string {
	return t.UTC().Format(entryTimeLayout)
}

func (r *EntryRepo) Put(ctx context.Context, e *domain.JournalEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	item["created_at"] = &types.AttributeValueMemberS{Value: entryTime(e.CreatedAt)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *EntryRepo) Get(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("entry_id", entryID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("entry not found: %w", domain.ErrNotFound)
	}
	var e domain.JournalEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// QueryWindow returns a user's entries created inside the window (both ends
// inclusive), newest first, via the user_id-created_at GSI. When childID is
// non-empty only entries referencing that child are returned. The result is
// bounded by limit.
func (r *EntryRepo) QueryWindow(ctx context.Context, userID, childID string, window domain.Window, limit int32) ([]domain.JournalEntry, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid AND created_at BETWEEN :ws AND :we"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":ws":  &types.AttributeValueMemberS{Value: entryTime(window.Start)},
			":we":  &types.AttributeValueMemberS{Value: entryTime(window.End)},
		},
		ScanIndexForward: aws.Bool(false), // newest first
		Limit:            aws.Int32(limit),
	}
	if childID != "" {
		input.FilterExpression = aws.String("contains(child_ids, :cid)")
		input.ExpressionAttributeValues[":cid"] = &types.AttributeValueMemberS{Value: childID}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var entries []domain.JournalEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountWindow returns the number of a pair's entries inside the window.
// Used by the reactive trigger to detect threshold crossings cheaply.
func (r *EntryRepo) CountWindow(ctx context.Context, userID, childID string, window domain.Window) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :uid AND created_at BETWEEN :ws AND :we"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":ws":  &types.AttributeValueMemberS{Value: entryTime(window.Start)},
			":we":  &types.AttributeValueMemberS{Value: entryTime(window.End)},
		},
		Select: types.SelectCount,
	}
	if childID != "" {
		input.FilterExpression = aws.String("contains(child_ids, :cid)")
		input.ExpressionAttributeValues[":cid"] = &types.AttributeValueMemberS{Value: childID}
	}
	return countQueryPages(ctx, r.client, input)
}

// countQueryPages sums Query counts across all result pages. A COUNT query
// still pages at 1MB of scanned data, so a single call undercounts large
// windows.
func countQueryPages(ctx context.Context, client dynamodb.QueryAPIClient, input *dynamodb.QueryInput) (int, error) {
	total := 0
	p := dynamodb.NewQueryPaginator(client, input)
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
	}
	return total, nil
}

// ListByUser returns a user's most recent entries, newest first.
func (r *EntryRepo) ListByUser(ctx context.Context, userID string, limit int32) ([]domain.JournalEntry, error) {
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
	var entries []domain.JournalEntry
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
