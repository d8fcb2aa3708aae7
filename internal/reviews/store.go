package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
)

// Store encapsulates operations on the reviews table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new reviews Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName, nowFunc: time.Now}
}

// Put writes a review, creating or replacing it.
func (s *Store) Put(ctx context.Context, r *Review) error {
	now := s.nowFunc()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put review: %w", err)
	}
	return nil
}

// Get fetches a review. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, reviewID string) (*Review, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"review_id": &types.AttributeValueMemberS{Value: reviewID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var r Review
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return &r, nil
}

// ListByProduct returns every review for a product.
func (s *Store) ListByProduct(ctx context.Context, productID string) ([]Review, error) {
	return s.scan(ctx, "product_id", productID)
}

// ListByUser returns every review a user has written.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Review, error) {
	return s.scan(ctx, "user_id", userID)
}

func (s *Store) scan(ctx context.Context, attr, value string) ([]Review, error) {
	filter := fmt.Sprintf("%s = :v", attr)
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: &filter,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scan reviews: %w", err)
	}
	var list []Review
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal reviews: %w", err)
	}
	return list, nil
}

// Delete removes a review.
func (s *Store) Delete(ctx context.Context, reviewID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"review_id": &types.AttributeValueMemberS{Value: reviewID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
