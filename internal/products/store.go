// Package products reads the catalog and maintains the aggregate rating
// that the review flow recomputes after every write.
package products

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
)

// Product is the item stored in the products table.
type Product struct {
	ProductID     string    `dynamodbav:"product_id" json:"productId"` // PK
	Name          string    `dynamodbav:"name" json:"name"`
	Description   string    `dynamodbav:"description,omitempty" json:"description,omitempty"`
	Price         float64   `dynamodbav:"price" json:"price"`
	Image         string    `dynamodbav:"image,omitempty" json:"image,omitempty"`
	Category      string    `dynamodbav:"category,omitempty" json:"category,omitempty"`
	Sizes         []string  `dynamodbav:"sizes,omitempty" json:"sizes,omitempty"`
	AverageRating *float64  `dynamodbav:"average_rating,omitempty" json:"averageRating,omitempty"`
	TotalReviews  int       `dynamodbav:"total_reviews,omitempty" json:"totalReviews,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}

// Store encapsulates operations on the products table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new products Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName, nowFunc: time.Now}
}

// Get fetches a product. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, productID string) (*Product, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// List returns the whole catalog.
func (s *Store) List(ctx context.Context) ([]Product, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{TableName: &s.tableName})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	var list []Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return list, nil
}

// SetRating writes the recomputed aggregate rating.
func (s *Store) SetRating(ctx context.Context, productID string, rating float64, count int) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression: awsString("SET average_rating = :r, total_reviews = :c, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%.1f", rating)},
			":c":  &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", count)},
			":ua": &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return nil
}

// ClearRating removes the aggregate when the last review disappears, so an
// unrated product shows no stars instead of zero stars.
func (s *Store) ClearRating(ctx context.Context, productID string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression: awsString("REMOVE average_rating, total_reviews SET updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ua": &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("clear rating: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
