package promo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
)

// ErrUsageLimitReached is returned when the conditional usage increment
// loses the race against the last remaining redemption.
var ErrUsageLimitReached = errors.New("promo code usage limit reached")

// ErrCodeExists is returned when creating a code that already exists.
var ErrCodeExists = errors.New("promo code already exists")

// Store encapsulates operations on the promo codes table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new promo Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Normalize uppercases and trims a client-supplied code.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Create persists a new code, refusing to overwrite an existing one.
func (s *Store) Create(ctx context.Context, p *PromoCode) error {
	now := s.nowFunc()
	p.Code = Normalize(p.Code)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal promo code: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(code)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrCodeExists
		}
		return fmt.Errorf("put promo code: %w", err)
	}
	return nil
}

// Update replaces an existing code.
func (s *Store) Update(ctx context.Context, p *PromoCode) error {
	p.Code = Normalize(p.Code)
	p.UpdatedAt = s.nowFunc()

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal promo code: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_exists(code)"),
	})
	if err != nil {
		return fmt.Errorf("update promo code: %w", err)
	}
	return nil
}

// Get fetches a code. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, code string) (*PromoCode, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: Normalize(code)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get promo code: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var p PromoCode
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal promo code: %w", err)
	}
	return &p, nil
}

// List returns every code.
func (s *Store) List(ctx context.Context) ([]PromoCode, error) {
	out, err := s.client.Scan(ctx, &dyn.ScanInput{TableName: &s.tableName})
	if err != nil {
		return nil, fmt.Errorf("scan promo codes: %w", err)
	}
	var list []PromoCode
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &list); err != nil {
		return nil, fmt.Errorf("unmarshal promo codes: %w", err)
	}
	return list, nil
}

// ListActive returns codes that are active and inside their window now.
func (s *Store) ListActive(ctx context.Context) ([]PromoCode, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.nowFunc()
	active := make([]PromoCode, 0, len(all))
	for _, p := range all {
		if p.Active && p.InWindow(now) && !p.Exhausted() {
			active = append(active, p)
		}
	}
	return active, nil
}

// IncrementUsage bumps used_count by one. The write is conditional on the
// limit not being exhausted, so concurrent redemptions of the last slot
// cannot both succeed. Codes without a limit increment unconditionally.
func (s *Store) IncrementUsage(ctx context.Context, code string) error {
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: Normalize(code)},
		},
		UpdateExpression: awsString("SET used_count = if_not_exists(used_count, :zero) + :inc, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":ua":   &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(code) AND (attribute_not_exists(usage_limit) OR used_count < usage_limit)"),
	}
	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrUsageLimitReached
		}
		return fmt.Errorf("increment usage: %w", err)
	}
	return nil
}

// Delete removes a code.
func (s *Store) Delete(ctx context.Context, code string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"code": &types.AttributeValueMemberS{Value: Normalize(code)},
		},
	})
	if err != nil {
		return fmt.Errorf("delete promo code: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
