package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/aws"
)

// ErrStatusMismatch is returned when a conditional status update loses the
// race: the order was not in the expected state at write time.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// ErrOrderExists is returned when a create collides with an existing order id.
var ErrOrderExists = errors.New("order already exists")

// Store encapsulates operations on the orders table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new order. The put is guarded so a retried request with
// the same order id never overwrites the first write.
func (s *Store) Create(ctx context.Context, order *Order) error {
	now := s.nowFunc()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	order.StatusLabel = order.Status.Label()

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrOrderExists
		}
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// ListByUser returns every order placed by userID, newest first.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	return s.scan(ctx, awsString("user_id = :uid"), map[string]types.AttributeValue{
		":uid": &types.AttributeValueMemberS{Value: userID},
	})
}

// ListAll returns every order, newest first. Staff listing only.
func (s *Store) ListAll(ctx context.Context) ([]Order, error) {
	return s.scan(ctx, nil, nil)
}

func (s *Store) scan(ctx context.Context, filter *string, values map[string]types.AttributeValue) ([]Order, error) {
	var out []Order
	var startKey map[string]types.AttributeValue
	for {
		resp, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:                 &s.tableName,
			FilterExpression:          filter,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var page []Order
		if err := attributevalue.UnmarshalListOfMaps(resp.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		out = append(out, page...)
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CASStatus conditionally advances the order from expected to next. Returns
// ErrStatusMismatch when the order was not in expected at write time.
func (s *Store) CASStatus(ctx context.Context, orderID string, expected, next Status) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, status_label = :lbl, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: string(next)},
			":lbl":      &types.AttributeValueMemberS{Value: next.Label()},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
		},
		ConditionExpression: awsString("#s = :expected"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// MarkCancelled writes the full cancellation record in one update: status,
// payment status, timestamps, and the refund fields when money was captured.
func (s *Store) MarkCancelled(ctx context.Context, orderID string, paymentStatus string, requiresRefund bool, refundAmount float64) error {
	now := s.nowFunc()
	expr := "SET #s = :new, status_label = :lbl, payment_status = :ps, cancelled_at = :ca, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":new": &types.AttributeValueMemberS{Value: string(StatusCancelled)},
		":lbl": &types.AttributeValueMemberS{Value: StatusCancelled.Label()},
		":ps":  &types.AttributeValueMemberS{Value: paymentStatus},
		":ca":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		":ua":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if requiresRefund {
		expr += ", requires_refund = :rr, refund_amount = :ra"
		values[":rr"] = &types.AttributeValueMemberBOOL{Value: true}
		values[":ra"] = &types.AttributeValueMemberN{Value: strconv.FormatFloat(refundAmount, 'f', -1, 64)}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         &expr,
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	return nil
}

// SetProviderRef stores a gateway correlation id on the order so the async
// callback can find its way back. attr must be one of the provider ref
// attribute names.
func (s *Store) SetProviderRef(ctx context.Context, orderID, attr, value string) error {
	now := s.nowFunc()
	expr := fmt.Sprintf("SET %s = :v, updated_at = :ua", attr)
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: &expr,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v":  &types.AttributeValueMemberS{Value: value},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", attr, err)
	}
	return nil
}

// SetShippingInfo replaces the recipient details on an existing order.
func (s *Store) SetShippingInfo(ctx context.Context, orderID string, info ShippingInfo) error {
	av, err := attributevalue.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal shipping info: %w", err)
	}
	expr := "SET shipping_info = :si, updated_at = :ua"
	cond := "attribute_exists(order_id)"
	_, err = s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    &expr,
		ConditionExpression: &cond,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":si": av,
			":ua": &types.AttributeValueMemberS{Value: s.nowFunc().Format(time.RFC3339)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("set shipping info: %w", err)
	}
	return nil
}

// RecordPaymentResult reconciles a gateway outcome onto the order. On
// success it also stamps paid_at and the gateway transaction id. The update
// is guarded against double reconciliation of an already-paid order.
func (s *Store) RecordPaymentResult(ctx context.Context, orderID, paymentStatus, transactionID string) error {
	now := s.nowFunc()
	expr := "SET payment_status = :ps, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":ps":   &types.AttributeValueMemberS{Value: paymentStatus},
		":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		":paid": &types.AttributeValueMemberS{Value: PaymentPaid},
	}
	if paymentStatus == PaymentPaid {
		expr += ", paid_at = :pa"
		values[":pa"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}
	}
	if transactionID != "" {
		expr += ", transaction_id = :tid"
		values[":tid"] = &types.AttributeValueMemberS{Value: transactionID}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &expr,
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("payment_status <> :paid"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("record payment result: %w", err)
	}
	return nil
}

// FindByProviderRef looks up the order holding value in the given provider
// ref attribute. Returns (nil, nil) when no order matches.
func (s *Store) FindByProviderRef(ctx context.Context, attr, value string) (*Order, error) {
	filter := fmt.Sprintf("%s = :v", attr)
	out, err := s.client.Scan(ctx, &dyn.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: &filter,
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("find by %s: %w", attr, err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// Provider ref attribute names used with SetProviderRef/FindByProviderRef.
const (
	AttrVNPayTxnRef   = "vnpay_txn_ref"
	AttrMoMoRequestID = "momo_request_id"
	AttrPayPalOrderID = "paypal_order_id"
)

// Delete removes an order. Staff only.
func (s *Store) Delete(ctx context.Context, orderID string) error {
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
