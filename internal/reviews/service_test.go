package reviews

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hailinh-coffee/coffeeshop-backend/internal/orders"
	"github.com/hailinh-coffee/coffeeshop-backend/internal/products"
)

type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := params.Item["review_id"].(*types.AttributeValueMemberS).Value
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[params.Key["review_id"].(*types.AttributeValueMemberS).Value]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, params.Key["review_id"].(*types.AttributeValueMemberS).Value)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []map[string]types.AttributeValue
	for _, item := range m.items {
		if params.FilterExpression != nil {
			parts := strings.Split(*params.FilterExpression, " = ")
			attr, ph := parts[0], parts[1]
			want := params.ExpressionAttributeValues[ph].(*types.AttributeValueMemberS).Value
			got, ok := item[attr].(*types.AttributeValueMemberS)
			if !ok || got.Value != want {
				continue
			}
		}
		out = append(out, item)
	}
	return &dyn.ScanOutput{Items: out}, nil
}

// fakeOrders serves a fixed order list per user.
type fakeOrders map[string][]orders.Order

func (f fakeOrders) ListByUser(ctx context.Context, userID string) ([]orders.Order, error) {
	return f[userID], nil
}

// fakeRatings records the last rating write per product and serves an
// optional catalog for the name fallback.
type fakeRatings struct {
	catalog map[string]string
	rating  map[string]float64
	count   map[string]int
	cleared map[string]bool
}

func newFakeRatings() *fakeRatings {
	return &fakeRatings{catalog: map[string]string{}, rating: map[string]float64{}, count: map[string]int{}, cleared: map[string]bool{}}
}

func (f *fakeRatings) Get(ctx context.Context, productID string) (*products.Product, error) {
	name, ok := f.catalog[productID]
	if !ok {
		return nil, nil
	}
	return &products.Product{ProductID: productID, Name: name}, nil
}

func (f *fakeRatings) SetRating(ctx context.Context, productID string, rating float64, count int) error {
	f.rating[productID] = rating
	f.count[productID] = count
	delete(f.cleared, productID)
	return nil
}

func (f *fakeRatings) ClearRating(ctx context.Context, productID string) error {
	f.cleared[productID] = true
	delete(f.rating, productID)
	return nil
}

func delivered(orderID, productID string) orders.Order {
	return orders.Order{
		OrderID: orderID,
		Status:  orders.StatusDelivered,
		Items:   []orders.Item{{ProductID: productID}},
	}
}

func TestCreate_RequiresDeliveredOrder(t *testing.T) {
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {
			{OrderID: "o1", Status: orders.StatusShipping, Items: []orders.Item{{ProductID: "p1"}}},
		}},
		newFakeRatings(),
	)

	_, err := svc.Create(context.Background(), CreateInput{ProductID: "p1", UserID: "u1", Rating: 5})
	if !errors.Is(err, ErrNotPurchased) {
		t.Fatalf("expected ErrNotPurchased, got %v", err)
	}
}

func TestCreate_OncePerProduct(t *testing.T) {
	ratings := newFakeRatings()
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {delivered("o1", "p1")}},
		ratings,
	)

	r, err := svc.Create(context.Background(), CreateInput{ProductID: "p1", UserID: "u1", UserName: "Linh", Rating: 4, Comment: "ngon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.OrderID != "o1" {
		t.Errorf("order id = %s", r.OrderID)
	}
	if ratings.rating["p1"] != 4.0 || ratings.count["p1"] != 1 {
		t.Errorf("rating = %v count = %d", ratings.rating["p1"], ratings.count["p1"])
	}

	_, err = svc.Create(context.Background(), CreateInput{ProductID: "p1", UserID: "u1", Rating: 5})
	if !errors.Is(err, ErrAlreadyReviewed) {
		t.Fatalf("expected ErrAlreadyReviewed, got %v", err)
	}
}

func TestCreate_RejectsBadRating(t *testing.T) {
	svc := NewService(NewStore(newMockDynamo(), "reviews"), fakeOrders{}, newFakeRatings())
	for _, rating := range []int{0, 6, -1} {
		if _, err := svc.Create(context.Background(), CreateInput{ProductID: "p1", UserID: "u1", Rating: rating}); !errors.Is(err, ErrBadRating) {
			t.Errorf("rating %d: %v", rating, err)
		}
	}
}

func TestRatingMeanRoundsToOneDecimal(t *testing.T) {
	ratings := newFakeRatings()
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{
			"u1": {delivered("o1", "p1")},
			"u2": {delivered("o2", "p1")},
			"u3": {delivered("o3", "p1")},
		},
		ratings,
	)

	ctx := context.Background()
	for user, rating := range map[string]int{"u1": 5, "u2": 4, "u3": 4} {
		if _, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: user, Rating: rating}); err != nil {
			t.Fatalf("create for %s: %v", user, err)
		}
	}
	// mean of 5,4,4 is 4.333..., stored as 4.3
	if got := ratings.rating["p1"]; got != 4.3 {
		t.Errorf("rating = %v, want 4.3", got)
	}
	if ratings.count["p1"] != 3 {
		t.Errorf("count = %d", ratings.count["p1"])
	}
}

func TestDelete_OwnershipAndRatingClear(t *testing.T) {
	ratings := newFakeRatings()
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {delivered("o1", "p1")}},
		ratings,
	)

	ctx := context.Background()
	r, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, r.ReviewID, "u2", false); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete: %v", err)
	}
	if err := svc.Delete(ctx, r.ReviewID, "u1", false); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ratings.cleared["p1"] {
		t.Error("rating not cleared after last review removed")
	}
	if err := svc.Delete(ctx, r.ReviewID, "u1", false); !errors.Is(err, ErrNotFound) {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestCreate_SecondDeliveryAllowsSecondReview(t *testing.T) {
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {delivered("o1", "p1"), delivered("o2", "p1")}},
		newFakeRatings(),
	)

	ctx := context.Background()
	first, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 3})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 5})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.OrderID == second.OrderID {
		t.Errorf("both reviews attached to order %s", first.OrderID)
	}
	if _, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 4}); !errors.Is(err, ErrAlreadyReviewed) {
		t.Errorf("third create: %v", err)
	}
}

func TestEligibility_FallsBackToCatalogName(t *testing.T) {
	ratings := newFakeRatings()
	ratings.catalog["p1"] = "Cà phê sữa đá"
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {{
			OrderID: "o1",
			Status:  orders.StatusDelivered,
			Items:   []orders.Item{{Name: "Cà phê sữa đá"}},
		}}},
		ratings,
	)

	r, err := svc.Create(context.Background(), CreateInput{ProductID: "p1", UserID: "u1", Rating: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.OrderID != "o1" {
		t.Errorf("order id = %s", r.OrderID)
	}
}

func TestCanReview(t *testing.T) {
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {delivered("o1", "p1")}},
		newFakeRatings(),
	)

	ctx := context.Background()
	if ok, err := svc.CanReview(ctx, "u2", "p1"); err != nil || ok {
		t.Errorf("stranger: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.CanReview(ctx, "u1", "p1"); err != nil || !ok {
		t.Errorf("buyer before review: ok=%v err=%v", ok, err)
	}
	if _, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, err := svc.CanReview(ctx, "u1", "p1"); err != nil || ok {
		t.Errorf("buyer after review: ok=%v err=%v", ok, err)
	}
}

func TestUpdate_RecomputesRating(t *testing.T) {
	ratings := newFakeRatings()
	svc := NewService(
		NewStore(newMockDynamo(), "reviews"),
		fakeOrders{"u1": {delivered("o1", "p1")}},
		ratings,
	)

	ctx := context.Background()
	r, err := svc.Create(ctx, CreateInput{ProductID: "p1", UserID: "u1", Rating: 2})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update(ctx, r.ReviewID, "u2", 5, "x"); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update: %v", err)
	}
	upd, err := svc.Update(ctx, r.ReviewID, "u1", 5, "đổi ý")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if upd.Rating != 5 {
		t.Errorf("rating = %d", upd.Rating)
	}
	if ratings.rating["p1"] != 5.0 {
		t.Errorf("product rating = %v", ratings.rating["p1"])
	}
}
