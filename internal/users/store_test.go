package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
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
	pk := params.Item["email"].(*types.AttributeValueMemberS).Value
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(email)" {
		if _, exists := m.items[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[params.Key["email"].(*types.AttributeValueMemberS).Value]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return &dyn.UpdateItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return &dyn.ScanOutput{}, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store := NewStore(newMockDynamo(), "users")
	ctx := context.Background()

	u, err := store.Register(ctx, "Linh", "Linh@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "linh@example.com" {
		t.Errorf("email not normalized: %s", u.Email)
	}
	if u.PasswordHash == "s3cret-pass" || u.PasswordHash == "" {
		t.Error("password stored in the clear")
	}

	got, err := store.Authenticate(ctx, "LINH@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.UserID != u.UserID {
		t.Errorf("user id mismatch")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := NewStore(newMockDynamo(), "users")
	ctx := context.Background()

	if _, err := store.Register(ctx, "A", "a@example.com", "password-1"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := store.Register(ctx, "B", "A@Example.Com", "password-2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthenticate_Failures(t *testing.T) {
	store := NewStore(newMockDynamo(), "users")
	ctx := context.Background()

	if _, err := store.Register(ctx, "A", "a@example.com", "password-1"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := store.Authenticate(ctx, "a@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@example.com", "password-1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: %v", err)
	}
}
