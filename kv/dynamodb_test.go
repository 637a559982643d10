package kv

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory DynamoDBAPI keyed on the "key" attribute.
type fakeDynamoDB struct {
	mu     sync.Mutex
	items  map[string]map[string]types.AttributeValue
	status types.TableStatus
	err    error
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{
		items:  make(map[string]map[string]types.AttributeValue),
		status: types.TableStatusActive,
	}
}

func keyOf(key map[string]types.AttributeValue) string {
	if v, ok := key[AttrKey].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamoDB) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamoDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoDB) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   in.TableName,
			TableStatus: f.status,
		},
	}, nil
}

func TestDynamoDB_ItemShape(t *testing.T) {
	fake := newFakeDynamoDB()
	d := NewDynamoDB(fake, "slots")

	if err := d.Set(context.Background(), "task", "{}"); err != nil {
		t.Fatal(err)
	}

	item := fake.items["task"]
	if item == nil {
		t.Fatal("expected item stored under key 'task'")
	}
	if v, ok := item[AttrValue].(*types.AttributeValueMemberS); !ok || v.Value != "{}" {
		t.Errorf("expected value attribute '{}', got %#v", item[AttrValue])
	}
	if _, ok := item[AttrUpdatedAt].(*types.AttributeValueMemberS); !ok {
		t.Error("expected updated_at string attribute")
	}
}

func TestDynamoDB_TableNotActive(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.status = types.TableStatusCreating
	d := NewDynamoDB(fake, "slots")

	if err := d.Available(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestDynamoDB_ClientErrors(t *testing.T) {
	fake := newFakeDynamoDB()
	boom := errors.New("throttled")
	fake.err = boom
	d := NewDynamoDB(fake, "slots")
	ctx := context.Background()

	if err := d.Available(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable from Available, got %v", err)
	}
	if _, _, err := d.Get(ctx, "task"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error from Get, got %v", err)
	}
	if err := d.Set(ctx, "task", "{}"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error from Set, got %v", err)
	}
	if err := d.Remove(ctx, "task"); !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error from Remove, got %v", err)
	}
}

func TestDynamoDB_Table(t *testing.T) {
	d := NewDynamoDB(newFakeDynamoDB(), "my-slots")
	if d.Table() != "my-slots" {
		t.Errorf("expected table 'my-slots', got %q", d.Table())
	}
}
