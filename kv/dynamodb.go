package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the substrate.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Slot attribute names in the DynamoDB table.
const (
	AttrKey       = "key"
	AttrValue     = "value"
	AttrUpdatedAt = "updated_at"
)

// SlotItem is the DynamoDB item shape for one slot.
type SlotItem struct {
	Key       string `dynamodbav:"key"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// DynamoDB is a substrate storing one item per slot in a DynamoDB table
// whose hash key is the string attribute "key".
type DynamoDB struct {
	client DynamoDBAPI
	table  string
}

// NewDynamoDB creates a substrate over the given table.
func NewDynamoDB(client DynamoDBAPI, table string) *DynamoDB {
	return &DynamoDB{client: client, table: table}
}

// Table returns the backing table name.
func (d *DynamoDB) Table() string {
	return d.table
}

// Available implements Substrate. The table must exist and be ACTIVE.
func (d *DynamoDB) Available(ctx context.Context) error {
	out, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.table),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if out.Table == nil || out.Table.TableStatus != types.TableStatusActive {
		return fmt.Errorf("%w: table %s is not active", ErrUnavailable, d.table)
	}
	return nil
}

// Get implements Substrate.
func (d *DynamoDB) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		Key:            slotKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("read slot %q: %w", key, err)
	}
	if result.Item == nil {
		return "", false, nil
	}

	var item SlotItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", false, fmt.Errorf("unmarshal slot %q: %w", key, err)
	}
	return item.Value, true, nil
}

// Set implements Substrate.
func (d *DynamoDB) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(SlotItem{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal slot %q: %w", key, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

// Remove implements Substrate.
func (d *DynamoDB) Remove(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.table),
		Key:       slotKey(key),
	})
	if err != nil {
		return fmt.Errorf("remove slot %q: %w", key, err)
	}
	return nil
}

func slotKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrKey: &types.AttributeValueMemberS{Value: key},
	}
}
