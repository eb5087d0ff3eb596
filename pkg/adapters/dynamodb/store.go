package dynamodb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aretw0/chatflow/pkg/domain"
)

const (
	pkPrefix = "CONV#"
	skState  = "STATE#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Store.
// *dynamodb.Client satisfies it.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements ports.ConversationStore on a single DynamoDB table with a
// string partition key "PK" and sort key "SK". The table's TTL attribute is "ttl".
type Store struct {
	api       dynamodbAPI
	tableName string
	ttl       time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long an idle conversation is kept. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a new DynamoDB conversation store.
func New(api dynamodbAPI, tableName string, opts ...Option) (*Store, error) {
	if api == nil {
		return nil, errors.New("dynamodb: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("dynamodb: table name must not be empty")
	}
	s := &Store{api: api, tableName: tableName}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func key(conversationID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pkPrefix + conversationID},
		"SK": &types.AttributeValueMemberS{Value: skState},
	}
}

// Save writes the conversation, replacing any previous version.
func (s *Store) Save(ctx context.Context, conv *domain.Conversation) error {
	item, err := s.conversationItem(conv)
	if err != nil {
		return fmt.Errorf("dynamodb: Save: %w", err)
	}
	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("dynamodb: Save: %w", err)
	}
	return nil
}

// Load reads a conversation with a consistent read.
func (s *Store) Load(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            key(conversationID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: Load: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}
	if expired(out.Item, time.Now()) {
		return nil, fmt.Errorf("%w: %s", domain.ErrConversationNotFound, conversationID)
	}

	conv, err := itemToConversation(out.Item)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: Load: %w", err)
	}
	return conv, nil
}

// Delete removes a conversation. Missing items are not an error.
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(conversationID),
	})
	if err != nil {
		return fmt.Errorf("dynamodb: Delete: %w", err)
	}
	return nil
}

// List scans the table for conversation records.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var (
		ids   []string
		start map[string]types.AttributeValue
		now   = time.Now()
	)
	for {
		out, err := s.api.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.tableName),
			FilterExpression:     aws.String("SK = :sk"),
			ProjectionExpression: aws.String("PK, SK, #ttl"),
			ExpressionAttributeNames: map[string]string{
				"#ttl": "ttl",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":sk": &types.AttributeValueMemberS{Value: skState},
			},
			ExclusiveStartKey: start,
		})
		if err != nil {
			return nil, fmt.Errorf("dynamodb: List: %w", err)
		}
		for _, item := range out.Items {
			if sk, _ := strAttr(item, "SK"); sk != skState || expired(item, now) {
				continue
			}
			pk, err := strAttr(item, "PK")
			if err != nil {
				return nil, fmt.Errorf("dynamodb: List: %w", err)
			}
			ids = append(ids, strings.TrimPrefix(pk, pkPrefix))
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		start = out.LastEvaluatedKey
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) conversationItem(conv *domain.Conversation) (map[string]types.AttributeValue, error) {
	state, err := json.Marshal(conv.State)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	item := key(conv.ID)
	item["conversationId"] = &types.AttributeValueMemberS{Value: conv.ID}
	item["flowId"] = &types.AttributeValueMemberS{Value: conv.FlowID}
	item["state"] = &types.AttributeValueMemberS{Value: string(state)}
	item["updatedAt"] = &types.AttributeValueMemberS{Value: conv.UpdatedAt.UTC().Format(time.RFC3339Nano)}
	if s.ttl > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Add(s.ttl).Unix(), 10)}
	}
	return item, nil
}

func itemToConversation(item map[string]types.AttributeValue) (*domain.Conversation, error) {
	id, err := strAttr(item, "conversationId")
	if err != nil {
		return nil, err
	}
	flowID, err := strAttr(item, "flowId")
	if err != nil {
		return nil, err
	}
	raw, err := strAttr(item, "state")
	if err != nil {
		return nil, err
	}
	var state domain.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}

	conv := &domain.Conversation{ID: id, FlowID: flowID, State: state}
	if ts, err := strAttr(item, "updatedAt"); err == nil && ts != "" {
		updated, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("decode updatedAt: %w", err)
		}
		conv.UpdatedAt = updated
	}
	return conv, nil
}

// expired reports whether DynamoDB's lazy TTL deletion has not caught up yet.
func expired(item map[string]types.AttributeValue, now time.Time) bool {
	v, ok := item["ttl"].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	ts, err := strconv.ParseInt(v.Value, 10, 64)
	if err != nil {
		return false
	}
	return ts <= now.Unix()
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q is not a string", key)
	}
	return s.Value, nil
}
