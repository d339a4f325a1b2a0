package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"homeport-backend/application/ports"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DraftTierStore is the durable draft tier. References survive process
// restarts and the full sign-up redirect, and expire via the table's TTL
// attribute so abandoned submissions do not accumulate.
type DraftTierStore struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewDraftTierStore creates a DynamoDB-backed draft tier
func NewDraftTierStore(client *dynamodb.Client, tableName string, ttl time.Duration, logger *zap.Logger) *DraftTierStore {
	return &DraftTierStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		logger:    logger,
	}
}

// Put writes the reference, replacing any prior value for the client
func (s *DraftTierStore) Put(ctx context.Context, clientID, recordID string) error {
	expiresAt := time.Now().Add(s.ttl).Unix()

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: draftPK(clientID)},
			"SK":        &types.AttributeValueMemberS{Value: "REF"},
			"RecordID":  &types.AttributeValueMemberS{Value: recordID},
			"ExpiresAt": &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)},
		},
	})
	if err != nil {
		return pkgerrors.NewTransportError("draft reference write", err)
	}
	return nil
}

// Get returns the stored record id, "" when absent or expired. DynamoDB TTL
// deletion lags, so expiry is also checked here.
func (s *DraftTierStore) Get(ctx context.Context, clientID string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: draftPK(clientID)},
			"SK": &types.AttributeValueMemberS{Value: "REF"},
		},
	})
	if err != nil {
		return "", pkgerrors.NewTransportError("draft reference read", err)
	}
	if out.Item == nil {
		return "", nil
	}

	if expires, ok := out.Item["ExpiresAt"].(*types.AttributeValueMemberN); ok {
		sec, perr := strconv.ParseInt(expires.Value, 10, 64)
		if perr == nil && time.Now().Unix() >= sec {
			return "", nil
		}
	}

	recordID, ok := out.Item["RecordID"].(*types.AttributeValueMemberS)
	if !ok {
		s.logger.Warn("Draft reference item missing RecordID", zap.String("clientID", clientID))
		return "", nil
	}
	return recordID.Value, nil
}

// Delete removes the reference; absent keys are not an error
func (s *DraftTierStore) Delete(ctx context.Context, clientID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: draftPK(clientID)},
			"SK": &types.AttributeValueMemberS{Value: "REF"},
		},
	})
	if err != nil {
		return pkgerrors.NewTransportError("draft reference delete", err)
	}
	return nil
}

func draftPK(clientID string) string {
	return fmt.Sprintf("DRAFT#%s", clientID)
}

var _ ports.DraftTierStore = (*DraftTierStore)(nil)
