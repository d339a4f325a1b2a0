package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeport-backend/application/ports"
	"homeport-backend/domain/core/entities"
	"homeport-backend/domain/core/valueobjects"
	pkgerrors "homeport-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// RecordRepository implements the RecordRepository port using DynamoDB.
// Single-table layout: PK=RECORD#<id>, SK=METADATA. GSI1 keys the item by
// owner (GSI1PK=OWNER#<ownerId>, GSI1SK=<createdAt>) and only exists once
// the record is claimed, so the owned-record lookup never sees anonymous
// submissions.
type RecordRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.RecordRepository {
	return &RecordRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// recordItem represents the DynamoDB item structure for a record
type recordItem struct {
	PK         string                 `dynamodbav:"PK"`
	SK         string                 `dynamodbav:"SK"`
	GSI1PK     string                 `dynamodbav:"GSI1PK,omitempty"`
	GSI1SK     string                 `dynamodbav:"GSI1SK,omitempty"`
	EntityType string                 `dynamodbav:"EntityType"`
	RecordID   string                 `dynamodbav:"RecordID"`
	OwnerID    string                 `dynamodbav:"OwnerID,omitempty"`
	Completed  bool                   `dynamodbav:"Completed"`
	Fields     map[string]interface{} `dynamodbav:"Fields"`
	CreatedAt  string                 `dynamodbav:"CreatedAt"`
	UpdatedAt  string                 `dynamodbav:"UpdatedAt"`
	Version    int                    `dynamodbav:"Version"`
}

// Create persists a freshly submitted record
func (r *RecordRepository) Create(ctx context.Context, record *entities.Record) error {
	item := itemFromRecord(record)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal record").WithCause(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewConflictError("record already exists")
		}
		return pkgerrors.NewTransportError("record create", err)
	}

	r.logger.Debug("Record created",
		zap.String("recordID", record.ID().String()),
	)

	return nil
}

// FetchByID retrieves a record by its ID
func (r *RecordRepository) FetchByID(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: recordPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewTransportError("record fetch", err)
	}
	if out.Item == nil {
		return nil, pkgerrors.NewNotFoundError("record")
	}

	return unmarshalRecord(out.Item)
}

// FetchLatestFor retrieves the most recently created record owned by the
// principal; (nil, nil) when the principal owns nothing
func (r *RecordRepository) FetchLatestFor(ctx context.Context, ownerID string) (*entities.Record, error) {
	if ownerID == "" {
		return nil, nil
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(r.indexName),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: ownerPK(ownerID)},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewTransportError("owned record lookup", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}

	return unmarshalRecord(out.Items[0])
}

// BindOwner claims the record for the principal. The check-and-set is a
// single conditional update: it succeeds only while the item has no OwnerID
// attribute or already carries this owner. That condition is what closes
// the two-tab race; no caller-side read-then-write is involved.
func (r *RecordRepository) BindOwner(ctx context.Context, id valueobjects.RecordID, ownerID string) (*entities.Record, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("ownerID cannot be empty")
	}

	now := time.Now().Format(time.RFC3339Nano)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: recordPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression: aws.String(
			"SET OwnerID = :owner, GSI1PK = :gsi1pk, GSI1SK = CreatedAt, UpdatedAt = :now, Version = Version + :one",
		),
		ConditionExpression: aws.String(
			"attribute_exists(PK) AND (attribute_not_exists(OwnerID) OR OwnerID = :owner)",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner":  &types.AttributeValueMemberS{Value: ownerID},
			":gsi1pk": &types.AttributeValueMemberS{Value: ownerPK(ownerID)},
			":now":    &types.AttributeValueMemberS{Value: now},
			":one":    &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, r.classifyBindFailure(ctx, id)
		}
		return nil, pkgerrors.NewTransportError("owner bind", err)
	}

	return unmarshalRecord(out.Attributes)
}

// classifyBindFailure distinguishes a missing record from a lost ownership
// race after a failed conditional bind
func (r *RecordRepository) classifyBindFailure(ctx context.Context, id valueobjects.RecordID) error {
	_, err := r.FetchByID(ctx, id)
	if pkgerrors.IsNotFound(err) {
		return err
	}
	if err != nil {
		return err
	}
	return pkgerrors.NewOwnershipConflictError(id.String())
}

// Update persists the record's current field set and version
func (r *RecordRepository) Update(ctx context.Context, record *entities.Record) error {
	fieldsAV, err := attributevalue.Marshal(map[string]interface{}(record.Fields()))
	if err != nil {
		return pkgerrors.NewInternalError("failed to marshal record fields").WithCause(err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: recordPK(record.ID().String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression:    aws.String("SET Fields = :fields, UpdatedAt = :now, Version = :version"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":fields":  fieldsAV,
			":now":     &types.AttributeValueMemberS{Value: record.UpdatedAt().Format(time.RFC3339Nano)},
			":version": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", record.Version())},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return pkgerrors.NewNotFoundError("record")
		}
		return pkgerrors.NewTransportError("record update", err)
	}

	return nil
}

// MarkCompleted flips the completion flag and returns the updated record
func (r *RecordRepository) MarkCompleted(ctx context.Context, id valueobjects.RecordID) (*entities.Record, error) {
	now := time.Now().Format(time.RFC3339Nano)
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: recordPK(id.String())},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression:    aws.String("SET Completed = :true, UpdatedAt = :now, Version = Version + :one"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
			":now":  &types.AttributeValueMemberS{Value: now},
			":one":  &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return nil, pkgerrors.NewNotFoundError("record")
		}
		return nil, pkgerrors.NewTransportError("record completion", err)
	}

	return unmarshalRecord(out.Attributes)
}

func itemFromRecord(record *entities.Record) recordItem {
	item := recordItem{
		PK:         recordPK(record.ID().String()),
		SK:         "METADATA",
		EntityType: "RECORD",
		RecordID:   record.ID().String(),
		OwnerID:    record.OwnerID(),
		Completed:  record.Completed(),
		Fields:     record.Fields(),
		CreatedAt:  record.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:  record.UpdatedAt().Format(time.RFC3339Nano),
		Version:    record.Version(),
	}

	// The owner index entry exists only for claimed records
	if record.IsOwned() {
		item.GSI1PK = ownerPK(record.OwnerID())
		item.GSI1SK = item.CreatedAt
	}

	return item
}

func unmarshalRecord(av map[string]types.AttributeValue) (*entities.Record, error) {
	var item recordItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return nil, pkgerrors.NewInternalError("failed to unmarshal record").WithCause(err)
	}

	id, err := valueobjects.NewRecordIDFromString(item.RecordID)
	if err != nil {
		return nil, pkgerrors.NewInternalError("corrupt record id in store").WithCause(err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		createdAt = time.Time{}
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return entities.ReconstructRecord(
		id,
		item.OwnerID,
		item.Completed,
		valueobjects.NewFieldSetFrom(item.Fields),
		createdAt,
		updatedAt,
		item.Version,
	), nil
}

func recordPK(id string) string {
	return fmt.Sprintf("RECORD#%s", id)
}

func ownerPK(ownerID string) string {
	return fmt.Sprintf("OWNER#%s", ownerID)
}
