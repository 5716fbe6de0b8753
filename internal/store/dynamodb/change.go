package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// LogChange inserts a child change row under its parent experiment. The put
// is transacted with a condition check on the parent's truth item, so
// referential integrity holds even though DynamoDB has no foreign keys.
func (s *Store) LogChange(ctx context.Context, change types.Change) (string, error) {
	if change.ExperimentID == "" {
		return "", &store.ValidationError{Field: "experimentId", Reason: "must not be empty"}
	}
	if change.ElementKind == "" {
		return "", &store.ValidationError{Field: "elementKind", Reason: "must not be empty"}
	}

	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	if change.ID == "" {
		change.ID = newChangeID(change.CreatedAt)
	}
	if change.Type == "" {
		change.Type = types.ChangeInsert
	}

	data, err := json.Marshal(change)
	if err != nil {
		return "", fmt.Errorf("marshaling change: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbtypes.TransactWriteItem{
			{
				ConditionCheck: &ddbtypes.ConditionCheck{
					TableName:           &s.tableName,
					ConditionExpression: aws.String("attribute_exists(PK)"),
					Key: map[string]ddbtypes.AttributeValue{
						"PK": &ddbtypes.AttributeValueMemberS{Value: experimentPK(change.ExperimentID)},
						"SK": &ddbtypes.AttributeValueMemberS{Value: experimentTruthSK(change.ExperimentID)},
					},
				},
			},
			{
				Put: &ddbtypes.Put{
					TableName: &s.tableName,
					Item: map[string]ddbtypes.AttributeValue{
						"PK":     &ddbtypes.AttributeValueMemberS{Value: experimentPK(change.ExperimentID)},
						"SK":     &ddbtypes.AttributeValueMemberS{Value: changeSK(change.CreatedAt, change.ID)},
						"GSI1PK": &ddbtypes.AttributeValueMemberS{Value: typeChange},
						"GSI1SK": &ddbtypes.AttributeValueMemberS{Value: experimentGSISK(change.CreatedAt, change.ID)},
						"data":   &ddbtypes.AttributeValueMemberS{Value: string(data)},
					},
				},
			},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return "", &store.NotFoundError{Kind: "experiment", ID: change.ExperimentID}
		}
		return "", fmt.Errorf("logging change: %w", err)
	}
	return change.ID, nil
}

// GetChanges returns an experiment's changes in insertion order.
func (s *Store) GetChanges(ctx context.Context, experimentID string) ([]types.Change, error) {
	var changes []types.Change
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk":     &ddbtypes.AttributeValueMemberS{Value: experimentPK(experimentID)},
				":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixChange},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing changes: %w", err)
		}
		changes = append(changes, s.unmarshalChanges(out.Items)...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return changes, nil
}

// getAllChanges returns every change row across all experiments, for
// aggregation queries.
func (s *Store) getAllChanges(ctx context.Context) ([]types.Change, error) {
	var changes []types.Change
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk": &ddbtypes.AttributeValueMemberS{Value: typeChange},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing all changes: %w", err)
		}
		changes = append(changes, s.unmarshalChanges(out.Items)...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return changes, nil
}

func (s *Store) unmarshalChanges(items []map[string]ddbtypes.AttributeValue) []types.Change {
	var changes []types.Change
	for _, item := range items {
		data, err := attributeStr(item, "data")
		if err != nil {
			s.logger.Warn("skipping corrupt change data", "error", err)
			continue
		}
		var c types.Change
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			s.logger.Warn("skipping corrupt change data", "error", err)
			continue
		}
		changes = append(changes, c)
	}
	return changes
}
