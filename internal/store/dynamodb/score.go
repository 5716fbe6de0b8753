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

// SaveScoreSnapshot appends one score observation to a page's history. The
// sort key carries a nonce so same-day observations never collide.
func (s *Store) SaveScoreSnapshot(ctx context.Context, snap types.ScoreSnapshot) error {
	if snap.PageURL == "" {
		return &store.ValidationError{Field: "pageUrl", Reason: "must not be empty"}
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	if snap.Date == "" {
		snap.Date = snap.CreatedAt.Format("2006-01-02")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling score snapshot: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item: map[string]ddbtypes.AttributeValue{
			"PK":   &ddbtypes.AttributeValueMemberS{Value: scorePK(snap.PageURL)},
			"SK":   &ddbtypes.AttributeValueMemberS{Value: scoreSK(snap.Date, snap.CreatedAt)},
			"data": &ddbtypes.AttributeValueMemberS{Value: string(data)},
		},
	})
	if err != nil {
		return fmt.Errorf("saving score snapshot: %w", err)
	}
	return nil
}

// GetScoreHistory returns a page's score snapshots, newest first.
func (s *Store) GetScoreHistory(ctx context.Context, pageURL string, limit int) ([]types.ScoreSnapshot, error) {
	if limit <= 0 {
		limit = 50
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: scorePK(pageURL)},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixScore},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("listing score history: %w", err)
	}

	var snaps []types.ScoreSnapshot
	for _, item := range out.Items {
		data, err := attributeStr(item, "data")
		if err != nil {
			s.logger.Warn("skipping corrupt score snapshot", "error", err)
			continue
		}
		var snap types.ScoreSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			s.logger.Warn("skipping corrupt score snapshot", "error", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
