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

// CreateExperiment inserts a new experiment using dual-write: truth item plus
// a per-page list copy, in one transaction. The truth put is conditional on
// the id not existing.
func (s *Store) CreateExperiment(ctx context.Context, exp types.Experiment) (string, error) {
	if err := store.ValidateNewExperiment(exp); err != nil {
		return "", err
	}

	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	if exp.ID == "" {
		exp.ID = newExperimentID(exp.PageSlug, exp.CreatedAt)
	}
	exp.Status = types.ExperimentActive
	exp.Outcome = ""
	exp.OutcomeNotes = ""
	exp.Post = nil
	exp.EvaluatedAt = nil

	data, err := json.Marshal(exp)
	if err != nil {
		return "", fmt.Errorf("marshaling experiment: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbtypes.TransactWriteItem{
			{
				Put: &ddbtypes.Put{
					TableName:           &s.tableName,
					ConditionExpression: aws.String("attribute_not_exists(PK)"),
					Item: map[string]ddbtypes.AttributeValue{
						"PK":     &ddbtypes.AttributeValueMemberS{Value: experimentPK(exp.ID)},
						"SK":     &ddbtypes.AttributeValueMemberS{Value: experimentTruthSK(exp.ID)},
						"GSI1PK": &ddbtypes.AttributeValueMemberS{Value: typeExperiment},
						"GSI1SK": &ddbtypes.AttributeValueMemberS{Value: experimentGSISK(exp.CreatedAt, exp.ID)},
						"data":   &ddbtypes.AttributeValueMemberS{Value: string(data)},
					},
				},
			},
			{
				Put: &ddbtypes.Put{
					TableName: &s.tableName,
					Item: map[string]ddbtypes.AttributeValue{
						"PK":   &ddbtypes.AttributeValueMemberS{Value: pagePK(exp.PageURL)},
						"SK":   &ddbtypes.AttributeValueMemberS{Value: experimentListSK(exp.CreatedAt, exp.ID)},
						"data": &ddbtypes.AttributeValueMemberS{Value: string(data)},
					},
				},
			},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return "", &store.ValidationError{Field: "id", Reason: "already exists"}
		}
		return "", fmt.Errorf("creating experiment: %w", err)
	}

	s.logger.Info("experiment created",
		"id", exp.ID,
		"page", exp.PageSlug,
		"changes", exp.ChangesSummary,
	)
	return exp.ID, nil
}

// GetExperiment retrieves an experiment from the truth item (strongly
// consistent).
func (s *Store) GetExperiment(ctx context.Context, id string) (*types.Experiment, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		ConsistentRead: aws.Bool(true),
		Key: map[string]ddbtypes.AttributeValue{
			"PK": &ddbtypes.AttributeValueMemberS{Value: experimentPK(id)},
			"SK": &ddbtypes.AttributeValueMemberS{Value: experimentTruthSK(id)},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, &store.NotFoundError{Kind: "experiment", ID: id}
	}

	data, err := attributeStr(out.Item, "data")
	if err != nil {
		return nil, err
	}
	var exp types.Experiment
	if err := json.Unmarshal([]byte(data), &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// GetActiveExperiments returns unevaluated active experiments, newest first.
func (s *Store) GetActiveExperiments(ctx context.Context) ([]types.Experiment, error) {
	all, err := s.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	var active []types.Experiment
	for _, exp := range all {
		if exp.Status == types.ExperimentActive && exp.Outcome == "" {
			active = append(active, exp)
		}
	}
	return active, nil
}

// GetAllExperiments returns every experiment across all pages, newest first.
func (s *Store) GetAllExperiments(ctx context.Context) ([]types.Experiment, error) {
	var exps []types.Experiment
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk": &ddbtypes.AttributeValueMemberS{Value: typeExperiment},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("listing experiments: %w", err)
		}
		exps = append(exps, s.unmarshalExperiments(out.Items)...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return exps, nil
}

// GetExperimentsForPage returns a page's full experiment history, newest
// first, from the page list copies.
func (s *Store) GetExperimentsForPage(ctx context.Context, pageURL string) ([]types.Experiment, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: pagePK(pageURL)},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixExperiment},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("listing experiments for page: %w", err)
	}
	return s.unmarshalExperiments(out.Items), nil
}

// GetLastExperimentForPage returns the newest experiment for a page, or nil
// if the page has never been experimented on.
func (s *Store) GetLastExperimentForPage(ctx context.Context, pageURL string) (*types.Experiment, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":pk":     &ddbtypes.AttributeValueMemberS{Value: pagePK(pageURL)},
			":prefix": &ddbtypes.AttributeValueMemberS{Value: prefixExperiment},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching last experiment for page: %w", err)
	}
	exps := s.unmarshalExperiments(out.Items)
	if len(exps) == 0 {
		return nil, nil
	}
	return &exps[0], nil
}

// CountExperimentsSince counts experiments created at or after since. The
// GSI1 sort key starts with the RFC3339 creation time, so a key range query
// answers this without fetching items.
func (s *Store) CountExperimentsSince(ctx context.Context, since time.Time) (int, error) {
	count := 0
	var startKey map[string]ddbtypes.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              &s.tableName,
			IndexName:              aws.String("GSI1"),
			KeyConditionExpression: aws.String("GSI1PK = :pk AND GSI1SK >= :since"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":pk":    &ddbtypes.AttributeValueMemberS{Value: typeExperiment},
				":since": &ddbtypes.AttributeValueMemberS{Value: since.UTC().Format(time.RFC3339Nano)},
			},
			Select:            ddbtypes.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("counting experiments: %w", err)
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return count, nil
}

// UpdatePostMetrics records post-change metrics and optionally an outcome on
// an experiment. Read-modify-write against the truth item, then a transactional
// rewrite of both copies; keys are deterministic so the operation is
// idempotent.
func (s *Store) UpdatePostMetrics(ctx context.Context, id string, post types.MetricsSnapshot, outcome types.Outcome, notes string) error {
	exp, err := s.GetExperiment(ctx, id)
	if err != nil {
		return err
	}

	exp.Post = &post
	if outcome != "" {
		now := time.Now().UTC()
		exp.Outcome = outcome
		exp.OutcomeNotes = notes
		exp.Status = types.ExperimentCompleted
		exp.EvaluatedAt = &now
	}

	return s.putExperimentCopies(ctx, *exp)
}

// putExperimentCopies rewrites the truth item and page list copy for an
// existing experiment in one transaction.
func (s *Store) putExperimentCopies(ctx context.Context, exp types.Experiment) error {
	data, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshaling experiment: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []ddbtypes.TransactWriteItem{
			{
				Put: &ddbtypes.Put{
					TableName: &s.tableName,
					Item: map[string]ddbtypes.AttributeValue{
						"PK":     &ddbtypes.AttributeValueMemberS{Value: experimentPK(exp.ID)},
						"SK":     &ddbtypes.AttributeValueMemberS{Value: experimentTruthSK(exp.ID)},
						"GSI1PK": &ddbtypes.AttributeValueMemberS{Value: typeExperiment},
						"GSI1SK": &ddbtypes.AttributeValueMemberS{Value: experimentGSISK(exp.CreatedAt, exp.ID)},
						"data":   &ddbtypes.AttributeValueMemberS{Value: string(data)},
					},
				},
			},
			{
				Put: &ddbtypes.Put{
					TableName: &s.tableName,
					Item: map[string]ddbtypes.AttributeValue{
						"PK":   &ddbtypes.AttributeValueMemberS{Value: pagePK(exp.PageURL)},
						"SK":   &ddbtypes.AttributeValueMemberS{Value: experimentListSK(exp.CreatedAt, exp.ID)},
						"data": &ddbtypes.AttributeValueMemberS{Value: string(data)},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("updating experiment %s: %w", exp.ID, err)
	}
	return nil
}

func (s *Store) unmarshalExperiments(items []map[string]ddbtypes.AttributeValue) []types.Experiment {
	var exps []types.Experiment
	for _, item := range items {
		data, err := attributeStr(item, "data")
		if err != nil {
			s.logger.Warn("skipping corrupt experiment data", "error", err)
			continue
		}
		var exp types.Experiment
		if err := json.Unmarshal([]byte(data), &exp); err != nil {
			s.logger.Warn("skipping corrupt experiment data", "error", err)
			continue
		}
		exps = append(exps, exp)
	}
	return exps
}
