package dynamodb

import (
	"context"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// GetSuccessfulPatterns mines past experiments for changes summaries with a
// better-than-even improved rate. DynamoDB has no GROUP BY; the listing is
// small and the query runs a few times a month, so aggregation happens here.
func (s *Store) GetSuccessfulPatterns(ctx context.Context) ([]types.PatternStat, error) {
	exps, err := s.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	return store.AggregatePatterns(exps), nil
}

// GetPerformanceByElement joins change rows with their parent experiments and
// tallies outcomes per element kind.
func (s *Store) GetPerformanceByElement(ctx context.Context) ([]types.ElementPerformance, error) {
	exps, err := s.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	changes, err := s.getAllChanges(ctx)
	if err != nil {
		return nil, err
	}
	return store.AggregateElementPerformance(exps, changes), nil
}
