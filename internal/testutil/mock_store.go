// Package testutil provides shared test utilities for the engine.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.Store = (*MockStore)(nil)

// MockStore is an in-memory Store implementation for testing. Optional Err
// fields inject failures into the corresponding operations.
type MockStore struct {
	mu          sync.Mutex
	experiments map[string]types.Experiment
	order       []string // creation order of experiment ids
	changes     map[string][]types.Change
	scores      map[string][]types.ScoreSnapshot

	CreateErr error
	UpdateErr error
	ListErr   error
}

// NewMockStore creates a new in-memory mock store.
func NewMockStore() *MockStore {
	return &MockStore{
		experiments: make(map[string]types.Experiment),
		changes:     make(map[string][]types.Change),
		scores:      make(map[string][]types.ScoreSnapshot),
	}
}

func (m *MockStore) Start(_ context.Context) error { return nil }
func (m *MockStore) Stop(_ context.Context) error  { return nil }
func (m *MockStore) Ping(_ context.Context) error  { return nil }

func (m *MockStore) CreateExperiment(_ context.Context, exp types.Experiment) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	if err := store.ValidateNewExperiment(exp); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	if exp.ID == "" {
		exp.ID = fmt.Sprintf("exp-%d", len(m.experiments)+1)
	}
	if _, ok := m.experiments[exp.ID]; ok {
		return "", &store.ValidationError{Field: "id", Reason: "already exists"}
	}
	exp.Status = types.ExperimentActive
	exp.Outcome = ""
	exp.Post = nil
	exp.EvaluatedAt = nil
	m.experiments[exp.ID] = exp
	m.order = append(m.order, exp.ID)
	return exp.ID, nil
}

func (m *MockStore) GetExperiment(_ context.Context, id string) (*types.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.experiments[id]
	if !ok {
		return nil, &store.NotFoundError{Kind: "experiment", ID: id}
	}
	return &exp, nil
}

func (m *MockStore) GetActiveExperiments(ctx context.Context) ([]types.Experiment, error) {
	all, err := m.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	var result []types.Experiment
	for _, exp := range all {
		if exp.Status == types.ExperimentActive && exp.Outcome == "" {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *MockStore) GetAllExperiments(_ context.Context) ([]types.Experiment, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]types.Experiment, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, m.experiments[m.order[i]])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockStore) GetExperimentsForPage(ctx context.Context, pageURL string) ([]types.Experiment, error) {
	all, err := m.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	var result []types.Experiment
	for _, exp := range all {
		if exp.PageURL == pageURL {
			result = append(result, exp)
		}
	}
	return result, nil
}

func (m *MockStore) GetLastExperimentForPage(ctx context.Context, pageURL string) (*types.Experiment, error) {
	exps, err := m.GetExperimentsForPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if len(exps) == 0 {
		return nil, nil
	}
	return &exps[0], nil
}

func (m *MockStore) CountExperimentsSince(_ context.Context, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, exp := range m.experiments {
		if !exp.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (m *MockStore) UpdatePostMetrics(_ context.Context, id string, post types.MetricsSnapshot, outcome types.Outcome, notes string) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.experiments[id]
	if !ok {
		return &store.NotFoundError{Kind: "experiment", ID: id}
	}
	exp.Post = &post
	exp.Outcome = outcome
	exp.OutcomeNotes = notes
	if outcome != "" {
		exp.Status = types.ExperimentCompleted
		now := time.Now().UTC()
		exp.EvaluatedAt = &now
	}
	m.experiments[id] = exp
	return nil
}

func (m *MockStore) LogChange(_ context.Context, change types.Change) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiments[change.ExperimentID]; !ok {
		return "", &store.NotFoundError{Kind: "experiment", ID: change.ExperimentID}
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}
	if change.ID == "" {
		change.ID = fmt.Sprintf("chg-%d", len(m.changes[change.ExperimentID])+1)
	}
	if change.Type == "" {
		change.Type = types.ChangeInsert
	}
	m.changes[change.ExperimentID] = append(m.changes[change.ExperimentID], change)
	return change.ID, nil
}

func (m *MockStore) GetChanges(_ context.Context, experimentID string) ([]types.Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]types.Change(nil), m.changes[experimentID]...), nil
}

func (m *MockStore) SaveScoreSnapshot(_ context.Context, snap types.ScoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}
	m.scores[snap.PageURL] = append(m.scores[snap.PageURL], snap)
	return nil
}

func (m *MockStore) GetScoreHistory(_ context.Context, pageURL string, limit int) ([]types.ScoreSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps := m.scores[pageURL]
	result := make([]types.ScoreSnapshot, 0, len(snaps))
	for i := len(snaps) - 1; i >= 0; i-- {
		result = append(result, snaps[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *MockStore) GetSuccessfulPatterns(ctx context.Context) ([]types.PatternStat, error) {
	all, err := m.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	return store.AggregatePatterns(all), nil
}

func (m *MockStore) GetPerformanceByElement(ctx context.Context) ([]types.ElementPerformance, error) {
	all, err := m.GetAllExperiments(ctx)
	if err != nil {
		return nil, err
	}
	var changes []types.Change
	m.mu.Lock()
	for _, chs := range m.changes {
		changes = append(changes, chs...)
	}
	m.mu.Unlock()
	return store.AggregateElementPerformance(all, changes), nil
}

// SeedExperiment inserts an experiment bypassing creation invariants, so tests
// can set up completed or evaluated records directly.
func (m *MockStore) SeedExperiment(exp types.Experiment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.experiments[exp.ID] = exp
	m.order = append(m.order, exp.ID)
}

// ExperimentCount returns the number of stored experiments.
func (m *MockStore) ExperimentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.experiments)
}
