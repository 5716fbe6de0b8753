package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/danhoward/aio-engine/pkg/types"
)

// MockMetricsProvider is an in-memory MetricsProvider for testing.
type MockMetricsProvider struct {
	Pages    []types.PageRow
	PageData map[string]*types.PageMetrics
	ListErr  error
	FetchErr error
}

func (m *MockMetricsProvider) Window(now time.Time) types.DateRange {
	end := now.AddDate(0, 0, -3)
	return types.DateRange{
		Start: end.AddDate(0, 0, -28).Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
}

func (m *MockMetricsProvider) GetAllPages(_ context.Context, _ types.DateRange) ([]types.PageRow, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Pages, nil
}

func (m *MockMetricsProvider) GetPageMetrics(_ context.Context, pageURL string, _ types.DateRange) (*types.PageMetrics, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	return m.PageData[pageURL], nil
}

// MockCMS is an in-memory PageStore for testing, keyed by slug.
type MockCMS struct {
	mu       sync.Mutex
	Pages    map[string]*types.Page
	Updates  map[int64]string
	FetchErr error
	WriteErr error
}

func NewMockCMS() *MockCMS {
	return &MockCMS{
		Pages:   make(map[string]*types.Page),
		Updates: make(map[int64]string),
	}
}

func (m *MockCMS) FetchBySlug(_ context.Context, slug string) (*types.Page, error) {
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Pages[slug], nil
}

func (m *MockCMS) UpdateContent(_ context.Context, id int64, content string) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates[id] = content
	return nil
}

// UpdateCount returns the number of content writes recorded.
func (m *MockCMS) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Updates)
}

// MockGenerator is an in-memory ContentGenerator for testing. When GenerateFn
// is set it overrides the canned Result.
type MockGenerator struct {
	Result     types.GenerationResult
	Err        error
	GenerateFn func(title, content string, missing []string) (types.GenerationResult, error)
	Calls      int
}

func (m *MockGenerator) GenerateElements(_ context.Context, title, content string, missing []string) (types.GenerationResult, error) {
	m.Calls++
	if m.GenerateFn != nil {
		return m.GenerateFn(title, content, missing)
	}
	if m.Err != nil {
		return types.GenerationResult{}, m.Err
	}
	return m.Result, nil
}
