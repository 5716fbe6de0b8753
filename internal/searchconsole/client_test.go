package searchconsole

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func TestWindow_AppliesLagAndLength(t *testing.T) {
	c, err := New(types.MetricsAPIConfig{BaseURL: "http://x", DataLagDays: 3, WindowDays: 28})
	require.NoError(t, err)

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	w := c.Window(now)
	assert.Equal(t, "2025-06-12", w.End)
	assert.Equal(t, "2025-05-15", w.Start)
}

func TestGetAllPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics/pages", r.URL.Path)
		assert.Equal(t, "2025-05-01", r.URL.Query().Get("start"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"rows":[
			{"pageUrl":"https://example.com/a/","impressions":5000,"clicks":200,"ctr":0.04,"position":7.1},
			{"pageUrl":"https://example.com/b/","impressions":1200,"clicks":30,"ctr":0.025,"position":12.4}
		]}`))
	}))
	defer srv.Close()

	c, err := New(types.MetricsAPIConfig{BaseURL: srv.URL, Token: "secret"})
	require.NoError(t, err)

	rows, err := c.GetAllPages(context.Background(), types.DateRange{Start: "2025-05-01", End: "2025-05-28"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "https://example.com/a/", rows[0].PageURL)
	assert.Equal(t, 5000, rows[0].Impressions)
}

func TestGetPageMetrics_AbsentIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "https://example.com/ghost/", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"rows":[]}`))
	}))
	defer srv.Close()

	c, err := New(types.MetricsAPIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	m, err := c.GetPageMetrics(context.Background(), "https://example.com/ghost/", types.DateRange{Start: "2025-05-01", End: "2025-05-28"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestGetPageMetrics_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(types.MetricsAPIConfig{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetPageMetrics(context.Background(), "https://example.com/a/", types.DateRange{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(types.MetricsAPIConfig{})
	require.Error(t, err)

	_, err = New(types.MetricsAPIConfig{BaseURL: "http://x", Timeout: "not-a-duration"})
	require.Error(t, err)
}
