package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhoward/aio-engine/pkg/types"
)

func sampleAlert() types.Alert {
	return types.Alert{
		Kind:         types.AlertDecline,
		Level:        types.AlertLevelWarning,
		ExperimentID: "hard-conversations-123",
		PageSlug:     "hard-conversations",
		ChangePct:    -0.31,
		Message:      "impressions down 31.0% since changes on 2025-05-01",
		Timestamp:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWebhookSink_PostsJSON(t *testing.T) {
	var received types.Alert
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewWebhookSink(srv.URL)
	require.NoError(t, s.Send(context.Background(), sampleAlert()))
	assert.Equal(t, "hard-conversations-123", received.ExperimentID)
	assert.Equal(t, types.AlertDecline, received.Kind)
}

func TestWebhookSink_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewWebhookSink(srv.URL)
	err := s.Send(context.Background(), sampleAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestFileSink_AppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alerts.jsonl")
	s, err := NewFileSink(path)
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), sampleAlert()))
	second := sampleAlert()
	second.Kind = types.AlertSuccess
	require.NoError(t, s.Send(context.Background(), second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first types.Alert
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, types.AlertDecline, first.Kind)
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, input)
	return &sns.PublishOutput{}, m.err
}

func TestSNSSink_PublishesToTopic(t *testing.T) {
	mock := &mockSNS{}
	s, err := NewSNSSink("arn:aws:sns:us-east-1:123:aio-alerts", WithSNSClient(mock))
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), sampleAlert()))
	require.Len(t, mock.inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:aio-alerts", *mock.inputs[0].TopicArn)
	assert.Contains(t, *mock.inputs[0].Subject, "decline")

	var published types.Alert
	require.NoError(t, json.Unmarshal([]byte(*mock.inputs[0].Message), &published))
	assert.Equal(t, "hard-conversations", published.PageSlug)
}

func TestNewSNSSink_RequiresTopicARN(t *testing.T) {
	_, err := NewSNSSink("")
	require.Error(t, err)
}

func TestNewDispatcher_SinkValidation(t *testing.T) {
	_, err := NewDispatcher([]types.SinkConfig{{Type: types.SinkWebhook}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook URL required")

	_, err = NewDispatcher([]types.SinkConfig{{Type: "carrier-pigeon"}})
	require.Error(t, err)

	d, err := NewDispatcher([]types.SinkConfig{{Type: types.SinkConsole}})
	require.NoError(t, err)
	require.Len(t, d.sinks, 1)
}

type recordingSink struct {
	alerts []types.Alert
	err    error
}

func (r *recordingSink) Send(_ context.Context, a types.Alert) error {
	r.alerts = append(r.alerts, a)
	return r.err
}
func (r *recordingSink) Name() string { return "recording" }

func TestDispatch_ContinuesPastSinkFailure(t *testing.T) {
	failing := &recordingSink{err: assert.AnError}
	working := &recordingSink{}
	d := &Dispatcher{sinks: []Sink{failing, working}, logger: discardLogger()}

	d.DispatchAll(context.Background(), []types.Alert{sampleAlert(), sampleAlert()})

	assert.Len(t, failing.alerts, 2)
	assert.Len(t, working.alerts, 2)
}
