package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Notify(ctx context.Context, event types.AlertEvent) error {
	n.calls++
	return errors.New("delivery broken")
}

func TestLogRecordsBeforeNotifying(t *testing.T) {
	sink := NewMemorySink()
	notifier := &failingNotifier{}
	log := NewLog(sink, []Notifier{notifier}, zap.NewNop())

	err := log.Record(context.Background(), types.AlertEvent{
		Level:     types.SeverityCritical,
		Message:   "node validator-1: unreachable",
		Timestamp: time.Now().UTC(),
	})

	// A broken notifier must not surface as a recording failure.
	require.NoError(t, err)
	require.Len(t, sink.Events(), 1)
	require.Equal(t, 1, notifier.calls)
}

func TestWebhookNotifier(t *testing.T) {
	var received types.AlertEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), types.AlertEvent{
		Level:     types.SeverityWarning,
		Message:   "block height divergence 15 exceeds max lag 10",
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.Equal(t, types.SeverityWarning, received.Level)
	require.Contains(t, received.Message, "divergence")
}

func TestWebhookNotifierErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL)
	err := notifier.Notify(context.Background(), types.AlertEvent{Level: types.SeverityWarning})
	require.Error(t, err)
}
