package faucet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProbeHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"healthy":true,"validators_online":3,"block_height":100}`))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, time.Second, zap.NewNop())
	health := probe.Check(context.Background())

	require.True(t, health.Reachable)
	require.True(t, health.OK())
	require.NotNil(t, health.ValidatorsOnline)
	require.Equal(t, uint(3), *health.ValidatorsOnline)
	require.NotNil(t, health.BlockHeight)
	require.Equal(t, uint64(100), *health.BlockHeight)
}

func TestProbeUnhealthyWith503(t *testing.T) {
	// The faucet serves the same JSON body with a 503 when it is degraded:
	// reachable, but not healthy.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"healthy":false,"validators_online":0,"block_height":null}`))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, time.Second, zap.NewNop())
	health := probe.Check(context.Background())

	require.True(t, health.Reachable)
	require.False(t, health.OK())
}

func TestProbeMissingHealthyFieldFailsClosed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"running"}`))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, time.Second, zap.NewNop())
	health := probe.Check(context.Background())

	require.True(t, health.Reachable)
	require.NotNil(t, health.Healthy)
	require.False(t, *health.Healthy)
	require.False(t, health.OK())
}

func TestProbeUnreachable(t *testing.T) {
	probe := NewProbe("http://127.0.0.1:1", 100*time.Millisecond, zap.NewNop())
	health := probe.Check(context.Background())

	require.False(t, health.Reachable)
	require.False(t, health.OK())
}

func TestProbeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer server.Close()

	probe := NewProbe(server.URL, time.Second, zap.NewNop())
	health := probe.Check(context.Background())

	require.False(t, health.Reachable)
}
