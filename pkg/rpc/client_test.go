package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCallSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "2.0", req["jsonrpc"])
		require.Equal(t, "system_health", req["method"])
		require.Equal(t, []interface{}{}, req["params"])
		require.Equal(t, float64(1), req["id"])

		w.Write([]byte(`{"jsonrpc":"2.0","result":{"peers":5,"isSyncing":false},"id":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())
	result, err := client.Call(context.Background(), "system_health", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"peers":5,"isSyncing":false}`, string(result))
}

func TestCallRpcError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method not found"},"id":1}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())
	_, err := client.Call(context.Background(), "bogus_method", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Method not found")
}

func TestCallNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())
	_, err := client.Call(context.Background(), "system_health", nil)
	require.Error(t, err)
}

func TestCallMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, zap.NewNop())
	_, err := client.Call(context.Background(), "system_health", nil)
	require.Error(t, err)
}

func TestCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewClient(server.URL, 20*time.Millisecond, zap.NewNop())
	start := time.Now()
	_, err := client.Call(context.Background(), "system_health", nil)
	require.Error(t, err)
	require.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestCallConnectionRefused(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop())
	_, err := client.Call(context.Background(), "system_health", nil)
	require.Error(t, err)
}
