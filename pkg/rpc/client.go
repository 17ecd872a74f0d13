package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const requestID = 1

type request struct {
	JsonRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

type response struct {
	JsonRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
	ID      int             `json:"id"`
}

// Error is a JSON-RPC error object returned inside a transport-successful
// response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Client issues JSON-RPC 2.0 calls against a single endpoint. The configured
// timeout bounds total wall time for connect and response of each call. The
// client never retries; retry policy belongs to the caller.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call performs a single JSON-RPC call and returns the raw `result` member.
// Transport failures, non-JSON bodies and JSON-RPC error responses are all
// returned as errors.
func (c *Client) Call(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	logger := c.logger.Sugar()

	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(request{
		JsonRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      requestID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "could not build request for %s", c.endpoint)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "call to %s failed", method)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read response for %s", method)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("call to %s returned status %d", method, resp.StatusCode)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return nil, errors.Wrapf(err, "could not decode response for %s", method)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	logger.Debugw("rpc call succeeded", "endpoint", c.endpoint, "method", method)
	return rpcResp.Result, nil
}
