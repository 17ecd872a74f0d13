package faucet

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type healthResponse struct {
	Healthy          *bool   `json:"healthy"`
	ValidatorsOnline *uint   `json:"validators_online"`
	BlockHeight      *uint64 `json:"block_height"`
}

// Probe checks the faucet's plain HTTP health endpoint. The faucet answers
// GET /health with a JSON body carrying a boolean `healthy` field; it serves
// the same body with a 503 when it considers itself unhealthy, so any
// decodable response counts as reachable.
type Probe struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewProbe(baseURL string, timeout time.Duration, logger *zap.Logger) *Probe {
	return &Probe{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Check classifies the faucet as healthy, unhealthy, or unreachable. A
// reachable response without an explicit `healthy: true` is unhealthy: the
// probe fails closed.
func (p *Probe) Check(ctx context.Context) types.FaucetHealth {
	logger := p.logger.Sugar()

	body, err := p.fetch(ctx)
	if err != nil {
		logger.Warnw("faucet unreachable", "url", p.baseURL, "error", err)
		return types.FaucetHealth{}
	}

	unhealthy := false
	health := types.FaucetHealth{
		Reachable:        true,
		Healthy:          body.Healthy,
		ValidatorsOnline: body.ValidatorsOnline,
		BlockHeight:      body.BlockHeight,
	}
	if health.Healthy == nil {
		health.Healthy = &unhealthy
	}
	return health
}

func (p *Probe) fetch(ctx context.Context) (*healthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return nil, errors.Wrap(err, "could not build health request")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "health request failed")
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "could not decode health response")
	}
	return &body, nil
}
