package node

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avast/retry-go"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/paraxiom/fleet-monitor/pkg/rpc"
	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	methodSystemHealth   = "system_health"
	methodChainGetHeader = "chain_getHeader"

	retryDelay = 500 * time.Millisecond
)

type systemHealth struct {
	Peers     uint `json:"peers"`
	IsSyncing bool `json:"isSyncing"`
}

type chainHeader struct {
	Number string `json:"number"`
}

// Poller produces a HealthSnapshot for one validator endpoint per call. The
// whole snapshot is retried up to `attempts` times (default one attempt, no
// retry); individual RPC calls are never retried below that.
type Poller struct {
	logger   *zap.Logger
	timeout  time.Duration
	attempts uint
}

func NewPoller(timeout time.Duration, attempts uint, logger *zap.Logger) *Poller {
	if attempts == 0 {
		attempts = 1
	}
	return &Poller{
		logger:   logger,
		timeout:  timeout,
		attempts: attempts,
	}
}

// Poll queries `system_health` and `chain_getHeader` on the endpoint. If
// either call fails in transport or decode, the snapshot is marked
// unreachable and carries no numeric fields. A node that answers the health
// query but not the head query is deliberately collapsed to unreachable
// rather than modeled as a distinct partial state.
func (p *Poller) Poll(ctx context.Context, endpoint types.ValidatorEndpoint) types.HealthSnapshot {
	logger := p.logger.Sugar()

	snapshot := types.HealthSnapshot{
		Endpoint:  endpoint,
		Timestamp: time.Now().UTC(),
	}

	var health systemHealth
	var height uint64
	err := retry.Do(
		func() error {
			var err error
			health, height, err = p.pollOnce(ctx, endpoint)
			return err
		},
		retry.Attempts(p.attempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logger.Warnw("node unreachable", "node", endpoint.Name, "url", endpoint.RpcURL, "error", err)
		return snapshot
	}

	peers := health.Peers
	syncing := health.IsSyncing
	snapshot.PeerCount = &peers
	snapshot.IsSyncing = &syncing
	snapshot.BlockHeight = &height
	snapshot.Reachable = true

	logger.Debugw("polled node", "node", endpoint.Name, "peers", peers, "syncing", syncing, "height", height)
	return snapshot
}

func (p *Poller) pollOnce(ctx context.Context, endpoint types.ValidatorEndpoint) (systemHealth, uint64, error) {
	client := rpc.NewClient(endpoint.RpcURL, p.timeout, p.logger)

	var health systemHealth
	result, err := client.Call(ctx, methodSystemHealth, nil)
	if err != nil {
		return health, 0, err
	}
	if err := json.Unmarshal(result, &health); err != nil {
		return health, 0, errors.Wrap(err, "could not decode system health")
	}

	result, err = client.Call(ctx, methodChainGetHeader, nil)
	if err != nil {
		return health, 0, err
	}
	var header chainHeader
	if err := json.Unmarshal(result, &header); err != nil {
		return health, 0, errors.Wrap(err, "could not decode chain header")
	}

	// The head number comes over the wire as a 0x-prefixed hex string.
	height, err := hexutil.DecodeUint64(header.Number)
	if err != nil {
		return health, 0, errors.Wrapf(err, "malformed block number %q", header.Number)
	}

	return health, height, nil
}
