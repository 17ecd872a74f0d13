package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paraxiom/fleet-monitor/pkg/alert"
	"github.com/paraxiom/fleet-monitor/pkg/consistency"
	"github.com/paraxiom/fleet-monitor/pkg/faucet"
	"github.com/paraxiom/fleet-monitor/pkg/health"
	"github.com/paraxiom/fleet-monitor/pkg/node"
	"github.com/paraxiom/fleet-monitor/pkg/output"
	"github.com/paraxiom/fleet-monitor/pkg/types"
	"go.uber.org/zap"
)

// Monitor drives one pass over the configured fleet: poll every node
// concurrently, evaluate each snapshot, check cross-node consistency, probe
// the faucet, record alerts and report. It holds no state between passes
// beyond the alert log.
type Monitor struct {
	config *Config
	logger *zap.Logger

	poller *node.Poller
	probe  *faucet.Probe
	alerts *alert.Log
	writer *output.Writer
}

func New(config *Config, zapLogger *zap.Logger) (*Monitor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var sink alert.Sink
	var err error
	switch {
	case config.Alerts.Postgres.Enabled:
		sink, err = alert.NewPostgresSink(config.Alerts.Postgres.Dsn, zapLogger)
	case config.Alerts.Path != "":
		sink, err = alert.NewFileSink(config.Alerts.Path, config.Alerts.MaxSizeBytes)
	default:
		sink = alert.NewMemorySink()
	}
	if err != nil {
		return nil, err
	}

	var notifiers []alert.Notifier
	if config.Alerts.Webhook.Enabled {
		notifiers = append(notifiers, alert.NewWebhookNotifier(config.Alerts.Webhook.URL))
	}
	if config.Alerts.Kafka.Enabled {
		notifiers = append(notifiers, alert.NewKafkaNotifier(config.Alerts.Kafka.BootstrapServers, config.Alerts.Kafka.Topic))
	}

	var writer *output.Writer
	if config.Output != nil && config.Output.Path != "" {
		writer, err = output.NewFileWriter(config.Output.Path)
		if err != nil {
			return nil, err
		}
	}

	var probe *faucet.Probe
	if config.Faucet != nil && config.Faucet.Endpoint != "" {
		probe = faucet.NewProbe(config.Faucet.Endpoint, config.RpcTimeout, zapLogger)
	}

	return &Monitor{
		config: config,
		logger: zapLogger,
		poller: node.NewPoller(config.RpcTimeout, config.PollAttempts, zapLogger),
		probe:  probe,
		alerts: alert.NewLog(sink, notifiers, zapLogger),
		writer: writer,
	}, nil
}

// RunPass performs one complete monitoring pass and returns its result. The
// pass never aborts early: a failing node degrades that node's snapshot and
// nothing else.
func (m *Monitor) RunPass(ctx context.Context) *types.PassResult {
	logger := m.logger.Sugar()

	result := &types.PassResult{
		NodeStatuses: make(map[string]types.NodeStatus),
		StartedAt:    time.Now().UTC(),
	}

	networkName := ""
	if m.config.Network != nil {
		networkName = m.config.Network.Name
	}
	logger.Infow("starting monitoring pass", "network", networkName, "nodes", len(m.config.Nodes))

	// Poll every node concurrently and join before evaluating anything.
	snapshots := make([]types.HealthSnapshot, len(m.config.Nodes))
	var wg sync.WaitGroup
	for i, endpoint := range m.config.Nodes {
		wg.Add(1)
		go func(i int, endpoint types.ValidatorEndpoint) {
			defer wg.Done()
			snapshots[i] = m.poller.Poll(ctx, endpoint)
		}(i, endpoint)
	}
	wg.Wait()
	result.Snapshots = snapshots

	for _, snapshot := range snapshots {
		issues := health.Evaluate(snapshot, m.config.Thresholds.MinPeers)
		status := health.Classify(issues)
		result.NodeStatuses[snapshot.Endpoint.Name] = status
		if len(issues) > 0 {
			result.NodesWithIssue++
		}
		result.Issues = append(result.Issues, issues...)

		for _, issue := range issues {
			m.recordAlert(ctx, issue.Severity, fmt.Sprintf("node %s: %s", issue.EndpointName, issue.Description))
		}
		m.reportNode(snapshot, status)
	}

	result.Consistency = consistency.Check(snapshots, m.config.Thresholds.MaxBlockLag)
	if result.Consistency.Exceeded {
		m.recordAlert(ctx, types.SeverityWarning,
			fmt.Sprintf("block height divergence %d exceeds max lag %d", result.Consistency.MaxLag, m.config.Thresholds.MaxBlockLag))
	}

	if m.probe != nil {
		result.Faucet = m.probe.Check(ctx)
		if !result.Faucet.OK() {
			state := "unhealthy"
			if !result.Faucet.Reachable {
				state = "unreachable"
			}
			m.recordAlert(ctx, types.SeverityWarning, "faucet service is "+state)
		}
	} else {
		// No faucet configured: report it healthy so it cannot degrade the pass.
		healthy := true
		result.Faucet = types.FaucetHealth{Reachable: true, Healthy: &healthy}
	}

	result.Status = overallStatus(result)
	result.FinishedAt = time.Now().UTC()

	logger.Infow("monitoring pass finished",
		"status", result.Status,
		"nodes_with_issues", result.NodesWithIssue,
		"max_lag", result.Consistency.MaxLag,
		"lag_exceeded", result.Consistency.Exceeded,
		"faucet_ok", result.Faucet.OK(),
	)

	if m.writer != nil {
		if err := m.writer.WritePass(result); err != nil {
			logger.Warnw("could not write pass result", "error", err)
		}
	}

	return result
}

func (m *Monitor) reportNode(snapshot types.HealthSnapshot, status types.NodeStatus) {
	logger := m.logger.Sugar()
	if !snapshot.Reachable {
		logger.Warnw("node status", "node", snapshot.Endpoint.Name, "status", status, "reachable", false)
		return
	}
	logger.Infow("node status",
		"node", snapshot.Endpoint.Name,
		"status", status,
		"peers", *snapshot.PeerCount,
		"syncing", *snapshot.IsSyncing,
		"height", *snapshot.BlockHeight,
	)
}

func (m *Monitor) recordAlert(ctx context.Context, level types.Severity, message string) {
	logger := m.logger.Sugar()
	event := types.AlertEvent{
		Level:     level,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err := m.alerts.Record(ctx, event); err != nil {
		logger.Errorw("could not record alert", "message", message, "error", err)
	}
}

func overallStatus(result *types.PassResult) types.OverallStatus {
	degraded := result.Consistency.Exceeded || !result.Faucet.OK()
	for _, status := range result.NodeStatuses {
		switch status {
		case types.NodeFail:
			return types.StatusFail
		case types.NodeWarn:
			degraded = true
		}
	}
	if degraded {
		return types.StatusDegraded
	}
	return types.StatusOK
}

// Close releases the alert sink and output file.
func (m *Monitor) Close() error {
	if m.writer != nil {
		if err := m.writer.Close(); err != nil {
			return err
		}
	}
	return m.alerts.Close()
}
