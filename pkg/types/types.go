package types

import (
	"fmt"
	"time"
)

// ValidatorEndpoint identifies one node in the fleet. The set of endpoints is
// loaded once at startup and treated as immutable for the lifetime of a pass.
type ValidatorEndpoint struct {
	Name   string `yaml:"name" json:"name"`
	RpcURL string `yaml:"rpc_url" json:"rpc_url"`
}

// HealthSnapshot is the result of polling one endpoint once. When Reachable is
// false the optional fields are nil.
type HealthSnapshot struct {
	Endpoint    ValidatorEndpoint `json:"endpoint"`
	PeerCount   *uint             `json:"peer_count,omitempty"`
	IsSyncing   *bool             `json:"is_syncing,omitempty"`
	BlockHeight *uint64           `json:"block_height,omitempty"`
	Reachable   bool              `json:"reachable"`
	Timestamp   time.Time         `json:"timestamp"`
}

type Severity string

const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Issue is one threshold violation found for one node.
type Issue struct {
	Severity     Severity `json:"severity"`
	EndpointName string   `json:"endpoint"`
	Description  string   `json:"description"`
}

type NodeStatus string

const (
	NodeOK   NodeStatus = "OK"
	NodeWarn NodeStatus = "WARN"
	NodeFail NodeStatus = "FAIL"
)

// ConsistencyReport captures cross-node block height divergence for one pass.
// Heights only contains reachable nodes. With fewer than two reachable nodes
// the check is skipped and Exceeded is false.
type ConsistencyReport struct {
	Heights  map[string]uint64 `json:"heights"`
	MaxLag   uint64            `json:"max_lag"`
	Exceeded bool              `json:"exceeded"`
}

// FaucetHealth is the classification of the token-distribution service.
// ValidatorsOnline and BlockHeight are reported by the faucet's health
// endpoint when available and carried for the report only.
type FaucetHealth struct {
	Reachable        bool    `json:"reachable"`
	Healthy          *bool   `json:"healthy,omitempty"`
	ValidatorsOnline *uint   `json:"validators_online,omitempty"`
	BlockHeight      *uint64 `json:"block_height,omitempty"`
}

// OK reports whether the faucet is reachable and explicitly healthy.
func (f FaucetHealth) OK() bool {
	return f.Reachable && f.Healthy != nil && *f.Healthy
}

// AlertEvent is one durable alert record. Events are append-only; retention
// is the sink's concern.
type AlertEvent struct {
	Level     Severity  `json:"level"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type OverallStatus string

const (
	StatusOK       OverallStatus = "OK"
	StatusDegraded OverallStatus = "DEGRADED"
	StatusFail     OverallStatus = "FAIL"
)

// ExitCode maps the overall status to the process exit code an external
// scheduler observes: 0 only when everything is OK.
func (s OverallStatus) ExitCode() int {
	switch s {
	case StatusOK:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// PassResult aggregates everything one monitoring pass produced. It is owned
// by the pass and discarded after reporting; only derived AlertEvents persist.
type PassResult struct {
	Snapshots      []HealthSnapshot      `json:"snapshots"`
	Issues         []Issue               `json:"issues"`
	NodeStatuses   map[string]NodeStatus `json:"node_statuses"`
	Consistency    ConsistencyReport     `json:"consistency"`
	Faucet         FaucetHealth          `json:"faucet"`
	NodesWithIssue int                   `json:"nodes_with_issues"`
	Status         OverallStatus         `json:"status"`
	StartedAt      time.Time             `json:"started_at"`
	FinishedAt     time.Time             `json:"finished_at"`
}

func (r *PassResult) String() string {
	return fmt.Sprintf("status=%s nodes=%d issues=%d lag_exceeded=%v faucet_ok=%v",
		r.Status, len(r.Snapshots), len(r.Issues), r.Consistency.Exceeded, r.Faucet.OK())
}
