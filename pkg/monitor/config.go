package monitor

import (
	"time"

	"github.com/paraxiom/fleet-monitor/pkg/types"
	"github.com/pkg/errors"
)

const (
	DefaultMinPeers   uint          = 2
	DefaultMaxLag     uint64        = 10
	DefaultRpcTimeout time.Duration = 10 * time.Second
)

type NetworkConfig struct {
	Name string `yaml:"name"`
}

type ThresholdConfig struct {
	MinPeers    uint   `yaml:"min_peers"`
	MaxBlockLag uint64 `yaml:"max_block_lag"`
}

type FaucetConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type OutputConfig struct {
	Path string `yaml:"path"`
}

type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type KafkaConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Topic            string   `yaml:"topic"`
	BootstrapServers []string `yaml:"bootstrap_servers"`
}

type PostgresConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dsn     string `yaml:"dsn"`
}

type AlertsConfig struct {
	Path         string         `yaml:"path"`
	MaxSizeBytes int64          `yaml:"max_size_bytes"`
	Webhook      WebhookConfig  `yaml:"webhook"`
	Kafka        KafkaConfig    `yaml:"kafka"`
	Postgres     PostgresConfig `yaml:"postgres"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type Config struct {
	Network      *NetworkConfig            `yaml:"network"`
	Nodes        []types.ValidatorEndpoint `yaml:"nodes"`
	Thresholds   ThresholdConfig           `yaml:"thresholds"`
	RpcTimeout   time.Duration             `yaml:"rpc_timeout"`
	PollAttempts uint                      `yaml:"poll_attempts"`
	Faucet       *FaucetConfig             `yaml:"faucet"`
	Output       *OutputConfig             `yaml:"output"`
	Alerts       AlertsConfig              `yaml:"alerts"`
	Logging      LoggingConfig             `yaml:"logging"`
}

// Validate applies defaults and rejects configurations the monitor cannot run
// with. This is the only fatal error path: it fires before any polling.
func (c *Config) Validate() error {
	if len(c.Nodes) == 0 {
		return errors.New("no validator nodes configured")
	}

	seen := make(map[string]struct{})
	for _, node := range c.Nodes {
		if node.Name == "" {
			return errors.Errorf("node with url %s has no name", node.RpcURL)
		}
		if node.RpcURL == "" {
			return errors.Errorf("node %s has no rpc_url", node.Name)
		}
		if _, ok := seen[node.Name]; ok {
			return errors.Errorf("duplicate node name %s", node.Name)
		}
		seen[node.Name] = struct{}{}
	}

	if c.Thresholds.MinPeers == 0 {
		c.Thresholds.MinPeers = DefaultMinPeers
	}
	if c.Thresholds.MaxBlockLag == 0 {
		c.Thresholds.MaxBlockLag = DefaultMaxLag
	}
	if c.RpcTimeout == 0 {
		c.RpcTimeout = DefaultRpcTimeout
	}
	if c.PollAttempts == 0 {
		c.PollAttempts = 1
	}

	if c.Alerts.Webhook.Enabled && c.Alerts.Webhook.URL == "" {
		return errors.New("webhook alerts enabled without a url")
	}
	if c.Alerts.Kafka.Enabled && (c.Alerts.Kafka.Topic == "" || len(c.Alerts.Kafka.BootstrapServers) == 0) {
		return errors.New("kafka alerts enabled without topic or bootstrap servers")
	}
	if c.Alerts.Postgres.Enabled && c.Alerts.Postgres.Dsn == "" {
		return errors.New("postgres alerts enabled without a dsn")
	}

	return nil
}
