// Package agent wires the worker process: poll the coordinator for an
// experiment, build its local task graph, run it to completion with a
// small worker pool, and report results back over HTTP.
package agent

import "time"

// Config is the agent's environment-sourced configuration.
type Config struct {
	CoordinatorURL string   `env:"COORDINATOR_URL,required"`
	AgentToken     string   `env:"AGENT_TOKEN,required"`
	AgentName      string   `env:"AGENT_NAME,required"`
	Capabilities   []string `env:"CAPABILITIES" envSeparator:","`
	GitRevision    string   `env:"GIT_REVISION"`

	WorkspaceRoot  string `env:"WORKSPACE_ROOT,required"`
	CargoHome      string `env:"CARGO_HOME" envDefault:"/var/lib/crater/cargo"`
	RustupHome     string `env:"RUSTUP_HOME" envDefault:"/var/lib/crater/rustup"`
	BrokenListPath string `env:"BROKEN_LIST_PATH" envDefault:""`

	DockerImage      string `env:"DOCKER_IMAGE" envDefault:"crater-sandbox:latest"`
	MemoryLimitBytes int64  `env:"MEMORY_LIMIT_BYTES" envDefault:"4294967296"`
	NetworkOff       bool   `env:"NETWORK_OFF" envDefault:"true"`

	Concurrency       int           `env:"CONCURRENCY" envDefault:"4"`
	PollInterval      time.Duration `env:"POLL_INTERVAL" envDefault:"30s"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"60s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	DiskWatchPath      string        `env:"DISK_WATCH_PATH" envDefault:"/"`
	DiskWatchInterval  time.Duration `env:"DISK_WATCH_INTERVAL" envDefault:"30s"`
	DiskWatchThreshold float64       `env:"DISK_WATCH_THRESHOLD" envDefault:"0.80"`

	RedisDSN string `env:"REDIS_DSN" envDefault:""`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}
