// Package server wires the coordinator process: the agent-facing HTTP
// API, the dashboard/admin surface, and the background report worker,
// all sharing one set of connection hubs.
package server

import (
	"time"
)

// Config is the coordinator's environment-sourced configuration,
// following the teacher's single-struct-with-env-tags convention.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`

	PostgresPrimaryDSN string `env:"POSTGRES_PRIMARY_DSN,required"`
	PostgresReplicaDSN string `env:"POSTGRES_REPLICA_DSN"`
	PostgresDBName     string `env:"POSTGRES_DB_NAME,required"`
	MigrationsPath     string `env:"MIGRATIONS_PATH" envDefault:"migrations/server"`

	RedisDSN    string `env:"REDIS_DSN,required"`
	RabbitMQDSN string `env:"RABBITMQ_DSN,required"`

	MongoDSN string `env:"MONGO_DSN,required"`
	MongoDB  string `env:"MONGO_DATABASE" envDefault:"ecoci"`

	LivenessTTL time.Duration `env:"LIVENESS_TTL" envDefault:"5m"`

	ReportsDir string `env:"REPORTS_DIR" envDefault:"./reports"`
	RosterPath string `env:"AGENT_ROSTER_PATH" envDefault:"agents.json"`

	ReportPollInterval time.Duration `env:"REPORT_POLL_INTERVAL" envDefault:"10m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}
