package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"contentsearch"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"CONTENT_SEARCH_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"CONTENT_SEARCH_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"CONTENT_SEARCH_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"CONTENT_SEARCH_LOG_LEVEL" default:"info"`
	Kafka           kafkaConfig
	Ingest          ingestConfig
	Auth            Auth
	MigrationFolder string `envconfig:"CONTENT_SEARCH_MIGRATIONS_FOLDER" default:""`
	DirectoryFile   string `envconfig:"CONTENT_SEARCH_DIRECTORY_FILE" default:""`
}

type kafkaConfig struct {
	Brokers     []string `envconfig:"CONTENT_SEARCH_KAFKA_BROKERS" default:""`
	Topic       string   `envconfig:"CONTENT_SEARCH_KAFKA_TOPIC" default:"content.repo.changes"`
	GroupID     string   `envconfig:"CONTENT_SEARCH_KAFKA_GROUP_ID" default:"content-search"`
	EventsTopic string   `envconfig:"CONTENT_SEARCH_KAFKA_EVENTS_TOPIC" default:""`
}

type ingestConfig struct {
	Workers       int           `envconfig:"CONTENT_SEARCH_INGEST_WORKERS" default:"4"`
	MaxRetries    int           `envconfig:"CONTENT_SEARCH_INGEST_MAX_RETRIES" default:"5"`
	RetryBackoff  time.Duration `envconfig:"CONTENT_SEARCH_INGEST_RETRY_BACKOFF" default:"100ms"`
	LookupTimeout time.Duration `envconfig:"CONTENT_SEARCH_LOOKUP_TIMEOUT" default:"2s"`
}

type Auth struct {
	AuthenticationType string `envconfig:"CONTENT_SEARCH_AUTH" default:""`
	LocalPrivateKey    string `envconfig:"CONTENT_SEARCH_PRIVATE_KEY" default:""`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a config suitable for tests: an in-memory sqlite
// index shared across the process connections.
func NewDefault() *Config {
	return &Config{
		Database: &dbConfig{
			Type: "sqlite",
			Name: "file::memory:?cache=shared",
		},
		Service: &svcConfig{
			Address:  "localhost:0",
			LogLevel: "debug",
			Ingest: ingestConfig{
				Workers:       2,
				MaxRetries:    3,
				RetryBackoff:  10 * time.Millisecond,
				LookupTimeout: time.Second,
			},
		},
	}
}
