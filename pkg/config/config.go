package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"OmniTrade/pkg/cache"
	"OmniTrade/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server      ServerConfig  `yaml:"server"`
	Logging     LoggingConfig `yaml:"logging"`
	Metrics     MetricsConfig `yaml:"metrics"`
	RateLimit   RateLimit     `yaml:"rate_limit"`
	Simulation  Simulation    `yaml:"simulation"`
	Advice      AdviceConfig  `yaml:"advice"`
	Stream      StreamConfig  `yaml:"stream"`
	Feed        FeedConfig    `yaml:"feed"`
	Kafka       KafkaConfig   `yaml:"kafka"`
	Cache       cache.Config  `yaml:"cache"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8000" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	CORS            bool          `yaml:"cors" default:"true"`
}

type LoggingConfig struct {
	logger.Config `yaml:",inline"`
	// CollectorTopic receives deduplicated error entries when kafka is enabled.
	CollectorTopic    string        `yaml:"collector_topic" default:"omnitrade.logs"`
	CollectorInterval time.Duration `yaml:"collector_interval" default:"30s"`
	CollectorMax      int           `yaml:"collector_max" default:"100" validate:"gt=0"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled" default:"true"`
	SlowThreshold time.Duration `yaml:"slow_threshold" default:"1s"`
}

// RateLimit bounds the mutating operator routes per client.
type RateLimit struct {
	Burst     float64 `yaml:"burst" default:"10" validate:"gte=1"`
	PerSecond float64 `yaml:"per_second" default:"5" validate:"gt=0"`
}

type Simulation struct {
	SampleInterval time.Duration `yaml:"sample_interval" default:"20s" validate:"gt=0"`
	ClockInterval  time.Duration `yaml:"clock_interval" default:"1s" validate:"gt=0"`
	Signals        bool          `yaml:"signals" default:"true"`
	// Seed makes the sampler reproducible; 0 means unseeded.
	Seed uint64 `yaml:"seed"`
}

const (
	PolicyLastSettled = "last_settled"
	PolicySupersede   = "supersede"
)

type AdviceConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model" default:"claude-3-5-haiku-20241022"`
	MaxTokens int64         `yaml:"max_tokens" default:"256" validate:"gt=0"`
	Timeout   time.Duration `yaml:"timeout" default:"30s" validate:"gt=0"`
	Policy    string        `yaml:"policy" default:"last_settled" validate:"oneof=last_settled supersede"`
	Cache     bool          `yaml:"cache" default:"true"`
}

type StreamConfig struct {
	Interval     time.Duration `yaml:"interval" default:"2s" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
	PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
}

type FeedConfig struct {
	URL            string        `yaml:"url" default:"ws://localhost:8000/ws" validate:"url"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s" validate:"gt=0"`
}

type KafkaConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Brokers       []string `yaml:"brokers" validate:"required_if=Enabled true"`
	SnapshotTopic string   `yaml:"snapshot_topic" default:"omnitrade.snapshots"`
	MetricsTopic  string   `yaml:"metrics_topic" default:"omnitrade.metrics"`
	Compression   string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
	Producer      struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		BatchSize    int           `yaml:"batch_size" default:"50"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		Linger       time.Duration `yaml:"linger" default:"50ms"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"omnitrade-dashboard"`
		Workers    int           `yaml:"workers" default:"1"`
		BufferSize int           `yaml:"buffer_size" default:"16"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		DLQTopic   string        `yaml:"dlq_topic"`
	} `yaml:"consumer"`
	Pipeline struct {
		BufferSize int           `yaml:"buffer_size" default:"64" validate:"gt=0"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"10s"`
	} `yaml:"pipeline"`
}

var validate = validator.New()

// Default returns a fully defaulted config, as if loaded from an empty file.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. An empty path yields the
// defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("OMNI_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Advice.APIKey = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
		if c.Cache.Backend == "memory" {
			c.Cache.Backend = "layered"
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}
