package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchReferenceTimings(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, c.Simulation.SampleInterval)
	assert.Equal(t, time.Second, c.Simulation.ClockInterval)
	assert.Equal(t, 2*time.Second, c.Stream.Interval)
	assert.Equal(t, 5*time.Second, c.Feed.ReconnectDelay)
	assert.Equal(t, PolicyLastSettled, c.Advice.Policy)
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "info", c.Logging.Level)
	assert.Equal(t, "memory", c.Cache.Backend)
	assert.False(t, c.Kafka.Enabled)
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: staging
simulation:
  sample_interval: 5s
advice:
  policy: supersede
logging:
  level: debug
  format: json
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "staging", c.Environment)
	assert.Equal(t, 5*time.Second, c.Simulation.SampleInterval)
	assert.Equal(t, PolicySupersede, c.Advice.Policy)
	assert.Equal(t, "debug", c.Logging.Level)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, time.Second, c.Simulation.ClockInterval, "untouched keys keep defaults")
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("advice:\n  policy: newest\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	env := map[string]string{
		"ANTHROPIC_API_KEY": "sk-test",
		"KAFKA_BROKERS":     "a:9092,b:9092",
		"REDIS_ADDR":        "redis:6379",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "sk-test", c.Advice.APIKey)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "redis:6379", c.Cache.Addr)
	assert.Equal(t, "layered", c.Cache.Backend)
	require.NoError(t, c.Validate())
}

func TestKafkaEnabledNeedsBrokers(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	c.Kafka.Enabled = true
	assert.Error(t, c.Validate())
}
