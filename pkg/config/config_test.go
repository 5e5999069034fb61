package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimal = `
environment: test
artifacts:
  scaler_path: /models/scaler.json
  entity_map_path: /models/entities.json
model:
  url: http://model:8501
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "stockcast", c.Model.Name)
	assert.Equal(t, 5*time.Second, c.Model.Timeout)
	assert.Equal(t, uint32(5), c.Model.Breaker.FailureThreshold)
	assert.Equal(t, 120, c.Forecast.HistoryLookback)
	assert.Equal(t, 10*time.Minute, c.Forecast.CacheTTL)
	assert.Equal(t, "stockcast.forecasts", c.Kafka.Topic)
	assert.Equal(t, -1, c.Kafka.RequiredAcks)
	assert.False(t, c.Kafka.Enabled)
	assert.False(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	c, err := Parse([]byte(minimal + `
server:
  port: 9999
forecast:
  cache_ttl: 30s
`))
	require.NoError(t, err)
	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, 30*time.Second, c.Forecast.CacheTTL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"environment", func(c *Config) { c.Environment = "" }, "environment is required"},
		{"scaler", func(c *Config) { c.Artifacts.ScalerPath = "" }, "scaler_path"},
		{"entities", func(c *Config) { c.Artifacts.EntityMapPath = "" }, "entity_map_path"},
		{"model url", func(c *Config) { c.Model.URL = "" }, "model.url"},
		{"lookback", func(c *Config) { c.Forecast.HistoryLookback = 59 }, "history_lookback"},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse([]byte(minimal))
			require.NoError(t, err)
			tt.mutate(c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte(minimal))
	require.NoError(t, err)

	env := map[string]string{
		"MODEL_URL":     "http://other:8501",
		"KAFKA_BROKERS": "k1:9092, k2:9092",
		"REDIS_ADDR":    "redis:6379",
		"LOG_LEVEL":     "debug",
		"PORT":          "9090",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "http://other:8501", c.Model.URL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, "redis:6379", c.Cache.Redis.Addr)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "/models/scaler.json", c.Artifacts.ScalerPath)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimal), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}
