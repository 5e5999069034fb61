package clickhouse

import (
	"context"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	cfg := defaultClientConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("stockcast"),
		WithCredentials("reader", "p@ss"),
		WithTimeouts(2*time.Second, 0),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(&cfg)
	}

	o := options(cfg)
	assert.Equal(t, ch.Native, o.Protocol)
	assert.Equal(t, []string{"ch.local:9000"}, o.Addr)
	assert.Equal(t, ch.Auth{Database: "stockcast", Username: "reader", Password: "p@ss"}, o.Auth)
	assert.Equal(t, 2*time.Second, o.DialTimeout)
	assert.Equal(t, 10*time.Second, o.ReadTimeout)
	assert.Equal(t, ch.Settings{"max_execution_time": 30}, o.Settings)
}

func TestOptionsHTTP(t *testing.T) {
	cfg := defaultClientConfig()
	WithHTTP(true)(&cfg)
	WithHost("h")(&cfg)
	WithPort(8123)(&cfg)

	o := options(cfg)
	assert.Equal(t, ch.HTTP, o.Protocol)
	assert.Equal(t, []string{"h:8123"}, o.Addr)
	assert.Nil(t, o.Settings)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient(context.Background())
	assert.ErrorContains(t, err, "host is required")
}
