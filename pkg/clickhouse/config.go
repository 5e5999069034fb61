package clickhouse

import "time"

// ClientConfig describes one ClickHouse endpoint and its pool.
type ClientConfig struct {
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	UseHTTP         bool
	MaxExecTime     time.Duration // sent as the max_execution_time setting, whole seconds
}

type ClientOption func(*ClientConfig)

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		Port:            9000,
		Database:        "default",
		User:            "default",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     10 * time.Second,
	}
}

func WithHost(host string) ClientOption                 { return func(c *ClientConfig) { c.Host = host } }
func WithPort(port int) ClientOption                    { return func(c *ClientConfig) { c.Port = port } }
func WithDatabase(db string) ClientOption               { return func(c *ClientConfig) { c.Database = db } }
func WithHTTP(useHTTP bool) ClientOption                { return func(c *ClientConfig) { c.UseHTTP = useHTTP } }
func WithMaxExecutionTime(d time.Duration) ClientOption { return func(c *ClientConfig) { c.MaxExecTime = d } }

func WithCredentials(user, password string) ClientOption {
	return func(c *ClientConfig) { c.User, c.Password = user, password }
}

func WithMaxConnections(maxOpen, maxIdle int) ClientOption {
	return func(c *ClientConfig) { c.MaxOpenConns, c.MaxIdleConns = maxOpen, maxIdle }
}

// WithTimeouts sets the dial and per-read timeouts. Zero keeps the default.
func WithTimeouts(dial, read time.Duration) ClientOption {
	return func(c *ClientConfig) {
		if dial > 0 {
			c.DialTimeout = dial
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}
