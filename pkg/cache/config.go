package cache

import "time"

// RedisConfig configures NewRedisCache.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string // prepended to every key as "prefix:key"
	PingTimeout  time.Duration
}

type RedisOption func(*RedisConfig)

func defaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		PoolSize:     10,
		PoolTimeout:  30 * time.Second,
		MinIdleConns: 2,
		Prefix:       "stockcast",
		PingTimeout:  5 * time.Second,
	}
}

func WithRedisAddr(addr string) RedisOption            { return func(c *RedisConfig) { c.Addr = addr } }
func WithRedisPassword(pw string) RedisOption          { return func(c *RedisConfig) { c.Password = pw } }
func WithRedisDB(db int) RedisOption                   { return func(c *RedisConfig) { c.DB = db } }
func WithRedisPrefix(prefix string) RedisOption        { return func(c *RedisConfig) { c.Prefix = prefix } }
func WithRedisPingTimeout(d time.Duration) RedisOption { return func(c *RedisConfig) { c.PingTimeout = d } }

// MemoryConfig configures NewMemoryCache. A zero CleanupInterval disables the
// background sweep; expired entries are then dropped lazily on Get.
type MemoryConfig struct {
	MaxSize         int
	CleanupInterval time.Duration
	DefaultTTL      time.Duration
}

type MemoryOption func(*MemoryConfig)

func defaultMemoryConfig() MemoryConfig {
	return MemoryConfig{MaxSize: 1000, CleanupInterval: 5 * time.Minute, DefaultTTL: 24 * time.Hour}
}

func WithMemoryMaxSize(n int) MemoryOption               { return func(c *MemoryConfig) { c.MaxSize = n } }
func WithMemoryCleanup(every time.Duration) MemoryOption { return func(c *MemoryConfig) { c.CleanupInterval = every } }

// WithMemoryDefaultTTL is used when Set is called with a non-positive expiration.
func WithMemoryDefaultTTL(ttl time.Duration) MemoryOption { return func(c *MemoryConfig) { c.DefaultTTL = ttl } }

// LayeredConfig configures NewLayeredCache. L1TTL caps how long an entry lives
// in memory regardless of its remote expiration.
type LayeredConfig struct {
	MemoryMaxSize int
	L1TTL         time.Duration
}

type LayeredOption func(*LayeredConfig)

func WithLayeredMemorySize(n int) LayeredOption        { return func(c *LayeredConfig) { c.MemoryMaxSize = n } }
func WithLayeredL1TTL(ttl time.Duration) LayeredOption { return func(c *LayeredConfig) { c.L1TTL = ttl } }
