package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type ProducerOption func(*ProducerConfig)

// ProducerConfig maps onto kafka.Writer fields. RequiredAcks of -1 waits for all replicas.
type ProducerConfig struct {
	Brokers      []string
	RequiredAcks int
	Compression  string
	MaxAttempts  int
	WriteTimeout time.Duration
	ReadTimeout  time.Duration
	BatchSize    int
	BatchBytes   int
	BatchTimeout time.Duration
	Async        bool
	HashByKey    bool
	Registerer   prometheus.Registerer // nil disables producer metrics
}

func defaultProducerConfig() ProducerConfig {
	return ProducerConfig{
		RequiredAcks: -1,
		Compression:  "snappy",
		MaxAttempts:  5,
		WriteTimeout: 5 * time.Second,
		ReadTimeout:  5 * time.Second,
		BatchSize:    50,
		BatchBytes:   512 << 10,
		BatchTimeout: 200 * time.Millisecond,
	}
}

func WithBrokers(brokers []string) ProducerOption             { return func(c *ProducerConfig) { c.Brokers = brokers } }
func WithCompression(codec string) ProducerOption             { return func(c *ProducerConfig) { c.Compression = codec } }
func WithRequiredAcks(acks int) ProducerOption                { return func(c *ProducerConfig) { c.RequiredAcks = acks } }
func WithMaxAttempts(n int) ProducerOption                    { return func(c *ProducerConfig) { c.MaxAttempts = n } }
func WithAsync(async bool) ProducerOption                     { return func(c *ProducerConfig) { c.Async = async } }
func WithHashByKey(hash bool) ProducerOption                  { return func(c *ProducerConfig) { c.HashByKey = hash } }
func WithRegisterer(reg prometheus.Registerer) ProducerOption { return func(c *ProducerConfig) { c.Registerer = reg } }

// WithBatching sets the batch limits. Zero values keep the defaults.
func WithBatching(size, bytes int, linger time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if size > 0 {
			c.BatchSize = size
		}
		if bytes > 0 {
			c.BatchBytes = bytes
		}
		if linger > 0 {
			c.BatchTimeout = linger
		}
	}
}

func WithTimeouts(write, read time.Duration) ProducerOption {
	return func(c *ProducerConfig) {
		if write > 0 {
			c.WriteTimeout = write
		}
		if read > 0 {
			c.ReadTimeout = read
		}
	}
}
