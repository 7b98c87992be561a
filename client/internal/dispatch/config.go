package dispatch

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config groups all tunables. Values can be taken from environment variables
// under a caller-chosen prefix. Example: APIJR_MAIN_SHARDS=1.
type Config struct {
	Shards         int           `envconfig:"SHARDS"          default:"4"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"128"`
	EnqueueTimeout time.Duration `envconfig:"ENQUEUE_TIMEOUT" default:"100ms"`

	// Name labels the queue's metrics and log lines.
	Name string `envconfig:"-"`
}

// LoadConfig populates Config from environment variables under prefix.
func LoadConfig(prefix string) (Config, error) {
	var c Config
	return c, envconfig.Process(prefix, &c)
}

func (c Config) withDefaults() Config {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.Name == "" {
		c.Name = "default"
	}
	return c
}
