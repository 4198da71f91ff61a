package udpchat

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server's tunables, read from the environment with
// defaults matching the reference deployment. Command-line flags override
// these in the binaries.
type Config struct {
	Host string `env:"UDPCHAT_HOST" env-default:"0.0.0.0"`
	Port int    `env:"UDPCHAT_PORT" env-default:"5000"`

	// QueueDepth is the inbound datagram queue between the receive loop and
	// the router. When the router is backed up, further datagrams are
	// dropped rather than blocking reception.
	QueueDepth int `env:"UDPCHAT_QUEUE_DEPTH" env-default:"128"`

	// RateLimit allows this many packets per RatePeriod per endpoint.
	RateLimit  int           `env:"UDPCHAT_RATE_LIMIT" env-default:"10"`
	RatePeriod time.Duration `env:"UDPCHAT_RATE_PERIOD" env-default:"3s"`
}

// LoadConfig reads configuration from the environment.
func LoadConfig() (*Config, error) {
	var c Config
	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &c, nil
}

// ListenAddr returns the host:port the server should bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
