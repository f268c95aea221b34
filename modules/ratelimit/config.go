package ratelimit

import "time"

// Config holds per-command throttling settings for the inbound queue.
type Config struct {
	Enabled   bool          `env:"ENABLED" envDefault:"true"`
	Limit     int64         `env:"LIMIT" envDefault:"100"`
	Window    time.Duration `env:"WINDOW" envDefault:"1m"`
	KeyPrefix string        `env:"KEY_PREFIX" envDefault:"rl:profiles"`
}
