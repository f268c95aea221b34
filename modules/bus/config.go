package bus

import "time"

// Config holds queue names and transport timings for the command bus.
type Config struct {
	// RequestQueue is the queue this service consumes.
	RequestQueue string `env:"REQUEST_QUEUE" envDefault:"profiles"`

	// IdentityQueue is the remote identity service's request queue.
	IdentityQueue string `env:"IDENTITY_QUEUE" envDefault:"auth"`

	ReplyTimeout   time.Duration `env:"REPLY_TIMEOUT" envDefault:"5s"`
	ReplyTTL       time.Duration `env:"REPLY_TTL" envDefault:"30s"`
	WorkerPoolSize int           `env:"WORKER_POOL_SIZE" envDefault:"8"`
}
