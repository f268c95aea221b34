// Copyright 2025 Nhat-Nguyen Nguyen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/rueidis"

	"app/modules/ratelimit"
	"app/modules/telemetry"
	"app/worker"
)

const rateLimitedReply = `{"message":"Too Many Requests","statusCode":429}`

// Server consumes a request queue and dispatches each command to a Dispatcher
// through a bounded worker pool.
type Server struct {
	client     rueidis.Client
	queue      string
	dispatcher Dispatcher

	poolSize     int
	pollInterval time.Duration
	replyTTL     time.Duration

	limiter ratelimit.RateLimiter
	metrics *telemetry.CommandMetrics
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWorkerPoolSize caps how many commands are handled concurrently.
func WithWorkerPoolSize(n int) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithRateLimiter throttles inbound commands, keyed per command name.
// Throttled requests are answered immediately with a 429 envelope.
func WithRateLimiter(l ratelimit.RateLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = l
	}
}

// WithCommandMetrics records a counter and duration histogram per command.
func WithCommandMetrics(m *telemetry.CommandMetrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithReplyTTL bounds how long an undelivered reply stays in Redis.
func WithReplyTTL(d time.Duration) ServerOption {
	return func(s *Server) {
		if d > 0 {
			s.replyTTL = d
		}
	}
}

// NewServer constructs a Server consuming the given queue.
func NewServer(client rueidis.Client, queue string, dispatcher Dispatcher, opts ...ServerOption) *Server {
	s := &Server{
		client:       client,
		queue:        queue,
		dispatcher:   dispatcher,
		poolSize:     8,
		pollInterval: time.Second,
		replyTTL:     30 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Run blocks consuming the queue until ctx is cancelled.
//
// The consume loop polls with a short BLPOP timeout so shutdown is observed
// within one poll interval even when the queue is idle. In-flight commands
// are drained before Run returns.
func (s *Server) Run(ctx context.Context) error {
	jobs := make(chan Request, s.poolSize)

	go func() {
		defer close(jobs)
		for {
			if ctx.Err() != nil {
				return
			}

			res := s.client.Do(ctx, s.client.B().Blpop().Key(s.queue).Timeout(s.pollInterval.Seconds()).Build())
			kv, err := res.AsStrSlice()
			if err != nil {
				if rueidis.IsRedisNil(err) {
					continue // idle poll
				}
				if ctx.Err() != nil {
					return
				}
				slog.ErrorContext(ctx, "bus: consume failed", slog.String("queue", s.queue), slog.Any("error", err))
				// back off so a dead Redis does not spin the loop
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.pollInterval):
				}
				continue
			}
			if len(kv) != 2 {
				continue
			}

			var req Request
			if err := json.Unmarshal([]byte(kv[1]), &req); err != nil {
				slog.WarnContext(ctx, "bus: dropping malformed request", slog.String("queue", s.queue), slog.Any("error", err))
				continue
			}
			if req.Cmd == "" {
				slog.WarnContext(ctx, "bus: dropping request without cmd", slog.String("queue", s.queue))
				continue
			}

			select {
			case <-ctx.Done():
				return
			case jobs <- req:
			}
		}
	}()

	worker.BlockingPool(ctx, s.poolSize, jobs, s.handle)
	return nil
}

func (s *Server) handle(ctx context.Context, req Request) {
	start := time.Now()
	outcome := "ok"

	reply := s.process(ctx, req, &outcome)

	if req.ReplyTo != "" && reply != nil {
		s.reply(ctx, req, reply)
	}

	if s.metrics != nil {
		s.metrics.RecordCommand(ctx, s.queue, req.Cmd, outcome, float64(time.Since(start).Microseconds())/1000.0)
	}
}

func (s *Server) process(ctx context.Context, req Request, outcome *string) []byte {
	if s.limiter != nil {
		res, err := s.limiter.Allow(ctx, ratelimit.Key(req.Cmd))
		if err != nil {
			// fail open: a broken limiter must not take the service down
			slog.ErrorContext(ctx, "bus: rate limiter failed", slog.String("cmd", req.Cmd), slog.Any("error", err))
		} else if !res.Allowed {
			*outcome = "throttled"
			return []byte(rateLimitedReply)
		}
	}

	return s.dispatcher.Dispatch(ctx, req.Cmd, req.Payload)
}

func (s *Server) reply(ctx context.Context, req Request, reply []byte) {
	cmds := make(rueidis.Commands, 0, 2)
	cmds = append(cmds, s.client.B().Lpush().Key(req.ReplyTo).Element(rueidis.BinaryString(reply)).Build())
	cmds = append(cmds, s.client.B().Pexpire().Key(req.ReplyTo).Milliseconds(s.replyTTL.Milliseconds()).Build())

	for _, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			slog.ErrorContext(ctx, "bus: deliver reply failed",
				slog.String("cmd", req.Cmd),
				slog.String("replyTo", req.ReplyTo),
				slog.Any("error", err))
			return
		}
	}
}
