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
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/rueidis"
)

// Client sends commands to a remote service's request queue.
//
// The same rueidis client can back multiple bus Clients pointed at different
// queues.
type Client struct {
	client rueidis.Client
	queue  string

	replyTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithReplyTimeout bounds how long Send waits for a reply. Values <= 0 keep
// the default.
func WithReplyTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.replyTimeout = d
		}
	}
}

// NewClient constructs a Client targeting the given request queue.
func NewClient(client rueidis.Client, queue string, opts ...ClientOption) *Client {
	c := &Client{
		client:       client,
		queue:        queue,
		replyTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Send enqueues cmd with payload and blocks for the reply bytes.
//
// A nil payload sends the command without a body. The returned error covers
// transport failures only; application-level rejections travel inside the
// reply bytes.
func (c *Client) Send(ctx context.Context, cmd string, payload any) ([]byte, error) {
	req, replyKey, err := c.buildRequest(cmd, payload, true)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("bus: encode request %q: %w", cmd, err)
	}

	if err := c.client.Do(ctx, c.client.B().Lpush().Key(c.queue).Element(rueidis.BinaryString(body)).Build()).Error(); err != nil {
		return nil, fmt.Errorf("bus: enqueue %q on %q: %w", cmd, c.queue, err)
	}

	res := c.client.Do(ctx, c.client.B().Blpop().Key(replyKey).Timeout(c.replyTimeout.Seconds()).Build())
	kv, err := res.AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, fmt.Errorf("%w: %q after %s", ErrReplyTimeout, cmd, c.replyTimeout)
		}
		return nil, fmt.Errorf("bus: await reply for %q: %w", cmd, err)
	}
	// BLPOP returns [key, value]
	if len(kv) != 2 {
		return nil, fmt.Errorf("bus: malformed BLPOP reply for %q", cmd)
	}

	return []byte(kv[1]), nil
}

// Publish enqueues cmd with payload without waiting for any reply.
func (c *Client) Publish(ctx context.Context, cmd string, payload any) error {
	req, _, err := c.buildRequest(cmd, payload, false)
	if err != nil {
		return err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("bus: encode request %q: %w", cmd, err)
	}

	if err := c.client.Do(ctx, c.client.B().Lpush().Key(c.queue).Element(rueidis.BinaryString(body)).Build()).Error(); err != nil {
		return fmt.Errorf("bus: enqueue %q on %q: %w", cmd, c.queue, err)
	}
	return nil
}

func (c *Client) buildRequest(cmd string, payload any, wantReply bool) (Request, string, error) {
	req := Request{Cmd: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Request{}, "", fmt.Errorf("bus: encode payload for %q: %w", cmd, err)
		}
		req.Payload = raw
	}

	id, err := uuid.NewV4()
	if err != nil {
		return Request{}, "", fmt.Errorf("bus: correlation id: %w", err)
	}
	req.CorrelationID = id.String()

	var replyKey string
	if wantReply {
		replyKey = c.queue + ":reply:" + req.CorrelationID
		req.ReplyTo = replyKey
	}

	return req, replyKey, nil
}
