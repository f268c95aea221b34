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

// Package bus implements a small request/reply command bus over Redis lists.
//
// Requests are LPUSHed onto a well-known queue and consumed with BLPOP by the
// owning service. A caller that expects an answer attaches a per-request reply
// key; the consumer LPUSHes the encoded reply there and the caller BLPOPs it.
// Reply keys carry a TTL so abandoned replies do not accumulate.
package bus

import (
	"context"
	"encoding/json"
	"errors"
)

// Request is the wire envelope for a queued command.
type Request struct {
	Cmd           string          `json:"cmd"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	ReplyTo       string          `json:"replyTo,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

// Dispatcher turns an inbound command into encoded reply bytes.
//
// Dispatch never reports an error to the transport: application failures are
// encoded into the reply body so the caller can tell them apart from a lost
// or timed-out request.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd string, payload json.RawMessage) []byte
}

// DispatcherFunc adapts a plain function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, cmd string, payload json.RawMessage) []byte

func (f DispatcherFunc) Dispatch(ctx context.Context, cmd string, payload json.RawMessage) []byte {
	return f(ctx, cmd, payload)
}

var (
	// ErrReplyTimeout means no reply arrived on the reply key in time.
	ErrReplyTimeout = errors.New("bus: reply timed out")
)
