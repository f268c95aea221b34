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

// Package identity adapts the remote identity service's queue commands to the
// domain's IdentityClient port.
//
// The identity service answers application-level rejections with a flat
// {message, statusCode} body instead of the success shape. This adapter folds
// that body into the reply's Exception field so the orchestrator can treat it
// as data; only transport faults surface as errors.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"app/core/profile/domain"
	"app/modules/bus"
)

var _ domain.IdentityClient = (*Client)(nil)

const (
	cmdCreateUser = "createUser"
	cmdLogin      = "login"
	cmdLogout     = "logout"
	cmdRefresh    = "refresh"
	cmdActivate   = "activate"
	cmdUpdateUser = "updateUser"
	cmdDeleteUser = "deleteUser"
	cmdGetUser    = "getUser"
)

// Client issues identity commands over the bus.
type Client struct {
	bus *bus.Client
}

func NewClient(b *bus.Client) *Client {
	return &Client{bus: b}
}

// envelope is the flat rejection body shared by all identity replies.
type envelope struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e envelope) toDomain() *domain.ErrorEnvelope {
	if e.Message == "" && e.StatusCode == 0 {
		return nil
	}
	return &domain.ErrorEnvelope{Message: e.Message, StatusCode: e.StatusCode}
}

type authWire struct {
	domain.AuthResult
	envelope
}

type ackWire struct {
	domain.Ack
	envelope
}

func (c *Client) CreateUser(ctx context.Context, draft *domain.RegistrationDraft) (*domain.AuthResult, error) {
	return c.sendAuth(ctx, cmdCreateUser, draft)
}

func (c *Client) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error) {
	return c.sendAuth(ctx, cmdLogin, req)
}

func (c *Client) Logout(ctx context.Context, refreshToken string) (*domain.Ack, error) {
	return c.sendAck(ctx, cmdLogout, map[string]string{"refreshToken": refreshToken})
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error) {
	return c.sendAuth(ctx, cmdRefresh, map[string]string{"refreshToken": refreshToken})
}

// Activate publishes the activation command without awaiting a reply.
func (c *Client) Activate(ctx context.Context, activationLink string) error {
	return c.bus.Publish(ctx, cmdActivate, map[string]string{"activationLink": activationLink})
}

func (c *Client) UpdateUser(ctx context.Context, userID int64, draft *domain.RegistrationDraft) (*domain.Ack, error) {
	payload := struct {
		ID  int64                     `json:"id"`
		DTO *domain.RegistrationDraft `json:"dto"`
	}{ID: userID, DTO: draft}
	return c.sendAck(ctx, cmdUpdateUser, payload)
}

func (c *Client) DeleteUser(ctx context.Context, userID int64) (*domain.Ack, error) {
	return c.sendAck(ctx, cmdDeleteUser, map[string]int64{"id": userID})
}

// GetUser returns (nil, nil) when no account matches the filter. A rejection
// body is surfaced as an UpstreamError since this command has no envelope
// channel in its reply type.
func (c *Client) GetUser(ctx context.Context, filter *domain.AccountFilter) (*domain.Account, error) {
	raw, err := c.bus.Send(ctx, cmdGetUser, filter)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", cmdGetUser, err)
	}
	return decodeAccountReply(raw)
}

func decodeAccountReply(raw []byte) (*domain.Account, error) {
	if isJSONNull(raw) {
		return nil, nil
	}

	var wire struct {
		domain.Account
		Exception *domain.ErrorEnvelope `json:"exception"`
		envelope
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("identity: decode %s reply: %w", cmdGetUser, err)
	}
	if wire.Exception != nil {
		return nil, &domain.UpstreamError{Message: wire.Exception.Message, StatusCode: wire.Exception.StatusCode}
	}
	if env := wire.envelope.toDomain(); env != nil {
		return nil, &domain.UpstreamError{Message: env.Message, StatusCode: env.StatusCode}
	}
	if wire.Account.ID == 0 {
		return nil, nil
	}

	account := wire.Account
	return &account, nil
}

func (c *Client) sendAuth(ctx context.Context, cmd string, payload any) (*domain.AuthResult, error) {
	raw, err := c.bus.Send(ctx, cmd, payload)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", cmd, err)
	}
	return decodeAuthReply(cmd, raw)
}

// decodeAuthReply accepts both rejection shapes the peer emits: a nested
// {"exception": {...}} on the success type, and the flat {message, statusCode}
// body. The nested envelope is already decoded into the reply's Exception and
// must not be clobbered when the flat body is absent.
func decodeAuthReply(cmd string, raw []byte) (*domain.AuthResult, error) {
	var wire authWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("identity: decode %s reply: %w", cmd, err)
	}

	res := wire.AuthResult
	if env := wire.envelope.toDomain(); env != nil {
		res.Exception = env
	}
	return &res, nil
}

func (c *Client) sendAck(ctx context.Context, cmd string, payload any) (*domain.Ack, error) {
	raw, err := c.bus.Send(ctx, cmd, payload)
	if err != nil {
		return nil, fmt.Errorf("identity: %s: %w", cmd, err)
	}
	return decodeAckReply(cmd, raw)
}

func decodeAckReply(cmd string, raw []byte) (*domain.Ack, error) {
	var wire ackWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("identity: decode %s reply: %w", cmd, err)
	}

	ack := wire.Ack
	if env := wire.envelope.toDomain(); env != nil {
		ack.Exception = env
	}
	return &ack, nil
}

func isJSONNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
