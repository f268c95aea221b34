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

// Package vk adapts the VK OAuth and data APIs to the domain's OAuthBridge
// port.
package vk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"app/core/profile/domain"
)

var _ domain.OAuthBridge = (*Bridge)(nil)

// Bridge exchanges authorization codes against the VK token endpoint and
// fetches public profile fields from the VK data API.
type Bridge struct {
	oauth *oauth2.Config
	http  *http.Client

	apiBaseURL string
	apiVersion string
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithHTTPClient overrides the HTTP client used for both the token exchange
// and the data API.
func WithHTTPClient(c *http.Client) BridgeOption {
	return func(b *Bridge) {
		if c != nil {
			b.http = c
		}
	}
}

func NewBridge(cfg Config, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
				// VK expects client credentials as query parameters
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		http:       &http.Client{Timeout: 10 * time.Second},
		apiBaseURL: cfg.APIBaseURL,
		apiVersion: cfg.APIVersion,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// ExchangeCode implements domain.OAuthBridge.
//
// VK returns the account email and numeric user id as extra fields of the
// token response; both are carried on the returned token.
func (b *Bridge) ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.http)

	tok, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("vk: exchange code: %w", err)
	}

	out := &domain.OAuthToken{AccessToken: tok.AccessToken}

	if email, ok := tok.Extra("email").(string); ok {
		out.Email = email
	}
	switch id := tok.Extra("user_id").(type) {
	case float64:
		out.ExternalUserID = int64(id)
	case json.Number:
		if v, err := id.Int64(); err == nil {
			out.ExternalUserID = v
		}
	}
	if out.ExternalUserID == 0 {
		return nil, fmt.Errorf("vk: token response missing user_id")
	}

	return out, nil
}

// vkUsersGetReply is the users.get response shape. The data API signals
// failures with an error object and HTTP 200.
type vkUsersGetReply struct {
	Response []struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"response"`
	Error *struct {
		ErrorCode int    `json:"error_code"`
		ErrorMsg  string `json:"error_msg"`
	} `json:"error"`
}

// FetchPublicProfile implements domain.OAuthBridge.
func (b *Bridge) FetchPublicProfile(ctx context.Context, externalUserID int64, accessToken string) (*domain.OAuthProfile, error) {
	q := url.Values{}
	q.Set("user_ids", fmt.Sprintf("%d", externalUserID))
	q.Set("fields", "first_name,last_name")
	q.Set("access_token", accessToken)
	q.Set("v", b.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.apiBaseURL+"/method/users.get?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("vk: build users.get request: %w", err)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vk: users.get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("vk: users.get returned %d: %s", resp.StatusCode, body)
	}

	var reply vkUsersGetReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("vk: decode users.get reply: %w", err)
	}
	if reply.Error != nil {
		return nil, fmt.Errorf("vk: users.get rejected: %s (code %d)", reply.Error.ErrorMsg, reply.Error.ErrorCode)
	}
	if len(reply.Response) == 0 {
		return nil, fmt.Errorf("vk: users.get returned no users")
	}

	return &domain.OAuthProfile{
		FirstName: reply.Response[0].FirstName,
		LastName:  reply.Response[0].LastName,
	}, nil
}
