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

package command

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"app/core/profile/domain"
)

// encodeError translates a domain error into a {message, statusCode} reply.
//
// Upstream rejections keep their original message and status code; everything
// else maps onto a fixed local vocabulary.
func encodeError(ctx context.Context, cmd string, err error) []byte {
	var upstream *domain.UpstreamError
	if errors.As(err, &upstream) {
		return encodeEnvelope(upstream.Message, upstream.StatusCode)
	}

	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return encodeEnvelope("Profile not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidOAuthCode):
		return encodeEnvelope("Invalid authorization code", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrInvalidData):
		return encodeEnvelope("Invalid request data", http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrOAuthExchange):
		slog.ErrorContext(ctx, "oauth flow failed", slog.String("cmd", cmd), slog.Any("error", err))
		return encodeEnvelope("OAuth login failed", http.StatusInternalServerError)
	default:
		slog.ErrorContext(ctx, "command failed", slog.String("cmd", cmd), slog.Any("error", err))
		return encodeEnvelope("Internal server error", http.StatusInternalServerError)
	}
}

func encodeEnvelope(message string, statusCode int) []byte {
	reply, err := json.Marshal(domain.ErrorEnvelope{Message: message, StatusCode: statusCode})
	if err != nil {
		// ErrorEnvelope marshaling cannot realistically fail
		return []byte(`{"message":"Internal server error","statusCode":500}`)
	}
	return reply
}
