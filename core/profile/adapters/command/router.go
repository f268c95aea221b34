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

// Package command routes inbound queue commands to the profile orchestrator
// and encodes results and failures into reply bytes.
package command

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"app/core/profile/domain"
	"app/modules/bus"
)

// Orchestrator is the application surface the router dispatches to.
type Orchestrator interface {
	Registration(ctx context.Context, draft *domain.RegistrationDraft) (*domain.RegistrationResult, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (*domain.Ack, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.AuthResult, error)
	Activate(ctx context.Context, activationLink string) error
	GetProfileByID(ctx context.Context, id int64) (*domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
	GetAllProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, id int64, draft *domain.RegistrationDraft, avatar string) (*domain.Profile, error)
	DeleteProfile(ctx context.Context, id int64) (*domain.Profile, error)
	LoginVk(ctx context.Context, code string) (*domain.AuthResult, error)
}

var _ bus.Dispatcher = (*Router)(nil)

type handlerFunc func(ctx context.Context, payload json.RawMessage) (any, error)

// Router implements bus.Dispatcher over the orchestrator.
type Router struct {
	app      Orchestrator
	handlers map[string]handlerFunc
}

func NewRouter(app Orchestrator) *Router {
	r := &Router{app: app}
	r.handlers = map[string]handlerFunc{
		"registration":       r.registration,
		"login":              r.login,
		"logout":             r.logout,
		"refreshAccessToken": r.refresh,
		"activate":           r.activate,
		"getAllProfiles":     r.getAllProfiles,
		"updateProfile":      r.updateProfile,
		"deleteProfile":      r.deleteProfile,
		"getProfileById":     r.getProfileByID,
		"getProfileByUserId": r.getProfileByUserID,
		"loginVk":            r.loginVk,
	}
	return r
}

// Dispatch implements bus.Dispatcher. It never returns a transport error:
// every failure is encoded as a {message, statusCode} envelope in the reply.
func (r *Router) Dispatch(ctx context.Context, cmd string, payload json.RawMessage) []byte {
	handler, ok := r.handlers[cmd]
	if !ok {
		slog.WarnContext(ctx, "unknown command", slog.String("cmd", cmd))
		return encodeEnvelope("Unknown command", http.StatusNotFound)
	}

	result, err := handler(ctx, payload)
	if err != nil {
		return encodeError(ctx, cmd, err)
	}

	reply, err := json.Marshal(result)
	if err != nil {
		slog.ErrorContext(ctx, "encode reply failed", slog.String("cmd", cmd), slog.Any("error", err))
		return encodeEnvelope("Internal server error", http.StatusInternalServerError)
	}
	return reply
}

func (r *Router) registration(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		DTO *domain.RegistrationDraft `json:"dto"`
	}
	if err := decode(payload, &data); err != nil || data.DTO == nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.Registration(ctx, data.DTO)
}

func (r *Router) login(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		DTO *domain.LoginRequest `json:"dto"`
	}
	if err := decode(payload, &data); err != nil || data.DTO == nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.Login(ctx, data.DTO)
}

func (r *Router) logout(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.Logout(ctx, data.RefreshToken)
}

func (r *Router) refresh(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.Refresh(ctx, data.RefreshToken)
}

func (r *Router) activate(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		ActivationLink string `json:"activationLink"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	if err := r.app.Activate(ctx, data.ActivationLink); err != nil {
		return nil, err
	}
	return nil, nil
}

func (r *Router) getAllProfiles(ctx context.Context, _ json.RawMessage) (any, error) {
	return r.app.GetAllProfiles(ctx)
}

func (r *Router) updateProfile(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		ID             int64                     `json:"id"`
		DTO            *domain.RegistrationDraft `json:"dto"`
		AvatarFileName string                    `json:"avatarFileName"`
	}
	if err := decode(payload, &data); err != nil || data.DTO == nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.UpdateProfile(ctx, data.ID, data.DTO, data.AvatarFileName)
}

func (r *Router) deleteProfile(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		ID int64 `json:"id"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.DeleteProfile(ctx, data.ID)
}

func (r *Router) getProfileByID(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		ID int64 `json:"id"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.GetProfileByID(ctx, data.ID)
}

func (r *Router) getProfileByUserID(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		UserID int64 `json:"userId"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.GetProfileByUserID(ctx, data.UserID)
}

func (r *Router) loginVk(ctx context.Context, payload json.RawMessage) (any, error) {
	var data struct {
		Code string `json:"code"`
	}
	if err := decode(payload, &data); err != nil {
		return nil, domain.ErrInvalidData
	}
	return r.app.LoginVk(ctx, data.Code)
}

func decode(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return nil
	}
	return json.Unmarshal(payload, out)
}
