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

package domain

import (
	"context"
	"errors"
	"log/slog"
)

const vkProvider = "VK"

// LoginVk runs the OAuth compensating flow: exchange the code, resolve an
// existing account by email and external id, then either log in directly or
// register first and log in. Every external call is attempted at most once;
// there are no automatic retries.
//
// Only the initial code exchange maps to ErrInvalidOAuthCode, since that
// failure is attributable to caller input. Failures in the later steps map to
// ErrOAuthExchange with the cause joined in.
func (app *Application) LoginVk(ctx context.Context, code string) (*AuthResult, error) {
	if code == "" {
		return nil, ErrInvalidData
	}

	tok, err := app.oauth.ExchangeCode(ctx, code)
	app.step(ctx, "loginVk", StepExchangeCode, err)
	if err != nil {
		slog.ErrorContext(ctx, "vk code exchange failed", slog.Any("error", err))
		return nil, ErrInvalidOAuthCode
	}

	account, err := app.identity.GetUser(ctx, &AccountFilter{Email: tok.Email, VkID: &tok.ExternalUserID})
	app.step(ctx, "loginVk", StepResolveAccount, err)
	if err != nil {
		slog.ErrorContext(ctx, "vk account lookup failed", slog.Any("error", err))
		return nil, errors.Join(ErrOAuthExchange, err)
	}

	if account != nil {
		// Provider login with the stored email and password surrogate.
		res, err := app.Login(ctx, &LoginRequest{
			Email:    account.Email,
			Password: account.Password,
			Provider: vkProvider,
		})
		app.step(ctx, "loginVk", StepLogin, err)
		if err != nil {
			return nil, errors.Join(ErrOAuthExchange, err)
		}
		return res, nil
	}

	prof, err := app.oauth.FetchPublicProfile(ctx, tok.ExternalUserID, tok.AccessToken)
	app.step(ctx, "loginVk", StepFetchProfile, err)
	if err != nil {
		slog.ErrorContext(ctx, "vk profile fetch failed", slog.Any("error", err))
		return nil, errors.Join(ErrOAuthExchange, err)
	}

	draft := &RegistrationDraft{
		NickName:  prof.FirstName,
		FirstName: prof.FirstName,
		LastName:  prof.LastName,
		Email:     tok.Email,
		Password:  "",
		Provider:  vkProvider,
		VkID:      &tok.ExternalUserID,
	}

	_, err = app.Registration(ctx, draft)
	app.step(ctx, "loginVk", StepRegister, err)
	if err != nil {
		return nil, errors.Join(ErrOAuthExchange, err)
	}

	res, err := app.Login(ctx, &LoginRequest{
		Email:    draft.Email,
		Password: draft.Password,
		Provider: draft.Provider,
	})
	app.step(ctx, "loginVk", StepLogin, err)
	if err != nil {
		return nil, errors.Join(ErrOAuthExchange, err)
	}
	return res, nil
}
