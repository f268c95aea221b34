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
	"strings"
)

// Registration creates the remote account first, then the local profile row.
// The remote call happens before any local write so a profile can never
// reference a nonexistent account. If the local insert fails after the
// account was created, the account is left orphaned; that window is reported
// through the step observer and otherwise accepted (no reconciliation sweep
// runs here).
func (app *Application) Registration(ctx context.Context, draft *RegistrationDraft) (*RegistrationResult, error) {
	if draft == nil || draft.Email == "" {
		return nil, ErrInvalidData
	}

	created, err := app.identity.CreateUser(ctx, draft)
	if err == nil {
		err = checkEnvelope(created.Exception)
	}
	if err == nil && created.User == nil {
		err = errors.New("create user reply carried neither account nor exception")
	}
	app.step(ctx, "registration", StepCreateAccount, err)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		slog.ErrorContext(ctx, "account creation failed", slog.Any("error", err))
		return nil, ErrUnhandled
	}

	userID := created.User.ID
	fields := draft.Fields()
	if fields.NickName == "" {
		fields.NickName, _, _ = strings.Cut(draft.Email, "@")
	}

	id, err := app.writer.InsertProfile(ctx, fields, userID)
	app.step(ctx, "registration", StepInsertProfile, err)
	if err != nil {
		// The remote account now exists without a local profile. Accepted
		// inconsistency window, surfaced to the observer above.
		slog.ErrorContext(ctx, "profile insert failed after account creation",
			slog.Int64("user_id", userID), slog.Any("error", err))
		return nil, ErrUnhandled
	}

	// The insert result does not carry store-computed defaults, so read the
	// canonical row back by its generated id.
	profile, err := app.reader.GetProfileByID(ctx, id)
	app.step(ctx, "registration", StepReadProfile, err)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		slog.ErrorContext(ctx, "read-after-write failed", slog.Int64("id", id), slog.Any("error", err))
		return nil, ErrUnhandled
	}

	return &RegistrationResult{
		Profile:      profile,
		AccessToken:  created.AccessToken,
		RefreshToken: created.RefreshToken,
	}, nil
}
