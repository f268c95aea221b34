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

// UpdateProfile commits the credential-free draft fields plus the avatar
// reference locally, then forwards an account-update command when the draft
// changes email or password. The local write is already committed by then and
// is never rolled back if the forward fails; the failed forward is reported
// through the step observer.
//
// Draft fields left empty keep their stored values: the row is read first and
// absent fields are filled from it, so a partial update never erases columns
// the caller did not send.
//
// Only a missing row maps to ErrProfileNotFound; other failures surface as
// ErrUnhandled.
func (app *Application) UpdateProfile(ctx context.Context, id int64, draft *RegistrationDraft, avatar string) (*Profile, error) {
	if id <= 0 || draft == nil {
		return nil, ErrInvalidData
	}

	current, err := app.reader.GetProfileByID(ctx, id)
	app.step(ctx, "updateProfile", StepReadProfile, err)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		slog.ErrorContext(ctx, "profile read before update failed", slog.Int64("id", id), slog.Any("error", err))
		return nil, ErrUnhandled
	}

	fields := draft.Fields()
	fields.FillAbsent(current)

	updated, err := app.writer.UpdateProfile(ctx, id, fields, avatar)
	app.step(ctx, "updateProfile", StepUpdateProfile, err)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		slog.ErrorContext(ctx, "profile update failed", slog.Int64("id", id), slog.Any("error", err))
		return nil, ErrUnhandled
	}

	if draft.Password != "" || draft.Email != "" {
		if updated.UserID == nil {
			slog.WarnContext(ctx, "credential change requested for profile without account", slog.Int64("id", id))
			return updated, nil
		}
		ack, err := app.identity.UpdateUser(ctx, *updated.UserID, draft)
		if err == nil {
			err = checkEnvelope(ack.Exception)
		}
		app.step(ctx, "updateProfile", StepUpdateAccount, err)
		if err != nil {
			// Accepted non-atomicity: the local row stays updated.
			slog.WarnContext(ctx, "account update failed after local profile update",
				slog.Int64("user_id", *updated.UserID), slog.Any("error", err))
		}
	}

	return updated, nil
}
