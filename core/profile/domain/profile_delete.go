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

// DeleteProfile removes the local row first, then requests deletion of the
// linked remote account. Deletion is local-first, remote-best-effort: the
// local delete is not rolled back when the remote command fails, and the
// pre-delete snapshot is returned either way.
func (app *Application) DeleteProfile(ctx context.Context, id int64) (*Profile, error) {
	if id <= 0 {
		return nil, ErrInvalidData
	}

	snapshot, err := app.writer.DeleteProfile(ctx, id)
	app.step(ctx, "deleteProfile", StepDeleteProfile, err)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		slog.ErrorContext(ctx, "profile delete failed", slog.Int64("id", id), slog.Any("error", err))
		return nil, ErrUnhandled
	}

	if snapshot.UserID != nil {
		ack, err := app.identity.DeleteUser(ctx, *snapshot.UserID)
		if err == nil {
			err = checkEnvelope(ack.Exception)
		}
		app.step(ctx, "deleteProfile", StepDeleteAccount, err)
		if err != nil {
			slog.WarnContext(ctx, "account deletion failed after local delete",
				slog.Int64("user_id", *snapshot.UserID), slog.Any("error", err))
		}
	}

	return snapshot, nil
}
