package domain

import (
	"context"
	"errors"
	"log/slog"
)

func (app *Application) GetProfileByID(ctx context.Context, id int64) (*Profile, error) {
	if id <= 0 {
		return nil, ErrInvalidData
	}
	prof, err := app.reader.GetProfileByID(ctx, id)
	if err == nil {
		return prof, nil
	}
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrProfileNotFound
	}
	slog.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
	return nil, ErrUnhandled
}

func (app *Application) GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error) {
	if userID <= 0 {
		return nil, ErrInvalidData
	}
	prof, err := app.reader.GetProfileByUserID(ctx, userID)
	if err == nil {
		return prof, nil
	}
	if errors.Is(err, ErrProfileNotFound) {
		return nil, ErrProfileNotFound
	}
	slog.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
	return nil, ErrUnhandled
}

// GetAllProfiles is an unfiltered full-table read. Pagination is deferred.
func (app *Application) GetAllProfiles(ctx context.Context) ([]Profile, error) {
	profiles, err := app.reader.GetAllProfiles(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "unexpected error", slog.Any("error", err))
		return nil, ErrUnhandled
	}
	return profiles, nil
}
