package domain

import (
	"context"
	"errors"
	"log/slog"
)

// Login forwards credentials to the identity service and normalizes its error
// envelope. The session payload is returned verbatim on success.
func (app *Application) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if req == nil || req.Email == "" {
		return nil, ErrInvalidData
	}
	res, err := app.identity.Login(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "login transport error", slog.Any("error", err))
		return nil, ErrUnhandled
	}
	if err := checkEnvelope(res.Exception); err != nil {
		return nil, err
	}
	return res, nil
}

// Logout returns the identity service reply as-is. Logout failure is not
// critical, so its envelope is intentionally not normalized.
func (app *Application) Logout(ctx context.Context, refreshToken string) (*Ack, error) {
	res, err := app.identity.Logout(ctx, refreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "logout transport error", slog.Any("error", err))
		return nil, ErrUnhandled
	}
	return res, nil
}

// Refresh exchanges a refresh token for fresh credentials.
func (app *Application) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidData
	}
	res, err := app.identity.Refresh(ctx, refreshToken)
	if err != nil {
		slog.ErrorContext(ctx, "refresh transport error", slog.Any("error", err))
		return nil, ErrUnhandled
	}
	if err := checkEnvelope(res.Exception); err != nil {
		return nil, err
	}
	return res, nil
}

// Activate forwards an activation link without awaiting a normalized reply.
func (app *Application) Activate(ctx context.Context, activationLink string) error {
	if activationLink == "" {
		return ErrInvalidData
	}
	if err := app.identity.Activate(ctx, activationLink); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		slog.ErrorContext(ctx, "activate transport error", slog.Any("error", err))
		return ErrUnhandled
	}
	return nil
}
