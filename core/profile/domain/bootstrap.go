package domain

import (
	"context"
	"log/slog"
)

// EnsureAdminProfile seeds the administrative profile on startup. Best
// effort: the account usually exists already and the registration is rejected
// by the identity service, which is fine.
func (app *Application) EnsureAdminProfile(ctx context.Context, email, password string) {
	if email == "" || password == "" {
		return
	}
	_, err := app.Registration(ctx, &RegistrationDraft{
		Email:    email,
		Password: password,
		Provider: "local",
	})
	if err != nil {
		slog.InfoContext(ctx, "admin profile bootstrap skipped", slog.Any("reason", err))
		return
	}
	slog.InfoContext(ctx, "admin profile bootstrapped", slog.String("email", email))
}
