package domain

import "app/modules/clock"

type Application struct {
	reader   ProfileReadStore
	writer   ProfileWriteStore
	identity IdentityClient
	oauth    OAuthBridge
	clock    clock.Clock
	steps    StepObserver
}

type AppOption func(*Application)

func WithClock(c clock.Clock) AppOption {
	return func(app *Application) { app.clock = c }
}

func WithStepObserver(o StepObserver) AppOption {
	return func(app *Application) { app.steps = o }
}

func NewApp(reader ProfileReadStore, writer ProfileWriteStore, identity IdentityClient, oauth OAuthBridge, opts ...AppOption) *Application {
	app := &Application{
		reader:   reader,
		writer:   writer,
		identity: identity,
		oauth:    oauth,
		clock:    clock.RealClockProvider(),
		steps:    NoopStepObserver{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app
}
