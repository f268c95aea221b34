package domain

import (
	"context"
	"log/slog"
	"time"
)

// Step identifies one local or remote call inside a cross-service flow.
type Step string

const (
	StepCreateAccount  Step = "createAccount"
	StepInsertProfile  Step = "insertProfile"
	StepReadProfile    Step = "readProfile"
	StepUpdateProfile  Step = "updateProfile"
	StepUpdateAccount  Step = "updateAccount"
	StepDeleteProfile  Step = "deleteProfile"
	StepDeleteAccount  Step = "deleteAccount"
	StepExchangeCode   Step = "exchangeCode"
	StepResolveAccount Step = "resolveAccount"
	StepFetchProfile   Step = "fetchOAuthProfile"
	StepRegister       Step = "register"
	StepLogin          Step = "login"
)

// StepResult is the tagged outcome of a single step. Flows report one result
// per external or local call as it completes, so partial-failure windows (an
// orphaned remote account, a best-effort remote delete) are observable
// instead of being folded into a single error.
type StepResult struct {
	Op   string
	Step Step
	Err  error
	At   time.Time
}

func (r StepResult) Failed() bool { return r.Err != nil }

// StepObserver receives step results as flows execute. The orchestrator calls
// it inline, so implementations must not block.
type StepObserver interface {
	OnStep(ctx context.Context, res StepResult)
}

type NoopStepObserver struct{}

func (NoopStepObserver) OnStep(context.Context, StepResult) {}

// LogStepObserver reports step outcomes through slog. Failed steps are warned
// because some of them are accepted windows rather than request failures.
type LogStepObserver struct{}

func (LogStepObserver) OnStep(ctx context.Context, res StepResult) {
	if res.Err != nil {
		slog.WarnContext(ctx, "flow step failed",
			slog.String("op", res.Op),
			slog.String("step", string(res.Step)),
			slog.Any("error", res.Err),
		)
		return
	}
	slog.DebugContext(ctx, "flow step done",
		slog.String("op", res.Op),
		slog.String("step", string(res.Step)),
	)
}

func (app *Application) step(ctx context.Context, op string, s Step, err error) {
	app.steps.OnStep(ctx, StepResult{Op: op, Step: s, Err: err, At: app.clock.Now()})
}
