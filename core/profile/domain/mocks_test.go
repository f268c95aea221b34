package domain

import (
	"context"
	"sync"
)

type mockReader struct {
	getByIDFunc     func(ctx context.Context, id int64) (*Profile, error)
	getByUserIDFunc func(ctx context.Context, userID int64) (*Profile, error)
	getAllFunc      func(ctx context.Context) ([]Profile, error)
}

func (m *mockReader) GetProfileByID(ctx context.Context, id int64) (*Profile, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockReader) GetProfileByUserID(ctx context.Context, userID int64) (*Profile, error) {
	return m.getByUserIDFunc(ctx, userID)
}

func (m *mockReader) GetAllProfiles(ctx context.Context) ([]Profile, error) {
	return m.getAllFunc(ctx)
}

type mockWriter struct {
	insertFunc func(ctx context.Context, fields *UpdateDraft, userID int64) (int64, error)
	updateFunc func(ctx context.Context, id int64, fields *UpdateDraft, avatar string) (*Profile, error)
	deleteFunc func(ctx context.Context, id int64) (*Profile, error)
}

func (m *mockWriter) InsertProfile(ctx context.Context, fields *UpdateDraft, userID int64) (int64, error) {
	return m.insertFunc(ctx, fields, userID)
}

func (m *mockWriter) UpdateProfile(ctx context.Context, id int64, fields *UpdateDraft, avatar string) (*Profile, error) {
	return m.updateFunc(ctx, id, fields, avatar)
}

func (m *mockWriter) DeleteProfile(ctx context.Context, id int64) (*Profile, error) {
	return m.deleteFunc(ctx, id)
}

type mockIdentity struct {
	createUserFunc func(ctx context.Context, draft *RegistrationDraft) (*AuthResult, error)
	loginFunc      func(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	logoutFunc     func(ctx context.Context, refreshToken string) (*Ack, error)
	refreshFunc    func(ctx context.Context, refreshToken string) (*AuthResult, error)
	activateFunc   func(ctx context.Context, activationLink string) error
	updateUserFunc func(ctx context.Context, userID int64, draft *RegistrationDraft) (*Ack, error)
	deleteUserFunc func(ctx context.Context, userID int64) (*Ack, error)
	getUserFunc    func(ctx context.Context, filter *AccountFilter) (*Account, error)
}

func (m *mockIdentity) CreateUser(ctx context.Context, draft *RegistrationDraft) (*AuthResult, error) {
	return m.createUserFunc(ctx, draft)
}

func (m *mockIdentity) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockIdentity) Logout(ctx context.Context, refreshToken string) (*Ack, error) {
	return m.logoutFunc(ctx, refreshToken)
}

func (m *mockIdentity) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	return m.refreshFunc(ctx, refreshToken)
}

func (m *mockIdentity) Activate(ctx context.Context, activationLink string) error {
	return m.activateFunc(ctx, activationLink)
}

func (m *mockIdentity) UpdateUser(ctx context.Context, userID int64, draft *RegistrationDraft) (*Ack, error) {
	return m.updateUserFunc(ctx, userID, draft)
}

func (m *mockIdentity) DeleteUser(ctx context.Context, userID int64) (*Ack, error) {
	return m.deleteUserFunc(ctx, userID)
}

func (m *mockIdentity) GetUser(ctx context.Context, filter *AccountFilter) (*Account, error) {
	return m.getUserFunc(ctx, filter)
}

type mockOAuth struct {
	exchangeFunc func(ctx context.Context, code string) (*OAuthToken, error)
	fetchFunc    func(ctx context.Context, externalUserID int64, accessToken string) (*OAuthProfile, error)
}

func (m *mockOAuth) ExchangeCode(ctx context.Context, code string) (*OAuthToken, error) {
	return m.exchangeFunc(ctx, code)
}

func (m *mockOAuth) FetchPublicProfile(ctx context.Context, externalUserID int64, accessToken string) (*OAuthProfile, error) {
	return m.fetchFunc(ctx, externalUserID, accessToken)
}

// recordingObserver collects step results for assertions on flow shape.
type recordingObserver struct {
	mu      sync.Mutex
	results []StepResult
}

func (o *recordingObserver) OnStep(_ context.Context, res StepResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, res)
}

func (o *recordingObserver) steps() []StepResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]StepResult, len(o.results))
	copy(out, o.results)
	return out
}

func (o *recordingObserver) find(s Step) (StepResult, bool) {
	for _, r := range o.steps() {
		if r.Step == s {
			return r, true
		}
	}
	return StepResult{}, false
}
