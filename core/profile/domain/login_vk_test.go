package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vkToken() *OAuthToken {
	return &OAuthToken{
		AccessToken:    "vk-access",
		ExternalUserID: 100500,
		Email:          "jdoe@example.com",
	}
}

func Test_LoginVk_ExistingAccountLogsInWithoutRegistration(t *testing.T) {
	oauth := &mockOAuth{
		exchangeFunc: func(_ context.Context, code string) (*OAuthToken, error) {
			assert.Equal(t, "code-1", code)
			return vkToken(), nil
		},
	}

	identity := &mockIdentity{
		getUserFunc: func(_ context.Context, filter *AccountFilter) (*Account, error) {
			assert.Equal(t, "jdoe@example.com", filter.Email)
			require.NotNil(t, filter.VkID)
			assert.EqualValues(t, 100500, *filter.VkID)
			return &Account{ID: 42, Email: filter.Email, Password: "stored-surrogate"}, nil
		},
		loginFunc: func(_ context.Context, req *LoginRequest) (*AuthResult, error) {
			assert.Equal(t, "jdoe@example.com", req.Email)
			assert.Equal(t, "stored-surrogate", req.Password)
			assert.Equal(t, "VK", req.Provider)
			return &AuthResult{AccessToken: "session"}, nil
		},
		createUserFunc: func(_ context.Context, _ *RegistrationDraft) (*AuthResult, error) {
			t.Fatal("registration must not run when the account already exists")
			return nil, nil
		},
	}

	app := NewApp(&mockReader{}, &mockWriter{}, identity, oauth)

	res, err := app.LoginVk(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "session", res.AccessToken)
}

func Test_LoginVk_NewAccountRegistersOnceThenLogsIn(t *testing.T) {
	oauth := &mockOAuth{
		exchangeFunc: func(_ context.Context, _ string) (*OAuthToken, error) {
			return vkToken(), nil
		},
		fetchFunc: func(_ context.Context, externalUserID int64, accessToken string) (*OAuthProfile, error) {
			assert.EqualValues(t, 100500, externalUserID)
			assert.Equal(t, "vk-access", accessToken)
			return &OAuthProfile{FirstName: "John", LastName: "Doe"}, nil
		},
	}

	registrations := 0
	identity := &mockIdentity{
		getUserFunc: func(_ context.Context, _ *AccountFilter) (*Account, error) {
			return nil, nil // no account yet
		},
		createUserFunc: func(_ context.Context, draft *RegistrationDraft) (*AuthResult, error) {
			registrations++
			assert.Equal(t, "VK", draft.Provider)
			assert.Equal(t, "John", draft.NickName)
			assert.Equal(t, "John", draft.FirstName)
			assert.Equal(t, "Doe", draft.LastName)
			require.NotNil(t, draft.VkID)
			assert.EqualValues(t, 100500, *draft.VkID)
			return &AuthResult{User: &Account{ID: 42}}, nil
		},
		loginFunc: func(_ context.Context, req *LoginRequest) (*AuthResult, error) {
			assert.Equal(t, "VK", req.Provider)
			return &AuthResult{AccessToken: "session"}, nil
		},
	}

	writer := &mockWriter{
		insertFunc: func(_ context.Context, _ *UpdateDraft, userID int64) (int64, error) {
			assert.EqualValues(t, 42, userID)
			return 7, nil
		},
	}
	reader := &mockReader{
		getByIDFunc: func(_ context.Context, id int64) (*Profile, error) {
			return &Profile{ID: id}, nil
		},
	}

	app := NewApp(reader, writer, identity, oauth)

	res, err := app.LoginVk(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "session", res.AccessToken)
	assert.Equal(t, 1, registrations)
}

func Test_LoginVk_BadCode(t *testing.T) {
	oauth := &mockOAuth{
		exchangeFunc: func(_ context.Context, _ string) (*OAuthToken, error) {
			return nil, errors.New("invalid_grant")
		},
	}

	app := NewApp(&mockReader{}, &mockWriter{}, &mockIdentity{}, oauth)

	_, err := app.LoginVk(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthCode)
}

func Test_LoginVk_LookupFailureAfterExchange(t *testing.T) {
	oauth := &mockOAuth{
		exchangeFunc: func(_ context.Context, _ string) (*OAuthToken, error) {
			return vkToken(), nil
		},
	}
	identity := &mockIdentity{
		getUserFunc: func(_ context.Context, _ *AccountFilter) (*Account, error) {
			return nil, errors.New("reply timed out")
		},
	}

	app := NewApp(&mockReader{}, &mockWriter{}, identity, oauth)

	_, err := app.LoginVk(context.Background(), "code-1")
	assert.ErrorIs(t, err, ErrOAuthExchange)
	assert.NotErrorIs(t, err, ErrInvalidOAuthCode)
}

func Test_LoginVk_ProfileFetchFailure(t *testing.T) {
	oauth := &mockOAuth{
		exchangeFunc: func(_ context.Context, _ string) (*OAuthToken, error) {
			return vkToken(), nil
		},
		fetchFunc: func(_ context.Context, _ int64, _ string) (*OAuthProfile, error) {
			return nil, errors.New("api unavailable")
		},
	}
	identity := &mockIdentity{
		getUserFunc: func(_ context.Context, _ *AccountFilter) (*Account, error) {
			return nil, nil
		},
	}

	app := NewApp(&mockReader{}, &mockWriter{}, identity, oauth)

	_, err := app.LoginVk(context.Background(), "code-1")
	assert.ErrorIs(t, err, ErrOAuthExchange)
}

func Test_LoginVk_RejectsEmptyCode(t *testing.T) {
	app := NewApp(&mockReader{}, &mockWriter{}, &mockIdentity{}, &mockOAuth{})

	_, err := app.LoginVk(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidData)
}
