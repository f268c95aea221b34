package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Registration_CreatesAccountThenProfile(t *testing.T) {
	var insertedUserID int64
	var insertedFields *UpdateDraft

	identity := &mockIdentity{
		createUserFunc: func(_ context.Context, draft *RegistrationDraft) (*AuthResult, error) {
			assert.Equal(t, "jdoe@example.com", draft.Email)
			return &AuthResult{
				User:         &Account{ID: 42, Email: draft.Email},
				AccessToken:  "access",
				RefreshToken: "refresh",
			}, nil
		},
	}
	writer := &mockWriter{
		insertFunc: func(_ context.Context, fields *UpdateDraft, userID int64) (int64, error) {
			insertedUserID = userID
			insertedFields = fields
			return 7, nil
		},
	}
	reader := &mockReader{
		getByIDFunc: func(_ context.Context, id int64) (*Profile, error) {
			require.EqualValues(t, 7, id)
			uid := int64(42)
			return &Profile{ID: id, NickName: "jdoe", UserID: &uid}, nil
		},
	}

	app := NewApp(reader, writer, identity, nil)

	res, err := app.Registration(context.Background(), &RegistrationDraft{
		Email:    "jdoe@example.com",
		Password: "secret",
	})

	require.NoError(t, err)
	require.NotNil(t, res.Profile)
	assert.EqualValues(t, 7, res.Profile.ID)
	assert.Equal(t, "access", res.AccessToken)
	assert.Equal(t, "refresh", res.RefreshToken)

	assert.EqualValues(t, 42, insertedUserID)
	// nickname falls back to the email local part
	assert.Equal(t, "jdoe", insertedFields.NickName)
}

func Test_Registration_KeepsExplicitNickName(t *testing.T) {
	identity := &mockIdentity{
		createUserFunc: func(_ context.Context, _ *RegistrationDraft) (*AuthResult, error) {
			return &AuthResult{User: &Account{ID: 1}}, nil
		},
	}
	writer := &mockWriter{
		insertFunc: func(_ context.Context, fields *UpdateDraft, _ int64) (int64, error) {
			assert.Equal(t, "cooldude", fields.NickName)
			return 1, nil
		},
	}
	reader := &mockReader{
		getByIDFunc: func(_ context.Context, id int64) (*Profile, error) {
			return &Profile{ID: id, NickName: "cooldude"}, nil
		},
	}

	app := NewApp(reader, writer, identity, nil)

	_, err := app.Registration(context.Background(), &RegistrationDraft{
		NickName: "cooldude",
		Email:    "jdoe@example.com",
	})
	require.NoError(t, err)
}

func Test_Registration_UpstreamRejectionPassesThrough(t *testing.T) {
	identity := &mockIdentity{
		createUserFunc: func(_ context.Context, _ *RegistrationDraft) (*AuthResult, error) {
			return &AuthResult{Exception: &ErrorEnvelope{Message: "email already registered", StatusCode: 400}}, nil
		},
	}
	writer := &mockWriter{
		insertFunc: func(_ context.Context, _ *UpdateDraft, _ int64) (int64, error) {
			t.Fatal("insert must not run when account creation is rejected")
			return 0, nil
		},
	}

	app := NewApp(&mockReader{}, writer, identity, nil)

	_, err := app.Registration(context.Background(), &RegistrationDraft{Email: "jdoe@example.com"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "email already registered", upstream.Message)
	assert.Equal(t, 400, upstream.StatusCode)
}

func Test_Registration_InsertFailureLeavesOrphanObserved(t *testing.T) {
	identity := &mockIdentity{
		createUserFunc: func(_ context.Context, _ *RegistrationDraft) (*AuthResult, error) {
			return &AuthResult{User: &Account{ID: 9}}, nil
		},
	}
	writer := &mockWriter{
		insertFunc: func(_ context.Context, _ *UpdateDraft, _ int64) (int64, error) {
			return 0, errors.New("connection reset")
		},
	}
	obs := &recordingObserver{}

	app := NewApp(&mockReader{}, writer, identity, nil, WithStepObserver(obs))

	_, err := app.Registration(context.Background(), &RegistrationDraft{Email: "jdoe@example.com"})
	require.ErrorIs(t, err, ErrUnhandled)

	created, ok := obs.find(StepCreateAccount)
	require.True(t, ok)
	assert.False(t, created.Failed())

	inserted, ok := obs.find(StepInsertProfile)
	require.True(t, ok)
	assert.True(t, inserted.Failed())
}

func Test_Registration_RejectsEmptyEmail(t *testing.T) {
	app := NewApp(&mockReader{}, &mockWriter{}, &mockIdentity{}, nil)

	_, err := app.Registration(context.Background(), &RegistrationDraft{})
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = app.Registration(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func Test_Registration_TransportFailureIsUnhandled(t *testing.T) {
	identity := &mockIdentity{
		createUserFunc: func(_ context.Context, _ *RegistrationDraft) (*AuthResult, error) {
			return nil, errors.New("reply timed out")
		},
	}

	app := NewApp(&mockReader{}, &mockWriter{}, identity, nil)

	_, err := app.Registration(context.Background(), &RegistrationDraft{Email: "jdoe@example.com"})
	assert.ErrorIs(t, err, ErrUnhandled)
}
