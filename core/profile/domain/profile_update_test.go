package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readerFor returns a reader serving one stored profile by id.
func readerFor(stored *Profile) *mockReader {
	return &mockReader{
		getByIDFunc: func(_ context.Context, id int64) (*Profile, error) {
			if id != stored.ID {
				return nil, ErrProfileNotFound
			}
			snapshot := *stored
			return &snapshot, nil
		},
	}
}

func Test_UpdateProfile_FieldIsolation(t *testing.T) {
	uid := int64(42)
	var storedFields *UpdateDraft
	var storedAvatar string

	reader := readerFor(&Profile{ID: 5, NickName: "jdoe", LastName: "Doe", Phone: "+7900", UserID: &uid})
	writer := &mockWriter{
		updateFunc: func(_ context.Context, id int64, fields *UpdateDraft, avatar string) (*Profile, error) {
			require.EqualValues(t, 5, id)
			storedFields = fields
			storedAvatar = avatar
			return &Profile{ID: id, FirstName: fields.FirstName, Avatar: avatar, UserID: &uid}, nil
		},
	}

	var forwardedID int64
	var forwardedDraft *RegistrationDraft
	identity := &mockIdentity{
		updateUserFunc: func(_ context.Context, userID int64, draft *RegistrationDraft) (*Ack, error) {
			forwardedID = userID
			forwardedDraft = draft
			return &Ack{Affected: 1}, nil
		},
	}

	app := NewApp(reader, writer, identity, nil)

	draft := &RegistrationDraft{
		FirstName: "New",
		Email:     "y@z.com",
		Password:  "x",
	}
	updated, err := app.UpdateProfile(context.Background(), 5, draft, "avatar.png")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
	assert.Equal(t, "avatar.png", updated.Avatar)

	// the store never sees credentials; UpdateDraft has no email or password
	assert.Equal(t, &UpdateDraft{NickName: "jdoe", FirstName: "New", LastName: "Doe", Phone: "+7900"}, storedFields)
	assert.Equal(t, "avatar.png", storedAvatar)

	// the credential change travels only through the account-update command
	assert.EqualValues(t, 42, forwardedID)
	require.NotNil(t, forwardedDraft)
	assert.Equal(t, "y@z.com", forwardedDraft.Email)
	assert.Equal(t, "x", forwardedDraft.Password)
}

func Test_UpdateProfile_PreservesFieldsAbsentFromDraft(t *testing.T) {
	var storedFields *UpdateDraft

	reader := readerFor(&Profile{
		ID: 5, NickName: "jdoe", FirstName: "John", LastName: "Doe", Phone: "+7900",
	})
	writer := &mockWriter{
		updateFunc: func(_ context.Context, id int64, fields *UpdateDraft, _ string) (*Profile, error) {
			storedFields = fields
			return &Profile{
				ID: id, NickName: fields.NickName, FirstName: fields.FirstName,
				LastName: fields.LastName, Phone: fields.Phone,
			}, nil
		},
	}

	app := NewApp(reader, writer, &mockIdentity{}, nil)

	// a draft carrying only first_name must not erase the other columns
	updated, err := app.UpdateProfile(context.Background(), 5, &RegistrationDraft{FirstName: "A2"}, "")
	require.NoError(t, err)

	require.NotNil(t, storedFields)
	assert.Equal(t, &UpdateDraft{NickName: "jdoe", FirstName: "A2", LastName: "Doe", Phone: "+7900"}, storedFields)
	assert.Equal(t, "jdoe", updated.NickName)
	assert.Equal(t, "Doe", updated.LastName)
	assert.Equal(t, "+7900", updated.Phone)
}

func Test_UpdateProfile_LocalUpdateSurvivesCredentialForwardFailure(t *testing.T) {
	uid := int64(42)
	reader := readerFor(&Profile{ID: 5, UserID: &uid})
	writer := &mockWriter{
		updateFunc: func(_ context.Context, id int64, fields *UpdateDraft, _ string) (*Profile, error) {
			return &Profile{ID: id, FirstName: fields.FirstName, UserID: &uid}, nil
		},
	}
	identity := &mockIdentity{
		updateUserFunc: func(_ context.Context, _ int64, _ *RegistrationDraft) (*Ack, error) {
			return &Ack{Exception: &ErrorEnvelope{Message: "identity unavailable", StatusCode: 503}}, nil
		},
	}
	obs := &recordingObserver{}

	app := NewApp(reader, writer, identity, nil, WithStepObserver(obs))

	updated, err := app.UpdateProfile(context.Background(), 5, &RegistrationDraft{FirstName: "New", Password: "x"}, "")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)

	forward, ok := obs.find(StepUpdateAccount)
	require.True(t, ok)
	assert.True(t, forward.Failed())
}

func Test_UpdateProfile_NoCredentialChangeSkipsForward(t *testing.T) {
	uid := int64(42)
	reader := readerFor(&Profile{ID: 5, UserID: &uid})
	writer := &mockWriter{
		updateFunc: func(_ context.Context, id int64, fields *UpdateDraft, _ string) (*Profile, error) {
			return &Profile{ID: id, FirstName: fields.FirstName, UserID: &uid}, nil
		},
	}
	identity := &mockIdentity{
		updateUserFunc: func(_ context.Context, _ int64, _ *RegistrationDraft) (*Ack, error) {
			t.Fatal("account update must not run without a credential change")
			return nil, nil
		},
	}

	app := NewApp(reader, writer, identity, nil)

	_, err := app.UpdateProfile(context.Background(), 5, &RegistrationDraft{FirstName: "New"}, "")
	require.NoError(t, err)
}

func Test_UpdateProfile_UnlinkedProfileSkipsForward(t *testing.T) {
	reader := readerFor(&Profile{ID: 5})
	writer := &mockWriter{
		updateFunc: func(_ context.Context, id int64, fields *UpdateDraft, _ string) (*Profile, error) {
			return &Profile{ID: id, FirstName: fields.FirstName}, nil
		},
	}
	identity := &mockIdentity{
		updateUserFunc: func(_ context.Context, _ int64, _ *RegistrationDraft) (*Ack, error) {
			t.Fatal("account update must not run for a profile without an account")
			return nil, nil
		},
	}

	app := NewApp(reader, writer, identity, nil)

	updated, err := app.UpdateProfile(context.Background(), 5, &RegistrationDraft{FirstName: "New", Email: "y@z.com"}, "")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.FirstName)
}

func Test_UpdateProfile_NotFound(t *testing.T) {
	reader := &mockReader{
		getByIDFunc: func(_ context.Context, _ int64) (*Profile, error) {
			return nil, ErrProfileNotFound
		},
	}
	writer := &mockWriter{
		updateFunc: func(_ context.Context, _ int64, _ *UpdateDraft, _ string) (*Profile, error) {
			t.Fatal("missing profile must not reach the write store")
			return nil, nil
		},
	}

	app := NewApp(reader, writer, &mockIdentity{}, nil)

	_, err := app.UpdateProfile(context.Background(), 5, &RegistrationDraft{FirstName: "New"}, "")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func Test_UpdateProfile_RejectsBadInput(t *testing.T) {
	app := NewApp(&mockReader{}, &mockWriter{}, &mockIdentity{}, nil)

	_, err := app.UpdateProfile(context.Background(), 0, &RegistrationDraft{}, "")
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = app.UpdateProfile(context.Background(), 5, nil, "")
	assert.ErrorIs(t, err, ErrInvalidData)
}
