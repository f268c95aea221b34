package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DeleteProfile_CompensatesRemoteAccountExactlyOnce(t *testing.T) {
	uid := int64(7)
	writer := &mockWriter{
		deleteFunc: func(_ context.Context, id int64) (*Profile, error) {
			return &Profile{ID: id, NickName: "jdoe", UserID: &uid}, nil
		},
	}

	var deleteCalls []int64
	identity := &mockIdentity{
		deleteUserFunc: func(_ context.Context, userID int64) (*Ack, error) {
			deleteCalls = append(deleteCalls, userID)
			return &Ack{Affected: 1}, nil
		},
	}

	app := NewApp(&mockReader{}, writer, identity, nil)

	snapshot, err := app.DeleteProfile(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "jdoe", snapshot.NickName)

	require.Len(t, deleteCalls, 1)
	assert.EqualValues(t, 7, deleteCalls[0])
}

func Test_DeleteProfile_RemoteRejectionStillReturnsSnapshot(t *testing.T) {
	uid := int64(7)
	writer := &mockWriter{
		deleteFunc: func(_ context.Context, id int64) (*Profile, error) {
			return &Profile{ID: id, NickName: "jdoe", UserID: &uid}, nil
		},
	}
	identity := &mockIdentity{
		deleteUserFunc: func(_ context.Context, _ int64) (*Ack, error) {
			return &Ack{Exception: &ErrorEnvelope{Message: "account locked", StatusCode: 409}}, nil
		},
	}
	obs := &recordingObserver{}

	app := NewApp(&mockReader{}, writer, identity, nil, WithStepObserver(obs))

	snapshot, err := app.DeleteProfile(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.EqualValues(t, 5, snapshot.ID)

	compensation, ok := obs.find(StepDeleteAccount)
	require.True(t, ok)
	assert.True(t, compensation.Failed())
}

func Test_DeleteProfile_UnlinkedProfileSkipsRemoteDelete(t *testing.T) {
	writer := &mockWriter{
		deleteFunc: func(_ context.Context, id int64) (*Profile, error) {
			return &Profile{ID: id}, nil
		},
	}
	identity := &mockIdentity{
		deleteUserFunc: func(_ context.Context, _ int64) (*Ack, error) {
			t.Fatal("account deletion must not run for an unlinked profile")
			return nil, nil
		},
	}

	app := NewApp(&mockReader{}, writer, identity, nil)

	_, err := app.DeleteProfile(context.Background(), 5)
	require.NoError(t, err)
}

func Test_DeleteProfile_NotFound(t *testing.T) {
	writer := &mockWriter{
		deleteFunc: func(_ context.Context, _ int64) (*Profile, error) {
			return nil, ErrProfileNotFound
		},
	}

	app := NewApp(&mockReader{}, writer, &mockIdentity{}, nil)

	_, err := app.DeleteProfile(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
