package auth

import (
	"path/filepath"
	"testing"

	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/DBP-2025-2/music-app-sub000/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()
	storage, err := sqlite.New(logrus.New(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return NewRepository(storage.Connection)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	var repository = newTestRepository(t)
	var data = RegistrationData{Email: "ada@example.com", Password: "irrelevant", Nickname: "ada"}

	user, err := repository.Register(data, "hash")
	require.NoError(t, err)
	assert.Positive(t, user.Id)
	assert.Equal(t, "ada", user.Nickname)

	_, err = repository.Register(RegistrationData{Email: "ada@example.com", Password: "other", Nickname: "imposter"}, "hash")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCredentialsLookup(t *testing.T) {
	var repository = newTestRepository(t)

	user, err := repository.Register(RegistrationData{Email: "ada@example.com", Password: "irrelevant", Nickname: "ada"}, "stored-hash")
	require.NoError(t, err)

	userId, passwordHash, err := repository.GetCredentials("ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.Id, userId)
	assert.Equal(t, "stored-hash", passwordHash)

	_, _, err = repository.GetCredentials("nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	passwordHash, err = repository.GetCredentialsById(user.Id)
	require.NoError(t, err)
	assert.Equal(t, "stored-hash", passwordHash)
}

func TestUserLookups(t *testing.T) {
	var repository = newTestRepository(t)

	user, err := repository.Register(RegistrationData{Email: "ada@example.com", Password: "irrelevant", Nickname: "ada"}, "hash")
	require.NoError(t, err)

	assert.True(t, repository.ExistsUserId(user.Id))
	assert.False(t, repository.ExistsUserId(user.Id+100))

	require.NoError(t, repository.UpdateLastLogin(user.Id, ntime.Now()))

	fetched, err := repository.GetUserById(user.Id)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", fetched.Email)

	_, err = repository.GetUserById(user.Id + 100)
	assert.ErrorIs(t, err, ErrNotFound)
}
