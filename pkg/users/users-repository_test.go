package users

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DBP-2025-2/music-app-sub000/pkg/storage/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnection(t *testing.T) *sql.DB {
	t.Helper()
	storage, err := sqlite.New(logrus.New(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })
	return storage.Connection
}

func seedUser(t *testing.T, connection *sql.DB, email, nickname string) int64 {
	t.Helper()
	result, err := connection.Exec(
		"INSERT INTO users (email, password_hash, nickname, created_at) VALUES (?, ?, ?, ?)",
		email, "irrelevant-hash", nickname, time.Now(),
	)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedArtist(t *testing.T, connection *sql.DB, name string) int64 {
	t.Helper()
	result, err := connection.Exec("INSERT INTO artists (name, name_norm) VALUES (?, ?)", name, NormaliseName(name))
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestNormaliseName(t *testing.T) {
	assert.Equal(t, "thebeatles", NormaliseName("  The   Beatles "))
	assert.Equal(t, "daftpunk", NormaliseName("Daft Punk"))
	assert.Equal(t, "björk", NormaliseName("Björk"))
}

func TestResolveUserByNickname(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	adaId := seedUser(t, connection, "ada@example.com", "ada")
	seedUser(t, connection, "grace@example.com", "grace")
	seedUser(t, connection, "grace2@example.com", "grace")

	resolved, err := repository.ResolveUserByNickname("ada")
	require.NoError(t, err)
	assert.Equal(t, adaId, resolved)

	// shared nicknames must not resolve to an arbitrary account
	_, err = repository.ResolveUserByNickname("grace")
	assert.ErrorIs(t, err, ErrAmbiguousNickname)

	_, err = repository.ResolveUserByNickname("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveArtistByName(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	artistId := seedArtist(t, connection, "The Beatles")

	// exact stored name
	resolved, err := repository.ResolveArtistByName("The Beatles")
	require.NoError(t, err)
	assert.Equal(t, artistId, resolved)

	// loose spacing and casing resolve through the normalised column
	resolved, err = repository.ResolveArtistByName("the   beatles")
	require.NoError(t, err)
	assert.Equal(t, artistId, resolved)

	_, err = repository.ResolveArtistByName("The Rolling Stones")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileLifecycle(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	userId := seedUser(t, connection, "ada@example.com", "ada")

	profile, err := repository.GetProfile(userId)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Nickname)

	require.NoError(t, repository.UpdateNickname(userId, "countess"))

	profile, err = repository.GetProfile(userId)
	require.NoError(t, err)
	assert.Equal(t, "countess", profile.Nickname)

	_, err = repository.GetProfile(userId + 100)
	assert.ErrorIs(t, err, ErrNotFound)
}
