package playlists

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DBP-2025-2/music-app-sub000/pkg/follows"
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
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

func seedSong(t *testing.T, connection *sql.DB, title string) int64 {
	t.Helper()
	result, err := connection.Exec("INSERT INTO songs (title) VALUES (?)", title)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func boolPointer(value bool) *bool { return &value }

func TestCreate_DefaultsToPublic(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")

	summary, err := repository.Create(owner, NewPlaylistData{Name: "  Morning Mix  "})
	require.NoError(t, err)
	assert.Equal(t, "Morning Mix", summary.Name)
	assert.True(t, summary.IsPublic)
	assert.Equal(t, "ada", summary.OwnerNickname)
	assert.Zero(t, summary.TrackCount)
}

func TestVisibility_PrivatePlaylistsNeverLeak(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	stranger := seedUser(t, connection, "grace@example.com", "grace")

	hidden, err := repository.Create(owner, NewPlaylistData{Name: "Guilty Pleasures", IsPublic: boolPointer(false)})
	require.NoError(t, err)
	visible, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	// the owner sees both
	own, err := repository.ListOwn(owner)
	require.NoError(t, err)
	assert.Len(t, own, 2)

	// everyone else sees public playlists only
	public, err := repository.ListPublicByUser(owner, stranger)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, visible.PlaylistId, public[0].PlaylistId)

	searched, err := repository.SearchPublic("guilty", stranger)
	require.NoError(t, err)
	assert.Empty(t, searched)

	_, err = repository.GetDetail(hidden.PlaylistId, stranger)
	assert.ErrorIs(t, err, ErrNotFound)

	// while the owner can still open it
	detail, err := repository.GetDetail(hidden.PlaylistId, owner)
	require.NoError(t, err)
	assert.Equal(t, hidden.PlaylistId, detail.PlaylistId)
}

func TestPopularPublic_StrictFollowerOrdering(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)
	var followRepository = follows.NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	fanOne := seedUser(t, connection, "grace@example.com", "grace")
	fanTwo := seedUser(t, connection, "linus@example.com", "linus")

	quiet, err := repository.Create(owner, NewPlaylistData{Name: "Quiet"})
	require.NoError(t, err)
	popular, err := repository.Create(owner, NewPlaylistData{Name: "Popular"})
	require.NoError(t, err)

	require.NoError(t, followRepository.Follow(fanOne, popular.PlaylistId, follows.TargetPlaylist, ntime.Now()))
	require.NoError(t, followRepository.Follow(fanTwo, popular.PlaylistId, follows.TargetPlaylist, ntime.Now()))
	require.NoError(t, followRepository.Follow(fanOne, quiet.PlaylistId, follows.TargetPlaylist, ntime.Now()))

	ranked, err := repository.PopularPublic(10, fanOne)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, popular.PlaylistId, ranked[0].PlaylistId)
	assert.Equal(t, 2, ranked[0].FollowerCount)
	assert.True(t, ranked[0].IsFollowed)
	assert.Equal(t, quiet.PlaylistId, ranked[1].PlaylistId)
	assert.Equal(t, 1, ranked[1].FollowerCount)
}

func TestUpdate_EnforcesOwnership(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	stranger := seedUser(t, connection, "grace@example.com", "grace")

	summary, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	assert.ErrorIs(t, repository.Update(summary.PlaylistId, stranger, UpdatePlaylistData{Name: "Hijacked"}), ErrForbidden)
	assert.ErrorIs(t, repository.Update(summary.PlaylistId+100, owner, UpdatePlaylistData{Name: "Ghost"}), ErrNotFound)

	require.NoError(t, repository.Update(summary.PlaylistId, owner, UpdatePlaylistData{Name: "Evening Mix", IsPublic: boolPointer(false)}))

	detail, err := repository.GetDetail(summary.PlaylistId, owner)
	require.NoError(t, err)
	assert.Equal(t, "Evening Mix", detail.Name)
	assert.False(t, detail.IsPublic)
}

func TestAddItem_DuplicateRejectedWithSingleRow(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	songId := seedSong(t, connection, "One More Time")

	summary, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	item, err := repository.AddItem(summary.PlaylistId, owner, NewItemData{SongId: songId})
	require.NoError(t, err)
	assert.Equal(t, 1, item.Position)
	assert.Equal(t, "One More Time", item.Title)

	_, err = repository.AddItem(summary.PlaylistId, owner, NewItemData{SongId: songId})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	var count int
	require.NoError(t, connection.QueryRow(
		"SELECT count(*) FROM playlist_items WHERE playlist_id = ?", summary.PlaylistId,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestAddItem_UnknownSongRejected(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	summary, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	_, err = repository.AddItem(summary.PlaylistId, owner, NewItemData{SongId: 12345})
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestRemoveItem_MissingRowIsNotFound(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	songId := seedSong(t, connection, "One More Time")

	summary, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	item, err := repository.AddItem(summary.PlaylistId, owner, NewItemData{SongId: songId})
	require.NoError(t, err)

	require.NoError(t, repository.RemoveItem(summary.PlaylistId, item.ItemId, owner))
	assert.ErrorIs(t, repository.RemoveItem(summary.PlaylistId, item.ItemId, owner), ErrNotFound)
}

func TestDelete_CascadesItemsAndFollowEdges(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)
	var followRepository = follows.NewRepository(connection)

	owner := seedUser(t, connection, "ada@example.com", "ada")
	fan := seedUser(t, connection, "grace@example.com", "grace")
	songId := seedSong(t, connection, "One More Time")

	summary, err := repository.Create(owner, NewPlaylistData{Name: "Morning Mix"})
	require.NoError(t, err)

	_, err = repository.AddItem(summary.PlaylistId, owner, NewItemData{SongId: songId})
	require.NoError(t, err)
	require.NoError(t, followRepository.Follow(fan, summary.PlaylistId, follows.TargetPlaylist, ntime.Now()))

	assert.ErrorIs(t, repository.Delete(summary.PlaylistId, fan), ErrForbidden)
	require.NoError(t, repository.Delete(summary.PlaylistId, owner))

	var items, edges int
	require.NoError(t, connection.QueryRow(
		"SELECT count(*) FROM playlist_items WHERE playlist_id = ?", summary.PlaylistId,
	).Scan(&items))
	require.NoError(t, connection.QueryRow(
		"SELECT count(*) FROM follows WHERE target_type = 'playlist' AND following_id = ?", summary.PlaylistId,
	).Scan(&edges))
	assert.Zero(t, items)
	assert.Zero(t, edges)

	_, _, err = repository.GetVisibility(summary.PlaylistId)
	assert.ErrorIs(t, err, ErrNotFound)
}
