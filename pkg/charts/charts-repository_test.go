package charts

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

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

func seedSongWithArtist(t *testing.T, connection *sql.DB, title, artist string) int64 {
	t.Helper()
	result, err := connection.Exec("INSERT INTO songs (title) VALUES (?)", title)
	require.NoError(t, err)
	songId, err := result.LastInsertId()
	require.NoError(t, err)

	result, err = connection.Exec("INSERT INTO artists (name, name_norm) VALUES (?, ?)", artist, artist)
	require.NoError(t, err)
	artistId, err := result.LastInsertId()
	require.NoError(t, err)

	_, err = connection.Exec(
		"INSERT INTO song_artists (song_id, artist_id, display_order) VALUES (?, ?, 1)",
		songId, artistId,
	)
	require.NoError(t, err)
	return songId
}

func seedChartRow(t *testing.T, connection *sql.DB, year, week, rank int, songId int64) {
	t.Helper()
	_, err := connection.Exec(
		"INSERT INTO charts (chart_type, year, week, rank, song_id, week_start_date, week_end_date) VALUES ('top200', ?, ?, ?, ?, ?, ?)",
		year, week, rank, songId, "2025-03-03", "2025-03-09",
	)
	require.NoError(t, err)
}

func TestListPeriods_MostRecentFirst(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	songId := seedSongWithArtist(t, connection, "One More Time", "Daft Punk")
	seedChartRow(t, connection, 2024, 52, 1, songId)
	seedChartRow(t, connection, 2025, 1, 1, songId)
	seedChartRow(t, connection, 2025, 10, 1, songId)
	// a second rank within a week must not produce a second period
	seedChartRow(t, connection, 2025, 10, 2, songId)

	periods, err := repository.ListPeriods()
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, 2025, periods[0].Year)
	assert.Equal(t, 10, periods[0].Week)
	assert.Equal(t, 1, periods[1].Week)
	assert.Equal(t, 2024, periods[2].Year)
}

func TestListWeeklyEntries_OrderedByRank(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	first := seedSongWithArtist(t, connection, "One More Time", "Daft Punk")
	second := seedSongWithArtist(t, connection, "Karma Police", "Radiohead")
	seedChartRow(t, connection, 2025, 10, 2, second)
	seedChartRow(t, connection, 2025, 10, 1, first)

	entries, err := repository.ListWeeklyEntries(2025, 10, "top200", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "One More Time", entries[0].Title)
	assert.Equal(t, "Daft Punk", entries[0].Artist)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "Karma Police", entries[1].Title)
}

func TestListWeeklyEntries_LikeAnnotations(t *testing.T) {
	var connection = newTestConnection(t)
	var repository = NewRepository(connection)

	songId := seedSongWithArtist(t, connection, "One More Time", "Daft Punk")
	seedChartRow(t, connection, 2025, 10, 1, songId)

	result, err := connection.Exec(
		"INSERT INTO users (email, password_hash, nickname, created_at) VALUES (?, ?, ?, ?)",
		"ada@example.com", "irrelevant-hash", "ada", time.Now(),
	)
	require.NoError(t, err)
	viewerId, err := result.LastInsertId()
	require.NoError(t, err)

	date, err := ntime.Now().Value()
	require.NoError(t, err)
	_, err = connection.Exec("INSERT INTO likes (user_id, song_id, created_at) VALUES (?, ?, ?)", viewerId, songId, date)
	require.NoError(t, err)

	// the liking viewer sees their own state
	entries, err := repository.ListWeeklyEntries(2025, 10, "top200", viewerId)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].TotalLikes)
	assert.True(t, entries[0].UserLiked)

	// anonymous viewers see counts only
	entries, err = repository.ListWeeklyEntries(2025, 10, "top200", 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].TotalLikes)
	assert.False(t, entries[0].UserLiked)
}

func TestListWeeklyEntries_UnknownWeekIsEmpty(t *testing.T) {
	var repository = NewRepository(newTestConnection(t))

	entries, err := repository.ListWeeklyEntries(1999, 1, "top200", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
