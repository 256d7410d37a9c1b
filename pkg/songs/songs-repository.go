package songs

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/mattn/go-sqlite3"
)

type SongRepository interface {
	ToggleLike(userId, songId int64, date ntime.NTime) (bool, error)
	ListLikedSongs(userId int64) ([]LikedSong, error)
	RecordPlay(userId, songId int64, date ntime.NTime) error
	ListRecentPlays(userId int64, limit int) ([]PlayEntry, error)
	SearchSongs(query string) ([]SongSummary, error)
}

type songRepository struct {
	Connection *sql.DB
}

var ErrSongNotFound = errors.New("song not found")

func NewRepository(connection *sql.DB) SongRepository {
	return &songRepository{connection}
}

// songSelect resolves a song's primary artist and album names; either may be
// absent for singles or sparsely ingested catalogue rows.
const songSelect = `
	SELECT s.song_id, s.title, coalesce(a.name, ''), coalesce(al.title, '')
	FROM songs s
	LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
	LEFT JOIN artists a ON a.artist_id = sa.artist_id
	LEFT JOIN albums al ON al.album_id = s.album_id`

// ToggleLike flips the user's like on a song and returns the resulting state.
// As with follow toggles, a concurrent insert losing to the primary key is
// reported as the like being present rather than as a server error.
func (sr *songRepository) ToggleLike(userId, songId int64, date ntime.NTime) (liked bool, err error) {
	tx, err := sr.Connection.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(
		"SELECT TRUE FROM likes WHERE user_id = ? AND song_id = ?",
		userId, songId,
	).Scan(&exists)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if exists {
		if _, err = tx.Exec("DELETE FROM likes WHERE user_id = ? AND song_id = ?", userId, songId); err != nil {
			return false, err
		}
		return false, tx.Commit()
	}

	_, err = tx.Exec(
		"INSERT INTO likes (user_id, song_id, created_at) VALUES (?, ?, ?)",
		userId, songId, date,
	)
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey:
			return true, nil
		case sqlite3.ErrConstraintForeignKey:
			return false, ErrSongNotFound
		}
	}
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (sr *songRepository) ListLikedSongs(userId int64) ([]LikedSong, error) {
	var liked = make([]LikedSong, 0)

	rows, err := sr.Connection.Query(`
		SELECT s.song_id, s.title, coalesce(a.name, ''), coalesce(al.title, ''), l.created_at
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		LEFT JOIN albums al ON al.album_id = s.album_id
		JOIN likes l ON l.song_id = s.song_id
		WHERE l.user_id = ?
		ORDER BY l.created_at DESC`,
		userId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var song LikedSong
		if err = rows.Scan(&song.SongId, &song.Title, &song.Artist, &song.Album, &song.LikedAt); err != nil {
			return liked, err
		}
		liked = append(liked, song)
	}

	if err = rows.Err(); err != nil {
		return liked, err
	}
	if err = rows.Close(); err != nil {
		return liked, err
	}

	return liked, nil
}

// RecordPlay appends to the history log; plays are never updated or deduplicated.
func (sr *songRepository) RecordPlay(userId, songId int64, date ntime.NTime) error {
	_, err := sr.Connection.Exec(
		"INSERT INTO play_history (user_id, song_id, played_at) VALUES (?, ?, ?)",
		userId, songId, date,
	)
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrSongNotFound
		}
	}
	return err
}

func (sr *songRepository) ListRecentPlays(userId int64, limit int) ([]PlayEntry, error) {
	var plays = make([]PlayEntry, 0)

	rows, err := sr.Connection.Query(`
		SELECT s.song_id, s.title, coalesce(a.name, ''), coalesce(al.title, ''), h.played_at
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		LEFT JOIN albums al ON al.album_id = s.album_id
		JOIN play_history h ON h.song_id = s.song_id
		WHERE h.user_id = ?
		ORDER BY h.played_at DESC, h.history_id DESC
		LIMIT ?`,
		userId, limit,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var play PlayEntry
		if err = rows.Scan(&play.SongId, &play.Title, &play.Artist, &play.Album, &play.PlayedAt); err != nil {
			return plays, err
		}
		plays = append(plays, play)
	}

	if err = rows.Err(); err != nil {
		return plays, err
	}
	if err = rows.Close(); err != nil {
		return plays, err
	}

	return plays, nil
}

// SearchSongs matches the catalogue against a substring of the song title or
// any credited artist's name.
func (sr *songRepository) SearchSongs(query string) ([]SongSummary, error) {
	var songs = make([]SongSummary, 0)
	var pattern = "%" + strings.TrimSpace(query) + "%"

	rows, err := sr.Connection.Query(songSelect+`
		WHERE s.title LIKE ? OR s.song_id IN (
			SELECT sa2.song_id FROM song_artists sa2
			JOIN artists a2 ON a2.artist_id = sa2.artist_id
			WHERE a2.name LIKE ? OR a2.name_norm LIKE ?
		)
		ORDER BY s.title LIMIT 50`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var song SongSummary
		if err = rows.Scan(&song.SongId, &song.Title, &song.Artist, &song.Album); err != nil {
			return songs, err
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return songs, err
	}
	if err = rows.Close(); err != nil {
		return songs, err
	}

	return songs, nil
}
