package playlists

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// PlaylistRepository gates every mutation on ownership; routes pass the
// authenticated user's id and the repository decides between a missing
// playlist and one belonging to somebody else.
type PlaylistRepository interface {
	ListOwn(ownerId int64) ([]PlaylistSummary, error)
	ListPublicByUser(targetUserId, viewerId int64) ([]PlaylistSummary, error)
	SearchPublic(query string, viewerId int64) ([]PlaylistSummary, error)
	PopularPublic(limit int, viewerId int64) ([]PlaylistSummary, error)
	GetDetail(playlistId, viewerId int64) (*PlaylistDetail, error)
	GetVisibility(playlistId int64) (ownerId int64, isPublic bool, err error)
	Create(ownerId int64, data NewPlaylistData) (*PlaylistSummary, error)
	Update(playlistId, ownerId int64, data UpdatePlaylistData) error
	Delete(playlistId, ownerId int64) error
	AddItem(playlistId, ownerId int64, data NewItemData) (*PlaylistItemEntry, error)
	RemoveItem(playlistId, itemId, ownerId int64) error
}

type playlistRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound      = errors.New("playlist not found")
	ErrForbidden     = errors.New("playlist owned by another user")
	ErrDuplicateItem = errors.New("song already in playlist")
	ErrSongNotFound  = errors.New("song not found")
)

func NewRepository(connection *sql.DB) PlaylistRepository {
	return &playlistRepository{connection}
}

// summarySelect carries the viewer's id as its first argument; anonymous
// viewers pass zero, which matches no follow edge.
const summarySelect = `
	SELECT p.playlist_id, p.name, p.owner_user_id, u.nickname, p.is_public, coalesce(p.note, ''),
		(SELECT count(*) FROM playlist_items WHERE playlist_id = p.playlist_id) AS track_count,
		(SELECT count(*) FROM follows WHERE target_type = 'playlist' AND following_id = p.playlist_id) AS follower_count,
		EXISTS (
			SELECT TRUE FROM follows
			WHERE follower_id = ? AND target_type = 'playlist' AND following_id = p.playlist_id
		) AS is_followed,
		p.created_at, p.updated_at
	FROM playlists p JOIN users u ON u.user_id = p.owner_user_id`

func (pr *playlistRepository) querySummaries(clauses string, args ...interface{}) ([]PlaylistSummary, error) {
	var summaries = make([]PlaylistSummary, 0)

	rows, err := pr.Connection.Query(summarySelect+clauses, args...)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var summary PlaylistSummary
		if err = rows.Scan(
			&summary.PlaylistId, &summary.Name, &summary.OwnerId, &summary.OwnerNickname,
			&summary.IsPublic, &summary.Note, &summary.TrackCount, &summary.FollowerCount,
			&summary.IsFollowed, &summary.CreatedAt, &summary.UpdatedAt,
		); err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return summaries, err
	}
	if err = rows.Close(); err != nil {
		return summaries, err
	}

	return summaries, nil
}

func (pr *playlistRepository) ListOwn(ownerId int64) ([]PlaylistSummary, error) {
	return pr.querySummaries(
		" WHERE p.owner_user_id = ? ORDER BY p.created_at DESC",
		ownerId, ownerId,
	)
}

func (pr *playlistRepository) ListPublicByUser(targetUserId, viewerId int64) ([]PlaylistSummary, error) {
	return pr.querySummaries(
		" WHERE p.is_public AND p.owner_user_id = ? ORDER BY p.created_at DESC",
		viewerId, targetUserId,
	)
}

// SearchPublic matches public playlists against a case insensitive substring
// of their name, newest first. A blank query lists all public playlists.
func (pr *playlistRepository) SearchPublic(query string, viewerId int64) ([]PlaylistSummary, error) {
	return pr.querySummaries(
		" WHERE p.is_public AND p.name LIKE ? ORDER BY p.created_at DESC",
		viewerId, "%"+strings.TrimSpace(query)+"%",
	)
}

// PopularPublic ranks public playlists by follower count; ties go to the most
// recently created.
func (pr *playlistRepository) PopularPublic(limit int, viewerId int64) ([]PlaylistSummary, error) {
	return pr.querySummaries(
		" WHERE p.is_public ORDER BY follower_count DESC, p.created_at DESC LIMIT ?",
		viewerId, limit,
	)
}

// GetDetail returns a playlist's summary and its ordered items. Private
// playlists are only visible to their owner; anybody else gets a not found
// error, which avoids leaking their existence.
func (pr *playlistRepository) GetDetail(playlistId, viewerId int64) (*PlaylistDetail, error) {
	summaries, err := pr.querySummaries(" WHERE p.playlist_id = ?", viewerId, playlistId)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, ErrNotFound
	}

	var detail = PlaylistDetail{PlaylistSummary: summaries[0], Items: make([]PlaylistItemEntry, 0)}
	if !detail.IsPublic && detail.OwnerId != viewerId {
		return nil, ErrNotFound
	}

	rows, err := pr.Connection.Query(`
		SELECT i.item_id, i.song_id, s.title, coalesce(a.name, ''), coalesce(al.title, ''),
			i.position, coalesce(i.note, ''), i.added_at
		FROM playlist_items i
		JOIN songs s ON s.song_id = i.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		LEFT JOIN albums al ON al.album_id = s.album_id
		WHERE i.playlist_id = ?
		ORDER BY i.position`,
		playlistId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var item PlaylistItemEntry
		if err = rows.Scan(
			&item.ItemId, &item.SongId, &item.Title, &item.Artist, &item.Album,
			&item.Position, &item.Note, &item.AddedAt,
		); err != nil {
			return &detail, err
		}
		detail.Items = append(detail.Items, item)
	}

	if err = rows.Err(); err != nil {
		return &detail, err
	}
	if err = rows.Close(); err != nil {
		return &detail, err
	}

	return &detail, nil
}

func (pr *playlistRepository) GetVisibility(playlistId int64) (ownerId int64, isPublic bool, err error) {
	err = pr.Connection.QueryRow(
		"SELECT owner_user_id, is_public FROM playlists WHERE playlist_id = ?",
		playlistId,
	).Scan(&ownerId, &isPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrNotFound
	}
	return ownerId, isPublic, err
}

func (pr *playlistRepository) Create(ownerId int64, data NewPlaylistData) (*PlaylistSummary, error) {
	var now = time.Now()
	result, err := pr.Connection.Exec(
		"INSERT INTO playlists (name, owner_user_id, is_public, note, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		strings.TrimSpace(data.Name), ownerId, data.Public(), data.Note, now, now,
	)
	if err != nil {
		return nil, err
	}

	playlistId, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	summaries, err := pr.querySummaries(" WHERE p.playlist_id = ?", ownerId, playlistId)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, ErrNotFound
	}
	return &summaries[0], nil
}

// checkOwner distinguishes a missing playlist from one owned by another user,
// so routes can answer 404 or 403 accordingly.
func checkOwner(tx *sql.Tx, playlistId, ownerId int64) error {
	var actualOwner int64
	err := tx.QueryRow("SELECT owner_user_id FROM playlists WHERE playlist_id = ?", playlistId).Scan(&actualOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if actualOwner != ownerId {
		return ErrForbidden
	}
	return nil
}

func (pr *playlistRepository) Update(playlistId, ownerId int64, data UpdatePlaylistData) error {
	tx, err := pr.Connection.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = checkOwner(tx, playlistId, ownerId); err != nil {
		return err
	}

	var query = "UPDATE playlists SET name = ?, updated_at = ?"
	var args = []interface{}{strings.TrimSpace(data.Name), time.Now()}

	if data.IsPublic != nil {
		query += ", is_public = ?"
		args = append(args, *data.IsPublic)
	}
	if data.Note != nil {
		query += ", note = ?"
		args = append(args, *data.Note)
	}

	query += " WHERE playlist_id = ?"
	args = append(args, playlistId)

	if _, err = tx.Exec(query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a playlist along with its items and the follow edges pointing
// at it, in one transaction.
func (pr *playlistRepository) Delete(playlistId, ownerId int64) error {
	tx, err := pr.Connection.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = checkOwner(tx, playlistId, ownerId); err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM playlist_items WHERE playlist_id = ?", playlistId); err != nil {
		return err
	}
	if _, err = tx.Exec("DELETE FROM follows WHERE target_type = 'playlist' AND following_id = ?", playlistId); err != nil {
		return err
	}
	if _, err = tx.Exec("DELETE FROM playlists WHERE playlist_id = ?", playlistId); err != nil {
		return err
	}
	return tx.Commit()
}

// AddItem appends a song at the playlist's next free position. The unique
// constraint on (playlist_id, song_id) rejects duplicates and the foreign key
// rejects unknown songs; both translate to sentinel errors.
func (pr *playlistRepository) AddItem(playlistId, ownerId int64, data NewItemData) (*PlaylistItemEntry, error) {
	tx, err := pr.Connection.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err = checkOwner(tx, playlistId, ownerId); err != nil {
		return nil, err
	}

	var position int
	if err = tx.QueryRow(
		"SELECT coalesce(max(position), 0) + 1 FROM playlist_items WHERE playlist_id = ?",
		playlistId,
	).Scan(&position); err != nil {
		return nil, err
	}

	var now = time.Now()
	result, err := tx.Exec(
		"INSERT INTO playlist_items (playlist_id, song_id, position, note, added_at) VALUES (?, ?, ?, ?, ?)",
		playlistId, data.SongId, position, data.Note, now,
	)
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return nil, ErrDuplicateItem
		case sqlite3.ErrConstraintForeignKey:
			return nil, ErrSongNotFound
		}
	}
	if err != nil {
		return nil, err
	}

	itemId, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	var item = PlaylistItemEntry{ItemId: itemId, SongId: data.SongId, Position: position, Note: data.Note, AddedAt: now}
	if err = tx.QueryRow(`
		SELECT s.title, coalesce(a.name, ''), coalesce(al.title, '')
		FROM songs s
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		LEFT JOIN albums al ON al.album_id = s.album_id
		WHERE s.song_id = ?`,
		data.SongId,
	).Scan(&item.Title, &item.Artist, &item.Album); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &item, nil
}

func (pr *playlistRepository) RemoveItem(playlistId, itemId, ownerId int64) error {
	tx, err := pr.Connection.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err = checkOwner(tx, playlistId, ownerId); err != nil {
		return err
	}

	result, err := tx.Exec(
		"DELETE FROM playlist_items WHERE item_id = ? AND playlist_id = ?",
		itemId, playlistId,
	)
	if err != nil {
		return err
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
