package follows

import (
	"database/sql"
	"errors"

	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/mattn/go-sqlite3"
)

// FollowRepository records directed follow edges with polymorphic targets;
// following_id points into users, artists or playlists depending on the edge's
// target type, which rules out a single foreign key.
type FollowRepository interface {
	Follow(followerId, followingId int64, targetType TargetType, date ntime.NTime) error
	Unfollow(followerId, followingId int64, targetType TargetType) error
	IsFollowing(followerId, followingId int64, targetType TargetType) bool
	Toggle(followerId, followingId int64, targetType TargetType, date ntime.NTime) (bool, error)
	ListFollows(userId int64) ([]FollowEntry, error)
	SearchTargets(query string) ([]TargetMatch, error)
	RecommendationCandidates(requesterId int64) (RecommendationData, error)
}

type followRepository struct {
	Connection *sql.DB
}

var (
	ErrAlreadyFollowing = errors.New("already following target")
	ErrNotFollowing     = errors.New("no such follow")
	ErrSelfFollow       = errors.New("can't follow oneself")
)

func NewRepository(connection *sql.DB) FollowRepository {
	return &followRepository{connection}
}

func (fr *followRepository) Follow(followerId, followingId int64, targetType TargetType, date ntime.NTime) error {
	if targetType == TargetUser && followerId == followingId {
		return ErrSelfFollow
	}

	_, err := fr.Connection.Exec(
		"INSERT INTO follows (follower_id, following_id, target_type, created_at) VALUES (?, ?, ?, ?)",
		followerId, followingId, targetType, date,
	)

	// a primary key violation means the edge already exists
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return ErrAlreadyFollowing
		}
	}
	return err
}

func (fr *followRepository) Unfollow(followerId, followingId int64, targetType TargetType) error {
	result, err := fr.Connection.Exec(
		"DELETE FROM follows WHERE follower_id = ? AND following_id = ? AND target_type = ?",
		followerId, followingId, targetType,
	)
	if err != nil {
		return err
	}

	unfollowed, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if unfollowed == 0 {
		return ErrNotFollowing
	}
	return err
}

func (fr *followRepository) IsFollowing(followerId, followingId int64, targetType TargetType) (exists bool) {
	var err = fr.Connection.QueryRow(
		"SELECT TRUE FROM follows WHERE follower_id = ? AND following_id = ? AND target_type = ?",
		followerId, followingId, targetType,
	).Scan(&exists)
	return err == nil && exists
}

// Toggle flips the edge's presence and returns the resulting state. The check
// and the mutation run inside one transaction; should a concurrent toggle from
// the same follower slip a row in between them, the primary key rejects the
// losing insert, which is then reported as the edge being present rather than
// as a server error.
func (fr *followRepository) Toggle(followerId, followingId int64, targetType TargetType, date ntime.NTime) (following bool, err error) {
	if targetType == TargetUser && followerId == followingId {
		return false, ErrSelfFollow
	}

	tx, err := fr.Connection.Begin()
	if err != nil {
		return false, err
	}

	// rolling back after a commit is a safe NOP
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(
		"SELECT TRUE FROM follows WHERE follower_id = ? AND following_id = ? AND target_type = ?",
		followerId, followingId, targetType,
	).Scan(&exists)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if exists {
		if _, err = tx.Exec(
			"DELETE FROM follows WHERE follower_id = ? AND following_id = ? AND target_type = ?",
			followerId, followingId, targetType,
		); err != nil {
			return false, err
		}
		return false, tx.Commit()
	}

	_, err = tx.Exec(
		"INSERT INTO follows (follower_id, following_id, target_type, created_at) VALUES (?, ?, ?, ?)",
		followerId, followingId, targetType, date,
	)
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			// a concurrent toggle won the insert; the edge exists either way
			return true, nil
		}
	}
	if err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// ListFollows returns every edge of a follower, newest first, with the target
// name joined from the table its type selects.
func (fr *followRepository) ListFollows(userId int64) ([]FollowEntry, error) {
	var entries = make([]FollowEntry, 0)

	rows, err := fr.Connection.Query(`
		SELECT f.following_id, f.target_type, u.nickname AS target_name, NULL AS owner_id, f.created_at
		FROM follows f JOIN users u ON u.user_id = f.following_id
		WHERE f.follower_id = ? AND f.target_type = 'user'
		UNION ALL
		SELECT f.following_id, f.target_type, a.name, NULL, f.created_at
		FROM follows f JOIN artists a ON a.artist_id = f.following_id
		WHERE f.follower_id = ? AND f.target_type = 'artist'
		UNION ALL
		SELECT f.following_id, f.target_type, p.name, p.owner_user_id, f.created_at
		FROM follows f JOIN playlists p ON p.playlist_id = f.following_id
		WHERE f.follower_id = ? AND f.target_type = 'playlist'
		ORDER BY created_at DESC`,
		userId, userId, userId,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var entry FollowEntry
		var ownerId sql.NullInt64
		if err = rows.Scan(&entry.FollowingId, &entry.TargetType, &entry.TargetName, &ownerId, &entry.CreatedAt); err != nil {
			return entries, err
		}
		if ownerId.Valid {
			entry.OwnerId = &ownerId.Int64
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return entries, err
	}
	if err = rows.Close(); err != nil {
		return entries, err
	}

	return entries, nil
}

// SearchTargets matches users and artists against a substring for
// autocomplete; playlists are excluded from this particular search.
func (fr *followRepository) SearchTargets(query string) ([]TargetMatch, error) {
	var matches = make([]TargetMatch, 0)
	var pattern = "%" + query + "%"

	rows, err := fr.Connection.Query(`
		SELECT user_id AS id, nickname AS name, 'user' AS type FROM users WHERE nickname LIKE ?
		UNION ALL
		SELECT artist_id, name, 'artist' FROM artists WHERE name LIKE ? OR name_norm LIKE ?
		ORDER BY name LIMIT 20`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var match TargetMatch
		if err = rows.Scan(&match.Id, &match.Name, &match.Type); err != nil {
			return matches, err
		}
		matches = append(matches, match)
	}

	if err = rows.Err(); err != nil {
		return matches, err
	}
	if err = rows.Close(); err != nil {
		return matches, err
	}

	return matches, nil
}

// RecommendationCandidates surfaces a bounded set of followable users and
// artists, ranked by follower counts; these are plain UI suggestions, not a
// personalised feed.
func (fr *followRepository) RecommendationCandidates(requesterId int64) (data RecommendationData, err error) {
	data.Users = make([]Candidate, 0, 5)
	data.Artists = make([]Candidate, 0, 5)

	rows, err := fr.Connection.Query(`
		SELECT u.user_id, u.nickname
		FROM users u
		LEFT JOIN (SELECT following_id, count(*) AS fc FROM follows WHERE target_type = 'user' GROUP BY following_id) f
			ON f.following_id = u.user_id
		WHERE u.user_id != ?
		ORDER BY coalesce(fc, 0) DESC, u.created_at DESC LIMIT 5`,
		requesterId,
	)
	if err != nil {
		return data, err
	}
	for rows.Next() {
		var candidate Candidate
		if err = rows.Scan(&candidate.Id, &candidate.Name); err != nil {
			return data, err
		}
		data.Users = append(data.Users, candidate)
	}
	if err = rows.Err(); err != nil {
		return data, err
	}
	if err = rows.Close(); err != nil {
		return data, err
	}

	rows, err = fr.Connection.Query(`
		SELECT a.artist_id, a.name
		FROM artists a
		LEFT JOIN (SELECT following_id, count(*) AS fc FROM follows WHERE target_type = 'artist' GROUP BY following_id) f
			ON f.following_id = a.artist_id
		ORDER BY coalesce(fc, 0) DESC, a.name LIMIT 5`,
	)
	if err != nil {
		return data, err
	}
	for rows.Next() {
		var candidate Candidate
		if err = rows.Scan(&candidate.Id, &candidate.Name); err != nil {
			return data, err
		}
		data.Artists = append(data.Artists, candidate)
	}
	if err = rows.Err(); err != nil {
		return data, err
	}
	if err = rows.Close(); err != nil {
		return data, err
	}

	return data, nil
}
