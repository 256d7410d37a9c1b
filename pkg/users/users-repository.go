package users

import (
	"database/sql"
	"errors"
)

// UserRepository resolves human facing identifiers, emails, nicknames and
// artist names, to the numeric ids every other table references.
type UserRepository interface {
	ResolveUserByEmail(email string) (int64, error)
	ResolveUserByNickname(nickname string) (int64, error)
	ResolveArtistByName(nameInput string) (int64, error)
	GetProfile(userId int64) (Profile, error)
	UpdateNickname(userId int64, newNickname string) error
	UpdatePassword(userId int64, newPasswordHash string) error
}

type userRepository struct {
	Connection *sql.DB
}

var (
	ErrNotFound = errors.New("no matching user or artist")

	// ErrAmbiguousNickname signals that multiple accounts share a nickname,
	// which the schema permits; callers must not pick an arbitrary match.
	ErrAmbiguousNickname = errors.New("nickname matches multiple users")
)

func NewRepository(connection *sql.DB) UserRepository {
	return &userRepository{connection}
}

func (ur *userRepository) ResolveUserByEmail(email string) (userId int64, err error) {
	err = ur.Connection.QueryRow("SELECT user_id FROM users WHERE email = ?", email).Scan(&userId)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return userId, err
}

// ResolveUserByNickname performs an exact match; two rows are enough to detect
// an ambiguous nickname, so the query never fetches more.
func (ur *userRepository) ResolveUserByNickname(nickname string) (int64, error) {
	rows, err := ur.Connection.Query("SELECT user_id FROM users WHERE nickname = ? LIMIT 2", nickname)
	if err != nil {
		return 0, err
	}

	var matches = make([]int64, 0, 2)
	var userId int64
	for rows.Next() {
		if err = rows.Scan(&userId); err != nil {
			return 0, err
		}
		matches = append(matches, userId)
	}

	if err = rows.Err(); err != nil {
		return 0, err
	}
	if err = rows.Close(); err != nil {
		return 0, err
	}

	switch len(matches) {
	case 0:
		return 0, ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return 0, ErrAmbiguousNickname
	}
}

// ResolveArtistByName matches the raw stored name, or the normalised form of
// the input against the stored name_norm column.
func (ur *userRepository) ResolveArtistByName(nameInput string) (artistId int64, err error) {
	err = ur.Connection.QueryRow(
		"SELECT artist_id FROM artists WHERE name = ? OR name_norm = ?",
		nameInput, NormaliseName(nameInput),
	).Scan(&artistId)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return artistId, err
}

func (ur *userRepository) GetProfile(userId int64) (profile Profile, err error) {
	err = ur.Connection.QueryRow(
		"SELECT user_id, nickname, created_at, last_login_at FROM users WHERE user_id = ?", userId,
	).Scan(&profile.Id, &profile.Nickname, &profile.CreatedAt, &profile.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return profile, ErrNotFound
	}
	return profile, err
}

func (ur *userRepository) UpdateNickname(userId int64, newNickname string) error {
	// nicknames aren't unique, so no constraint translation is needed here
	_, err := ur.Connection.Exec("UPDATE users SET nickname = ? WHERE user_id = ?", newNickname, userId)
	return err
}

func (ur *userRepository) UpdatePassword(userId int64, newPasswordHash string) error {
	_, err := ur.Connection.Exec("UPDATE users SET password_hash = ? WHERE user_id = ?", newPasswordHash, userId)
	return err
}
