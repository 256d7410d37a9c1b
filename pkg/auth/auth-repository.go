package auth

import (
	"database/sql"
	"errors"
	"time"

	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/mattn/go-sqlite3"
)

type Repository interface {
	Register(data RegistrationData, passwordHash string) (*User, error)
	GetCredentials(email string) (userId int64, passwordHash string, err error)
	GetCredentialsById(userId int64) (passwordHash string, err error)
	UpdateLastLogin(userId int64, date ntime.NTime) error
	ExistsUserId(userId int64) bool
	GetUserById(userId int64) (User, error)
}

type authRepository struct {
	Connection *sql.DB
}

var (
	ErrEmailTaken = errors.New("email is already registered")
	ErrNotFound   = errors.New("user not found")
)

func NewRepository(connection *sql.DB) Repository {
	return &authRepository{connection}
}

func (ar *authRepository) Register(data RegistrationData, passwordHash string) (*User, error) {
	var now = time.Now()

	result, err := ar.Connection.Exec(
		"INSERT INTO users (email, password_hash, nickname, created_at) VALUES (?, ?, ?, ?)",
		data.Email, passwordHash, data.Nickname, now,
	)

	// a unique constraint violation signals the email is taken
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		if sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrEmailTaken
		}
	}
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &User{
		Id:        id,
		Email:     data.Email,
		Nickname:  data.Nickname,
		CreatedAt: now,
	}, nil
}

func (ar *authRepository) GetCredentials(email string) (userId int64, passwordHash string, err error) {
	err = ar.Connection.QueryRow(
		"SELECT user_id, password_hash FROM users WHERE email = ?", email,
	).Scan(&userId, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrNotFound
	}
	return userId, passwordHash, err
}

func (ar *authRepository) GetCredentialsById(userId int64) (passwordHash string, err error) {
	err = ar.Connection.QueryRow(
		"SELECT password_hash FROM users WHERE user_id = ?", userId,
	).Scan(&passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return passwordHash, err
}

func (ar *authRepository) UpdateLastLogin(userId int64, date ntime.NTime) error {
	_, err := ar.Connection.Exec("UPDATE users SET last_login_at = ? WHERE user_id = ?", date, userId)
	return err
}

func (ar *authRepository) ExistsUserId(userId int64) (exists bool) {
	// will return false in the absence of positive results
	err := ar.Connection.QueryRow("SELECT TRUE FROM users WHERE user_id = ?", userId).Scan(&exists)
	return err == nil && exists
}

func (ar *authRepository) GetUserById(userId int64) (user User, err error) {
	err = ar.Connection.QueryRow(
		"SELECT user_id, email, nickname, created_at FROM users WHERE user_id = ?", userId,
	).Scan(&user.Id, &user.Email, &user.Nickname, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}
