package sqlite

// Timestamps written through the ntime package are declared as plain TEXT, so
// the driver hands back the raw RFC3339 string rather than guessing a layout.
const schema = `
BEGIN TRANSACTION;

CREATE TABLE
	IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		nickname TEXT NOT NULL CHECK (length ("nickname") >= 2 AND length ("nickname") <= 24),
		created_at datetime NOT NULL,
		last_login_at TEXT
	);

CREATE UNIQUE INDEX IF NOT EXISTS "Email Index" ON "users" ("email" ASC);

CREATE TABLE
	IF NOT EXISTS artists (
		artist_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		name_norm TEXT NOT NULL
	);

CREATE INDEX IF NOT EXISTS "Artist Name Index" ON "artists" ("name_norm" ASC);

CREATE TABLE
	IF NOT EXISTS albums (
		album_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		release_year INTEGER
	);

CREATE TABLE
	IF NOT EXISTS songs (
		song_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		album_id INTEGER,
		duration_sec INTEGER,
		FOREIGN KEY (album_id) REFERENCES albums (album_id)
	);

CREATE TABLE
	IF NOT EXISTS song_artists (
		song_id INTEGER NOT NULL,
		artist_id INTEGER NOT NULL,
		display_order INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (song_id, artist_id),
		FOREIGN KEY (song_id) REFERENCES songs (song_id),
		FOREIGN KEY (artist_id) REFERENCES artists (artist_id)
	);

CREATE TABLE
	IF NOT EXISTS playlists (
		playlist_id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		is_public INTEGER NOT NULL DEFAULT 1,
		note TEXT,
		created_at datetime NOT NULL,
		updated_at datetime NOT NULL,
		FOREIGN KEY (owner_user_id) REFERENCES users (user_id)
	);

CREATE TABLE
	IF NOT EXISTS playlist_items (
		item_id INTEGER PRIMARY KEY AUTOINCREMENT,
		playlist_id INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		note TEXT,
		added_at datetime NOT NULL,
		UNIQUE (playlist_id, song_id),
		FOREIGN KEY (playlist_id) REFERENCES playlists (playlist_id),
		FOREIGN KEY (song_id) REFERENCES songs (song_id)
	);

CREATE TABLE
	IF NOT EXISTS follows (
		follower_id INTEGER NOT NULL,
		following_id INTEGER NOT NULL,
		target_type TEXT NOT NULL CHECK (target_type IN ('user', 'artist', 'playlist')),
		created_at TEXT NOT NULL,
		PRIMARY KEY (follower_id, following_id, target_type),
		FOREIGN KEY (follower_id) REFERENCES users (user_id)
	);

CREATE TABLE
	IF NOT EXISTS likes (
		user_id INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, song_id),
		FOREIGN KEY (user_id) REFERENCES users (user_id),
		FOREIGN KEY (song_id) REFERENCES songs (song_id)
	);

CREATE TABLE
	IF NOT EXISTS play_history (
		history_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		played_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users (user_id),
		FOREIGN KEY (song_id) REFERENCES songs (song_id)
	);

CREATE TABLE
	IF NOT EXISTS charts (
		chart_type TEXT NOT NULL,
		year INTEGER NOT NULL,
		week INTEGER NOT NULL,
		rank INTEGER NOT NULL,
		song_id INTEGER NOT NULL,
		week_start_date TEXT NOT NULL,
		week_end_date TEXT NOT NULL,
		PRIMARY KEY (chart_type, year, week, rank),
		FOREIGN KEY (song_id) REFERENCES songs (song_id)
	);

COMMIT;
`
