package charts

import (
	"database/sql"
)

// ChartRepository reads published chart rows; ingestion happens out of band,
// so this store never writes.
type ChartRepository interface {
	ListPeriods() ([]ChartPeriod, error)
	ListWeeklyEntries(year, week int, chartType string, viewerId int64) ([]ChartEntry, error)
}

type chartRepository struct {
	Connection *sql.DB
}

func NewRepository(connection *sql.DB) ChartRepository {
	return &chartRepository{connection}
}

func (cr *chartRepository) ListPeriods() ([]ChartPeriod, error) {
	var periods = make([]ChartPeriod, 0)

	rows, err := cr.Connection.Query(`
		SELECT DISTINCT year, week, week_start_date, week_end_date
		FROM charts
		ORDER BY year DESC, week DESC`,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var period ChartPeriod
		if err = rows.Scan(&period.Year, &period.Week, &period.StartDate, &period.EndDate); err != nil {
			return periods, err
		}
		periods = append(periods, period)
	}

	if err = rows.Err(); err != nil {
		return periods, err
	}
	if err = rows.Close(); err != nil {
		return periods, err
	}

	return periods, nil
}

// ListWeeklyEntries joins every ranked song with its title, primary artist and
// album, plus like counts and the viewer's own like state. Anonymous viewers
// pass a zero id, which matches no like.
func (cr *chartRepository) ListWeeklyEntries(year, week int, chartType string, viewerId int64) ([]ChartEntry, error) {
	var entries = make([]ChartEntry, 0)

	rows, err := cr.Connection.Query(`
		SELECT c.rank, c.song_id, s.title, coalesce(a.name, ''), coalesce(al.title, ''),
			(SELECT count(*) FROM likes WHERE song_id = c.song_id) AS total_likes,
			EXISTS (SELECT TRUE FROM likes WHERE user_id = ? AND song_id = c.song_id) AS user_liked
		FROM charts c
		JOIN songs s ON s.song_id = c.song_id
		LEFT JOIN song_artists sa ON sa.song_id = s.song_id AND sa.display_order = 1
		LEFT JOIN artists a ON a.artist_id = sa.artist_id
		LEFT JOIN albums al ON al.album_id = s.album_id
		WHERE c.year = ? AND c.week = ? AND c.chart_type = ?
		ORDER BY c.rank ASC`,
		viewerId, year, week, chartType,
	)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		var entry ChartEntry
		if err = rows.Scan(
			&entry.Rank, &entry.SongId, &entry.Title, &entry.Artist, &entry.Album,
			&entry.TotalLikes, &entry.UserLiked,
		); err != nil {
			return entries, err
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
