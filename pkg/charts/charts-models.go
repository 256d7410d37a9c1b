package charts

// ChartPeriod identifies one published chart week; dates are ISO, inclusive.
type ChartPeriod struct {
	Year      int    `json:"year"`
	Week      int    `json:"week"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// ChartEntry is one ranked song; UserLiked is false for anonymous viewers.
type ChartEntry struct {
	Rank       int    `json:"rank"`
	SongId     int64  `json:"songId"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	TotalLikes int    `json:"totalLikes"`
	UserLiked  bool   `json:"userLiked"`
}

type WeeklyChartResponse struct {
	Year      int          `json:"year"`
	Week      int          `json:"week"`
	ChartType string       `json:"chartType"`
	Entries   []ChartEntry `json:"entries"`
}
