package songs

import (
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
)

// SongSummary carries the denormalised names lists render; Artist is the
// primary credited artist.
type SongSummary struct {
	SongId int64  `json:"songId"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

type LikedSong struct {
	SongSummary
	LikedAt ntime.NTime `json:"likedAt"`
}

type PlayEntry struct {
	SongSummary
	PlayedAt ntime.NTime `json:"playedAt"`
}

type ToggleLikeResponse struct {
	Liked bool `json:"liked"`
}
