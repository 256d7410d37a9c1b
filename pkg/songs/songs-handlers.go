package songs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/sirupsen/logrus"
)

const defaultHistoryLimit = 50

func RegisterHandlers(engine rest.Engine, sr SongRepository, ar auth.Repository, tm *auth.TokenManager, logger logrus.FieldLogger) {
	var authenticated = auth.Auth(tm, ar)

	engine.Get("/songs", searchSongs(sr, logger))
	engine.Post("/songs/:songId/like", toggleLike(sr, logger), authenticated)
	engine.Post("/songs/:songId/plays", recordPlay(sr, logger), authenticated)
	engine.Get("/likes", listLikedSongs(sr, logger), authenticated)
	engine.Get("/history", listRecentPlays(sr, logger), authenticated)
}

func songId(request *http.Request) int64 {
	id, err := strconv.ParseInt(rest.GetParam(request, "songId"), 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// searchSongs handles the GET "/songs?q=" route; a blank query returns an
// empty result set rather than the whole catalogue.
func searchSongs(sr SongRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var query = request.URL.Query().Get("q")
		if query == "" {
			JSON.Ok(writer, make([]SongSummary, 0))
			return
		}

		songs, err := sr.SearchSongs(query)
		if err != nil {
			logger.WithError(err).Error("error searching songs")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, songs)
	}
}

// toggleLike handles the POST "/songs/:songId/like" route.
func toggleLike(sr SongRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var id = songId(request)
		if id == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed song identifier")
			return
		}

		liked, err := sr.ToggleLike(auth.GetUserId(request), id, ntime.Now())
		switch {
		case err == nil:
			JSON.Ok(writer, ToggleLikeResponse{Liked: liked})
		case errors.Is(err, ErrSongNotFound):
			JSON.NotFound(writer, "No such song")
		default:
			logger.WithError(err).Error("error toggling song like")
			JSON.InternalServerError(writer)
		}
	}
}

// recordPlay handles the POST "/songs/:songId/plays" route.
func recordPlay(sr SongRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var id = songId(request)
		if id == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed song identifier")
			return
		}

		err := sr.RecordPlay(auth.GetUserId(request), id, ntime.Now())
		switch {
		case err == nil:
			JSON.CreatedWithMessage(writer, "Play recorded")
		case errors.Is(err, ErrSongNotFound):
			JSON.NotFound(writer, "No such song")
		default:
			logger.WithError(err).Error("error recording play")
			JSON.InternalServerError(writer)
		}
	}
}

// listLikedSongs handles the GET "/likes" route.
func listLikedSongs(sr SongRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		liked, err := sr.ListLikedSongs(auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error listing liked songs")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, liked)
	}
}

// listRecentPlays handles the GET "/history?limit=" route.
func listRecentPlays(sr SongRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var limit = defaultHistoryLimit
		if parsed, err := strconv.Atoi(request.URL.Query().Get("limit")); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}

		plays, err := sr.ListRecentPlays(auth.GetUserId(request), limit)
		if err != nil {
			logger.WithError(err).Error("error listing play history")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, plays)
	}
}
