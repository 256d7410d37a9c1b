package playlists

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	"github.com/DBP-2025-2/music-app-sub000/pkg/follows"
	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/sirupsen/logrus"
)

const defaultPopularLimit = 20

func RegisterHandlers(engine rest.Engine, pr PlaylistRepository, fr follows.FollowRepository, ar auth.Repository, tm *auth.TokenManager, logger logrus.FieldLogger) {
	var authenticated = auth.Auth(tm, ar)
	var optional = auth.OptionalAuth(tm)

	engine.Get("/playlists", listOwnPlaylists(pr, logger), authenticated)
	engine.Post("/playlists", createPlaylist(pr, logger), authenticated)
	engine.Get("/public/playlists", browsePublicPlaylists(pr, logger), optional)
	engine.Get("/users/:userId/playlists", listUserPlaylists(pr, logger), optional)
	engine.Get("/playlists/:playlistId", getPlaylist(pr, logger), optional)
	engine.Put("/playlists/:playlistId", updatePlaylist(pr, logger), authenticated)
	engine.Delete("/playlists/:playlistId", deletePlaylist(pr, logger), authenticated)
	engine.Post("/playlists/:playlistId/items", addPlaylistItem(pr, logger), authenticated)
	engine.Delete("/playlists/:playlistId/items/:itemId", removePlaylistItem(pr, logger), authenticated)
	engine.Post("/playlists/:playlistId/follow", togglePlaylistFollow(pr, fr, logger), authenticated)
}

// pathId parses a numeric route parameter; zero signals a malformed id.
func pathId(request *http.Request, name string) int64 {
	id, err := strconv.ParseInt(rest.GetParam(request, name), 10, 64)
	if err != nil || id < 1 {
		return 0
	}
	return id
}

// listOwnPlaylists handles the GET "/playlists" route, returning the
// authenticated user's playlists, private ones included.
func listOwnPlaylists(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		summaries, err := pr.ListOwn(auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error listing own playlists")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, summaries)
	}
}

// createPlaylist handles the POST "/playlists" route.
func createPlaylist(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[NewPlaylistData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		summary, err := pr.Create(auth.GetUserId(request), data)
		if err != nil {
			logger.WithError(err).Error("error creating playlist")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Created(writer, summary)
	}
}

// browsePublicPlaylists handles the GET "/public/playlists" route. With
// `sort=followers` it ranks by follower count, otherwise it filters by the
// optional `q` substring, newest first.
func browsePublicPlaylists(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var viewerId = auth.GetUserId(request)
		var query = request.URL.Query()

		var summaries []PlaylistSummary
		var err error

		if query.Get("sort") == "followers" {
			var limit = defaultPopularLimit
			if parsed, convErr := strconv.Atoi(query.Get("limit")); convErr == nil && parsed > 0 && parsed <= 100 {
				limit = parsed
			}
			summaries, err = pr.PopularPublic(limit, viewerId)
		} else {
			summaries, err = pr.SearchPublic(query.Get("q"), viewerId)
		}

		if err != nil {
			logger.WithError(err).Error("error browsing public playlists")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, summaries)
	}
}

// listUserPlaylists handles the GET "/users/:userId/playlists" route, exposing
// only the public playlists of the given user.
func listUserPlaylists(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var targetUserId = pathId(request, "userId")
		if targetUserId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed user identifier")
			return
		}

		summaries, err := pr.ListPublicByUser(targetUserId, auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error listing user playlists")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, summaries)
	}
}

// getPlaylist handles the GET "/playlists/:playlistId" route.
func getPlaylist(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		if playlistId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed playlist identifier")
			return
		}

		detail, err := pr.GetDetail(playlistId, auth.GetUserId(request))
		switch {
		case err == nil:
			JSON.Ok(writer, detail)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "No such playlist")
		default:
			logger.WithError(err).Error("error fetching playlist detail")
			JSON.InternalServerError(writer)
		}
	}
}

// updatePlaylist handles the PUT "/playlists/:playlistId" route.
func updatePlaylist(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		if playlistId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed playlist identifier")
			return
		}

		data, err := JSON.DecodeValidate[UpdatePlaylistData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		err = pr.Update(playlistId, auth.GetUserId(request), data)
		switch {
		case err == nil:
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "No such playlist")
		case errors.Is(err, ErrForbidden):
			JSON.Forbidden(writer)
		default:
			logger.WithError(err).Error("error updating playlist")
			JSON.InternalServerError(writer)
		}
	}
}

// deletePlaylist handles the DELETE "/playlists/:playlistId" route.
func deletePlaylist(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		if playlistId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed playlist identifier")
			return
		}

		err := pr.Delete(playlistId, auth.GetUserId(request))
		switch {
		case err == nil:
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "No such playlist")
		case errors.Is(err, ErrForbidden):
			JSON.Forbidden(writer)
		default:
			logger.WithError(err).Error("error deleting playlist")
			JSON.InternalServerError(writer)
		}
	}
}

// addPlaylistItem handles the POST "/playlists/:playlistId/items" route.
func addPlaylistItem(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		if playlistId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed playlist identifier")
			return
		}

		data, err := JSON.DecodeValidate[NewItemData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		item, err := pr.AddItem(playlistId, auth.GetUserId(request), data)
		switch {
		case err == nil:
			JSON.Created(writer, item)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "No such playlist")
		case errors.Is(err, ErrForbidden):
			JSON.Forbidden(writer)
		case errors.Is(err, ErrDuplicateItem):
			JSON.BadRequestWithMessage(writer, "Song already in playlist")
		case errors.Is(err, ErrSongNotFound):
			JSON.NotFound(writer, "No such song")
		default:
			logger.WithError(err).Error("error adding playlist item")
			JSON.InternalServerError(writer)
		}
	}
}

// removePlaylistItem handles the DELETE "/playlists/:playlistId/items/:itemId" route.
func removePlaylistItem(pr PlaylistRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		var itemId = pathId(request, "itemId")
		if playlistId == 0 || itemId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed identifier")
			return
		}

		err := pr.RemoveItem(playlistId, itemId, auth.GetUserId(request))
		switch {
		case err == nil:
			JSON.NoContent(writer)
		case errors.Is(err, ErrNotFound):
			JSON.NotFound(writer, "No such playlist item")
		case errors.Is(err, ErrForbidden):
			JSON.Forbidden(writer)
		default:
			logger.WithError(err).Error("error removing playlist item")
			JSON.InternalServerError(writer)
		}
	}
}

// togglePlaylistFollow handles the POST "/playlists/:playlistId/follow" route.
// The playlist must be public or owned by the requester; the follow edge is
// flipped and the resulting state returned.
func togglePlaylistFollow(pr PlaylistRepository, fr follows.FollowRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var playlistId = pathId(request, "playlistId")
		if playlistId == 0 {
			JSON.BadRequestWithMessage(writer, "Malformed playlist identifier")
			return
		}

		var userId = auth.GetUserId(request)

		ownerId, isPublic, err := pr.GetVisibility(playlistId)
		if errors.Is(err, ErrNotFound) {
			JSON.NotFound(writer, "No such playlist")
			return
		} else if err != nil {
			logger.WithError(err).Error("error checking playlist visibility")
			JSON.InternalServerError(writer)
			return
		}

		// private playlists are invisible to non-owners
		if !isPublic && ownerId != userId {
			JSON.NotFound(writer, "No such playlist")
			return
		}

		followed, err := fr.Toggle(userId, playlistId, follows.TargetPlaylist, ntime.Now())
		if err != nil {
			logger.WithError(err).Error("error toggling playlist follow")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, ToggleFollowResponse{Followed: followed})
	}
}
