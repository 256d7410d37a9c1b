package follows

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/DBP-2025-2/music-app-sub000/pkg/users"
	"github.com/sirupsen/logrus"
)

func RegisterHandlers(engine rest.Engine, fr FollowRepository, ur users.UserRepository, ar auth.Repository, tm *auth.TokenManager, logger logrus.FieldLogger) {
	var authenticated = auth.Auth(tm, ar)

	engine.Post("/follows", followTarget(fr, ur, logger), authenticated)
	engine.Delete("/follows", unfollowTarget(fr, logger), authenticated)
	engine.Get("/follows/list", listFollows(fr, logger), authenticated)
	engine.Get("/follows/search", searchTargets(fr, logger), authenticated)
	engine.Get("/follows/recommendations", recommendTargets(fr, logger), authenticated)
}

// followTarget handles the POST "/follows" route; the target arrives as a
// human facing identifier, a nickname or an artist name, and gets resolved to
// a numeric id before the edge is stored.
func followTarget(fr FollowRepository, ur users.UserRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[FollowData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var followerId = auth.GetUserId(request)

		var followingId int64
		switch data.TargetType {
		case TargetUser:
			followingId, err = ur.ResolveUserByNickname(data.TargetInput)
		case TargetArtist:
			followingId, err = ur.ResolveArtistByName(data.TargetInput)
		}

		if errors.Is(err, users.ErrNotFound) {
			JSON.NotFound(writer, fmt.Sprintf("No %s matches %q", data.TargetType, data.TargetInput))
			return
		} else if errors.Is(err, users.ErrAmbiguousNickname) {
			JSON.NotFound(writer, fmt.Sprintf("Nickname %q matches multiple users", data.TargetInput))
			return
		} else if err != nil {
			logger.WithError(err).Error("error resolving follow target")
			JSON.InternalServerError(writer)
			return
		}

		err = fr.Follow(followerId, followingId, data.TargetType, ntime.Now())
		switch {
		case err == nil:
			JSON.CreatedWithMessage(writer, fmt.Sprintf("Now following %s %q", data.TargetType, data.TargetInput))
		case errors.Is(err, ErrSelfFollow):
			JSON.BadRequestWithMessage(writer, "Narcissistic request: can't follow oneself")
		case errors.Is(err, ErrAlreadyFollowing):
			JSON.Conflict(writer, fmt.Sprintf("Already following %s %q", data.TargetType, data.TargetInput))
		default:
			logger.WithError(err).Error("error storing follow edge")
			JSON.InternalServerError(writer)
		}
	}
}

// unfollowTarget handles the DELETE "/follows" route; a missing edge yields a
// not found outcome the UI treats as a no-op rather than a failure.
func unfollowTarget(fr FollowRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[UnfollowData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		err = fr.Unfollow(auth.GetUserId(request), data.FollowingId, data.TargetType)
		switch {
		case err == nil:
			JSON.OkWithMessage(writer, fmt.Sprintf("No longer following %s %d", data.TargetType, data.FollowingId))
		case errors.Is(err, ErrNotFollowing):
			JSON.NotFound(writer, fmt.Sprintf("Not following %s %d", data.TargetType, data.FollowingId))
		default:
			logger.WithError(err).Error("error removing follow edge")
			JSON.InternalServerError(writer)
		}
	}
}

// listFollows handles the GET "/follows/list" route.
func listFollows(fr FollowRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		entries, err := fr.ListFollows(auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error listing follows")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, FollowListResponse{Count: len(entries), Follows: entries})
	}
}

// searchTargets handles the GET "/follows/search?q=" route.
func searchTargets(fr FollowRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var query = strings.TrimSpace(request.URL.Query().Get("q"))
		if query == "" {
			JSON.Ok(writer, make([]TargetMatch, 0))
			return
		}

		matches, err := fr.SearchTargets(query)
		if err != nil {
			logger.WithError(err).Error("error searching follow targets")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, matches)
	}
}

// recommendTargets handles the GET "/follows/recommendations" route.
func recommendTargets(fr FollowRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := fr.RecommendationCandidates(auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error fetching recommendation candidates")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, data)
	}
}
