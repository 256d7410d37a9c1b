package users

import (
	"errors"
	"net/http"

	"github.com/DBP-2025-2/music-app-sub000/pkg/auth"
	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/sirupsen/logrus"
)

func RegisterHandlers(engine rest.Engine, ur UserRepository, ar auth.Repository, tm *auth.TokenManager, logger logrus.FieldLogger) {
	var authenticated = auth.Auth(tm, ar)

	engine.Get("/profile", getProfile(ur, logger), authenticated)
	engine.Put("/profile/nickname", updateNickname(ur, logger), authenticated)
	engine.Put("/profile/password", updatePassword(ur, ar, logger), authenticated)
}

// getProfile handles the GET "/profile" route.
func getProfile(ur UserRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		profile, err := ur.GetProfile(auth.GetUserId(request))
		if err != nil {
			logger.WithError(err).Error("error fetching profile")
			JSON.InternalServerError(writer)
			return
		}
		JSON.Ok(writer, profile)
	}
}

// updateNickname handles the PUT "/profile/nickname" route.
func updateNickname(ur UserRepository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[UpdateNicknameData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		if err = ur.UpdateNickname(auth.GetUserId(request), data.Nickname); err != nil {
			logger.WithError(err).Error("error updating nickname")
			JSON.InternalServerError(writer)
			return
		}
		JSON.NoContent(writer)
	}
}

// updatePassword handles the PUT "/profile/password" route; the current
// password must be provided and verified before the hash is replaced.
func updatePassword(ur UserRepository, ar auth.Repository, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[UpdatePasswordData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		var userId = auth.GetUserId(request)
		passwordHash, err := ar.GetCredentialsById(userId)
		if errors.Is(err, auth.ErrNotFound) {
			JSON.Unauthorised(writer, "No such user")
			return
		} else if err != nil {
			logger.WithError(err).Error("error fetching credentials for password update")
			JSON.InternalServerError(writer)
			return
		}

		matched, err := auth.ComparePasswordHash(data.CurrentPassword, passwordHash)
		if err != nil {
			logger.WithError(err).Error("error comparing current password")
			JSON.InternalServerError(writer)
			return
		}
		if !matched {
			JSON.Unauthorised(writer, "Current password doesn't match")
			return
		}

		newHash, err := auth.GeneratePasswordHash(data.NewPassword)
		if err != nil {
			logger.WithError(err).Error("error hashing new password")
			JSON.InternalServerError(writer)
			return
		}

		if err = ur.UpdatePassword(userId, newHash); err != nil {
			logger.WithError(err).Error("error updating password")
			JSON.InternalServerError(writer)
			return
		}
		JSON.NoContent(writer)
	}
}
