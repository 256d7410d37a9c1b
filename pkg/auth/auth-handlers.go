package auth

import (
	"errors"
	"net/http"

	JSON "github.com/DBP-2025-2/music-app-sub000/pkg/json-utilities"
	"github.com/DBP-2025-2/music-app-sub000/pkg/ntime"
	"github.com/DBP-2025-2/music-app-sub000/pkg/rest"
	"github.com/sirupsen/logrus"
)

func RegisterHandlers(engine rest.Engine, ar Repository, tm *TokenManager, logger logrus.FieldLogger) {
	engine.Post("/auth/register", registerUser(ar, tm, logger))
	engine.Post("/auth/login", loginUser(ar, tm, logger))
}

// registerUser handles the POST "/auth/register" route.
func registerUser(ar Repository, tm *TokenManager, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[RegistrationData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		passwordHash, err := GeneratePasswordHash(data.Password)
		if err != nil {
			logger.WithError(err).Error("error hashing password on registration")
			JSON.InternalServerError(writer)
			return
		}

		user, err := ar.Register(data, passwordHash)
		if errors.Is(err, ErrEmailTaken) {
			JSON.Conflict(writer, "An account with this email already exists")
			return
		} else if err != nil {
			logger.WithError(err).Error("error registering user")
			JSON.InternalServerError(writer)
			return
		}

		token, err := tm.Grant(user.Id)
		if err != nil {
			logger.WithError(err).Error("error granting token on registration")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Created(writer, SessionData{Token: token, User: *user})
	}
}

// loginUser handles the POST "/auth/login" route.
func loginUser(ar Repository, tm *TokenManager, logger logrus.FieldLogger) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {

		data, err := JSON.DecodeValidate[LoginData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		userId, passwordHash, err := ar.GetCredentials(data.Email)
		if errors.Is(err, ErrNotFound) {
			// deny information about registered emails
			JSON.Unauthorised(writer, "Invalid email or password")
			return
		} else if err != nil {
			logger.WithError(err).Error("error fetching credentials")
			JSON.InternalServerError(writer)
			return
		}

		matched, err := ComparePasswordHash(data.Password, passwordHash)
		if err != nil {
			logger.WithError(err).Error("error comparing password hash")
			JSON.InternalServerError(writer)
			return
		}
		if !matched {
			JSON.Unauthorised(writer, "Invalid email or password")
			return
		}

		if err = ar.UpdateLastLogin(userId, ntime.Now()); err != nil {
			logger.WithError(err).Error("error updating last login")
			JSON.InternalServerError(writer)
			return
		}

		user, err := ar.GetUserById(userId)
		if err != nil {
			logger.WithError(err).Error("error fetching user on login")
			JSON.InternalServerError(writer)
			return
		}

		token, err := tm.Grant(userId)
		if err != nil {
			logger.WithError(err).Error("error granting token on login")
			JSON.InternalServerError(writer)
			return
		}

		JSON.Ok(writer, SessionData{Token: token, User: user})
	}
}
