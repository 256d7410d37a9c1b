package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const userIdKey contextKey = "userId"

type userChecker interface {
	ExistsUserId(userId int64) bool
}

// Auth gates a route behind a valid bearer token, storing the authenticated
// user's id in the request context for handlers downstream.
func Auth(tm *TokenManager, ur userChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {

			userId, err := parseBearer(tm, request)
			if err != nil {
				reportUnauthorised(w)
				return
			}

			// verify the user still exists; tokens outlive deleted accounts
			if ur.ExistsUserId(userId) {
				next.ServeHTTP(w, request.WithContext(context.WithValue(request.Context(), userIdKey, userId)))
			} else {
				reportUnauthorised(w)
			}
		})
	}
}

// OptionalAuth identifies the viewer when a valid token is present and lets
// anonymous requests through; public reads annotate follow and like state only
// for identified viewers.
func OptionalAuth(tm *TokenManager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, request *http.Request) {
			if userId, err := parseBearer(tm, request); err == nil {
				request = request.WithContext(context.WithValue(request.Context(), userIdKey, userId))
			}
			next.ServeHTTP(w, request)
		})
	}
}

// parseBearer extracts and validates the token found in the authorization header.
func parseBearer(tm *TokenManager, request *http.Request) (int64, error) {
	var header = request.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return tm.Validate(header[7:])
	}
	return 0, errors.New("bad authorization header")
}

// GetUserId returns the authenticated user's id, or zero for anonymous
// requests; routes behind Auth can rely on a positive id.
func GetUserId(request *http.Request) int64 {
	if id, ok := request.Context().Value(userIdKey).(int64); ok {
		return id
	}
	return 0
}

func reportUnauthorised(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
}
