package rest

import (
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"
)

// RequestLogging tags every request with a unique UUID and attaches a
// request-scoped logger, so that related entries can be correlated.
func (e *Engine) RequestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqUUID, err := uuid.NewV4()
			if err != nil {
				e.baseLogger.WithError(err).Error("can't generate a request UUID")
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			e.baseLogger.WithFields(logrus.Fields{
				"reqid":     reqUUID.String(),
				"remote-ip": r.RemoteAddr,
			}).Debugf("%s %s", r.Method, r.URL.Path)

			next.ServeHTTP(w, r)
		})
	}
}
