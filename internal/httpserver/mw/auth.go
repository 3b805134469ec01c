package mw

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
)

const msgUnauthorized = "Unauthorized request"

// BearerAuth rejects requests whose Authorization header does not carry
// "Bearer <token>". An empty token rejects everything.
func BearerAuth(token string, log logger.Logger) func(http.Handler) http.Handler {
	want := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || len(want) == 0 || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				log.Warn("unauthorized request",
					logger.String("path", r.URL.Path),
					logger.String("method", r.Method))
				_ = respond.Error(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
