package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/utils"
)

// AllowOnlyCIDRS restricts the ops endpoints to the given IPs/CIDRs. An empty
// list disables filtering. trustProxy resolves the client from proxy headers.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("AllowOnlyCIDRS: initialized with %d rules, trustProxy=%v", len(allowed), trustProxy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("ip rejected",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path))
				_ = respond.Error(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
