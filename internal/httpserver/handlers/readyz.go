package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
)

const readyzTimeout = 2 * time.Second

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type readyzResponse struct {
	Ready      bool                       `json:"ready"`
	Components map[string]componentStatus `json:"components"`
}

// Readyz pings the database and, when configured, the redis cache.
// Any failing component turns the response into a 503.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		resp := readyzResponse{Ready: true, Components: map[string]componentStatus{}}

		check := func(name string, ping func(context.Context) error) {
			if err := ping(ctx); err != nil {
				d.Logger.Warn("readiness check failed",
					logger.String("component", name),
					logger.Error(err))
				resp.Ready = false
				resp.Components[name] = componentStatus{Status: "down", Message: err.Error()}
				return
			}
			resp.Components[name] = componentStatus{Status: "up"}
		}

		check("database", d.Store.Ping)
		if d.RedisClient != nil {
			check("redis", func(ctx context.Context) error {
				return d.RedisClient.Ping(ctx).Err()
			})
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Cache-Control", "no-store")
		_ = respond.JSON(w, status, resp)
	}
}
