package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.RateLimitBurst,
			RefillPerIPPerMin: d.RateLimitPerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
		}, d.Logger))
		r.Use(mw.BearerAuth(d.APIToken, d.Logger))

		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetBookmark(d))
			r.Patch("/", handlers.UpdateBookmark(d))
			r.Delete("/", handlers.DeleteBookmark(d))
		})
	})
}
