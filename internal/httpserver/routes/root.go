package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/mw"
)

func init() { Register(registerRoot) }

func registerRoot(r chi.Router, d deps.Deps) {
	r.With(mw.BearerAuth(d.APIToken, d.Logger)).Get("/", handlers.Root(d))
}
