package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/respond"
)

const greeting = "Bookmarks Server!"

func Root(_ deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(greeting))
	}
}

// NotFound answers unknown routes with the JSON error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = respond.Error(w, http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
