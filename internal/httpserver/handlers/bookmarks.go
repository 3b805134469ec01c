package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/respond"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/sanitize"
)

const (
	msgNotFound    = "Bookmark does not exist"
	msgServerError = "server error"

	maxBodyBytes = 1 << 20
)

// ListBookmarks responds with every stored bookmark, sanitized.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(d, r)

		bookmarks, err := d.Store.List(r.Context())
		if err != nil {
			serverError(w, log, "failed to list bookmarks", err)
			return
		}

		write(w, log, http.StatusOK, sanitize.Bookmarks(bookmarks))
	}
}

// GetBookmark responds with a single sanitized bookmark or 404.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(d, r)

		b, ok := lookup(w, r, d, log)
		if !ok {
			return
		}

		write(w, log, http.StatusOK, sanitize.Bookmark(*b))
	}
}

// CreateBookmark validates the body, inserts it and responds 201 with a
// Location header pointing at the new record.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(d, r)

		var payload domain.CreatePayload
		if !decode(w, r, log, &payload) {
			return
		}

		nb, err := domain.ValidateCreate(payload)
		if err != nil {
			badRequest(w, log, err)
			return
		}

		b, err := d.Store.Insert(r.Context(), nb)
		if err != nil {
			serverError(w, log, "failed to create bookmark", err)
			return
		}

		log.Info("bookmark created", logger.Int64("id", b.ID))

		w.Header().Set("Location", strings.TrimSuffix(r.URL.Path, "/")+"/"+strconv.FormatInt(b.ID, 10))
		write(w, log, http.StatusCreated, sanitize.Bookmark(b))
	}
}

// UpdateBookmark applies a partial update and responds 204.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(d, r)

		b, ok := lookup(w, r, d, log)
		if !ok {
			return
		}

		var payload domain.UpdatePayload
		if !decode(w, r, log, &payload) {
			return
		}

		patch, err := domain.ValidateUpdate(payload)
		if err != nil {
			badRequest(w, log, err)
			return
		}

		n, err := d.Store.Update(r.Context(), b.ID, patch)
		if err != nil {
			serverError(w, log, "failed to update bookmark", err)
			return
		}
		if n == 0 {
			// deleted between lookup and update
			notFound(w, log, b.ID)
			return
		}

		log.Info("bookmark updated", logger.Int64("id", b.ID))
		respond.NoContent(w)
	}
}

// DeleteBookmark hard-deletes a bookmark and responds 204.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(d, r)

		b, ok := lookup(w, r, d, log)
		if !ok {
			return
		}

		n, err := d.Store.Delete(r.Context(), b.ID)
		if err != nil {
			serverError(w, log, "failed to delete bookmark", err)
			return
		}
		if n == 0 {
			notFound(w, log, b.ID)
			return
		}

		log.Info("bookmark deleted", logger.Int64("id", b.ID))
		respond.NoContent(w)
	}
}

// lookup resolves the {id} URL parameter to a stored bookmark. It writes
// the 404/500 response itself and returns ok=false when the caller must stop.
func lookup(w http.ResponseWriter, r *http.Request, d deps.Deps, log logger.Logger) (*domain.Bookmark, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		log.Warn("bookmark not found", logger.String("id", raw))
		_ = respond.Error(w, http.StatusNotFound, msgNotFound)
		return nil, false
	}

	b, err := d.Store.Get(r.Context(), id)
	if err != nil {
		serverError(w, log, "failed to get bookmark", err)
		return nil, false
	}
	if b == nil {
		notFound(w, log, id)
		return nil, false
	}
	return b, true
}

// decode reads a JSON object body into v. An empty body decodes as {} so
// that validation reports the missing fields.
func decode(w http.ResponseWriter, r *http.Request, log logger.Logger, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("invalid request body", logger.Error(err))
		_ = respond.Error(w, http.StatusBadRequest, domain.ErrMalformedBody().Error())
		return false
	}
	return true
}

func requestLogger(d deps.Deps, r *http.Request) logger.Logger {
	return d.Logger.With(logger.String("request_id", middleware.GetReqID(r.Context())))
}

func write(w http.ResponseWriter, log logger.Logger, status int, v any) {
	if err := respond.JSON(w, status, v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func notFound(w http.ResponseWriter, log logger.Logger, id int64) {
	log.Warn("bookmark not found", logger.Int64("id", id))
	_ = respond.Error(w, http.StatusNotFound, msgNotFound)
}

func badRequest(w http.ResponseWriter, log logger.Logger, err error) {
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		serverError(w, log, "unexpected validation failure", err)
		return
	}
	log.Warn("bookmark rejected", logger.String("reason", verr.Error()))
	_ = respond.Error(w, http.StatusBadRequest, verr.Error())
}

func serverError(w http.ResponseWriter, log logger.Logger, msg string, err error) {
	log.Error(msg, logger.Error(err))
	_ = respond.Error(w, http.StatusInternalServerError, msgServerError)
}
