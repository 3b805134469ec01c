package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver"
	"github.com/MrSnakeDoc/bookmarkd/internal/httpserver/deps"
	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
	"github.com/MrSnakeDoc/bookmarkd/internal/store/sqlite"
)

const testToken = "test-token"

type errorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	handler http.Handler
	store   *sqlite.Store
}

func setupServer(t *testing.T) *testServer {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.OpenOptions{
		URL: filepath.Join(t.TempDir(), "bookmarks.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := sqlite.NewStore(db)
	return &testServer{handler: newRouter(s), store: s}
}

func newRouter(s store.Bookmarks) http.Handler {
	log := logger.NewNop()
	return httpserver.NewRouter(5*time.Second, log, deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Version:         "test",
		Store:           s,
		APIToken:        testToken,
		RateLimitPerMin: 60,
	})
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Authorization", "Bearer "+testToken)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seed(t *testing.T, nbs ...domain.NewBookmark) []domain.Bookmark {
	t.Helper()

	out := make([]domain.Bookmark, 0, len(nbs))
	for _, nb := range nbs {
		b, err := ts.store.Insert(context.Background(), nb)
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), "body: %s", rec.Body.String())
	return body.Error.Message
}

func sampleBookmarks() []domain.NewBookmark {
	return []domain.NewBookmark{
		{Title: "Sample Bookmark 1", URL: "https://www.sample.org", Desc: "Sample Bookmark description text.", Rating: 4},
		{Title: "Sample Bookmark 2", URL: "https://www.sample.org", Desc: "Sample Bookmark description text.", Rating: 3},
		{Title: "Sample Bookmark 3", URL: "https://www.sample.org", Desc: "Sample Bookmark description text.", Rating: 2},
	}
}

func maliciousBookmark() domain.NewBookmark {
	return domain.NewBookmark{
		Title:  `Naughty naughty very naughty <script>alert("xss");</script>`,
		URL:    `https://naughty.url.com/<script>alert("xss");</script>`,
		Desc:   `Bad image <img src="https://url.to.file.which/does-not.exist" onerror="alert(document.cookie);">. But not <strong>all</strong> bad.`,
		Rating: 1,
	}
}

func assertSanitized(t *testing.T, b domain.Bookmark) {
	t.Helper()
	assert.Equal(t, `Naughty naughty very naughty &lt;script&gt;alert("xss");&lt;/script&gt;`, b.Title)
	assert.Equal(t, `https://naughty.url.com/&lt;script&gt;alert("xss");&lt;/script&gt;`, b.URL)
	assert.Equal(t, `Bad image <img src="https://url.to.file.which/does-not.exist">. But not <strong>all</strong> bad.`, b.Desc)
}

func TestListBookmarks(t *testing.T) {
	t.Run("empty table returns an empty array", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodGet, "/bookmarks", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
	})

	t.Run("returns every bookmark", func(t *testing.T) {
		ts := setupServer(t)
		want := ts.seed(t, sampleBookmarks()...)

		rec := ts.do(t, http.MethodGet, "/bookmarks", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, want, got)
	})

	t.Run("sanitizes every record", func(t *testing.T) {
		ts := setupServer(t)
		ts.seed(t, maliciousBookmark())

		rec := ts.do(t, http.MethodGet, "/bookmarks/", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got []domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assertSanitized(t, got[0])
	})
}

func TestGetBookmark(t *testing.T) {
	t.Run("missing id returns 404", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodGet, "/bookmarks/123456", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark does not exist", decodeError(t, rec))
	})

	t.Run("non numeric id returns 404", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodGet, "/bookmarks/abc", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark does not exist", decodeError(t, rec))
	})

	t.Run("existing id returns the bookmark", func(t *testing.T) {
		ts := setupServer(t)
		seeded := ts.seed(t, sampleBookmarks()...)

		rec := ts.do(t, http.MethodGet, "/bookmarks/2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, seeded[1], got)
	})

	t.Run("malicious content is sanitized", func(t *testing.T) {
		ts := setupServer(t)
		b := ts.seed(t, maliciousBookmark())[0]

		rec := ts.do(t, http.MethodGet, "/bookmarks/1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, b.Rating, got.Rating)
		assertSanitized(t, got)
	})
}

func TestCreateBookmark(t *testing.T) {
	t.Run("creates and returns the new bookmark", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodPost, "/bookmarks",
			`{"title":"Test title","url":"https://www.test.com","desc":"Test description","rating":1}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Positive(t, got.ID)
		assert.Equal(t, "Test title", got.Title)
		assert.Equal(t, "https://www.test.com", got.URL)
		assert.Equal(t, "Test description", got.Desc)
		assert.Equal(t, 1, got.Rating)
		assert.Equal(t, "/bookmarks/1", rec.Header().Get("Location"))

		// the record is retrievable at Location
		get := ts.do(t, http.MethodGet, rec.Header().Get("Location"), "")
		require.Equal(t, http.StatusOK, get.Code)
		var fetched domain.Bookmark
		require.NoError(t, json.Unmarshal(get.Body.Bytes(), &fetched))
		assert.Equal(t, got, fetched)
	})

	t.Run("desc defaults to empty", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodPost, "/bookmarks", `{"title":"t","url":"https://x.org","rating":"5"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "", got.Desc)
		assert.Equal(t, 5, got.Rating)
	})

	t.Run("sanitizes the response", func(t *testing.T) {
		ts := setupServer(t)
		body, err := json.Marshal(map[string]any{
			"title":  maliciousBookmark().Title,
			"url":    maliciousBookmark().URL,
			"desc":   maliciousBookmark().Desc,
			"rating": 1,
		})
		require.NoError(t, err)

		rec := ts.do(t, http.MethodPost, "/bookmarks", string(body))

		require.Equal(t, http.StatusCreated, rec.Code)
		var got domain.Bookmark
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assertSanitized(t, got)

		// stored raw
		stored, err := ts.store.Get(context.Background(), got.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, maliciousBookmark().Title, stored.Title)
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{"url":"https://x.org","rating":1}`, "title is required"},
		{"empty title", `{"title":"","url":"https://x.org","rating":1}`, "title is required"},
		{"missing url", `{"title":"t","rating":1}`, "url is required"},
		{"null url", `{"title":"t","url":null,"rating":1}`, "url is required"},
		{"missing rating", `{"title":"t","url":"https://x.org"}`, "rating is required"},
		{"empty body", ``, "title is required"},
		{"rating zero", `{"title":"t","url":"https://x.org","rating":0}`, "Rating must be between 1 and 5 (inclusive)"},
		{"rating too high", `{"title":"t","url":"https://x.org","rating":6}`, "Rating must be between 1 and 5 (inclusive)"},
		{"rating negative", `{"title":"t","url":"https://x.org","rating":-1}`, "Rating must be between 1 and 5 (inclusive)"},
		{"rating not a number", `{"title":"t","url":"https://x.org","rating":"invalid"}`, "Rating must be between 1 and 5 (inclusive)"},
		{"malformed json", `{"title":`, "Invalid request body"},
		{"non string title", `{"title":5,"url":"https://x.org","rating":1}`, "Invalid request body"},
		{"non string desc", `{"title":"t","url":"https://x.org","desc":true,"rating":1}`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupServer(t)

			rec := ts.do(t, http.MethodPost, "/bookmarks", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec))

			n, err := ts.store.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n, "rejected payload must not reach the store")
		})
	}
}

func TestUpdateBookmark(t *testing.T) {
	t.Run("missing id returns 404", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodPatch, "/bookmarks/123456", `{"title":"x"}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark does not exist", decodeError(t, rec))
	})

	t.Run("updates every supplied field", func(t *testing.T) {
		ts := setupServer(t)
		ts.seed(t, sampleBookmarks()...)

		rec := ts.do(t, http.MethodPatch, "/bookmarks/2",
			`{"title":"updated bookmark title","url":"https://updated-url.com","desc":"updated bookmark description","rating":1}`)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		got := ts.do(t, http.MethodGet, "/bookmarks/2", "")
		var b domain.Bookmark
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &b))
		assert.Equal(t, domain.Bookmark{
			ID:     2,
			Title:  "updated bookmark title",
			URL:    "https://updated-url.com",
			Desc:   "updated bookmark description",
			Rating: 1,
		}, b)
	})

	t.Run("partial update keeps other fields", func(t *testing.T) {
		ts := setupServer(t)
		seeded := ts.seed(t, sampleBookmarks()...)

		rec := ts.do(t, http.MethodPatch, "/bookmarks/2", `{"title":"updated bookmark title","fieldToIgnore":"should not be in GET response"}`)

		require.Equal(t, http.StatusNoContent, rec.Code)

		got := ts.do(t, http.MethodGet, "/bookmarks/2", "")
		assert.NotContains(t, got.Body.String(), "fieldToIgnore")
		var b domain.Bookmark
		require.NoError(t, json.Unmarshal(got.Body.Bytes(), &b))
		want := seeded[1]
		want.Title = "updated bookmark title"
		assert.Equal(t, want, b)
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"irrelevant fields only", `{"irrelevantField":"foo"}`, "Request body must contain either 'title', 'url', 'desc', or 'rating'"},
		{"empty object", `{}`, "Request body must contain either 'title', 'url', 'desc', or 'rating'"},
		{"empty body", ``, "Request body must contain either 'title', 'url', 'desc', or 'rating'"},
		{"rating out of range", `{"rating":9}`, "Rating must be between 1 and 5 (inclusive)"},
		{"malformed json", `[1,2`, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupServer(t)
			seeded := ts.seed(t, sampleBookmarks()...)

			rec := ts.do(t, http.MethodPatch, "/bookmarks/2", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec))

			b, err := ts.store.Get(context.Background(), 2)
			require.NoError(t, err)
			assert.Equal(t, seeded[1], *b)
		})
	}
}

func TestDeleteBookmark(t *testing.T) {
	t.Run("missing id returns 404", func(t *testing.T) {
		ts := setupServer(t)

		rec := ts.do(t, http.MethodDelete, "/bookmarks/123456", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Bookmark does not exist", decodeError(t, rec))
	})

	t.Run("removes the bookmark", func(t *testing.T) {
		ts := setupServer(t)
		seeded := ts.seed(t, sampleBookmarks()...)

		rec := ts.do(t, http.MethodDelete, "/bookmarks/2", "")
		require.Equal(t, http.StatusNoContent, rec.Code)

		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/bookmarks/2", "").Code)
		assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, "/bookmarks/2", "").Code)

		list := ts.do(t, http.MethodGet, "/bookmarks", "")
		var got []domain.Bookmark
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &got))
		assert.Equal(t, []domain.Bookmark{seeded[0], seeded[2]}, got)
	})
}

func TestStoreFailureReturns500(t *testing.T) {
	db, err := sqlite.Open(context.Background(), sqlite.OpenOptions{
		URL: filepath.Join(t.TempDir(), "bookmarks.db"),
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	handler := newRouter(sqlite.NewStore(db))

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/bookmarks", ""},
		{http.MethodGet, "/bookmarks/1", ""},
		{http.MethodPost, "/bookmarks", `{"title":"t","url":"https://x.org","rating":3}`},
		{http.MethodDelete, "/bookmarks/1", ""},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+testToken)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "server error", decodeError(t, rec))
		})
	}
}

func TestAuthorization(t *testing.T) {
	ts := setupServer(t)

	endpoints := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/bookmarks"},
		{http.MethodPost, "/bookmarks"},
		{http.MethodGet, "/bookmarks/1"},
		{http.MethodPatch, "/bookmarks/1"},
		{http.MethodDelete, "/bookmarks/1"},
	}

	for _, ep := range endpoints {
		t.Run("no token "+ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized request", decodeError(t, rec))
		})

		t.Run("bad token "+ep.method+" "+ep.path, func(t *testing.T) {
			req := httptest.NewRequest(ep.method, ep.path, nil)
			req.Header.Set("Authorization", "Bearer nope")
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRoot(t *testing.T) {
	ts := setupServer(t)

	rec := ts.do(t, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bookmarks Server!", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpsEndpoints(t *testing.T) {
	ts := setupServer(t)

	t.Run("healthz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "test", body["version"])
	})

	t.Run("readyz", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Ready      bool `json:"ready"`
			Components map[string]struct {
				Status string `json:"status"`
			} `json:"components"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Ready)
		assert.Equal(t, "up", body.Components["database"].Status)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := ts.do(t, http.MethodGet, "/nope", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Not found", decodeError(t, rec))
	})
}
