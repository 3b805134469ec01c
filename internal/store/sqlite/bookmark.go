package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
)

const bookmarkColumns = `id, title, url, description, rating`

// Store is the relational implementation of store.Bookmarks.
type Store struct {
	db *sql.DB
}

var _ store.Bookmarks = (*Store)(nil)

// NewStore wraps an open database. The caller owns db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookmark(row rowScanner) (domain.Bookmark, error) {
	var b domain.Bookmark
	err := row.Scan(&b.ID, &b.Title, &b.URL, &b.Desc, &b.Rating)
	return b, err
}

// List returns all bookmarks ordered by id.
func (s *Store) List(ctx context.Context) ([]domain.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks ORDER BY id`)
	if err != nil {
		return nil, store.Wrap("list", err)
	}
	defer rows.Close()

	bookmarks := make([]domain.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, store.Wrap("list", err)
		}
		bookmarks = append(bookmarks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("list", err)
	}

	return bookmarks, nil
}

// Get returns the bookmark with the given id, or nil if there is none.
func (s *Store) Get(ctx context.Context, id int64) (*domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookmarkColumns+` FROM bookmarks WHERE id = ?`, id)
	b, err := scanBookmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, store.Wrap("get", err)
	}
	return &b, nil
}

// Insert stores a new bookmark and returns the stored row.
func (s *Store) Insert(ctx context.Context, nb domain.NewBookmark) (domain.Bookmark, error) {
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO bookmarks (title, url, description, rating) VALUES (?, ?, ?, ?)
		 RETURNING `+bookmarkColumns,
		nb.Title, nb.URL, nb.Desc, nb.Rating)
	b, err := scanBookmark(row)
	if err != nil {
		return domain.Bookmark{}, store.Wrap("insert", err)
	}
	return b, nil
}

// Update applies the non-nil fields of p. An empty patch touches nothing.
func (s *Store) Update(ctx context.Context, id int64, p domain.Patch) (int64, error) {
	if p.IsEmpty() {
		return 0, nil
	}

	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *p.Title)
	}
	if p.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *p.URL)
	}
	if p.Desc != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Desc)
	}
	if p.Rating != nil {
		sets = append(sets, "rating = ?")
		args = append(args, *p.Rating)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE bookmarks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return 0, store.Wrap("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Wrap("update", err)
	}
	return n, nil
}

// Delete removes the bookmark with the given id.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return 0, store.Wrap("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, store.Wrap("delete", err)
	}
	return n, nil
}

// Count returns the number of stored bookmarks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks`).Scan(&n); err != nil {
		return 0, store.Wrap("count", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return store.Wrap("ping", s.db.PingContext(ctx))
}
