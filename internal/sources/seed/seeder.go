package seed

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/bookmarkd/internal/logger"
	"github.com/MrSnakeDoc/bookmarkd/internal/store"
)

// Seeder fills an empty bookmarks table from a seed file.
type Seeder struct {
	loader *Loader
	store  store.Bookmarks
	logger logger.Logger
}

// NewSeeder creates a seeder for the given file
func NewSeeder(filePath string, s store.Bookmarks, log logger.Logger) *Seeder {
	return &Seeder{
		loader: NewLoader(filePath),
		store:  s,
		logger: log,
	}
}

// Run inserts the seed bookmarks when the table is empty and returns how
// many were inserted. A non-empty table is left untouched.
func (s *Seeder) Run(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookmarks: %w", err)
	}
	if n > 0 {
		s.logger.Info("bookmarks table not empty, skipping seed",
			logger.Int64("existing", n))
		return 0, nil
	}

	file, err := s.loader.Load()
	if err != nil {
		return 0, err
	}
	bookmarks, err := Map(file)
	if err != nil {
		return 0, err
	}

	for i, nb := range bookmarks {
		b, err := s.store.Insert(ctx, nb)
		if err != nil {
			return i, fmt.Errorf("failed to insert seed bookmark %q: %w", nb.Title, err)
		}
		s.logger.Debug("seeded bookmark",
			logger.Int64("id", b.ID),
			logger.String("title", b.Title))
	}

	s.logger.Info("bookmarks seeded",
		logger.Int("count", len(bookmarks)),
		logger.String("file", s.loader.filePath))
	return len(bookmarks), nil
}
