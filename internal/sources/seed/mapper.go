package seed

import (
	"fmt"
	"strconv"

	"github.com/MrSnakeDoc/bookmarkd/internal/domain"
)

// Map validates every entry the same way the API validates a create request.
// The first invalid entry fails the whole file.
func Map(file File) ([]domain.NewBookmark, error) {
	out := make([]domain.NewBookmark, 0, len(file.Bookmarks))
	for i, e := range file.Bookmarks {
		payload := domain.CreatePayload{
			Title: &e.Title,
			URL:   &e.URL,
			Desc:  &e.Desc,
		}
		if e.Rating != 0 {
			payload.Rating = domain.NewRatingInput(strconv.Itoa(e.Rating))
		}

		nb, err := domain.ValidateCreate(payload)
		if err != nil {
			return nil, fmt.Errorf("seed entry %d (%q): %w", i, e.Title, err)
		}
		out = append(out, nb)
	}
	return out, nil
}
