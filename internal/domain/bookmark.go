package domain

// Bookmark is a persisted bookmark record.
//
// Values handed out by the store are copies; mutating one never touches
// stored state.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the store on insert and never reused.
	ID int64 `json:"id"`

	// ─────────────────────────────
	// Content (raw, as supplied by clients)
	// ─────────────────────────────

	// Title is never empty once stored.
	Title string `json:"title"`

	// URL is never empty once stored. Its format is not enforced.
	URL string `json:"url"`

	// Desc is free text, "" when the client omitted it.
	Desc string `json:"desc"`

	// Rating always lies within [MinRating, MaxRating].
	Rating int `json:"rating"`
}

const (
	MinRating = 1
	MaxRating = 5
)

// NewBookmark is a validated bookmark ready for insertion. It has no ID yet.
type NewBookmark struct {
	Title  string
	URL    string
	Desc   string
	Rating int
}

// WithID returns the stored form of n.
func (n NewBookmark) WithID(id int64) Bookmark {
	return Bookmark{
		ID:     id,
		Title:  n.Title,
		URL:    n.URL,
		Desc:   n.Desc,
		Rating: n.Rating,
	}
}

// Patch is a validated partial update. Nil fields are left untouched.
type Patch struct {
	Title  *string
	URL    *string
	Desc   *string
	Rating *int
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.Desc == nil && p.Rating == nil
}
