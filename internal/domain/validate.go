package domain

import "fmt"

// ValidationKind classifies a rejected payload.
type ValidationKind int

const (
	// MissingField: a required field is absent, null or empty.
	MissingField ValidationKind = iota + 1
	// RatingOutOfRange: rating is not a whole number in [MinRating, MaxRating].
	RatingOutOfRange
	// EmptyUpdate: a partial update carries no usable field.
	EmptyUpdate
	// MalformedBody: the request body is not a JSON object of the expected shape.
	MalformedBody
)

// ValidationError is a client input defect. Its message is part of the
// public API and is rendered verbatim to clients.
type ValidationError struct {
	Kind  ValidationKind
	Field string // set for MissingField
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("%s is required", e.Field)
	case RatingOutOfRange:
		return fmt.Sprintf("Rating must be between %d and %d (inclusive)", MinRating, MaxRating)
	case EmptyUpdate:
		return "Request body must contain either 'title', 'url', 'desc', or 'rating'"
	case MalformedBody:
		return "Invalid request body"
	default:
		return "invalid bookmark"
	}
}

func missing(field string) error {
	return &ValidationError{Kind: MissingField, Field: field}
}

var (
	errRatingOutOfRange = &ValidationError{Kind: RatingOutOfRange}
	errEmptyUpdate      = &ValidationError{Kind: EmptyUpdate}
	errMalformedBody    = &ValidationError{Kind: MalformedBody}
)

// ErrMalformedBody returns the validation error used for undecodable bodies.
func ErrMalformedBody() error { return errMalformedBody }

// ValidateCreate checks a create payload and normalizes it for insertion.
// Presence is checked in field order (title, url, rating) before the range,
// so the first missing field is the one reported.
func ValidateCreate(p CreatePayload) (NewBookmark, error) {
	if p.Title == nil || *p.Title == "" {
		return NewBookmark{}, missing("title")
	}
	if p.URL == nil || *p.URL == "" {
		return NewBookmark{}, missing("url")
	}
	if p.Rating == nil || p.Rating.blank() {
		return NewBookmark{}, missing("rating")
	}

	rating, err := validRating(p.Rating)
	if err != nil {
		return NewBookmark{}, err
	}

	desc := ""
	if p.Desc != nil {
		desc = *p.Desc
	}

	return NewBookmark{
		Title:  *p.Title,
		URL:    *p.URL,
		Desc:   desc,
		Rating: rating,
	}, nil
}

// ValidateUpdate checks a partial update payload. Every non-null field is
// carried into the patch; the patch must contain at least one truthy value.
// Supplied fields must still satisfy the stored-record invariants.
func ValidateUpdate(p UpdatePayload) (Patch, error) {
	if !nonEmpty(p.Title) && !nonEmpty(p.URL) && !nonEmpty(p.Desc) && !p.Rating.truthy() {
		return Patch{}, errEmptyUpdate
	}

	var patch Patch
	if p.Title != nil {
		if *p.Title == "" {
			return Patch{}, missing("title")
		}
		patch.Title = copyString(p.Title)
	}
	if p.URL != nil {
		if *p.URL == "" {
			return Patch{}, missing("url")
		}
		patch.URL = copyString(p.URL)
	}
	if p.Desc != nil {
		patch.Desc = copyString(p.Desc)
	}
	if p.Rating != nil {
		if p.Rating.blank() {
			return Patch{}, missing("rating")
		}
		rating, err := validRating(p.Rating)
		if err != nil {
			return Patch{}, err
		}
		patch.Rating = &rating
	}

	return patch, nil
}

func validRating(r *RatingInput) (int, error) {
	n, ok := r.Int()
	if !ok || n < MinRating || n > MaxRating {
		return 0, errRatingOutOfRange
	}
	return n, nil
}

func nonEmpty(s *string) bool {
	return s != nil && *s != ""
}

func copyString(s *string) *string {
	v := *s
	return &v
}
