package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CreatePayload is the decoded body of a create request.
// Pointer fields are nil when the key is absent or null.
type CreatePayload struct {
	Title  *string      `json:"title"`
	URL    *string      `json:"url"`
	Desc   *string      `json:"desc"`
	Rating *RatingInput `json:"rating"`
}

// UpdatePayload is the decoded body of a partial update request.
// Unknown keys are ignored.
type UpdatePayload struct {
	Title  *string      `json:"title"`
	URL    *string      `json:"url"`
	Desc   *string      `json:"desc"`
	Rating *RatingInput `json:"rating"`
}

// RatingInput holds a client-supplied rating before validation.
// Clients send either a JSON number (4) or a numeric string ("4").
type RatingInput struct {
	raw string
}

// NewRatingInput builds a RatingInput from its textual form.
func NewRatingInput(raw string) *RatingInput {
	return &RatingInput{raw: strings.TrimSpace(raw)}
}

// RatingOf is a shorthand for an integer rating input.
func RatingOf(n int) *RatingInput {
	return &RatingInput{raw: strconv.Itoa(n)}
}

func (r *RatingInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		r.raw = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	r.raw = n.String()
	return nil
}

// blank reports whether the rating was sent as an empty string.
func (r *RatingInput) blank() bool {
	return r.raw == ""
}

// Int returns the rating as an integer. ok is false when the input is not
// a whole number.
func (r *RatingInput) Int() (n int, ok bool) {
	f, err := strconv.ParseFloat(r.raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// truthy mirrors how the API has always decided whether a rating was
// "given" in a partial update: blank or zero counts as not given.
func (r *RatingInput) truthy() bool {
	if r == nil || r.blank() {
		return false
	}
	f, err := strconv.ParseFloat(r.raw, 64)
	return err != nil || f != 0
}
