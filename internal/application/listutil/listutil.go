// Package listutil parses the paging parameters shared by list endpoints.
package listutil

import (
	"errors"
	"net/url"
	"strconv"
)

// MaxLimit caps the rows a single list request may ask for.
const MaxLimit = 1000

var (
	ErrInvalidLimit  = errors.New("limit must be an integer between 1 and 1000")
	ErrInvalidOffset = errors.New("offset must be a non-negative integer")
)

// Window selects a slice of a list. A zero Limit means every row from Offset on.
type Window struct {
	Limit  int
	Offset int
}

// ParseWindow extracts limit and offset from URL query values.
// PRE: none
// POST: 0 <= Limit <= MaxLimit and Offset >= 0, or an error naming the bad parameter
func ParseWindow(q url.Values) (Window, error) {
	var w Window
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxLimit {
			return Window{}, ErrInvalidLimit
		}
		w.Limit = n
	}
	if s := q.Get("offset"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Window{}, ErrInvalidOffset
		}
		w.Offset = n
	}
	return w, nil
}

// IsZero reports whether w selects the whole list.
func (w Window) IsZero() bool {
	return w == Window{}
}

// Slice returns the rows of items inside w. The result shares items' backing array.
// POST: len(result) <= w.Limit when w.Limit > 0
func Slice[T any](items []T, w Window) []T {
	if w.Offset >= len(items) {
		return items[:0]
	}
	items = items[w.Offset:]
	if w.Limit > 0 && w.Limit < len(items) {
		items = items[:w.Limit]
	}
	return items
}
