// Package tui is the Bubble Tea terminal front end for the quiz shooter.
package tui

import "slices"

// History remembers previously entered upload paths, newest last, and
// lets the path field walk through them.
type History struct {
	paths  []string
	limit  int
	cursor int // -1 when not browsing
}

// NewHistory creates a history holding at most limit paths.
func NewHistory(limit int) *History {
	return &History{
		paths:  make([]string, 0, limit),
		limit:  limit,
		cursor: -1,
	}
}

// Push records a path. A path entered again moves to the newest slot
// instead of appearing twice.
func (h *History) Push(path string) {
	if path == "" {
		return
	}
	if i := slices.Index(h.paths, path); i >= 0 {
		h.paths = slices.Delete(h.paths, i, i+1)
	}
	h.paths = append(h.paths, path)
	if len(h.paths) > h.limit {
		h.paths = h.paths[len(h.paths)-h.limit:]
	}
}

// Prev steps to an older path. It stops at the oldest one and reports
// false only when the history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.paths) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.paths) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.paths[h.cursor], true
}

// Next steps to a newer path. Moving past the newest leaves browsing and
// reports false so the caller can clear the field.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.paths) {
		h.cursor = -1
		return "", false
	}
	return h.paths[h.cursor], true
}

// ResetCursor stops browsing.
func (h *History) ResetCursor() {
	h.cursor = -1
}

// Len returns the number of remembered paths.
func (h *History) Len() int {
	return len(h.paths)
}
