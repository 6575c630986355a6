package engine

// FeedSize is the number of recent activity lines kept.
const FeedSize = 8

// Feed is a ring of recent activity lines, oldest first.
type Feed struct {
	entries []string
	max     int
}

// NewFeed creates a feed holding at most max lines.
func NewFeed(max int) *Feed {
	return &Feed{entries: make([]string, 0, max), max: max}
}

// Push appends lines, dropping the oldest beyond the limit.
func (f *Feed) Push(lines ...string) {
	f.entries = append(f.entries, lines...)
	if over := len(f.entries) - f.max; over > 0 {
		f.entries = append(f.entries[:0:0], f.entries[over:]...)
	}
}

// Lines returns a copy of the feed, oldest first.
func (f *Feed) Lines() []string {
	return append([]string(nil), f.entries...)
}

// Clear empties the feed.
func (f *Feed) Clear() {
	f.entries = f.entries[:0]
}
