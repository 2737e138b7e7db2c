package comic

import (
	"strconv"
	"time"
)

// Entry describes a single comic. Entries read from the archive listing only
// carry ID and Title; ImageURL and Alt are filled by a metadata fetch.
type Entry struct {
	ID       int
	Title    string
	ImageURL string
	Alt      string
}

// Label is the line shown in the interactive picker.
func (e Entry) Label() string {
	return strconv.Itoa(e.ID) + ": " + e.Title
}

// Index is the full archive listing, newest first, with the time it was fetched.
type Index struct {
	LastUpdated time.Time
	Comics      []Entry
}

// Len returns the number of known comics.
func (i Index) Len() int {
	return len(i.Comics)
}

// Lookup returns the entry with the given id.
func (i Index) Lookup(id int) (Entry, bool) {
	for _, c := range i.Comics {
		if c.ID == id {
			return c, true
		}
	}
	return Entry{}, false
}

// IDs returns every known comic id in listing order.
func (i Index) IDs() []int {
	ids := make([]int, 0, len(i.Comics))
	for _, c := range i.Comics {
		ids = append(ids, c.ID)
	}
	return ids
}

// FreshAt reports whether the index is younger than ttl at now.
func (i Index) FreshAt(now time.Time, ttl time.Duration) bool {
	if i.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(i.LastUpdated) < ttl
}
