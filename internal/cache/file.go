package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/five82/xkcdterm/internal/comic"
)

// stampLayout is a naive UTC timestamp with microseconds, the form other
// xkcd-cli tools sharing the cache file write and parse.
const stampLayout = "2006-01-02 15:04:05.000000"

// readLayouts are tried in order. Zoneless values are taken as UTC.
var readLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// cacheFile is the on-disk document.
type cacheFile struct {
	LastUpdated stamp        `json:"last_updated"`
	Comics      []cacheComic `json:"comics"`
}

// cacheComic carries exactly the archive fields: id, href and title.
type cacheComic struct {
	ID    int    `json:"id"`
	Href  string `json:"href"`
	Title string `json:"title"`
}

type stamp struct {
	time.Time
}

func (s stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.UTC().Format(stampLayout))
}

func (s *stamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("last_updated: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			s.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("last_updated: unrecognized time %q", raw)
}

func encodeIndex(idx comic.Index) ([]byte, error) {
	f := cacheFile{
		LastUpdated: stamp{idx.LastUpdated},
		Comics:      make([]cacheComic, 0, len(idx.Comics)),
	}
	for _, c := range idx.Comics {
		f.Comics = append(f.Comics, cacheComic{ID: c.ID, Href: comicHref(c.ID), Title: c.Title})
	}
	return json.Marshal(f)
}

func decodeIndex(data []byte) (comic.Index, error) {
	var f cacheFile
	if err := json.Unmarshal(data, &f); err != nil {
		return comic.Index{}, err
	}
	idx := comic.Index{LastUpdated: f.LastUpdated.Time, Comics: make([]comic.Entry, 0, len(f.Comics))}
	for _, c := range f.Comics {
		id := c.ID
		if id <= 0 {
			n, err := strconv.Atoi(strings.Trim(c.Href, "/"))
			if err != nil || n <= 0 {
				return comic.Index{}, fmt.Errorf("comic %q has no id", c.Title)
			}
			id = n
		}
		idx.Comics = append(idx.Comics, comic.Entry{ID: id, Title: c.Title})
	}
	return idx, nil
}

func comicHref(id int) string {
	return "/" + strconv.Itoa(id) + "/"
}
