package xkcd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/five82/xkcdterm/internal/comic"
)

const archiveSelector = "#middleContainer a"

var errArchiveEmpty = errors.New("archive page lists no comics")

// ParseArchive extracts comic ids and titles from the archive page. Links are
// returned in page order, which is newest first.
func ParseArchive(r io.Reader) ([]comic.Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}

	var entries []comic.Entry
	seen := make(map[int]struct{})
	doc.Find(archiveSelector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		id, ok := idFromHref(href)
		if !ok {
			return
		}
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		entries = append(entries, comic.Entry{
			ID:    id,
			Title: strings.TrimSpace(s.Text()),
		})
	})
	if len(entries) == 0 {
		return nil, errArchiveEmpty
	}
	return entries, nil
}

// idFromHref turns "/1234/" into 1234.
func idFromHref(href string) (int, bool) {
	trimmed := strings.Trim(strings.TrimSpace(href), "/")
	if trimmed == "" {
		return 0, false
	}
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
