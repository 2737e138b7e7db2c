package xkcd

import (
	"strings"

	"github.com/five82/xkcdterm/internal/comic"
)

// infoResponse mirrors the payload returned by /info.0.json and /N/info.0.json.
type infoResponse struct {
	Num        int    `json:"num"`
	Title      string `json:"title"`
	SafeTitle  string `json:"safe_title"`
	Img        string `json:"img"`
	Alt        string `json:"alt"`
	Transcript string `json:"transcript"`
	Year       string `json:"year"`
	Month      string `json:"month"`
	Day        string `json:"day"`
}

// Entry converts the payload into a comic entry.
func (r infoResponse) Entry() comic.Entry {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = strings.TrimSpace(r.SafeTitle)
	}
	return comic.Entry{
		ID:       r.Num,
		Title:    title,
		ImageURL: strings.TrimSpace(r.Img),
		Alt:      r.Alt,
	}
}
