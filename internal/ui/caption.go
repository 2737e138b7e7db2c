package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/five82/xkcdterm/internal/comic"
)

// CaptionWidth is the column limit for the title and alt text.
const CaptionWidth = 80

// Heading renders "<title> (<id>)" in bold, wrapped to CaptionWidth.
func Heading(e comic.Entry, styles Styles) string {
	return styles.Heading.Render(wrap(fmt.Sprintf("%s (%d)", e.Title, e.ID)))
}

// AltText renders the hover text wrapped to CaptionWidth. It is empty when
// the comic has none.
func AltText(e comic.Entry) string {
	return wrap(e.Alt)
}

func wrap(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return ansi.Wrap(s, CaptionWidth, "")
}
