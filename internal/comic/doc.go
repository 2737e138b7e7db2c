// Package comic holds the comic entry and index types, the error kinds shared
// by the other packages, and the selector that turns a selection mode into
// one comic.
package comic
