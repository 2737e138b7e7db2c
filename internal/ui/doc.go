// Package ui holds the interactive parts of the CLI: the fuzzy comic picker
// built on Bubble Tea and the list bubble, the color themes it uses, and the
// caption printed around a rendered comic.
package ui
