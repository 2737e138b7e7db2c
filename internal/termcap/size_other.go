//go:build !unix

package termcap

import (
	"fmt"

	"golang.org/x/term"
)

// WindowSize reads the window size of the terminal behind fd. Pixel
// dimensions are not available on this platform.
func WindowSize(fd int) (Size, error) {
	cols, rows, err := term.GetSize(fd)
	if err != nil {
		return Size{}, fmt.Errorf("get size: %w", err)
	}
	return Size{Cols: cols, Rows: rows}, nil
}
