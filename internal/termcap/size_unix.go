//go:build unix

package termcap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// WindowSize reads the window size of the terminal behind fd.
func WindowSize(fd int) (Size, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, fmt.Errorf("get winsize: %w", err)
	}
	return Size{
		Cols:        int(ws.Col),
		Rows:        int(ws.Row),
		PixelWidth:  int(ws.Xpixel),
		PixelHeight: int(ws.Ypixel),
	}, nil
}
