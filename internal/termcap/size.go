package termcap

import (
	"context"
	"time"
)

// Size describes the terminal window.
type Size struct {
	Cols        int
	Rows        int
	PixelWidth  int
	PixelHeight int
}

// CellSizer reports the pixel size of one character cell.
type CellSizer interface {
	CellSize(ctx context.Context, timeout time.Duration) (width, height int, err error)
}

// PixelWidth returns the usable image width in pixels, or 0 when unknown.
// The window size ioctl is preferred; terminals that leave its pixel fields
// empty are asked for their cell size, which is multiplied by the columns.
func PixelWidth(ctx context.Context, fd int, cells CellSizer, timeout time.Duration) int {
	size, err := WindowSize(fd)
	if err != nil || size.Cols <= 0 {
		return 0
	}
	if size.PixelWidth > 0 {
		return size.PixelWidth
	}
	if cells == nil {
		return 0
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	w, _, err := cells.CellSize(ctx, timeout)
	if err != nil || w <= 0 {
		return 0
	}
	return size.Cols * w
}

// TerminalQuerier combines the two terminal query kinds.
type TerminalQuerier interface {
	Prober
	CellSizer
}

// SessionProber remembers the last probe reply, so the cell size reported
// during detection is reused instead of querying the terminal again.
type SessionProber struct {
	Inner TerminalQuerier
	last  *ProbeResult
}

// Probe forwards to Inner and keeps a successful result.
func (p *SessionProber) Probe(ctx context.Context, timeout time.Duration) (ProbeResult, error) {
	res, err := p.Inner.Probe(ctx, timeout)
	if err == nil {
		p.last = &res
	}
	return res, err
}

// CellSize answers from the last probe when it carried a cell size.
func (p *SessionProber) CellSize(ctx context.Context, timeout time.Duration) (width, height int, err error) {
	if p.last != nil && p.last.CellWidth > 0 {
		return p.last.CellWidth, p.last.CellHeight, nil
	}
	return p.Inner.CellSize(ctx, timeout)
}
