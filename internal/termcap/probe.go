package termcap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// Terminal queries. Every probe ends with the primary device attributes
// request, which all terminals answer; its reply marks the end of the batch.
const (
	kittyQuery     = "\x1b_Gi=31,s=1,v=1,a=q,t=d,f=24;AAAA\x1b\\"
	itermCellQuery = "\x1b]1337;ReportCellSize\x07"
	cellSizeQuery  = "\x1b[16t"
	da1Query       = "\x1b[c"
)

var (
	da1Reply      = regexp.MustCompile(`\x1b\[\?([0-9;]*)c`)
	cellSizeReply = regexp.MustCompile(`\x1b\[6;([0-9]+);([0-9]+)t`)
	itermReply    = regexp.MustCompile(`\x1b\]1337;ReportCellSize=([0-9.]+);([0-9.]+)(?:;([0-9.]+))?(?:\x07|\x1b\\)`)

	errNotTerminal = errors.New("not a terminal")
)

// ProbeResult is what the terminal answered to the capability queries.
type ProbeResult struct {
	Responded  bool
	Kitty      bool
	ITerm      bool
	Sixel      bool
	CellWidth  int
	CellHeight int
}

// Capability picks the preferred protocol among the ones the terminal
// answered for.
func (r ProbeResult) Capability() Capability {
	switch {
	case r.Kitty:
		return Kitty
	case r.ITerm:
		return ITerm
	case r.Sixel:
		return Sixel
	default:
		return None
	}
}

// ParseProbeReply interprets the raw bytes read back after a probe.
func ParseProbeReply(reply []byte) ProbeResult {
	var res ProbeResult
	if len(reply) == 0 {
		return res
	}
	res.Responded = true

	if bytes.Contains(reply, []byte("\x1b_G")) {
		res.Kitty = true
	}

	if m := itermReply.FindSubmatch(reply); m != nil {
		res.ITerm = true
		h, _ := strconv.ParseFloat(string(m[1]), 64)
		w, _ := strconv.ParseFloat(string(m[2]), 64)
		scale := 1.0
		if len(m[3]) > 0 {
			if f, err := strconv.ParseFloat(string(m[3]), 64); err == nil && f > 0 {
				scale = f
			}
		}
		res.CellHeight = int(math.Round(h * scale))
		res.CellWidth = int(math.Round(w * scale))
	}

	if m := cellSizeReply.FindSubmatch(reply); m != nil {
		h, _ := strconv.Atoi(string(m[1]))
		w, _ := strconv.Atoi(string(m[2]))
		if w > 0 && h > 0 {
			res.CellHeight, res.CellWidth = h, w
		}
	}

	if m := da1Reply.FindSubmatch(reply); m != nil {
		for _, attr := range strings.Split(string(m[1]), ";") {
			if attr == "4" {
				res.Sixel = true
				break
			}
		}
	}
	return res
}

// TTYProber talks to the controlling terminal.
type TTYProber struct {
	// Path defaults to /dev/tty.
	Path string
}

// Probe sends the kitty, iTerm2 and device attribute queries and parses the
// replies. A silent terminal yields an empty result, not an error.
func (p TTYProber) Probe(ctx context.Context, timeout time.Duration) (ProbeResult, error) {
	reply, err := p.Query(ctx, kittyQuery+itermCellQuery+cellSizeQuery, timeout)
	if err != nil {
		return ProbeResult{}, err
	}
	return ParseProbeReply(reply), nil
}

// CellSize asks the terminal for its character cell size in pixels.
func (p TTYProber) CellSize(ctx context.Context, timeout time.Duration) (width, height int, err error) {
	reply, err := p.Query(ctx, cellSizeQuery, timeout)
	if err != nil {
		return 0, 0, err
	}
	res := ParseProbeReply(reply)
	if res.CellWidth <= 0 {
		return 0, 0, fmt.Errorf("terminal did not report cell size")
	}
	return res.CellWidth, res.CellHeight, nil
}

// Query writes query followed by a device attributes request and collects
// the reply until the attributes answer arrives or the timeout expires.
func (p TTYProber) Query(ctx context.Context, query string, timeout time.Duration) ([]byte, error) {
	path := p.Path
	if path == "" {
		path = "/dev/tty"
	}
	tty, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open tty: %w", err)
	}
	defer func() { _ = tty.Close() }()

	// SyscallConn keeps the descriptor non-blocking so read deadlines work.
	raw, err := tty.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("tty conn: %w", err)
	}
	var (
		state  *term.State
		rawErr error
	)
	if err := raw.Control(func(fd uintptr) {
		if !term.IsTerminal(int(fd)) {
			rawErr = errNotTerminal
			return
		}
		state, rawErr = term.MakeRaw(int(fd))
	}); err != nil {
		return nil, fmt.Errorf("tty control: %w", err)
	}
	if rawErr != nil {
		return nil, rawErr
	}
	defer func() {
		_ = raw.Control(func(fd uintptr) { _ = term.Restore(int(fd), state) })
	}()

	if _, err := tty.WriteString(query + da1Query); err != nil {
		return nil, fmt.Errorf("write query: %w", err)
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := tty.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	var out []byte
	buf := make([]byte, 256)
	for {
		n, err := tty.Read(buf)
		out = append(out, buf[:n]...)
		if da1Reply.Match(out) {
			return out, nil
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return out, nil
			}
			return out, fmt.Errorf("read reply: %w", err)
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
	}
}
