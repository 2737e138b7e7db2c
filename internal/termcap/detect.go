package termcap

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Capability is the inline image protocol a terminal understands.
type Capability int

const (
	None Capability = iota
	Kitty
	ITerm
	Sixel
)

func (c Capability) String() string {
	switch c {
	case Kitty:
		return "kitty"
	case ITerm:
		return "iterm"
	case Sixel:
		return "sixel"
	default:
		return "none"
	}
}

// ParseCapability maps a user supplied protocol name. "auto" and the empty
// string report ok=false so detection continues.
func ParseCapability(name string) (Capability, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kitty":
		return Kitty, true
	case "iterm", "iterm2":
		return ITerm, true
	case "sixel":
		return Sixel, true
	case "none", "off":
		return None, true
	default:
		return None, false
	}
}

// Inputs is everything the detection decision depends on.
type Inputs struct {
	Override string
	Env      map[string]string
	Probe    *ProbeResult
}

// Detect classifies the terminal. First match wins: explicit override,
// environment signatures, probe reply, then None.
func Detect(in Inputs) Capability {
	if c, ok := ParseCapability(in.Override); ok {
		return c
	}
	if c, ok := fromEnv(in.Env); ok {
		return c
	}
	if in.Probe != nil {
		return in.Probe.Capability()
	}
	return None
}

func fromEnv(env map[string]string) (Capability, bool) {
	term := strings.ToLower(env["TERM"])
	program := env["TERM_PROGRAM"]

	switch {
	case term == "xterm-kitty",
		env["KITTY_WINDOW_ID"] != "",
		strings.EqualFold(program, "ghostty"),
		env["GHOSTTY_RESOURCES_DIR"] != "":
		return Kitty, true
	case program == "iTerm.app",
		env["LC_TERMINAL"] == "iTerm2",
		program == "WezTerm":
		return ITerm, true
	case term == "foot", term == "foot-extra",
		strings.HasPrefix(term, "mlterm"),
		term == "yaft-256color",
		strings.Contains(term, "sixel"):
		return Sixel, true
	}
	return None, false
}

// Prober queries the terminal device directly.
type Prober interface {
	Probe(ctx context.Context, timeout time.Duration) (ProbeResult, error)
}

// DefaultProbeTimeout bounds the wait for terminal query replies.
const DefaultProbeTimeout = 200 * time.Millisecond

// Detector runs Detect against the live process. The probe only runs when the
// override and environment are inconclusive.
type Detector struct {
	Override string
	Env      map[string]string
	Prober   Prober
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Detect never fails; probe errors resolve to None.
func (d Detector) Detect(ctx context.Context) Capability {
	in := Inputs{Override: d.Override, Env: d.Env}
	if in.Env == nil {
		in.Env = EnvSnapshot()
	}
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	if c := Detect(in); c != None || d.Prober == nil || isExplicitNone(d.Override) {
		log.Debug("terminal capability", "capability", c, "source", "override/env")
		return c
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	res, err := d.Prober.Probe(ctx, timeout)
	if err != nil {
		log.Debug("terminal probe failed", "error", err)
		return None
	}
	in.Probe = &res
	c := Detect(in)
	log.Debug("terminal capability", "capability", c, "source", "probe")
	return c
}

func isExplicitNone(override string) bool {
	c, ok := ParseCapability(override)
	return ok && c == None
}

// EnvSnapshot copies the variables detection looks at.
func EnvSnapshot() map[string]string {
	keys := []string{"TERM", "TERM_PROGRAM", "LC_TERMINAL", "KITTY_WINDOW_ID", "GHOSTTY_RESOURCES_DIR"}
	env := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}
