package render

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Opener hands a file to the desktop's default application.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// ExecOpener runs an external command with the file path as last argument.
type ExecOpener struct {
	// Command overrides the platform default, e.g. "feh --scale-down".
	Command string
}

// Open runs the opener and waits for it to exit.
func (o ExecOpener) Open(ctx context.Context, path string) error {
	argv := o.argv()
	if len(argv) == 0 {
		return fmt.Errorf("no opener command for %s", runtime.GOOS)
	}
	args := append(argv[1:len(argv):len(argv)], path)
	cmd := exec.CommandContext(ctx, argv[0], args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", argv[0], err, msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

func (o ExecOpener) argv() []string {
	if fields := strings.Fields(o.Command); len(fields) > 0 {
		return fields
	}
	return DefaultOpenCommand(runtime.GOOS)
}

// DefaultOpenCommand returns the "open with default application" command for goos.
func DefaultOpenCommand(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler"}
	default:
		return []string{"xdg-open"}
	}
}
