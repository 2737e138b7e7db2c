package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	// Registered decoders for the formats comics are published in.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/nfnt/resize"

	"github.com/five82/xkcdterm/internal/comic"
	"github.com/five82/xkcdterm/internal/termcap"
)

// Options control how an image is sized in the terminal.
type Options struct {
	ScaleUp bool
	// Width is an explicit pixel width; zero means automatic.
	Width int
	// Name is the base name used for the temporary file of the viewer path.
	Name string
}

// Renderer draws images inline or hands them to an external viewer.
type Renderer struct {
	Out       io.Writer
	Opener    Opener
	TempDir   string
	TermWidth func(ctx context.Context) int
	Logger    *slog.Logger
}

// Render displays img using the given capability. Every failure is returned
// as a *comic.RenderError.
func (r *Renderer) Render(ctx context.Context, img []byte, capability termcap.Capability, opts Options) error {
	if capability == termcap.None {
		return r.openExternal(ctx, img, opts)
	}

	decoded, format, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return &comic.RenderError{Op: "decode", Err: err}
	}

	termWidth := 0
	if r.TermWidth != nil {
		termWidth = r.TermWidth(ctx)
	}
	bounds := decoded.Bounds()
	ow, oh := bounds.Dx(), bounds.Dy()
	tw := TargetWidth(ow, termWidth, opts)
	w, h := ow, oh
	if tw != ow {
		w, h = ScaleFit(tw, 0, ow, oh, true, true)
	}
	r.logger().Debug("render image",
		"capability", capability,
		"format", format,
		"native", fmt.Sprintf("%dx%d", ow, oh),
		"terminal_width", termWidth,
		"target", fmt.Sprintf("%dx%d", w, h),
	)

	scaled := decoded
	resized := w != ow || h != oh
	if resized {
		if w <= 0 || h <= 0 {
			return &comic.RenderError{Op: "resize", Err: fmt.Errorf("invalid target size %dx%d", w, h)}
		}
		scaled = resize.Resize(uint(w), uint(h), decoded, resize.Lanczos3)
	}

	out := r.Out
	if out == nil {
		out = os.Stdout
	}

	switch capability {
	case termcap.Kitty, termcap.ITerm:
		payload := img
		if resized || format != "png" {
			payload, err = encodePNG(scaled)
			if err != nil {
				return &comic.RenderError{Op: "encode", Err: err}
			}
		}
		if capability == termcap.Kitty {
			err = WriteKitty(out, payload)
		} else {
			err = WriteITerm(out, payload, scaled.Bounds().Dx())
		}
	case termcap.Sixel:
		err = WriteSixel(out, scaled)
	default:
		return &comic.RenderError{Op: "encode", Err: fmt.Errorf("unsupported capability %v", capability)}
	}
	if err != nil {
		return &comic.RenderError{Op: "write", Err: err}
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return &comic.RenderError{Op: "write", Err: err}
	}
	return nil
}

// openExternal writes the image to a temporary file and launches the viewer.
// The file is left in place since viewers usually read it after the opener
// command has returned.
func (r *Renderer) openExternal(ctx context.Context, img []byte, opts Options) error {
	if r.Opener == nil {
		return &comic.RenderError{Op: "open", Err: fmt.Errorf("no external viewer configured")}
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return &comic.RenderError{Op: "decode", Err: err}
	}

	dir, err := os.MkdirTemp(r.TempDir, "xkcd-")
	if err != nil {
		return &comic.RenderError{Op: "tempfile", Err: err}
	}
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		name = "comic"
	}
	path := filepath.Join(dir, filepath.Base(name)+"."+format)
	if err := os.WriteFile(path, img, 0o600); err != nil {
		return &comic.RenderError{Op: "tempfile", Err: err}
	}

	r.logger().Debug("opening external viewer", "path", path)
	if err := r.Opener.Open(ctx, path); err != nil {
		return &comic.RenderError{Op: "open", Err: err}
	}
	return nil
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
