package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/five82/xkcdterm/internal/cache"
	"github.com/five82/xkcdterm/internal/comic"
	"github.com/five82/xkcdterm/internal/config"
	"github.com/five82/xkcdterm/internal/render"
	"github.com/five82/xkcdterm/internal/termcap"
	"github.com/five82/xkcdterm/internal/ui"
	"github.com/five82/xkcdterm/internal/xkcd"
)

// App holds the collaborators of one CLI invocation. New fills every field
// with the real implementation; tests replace them.
type App struct {
	Config  config.Config
	Fetcher xkcd.Fetcher
	Picker  comic.Picker
	Opener  render.Opener
	Prober  termcap.Prober
	// Env is the environment used for terminal detection; nil reads the
	// process environment.
	Env       map[string]string
	TermWidth func(ctx context.Context) int
	Out       io.Writer
	TempDir   string
	Clock     func() time.Time
	Rand      *rand.Rand
	Logger    *slog.Logger
}

// ShowOptions are the per-invocation settings of the show command. Zero
// values defer to the configuration.
type ShowOptions struct {
	Latest     bool
	Random     bool
	ComicID    int
	NoCache    bool
	NoGraphics bool
	ScaleUp    bool
	Width      int
	Protocol   string
	CachePath  string
}

// New wires the production collaborators for cfg.
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	client, err := xkcd.NewClient(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("init xkcd client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	prober := &termcap.SessionProber{Inner: termcap.TTYProber{}}
	probeTimeout := cfg.ProbeTimeout
	return &App{
		Config:  cfg,
		Fetcher: client,
		Picker:  &ui.Picker{ThemeName: cfg.Theme},
		Opener:  render.ExecOpener{Command: cfg.Opener},
		Prober:  prober,
		TermWidth: func(ctx context.Context) int {
			return termcap.PixelWidth(ctx, int(os.Stdout.Fd()), prober, probeTimeout)
		},
		Out:    os.Stdout,
		Logger: logger,
	}, nil
}

// Show selects one comic, prints its title, renders the image and prints
// the alt text.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	capability := a.detect(ctx, opts)

	sel := comic.ModeFromFlags(opts.Latest, opts.Random, opts.ComicID)
	sel.AllowCache = !opts.NoCache
	a.logger().Debug("selecting comic", "mode", sel.Mode, "id", sel.ID, "allow_cache", sel.AllowCache)

	selector := &comic.Selector{
		Metadata: a.Fetcher,
		Index:    a.store(opts.CachePath),
		Picker:   a.Picker,
		Rand:     a.Rand,
	}
	entry, err := selector.Select(ctx, sel)
	if err != nil {
		return err
	}

	out := a.out()
	styles := ui.GetTheme(a.Config.Theme).Styles()
	if _, err := fmt.Fprintln(out, ui.Heading(entry, styles)); err != nil {
		return fmt.Errorf("write title: %w", err)
	}

	img, err := a.Fetcher.FetchImage(ctx, entry.ImageURL)
	if err != nil {
		return err
	}

	renderer := &render.Renderer{
		Out:       out,
		Opener:    a.Opener,
		TempDir:   a.TempDir,
		TermWidth: a.TermWidth,
		Logger:    a.logger(),
	}
	renderOpts := render.Options{
		ScaleUp: opts.ScaleUp,
		Width:   opts.Width,
		Name:    strconv.Itoa(entry.ID),
	}
	if err := renderer.Render(ctx, img, capability, renderOpts); err != nil {
		return err
	}

	if alt := ui.AltText(entry); alt != "" {
		if _, err := fmt.Fprintln(out, alt); err != nil {
			return fmt.Errorf("write alt text: %w", err)
		}
	}
	return nil
}

// UpdateCache refreshes the comic index unconditionally.
func (a *App) UpdateCache(ctx context.Context, cachePath string) (comic.Index, error) {
	return a.store(cachePath).Refresh(ctx)
}

func (a *App) detect(ctx context.Context, opts ShowOptions) termcap.Capability {
	if opts.NoGraphics {
		return termcap.None
	}
	override := strings.TrimSpace(opts.Protocol)
	if override == "" {
		override = a.Config.Protocol
	}
	d := termcap.Detector{
		Override: override,
		Env:      a.Env,
		Prober:   a.Prober,
		Timeout:  a.Config.ProbeTimeout,
		Logger:   a.logger(),
	}
	return d.Detect(ctx)
}

func (a *App) store(override string) *cache.Store {
	path := strings.TrimSpace(override)
	if path == "" {
		path = a.Config.CachePath
	}
	if path == "" {
		path = config.DefaultCachePath()
	}
	return cache.NewStore(path, a.Fetcher,
		cache.WithTTL(a.Config.CacheTTL),
		cache.WithClock(a.Clock),
		cache.WithLogger(a.logger()),
	)
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
