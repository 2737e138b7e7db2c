package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/xkcdterm/internal/app"
	"github.com/five82/xkcdterm/internal/comic"
	"github.com/five82/xkcdterm/internal/config"
	"github.com/five82/xkcdterm/internal/logging"
	"github.com/five82/xkcdterm/internal/ui"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	defer c.close()

	root := newRootCmd(c)
	err := root.ExecuteContext(ctx)
	if err != nil {
		report(c.stderr, err)
	}
	return exitCode(err)
}

// cli carries state shared by the root command and its subcommands.
type cli struct {
	configPath string
	logLevel   string

	stdout io.Writer
	stderr io.Writer

	cfg      config.Config
	app      *app.App
	closeLog io.Closer
}

// usageError marks errors caused by the command line itself.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "xkcd",
		Short:         "Browse xkcd comics in the terminal",
		Long:          "xkcd fetches comics from xkcd.com and shows them inline in kitty, iTerm2 and sixel capable terminals, or in your image viewer otherwise.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(newShowCmd(c), newUpdateCacheCmd(c))
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, ok := ui.LookupTheme(cfg.Theme); !ok {
		return fmt.Errorf("load config: theme %q: want one of %s", cfg.Theme, strings.Join(ui.ThemeNames(), ", "))
	}

	level := c.logLevel
	if strings.TrimSpace(level) == "" {
		level = os.Getenv(logging.EnvLevel)
	}
	if strings.TrimSpace(level) == "" {
		level = cfg.LogLevel
	}
	logger, closer := logging.Init(logging.FromEnv(logging.Options{
		Level:  level,
		File:   cfg.LogFile,
		Output: c.stderr,
	}))
	c.closeLog = closer

	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	a.Out = c.stdout
	c.cfg = cfg
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.closeLog != nil {
		_ = c.closeLog.Close()
	}
}

func newShowCmd(c *cli) *cobra.Command {
	var (
		opts        app.ShowOptions
		scaleUp     bool
		noScaleUp   bool
		useCache    bool
		useGraphics bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one comic, picked by title search unless --latest, --random or --comic-id is given",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if err := checkExclusive(flags.Changed("latest") && opts.Latest, flags.Changed("random") && opts.Random, flags.Changed("comic-id")); err != nil {
				return err
			}
			if flags.Changed("comic-id") && opts.ComicID <= 0 {
				return usagef("--comic-id must be a positive number, got %d", opts.ComicID)
			}
			if opts.Width < 0 {
				return usagef("--width must not be negative, got %d", opts.Width)
			}
			if p := strings.ToLower(strings.TrimSpace(opts.Protocol)); p != "" {
				switch p {
				case "auto", "kitty", "iterm", "sixel", "none":
					opts.Protocol = p
				default:
					return usagef("--protocol must be one of auto, kitty, iterm, sixel, none; got %q", opts.Protocol)
				}
			}
			if flags.Changed("terminal-scale-up") && flags.Changed("no-terminal-scale-up") {
				return usagef("--terminal-scale-up and --no-terminal-scale-up cannot be combined")
			}

			opts.ScaleUp = c.cfg.ScaleUp
			if flags.Changed("terminal-scale-up") {
				opts.ScaleUp = scaleUp
			}
			if noScaleUp {
				opts.ScaleUp = false
			}
			if !useCache {
				opts.NoCache = true
			}
			if !useGraphics {
				opts.NoGraphics = true
			}
			if opts.CachePath != "" {
				path, err := config.ExpandPath(opts.CachePath)
				if err != nil {
					return usagef("--cache-file: %v", err)
				}
				opts.CachePath = path
			}
			return c.app.Show(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.Latest, "latest", false, "show the latest comic without a selection")
	f.BoolVar(&opts.Random, "random", false, "show a random comic")
	f.IntVar(&opts.ComicID, "comic-id", 0, "show the comic with this number")
	f.BoolVar(&useCache, "cache", true, "use the cached comic list when it is fresh")
	f.BoolVar(&opts.NoCache, "no-cache", false, "always fetch the comic list from xkcd.com")
	f.BoolVar(&useGraphics, "terminal-graphics", true, "draw the image in the terminal when supported")
	f.BoolVar(&opts.NoGraphics, "no-terminal-graphics", false, "always open the image in the external viewer")
	f.BoolVar(&scaleUp, "terminal-scale-up", true, "scale the image up to the terminal width (no effect with --width)")
	f.BoolVar(&noScaleUp, "no-terminal-scale-up", false, "keep the image at its native size unless it is wider than the terminal")
	f.IntVar(&opts.Width, "width", 0, "draw the image at exactly this many pixels wide")
	f.StringVar(&opts.Protocol, "protocol", "", "graphics protocol: auto, kitty, iterm, sixel or none (default from config)")
	f.StringVar(&opts.CachePath, "cache-file", "", "path of the comic list cache")
	return cmd
}

func newUpdateCacheCmd(c *cli) *cobra.Command {
	var cachePath string
	cmd := &cobra.Command{
		Use:   "update-cache",
		Short: "Fetch the comic list from xkcd.com and rewrite the cache",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cachePath != "" {
				path, err := config.ExpandPath(cachePath)
				if err != nil {
					return usagef("--cache-file: %v", err)
				}
				cachePath = path
			}
			idx, err := c.app.UpdateCache(cmd.Context(), cachePath)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cache updated (%d comics)\n", idx.Len())
			return err
		},
	}
	cmd.Flags().StringVar(&cachePath, "cache-file", "", "path of the comic list cache")
	return cmd
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

func checkExclusive(latest, random, byID bool) error {
	n := 0
	for _, set := range []bool{latest, random, byID} {
		if set {
			n++
		}
	}
	if n > 1 {
		return usagef("--latest, --random and --comic-id cannot be combined")
	}
	return nil
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue), strings.HasPrefix(err.Error(), "unknown command"):
		return exitUsage
	default:
		return exitError
	}
}

func report(w io.Writer, err error) {
	switch {
	case errors.Is(err, comic.ErrSelectionCancelled):
		fmt.Fprintln(w, "xkcd: selection cancelled")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(w, "xkcd: interrupted")
	case errors.Is(err, comic.ErrNotFound) && !errors.As(err, new(*comic.UnknownIDError)):
		fmt.Fprintf(w, "xkcd: %v\n", err)
		fmt.Fprintln(w, "xkcd: the comic list may be outdated; run 'xkcd update-cache' to refresh it")
	default:
		fmt.Fprintf(w, "xkcd: %v\n", err)
	}
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(w, "Run 'xkcd --help' for usage.")
	}
}
