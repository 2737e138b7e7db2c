package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/xkcdterm/internal/comic"
)

// DefaultTTL is the freshness window of a cached index.
const DefaultTTL = 24 * time.Hour

var (
	// ErrCacheMissing reports that no cache file exists yet.
	ErrCacheMissing = errors.New("cache file does not exist")
	// ErrCacheCorrupt reports a cache file that cannot be decoded.
	ErrCacheCorrupt = errors.New("cache file is corrupt")
)

// ArchiveFetcher downloads the full archive listing.
type ArchiveFetcher interface {
	FetchArchive(ctx context.Context) ([]comic.Entry, error)
}

// Store owns the on-disk comic index. It is the only code that reads or
// writes the cache file. There is no file locking: two processes refreshing
// at the same time both write, and the last rename wins.
type Store struct {
	path    string
	fetcher ArchiveFetcher
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTL overrides the freshness window. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore builds a Store for the cache file at path.
func NewStore(path string, fetcher ArchiveFetcher, opts ...Option) *Store {
	s := &Store{
		path:    path,
		fetcher: fetcher,
		ttl:     DefaultTTL,
		now:     time.Now,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the comic index. When allowCache is set and the cached copy is
// younger than the TTL it is returned without network access. Otherwise the
// archive is fetched once and persisted. If that fetch fails and a readable
// cached copy exists (and allowCache is set), the stale copy is returned.
func (s *Store) Get(ctx context.Context, allowCache bool) (comic.Index, error) {
	if !allowCache {
		return s.Refresh(ctx)
	}

	cached, err := s.Load()
	switch {
	case err == nil && cached.FreshAt(s.now(), s.ttl):
		s.log.Debug("cache hit", "path", s.path, "comics", cached.Len(), "last_updated", cached.LastUpdated)
		return cached, nil
	case err == nil:
		s.log.Debug("cache stale", "path", s.path, "last_updated", cached.LastUpdated)
	case errors.Is(err, ErrCacheMissing):
		s.log.Debug("cache missing", "path", s.path)
	default:
		s.log.Warn("cache unreadable, refreshing", "path", s.path, "error", err)
	}

	fresh, ferr := s.Refresh(ctx)
	if ferr != nil {
		if err == nil {
			s.log.Warn("archive refresh failed, using stale cache", "error", ferr, "last_updated", cached.LastUpdated)
			return cached, nil
		}
		return comic.Index{}, ferr
	}
	return fresh, nil
}

// Refresh unconditionally fetches the archive and overwrites the cache file.
func (s *Store) Refresh(ctx context.Context) (comic.Index, error) {
	if s.fetcher == nil {
		return comic.Index{}, fmt.Errorf("cache has no archive fetcher")
	}
	stamp := s.now().UTC().Truncate(time.Microsecond)
	entries, err := s.fetcher.FetchArchive(ctx)
	if err != nil {
		return comic.Index{}, err
	}
	idx := comic.Index{LastUpdated: stamp, Comics: entries}
	if err := s.Save(idx); err != nil {
		return comic.Index{}, err
	}
	s.log.Info("cache refreshed", "path", s.path, "comics", idx.Len())
	return idx, nil
}

// Load reads the cache file.
func (s *Store) Load() (comic.Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return comic.Index{}, ErrCacheMissing
		}
		return comic.Index{}, fmt.Errorf("read cache: %w", err)
	}

	idx, err := decodeIndex(data)
	if err != nil {
		return comic.Index{}, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	if idx.LastUpdated.IsZero() {
		return comic.Index{}, fmt.Errorf("%w: missing last_updated", ErrCacheCorrupt)
	}
	return idx, nil
}

// Save replaces the cache file with idx.
func (s *Store) Save(idx comic.Index) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := encodeIndex(idx)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create temp cache: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod cache: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
