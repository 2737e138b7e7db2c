package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/xkcdterm/internal/comic"
)

type fakeArchive struct {
	entries []comic.Entry
	err     error
	calls   int
}

func (f *fakeArchive) FetchArchive(context.Context) ([]comic.Entry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(t *testing.T) (*Store, *fakeArchive, *clock) {
	t.Helper()
	archive := &fakeArchive{entries: []comic.Entry{{ID: 2, Title: "Two"}, {ID: 1, Title: "One"}}}
	clk := &clock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "xkcd-cli", "cache.json")
	return NewStore(path, archive, WithClock(clk.now)), archive, clk
}

func TestGet_AbsentCacheFetchesOnceAndPersists(t *testing.T) {
	s, archive, clk := newTestStore(t)

	idx, err := s.Get(context.Background(), true)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if archive.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", archive.calls)
	}
	if idx.Len() != 2 || !idx.LastUpdated.Equal(clk.t) {
		t.Fatalf("index = %#v, want 2 comics stamped %v", idx, clk.t)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Len() != 2 || !loaded.LastUpdated.Equal(clk.t) {
		t.Fatalf("persisted index = %#v, want 2 comics stamped %v", loaded, clk.t)
	}
}

func TestGet_FreshCacheSkipsNetwork(t *testing.T) {
	s, archive, clk := newTestStore(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	archive.calls = 0

	for _, age := range []time.Duration{0, time.Hour, 23*time.Hour + 59*time.Minute} {
		clk.t = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Add(age)
		if _, err := s.Get(context.Background(), true); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if archive.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0 for fresh cache", archive.calls)
	}
}

func TestGet_StaleCacheRefreshesOnce(t *testing.T) {
	s, archive, clk := newTestStore(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	archive.calls = 0
	clk.t = clk.t.Add(25 * time.Hour)

	idx, err := s.Get(context.Background(), true)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if archive.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1 for stale cache", archive.calls)
	}
	if !idx.LastUpdated.Equal(clk.t) {
		t.Fatalf("LastUpdated = %v, want %v", idx.LastUpdated, clk.t)
	}

	// The refreshed copy is fresh again.
	if _, err := s.Get(context.Background(), true); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if archive.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1 after refresh", archive.calls)
	}
}

func TestGet_NoCacheAlwaysFetches(t *testing.T) {
	s, archive, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Get(context.Background(), false); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if archive.calls != 3 {
		t.Fatalf("fetch calls = %d, want 3", archive.calls)
	}
}

func TestRefresh_AlwaysFetches(t *testing.T) {
	s, archive, _ := newTestStore(t)
	for i := 0; i < 2; i++ {
		if _, err := s.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh returned error: %v", err)
		}
	}
	if archive.calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", archive.calls)
	}
}

func TestGet_CorruptCacheTreatedAsAbsent(t *testing.T) {
	s, archive, _ := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := s.Load(); !errors.Is(err, ErrCacheCorrupt) {
		t.Fatalf("Load error = %v, want ErrCacheCorrupt", err)
	}

	idx, err := s.Get(context.Background(), true)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if archive.calls != 1 || idx.Len() != 2 {
		t.Fatalf("calls=%d len=%d, want refresh with 2 comics", archive.calls, idx.Len())
	}
}

func TestGet_MissingTimestampIsCorrupt(t *testing.T) {
	s, _, _ := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte(`{"comics":[{"id":1,"title":"One"}]}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Load(); !errors.Is(err, ErrCacheCorrupt) {
		t.Fatalf("Load error = %v, want ErrCacheCorrupt", err)
	}
}

func TestGet_FetchFailureFallsBackToStaleCopy(t *testing.T) {
	s, archive, clk := newTestStore(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	stamp := clk.t
	clk.t = clk.t.Add(48 * time.Hour)
	archive.err = &comic.FetchError{URL: "https://xkcd.com/archive/", StatusCode: 502}

	idx, err := s.Get(context.Background(), true)
	if err != nil {
		t.Fatalf("Get returned error: %v, want stale copy", err)
	}
	if !idx.LastUpdated.Equal(stamp) || idx.Len() != 2 {
		t.Fatalf("index = %#v, want stale copy from %v", idx, stamp)
	}

	if _, err := s.Get(context.Background(), false); err == nil {
		t.Fatalf("Get without cache returned nil error, want fetch error")
	}
}

func TestGet_FetchFailureWithoutCacheFails(t *testing.T) {
	s, archive, _ := newTestStore(t)
	archive.err = &comic.FetchError{URL: "https://xkcd.com/archive/", Err: errors.New("dial tcp: refused")}

	_, err := s.Get(context.Background(), true)
	var fe *comic.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("Get error = %v, want FetchError", err)
	}
	if _, statErr := os.Stat(s.Path()); !os.IsNotExist(statErr) {
		t.Fatalf("cache file should not exist after failed fetch, stat err = %v", statErr)
	}
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "cache.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("cache dir = %s, want only cache.json", strings.Join(names, ","))
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"last_updated"`) || !strings.Contains(string(data), `"title":"Two"`) {
		t.Fatalf("cache file = %s, want last_updated and comics", data)
	}
}

func TestLoad_SharedCacheFormat(t *testing.T) {
	s, archive, _ := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	doc := `{"last_updated": "2026-10-18 09:30:00.123456", "comics": [{"id": 207, "href": "/207/", "title": "Dreams"}, {"id": 0, "href": "/1/", "title": "Barrel - Part 1"}]}`
	if err := os.WriteFile(s.Path(), []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	idx, err := s.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := time.Date(2026, 10, 18, 9, 30, 0, 123456000, time.UTC)
	if !idx.LastUpdated.Equal(want) {
		t.Fatalf("LastUpdated = %v, want %v", idx.LastUpdated, want)
	}
	if idx.Len() != 2 || idx.Comics[0].ID != 207 || idx.Comics[0].Title != "Dreams" {
		t.Fatalf("comics = %#v, want Dreams first", idx.Comics)
	}
	if idx.Comics[1].ID != 1 {
		t.Fatalf("id from href = %d, want 1", idx.Comics[1].ID)
	}
	if archive.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0", archive.calls)
	}
}

func TestLoad_AcceptsTimestampLayouts(t *testing.T) {
	want := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	for _, raw := range []string{
		"2026-10-18 09:30:00",
		"2026-10-18T09:30:00",
		"2026-10-18T09:30:00Z",
		"2026-10-18T11:30:00+02:00",
		"2026-10-18 09:30:00.000000",
	} {
		t.Run(raw, func(t *testing.T) {
			s, _, _ := newTestStore(t)
			if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
				t.Fatalf("MkdirAll: %v", err)
			}
			doc := `{"last_updated": "` + raw + `", "comics": []}`
			if err := os.WriteFile(s.Path(), []byte(doc), 0o644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			idx, err := s.Load()
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if !idx.LastUpdated.Equal(want) {
				t.Fatalf("LastUpdated = %v, want %v", idx.LastUpdated, want)
			}
		})
	}
}

func TestSave_WritesSharedCacheFormat(t *testing.T) {
	s, _, _ := newTestStore(t)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := `{"last_updated":"2025-06-01 12:00:00.000000","comics":[{"id":2,"href":"/2/","title":"Two"},{"id":1,"href":"/1/","title":"One"}]}`
	if string(data) != want {
		t.Fatalf("cache file = %s, want %s", data, want)
	}
}
