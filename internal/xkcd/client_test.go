package xkcd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/xkcdterm/internal/comic"
)

const archiveHTML = `<!DOCTYPE html>
<html><body>
<div id="topContainer"><a href="/about/">About</a></div>
<div id="middleContainer" class="box">
<h1>Comics:</h1>
<a href="/3000/" title="2024-9-30">Latest Thing</a><br/>
<a href="/207/" title="2007-1-1">Dreams</a><br/>
<a href="/1/" title="2006-1-1">  Barrel - Part 1 </a><br/>
<a href="/207/" title="dup">Dreams</a><br/>
<a href="/blag/">not a comic</a>
</div>
</body></html>`

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com/path?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}
}

func TestParseArchive_ExtractsEntriesInOrder(t *testing.T) {
	entries, err := ParseArchive(strings.NewReader(archiveHTML))
	if err != nil {
		t.Fatalf("ParseArchive returned error: %v", err)
	}
	want := []comic.Entry{
		{ID: 3000, Title: "Latest Thing"},
		{ID: 207, Title: "Dreams"},
		{ID: 1, Title: "Barrel - Part 1"},
	}
	if len(entries) != len(want) {
		t.Fatalf("entries = %#v, want %d entries", entries, len(want))
	}
	for i := range want {
		if entries[i] != want[i] {
			t.Fatalf("entries[%d] = %#v, want %#v", i, entries[i], want[i])
		}
	}
}

func TestParseArchive_EmptyFails(t *testing.T) {
	_, err := ParseArchive(strings.NewReader(`<html><body><div id="middleContainer"></div></body></html>`))
	if !errors.Is(err, errArchiveEmpty) {
		t.Fatalf("ParseArchive error = %v, want errArchiveEmpty", err)
	}
}

type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hits == nil {
		h.hits = make(map[string]int)
	}
	h.hits[path]++
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func newTestServer(t *testing.T, hits *hitCounter) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.add(r.URL.Path)
		}
		switch r.URL.Path {
		case "/archive/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(archiveHTML))
		case "/info.0.json":
			_ = json.NewEncoder(w).Encode(infoResponse{Num: 3000, Title: "Latest Thing", Img: server.URL + "/comics/latest.png", Alt: "alt latest"})
		case "/207/info.0.json":
			_ = json.NewEncoder(w).Encode(infoResponse{Num: 207, SafeTitle: "Dreams", Img: "/comics/dreams.png", Alt: "alt dreams"})
		case "/666/info.0.json":
			_, _ = w.Write([]byte("{broken"))
		case "/comics/dreams.png":
			_, _ = w.Write([]byte("PNGDATA"))
		case "/500/info.0.json":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_FetchesEndpoints(t *testing.T) {
	t.Parallel()

	hits := &hitCounter{}
	server := newTestServer(t, hits)
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	entries, err := c.FetchArchive(ctx)
	if err != nil {
		t.Fatalf("FetchArchive returned error: %v", err)
	}
	if len(entries) != 3 || entries[0].ID != 3000 {
		t.Fatalf("FetchArchive = %#v, want 3 entries starting with 3000", entries)
	}

	latest, err := c.FetchLatest(ctx)
	if err != nil {
		t.Fatalf("FetchLatest returned error: %v", err)
	}
	if latest.ID != 3000 || latest.Alt != "alt latest" {
		t.Fatalf("FetchLatest = %#v, want id=3000 with alt", latest)
	}

	dreams, err := c.FetchComic(ctx, 207)
	if err != nil {
		t.Fatalf("FetchComic returned error: %v", err)
	}
	if dreams.ID != 207 || dreams.Title != "Dreams" {
		t.Fatalf("FetchComic = %#v, want id=207 title=Dreams (safe_title fallback)", dreams)
	}

	data, err := c.FetchImage(ctx, dreams.ImageURL)
	if err != nil {
		t.Fatalf("FetchImage returned error: %v", err)
	}
	if string(data) != "PNGDATA" {
		t.Fatalf("FetchImage = %q, want PNGDATA", data)
	}

	for _, path := range []string{"/archive/", "/info.0.json", "/207/info.0.json", "/comics/dreams.png"} {
		if got := hits.get(path); got != 1 {
			t.Fatalf("hits[%s] = %d, want 1", path, got)
		}
	}
}

func TestClient_ErrorsAreClassified(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, nil)
	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()

	if _, err := c.FetchComic(ctx, 404); !errors.Is(err, comic.ErrNotFound) {
		t.Fatalf("FetchComic(404) error = %v, want ErrNotFound", err)
	}
	if _, err := c.FetchComic(ctx, 0); !errors.Is(err, comic.ErrNotFound) {
		t.Fatalf("FetchComic(0) error = %v, want ErrNotFound", err)
	}

	var fe *comic.FetchError
	_, err = c.FetchComic(ctx, 500)
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusInternalServerError {
		t.Fatalf("FetchComic(500) error = %v, want FetchError status 500", err)
	}

	_, err = c.FetchComic(ctx, 666)
	if !errors.As(err, &fe) || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchComic(666) error = %v, want decode FetchError", err)
	}

	_, err = c.FetchImage(ctx, "/missing.png")
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("FetchImage missing error = %v, want FetchError status 404", err)
	}
	if errors.Is(err, comic.ErrNotFound) {
		t.Fatalf("FetchImage missing error should not be ErrNotFound")
	}
}

func TestClient_NetworkFailureIsFetchError(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = c.FetchArchive(context.Background())
	var fe *comic.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("FetchArchive error = %v, want FetchError", err)
	}
}

func TestClient_OversizedImageIsFetchError(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("x", 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	c.maxImage = 64
	data, err := c.FetchImage(context.Background(), "/exact.png")
	if err != nil || len(data) != 64 {
		t.Fatalf("FetchImage at limit = %d bytes, %v; want 64 bytes", len(data), err)
	}

	c.maxImage = 63
	_, err = c.FetchImage(context.Background(), "/big.png")
	var fe *comic.FetchError
	if !errors.As(err, &fe) || !strings.Contains(err.Error(), "image exceeds 63 bytes") {
		t.Fatalf("FetchImage oversized error = %v, want FetchError about size", err)
	}
}
