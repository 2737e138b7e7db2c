package comic

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
)

// Mode identifies how a comic is chosen.
type Mode int

const (
	ModeByTitle Mode = iota
	ModeByID
	ModeLatest
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModeByID:
		return "by-id"
	case ModeLatest:
		return "latest"
	case ModeRandom:
		return "random"
	default:
		return "by-title"
	}
}

// Selection is the user's intent for a single show invocation.
type Selection struct {
	Mode       Mode
	ID         int
	AllowCache bool
}

// ModeFromFlags resolves the show flags into a mode. Latest wins over random,
// random over an explicit id. Zero or negative ids mean "not set".
func ModeFromFlags(latest, random bool, id int) Selection {
	switch {
	case latest:
		return Selection{Mode: ModeLatest}
	case random:
		return Selection{Mode: ModeRandom}
	case id > 0:
		return Selection{Mode: ModeByID, ID: id}
	default:
		return Selection{Mode: ModeByTitle}
	}
}

// MetadataFetcher fetches single-comic metadata from the remote.
type MetadataFetcher interface {
	FetchComic(ctx context.Context, id int) (Entry, error)
	FetchLatest(ctx context.Context) (Entry, error)
}

// IndexSource provides the archive index, honouring the cache policy.
type IndexSource interface {
	Get(ctx context.Context, allowCache bool) (Index, error)
}

// Picker lets the user choose one entry. Implementations return
// ErrSelectionCancelled when the user aborts.
type Picker interface {
	Pick(ctx context.Context, entries []Entry) (Entry, error)
}

// Selector resolves a Selection to exactly one fully populated Entry.
type Selector struct {
	Metadata MetadataFetcher
	Index    IndexSource
	Picker   Picker
	Rand     *rand.Rand
}

// Select returns the comic matching sel.
func (s *Selector) Select(ctx context.Context, sel Selection) (Entry, error) {
	if s == nil || s.Metadata == nil {
		return Entry{}, fmt.Errorf("selector is not configured")
	}
	switch sel.Mode {
	case ModeByID:
		entry, err := s.byID(ctx, sel.ID)
		if errors.Is(err, ErrNotFound) {
			return Entry{}, &UnknownIDError{ID: sel.ID}
		}
		return entry, err
	case ModeLatest:
		return s.Metadata.FetchLatest(ctx)
	case ModeRandom:
		return s.random(ctx, sel.AllowCache)
	default:
		return s.byTitle(ctx, sel.AllowCache)
	}
}

func (s *Selector) byID(ctx context.Context, id int) (Entry, error) {
	if id <= 0 {
		return Entry{}, fmt.Errorf("comic %d: %w", id, ErrNotFound)
	}
	entry, err := s.Metadata.FetchComic(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Entry{}, fmt.Errorf("comic %d: %w", id, ErrNotFound)
		}
		return Entry{}, err
	}
	return entry, nil
}

func (s *Selector) random(ctx context.Context, allowCache bool) (Entry, error) {
	idx, err := s.index(ctx, allowCache)
	if err != nil {
		return Entry{}, err
	}
	if idx.Len() == 0 {
		return Entry{}, fmt.Errorf("archive is empty: %w", ErrNotFound)
	}
	pick := idx.Comics[s.intN(idx.Len())]
	return s.resolve(ctx, pick)
}

func (s *Selector) byTitle(ctx context.Context, allowCache bool) (Entry, error) {
	if s.Picker == nil {
		return Entry{}, fmt.Errorf("no picker available for title search")
	}
	idx, err := s.index(ctx, allowCache)
	if err != nil {
		return Entry{}, err
	}
	if idx.Len() == 0 {
		return Entry{}, fmt.Errorf("archive is empty: %w", ErrNotFound)
	}
	chosen, err := s.Picker.Pick(ctx, idx.Comics)
	if err != nil {
		return Entry{}, err
	}
	return s.resolve(ctx, chosen)
}

func (s *Selector) index(ctx context.Context, allowCache bool) (Index, error) {
	if s.Index == nil {
		return Index{}, fmt.Errorf("no index source configured")
	}
	return s.Index.Get(ctx, allowCache)
}

// resolve fills in the image URL for an entry picked from the index. The
// archive title is kept since it is what the user saw.
func (s *Selector) resolve(ctx context.Context, pick Entry) (Entry, error) {
	if pick.ImageURL != "" {
		return pick, nil
	}
	full, err := s.byID(ctx, pick.ID)
	if err != nil {
		return Entry{}, err
	}
	if pick.Title != "" {
		full.Title = pick.Title
	}
	return full, nil
}

func (s *Selector) intN(n int) int {
	if s.Rand != nil {
		return s.Rand.IntN(n)
	}
	return rand.IntN(n)
}
