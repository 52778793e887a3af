// Package bank loads the General MIDI sample bank the synthesizer renders
// with. The bank is multiple megabytes, so the package keeps one parsed copy
// per process: every caller shares it, and it lives until the process exits.
package bank

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	meltysynth "github.com/sinshu/go-meltysynth/meltysynth"
)

// DefaultURL is the GeneralUser GS SoundFont, a free General MIDI bank with
// usable patches across the whole program range.
const DefaultURL = "https://github.com/mrbumpy409/GeneralUser-GS/raw/main/GeneralUser-GS.sf2"

// ErrLoadFailed wraps every bank fetch or parse failure. A failed load is
// never cached; the next call retries.
var ErrLoadFailed = errors.New("bank load failed")

// Bank is a parsed SoundFont ready to bind to synthesizer instances. It is
// immutable after loading and safe for concurrent use by any number of
// engines.
type Bank struct {
	font *meltysynth.SoundFont
}

// Font returns the parsed SoundFont for engine construction.
func (b *Bank) Font() *meltysynth.SoundFont { return b.font }

// cache memoizes one bank per process. The mutex covers the whole load so
// concurrent first calls cannot double-fetch: the loser of the race finds the
// winner's bank already cached.
type cache struct {
	mu    sync.Mutex
	bank  *Bank
	fetch func(ctx context.Context, url string) ([]byte, error)
	parse func(raw []byte) (*Bank, error)
}

var global = &cache{fetch: fetchHTTP, parse: parseSoundFont}

// Load returns the process-wide bank, fetching and parsing DefaultURL on
// first use. Subsequent calls return the same handle without refetching.
func Load(ctx context.Context) (*Bank, error) {
	return global.load(ctx, DefaultURL)
}

// Fetch downloads and parses a bank from url without touching the process
// cache.
func Fetch(ctx context.Context, url string) (*Bank, error) {
	raw, err := fetchHTTP(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return parseSoundFont(raw)
}

// Open parses a local SoundFont file without touching the process cache.
func Open(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer f.Close()

	font, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrLoadFailed, path, err)
	}
	return &Bank{font: font}, nil
}

func (c *cache) load(ctx context.Context, url string) (*Bank, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bank != nil {
		return c.bank, nil
	}

	raw, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	b, err := c.parse(raw)
	if err != nil {
		return nil, err
	}
	c.bank = b
	return b, nil
}

func fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func parseSoundFont(raw []byte) (*Bank, error) {
	font, err := meltysynth.NewSoundFont(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrLoadFailed, err)
	}
	return &Bank{font: font}, nil
}
