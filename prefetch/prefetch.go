// Package prefetch keeps the pages around the one being read loaded and normalized in memory.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/josueBarretogit/manga-tui/imaging"
	"github.com/josueBarretogit/manga-tui/log"
	"github.com/josueBarretogit/manga-tui/source"
	"golang.org/x/sync/semaphore"
)

// ErrOutsideWindow is returned by Get for a page that is not in the current window.
var ErrOutsideWindow = errors.New("page outside the prefetch window")

// Fetcher retrieves the bytes of one page.
type Fetcher interface {
	Fetch(ctx context.Context, page *source.Page) ([]byte, error)
}

// Options configures a Cache.
type Options struct {
	Fetcher Fetcher
	// Radius is the number of pages kept on each side of the current one.
	Radius uint8
	// Concurrency bounds the fetches of this cache only.
	Concurrency int

	// Normalizer is applied to every fetched page, keeping the original bytes when nil.
	Normalizer *imaging.Normalizer
	// Accepts lists the formats kept as is by a high quality Normalizer.
	Accepts imaging.Accepts
}

type entry struct {
	done   chan struct{}
	cancel context.CancelFunc
	image  *imaging.Image
	err    error
}

func (e *entry) resolved() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Cache is a sliding window of pages of one chapter.
type Cache struct {
	ctx    context.Context
	stop   context.CancelFunc
	pages  []*source.Page
	radius int

	fetcher    Fetcher
	normalizer *imaging.Normalizer
	accepts    imaging.Accepts
	slots      *semaphore.Weighted

	mu      sync.Mutex
	current int
	entries map[int]*entry
}

// New creates a cache over pages, which must be indexed 1..N. Nothing is fetched before Move.
func New(ctx context.Context, pages []*source.Page, options Options) *Cache {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.Normalizer == nil {
		options.Normalizer = imaging.New(imaging.High)
	}
	if options.Accepts == nil {
		options.Accepts = imaging.AcceptAll
	}

	ctx, stop := context.WithCancel(ctx)

	return &Cache{
		ctx:     ctx,
		stop:    stop,
		pages:   pages,
		radius:  int(options.Radius),
		fetcher:    options.Fetcher,
		normalizer: options.Normalizer,
		accepts:    options.Accepts,
		slots:      semaphore.NewWeighted(int64(options.Concurrency)),
		entries:    make(map[int]*entry),
	}
}

// Window returns the inclusive range of pages kept around the current one.
func (c *Cache) Window() (first, last int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window()
}

func (c *Cache) window() (first, last int) {
	if len(c.pages) == 0 || c.current == 0 {
		return 0, -1
	}
	return max(1, c.current-c.radius), min(len(c.pages), c.current+c.radius)
}

// Move makes index the current page. Pages that left the window are cancelled or evicted,
// pages entering it start loading and failed pages inside it are tried again.
func (c *Cache) Move(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pages) == 0 {
		return
	}

	c.current = min(max(index, 1), len(c.pages))
	first, last := c.window()

	for i, e := range c.entries {
		if i < first || i > last {
			e.cancel()
			delete(c.entries, i)
		}
	}

	// nearest pages first
	c.ensure(c.current)
	for distance := 1; distance <= c.radius; distance++ {
		if i := c.current + distance; i <= last {
			c.ensure(i)
		}
		if i := c.current - distance; i >= first {
			c.ensure(i)
		}
	}
}

func (c *Cache) ensure(index int) {
	if e, ok := c.entries[index]; ok {
		if !e.resolved() || e.err == nil {
			return
		}
	}

	ctx, cancel := context.WithCancel(c.ctx)
	e := &entry{done: make(chan struct{}), cancel: cancel}
	c.entries[index] = e

	page := c.pages[index-1]
	go func() {
		defer close(e.done)
		defer cancel()

		if err := c.slots.Acquire(ctx, 1); err != nil {
			e.err = err
			return
		}
		defer c.slots.Release(1)

		e.image, e.err = c.load(ctx, page)
		if e.err != nil && ctx.Err() == nil {
			log.WithFields(log.Fields{
				"chapter": page.ChapterID,
				"page":    page.Index,
			}).Warnf("prefetch: %v", e.err)
		}
	}()
}

func (c *Cache) load(ctx context.Context, page *source.Page) (*imaging.Image, error) {
	data, err := c.fetcher.Fetch(ctx, page)
	if err != nil {
		return nil, err
	}

	image, err := c.normalizer.Normalize(data, c.accepts)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page.Index, err)
	}

	return image, nil
}

// Get waits for a normalized page of the current window.
func (c *Cache) Get(ctx context.Context, index int) (*imaging.Image, error) {
	c.mu.Lock()
	e, ok := c.entries[index]
	c.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("page %d: %w", index, ErrOutsideWindow)
	}

	select {
	case <-e.done:
		return e.image, e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resident lists the pages loaded successfully, in ascending order.
func (c *Cache) Resident() []int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var indices []int
	for i, e := range c.entries {
		if e.resolved() && e.err == nil {
			indices = append(indices, i)
		}
	}
	slices.Sort(indices)
	return indices
}

// Close cancels every fetch and drops all pages.
func (c *Cache) Close() {
	c.stop()

	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}
