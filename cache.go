package spacetraveling

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/prismic"
)

// CacheResult says how a page was obtained.
type CacheResult string

const (
	CacheHit   CacheResult = "hit"
	CacheStale CacheResult = "stale"
	CacheMiss  CacheResult = "miss"
)

// RenderFunc produces a fresh page.
type RenderFunc func(ctx context.Context) (Page, error)

// PageCache keeps rendered pages for ttl. A fresh page is served as is. A stale
// page is still served while one background render per path replaces it. A
// missing page is rendered synchronously; concurrent requests for it share the
// render. Pages are written through to the Store when one is set.
type PageCache struct {
	mu    sync.RWMutex
	pages map[string]Page
	ttl   time.Duration
	store *Store
	group singleflight.Group

	// regenTimeout bounds shared and background renders, which outlive the
	// request that started them.
	regenTimeout time.Duration
	now          func() time.Time
	onResult     func(CacheResult)
	onError      func(path string, err error)
	wg           sync.WaitGroup
}

// NewPageCache creates a PageCache backed by the given Store (which may be nil).
func NewPageCache(s *Store, ttl time.Duration) *PageCache {
	return &PageCache{
		pages:        make(map[string]Page),
		ttl:          ttl,
		store:        s,
		regenTimeout: 30 * time.Second,
		now:          time.Now,
	}
}

func (c *PageCache) lookup(path string) (Page, bool) {
	c.mu.RLock()
	p, ok := c.pages[path]
	c.mu.RUnlock()
	if ok || c.store == nil {
		return p, ok
	}
	p, err := c.store.GetPage(path)
	if err != nil {
		if !errors.Is(err, ErrPageNotStored) {
			c.reportError(path, err)
		}
		return Page{}, false
	}
	c.mu.Lock()
	c.pages[path] = p
	c.mu.Unlock()
	return p, true
}

// Get returns the page for path, rendering it with render when needed.
func (c *PageCache) Get(ctx context.Context, path string, render RenderFunc) (Page, CacheResult, error) {
	if p, ok := c.lookup(path); ok {
		if c.now().Sub(p.GeneratedAt) < c.ttl {
			c.report(CacheHit)
			return p, CacheHit, nil
		}
		c.report(CacheStale)
		c.revalidate(path, render)
		return p, CacheStale, nil
	}

	c.report(CacheMiss)
	// The render is shared by every caller waiting on path, so it runs on a
	// context none of them can cancel. A caller that goes away stops waiting.
	ch := c.group.DoChan(path, func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.regenTimeout)
		defer cancel()
		return c.regenerate(rctx, path, render)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return Page{}, CacheMiss, r.Err
		}
		return r.Val.(Page), CacheMiss, nil
	case <-ctx.Done():
		return Page{}, CacheMiss, ctx.Err()
	}
}

func (c *PageCache) revalidate(path string, render RenderFunc) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.regenTimeout)
		defer cancel()
		_, err, _ := c.group.Do(path, func() (interface{}, error) {
			return c.regenerate(ctx, path, render)
		})
		if errors.Is(err, prismic.ErrNotFound) {
			// The document was unpublished; stop serving the old snapshot.
			c.Invalidate(path)
			return
		}
		if err != nil {
			c.reportError(path, err)
		}
	}()
}

func (c *PageCache) regenerate(ctx context.Context, path string, render RenderFunc) (Page, error) {
	p, err := render(ctx)
	if err != nil {
		return Page{}, err
	}
	if p.GeneratedAt.IsZero() {
		p.GeneratedAt = c.now()
	}
	c.Put(path, p)
	return p, nil
}

// Put stores p under path, replacing any previous page.
func (c *PageCache) Put(path string, p Page) {
	c.mu.Lock()
	c.pages[path] = p
	c.mu.Unlock()
	if c.store != nil {
		if err := c.store.SavePage(path, p); err != nil {
			c.reportError(path, err)
		}
	}
}

// Invalidate drops path so the next request renders it again.
func (c *PageCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.pages, path)
	c.mu.Unlock()
	if c.store != nil {
		if err := c.store.DeletePage(path); err != nil {
			c.reportError(path, err)
		}
	}
}

// Wait blocks until background regenerations have finished.
func (c *PageCache) Wait() {
	c.wg.Wait()
}

func (c *PageCache) report(r CacheResult) {
	if c.onResult != nil {
		c.onResult(r)
	}
}

func (c *PageCache) reportError(path string, err error) {
	if c.onError != nil {
		c.onError(path, err)
	}
}
