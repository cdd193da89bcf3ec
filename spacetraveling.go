// Package spacetraveling is a server-rendered blog front-end for posts kept in a
// Prismic repository. It lists posts, renders post pages with reading time and
// neighbour links, supports preview sessions, and keeps rendered pages in a
// cache that regenerates them in the background.
//
// Sites can replace the templ templates via ViewFuncs; spacetraveling handles
// content fetching, caching, middleware and routing.
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// App is the central spacetraveling application. It wires together the
// content reader, page cache, handlers, middleware and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *PageCache
	Content *Content
	Views   ViewFuncs

	repo           Repository
	metrics        *metrics
	site           views.SiteConfig
	previewLimiter *RateLimiter
	moreLimiter    *RateLimiter
	customRoutes   []func(*App)
	initialized    bool
}

// New creates an App with the given configuration. Nothing is opened until
// Init or Start.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init validates the config, connects the content repository, opens the page
// store and registers middleware and routes. Start calls it; call it directly
// to serve the App through another listener or to prerender pages.
func (a *App) Init() error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}
	loc, err := time.LoadLocation(a.Config.TimeZone)
	if err != nil {
		return fmt.Errorf("spacetraveling: time zone %q: %w", a.Config.TimeZone, err)
	}

	a.metrics = newMetrics()

	if a.repo == nil {
		if a.Config.PrismicEndpoint == "" {
			return fmt.Errorf("spacetraveling: PrismicEndpoint is required")
		}
		client, err := prismic.NewClient(a.Config.PrismicEndpoint, a.Config.PrismicAccessToken)
		if err != nil {
			return fmt.Errorf("spacetraveling: content client: %w", err)
		}
		a.repo = client
	}
	a.repo = instrument(a.repo, a.metrics)
	a.Content = NewContent(a.repo, loc)
	a.Content.onBadData = func(id string, err error) {
		a.metrics.badDocuments.Inc()
		a.Echo.Logger.Warnf("document %s: undecodable data: %v", id, err)
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("spacetraveling: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewPageCache(a.Store, a.Config.RevalidateInterval)
	a.Cache.onResult = func(r CacheResult) {
		a.metrics.pageCache.WithLabelValues(string(r)).Inc()
	}
	a.Cache.onError = func(path string, err error) {
		a.Echo.Logger.Errorf("regenerate %s: %v", path, err)
	}

	a.previewLimiter = NewRateLimiter(10, time.Minute)
	a.moreLimiter = NewRateLimiter(60, time.Minute)

	a.Views = a.Views.withDefaults()
	a.site = a.Config.view()

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the App and serves it on Config.Addr until the server is
// shut down.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight requests and
// background regenerations, then releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if a.Cache != nil {
		a.Cache.Wait()
	}
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.StaticFS("/public", assets)
	e.FileFS("/favicon.svg", "favicon.svg", assets)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts", handleListingRedirect)
	e.GET("/posts/more", a.handleMorePosts)
	e.GET("/post/:slug", a.handlePost)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", handleExitPreview)

	e.GET("/healthz", handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.metrics.registry,
	}))
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.previewLimiter != nil {
		a.previewLimiter.Stop()
	}
	if a.moreLimiter != nil {
		a.moreLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
