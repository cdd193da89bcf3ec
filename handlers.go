package spacetraveling

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	if ref := PreviewRef(c); ref != "" {
		listing, err := a.homeListing(ctx, ref)
		if err != nil {
			return err
		}
		noStore(c)
		return Render(c, a.Views.Home(a.site, listing))
	}
	p, result, err := a.Cache.Get(ctx, "/", a.renderHome)
	if err != nil {
		return err
	}
	return writePage(c, p, result)
}

func (a *App) homeListing(ctx context.Context, ref string) (views.Listing, error) {
	feed, err := a.Content.Listing(ctx, a.Config.HomePageSize, ref)
	if err != nil {
		return views.Listing{}, err
	}
	return feed.Listing(), nil
}

func (a *App) renderHome(ctx context.Context) (Page, error) {
	listing, err := a.homeListing(ctx, "")
	if err != nil {
		return Page{}, err
	}
	return renderPage(ctx, a.Views.Home(a.site, listing))
}

// handleMorePosts follows a listing cursor. The load-more script asks for
// partial=posts and splices the fragment in place of the old control; without
// it the next page is served as a full listing. Each request loads into a
// fresh Feed, so overlapping clicks are dropped by the script, not here.
func (a *App) handleMorePosts(c echo.Context) error {
	if !a.moreLimiter.Allow(c.RealIP()) {
		a.metrics.loadMore.WithLabelValues("limited").Inc()
		return c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
	}
	partial := c.QueryParam("partial") == "posts"
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		if partial {
			return Render(c, a.Views.PostList(views.Listing{}))
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	feed := a.Content.Feed(nil, cursor)
	if _, err := feed.LoadMore(c.Request().Context()); err != nil {
		if errors.Is(err, prismic.ErrForeignCursor) {
			a.metrics.loadMore.WithLabelValues("rejected").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor")
		}
		a.metrics.loadMore.WithLabelValues("error").Inc()
		return err
	}
	a.metrics.loadMore.WithLabelValues("ok").Inc()

	// A cursor issued while previewing is pinned to the draft ref.
	if PreviewRef(c) != "" {
		noStore(c)
	}
	listing := feed.Listing()
	if partial {
		return Render(c, a.Views.PostList(listing))
	}
	return Render(c, a.Views.Home(a.site, listing))
}

// handlePost serves a post page from the cache. A slug the repository does not
// know yet gets the loading page, which is never cached and retries itself.
func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("slug")

	if ref := PreviewRef(c); ref != "" {
		page, err := a.postPage(ctx, slug, ref)
		if errors.Is(err, prismic.ErrNotFound) {
			return a.renderLoading(c)
		}
		if err != nil {
			return err
		}
		page.Preview = true
		noStore(c)
		return Render(c, a.Views.Post(a.site, page))
	}

	p, result, err := a.Cache.Get(ctx, views.PostPath(slug), func(ctx context.Context) (Page, error) {
		page, err := a.postPage(ctx, slug, "")
		if err != nil {
			return Page{}, err
		}
		return renderPage(ctx, a.Views.Post(a.site, page))
	})
	if errors.Is(err, prismic.ErrNotFound) {
		return a.renderLoading(c)
	}
	if err != nil {
		return err
	}
	return writePage(c, p, result)
}

// postPage loads a post and its neighbours in the listing, both read at ref.
func (a *App) postPage(ctx context.Context, slug, ref string) (views.PostPage, error) {
	post, err := a.Content.Post(ctx, slug, ref)
	if err != nil {
		return views.PostPage{}, err
	}
	prev, next, err := a.Content.Neighbours(ctx, slug, ref)
	if err != nil {
		return views.PostPage{}, err
	}
	return views.PostPage{Post: post, Prev: prev, Next: next}, nil
}

func (a *App) renderLoading(c echo.Context) error {
	noStore(c)
	return Render(c, a.Views.Loading(a.site))
}

func (a *App) handleSitemap(c echo.Context) error {
	p, result, err := a.Cache.Get(c.Request().Context(), "/sitemap.xml", a.renderSitemap)
	if err != nil {
		return err
	}
	return writePage(c, p, result)
}

func (a *App) handleFeed(c echo.Context) error {
	p, result, err := a.Cache.Get(c.Request().Context(), "/feed.xml", a.renderRSS)
	if err != nil {
		return err
	}
	return writePage(c, p, result)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}

func handleListingRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		noStore(c)
		_ = RenderStatus(c, code, a.Views.ServerError(a.site))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
