package spacetraveling

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

// prerenderConcurrency bounds parallel post renders during a build.
const prerenderConcurrency = 4

// Prerender renders the listing, the feeds and the first Config.PrerenderCount
// posts into the page cache, replacing whatever was stored. When outDir is
// not empty every page is also written there as a static file. It returns the
// rendered paths in the order they were scheduled.
func (a *App) Prerender(ctx context.Context, outDir string) ([]string, error) {
	if err := a.Init(); err != nil {
		return nil, err
	}

	renders := map[string]RenderFunc{
		"/":            a.renderHome,
		"/sitemap.xml": a.renderSitemap,
		"/feed.xml":    a.renderRSS,
	}
	paths := []string{"/", "/sitemap.xml", "/feed.xml"}

	if a.Config.PrerenderCount > 0 {
		resp, err := a.repo.Query(ctx,
			[]prismic.Predicate{prismic.At("document.type", postType)},
			prismic.QueryOptions{Fetch: []string{"post.uid"}, PageSize: a.Config.PrerenderCount})
		if err != nil {
			return nil, fmt.Errorf("prerender: list posts: %w", err)
		}
		for _, doc := range resp.Results {
			if doc.UID == "" {
				continue
			}
			slug := doc.UID
			path := views.PostPath(slug)
			renders[path] = func(ctx context.Context) (Page, error) {
				page, err := a.postPage(ctx, slug, "")
				if err != nil {
					return Page{}, err
				}
				return renderPage(ctx, a.Views.Post(a.site, page))
			}
			paths = append(paths, path)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prerenderConcurrency)
	for _, path := range paths {
		render := renders[path]
		g.Go(func() error {
			p, err := a.Cache.regenerate(gctx, path, render)
			if err != nil {
				return fmt.Errorf("prerender %s: %w", path, err)
			}
			if outDir == "" {
				return nil
			}
			return writeStatic(outDir, path, p)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeStatic writes p below dir. HTML pages map to directory indexes
// ("/post/a" -> post/a/index.html); other pages keep their name.
func writeStatic(dir, path string, p Page) error {
	rel := strings.TrimPrefix(path, "/")
	if strings.HasPrefix(p.ContentType, "text/html") {
		rel = filepath.Join(rel, "index.html")
	}
	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("prerender %s: path escapes output directory", path)
	}
	target := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, p.Body, 0o644)
}
