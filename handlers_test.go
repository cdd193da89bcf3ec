package spacetraveling

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/prismic/prismictest"
)

func TestHomeShowsFirstPage(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Como utilizar Hooks")
	assert.Contains(t, body, "15 mar 2021")
	assert.Contains(t, body, "Joseph Oliveira")
	assert.NotContains(t, body, "Criando um app CRA do zero")
	assert.Contains(t, body, "Carregar mais posts")
	assert.Contains(t, body, `href="/post/como-utilizar-hooks"`)
	assert.Equal(t, string(CacheMiss), rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "s-maxage=1800")
}

func TestHomeIsServedFromCache(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	get(app, "/")
	searches := srv.Searches()

	rec := get(app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(CacheHit), rec.Header().Get("X-Cache"))
	assert.Equal(t, searches, srv.Searches())

	stored, err := app.Store.GetPage("/")
	require.NoError(t, err)
	assert.Equal(t, rec.Body.String(), string(stored.Body))
}

func TestHomePageSizeIsConfigurable(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, func(cfg *SiteConfig) { cfg.HomePageSize = 10 })

	body := get(app, "/").Body.String()
	assert.Contains(t, body, "Como utilizar Hooks")
	assert.Contains(t, body, "Criando um app CRA do zero")
	assert.Contains(t, body, "React na prática")
	assert.NotContains(t, body, "Carregar mais posts")
}

func TestHomeNeverExposesAccessToken(t *testing.T) {
	srv := prismictest.NewServer(testPosts())
	srv.Token = "secret-token"
	t.Cleanup(srv.Close)
	app := newTestApp(t, srv, nil)

	rec := get(app, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-token")
	assert.Contains(t, rec.Body.String(), "Carregar mais posts")

	// The public cursor still works: the token is added back server side.
	feed, err := app.Content.Listing(context.Background(), 1, "")
	require.NoError(t, err)
	cursor := feed.Listing().Cursor
	require.NotContains(t, cursor, "secret-token")

	rec = get(app, "/posts/more?partial=posts&cursor="+url.QueryEscape(cursor))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Criando um app CRA do zero")
	assert.NotContains(t, rec.Body.String(), "secret-token")
}

func TestMorePostsFragment(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	feed, err := app.Content.Listing(context.Background(), 1, "")
	require.NoError(t, err)

	rec := get(app, "/posts/more?partial=posts&cursor="+url.QueryEscape(feed.Listing().Cursor))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, "Criando um app CRA do zero")
	assert.NotContains(t, body, "Como utilizar Hooks")
	assert.Contains(t, body, "data-load-more")

	_, err = feed.LoadMore(context.Background())
	require.NoError(t, err)
	rec = get(app, "/posts/more?partial=posts&cursor="+url.QueryEscape(feed.Listing().Cursor))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "React na prática")
	assert.NotContains(t, rec.Body.String(), "Carregar mais posts")
}

func TestMorePostsFullPageWithoutScript(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	feed, err := app.Content.Listing(context.Background(), 1, "")
	require.NoError(t, err)

	rec := get(app, "/posts/more?cursor="+url.QueryEscape(feed.Listing().Cursor))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Contains(t, rec.Body.String(), "Criando um app CRA do zero")
}

func TestMorePostsWithoutCursor(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/posts/more?partial=posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = get(app, "/posts/more")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestMorePostsRejectsForeignCursor(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/posts/more?partial=posts&cursor="+url.QueryEscape("https://evil.example/api/v2/documents/search?page=2"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostPage(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/post/criando-um-app-cra-do-zero")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "<h1 class=\"title\">Criando um app CRA do zero</h1>")
	assert.Contains(t, body, "25 mar 2021")
	assert.Contains(t, body, "Danilo Vieira")
	assert.Contains(t, body, "1 min")
	assert.Contains(t, body, "Introdução")
	assert.Contains(t, body, "<p>Nullam dolor sapien, vulputate eu diam at, condimentum hendrerit tellus.</p>")
	assert.Contains(t, body, `src="https://images.prismic.io/repo/criando-um-app-cra-do-zero.png"`)
	assert.Contains(t, body, "Como utilizar Hooks")
	assert.Contains(t, body, "Post anterior")
	assert.Contains(t, body, "React na prática")
	assert.Contains(t, body, "Próximo post")
	assert.NotContains(t, body, "editado em")
	assert.NotContains(t, body, "utteranc.es")
	assert.Equal(t, string(CacheMiss), rec.Header().Get("X-Cache"))

	rec = get(app, "/post/criando-um-app-cra-do-zero")
	assert.Equal(t, string(CacheHit), rec.Header().Get("X-Cache"))
}

func TestPostPageBoundaries(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	first := get(app, "/post/como-utilizar-hooks").Body.String()
	assert.NotContains(t, first, "Post anterior")
	assert.Contains(t, first, "Próximo post")

	last := get(app, "/post/react-na-pratica").Body.String()
	assert.Contains(t, last, "Post anterior")
	assert.NotContains(t, last, "Próximo post")
}

func TestPostPageShowsEditedLineAndComments(t *testing.T) {
	docs := testPosts()
	docs[0].LastPublicationDate = "2021-03-18T14:07:00+0000"
	srv := newTestServer(t, docs)
	app := newTestApp(t, srv, func(cfg *SiteConfig) { cfg.CommentsRepo = "rocketseat/spacetraveling" })

	body := get(app, "/post/como-utilizar-hooks").Body.String()
	assert.Contains(t, body, "* editado em 18 mar 2021, às 14:07")
	assert.Contains(t, body, `repo="rocketseat/spacetraveling"`)
}

func TestPostPageUnknownSlugRendersLoading(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	for i := 0; i < 2; i++ {
		rec := get(app, "/post/ainda-nao-publicado")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Carregando...")
		assert.Contains(t, rec.Body.String(), `http-equiv="refresh"`)
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	}

	_, err := app.Store.GetPage("/post/ainda-nao-publicado")
	assert.ErrorIs(t, err, ErrPageNotStored)

	// Once published, the same URL resolves.
	srv.SetVersion(prismictest.MasterRef, append(testPosts(),
		prismictest.Post("4", "ainda-nao-publicado", "Agora publicado", "", "Ana Souza", "2021-04-10T10:00:00+0000")))
	rec := get(app, "/post/ainda-nao-publicado")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Agora publicado")
}

func TestPostPageRevalidatesInBackground(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)
	clock := newFakeClock()
	app.Cache.now = clock.Now

	require.Contains(t, get(app, "/post/react-na-pratica").Body.String(), "React na prática")

	docs := testPosts()
	docs[2] = prismictest.Post("3", "react-na-pratica", "React na prática (revisado)", "", "Ana Souza", "2021-04-02T10:00:00+0000")
	srv.SetVersion(prismictest.MasterRef, docs)
	clock.Advance(31 * time.Minute)

	rec := get(app, "/post/react-na-pratica")
	assert.Equal(t, string(CacheStale), rec.Header().Get("X-Cache"))
	assert.NotContains(t, rec.Body.String(), "(revisado)")

	app.Cache.Wait()

	rec = get(app, "/post/react-na-pratica")
	assert.Equal(t, string(CacheHit), rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), "React na prática (revisado)")
}

func TestPostPageUnpublishedFallsBackToLoading(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)
	clock := newFakeClock()
	app.Cache.now = clock.Now

	get(app, "/post/react-na-pratica")
	srv.SetVersion(prismictest.MasterRef, testPosts()[:2])
	clock.Advance(31 * time.Minute)

	get(app, "/post/react-na-pratica")
	app.Cache.Wait()

	rec := get(app, "/post/react-na-pratica")
	assert.Contains(t, rec.Body.String(), "Carregando...")
}

func previewDocs() []prismic.Document {
	docs := testPosts()
	docs[1] = prismictest.Post("2", "criando-um-app-cra-do-zero", "Criando um app CRA do zero (rascunho)", "", "Danilo Vieira", "2021-03-25T19:27:35+0000")
	return docs
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", sessionName)
	return nil
}

func TestPreviewFlow(t *testing.T) {
	srv := newTestServer(t, testPosts())
	srv.SetVersion("preview-ref", previewDocs())
	app := newTestApp(t, srv, nil)

	// Warm the published page so the preview must bypass it.
	get(app, "/post/criando-um-app-cra-do-zero")

	rec := get(app, "/api/preview?token=preview-ref&documentId=2")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/post/criando-um-app-cra-do-zero", rec.Header().Get("Location"))
	cookie := sessionCookie(t, rec.Result())

	rec = get(app, "/post/criando-um-app-cra-do-zero", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Criando um app CRA do zero (rascunho)")
	assert.Contains(t, body, "Sair do modo Preview")
	assert.Contains(t, body, `href="/api/exit-preview"`)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Empty(t, rec.Header().Get("X-Cache"))

	// The cached published page is untouched.
	rec = get(app, "/post/criando-um-app-cra-do-zero")
	assert.NotContains(t, rec.Body.String(), "(rascunho)")
	assert.NotContains(t, rec.Body.String(), "Sair do modo Preview")

	rec = get(app, "/api/exit-preview", cookie)
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	cleared := sessionCookie(t, rec.Result())
	assert.Less(t, cleared.MaxAge, 0)
}

func TestPreviewHomeUsesPreviewRef(t *testing.T) {
	srv := newTestServer(t, testPosts())
	srv.SetVersion("preview-ref", previewDocs())
	app := newTestApp(t, srv, func(cfg *SiteConfig) { cfg.HomePageSize = 10 })

	cookie := sessionCookie(t, get(app, "/api/preview?token=preview-ref").Result())

	rec := get(app, "/", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(rascunho)")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestPreviewMorePostsIsNotStored(t *testing.T) {
	srv := newTestServer(t, testPosts())
	srv.SetVersion("preview-ref", previewDocs())
	app := newTestApp(t, srv, nil)

	feed, err := app.Content.Listing(context.Background(), 1, "preview-ref")
	require.NoError(t, err)
	target := "/posts/more?partial=posts&cursor=" + url.QueryEscape(feed.Listing().Cursor)

	rec := get(app, target)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Cache-Control"), "public"))

	cookie := sessionCookie(t, get(app, "/api/preview?token=preview-ref").Result())
	rec = get(app, target, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(rascunho)")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestPreviewWithoutDocumentRedirectsHome(t *testing.T) {
	srv := newTestServer(t, testPosts())
	srv.SetVersion("preview-ref", previewDocs())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/api/preview?token=preview-ref")
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestPreviewErrors(t *testing.T) {
	srv := newTestServer(t, testPosts())
	srv.SetVersion("preview-ref", previewDocs())
	app := newTestApp(t, srv, nil)

	assert.Equal(t, http.StatusBadRequest, get(app, "/api/preview").Code)
	assert.Equal(t, http.StatusBadRequest, get(app, "/api/preview?token=unknown-ref&documentId=2").Code)
	assert.Equal(t, http.StatusNotFound, get(app, "/api/preview?token=preview-ref&documentId=99").Code)
}

func TestPreviewIsRateLimited(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	var last int
	for i := 0; i < 11; i++ {
		last = get(app, "/api/preview").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestSitemap(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>http://example.com/</loc>")
	assert.Contains(t, body, "<loc>http://example.com/post/react-na-pratica</loc>")
	assert.Contains(t, body, "<lastmod>2021-04-02</lastmod>")

	rec = get(app, "/sitemap.xml")
	assert.Equal(t, string(CacheHit), rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestFeed(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, func(cfg *SiteConfig) { cfg.Description = "Blog sobre React" })

	rec := get(app, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `<rss version="2.0">`)
	assert.Contains(t, body, "<description>Blog sobre React</description>")
	assert.Contains(t, body, "<title>Criando um app CRA do zero</title>")
	assert.Contains(t, body, "<link>http://example.com/post/criando-um-app-cra-do-zero</link>")
	assert.Contains(t, body, "<pubDate>Thu, 25 Mar 2021 19:27:35 +0000</pubDate>")
}

func TestRobots(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: http://example.com/sitemap.xml")
	assert.Contains(t, rec.Body.String(), "Disallow: /api/")
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	get(app, "/")
	get(app, "/")

	rec := get(app, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `page_cache_results_total{result="hit"} 1`)
	assert.Contains(t, body, `page_cache_results_total{result="miss"} 1`)
	assert.Contains(t, body, `content_requests_total{operation="query",outcome="ok"} 1`)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/nada/aqui")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Página não encontrada")
}

func TestContentFailureRendersServerError(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)
	srv.Close()

	rec := get(app, "/")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Algo deu errado")
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestTrailingSlashRedirects(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/post/react-na-pratica/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/post/react-na-pratica", rec.Header().Get("Location"))
}

func TestEmbeddedAssets(t *testing.T) {
	srv := newTestServer(t, testPosts())
	app := newTestApp(t, srv, nil)

	rec := get(app, "/public/more.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-load-more")
	assert.Equal(t, "public, max-age=86400", rec.Header().Get("Cache-Control"))

	assert.Equal(t, http.StatusOK, get(app, "/public/app.css").Code)
	assert.Equal(t, http.StatusOK, get(app, "/favicon.svg").Code)
}
