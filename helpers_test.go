package spacetraveling

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/prismic/prismictest"
)

func testPosts() []prismic.Document {
	return []prismic.Document{
		prismictest.Post("1", "como-utilizar-hooks", "Como utilizar Hooks", "Pensando em sincronização em vez de ciclos de vida", "Joseph Oliveira", "2021-03-15T19:25:28+0000",
			prismictest.Section{Heading: "Proin et varius", Body: []string{"Lorem ipsum dolor sit amet, consectetur adipiscing elit."}}),
		prismictest.Post("2", "criando-um-app-cra-do-zero", "Criando um app CRA do zero", "Tudo sobre como criar a sua primeira aplicação utilizando Create React App", "Danilo Vieira", "2021-03-25T19:27:35+0000",
			prismictest.Section{Heading: "Introdução", Body: []string{"Nullam dolor sapien, vulputate eu diam at, condimentum hendrerit tellus."}}),
		prismictest.Post("3", "react-na-pratica", "React na prática", "Componentes, estado e efeitos", "Ana Souza", "2021-04-02T10:00:00+0000",
			prismictest.Section{Heading: "Componentes", Body: []string{"Cras laoreet mi non lorem sodales."}}),
	}
}

func newTestServer(t *testing.T, docs []prismic.Document) *prismictest.Server {
	t.Helper()
	srv := prismictest.NewServer(docs)
	t.Cleanup(srv.Close)
	return srv
}

// newTestApp builds an initialized App reading from srv. configure, when not
// nil, adjusts the config before Init.
func newTestApp(t *testing.T, srv *prismictest.Server, configure func(*SiteConfig)) *App {
	t.Helper()
	cfg := SiteConfig{
		URL:                "http://example.com",
		DatabasePath:       filepath.Join(t.TempDir(), "pages.db"),
		PrismicEndpoint:    srv.Endpoint(),
		PrismicAccessToken: srv.Token,
		SessionSecret:      "test-session-secret",
	}
	if configure != nil {
		configure(&cfg)
	}
	app := New(cfg)
	if err := app.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() {
		app.Cache.Wait()
		app.Close()
	})
	return app
}

func doRequest(app *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Echo.ServeHTTP(rec, req)
	return rec
}

func get(app *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return doRequest(app, req)
}
