package spacetraveling

import (
	"bytes"
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// renderPage renders cmp into a Page so it can be cached.
func renderPage(ctx context.Context, cmp templ.Component) (Page, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return Page{}, err
	}
	return Page{Body: buf.Bytes(), ContentType: echo.MIMETextHTMLCharsetUTF8}, nil
}

// writePage sends a cached or freshly rendered page.
func writePage(c echo.Context, p Page, result CacheResult) error {
	c.Response().Header().Set("X-Cache", string(result))
	return c.Blob(http.StatusOK, p.ContentType, p.Body)
}
