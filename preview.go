package spacetraveling

import (
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

const (
	sessionName   = "preview_session"
	previewRefKey = "ref"
)

// PreviewRef returns the content version pinned by the preview session, or ""
// outside preview mode.
func PreviewRef(c echo.Context) string {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewRefKey].(string)
	return ref
}

func setPreviewSession(c echo.Context, ref string) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewRefKey] = ref
	return sess.Save(c.Request(), c.Response())
}

func clearPreviewSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, previewRefKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// handlePreview enters preview mode. The CMS calls it with the preview ref as
// token and, optionally, the document being edited.
func (a *App) handlePreview(c echo.Context) error {
	if !a.previewLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many preview requests. Try again later.")
	}
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}

	target := "/"
	if id := c.QueryParam("documentId"); id != "" {
		doc, err := a.repo.GetByID(c.Request().Context(), id, prismic.QueryOptions{Ref: token})
		if err != nil {
			if errors.Is(err, prismic.ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "preview document not found")
			}
			var apiErr *prismic.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid preview token")
			}
			return err
		}
		if doc.Type == postType && doc.UID != "" {
			target = views.PostPath(doc.UID)
		}
	}

	if err := setPreviewSession(c, token); err != nil {
		return err
	}
	noStore(c)
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	noStore(c)
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}
