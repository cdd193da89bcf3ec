package spacetraveling

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the templ components the handlers render. Sites can replace
// any of them with WithViews; nil entries fall back to the defaults in the
// views package.
type ViewFuncs struct {
	Home        func(cfg views.SiteConfig, listing views.Listing) templ.Component
	PostList    func(listing views.Listing) templ.Component
	Post        func(cfg views.SiteConfig, page views.PostPage) templ.Component
	Loading     func(cfg views.SiteConfig) templ.Component
	NotFound    func(cfg views.SiteConfig) templ.Component
	ServerError func(cfg views.SiteConfig) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		PostList:    views.PostList,
		Post:        views.Post,
		Loading:     views.Loading,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

func (v ViewFuncs) withDefaults() ViewFuncs {
	d := DefaultViews()
	if v.Home == nil {
		v.Home = d.Home
	}
	if v.PostList == nil {
		v.PostList = d.PostList
	}
	if v.Post == nil {
		v.Post = d.Post
	}
	if v.Loading == nil {
		v.Loading = d.Loading
	}
	if v.NotFound == nil {
		v.NotFound = d.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = d.ServerError
	}
	return v
}
