package spacetraveling

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/spacetraveling/views"
)

// DefaultPrerenderCount is how many posts the build command renders unless
// told otherwise.
const DefaultPrerenderCount = 10

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name         string `validate:"required"`     // Site name (default "spacetraveling")
	URL          string `validate:"required,url"` // Canonical URL (default "http://localhost:3000")
	Description  string // Site description for RSS and meta tags
	Author       string // Author name for JSON-LD on the home page
	CommentsRepo string `validate:"omitempty,contains=/"` // owner/repo for utterances comments

	Addr         string `validate:"required"` // Listen address (default ":3000")
	DatabasePath string `validate:"required"` // SQLite page store (default "data/pages.db")

	PrismicEndpoint    string `validate:"omitempty,url"` // PRISMIC_API_ENDPOINT
	PrismicAccessToken string // PRISMIC_ACCESS_TOKEN

	SessionSecret string `validate:"required"` // Required: preview cookie signing secret
	CookieSecure  bool   // Set true for HTTPS

	// HomePageSize is how many posts the listing shows before "load more".
	// The default of 1 mirrors the deployed site; raise it deliberately.
	HomePageSize int `validate:"min=1,max=100"`
	// PrerenderCount is how many posts Prerender renders ahead of time. Zero
	// renders only the listing and feeds; the CLI defaults it to
	// DefaultPrerenderCount.
	PrerenderCount int `validate:"min=0,max=100"`

	RevalidateInterval time.Duration // Page regeneration interval (default 30min)
	TimeZone           string        // IANA zone for displayed dates (default "UTC")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/pages.db"
	}
	if c.HomePageSize == 0 {
		c.HomePageSize = 1
	}
	if c.RevalidateInterval == 0 {
		c.RevalidateInterval = 30 * time.Minute
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
}

// Validate checks the configuration after defaults are applied.
func (c SiteConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("spacetraveling: invalid config: %w", err)
	}
	if c.RevalidateInterval < 0 {
		return fmt.Errorf("spacetraveling: invalid config: RevalidateInterval must be positive")
	}
	return nil
}

func (c SiteConfig) view() views.SiteConfig {
	return views.SiteConfig{
		Name:         c.Name,
		URL:          c.URL,
		Description:  c.Description,
		Author:       c.Author,
		CommentsRepo: c.CommentsRepo,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithRepository replaces the Prismic client built from the config.
func WithRepository(repo Repository) Option {
	return func(a *App) {
		a.repo = repo
	}
}

// WithViews overrides some or all page templates.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
