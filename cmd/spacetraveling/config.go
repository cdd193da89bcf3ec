package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling"
)

// envBindings maps config keys to the environment variables deployments set.
// Every other key is also readable as SPACETRAVELING_<KEY>.
var envBindings = map[string]string{
	"prismic.endpoint":     "PRISMIC_API_ENDPOINT",
	"prismic.access_token": "PRISMIC_ACCESS_TOKEN",
	"session.secret":       "SESSION_SECRET",
	"site.url":             "SITE_URL",
	"site.name":            "SITE_NAME",
	"site.description":     "SITE_DESCRIPTION",
	"site.author":          "SITE_AUTHOR",
	"site.comments_repo":   "COMMENTS_REPO",
	"server.addr":          "ADDR",
	"server.cookie_secure": "COOKIE_SECURE",
	"database.path":        "DATABASE_PATH",
}

func initializeConfig() error {
	v.SetDefault("site.name", "spacetraveling")
	v.SetDefault("site.url", "http://localhost:3000")
	v.SetDefault("site.timezone", "UTC")
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("database.path", "data/pages.db")
	v.SetDefault("listing.page_size", 1)
	v.SetDefault("build.prerender_count", spacetraveling.DefaultPrerenderCount)
	v.SetDefault("cache.revalidate_interval", "30m")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SPACETRAVELING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "SPACETRAVELING_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		if cfgFile != "" {
			return fmt.Errorf("config file %s not found: %w", cfgFile, err)
		}
	} else {
		log.Println("Using config file:", v.ConfigFileUsed())
	}
	return nil
}

func siteConfig() spacetraveling.SiteConfig {
	return spacetraveling.SiteConfig{
		Name:               v.GetString("site.name"),
		URL:                v.GetString("site.url"),
		Description:        v.GetString("site.description"),
		Author:             v.GetString("site.author"),
		CommentsRepo:       v.GetString("site.comments_repo"),
		TimeZone:           v.GetString("site.timezone"),
		Addr:               v.GetString("server.addr"),
		CookieSecure:       v.GetBool("server.cookie_secure"),
		DatabasePath:       v.GetString("database.path"),
		PrismicEndpoint:    v.GetString("prismic.endpoint"),
		PrismicAccessToken: v.GetString("prismic.access_token"),
		SessionSecret:      v.GetString("session.secret"),
		HomePageSize:       v.GetInt("listing.page_size"),
		PrerenderCount:     v.GetInt("build.prerender_count"),
		RevalidateInterval: v.GetDuration("cache.revalidate_interval"),
	}
}
