package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/spacetraveling"
)

var outDir string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Prerender the listing, feeds and latest posts",
	Long: `The build command renders the home page, sitemap, RSS feed and the first
build.prerender_count posts into the page store so a fresh server starts warm.
With --out the rendered pages are also written as static files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := spacetraveling.New(siteConfig())
		defer app.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		start := time.Now()
		paths, err := app.Prerender(ctx, outDir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			log.Println("rendered", p)
		}
		log.Printf("Prerendered %d pages in %s", len(paths), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&outDir, "out", "", "also write rendered pages to this directory")
	buildCmd.Flags().Int("count", spacetraveling.DefaultPrerenderCount, "number of posts to prerender, 0 for none (overrides build.prerender_count)")
	_ = v.BindPFlag("build.prerender_count", buildCmd.Flags().Lookup("count"))
}
