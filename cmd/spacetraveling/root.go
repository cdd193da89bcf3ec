package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "spacetraveling",
	Short: "spacetraveling - a blog front-end for Prismic content",
	Long: `spacetraveling renders the posts of a Prismic repository as a website:
a paginated listing, post pages with reading time and neighbour links, and a
preview mode for unpublished changes. Rendered pages are cached and
regenerated in the background.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the spacetraveling version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "spacetraveling %s\n", version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(serveCmd, buildCmd, versionCmd)
}
