package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sitemapd",
	Short: "Build sitemap.xml from the declared routes",
	Long: `sitemapd derives sitemap entries from the routes declared in its config file.

Routes carrying a _sitemap default become entries. Routes that share a
_canonical_route are cross-linked as locale alternates, and routes naming a
generator expand into one entry per record the generator enumerates.

  sitemapd serve                 Serve /sitemap.xml and the record API
  sitemapd generate -o out.xml   Write the sitemap once and exit`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml or ./config/config.yaml)")
}

func main() {
	// A missing .env is fine; the environment and config file still apply.
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
