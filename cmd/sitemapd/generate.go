package main

import (
	"os"

	"github.com/romangod6/route-sitemap/config"
	"github.com/romangod6/route-sitemap/internal/render"
	"github.com/spf13/cobra"
)

var generateOutput string

var generateCmd = &cobra.Command{
	Use:     "generate",
	Aliases: []string{"gen"},
	Short:   "Write the sitemap once and exit",
	Long: `Build the sitemap from the current routes and records.

Without --output the document is written to stdout and log lines go to stderr.

Examples:
  sitemapd generate
  sitemapd generate --output public/sitemap.xml`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "output file (default stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if generateOutput == "" {
		items, err := a.builder.BuildSitemapItems(cmd.Context())
		if err != nil {
			return err
		}
		return render.Write(cmd.OutOrStdout(), items)
	}

	n, err := a.export(cmd.Context(), generateOutput)
	if err != nil {
		return err
	}
	a.logger.LogInfo("Wrote %d entries to %s", n, generateOutput)
	return nil
}
