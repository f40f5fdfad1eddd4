package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nsac-scraper/internal/config"
)

var (
	cfg *config.Config

	targetsFile string
	dataDir     string
	driver      string
	backend     string
)

var rootCmd = &cobra.Command{
	Use:   "nsac-scrape",
	Short: "nsac-scrape scrapes NASA Space Apps challenge team counts from the command line.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}

		var flagCfg config.Config
		flagCfg.Scraper.TargetsFile = targetsFile
		flagCfg.Storage.DataDir = dataDir
		flagCfg.Browser.Driver = driver
		flagCfg.Storage.Backend = backend
		if err := loaded.Override(flagCfg); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		cfg = loaded
		return nil
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&targetsFile, "targets", "", "Path to the targets file (JSON or YAML).")
	flags.StringVar(&dataDir, "data-dir", "", "Directory holding history and latest snapshot files.")
	flags.StringVar(&driver, "driver", "", "Browser driver: chromedp or rod.")
	flags.StringVar(&backend, "storage", "", "Storage backend: file, postgres or sqlite.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
