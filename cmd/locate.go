package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/placetag-cli/internal/locate"
	"github.com/sells-group/placetag-cli/internal/photo"
	"github.com/sells-group/placetag-cli/internal/store"
)

var (
	locateConcurrency int
	locateNoTerr      bool
	locateVerbose     bool
)

var locateCmd = &cobra.Command{
	Use:   "locate <dir>",
	Short: "Tag the JPEG images in a directory with their place and territories",
	Long:  "Reads each image's EXIF GPS position, resolves it and records machine tags in the keyword ledger. Images already carrying a place tag are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if locateConcurrency > 0 {
			cfg.Locate.Concurrency = locateConcurrency
		}
		if locateNoTerr {
			cfg.Locate.Territories = false
		}
		if err := cfg.Validate("locate"); err != nil {
			return err
		}

		items, err := photo.List(args[0])
		if err != nil {
			return err
		}

		env, err := buildResolver(ctx, cfg)
		if err != nil {
			return err
		}

		ledger, err := store.NewSQLite(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer ledger.Close() //nolint:errcheck
		if err := ledger.Migrate(ctx); err != nil {
			return err
		}

		l := locate.New(env.Resolver, ledger, cfg.Locate.Territories && env.Resolver.HasTerritories())
		report, err := l.Run(ctx, args[0], items, cfg.Locate.Concurrency)
		if err != nil {
			return eris.Wrap(err, "locate")
		}

		out := cmd.OutOrStdout()
		if locateVerbose {
			for _, r := range report.Results {
				switch {
				case r.Place != nil:
					fmt.Fprintf(out, "%s\t%s\t%s (%s)\n", r.Item, r.Status, r.Place.Name, r.Place.Source)
				case r.Err != nil:
					fmt.Fprintf(out, "%s\t%s\t%v\n", r.Item, r.Status, r.Err)
				default:
					fmt.Fprintf(out, "%s\t%s\n", r.Item, r.Status)
				}
			}
		}
		s := report.Summary
		fmt.Fprintf(out, "run %s: %d images, %d tagged, %d already tagged, %d without GPS, %d not found, %d failed\n",
			report.RunID, s.Total, s.Tagged, s.AlreadyTagged, s.NoGPS, s.NotFound, s.Failed)
		return nil
	},
}

func init() {
	locateCmd.Flags().IntVar(&locateConcurrency, "concurrency", 0, "images processed in parallel (default from config)")
	locateCmd.Flags().BoolVar(&locateNoTerr, "no-territories", false, "do not add territory tags")
	locateCmd.Flags().BoolVarP(&locateVerbose, "verbose", "v", false, "print one line per image")
	rootCmd.AddCommand(locateCmd)
}
