package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/registry"
)

var datasetsPoint string

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Load the dataset registry and report each dataset",
	Long:  "Opens every dataset of the registry in precedence order, reporting feature counts, load failures and, with --point, whether the point falls in each dataset's bounding box.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var (
			p        geo.GeoPoint
			hasPoint bool
		)
		if datasetsPoint != "" {
			pt, err := parsePoint([]string{datasetsPoint})
			if err != nil {
				return err
			}
			p, hasPoint = pt, true
		}

		descs, err := registry.Load(cfg.Datasets.Registry)
		if err != nil {
			return err
		}
		stores, failures, err := registry.Open(cmd.Context(), descs, cfg.Datasets.LoadConcurrency)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		header := "DATASET\tFEATURES\tSTATUS"
		if hasPoint {
			header += "\tIN BBOX"
		}
		fmt.Fprintln(tw, header)

		byName := make(map[string]*geo.Store, len(stores))
		for _, s := range stores {
			byName[s.Name()] = s
		}
		failed := make(map[string]error, len(failures))
		for _, f := range failures {
			failed[f.Dataset] = f.Err
		}

		for _, d := range descs {
			if err, ok := failed[d.Name]; ok {
				fmt.Fprintf(tw, "%s\t-\terror: %v\n", d.Name, err)
				continue
			}
			s := byName[d.Name]
			line := fmt.Sprintf("%s\t%d\tok", d.Name, s.Len())
			if hasPoint {
				line += fmt.Sprintf("\t%t", s.PointInBBox(p))
			}
			fmt.Fprintln(tw, line)
		}
		return tw.Flush()
	},
}

func init() {
	datasetsCmd.Flags().StringVar(&datasetsPoint, "point", "", "check a lat,lon point against each dataset's bounding box")
	rootCmd.AddCommand(datasetsCmd)
}
