package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/placetag-cli/internal/geo"
	"github.com/sells-group/placetag-cli/internal/resolve"
	"github.com/sells-group/placetag-cli/internal/tags"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup [--json] <lat> <lon>",
	Short: "Resolve the place and territories containing a point",
	Example: "  placetag lookup 42.389022 -71.136443\n" +
		"  placetag lookup --json 42.389022,-71.136443\n" +
		"  placetag lookup -- -33.856784 151.215297",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pointForLookup(args)
		if err != nil {
			return err
		}
		env, err := buildResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		res := env.Resolver.Resolve(p)
		if lookupJSON {
			return writeResolutionJSON(cmd.OutOrStdout(), res)
		}
		printResolution(cmd.OutOrStdout(), res)
		return nil
	},
}

var territoriesCmd = &cobra.Command{
	Use:   "territories <lat> <lon>",
	Short: "List the territories containing a point",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pointForLookup(args)
		if err != nil {
			return err
		}
		env, err := buildResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resolve.JoinNames(env.Resolver.ResolveTerritories(p)))
		return nil
	},
}

var overlapsCmd = &cobra.Command{
	Use:   "overlaps <lat> <lon>",
	Short: "List every polygon of every dataset containing a point",
	Long:  "Shows all containing polygons with their rule verdict, in precedence order, to debug which dataset and record a lookup resolves to.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pointForLookup(args)
		if err != nil {
			return err
		}
		env, err := buildResolver(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		printOverlaps(cmd.OutOrStdout(), env.Resolver.Overlaps(p))
		return nil
	},
}

// pointForLookup parses the point arguments and checks the lookup config.
func pointForLookup(args []string) (geo.GeoPoint, error) {
	p, err := parsePoint(args)
	if err != nil {
		return geo.GeoPoint{}, err
	}
	if err := cfg.Validate("lookup"); err != nil {
		return geo.GeoPoint{}, err
	}
	return p, nil
}

func printResolution(w io.Writer, res resolve.Resolution) {
	if res.Found {
		fmt.Fprintf(w, "Place: %s (found in %s)\n", res.Place.Name, res.Place.Source)
	} else {
		fmt.Fprintln(w, "Place: none")
	}
	if caption := res.TerritoryCaption(); caption != "" {
		fmt.Fprintf(w, "Territories: %s\n", caption)
	} else {
		fmt.Fprintln(w, "Territories: none")
	}
}

func writeResolutionJSON(w io.Writer, res resolve.Resolution) error {
	out := struct {
		Found         bool           `json:"found"`
		Place         *resolve.Place `json:"place,omitempty"`
		Territories   []string       `json:"territories"`
		TerritoryList string         `json:"territory_list"`
		Tags          []string       `json:"tags"`
	}{
		Found:         res.Found,
		Territories:   res.Territories,
		TerritoryList: res.TerritoryList(),
		Tags:          []string{},
	}
	if out.Territories == nil {
		out.Territories = []string{}
	}
	if res.Found {
		out.Place = &res.Place
		out.Tags = append(out.Tags, tags.Make(tags.Place, res.Place.Name))
	}
	if len(res.Territories) > 0 {
		out.Tags = append(out.Tags, tags.Make(tags.Territory, out.TerritoryList))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printOverlaps(w io.Writer, matches []resolve.SourceMatch) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No containing polygons.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tINDEX\tVERDICT\tNAME")
	for _, m := range matches {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", m.Source, m.Index, m.Verdict, m.Name)
	}
	_ = tw.Flush()
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the result as JSON")
	// Flags end at the first positional argument so western longitudes
	// such as -71.1 are not read as shorthand flags.
	for _, c := range []*cobra.Command{lookupCmd, territoriesCmd, overlapsCmd} {
		c.Flags().SetInterspersed(false)
	}
	rootCmd.AddCommand(lookupCmd, territoriesCmd, overlapsCmd)
}
