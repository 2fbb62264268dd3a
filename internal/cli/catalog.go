package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/earningscheck/internal/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List verifiable metrics and their tolerance bands",
	Long: `Catalog prints every metric the engine can verify, how its actual value is
computed from the financial facts, and the verified / close_match thresholds.

Percent bands apply to absolute claims; ratio metrics are compared in
percentage points. Growth claims use a fixed band in percentage points and
margin changes a fixed band in basis points.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "METRIC\tCOMPUTATION\tFIELDS\tTIGHT\tLOOSE\tAPPROX\tSUMMABLE")
		for _, m := range catalog.Metrics() {
			e, _ := catalog.Lookup(m)
			s := catalog.SpecFor(m)
			unit := "%"
			if e.Computation == catalog.ComputeRatio {
				unit = "pp"
			}
			fmt.Fprintf(w, "%s\t%s\t%v\t%.1f%s\t%.1f%s\t%.1f%s\t%v\n",
				m, e.Computation, e.Fields(),
				s.Tight*100, unit, s.Loose*100, unit, s.Approx*100, unit,
				catalog.Summable(m))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		g, ga := catalog.Growth(false), catalog.Growth(true)
		b, ba := catalog.BPS(false), catalog.BPS(true)
		fmt.Fprintf(out, "\ngrowth claims:   %.1f / %.1f pp (approximate %.1f / %.1f pp)\n", g.Tight, g.Loose, ga.Tight, ga.Loose)
		fmt.Fprintf(out, "bps changes:     %.0f / %.0f bps (approximate %.0f / %.0f bps)\n", b.Tight, b.Loose, ba.Tight, ba.Loose)
		fmt.Fprintf(out, "per-share level: $%.3f absolute before percent bands\n", catalog.PerShareAbs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
