package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/dashboard"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/view"
)

var (
	resultsFormat   string
	resultsOut      string
	resultsCriteria lead.Criteria
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Fetch and display the current lead list",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := view.ParseFormat(resultsFormat)
		if err != nil {
			return err
		}
		if format.Binary() && resultsOut == "" {
			return eris.Errorf("results: --out is required for %s output", format)
		}

		ctrl := newController(cfg, newBackend(cfg))
		if resultsOut == "" {
			return writeResults(cmd.Context(), ctrl, format, resultsCriteria, cmd.OutOrStdout())
		}

		f, err := os.Create(resultsOut)
		if err != nil {
			return eris.Wrapf(err, "results: create %s", resultsOut)
		}
		defer f.Close() //nolint:errcheck

		if err := writeResults(cmd.Context(), ctrl, format, resultsCriteria, f); err != nil {
			return err
		}
		zap.L().Info("results written", zap.String("path", resultsOut), zap.String("format", string(format)))
		return nil
	},
}

// writeResults loads the lead list and encodes the filtered records. A load
// failure is returned since there is nothing stale to fall back to.
func writeResults(ctx context.Context, ctrl *dashboard.Controller, format view.Format, criteria lead.Criteria, out io.Writer) error {
	if err := ctrl.Mount(ctx); err != nil {
		return err
	}
	records := ctrl.Records(criteria)
	if format == view.FormatTable {
		if err := view.WriteSummary(out, ctrl.Summary().Summary); err != nil {
			return err
		}
	}
	return view.Write(out, format, records)
}

func init() {
	f := resultsCmd.Flags()
	f.StringVar(&resultsFormat, "format", "table", "output format: table, json, yaml or xlsx")
	f.StringVar(&resultsOut, "out", "", "write to this file instead of stdout")
	f.StringVar(&resultsCriteria.Query, "query", "", "keep leads containing this text in any field")
	f.StringVar(&resultsCriteria.Activity, "activity", "", "keep leads with this activity")
	f.StringVar(&resultsCriteria.City, "city", "", "keep leads in this city")
	rootCmd.AddCommand(resultsCmd)
}
