package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/dashboard"
	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/internal/view"
)

var (
	searchKeyword string
	searchZip     string
	searchMax     int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Submit a lead search and print the refreshed results",
	Long:  "Sends a search job for an activity keyword and postal code, waits for the backend to finish, then reloads and prints the lead list.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchMax > 0 {
			cfg.Search.MaxRecords = searchMax
		}
		ctrl := newController(cfg, newBackend(cfg), notify.NewWriter(cmd.ErrOrStderr()))
		return runSearch(cmd.Context(), ctrl, searchKeyword, searchZip, cmd.OutOrStdout())
	},
}

// runSearch loads the current results, submits the job and prints the
// summary and table. A failed initial load is not fatal.
func runSearch(ctx context.Context, ctrl *dashboard.Controller, keyword, zip string, out io.Writer) error {
	if err := ctrl.Mount(ctx); err != nil {
		zap.L().Warn("search: initial load failed", zap.Error(err))
	}

	zap.L().Info("submitting search",
		zap.String("keyword", keyword),
		zap.String("zipcode", zip),
	)
	if err := ctrl.Search(ctx, keyword, zip); err != nil {
		return err
	}

	if err := view.WriteSummary(out, ctrl.Summary().Summary); err != nil {
		return err
	}
	return view.WriteTable(out, ctrl.Records(lead.Criteria{}))
}

func init() {
	searchCmd.Flags().StringVar(&searchKeyword, "keyword", "", "activity keyword (e.g. Plomberie)")
	searchCmd.Flags().StringVar(&searchZip, "zip", "", "postal code (e.g. 69400)")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "listings to scrape (default from config)")
	rootCmd.AddCommand(searchCmd)
}
