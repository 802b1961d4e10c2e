package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/lead"
	"github.com/sells-group/prospect-cli/pkg/notion"
)

var pushCriteria lead.Criteria

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push the current leads into the Notion CRM database",
	Long:  "Loads the current lead list and creates one CRM page per company not already present in the Notion lead database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("push"); err != nil {
			return err
		}

		ctx := cmd.Context()
		ctrl := newController(cfg, newBackend(cfg))
		if err := ctrl.Mount(ctx); err != nil {
			return err
		}
		leads := ctrl.Records(pushCriteria)

		nc := notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RateLimit))
		res, err := notion.PushLeads(ctx, nc, cfg.Notion.LeadDB, leads)
		zap.L().Info("push complete",
			zap.Int("leads", len(leads)),
			zap.Int("created", res.Created),
			zap.Int("skipped", res.Skipped),
		)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d skipped\n", res.Created, res.Skipped)
		return nil
	},
}

func init() {
	pushCmd.Flags().StringVar(&pushCriteria.Query, "query", "", "only push leads containing this text")
	pushCmd.Flags().StringVar(&pushCriteria.Activity, "activity", "", "only push leads with this activity")
	pushCmd.Flags().StringVar(&pushCriteria.City, "city", "", "only push leads in this city")
	rootCmd.AddCommand(pushCmd)
}
