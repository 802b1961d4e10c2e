package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/config"
	"github.com/sells-group/prospect-cli/internal/dashboard"
	"github.com/sells-group/prospect-cli/internal/notify"
	"github.com/sells-group/prospect-cli/pkg/prospect"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "prospect-cli",
	Short: "Lead prospecting dashboard client",
	Long:  "Submits lead-search jobs (activity keyword + postal code) to the prospecting backend, then views, filters, exports and pushes the enriched leads it returns.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

// newBackend builds the prospecting API client from config.
func newBackend(c *config.Config) prospect.Client {
	return prospect.NewClient(c.Backend.BaseURL,
		prospect.WithTimeout(time.Duration(c.Backend.TimeoutSecs)*time.Second),
		prospect.WithRateLimit(c.Backend.RateLimit),
	)
}

// newController wires a dashboard over backend. Failure notices are logged,
// forwarded to the configured webhook and handed to extra.
func newController(c *config.Config, backend dashboard.Backend, extra ...notify.Notifier) *dashboard.Controller {
	notifiers := notify.Multi{notify.Log{}, notify.NewWebhook(c.Notify)}
	notifiers = append(notifiers, extra...)
	return dashboard.New(backend,
		dashboard.WithNotifier(notifiers),
		dashboard.WithMaxRecords(c.Search.MaxRecords),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
