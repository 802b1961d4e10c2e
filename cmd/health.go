package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the prospecting backend is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newBackend(cfg).Health(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", cfg.Backend.BaseURL, h.Status, h.Timestamp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
