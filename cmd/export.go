package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut      string
	exportPrintURL bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download the backend lead export (JSON)",
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := newBackend(cfg)
		if exportPrintURL {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), backend.ExportURL())
			return nil
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportOut)
		}
		defer f.Close() //nolint:errcheck

		n, err := backend.DownloadExport(cmd.Context(), f)
		if err != nil {
			return err
		}
		zap.L().Info("export downloaded",
			zap.String("url", backend.ExportURL()),
			zap.String("path", exportOut),
			zap.Int64("bytes", n),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "prospects.json", "destination file; the backend serves the export as a JSON array")
	exportCmd.Flags().BoolVar(&exportPrintURL, "print-url", false, "print the direct download link instead of downloading")
	rootCmd.AddCommand(exportCmd)
}
