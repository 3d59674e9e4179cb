package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/foxseedlab/callinterview/internal/export"
	"github.com/foxseedlab/callinterview/internal/repository"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportFormat string
	exportAll    bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "xlsx, csv or json (default: from the output extension)")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "include calls that did not complete")

	_ = exportCmd.MarkFlagRequired("output")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export interview responses to a spreadsheet, CSV or JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := exportFormat
		if name == "" {
			name = filepath.Ext(exportOutput)
		}
		format, err := export.ParseFormat(name)
		if err != nil {
			return err
		}

		injector, err := newInjector()
		if err != nil {
			return err
		}
		cfg := do.MustInvoke[*config.Config](injector)
		repo, err := do.Invoke[repository.Repository](injector)
		if err != nil {
			return err
		}
		defer repo.Close()

		list, err := export.Load(cmd.Context(), repo, exportAll)
		if err != nil {
			return err
		}
		loc, err := time.LoadLocation(cfg.TranscriptTimezone)
		if err != nil {
			loc = time.UTC
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		if err := export.Write(f, format, export.Rows(list, loc)); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d responses to %s\n", len(list), exportOutput)
		return nil
	},
}
