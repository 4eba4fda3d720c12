package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/jaskgrid/internal/tui"
)

func newExportCmd() *cobra.Command {
	var (
		q      tui.Query
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered, sorted ledger to stdout",
		Example: `  jaskgrid export --search uber --sort amount:desc
  jaskgrid export --category Income --columns date,amount --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, repos, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := tui.LoadLedger(cmd.Context(), repos)
			if err != nil {
				return err
			}
			if q.PageSize == 0 {
				q.PageSize = cfg.Grid.PageSize
			}
			if err := tui.ExportLedger(cmd.OutOrStdout(), rows, q, format); err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&format, "format", "csv", "Output format (csv or yaml)")
	f.StringVar(&q.Search, "search", "", "Case-insensitive search over searchable columns")
	f.StringVar(&q.Category, "category", "", "Only rows in this category path")
	f.StringVar(&q.Sort, "sort", "", "Sort as key[:asc|:desc]")
	f.StringSliceVar(&q.Columns, "columns", nil, "Columns to write (default: visible columns)")
	f.IntVar(&q.Page, "page", 0, "Write only this page (default: all rows)")
	f.IntVar(&q.PageSize, "rows", 0, "Rows per page when --page is set (default grid.page_size)")
	return cmd
}
