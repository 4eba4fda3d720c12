package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/jask/jaskgrid/internal/database/repository"
	"github.com/jask/jaskgrid/internal/service"
)

func newImportCmd() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a headed ledger CSV (Date, Description, Amount, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				log.Printf("warn: using local timezone due to load failure: %v", err)
			}
			db, _, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc := &service.IngestService{
				Transactions:   repository.NewTransactionRepo(db),
				Accounts:       repository.NewAccountRepo(db),
				Categories:     repository.NewCategoryRepo(db),
				DefaultAccount: account,
			}
			res, err := svc.ImportCSV(cmd.Context(), f, loc)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			for _, e := range res.Errors {
				log.Printf("skip: %v", e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "Everyday", "Account for rows without an Account column")
	return cmd
}
