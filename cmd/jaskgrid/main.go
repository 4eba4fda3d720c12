package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jask/jaskgrid/internal/config"
	"github.com/jask/jaskgrid/internal/database"
	"github.com/jask/jaskgrid/internal/database/repository"
	"github.com/jask/jaskgrid/internal/prefs"
	"github.com/jask/jaskgrid/internal/testdata"
	"github.com/jask/jaskgrid/internal/tui"
)

const (
	appName    = "jaskgrid"
	appVersion = "0.1.0"
)

type flags struct {
	configPath string
	dbPath     string
	exportDir  string
	pageSize   int
	seed       int
}

var (
	opts    flags
	rootCmd = &cobra.Command{
		Use:          appName,
		Short:        "Browse a transaction ledger in the terminal",
		Long:         `jaskgrid is a searchable, sortable, paginated ledger browser backed by sqlite.`,
		SilenceUsage: true,
		RunE:         run,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, appVersion)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Config file (default $JASKGRID_CONFIG or ~/.config/jaskgrid/config.toml)")
	pf.StringVar(&opts.dbPath, "db", "", "Database path (overrides database.path)")
	pf.IntVar(&opts.pageSize, "page-size", 0, "Initial rows per page (overrides grid.page_size)")
	pf.IntVar(&opts.seed, "seed", 0, "Insert N sample transactions into an empty ledger")
	rootCmd.Flags().StringVar(&opts.exportDir, "export-dir", ".", "Directory for CSV/YAML exports")

	rootCmd.AddCommand(versionCmd, newExportCmd(), newImportCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.pageSize != 0 {
		cfg.Grid.PageSize = opts.pageSize
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// openLedger migrates, seeds and opens the database.
func openLedger(ctx context.Context, cfg config.Config) (*sql.DB, tui.Repos, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, tui.Repos{}, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrationsWithDB(db); err != nil {
		_ = db.Close()
		return nil, tui.Repos{}, fmt.Errorf("migrate: %w", err)
	}
	if err := database.SeedDefaults(ctx, db); err != nil {
		_ = db.Close()
		return nil, tui.Repos{}, fmt.Errorf("seed defaults: %w", err)
	}
	repos := tui.Repos{
		Transactions: repository.NewTransactionRepo(db),
		Categories:   repository.NewCategoryRepo(db),
		Accounts:     repository.NewAccountRepo(db),
	}
	if opts.seed > 0 {
		n, err := repos.Transactions.Count(ctx, repository.TransactionFilters{})
		if err != nil {
			_ = db.Close()
			return nil, tui.Repos{}, fmt.Errorf("count transactions: %w", err)
		}
		if n == 0 {
			if err := testdata.Seed(ctx, repos.Transactions, opts.seed, 1); err != nil {
				_ = db.Close()
				return nil, tui.Repos{}, fmt.Errorf("seed samples: %w", err)
			}
			log.Printf("seeded %d sample transactions", opts.seed)
		}
	}
	return db, repos, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Printf("warn: using local timezone due to load failure: %v", err)
	}

	db, repos, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	exportDir, err := filepath.Abs(opts.exportDir)
	if err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	cfgPath := opts.configPath
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	prefsPath, err := prefs.Path()
	if err != nil {
		log.Printf("warn: view prefs disabled: %v", err)
	}
	return tui.Run(ctx, repos, tui.Options{
		Config:     cfg,
		ConfigPath: cfgPath,
		ExportDir:  exportDir,
		PrefsPath:  prefsPath,
		Location:   loc,
	})
}
