package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/application"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/config"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/feed"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/pipeline"
)

var (
	outagesFile   string
	discoveryFile string
	databasePath  string
	modeFlag      string
	retainDays    int
	resolveDays   int

	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "mdu-looking-glass",
	Short: "MDU network outage reconciliation and query service",
	Long: `MDU Looking Glass ingests network discovery and outage exports for
multi-dwelling-unit properties into an embedded store and serves the
reconciled picture over a read-only API.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("mdu-looking-glass %s\n", version)
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one outage export, optionally with a discovery export",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.NewLogger()

		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err.Error())
		}
		if databasePath != "" {
			cfg.DatabasePath = databasePath
		}
		if retainDays > 0 {
			cfg.RetainDays = retainDays
		}

		mode, err := pipeline.ParseMode(modeFlag)
		if err != nil {
			log.Fatal(err.Error())
		}

		db := openDatabase(cfg, log)

		processor := pipeline.NewProcessor(db, log, clockwork.NewRealClock(), cfg.ReportDir, cfg.OutageThresholdPercent)
		summary, err := processor.Run(pipeline.RunOptions{
			OutagesFile:   outagesFile,
			DiscoveryFile: discoveryFile,
			Mode:          mode,
			RetainDays:    cfg.RetainDays,
		})
		if err != nil {
			log.Fatalf("Processing failed: %s", err.Error())
		}

		log.Infof("Processing completed: %d outages inserted, %d duplicates skipped, %d networks, %d properties",
			summary.Ingest.Inserted,
			summary.Ingest.DuplicatesSkipped,
			summary.FinalNetworkCount,
			summary.FinalPropertyCount,
		)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only query API",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.NewLogger()

		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err.Error())
		}
		if databasePath != "" {
			cfg.DatabasePath = databasePath
		}

		db := openDatabase(cfg, log)

		application.CreateRouterAndStartServing(log, db, cfg.ServicePort, cfg.OutageThresholdPercent)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the latest outage export from the Eero organization API",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.NewLogger()

		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err.Error())
		}
		if cfg.EeroAPIToken == "" {
			log.Fatal("EERO_API_TOKEN must be set for fetch")
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		client := feed.NewClient(cfg.EeroAPIBaseURL, cfg.EeroAPIToken, log)
		path, err := client.Download(ctx, cfg.InputsDir)
		if err != nil {
			log.Fatalf("Download failed: %s", err.Error())
		}

		log.Infof("Downloaded outage export to %s", path)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve end times of multi-day outages via the Eero organization API",
	Long: `The daily outage exports split an outage that crosses midnight into
per-day rows. resolve re-checks recent ongoing and multi-day outages against
the per-network outage history endpoint and stores their actual end times.`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.NewLogger()

		cfg, err := config.Load()
		if err != nil {
			log.Fatal(err.Error())
		}
		if cfg.EeroAPIToken == "" {
			log.Fatal("EERO_API_TOKEN must be set for resolve")
		}
		if databasePath != "" {
			cfg.DatabasePath = databasePath
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		db := openDatabase(cfg, log)
		client := feed.NewClient(cfg.EeroAPIBaseURL, cfg.EeroAPIToken, log)

		resolver := pipeline.NewResolver(db, client, log, clockwork.NewRealClock())
		summary, err := resolver.Run(ctx, resolveDays)
		if err != nil {
			log.Fatalf("Resolution failed: %s", err.Error())
		}

		log.Infof("Checked %d outages: %d resolved, %d corrected, %d lookup failures",
			summary.Checked, summary.Resolved, summary.Corrected, summary.Failed)
	},
}

func openDatabase(cfg *config.Config, log logging.Logger) *database.Database {
	var connect database.ConnectorFunc
	if cfg.DatabaseDriver == "postgres" {
		connect = database.NewPostgreSQLConnector(cfg.DBHost, cfg.DBUser, cfg.DBName, cfg.DBPassword, cfg.DBSSLMode, log)
	} else {
		connect = database.NewSQLiteConnector(cfg.DatabasePath)
	}

	db, err := database.NewDatabase(connect, log)
	if err != nil {
		log.Fatalf("Failed to connect to database: %s", err.Error())
	}
	return db
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databasePath, "database", "", "Path to the sqlite database file (overrides LOOKING_GLASS_DB_PATH)")

	processCmd.Flags().StringVar(&outagesFile, "outages-file", "", "CSV export of network outages (required)")
	processCmd.Flags().StringVar(&discoveryFile, "discovery-file", "", "CSV export of discovered networks")
	processCmd.Flags().StringVar(&modeFlag, "mode", "append", "Processing mode: append or rebuild")
	processCmd.Flags().IntVar(&retainDays, "retain-days", 0, "Days of outage history to retain (overrides LOOKING_GLASS_RETAIN_DAYS)")
	processCmd.MarkFlagRequired("outages-file")

	resolveCmd.Flags().IntVar(&resolveDays, "days", 3, "How many days back to look for unresolved outages")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
