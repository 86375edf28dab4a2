package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"actualboard/internal/actual"
	"actualboard/internal/backend"
	"actualboard/internal/cli"
	"actualboard/internal/config"
	apphttp "actualboard/internal/http"
	"actualboard/internal/log"
	"actualboard/internal/report"
)

var (
	flagBackend  string
	flagFixtures string
	flagSnapshot string
	flagPretty   bool
	flagTimeout  time.Duration
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "actualboard-report",
	Short: "Build one financial report and print it as JSON",
	Long: `actualboard-report runs the monthly aggregation once, without the
server: it reads the configured record source, builds the net worth,
cashflow and savings rate series and writes the full report bundle to
stdout. Logs go to stderr, so the output can be piped directly.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagBackend, "backend", "", "record source kind, memory or sqlite (overrides config)")
	rootCmd.Flags().StringVar(&flagFixtures, "fixtures", "", "fixtures directory for the memory backend (overrides config)")
	rootCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "snapshot database path for the sqlite backend (overrides config)")
	rootCmd.Flags().BoolVar(&flagPretty, "pretty", false, "indent the JSON output")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 2*time.Minute, "overall run timeout")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log at debug level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := cli.SetupCLILogger(level)
	cli.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger.Logger).Open(ctx, backendConfig)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err)
			}
		}()
	}

	records, err := actual.FetchRecords(ctx, res.Source)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	snap, err := report.NewSnapshot(records)
	if err != nil {
		return fmt.Errorf("build snapshot: %w", err)
	}
	rep := report.Build(ctx, snap, cfg.Options(), time.Now())

	enc := json.NewEncoder(os.Stdout)
	if flagPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(apphttp.NewDashboard(rep, snap, cfg.Options()))
}

// applyFlags lets command line flags override the loaded config.
func applyFlags(cfg *config.Config) {
	if flagBackend != "" {
		cfg.Backend.Kind = flagBackend
	}
	if flagFixtures != "" {
		cfg.Backend.FixturesDir = flagFixtures
	}
	if flagSnapshot != "" {
		cfg.Backend.SnapshotDB = flagSnapshot
	}
}
