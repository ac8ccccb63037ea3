package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/config"
	"github.com/pable/go-goalie-metrics/internal/storage"
)

var (
	cfgFile  string
	dbPath   string
	logLevel string

	// cfg and logger are set by PersistentPreRunE before any command runs.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goaliemetrics",
	Short: "NHL goaltender positional save metrics",
	Long: `Ingest NHL play-by-play game documents into a local SQLite store and
report glove-side vs stick-side save percentages per goalie and season.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $GOALIE_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.goaliemetrics/goalies.db)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(goaliesCmd)
	rootCmd.AddCommand(seasonsCmd)
	rootCmd.AddCommand(shotsCmd)
	rootCmd.AddCommand(sidesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadConfig resolves .env, the config file, GOALIE_* env and flags, in that
// order, and builds the logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		c.DBPath = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}

	cfg = c
	logger = newLogger(c.LogLevel)
	slog.SetDefault(logger)
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openStore opens the configured database, creating its directory if needed.
func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}
