package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/correction"
	"github.com/pable/go-goalie-metrics/internal/metrics"
	"github.com/pable/go-goalie-metrics/internal/report"
)

var correctURL string

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Fill in unknown goalie handedness from the people service",
	Long: `Look up every stored goalie whose catching hand is unknown and record the
answer. Goalies the service has no answer for are left unchanged and listed in
the report; transient failures are retried (lookup_retries, lookup_backoff).`,
	Args: cobra.NoArgs,
	RunE: runCorrect,
}

func init() {
	correctCmd.Flags().StringVar(&correctURL, "url", "", "people service base URL (default from config)")
}

func runCorrect(cmd *cobra.Command, _ []string) error {
	base := cfg.PeopleURL
	if correctURL != "" {
		base = correctURL
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	rec := metrics.New()
	c := &correction.Corrector{
		Store:   db,
		Lookup:  correction.NewClient(base, cfg.LookupRPM, cfg.LookupTimeout),
		Retries: cfg.LookupRetries,
		Timeout: cfg.LookupTimeout,
		Backoff: cfg.LookupBackoff,
		Logger:  logger,
		Metrics: rec,
	}
	rep, runErr := c.Run(cmd.Context())
	if rep != nil {
		report.PrintCorrectionReport(os.Stdout, rep)
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("metrics not written", "err", err)
	}
	return runErr
}
