package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-goalie-metrics/internal/ingest"
	"github.com/pable/go-goalie-metrics/internal/metrics"
	"github.com/pable/go-goalie-metrics/internal/report"
)

var (
	ingestWorkers int
	ingestLedger  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [corpus-dir]",
	Short: "Ingest game documents from a corpus directory",
	Long: `Walk the corpus directory for game documents (.json, .json.gz, .json.bz2,
.json.zst), parse them in parallel and store goalie shot events.

Documents already recorded in the ledger are skipped, so running ingest again
over a growing corpus only picks up new files. Documents that fail to parse are
reported and retried on the next run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestWorkers, "workers", "w", 0, "parallel parsers (default from config)")
	ingestCmd.Flags().StringVar(&ingestLedger, "ledger", "", "ledger file (default from config)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	corpus := cfg.CorpusDir
	if len(args) == 1 {
		corpus = args[0]
	}
	workers := cfg.Workers
	if ingestWorkers > 0 {
		workers = ingestWorkers
	}
	ledgerPath := cfg.Ledger()
	if ingestLedger != "" {
		ledgerPath = ingestLedger
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	ledger, err := ingest.LoadLedger(ledgerPath)
	if err != nil {
		return err
	}

	rec := metrics.New()
	p := ingest.New(db, ledger, workers, logger)
	p.Metrics = rec

	rep, runErr := p.Run(cmd.Context(), corpus)
	if rep != nil {
		report.PrintIngestReport(os.Stdout, rep)
	}
	if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("metrics not written", "err", err)
	}
	return runErr
}
