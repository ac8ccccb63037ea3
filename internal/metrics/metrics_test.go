package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func textfile(t *testing.T, r *Recorder) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goaliemetrics.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	return string(data)
}

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.IngestFile(OutcomeProcessed)
	r.IngestFile(OutcomeProcessed)
	r.IngestFile(OutcomeFailed)
	r.IngestCommitted(2, 40)
	r.IngestRun(1500 * time.Millisecond)
	r.Correction(OutcomeCorrected)
	r.LookupRetry()

	out := textfile(t, r)
	for _, want := range []string{
		`goaliemetrics_ingest_files_total{outcome="processed"} 2`,
		`goaliemetrics_ingest_files_total{outcome="failed"} 1`,
		`goaliemetrics_ingest_players_added_total 2`,
		`goaliemetrics_ingest_events_added_total 40`,
		`goaliemetrics_ingest_run_duration_seconds_count 1`,
		`goaliemetrics_correction_players_total{outcome="corrected"} 1`,
		`goaliemetrics_correction_lookup_retries_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q:\n%s", want, out)
		}
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.IngestFile(OutcomeSkipped)
	r.IngestCommitted(1, 1)
	r.IngestRun(time.Second)
	r.Correction(OutcomeAbsent)
	r.LookupRetry()
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("nil recorder WriteTextfile: %v", err)
	}
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Errorf("empty path: %v", err)
	}
}
