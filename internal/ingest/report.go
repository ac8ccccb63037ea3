package ingest

import (
	"fmt"
	"time"
)

// ParseError is a document that could not be opened, decoded or validated.
// The document is left out of the ledger and retried on the next run.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.File, e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// CommitError is a document whose store transaction failed and was rolled back.
type CommitError struct {
	File string
	Err  error
}

func (e *CommitError) Error() string { return fmt.Sprintf("commit %s: %v", e.File, e.Err) }
func (e *CommitError) Unwrap() error { return e.Err }

// FileFailure pairs a document with the error that stopped it.
type FileFailure struct {
	File string
	Err  error
}

// Report tracks what one ingestion run did.
type Report struct {
	RunID        string
	Processed    []string
	Skipped      []string
	Failed       []FileFailure
	PlayersAdded int
	EventsAdded  int
	Duration     time.Duration
}

func (r *Report) FilesProcessed() int { return len(r.Processed) }
func (r *Report) FilesSkipped() int   { return len(r.Skipped) }
func (r *Report) FilesFailed() int    { return len(r.Failed) }

func (r *Report) fail(file string, err error) {
	r.Failed = append(r.Failed, FileFailure{File: file, Err: err})
}

// Summary returns a one-line summary of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf(
		"run=%s processed=%d skipped=%d failed=%d players=%d events=%d took=%s",
		r.RunID, r.FilesProcessed(), r.FilesSkipped(), r.FilesFailed(),
		r.PlayersAdded, r.EventsAdded, r.Duration.Round(time.Millisecond),
	)
}
