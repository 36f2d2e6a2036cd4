package domain

import "time"

// IngestOptions controls one ingestion run.
type IngestOptions struct {
	// DryRun stops after normalisation and chunking. Nothing is embedded
	// or written.
	DryRun bool
}

// FileResult is the outcome of ingesting one file.
type FileResult struct {
	// Path is the file that was processed.
	Path string

	// Chunks is the number of chunks produced (and upserted unless dry-run).
	Chunks int

	// Err is set when the file failed.
	Err error
}

// IngestReport tallies an ingestion run over one index.
type IngestReport struct {
	// Index is the logical index name.
	Index string

	// Files holds one result per processed file, in processing order.
	Files []FileResult

	// DryRun mirrors the run option.
	DryRun bool

	// Aborted is set when the run stopped early, e.g. on ErrIndexNotReady.
	Aborted error

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Succeeded returns the number of files ingested without error.
func (r *IngestReport) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results of files that failed.
func (r *IngestReport) Failed() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Err != nil {
			failed = append(failed, f)
		}
	}
	return failed
}

// Chunks returns the total number of chunks across successful files.
func (r *IngestReport) Chunks() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n += f.Chunks
		}
	}
	return n
}
