package driving

import (
	"context"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

// IngestService loads legal documents into a named index.
type IngestService interface {
	// IngestFile ingests a single file into the logical index.
	IngestFile(ctx context.Context, index, path string, opts domain.IngestOptions) domain.FileResult

	// IngestPaths ingests files and directories (non-recursive, *.json)
	// into the logical index. Per-file failures are recorded in the
	// report; a run-level failure such as domain.ErrIndexNotReady is
	// returned as the error and recorded in report.Aborted.
	IngestPaths(ctx context.Context, index string, paths []string, opts domain.IngestOptions) (*domain.IngestReport, error)

	// Indexes describes every configured index. Indexes that do not exist
	// yet are reported with a zero dimension and Ready false.
	Indexes(ctx context.Context) ([]IndexStatus, error)
}

// IndexStatus pairs a binding with its store description.
type IndexStatus struct {
	Binding     domain.IndexBinding
	Description *domain.IndexDescription
}
