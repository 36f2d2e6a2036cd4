package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vidhi/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [index] [paths...]", ingestCmd.Use)
}

func TestIngestCmd_Flags(t *testing.T) {
	require.NotNil(t, ingestCmd.Flags().Lookup("dry-run"))
	watch := ingestCmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)
}

func TestIngestCmd_RequiresIndexAndPath(t *testing.T) {
	defer setServices(Services{Ingest: &mockIngestService{}})()

	_, err := executeCommand(t, "", "ingest", "constitution")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	defer setServices(Services{})()

	_, err := executeCommand(t, "", "ingest", "constitution", "coi.json")

	assert.ErrorIs(t, err, errIngestNotConfigured)
}

func TestIngestCmd_PrintsReport(t *testing.T) {
	svc := &mockIngestService{
		report: &domain.IngestReport{
			Index: "constitution",
			Files: []domain.FileResult{
				{Path: "data/coi.json", Chunks: 412},
				{Path: "data/amendments.json", Chunks: 37},
			},
			Duration: 1500 * time.Millisecond,
		},
	}
	defer setServices(Services{Ingest: svc})()

	out, err := executeCommand(t, "", "ingest", "constitution", "data/coi.json", "data/amendments.json")

	require.NoError(t, err)
	assert.Contains(t, out, "✓ data/coi.json (412 chunks)")
	assert.Contains(t, out, "Ingested 2/2 files into constitution, 449 chunks in 1.5s")
	require.Len(t, svc.calls, 1)
	assert.Equal(t, "constitution", svc.calls[0].index)
	assert.Equal(t, []string{"data/coi.json", "data/amendments.json"}, svc.calls[0].paths)
	assert.False(t, svc.calls[0].opts.DryRun)
}

func TestIngestCmd_DryRun(t *testing.T) {
	svc := &mockIngestService{
		report: &domain.IngestReport{
			Index:  "criminal",
			DryRun: true,
			Files:  []domain.FileResult{{Path: "bns.json", Chunks: 20}},
		},
	}
	defer setServices(Services{Ingest: svc})()

	out, err := executeCommand(t, "", "ingest", "--dry-run", "criminal", "bns.json")

	require.NoError(t, err)
	assert.True(t, svc.calls[0].opts.DryRun)
	assert.Contains(t, out, "Dry run: 1/1 files into criminal, 20 chunks")
}

func TestIngestCmd_FileFailures(t *testing.T) {
	svc := &mockIngestService{
		report: &domain.IngestReport{
			Index: "criminal",
			Files: []domain.FileResult{
				{Path: "bns.json", Chunks: 20},
				{Path: "broken.json", Err: domain.ErrInvalidDocument},
			},
		},
	}
	defer setServices(Services{Ingest: svc})()

	out, err := executeCommand(t, "", "ingest", "criminal", "bns.json", "broken.json")

	assert.Contains(t, out, "✗ broken.json")
	assert.Contains(t, out, "Ingested 1/2 files")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
}

func TestIngestCmd_Aborted(t *testing.T) {
	svc := &mockIngestService{
		report: &domain.IngestReport{Index: "criminal", Aborted: domain.ErrIndexNotReady},
		err:    domain.ErrIndexNotReady,
	}
	defer setServices(Services{Ingest: svc})()

	out, err := executeCommand(t, "", "ingest", "criminal", "bns.json")

	assert.Contains(t, out, "Aborted:")
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

func TestIngestCmd_ServiceErrorWithoutReport(t *testing.T) {
	svc := &mockIngestService{err: errors.New("unknown index")}
	defer setServices(Services{Ingest: svc})()

	_, err := executeCommand(t, "", "ingest", "nope", "x.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingesting into nope")
}

func TestIngestCmd_WatchRejectsDryRun(t *testing.T) {
	svc := &mockIngestService{}
	defer setServices(Services{Ingest: svc})()

	_, err := executeCommand(t, "", "ingest", "--watch", "--dry-run", "criminal", "data")

	require.Error(t, err)
	assert.Empty(t, svc.calls)
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "y", plural(1, "y", "ies"))
	assert.Equal(t, "ies", plural(2, "y", "ies"))
}
