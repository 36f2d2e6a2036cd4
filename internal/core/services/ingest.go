package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
	"github.com/custodia-labs/vidhi/internal/core/ports/driving"
	"github.com/custodia-labs/vidhi/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultStoreTimeout bounds a single embedding or vector store call
// during ingestion.
const DefaultStoreTimeout = 30 * time.Second

// IngestConfig holds ingestion batching and readiness settings.
type IngestConfig struct {
	EmbedBatchSize    int
	UpsertBatchSize   int
	ReadyTimeout      time.Duration
	ReadyPollInterval time.Duration

	// CallTimeout bounds each embed, describe, create and upsert call.
	// Zero means DefaultStoreTimeout.
	CallTimeout time.Duration

	// Region is passed to CreateIndex as a placement hint.
	Region string
}

// IngestConfigFrom derives an IngestConfig from settings, applying defaults.
func IngestConfigFrom(s domain.IngestSettings, region string) IngestConfig {
	cfg := IngestConfig{
		EmbedBatchSize:    s.EmbedBatchSize,
		UpsertBatchSize:   s.UpsertBatchSize,
		ReadyTimeout:      s.ReadyTimeout,
		ReadyPollInterval: s.ReadyPollInterval,
		CallTimeout:       DefaultStoreTimeout,
		Region:            region,
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = domain.DefaultEmbedBatchSize
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = domain.DefaultUpsertBatchSize
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = domain.DefaultReadyTimeout
	}
	if cfg.ReadyPollInterval <= 0 {
		cfg.ReadyPollInterval = domain.DefaultReadyPollInterval
	}
	return cfg
}

// indexError marks failures that abort the whole run for an index.
type indexError struct {
	err error
}

func (e *indexError) Error() string { return e.err.Error() }
func (e *indexError) Unwrap() error { return e.err }

// IngestService coordinates normalisation, chunking, embedding and upsert
// of legal documents into a vector store.
type IngestService struct {
	normaliser driven.Normaliser
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	bindings   []domain.IndexBinding
	cfg        IngestConfig
	retry      RetryPolicy
	readFile   func(string) ([]byte, error)

	mu    sync.Mutex
	ready map[string]int // collection -> verified dimension
}

// NewIngestService creates an ingestion service. embedder and store may be
// nil for dry runs.
func NewIngestService(
	normaliser driven.Normaliser,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	bindings []domain.IndexBinding,
	cfg IngestConfig,
) *IngestService {
	return &IngestService{
		normaliser: normaliser,
		pipeline:   pipeline,
		embedder:   embedder,
		store:      store,
		bindings:   bindings,
		cfg:        cfg,
		retry:      DefaultRetryPolicy(),
		readFile:   os.ReadFile,
		ready:      make(map[string]int),
	}
}

// SetRetryPolicy replaces the policy used for embed and upsert batches.
func (s *IngestService) SetRetryPolicy(p RetryPolicy) {
	s.retry = p
}

// IngestPaths ingests every file, and every *.json file directly inside
// every directory, into the logical index. Per-file failures are recorded
// and the run continues; an index-level failure stops the run.
func (s *IngestService) IngestPaths(
	ctx context.Context, index string, paths []string, opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	start := time.Now()
	report := &domain.IngestReport{Index: index, DryRun: opts.DryRun}
	defer func() { report.Duration = time.Since(start) }()

	if _, err := s.binding(index); err != nil {
		report.Aborted = err
		return report, err
	}

	files, missing := expandPaths(paths)
	report.Files = append(report.Files, missing...)

	logger.Section("Ingest")
	logger.Info("Ingesting %d file(s) into %s", len(files), index)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			report.Aborted = err
			return report, err
		}

		result := s.IngestFile(ctx, index, path, opts)
		report.Files = append(report.Files, result)

		var ie *indexError
		if errors.As(result.Err, &ie) {
			report.Aborted = ie.err
			return report, ie.err
		}
	}

	logger.Info("Ingestion complete: %d succeeded, %d failed", report.Succeeded(), len(report.Failed()))
	return report, nil
}

// IngestFile ingests one file into the logical index.
func (s *IngestService) IngestFile(
	ctx context.Context, index, path string, opts domain.IngestOptions,
) domain.FileResult {
	result := domain.FileResult{Path: path}

	binding, err := s.binding(index)
	if err != nil {
		result.Err = err
		return result
	}

	chunks, err := s.prepare(ctx, path)
	if err != nil {
		result.Err = err
		logger.Warn("Skipping %s: %v", path, err)
		return result
	}
	result.Chunks = len(chunks)

	if opts.DryRun || len(chunks) == 0 {
		logger.Info("%s: %d chunks (not written)", filepath.Base(path), len(chunks))
		return result
	}

	if err := s.write(ctx, binding.Collection, chunks); err != nil {
		result.Err = fmt.Errorf("ingest %s: %w", filepath.Base(path), err)
		return result
	}
	logger.Info("%s: upserted %d chunks into %s", filepath.Base(path), len(chunks), binding.Collection)
	return result
}

// Indexes describes every configured index.
func (s *IngestService) Indexes(ctx context.Context) ([]driving.IndexStatus, error) {
	if s.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	statuses := make([]driving.IndexStatus, 0, len(s.bindings))
	for _, b := range s.bindings {
		callCtx, cancel := s.call(ctx)
		desc, err := s.store.DescribeIndex(callCtx, b.Collection)
		cancel()
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("describe %s: %w", b.Collection, err)
		}
		statuses = append(statuses, driving.IndexStatus{Binding: b, Description: desc})
	}
	return statuses, nil
}

// call derives the context for one embedding or store request.
func (s *IngestService) call(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (s *IngestService) binding(index string) (domain.IndexBinding, error) {
	b, ok := domain.FindIndexBinding(s.bindings, index)
	if !ok {
		return b, fmt.Errorf("unknown index %q: %w", index, domain.ErrInvalidInput)
	}
	return b, nil
}

// prepare reads, normalises and chunks a file, then assigns IDs and the
// stored metadata.
func (s *IngestService) prepare(ctx context.Context, path string) ([]domain.Chunk, error) {
	data, err := s.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	provisions, err := s.normaliser.Normalise(ctx, path, data)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", filepath.Base(path), err)
	}

	var chunks []domain.Chunk
	for i := range provisions {
		out, err := s.pipeline.Process(ctx, &provisions[i])
		if err != nil {
			return nil, fmt.Errorf("process %s: %w", filepath.Base(path), err)
		}
		chunks = append(chunks, out...)
	}

	source := filepath.Base(path)
	sourceType := domain.DetectSourceType(source)
	for i := range chunks {
		c := &chunks[i]
		c.ID = domain.ChunkID(source, i, c.Text)
		meta := make(map[string]any, len(c.Metadata)+3)
		for k, v := range c.Metadata {
			meta[k] = v
		}
		meta[domain.MetaSource] = source
		meta[domain.MetaType] = string(sourceType)
		meta[domain.MetaText] = c.Text
		c.Metadata = domain.SanitizeMetadata(meta)
	}

	logger.Debug("%s: %d provisions, %d chunks", source, len(provisions), len(chunks))
	return chunks, nil
}

// write embeds chunks in batches, creating the index once the first
// embedding reveals its dimension, then upserts in batches.
func (s *IngestService) write(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return domain.ErrVectorStoreUnavailable
	}

	dimension := 0
	for start := 0; start < len(chunks); start += s.cfg.EmbedBatchSize {
		batch := chunks[start:min(start+s.cfg.EmbedBatchSize, len(chunks))]
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		var vectors [][]float32
		err := s.retry.Do(ctx, "embed batch", func(ctx context.Context) error {
			callCtx, cancel := s.call(ctx)
			defer cancel()
			var err error
			vectors, err = s.embedder.EmbedBatch(callCtx, texts)
			return err
		})
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embed batch: got %d vectors for %d texts", len(vectors), len(batch))
		}

		if dimension == 0 {
			dimension = len(vectors[0])
			if err := s.ensureIndex(ctx, collection, dimension); err != nil {
				return &indexError{err: err}
			}
		}
		for i, v := range vectors {
			if len(v) != dimension {
				return fmt.Errorf("chunk %s has %d dimensions, index %s has %d: %w",
					batch[i].ID, len(v), collection, dimension, domain.ErrDimensionMismatch)
			}
			batch[i].Embedding = v
		}
		logger.Debug("Embedded %d/%d chunks", start+len(batch), len(chunks))
	}

	idx := s.store.Index(collection)
	for start := 0; start < len(chunks); start += s.cfg.UpsertBatchSize {
		batch := chunks[start:min(start+s.cfg.UpsertBatchSize, len(chunks))]
		records := make([]driven.VectorRecord, len(batch))
		for i, c := range batch {
			records[i] = driven.VectorRecord{ID: c.ID, Values: c.Embedding, Metadata: c.Metadata}
		}
		if err := s.retry.Do(ctx, "upsert batch", func(ctx context.Context) error {
			callCtx, cancel := s.call(ctx)
			defer cancel()
			return idx.Upsert(callCtx, records)
		}); err != nil {
			return err
		}
		logger.Debug("Upserted %d/%d chunks", start+len(batch), len(chunks))
	}
	return nil
}

// ensureIndex creates collection if needed and waits until it is ready.
// An existing index must have the given dimension. The whole exchange is
// bounded by the readiness timeout.
func (s *IngestService) ensureIndex(ctx context.Context, collection string, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dim, ok := s.ready[collection]; ok {
		if dim != dimension {
			return fmt.Errorf("index %s has dimension %d, embeddings have %d: %w",
				collection, dim, dimension, domain.ErrDimensionMismatch)
		}
		return nil
	}

	readyCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	err := s.prepareIndex(readyCtx, collection, dimension)
	if err != nil && ctx.Err() == nil && readyCtx.Err() != nil && !errors.Is(err, domain.ErrIndexNotReady) {
		return fmt.Errorf("index %s after %s: %w: %w", collection, s.cfg.ReadyTimeout, domain.ErrIndexNotReady, err)
	}
	if err != nil {
		return err
	}
	s.ready[collection] = dimension
	return nil
}

func (s *IngestService) prepareIndex(ctx context.Context, collection string, dimension int) error {
	callCtx, cancel := s.call(ctx)
	desc, err := s.store.DescribeIndex(callCtx, collection)
	cancel()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Info("Creating index %s (dimension %d)", collection, dimension)
		spec := domain.IndexSpec{
			Name:      collection,
			Dimension: dimension,
			Metric:    domain.MetricCosine,
			Region:    s.cfg.Region,
		}
		callCtx, cancel := s.call(ctx)
		err := s.store.CreateIndex(callCtx, spec)
		cancel()
		if err != nil {
			return fmt.Errorf("create index %s: %w", collection, err)
		}
	case err != nil:
		return fmt.Errorf("describe index %s: %w", collection, err)
	case desc.Dimension != dimension:
		return fmt.Errorf("index %s has dimension %d, embeddings have %d: %w",
			collection, desc.Dimension, dimension, domain.ErrDimensionMismatch)
	case desc.Ready:
		return nil
	}

	return s.waitReady(ctx, collection)
}

// waitReady polls DescribeIndex until the index reports ready or the
// deadline of ctx passes.
func (s *IngestService) waitReady(ctx context.Context, collection string) error {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(s.cfg.ReadyTimeout)
	}
	for {
		callCtx, cancel := s.call(ctx)
		desc, err := s.store.DescribeIndex(callCtx, collection)
		cancel()
		if err == nil && desc.Ready {
			return nil
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Describe %s failed while waiting: %v", collection, err)
		}
		if !time.Now().Add(s.cfg.ReadyPollInterval).Before(deadline) {
			return fmt.Errorf("index %s after %s: %w", collection, s.cfg.ReadyTimeout, domain.ErrIndexNotReady)
		}
		if err := sleepContext(ctx, s.cfg.ReadyPollInterval); err != nil {
			return err
		}
	}
}

// expandPaths turns files and directories into a sorted file list.
// Directories contribute their *.json files, non-recursively. Paths that
// cannot be read are returned as failed results.
func expandPaths(paths []string) ([]string, []domain.FileResult) {
	var files []string
	var failed []domain.FileResult
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			failed = append(failed, domain.FileResult{Path: p, Err: fmt.Errorf("stat %s: %w", p, err)})
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			failed = append(failed, domain.FileResult{Path: p, Err: fmt.Errorf("read dir %s: %w", p, err)})
			continue
		}
		var dirFiles []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".json") {
				dirFiles = append(dirFiles, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(dirFiles)
		for _, f := range dirFiles {
			add(f)
		}
	}
	return files, failed
}
