// Package qdrant provides a vector store backed by a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"crypto/tls"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/vidhi/internal/core/domain"
	"github.com/custodia-labs/vidhi/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultHost    = "localhost"
	DefaultPort    = 6334
	DefaultTimeout = 30 * time.Second
)

// PayloadChunkID holds the caller's record ID. Qdrant point IDs must be
// UUIDs or integers, so records are stored under a UUIDv5 of their ID.
const PayloadChunkID = "chunk_id"

// pointNamespace seeds the UUIDv5 point IDs.
var pointNamespace = uuid.MustParse("6f1c7a2e-3b5d-4c8e-9a0f-7d2e1b4c5a69")

// Config holds connection settings.
type Config struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool

	// Timeout bounds every RPC. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Store implements driven.VectorStore on Qdrant collections.
type Store struct {
	conn        *grpc.ClientConn
	collections qdrantclient.CollectionsClient
	points      qdrantclient.PointsClient
	timeout     time.Duration

	mu   sync.Mutex
	dims map[string]int
}

// NewStore connects to Qdrant. The connection is established lazily by
// gRPC; the first RPC reports an unreachable server.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}

	creds := insecure.NewCredentials()
	if cfg.UseTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	opts := []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect to %s: %w", addr, err)
	}

	s := newStore(qdrantclient.NewCollectionsClient(conn), qdrantclient.NewPointsClient(conn))
	s.conn = conn
	if cfg.Timeout > 0 {
		s.timeout = cfg.Timeout
	}
	return s, nil
}

func newStore(collections qdrantclient.CollectionsClient, points qdrantclient.PointsClient) *Store {
	return &Store{
		collections: collections,
		points:      points,
		timeout:     DefaultTimeout,
		dims:        make(map[string]int),
	}
}

// rpc derives the context for a single RPC.
func (s *Store) rpc(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any,
		cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// ListIndexes returns collection names in sorted order.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	ctx, cancel := s.rpc(ctx)
	defer cancel()

	resp, err := s.collections.List(ctx, &qdrantclient.ListCollectionsRequest{})
	if err != nil {
		return nil, wrapErr("list collections", err)
	}
	names := make([]string, 0, len(resp.GetCollections()))
	for _, c := range resp.GetCollections() {
		names = append(names, c.GetName())
	}
	sort.Strings(names)
	return names, nil
}

// CreateIndex creates a cosine collection. Region is not used by Qdrant.
func (s *Store) CreateIndex(ctx context.Context, spec domain.IndexSpec) error {
	if spec.Name == "" || spec.Dimension <= 0 {
		return fmt.Errorf("index spec %+v: %w", spec, domain.ErrInvalidInput)
	}
	if spec.Metric != "" && spec.Metric != domain.MetricCosine {
		return fmt.Errorf("metric %q: %w", spec.Metric, domain.ErrUnsupportedType)
	}

	ctx, cancel := s.rpc(ctx)
	defer cancel()

	_, err := s.collections.Create(ctx, &qdrantclient.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: &qdrantclient.VectorsConfig{
			Config: &qdrantclient.VectorsConfig_Params{
				Params: &qdrantclient.VectorParams{
					Size:     uint64(spec.Dimension),
					Distance: qdrantclient.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("index %s already exists: %w", spec.Name, domain.ErrInvalidInput)
		}
		return wrapErr("create collection "+spec.Name, err)
	}
	return nil
}

// DescribeIndex reports a collection's dimension, point count and
// readiness. Green and yellow collections accept queries.
func (s *Store) DescribeIndex(ctx context.Context, name string) (*domain.IndexDescription, error) {
	ctx, cancel := s.rpc(ctx)
	defer cancel()

	resp, err := s.collections.Get(ctx, &qdrantclient.GetCollectionInfoRequest{CollectionName: name})
	if err != nil {
		return nil, wrapErr("describe collection "+name, err)
	}
	info := resp.GetResult()
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParams()

	desc := &domain.IndexDescription{
		Name:      name,
		Dimension: int(params.GetSize()),
		Metric:    metricOf(params.GetDistance()),
		Count:     int64(info.GetPointsCount()),
	}
	switch info.GetStatus() {
	case qdrantclient.CollectionStatus_Green, qdrantclient.CollectionStatus_Yellow:
		desc.Ready = true
	}

	if desc.Dimension > 0 {
		s.mu.Lock()
		s.dims[name] = desc.Dimension
		s.mu.Unlock()
	}
	return desc, nil
}

// Index returns a handle to a named collection.
func (s *Store) Index(name string) driven.VectorIndex {
	return &index{store: s, name: name}
}

func (s *Store) dimension(ctx context.Context, name string) (int, error) {
	s.mu.Lock()
	dim, ok := s.dims[name]
	s.mu.Unlock()
	if ok {
		return dim, nil
	}
	desc, err := s.DescribeIndex(ctx, name)
	if err != nil {
		return 0, err
	}
	return desc.Dimension, nil
}

type index struct {
	store *Store
	name  string
}

var _ driven.VectorIndex = (*index)(nil)

func (x *index) Query(ctx context.Context, vec []float32, topK int) ([]driven.VectorMatch, error) {
	dim, err := x.store.dimension(ctx, x.name)
	if err != nil {
		return nil, err
	}
	if len(vec) != dim {
		return nil, fmt.Errorf("query has %d dimensions, index %s has %d: %w",
			len(vec), x.name, dim, domain.ErrDimensionMismatch)
	}
	if topK <= 0 {
		return nil, nil
	}

	ctx, cancel := x.store.rpc(ctx)
	defer cancel()

	resp, err := x.store.points.Search(ctx, &qdrantclient.SearchPoints{
		CollectionName: x.name,
		Vector:         vec,
		Limit:          uint64(topK),
		WithPayload: &qdrantclient.WithPayloadSelector{
			SelectorOptions: &qdrantclient.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, wrapErr("search "+x.name, err)
	}

	matches := make([]driven.VectorMatch, 0, len(resp.GetResult()))
	for _, p := range resp.GetResult() {
		meta := fromPayload(p.GetPayload())
		id, _ := meta[PayloadChunkID].(string)
		delete(meta, PayloadChunkID)
		if id == "" {
			id = p.GetId().GetUuid()
		}
		matches = append(matches, driven.VectorMatch{
			ID:       id,
			Score:    float64(p.GetScore()),
			Metadata: meta,
		})
	}
	return matches, nil
}

func (x *index) Upsert(ctx context.Context, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	dim, err := x.store.dimension(ctx, x.name)
	if err != nil {
		return err
	}

	points := make([]*qdrantclient.PointStruct, 0, len(records))
	for _, r := range records {
		if len(r.Values) != dim {
			return fmt.Errorf("record %s has %d dimensions, index %s has %d: %w",
				r.ID, len(r.Values), x.name, dim, domain.ErrDimensionMismatch)
		}
		payload := toPayload(r.Metadata)
		payload[PayloadChunkID] = toValue(r.ID)
		points = append(points, &qdrantclient.PointStruct{
			Id: &qdrantclient.PointId{
				PointIdOptions: &qdrantclient.PointId_Uuid{Uuid: PointID(r.ID)},
			},
			Vectors: &qdrantclient.Vectors{
				VectorsOptions: &qdrantclient.Vectors_Vector{
					Vector: &qdrantclient.Vector{Data: r.Values},
				},
			},
			Payload: payload,
		})
	}

	ctx, cancel := x.store.rpc(ctx)
	defer cancel()

	wait := true
	_, err = x.store.points.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: x.name,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return wrapErr("upsert "+x.name, err)
	}
	return nil
}

// PointID maps a record ID to its deterministic Qdrant point UUID.
func PointID(id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(id)).String()
}

func metricOf(d qdrantclient.Distance) domain.Metric {
	switch d {
	case qdrantclient.Distance_Cosine:
		return domain.MetricCosine
	default:
		return domain.Metric(d.String())
	}
}

// wrapErr maps gRPC status codes onto domain errors.
func wrapErr(op string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("qdrant: %s: %w", op, domain.ErrNotFound)
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("qdrant: %s: %w: %w", op, domain.ErrVectorStoreUnavailable, err)
	default:
		return fmt.Errorf("qdrant: %s: %w", op, err)
	}
}
