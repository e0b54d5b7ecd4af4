package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

// QdrantStorage stores paper vectors in Qdrant.
type QdrantStorage struct {
	client *qdrant.Client
	host   string
	port   int
}

// NewQdrantStorage connects to Qdrant over gRPC and fails fast if the
// server does not become healthy within the retry window.
func NewQdrantStorage(host string, port int) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	storage := &QdrantStorage{
		client: client,
		host:   host,
		port:   port,
	}

	if err := storage.healthCheckWithRetry(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrQdrantUnreachable, err)
	}

	return storage, nil
}

func newRetryPolicy() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(newRetryPolicy(), ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollection creates the papers collection and its payload indexes
// if they do not exist yet.
func (s *QdrantStorage) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: CollectionName,
		VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
			vectorName: {
				Size:     VectorDimension,
				Distance: qdrant.Distance_Cosine,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	for _, field := range []string{"paper_id", "source_type", "tags"} {
		_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: CollectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}
	return nil
}

// ClearCollection drops every paper vector and recreates the collection.
func (s *QdrantStorage) ClearCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, CollectionName); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return s.EnsureCollection(ctx)
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStorage) upsertWithRetry(ctx context.Context, points []*qdrant.PointStruct) error {
	operation := func() error {
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: CollectionName,
			Points:         points,
		})
		return err
	}
	return backoff.Retry(operation, backoff.WithContext(newRetryPolicy(), ctx))
}

// UpsertPapers stores paper vectors in batches of 100.
func (s *QdrantStorage) UpsertPapers(ctx context.Context, papers []*Paper) error {
	if err := validatePapers(papers); err != nil {
		return err
	}

	const batchSize = 100
	for i := 0; i < len(papers); i += batchSize {
		end := min(i+batchSize, len(papers))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for _, p := range papers[i:end] {
			payload, err := qdrant.TryValueMap(paperPayload(p))
			if err != nil {
				return fmt.Errorf("payload for paper %s: %w", p.PaperID, err)
			}
			points = append(points, &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(PointID(p.PaperID)),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					vectorName: qdrant.NewVector(p.Embedding...),
				}),
				Payload: payload,
			})
		}

		if err := s.upsertWithRetry(ctx, points); err != nil {
			return fmt.Errorf("failed to upsert batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

func validatePapers(papers []*Paper) error {
	for i, p := range papers {
		if p == nil || p.PaperID == "" {
			return fmt.Errorf("paper %d has no id", i)
		}
		if len(p.Embedding) != VectorDimension {
			return fmt.Errorf("%w: paper %s has %d dimensions, expected %d",
				ErrDimensionMismatch, p.PaperID, len(p.Embedding), VectorDimension)
		}
	}
	return nil
}

func paperPayload(p *Paper) map[string]any {
	tags := make([]any, len(p.Tags))
	for i, tag := range p.Tags {
		tags[i] = tag
	}
	return map[string]any{
		"paper_id":     p.PaperID,
		"title":        p.Title,
		"tags":         tags,
		"source_type":  p.SourceType,
		"user_id":      p.UserID,
		"original_url": p.OriginalURL,
		"indexed_at":   p.IndexedAt.UTC().Format(time.RFC3339),
	}
}

func paperFromPayload(payload map[string]*qdrant.Value) *Paper {
	indexedAt, err := time.Parse(time.RFC3339, payload["indexed_at"].GetStringValue())
	if err != nil {
		indexedAt = time.Time{}
	}

	var tags []string
	if list := payload["tags"].GetListValue(); list != nil {
		for _, v := range list.Values {
			tags = append(tags, v.GetStringValue())
		}
	}

	return &Paper{
		PaperID:     payload["paper_id"].GetStringValue(),
		Title:       payload["title"].GetStringValue(),
		Tags:        tags,
		SourceType:  payload["source_type"].GetStringValue(),
		UserID:      payload["user_id"].GetStringValue(),
		OriginalURL: payload["original_url"].GetStringValue(),
		IndexedAt:   indexedAt,
	}
}

// GetPaper returns the stored payload of a paper, without its vector.
func (s *QdrantStorage) GetPaper(ctx context.Context, paperID string) (*Paper, error) {
	result, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CollectionName,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(PointID(paperID))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get paper: %w", err)
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPaperNotFound, paperID)
	}
	return paperFromPayload(result[0].Payload), nil
}

// SimilarPapers returns the papers nearest to an already stored paper,
// excluding the paper itself.
func (s *QdrantStorage) SimilarPapers(ctx context.Context, paperID string, limit int) ([]*ScoredPaper, error) {
	if _, err := s.GetPaper(ctx, paperID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	using := vectorName
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: CollectionName,
		Query:          qdrant.NewQueryID(qdrant.NewIDUUID(PointID(paperID))),
		Using:          &using,
		Filter: &qdrant.Filter{
			MustNot: []*qdrant.Condition{qdrant.NewMatch("paper_id", paperID)},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
		WithVectors: qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query similar papers: %w", err)
	}

	scored := make([]*ScoredPaper, 0, len(results))
	for _, r := range results {
		scored = append(scored, &ScoredPaper{
			Paper: paperFromPayload(r.Payload),
			Score: float64(r.Score),
		})
	}
	return scored, nil
}

// CountPapers returns how many paper vectors are stored.
func (s *QdrantStorage) CountPapers(ctx context.Context) (uint64, error) {
	collection, err := s.client.GetCollectionInfo(ctx, CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection: %w", err)
	}
	return collection.GetPointsCount(), nil
}
