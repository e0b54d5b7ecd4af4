package storage

import (
	"time"

	"github.com/google/uuid"
)

// Paper is one paper's vector and the payload needed to show it as a
// recommendation without re-reading the record directory.
type Paper struct {
	PaperID     string    // record identifier, e.g. "2401.12345"
	Title       string
	Tags        []string
	SourceType  string
	UserID      string
	OriginalURL string
	IndexedAt   time.Time
	Embedding   []float32 // 1536-dim vector (text-embedding-3-small)
}

// ScoredPaper is a similarity hit.
type ScoredPaper struct {
	Paper *Paper
	Score float64
}

// CollectionName is the Qdrant collection holding paper vectors.
const CollectionName = "papers"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536

// vectorName is the named vector every paper point carries.
const vectorName = "summary"

var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://arxiv.org/abs/"))

// PointID maps a paper ID to its Qdrant point ID. The mapping is stable, so
// re-embedding a paper overwrites its previous point.
func PointID(paperID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(paperID)).String()
}
