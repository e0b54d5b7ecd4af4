package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/markdown"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/storage"
)

const (
	// DefaultBatchSize is how many papers are embedded and stored per round.
	DefaultBatchSize = 32

	// maxContentRunes bounds the summary text sent for embedding.
	maxContentRunes = 6000

	// outlineDepth is the deepest heading level listed in the embedding
	// text. Summary sections use ### and ####.
	outlineDepth = 4
)

// DocumentSource supplies the papers to embed. *index.Builder implements it.
type DocumentSource interface {
	Documents() []index.Document
}

// TextEmbedder turns texts into vectors. *embedding.Embedder implements it.
type TextEmbedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// PaperStore persists paper vectors. *storage.QdrantStorage implements it.
type PaperStore interface {
	UpsertPapers(ctx context.Context, papers []*storage.Paper) error
}

// IndexResult contains statistics about an embedding run.
type IndexResult struct {
	TotalDocs  int
	Embedded   int
	FailedDocs []FailedDoc
	Duration   time.Duration
}

// FailedDoc is a paper that could not be embedded or stored.
type FailedDoc struct {
	ID     string
	Reason string
}

// Pipeline embeds index documents and stores them for related-paper lookups.
type Pipeline struct {
	source    DocumentSource
	embedder  TextEmbedder
	store     PaperStore
	outliner  *markdown.Outliner
	batchSize int
	logger    *slog.Logger
}

// NewPipeline creates a pipeline. A batchSize of 0 uses DefaultBatchSize.
func NewPipeline(source DocumentSource, embedder TextEmbedder, store PaperStore, batchSize int, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		source:    source,
		embedder:  embedder,
		store:     store,
		outliner:  markdown.NewOutliner(),
		batchSize: batchSize,
		logger:    logger,
	}
}

// IndexAll embeds every indexed paper. A failed batch marks its papers as
// failed and the run continues; only context cancellation aborts it.
func (p *Pipeline) IndexAll(ctx context.Context) (*IndexResult, error) {
	start := time.Now()
	docs := p.source.Documents()
	result := &IndexResult{TotalDocs: len(docs)}
	p.logger.Info("Starting embedding", "papers", len(docs), "batch_size", p.batchSize)

	for i := 0; i < len(docs); i += p.batchSize {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("embedding interrupted: %w", err)
		}

		end := min(i+p.batchSize, len(docs))
		batch := docs[i:end]

		if err := p.processBatch(ctx, batch); err != nil {
			p.logger.Warn("Failed to embed batch", "from", i, "to", end, "error", err)
			for _, doc := range batch {
				result.FailedDocs = append(result.FailedDocs, FailedDoc{ID: doc.ID, Reason: err.Error()})
			}
			continue
		}
		result.Embedded += len(batch)
		p.logger.Debug("Embedded batch", "from", i, "to", end)
	}

	result.Duration = time.Since(start)
	p.logger.Info("Embedding complete",
		"embedded", result.Embedded,
		"failed", len(result.FailedDocs),
		"duration", result.Duration,
	)
	return result, nil
}

func (p *Pipeline) processBatch(ctx context.Context, batch []index.Document) error {
	texts := make([]string, len(batch))
	for i := range batch {
		texts[i] = p.paperText(&batch[i])
	}

	vectors, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embeddings: got %d vectors for %d papers", len(vectors), len(batch))
	}

	now := time.Now().UTC()
	papers := make([]*storage.Paper, len(batch))
	for i, doc := range batch {
		papers[i] = &storage.Paper{
			PaperID:     doc.ID,
			Title:       doc.Title,
			Tags:        doc.Tags,
			SourceType:  doc.SourceType,
			UserID:      doc.UserID,
			OriginalURL: doc.OriginalURL,
			IndexedAt:   now,
			Embedding:   vectors[i],
		}
	}

	if err := p.store.UpsertPapers(ctx, papers); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// paperText is the text embedded for a paper: title, tags, section
// headings, then the start of the summary.
func (p *Pipeline) paperText(doc *index.Document) string {
	var b strings.Builder
	if doc.Title != "" {
		b.WriteString(doc.Title)
		b.WriteString("\n")
	}
	if len(doc.Tags) > 0 {
		b.WriteString("Tags: ")
		b.WriteString(strings.Join(doc.Tags, ", "))
		b.WriteString("\n")
	}

	headings, err := p.outliner.Outline([]byte(doc.Content), outlineDepth)
	if err != nil {
		p.logger.Debug("Outline failed, embedding without sections", "id", doc.ID, "error", err)
	}
	for _, h := range headings {
		b.WriteString("Section: ")
		b.WriteString(h.Title)
		b.WriteString("\n")
	}

	content := []rune(doc.Content)
	if len(content) > maxContentRunes {
		content = content[:maxContentRunes]
	}
	if len(content) > 0 {
		b.WriteString("\n")
		b.WriteString(string(content))
	}
	return strings.TrimSpace(b.String())
}
