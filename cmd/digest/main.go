// Package main provides the digest CLI for searching the paper record
// directory and maintaining related-paper vectors.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/config"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/embedding"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/index"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/indexer"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/records"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/search"
	"github.com/txltxl22/ai-paper-digest-sub001/internal/storage"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	dir     string
	verbose bool

	builder *index.Builder
	service *search.Service
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:          "digest",
		Short:        "Search summarized papers and manage related-paper vectors",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.dir, "dir", "", "record directory (default $PAPERS_DIR or ./summary)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		a.searchCmd(),
		a.suggestCmd(),
		a.statusCmd(),
		a.embedCmd(),
		a.relatedCmd(),
	)
	return rootCmd
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.dir != "" {
		cfg.PapersDir = a.dir
	}
	if a.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	a.cfg = cfg
	a.logger = config.NewLogger(stderr, cfg.LogLevel)

	store := records.NewStore(cfg.PapersDir,
		records.WithLogger(a.logger),
		records.WithReadRetry(cfg.RecordReadRetry),
	)
	a.builder = index.NewBuilder(store, a.logger)
	a.service = search.NewService(a.builder, a.logger)
	return nil
}

func (a *app) searchCmd() *cobra.Command {
	var (
		fields     []string
		searchType string
		limit      int
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank papers by keyword matches in title, content and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.service.Query(search.Request{
				Query:      strings.Join(args, " "),
				Fields:     fields,
				SearchType: searchType,
			})
			if err != nil {
				return err
			}
			if limit > 0 && len(resp.Results) > limit {
				resp.Results = resp.Results[:limit]
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, resp)
			}
			if resp.Message != "" {
				fmt.Fprintln(out, resp.Message)
				return nil
			}
			for i, r := range resp.Results {
				fmt.Fprintf(out, "%d. [%d] %s (%s)\n", i+1, r.RelevanceScore, r.Title, r.ID)
				for _, m := range r.Matches {
					fmt.Fprintf(out, "     %s\n", oneLine(m))
				}
			}
			fmt.Fprintf(out, "%d of %d papers matched %q\n", len(resp.Results), resp.Total, resp.Query)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "fields to search: title, content, tags")
	cmd.Flags().StringVar(&searchType, "type", search.SearchTypeAll, "preset when --fields is empty: all, content or tags")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many results (0 = all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full response as JSON")
	return cmd
}

func (a *app) suggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Suggest tags and title prefixes containing a partial query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range a.service.Suggest(strings.Join(args, " ")) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Build the index and report what it contains",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A fresh process has no cache; building is what status reports on.
			a.builder.Documents()
			stats := a.service.Stats()

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, stats)
			}
			fmt.Fprintf(out, "Records:   %s\n", a.cfg.PapersDir)
			fmt.Fprintf(out, "Documents: %d\n", stats.Documents)
			fmt.Fprintf(out, "Files:     %d\n", stats.Files)
			if !stats.LatestModTime.IsZero() {
				fmt.Fprintf(out, "Latest:    %s\n", stats.LatestModTime.Format(time.RFC3339))
			}
			fmt.Fprintf(out, "Build:     %s (%v)\n", stats.BuildID, stats.BuildDuration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print stats as JSON")
	return cmd
}

func (a *app) openVectors() (*storage.QdrantStorage, error) {
	qdrant, err := storage.NewQdrantStorage(a.cfg.QdrantHost, a.cfg.QdrantPort)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", a.cfg.QdrantHost, a.cfg.QdrantPort, err)
	}
	return qdrant, nil
}

func (a *app) embedCmd() *cobra.Command {
	var (
		clearFirst bool
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed every indexed paper into Qdrant for related-paper lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			client, err := embedding.NewClient(a.cfg.OpenAIAPIKey)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Connecting to Qdrant...")
			qdrant, err := a.openVectors()
			if err != nil {
				return err
			}
			defer qdrant.Close()

			if clearFirst {
				fmt.Fprintln(out, "Clearing existing paper vectors...")
				if err := qdrant.ClearCollection(ctx); err != nil {
					return err
				}
			} else if err := qdrant.EnsureCollection(ctx); err != nil {
				return err
			}

			embedder := embedding.NewEmbedder(client, 0, a.logger)
			pipeline := indexer.NewPipeline(a.builder, embedder, qdrant, batchSize, a.logger)

			fmt.Fprintln(out, "Embedding papers...")
			result, err := pipeline.IndexAll(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Embedded %d of %d papers in %v\n", result.Embedded, result.TotalDocs, result.Duration.Round(time.Millisecond))
			for _, f := range result.FailedDocs {
				fmt.Fprintf(out, "  failed %s: %s\n", f.ID, f.Reason)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "drop existing vectors first")
	cmd.Flags().IntVar(&batchSize, "batch-size", indexer.DefaultBatchSize, "papers per embedding request")
	return cmd
}

func (a *app) relatedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "related <paper-id>",
		Short: "List papers whose embeddings are closest to an embedded paper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qdrant, err := a.openVectors()
			if err != nil {
				return err
			}
			defer qdrant.Close()

			similar, err := qdrant.SimilarPapers(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, s := range similar {
				fmt.Fprintf(out, "%d. %.3f %s (%s)\n", i+1, s.Score, s.Paper.Title, s.Paper.PaperID)
			}
			if len(similar) == 0 {
				fmt.Fprintln(out, "No related papers found")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum number of related papers")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
