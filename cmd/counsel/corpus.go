// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/legalizeme/counsel/internal/index"
	"github.com/legalizeme/counsel/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the local document corpus",
	Long: `corpus manages the SQLite index over the legal document corpus.
Source documents live as YAML files under <corpus_dir>/sources/; ingest
indexes them incrementally, and search queries the index directly
without running the research pipeline.`,
}

var corpusIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index new and changed corpus files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		store, err := index.NewStore(cfg.Index)
		if err != nil {
			return fmt.Errorf("opening corpus index: %w", err)
		}
		defer store.Close()

		summary, err := store.Ingest(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		fmt.Printf("indexed %d, updated %d, skipped %d, failed %d\n",
			summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

		count, err := store.DocumentCount(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d documents in index\n", count)
		return nil
	},
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the corpus index directly",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := pipelineConfig()
		method, _ := cmd.Flags().GetString("method")
		limit, _ := cmd.Flags().GetInt("limit")
		if limit <= 0 {
			limit = cfg.Index.MaxResults
		}

		store, err := index.NewStore(cfg.Index)
		if err != nil {
			return fmt.Errorf("opening corpus index: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()
		var docs []types.RetrievedDocument
		switch method {
		case "keyword":
			docs, err = store.KeywordSearch(ctx, args[0], limit)
		case "semantic":
			docs, err = store.SemanticSearch(ctx, args[0], limit)
		case "hybrid":
			docs, err = store.HybridSearch(ctx, args[0], limit)
		default:
			return fmt.Errorf("unknown method %q (keyword, semantic, hybrid)", method)
		}
		if err != nil {
			return err
		}

		if len(docs) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, d := range docs {
			fmt.Printf("%.2f  %s  [%s] %s\n", d.RelevanceScore, d.ID, d.Source, d.Title)
		}
		return nil
	},
}

func init() {
	corpusSearchCmd.Flags().String("method", "hybrid", "search method (keyword, semantic, hybrid)")
	corpusSearchCmd.Flags().Int("limit", 0, "maximum results (default from config)")
	corpusCmd.AddCommand(corpusIngestCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	rootCmd.AddCommand(corpusCmd)
}
