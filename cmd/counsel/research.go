// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/legalizeme/counsel/internal/analyze"
	"github.com/legalizeme/counsel/internal/format"
	"github.com/legalizeme/counsel/internal/index"
	"github.com/legalizeme/counsel/internal/reason"
	"github.com/legalizeme/counsel/internal/research"
	"github.com/legalizeme/counsel/internal/retrieve"
	"github.com/legalizeme/counsel/internal/summarize"
	"github.com/legalizeme/counsel/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Answer a legal question through the research pipeline",
	Long: `research runs the full pipeline for one question: retrieve documents
from the corpus index, summarize them by legal domain, build a
reasoning chain, and format the answer. The answer is written to
stdout; progress and diagnostics go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("strategy", "", "force a retrieval strategy (quick, focused, comprehensive, exploratory)")
	researchCmd.Flags().Int("max-sources", 0, "cap the number of retrieved documents")
	researchCmd.Flags().StringSlice("domain", nil, "override detected legal domains")
	researchCmd.Flags().String("urgency", "", "override detected urgency (low, medium, high)")
	researchCmd.Flags().String("style", "", "response style (concise, standard, practical, technical, comprehensive)")
	researchCmd.Flags().Duration("deadline", 0, "overall deadline for the research (0 = none)")
	researchCmd.Flags().String("output", "text", "output format (text, json, yaml)")
	researchCmd.Flags().BoolP("verbose", "v", false, "print per-stage progress to stderr")
	rootCmd.AddCommand(researchCmd)
}

// flaggedRetriever layers the CLI's strategy and max-sources flags
// under the orchestrator's own options.
type flaggedRetriever struct {
	inner *retrieve.Retriever
	base  retrieve.Options
}

func (r flaggedRetriever) Retrieve(ctx context.Context, query string, qctx types.QueryContext, opts retrieve.Options) retrieve.Result {
	if opts.Strategy == "" {
		opts.Strategy = r.base.Strategy
	}
	if opts.MaxSources == 0 {
		opts.MaxSources = r.base.MaxSources
	}
	return r.inner.Retrieve(ctx, query, qctx, opts)
}

func runResearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	cfg := pipelineConfig()

	strategy, _ := cmd.Flags().GetString("strategy")
	maxSources, _ := cmd.Flags().GetInt("max-sources")
	domains, _ := cmd.Flags().GetStringSlice("domain")
	urgency, _ := cmd.Flags().GetString("urgency")
	style, _ := cmd.Flags().GetString("style")
	deadline, _ := cmd.Flags().GetDuration("deadline")
	verbose, _ := cmd.Flags().GetBool("verbose")

	store, err := index.NewStore(cfg.Index)
	if err != nil {
		return fmt.Errorf("opening corpus index: %w", err)
	}
	defer store.Close()

	invoker, err := buildInvoker(cfg.Invoker)
	if err != nil {
		return err
	}

	orch := research.NewOrchestrator(
		flaggedRetriever{
			inner: retrieve.NewRetriever(store),
			base:  retrieve.Options{Strategy: strategy, MaxSources: maxSources},
		},
		summarize.NewSummarizer(invoker),
		reason.NewReasoner(invoker),
		format.NewFormatter(),
		research.Config{
			ConfidenceThreshold: cfg.Research.ConfidenceThreshold,
			MaxRetries:          cfg.Research.MaxRetries,
		},
	)
	if verbose {
		orch.SetProgressWriter(os.Stderr)
	}

	var metadata map[string]string
	if style != "" {
		metadata = map[string]string{format.PreferenceKey: style}
	}
	qctx := analyze.Analyze(query, analyze.Hints{
		Domains:  domains,
		Urgency:  types.Level(urgency),
		Metadata: metadata,
	})

	ctx := cmd.Context()
	if deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	start := time.Now()
	resp := orch.Research(ctx, query, qctx)

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json":
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		fmt.Print(string(data))
	default:
		fmt.Println(resp.Answer)
	}

	fmt.Fprintf(os.Stderr, "\nconfidence %.2f, strategy %s, %d retries", resp.Confidence, resp.Strategy, resp.RetryCount)
	if resp.FallbackUsed {
		fmt.Fprint(os.Stderr, " (broadened fallback used)")
	}
	fmt.Fprintf(os.Stderr, ", %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
