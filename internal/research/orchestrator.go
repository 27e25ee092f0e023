// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research drives the four-stage pipeline: retrieve documents,
// summarize them, reason over the summary, format the answer. Stages
// run strictly in order and never call each other; the orchestrator
// wires them. A stage failure aborts the chain, and a low aggregate
// confidence triggers one full re-run with broadened strategies.
package research

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/legalizeme/counsel/internal/format"
	"github.com/legalizeme/counsel/internal/reason"
	"github.com/legalizeme/counsel/internal/retrieve"
	"github.com/legalizeme/counsel/internal/summarize"
	"github.com/legalizeme/counsel/pkg/types"
)

// Stage interfaces keep the orchestrator testable against fakes.
type Retriever interface {
	Retrieve(ctx context.Context, query string, qctx types.QueryContext, opts retrieve.Options) retrieve.Result
}

type Summarizer interface {
	Summarize(ctx context.Context, docs []types.RetrievedDocument, query string, qctx types.QueryContext, opts summarize.Options) summarize.Result
}

type Reasoner interface {
	Reason(ctx context.Context, query, summary string, citations []types.Citation, keyInsights []string, qctx types.QueryContext, opts reason.Options) reason.Result
}

type Formatter interface {
	Format(in format.Input, qctx types.QueryContext, opts format.Options) format.Result
}

const (
	defaultThreshold  = 0.7
	defaultMaxRetries = 3
)

// broadStrategy is forced on retrieval and summarization for the
// low-confidence re-run.
const broadStrategy = "comprehensive"

// Orchestrator runs the pipeline for one query at a time; distinct
// queries may run concurrently on the same orchestrator since all
// per-query state is local.
type Orchestrator struct {
	retriever  Retriever
	summarizer Summarizer
	reasoner   Reasoner
	formatter  Formatter

	threshold  float64
	maxRetries int
	progress   io.Writer
}

// Config adjusts orchestration; zero values mean defaults.
type Config struct {
	// ConfidenceThreshold is the aggregate confidence below which the
	// chain is re-run with broadened strategies. Default 0.7.
	ConfidenceThreshold float64

	// MaxRetries caps full-chain re-runs. Default 3.
	MaxRetries int
}

func NewOrchestrator(rt Retriever, sm Summarizer, rs Reasoner, fm Formatter, cfg Config) *Orchestrator {
	threshold := cfg.ConfidenceThreshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Orchestrator{
		retriever:  rt,
		summarizer: sm,
		reasoner:   rs,
		formatter:  fm,
		threshold:  threshold,
		maxRetries: maxRetries,
		progress:   io.Discard,
	}
}

// SetProgressWriter directs per-stage progress lines (default discard).
func (o *Orchestrator) SetProgressWriter(w io.Writer) { o.progress = w }

// Research answers the query through the full pipeline. It never
// panics and never returns an error: every failure path terminates in
// a low-confidence response with an apologetic answer.
func (o *Orchestrator) Research(ctx context.Context, query string, qctx types.QueryContext) (resp types.ResearchResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = apologeticResponse(fmt.Sprintf("internal error: %v", r))
		}
	}()

	retries := 0
	broaden := false
	for {
		result, ok := o.runChain(ctx, query, qctx, broaden)
		if !ok {
			result.RetryCount = retries
			result.FallbackUsed = broaden
			return result
		}

		result.RetryCount = retries
		result.FallbackUsed = broaden
		if result.Confidence >= o.threshold || retries >= o.maxRetries {
			return result
		}

		fmt.Fprintf(o.progress, "confidence %.2f below threshold %.2f, retrying with %q strategy\n",
			result.Confidence, o.threshold, broadStrategy)
		retries++
		broaden = true
	}
}

// runChain executes the four stages once. The second return value is
// false when a stage failed and the response is the apologetic one.
func (o *Orchestrator) runChain(ctx context.Context, query string, qctx types.QueryContext, broaden bool) (types.ResearchResponse, bool) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return apologeticResponse(fmt.Sprintf("research cancelled: %v", err)), false
	}

	var retrieveOpts retrieve.Options
	var summarizeOpts summarize.Options
	if broaden {
		retrieveOpts.Strategy = broadStrategy
		summarizeOpts.Strategy = broadStrategy
	}

	retrieval := o.retriever.Retrieve(ctx, query, qctx, retrieveOpts)
	if !retrieval.OK() {
		return apologeticResponse("document retrieval failed: " + retrieval.Err), false
	}
	fmt.Fprintf(o.progress, "retrieved %d documents (%s, confidence %.2f)\n",
		len(retrieval.Documents), retrieval.Strategy, retrieval.Confidence)

	if err := ctx.Err(); err != nil {
		return apologeticResponse(fmt.Sprintf("research cancelled: %v", err)), false
	}

	summary := o.summarizer.Summarize(ctx, retrieval.Documents, query, qctx, summarizeOpts)
	if !summary.OK() {
		return apologeticResponse("summarization failed: " + summary.Err), false
	}
	fmt.Fprintf(o.progress, "summarized into %d citations (confidence %.2f)\n",
		len(summary.Citations), summary.Confidence)

	if err := ctx.Err(); err != nil {
		return apologeticResponse(fmt.Sprintf("research cancelled: %v", err)), false
	}

	reasoning := o.reasoner.Reason(ctx, query, summary.Summary, summary.Citations, summary.KeyInsights, qctx, reason.Options{})
	if !reasoning.OK() {
		return apologeticResponse("reasoning failed: " + reasoning.Err), false
	}
	fmt.Fprintf(o.progress, "reasoned in %d steps (confidence %.2f)\n",
		len(reasoning.ReasoningChain), reasoning.Confidence)

	formatted := o.formatter.Format(format.Input{
		Query:                 query,
		Summary:               summary.Summary,
		ReasoningChain:        reasoning.ReasoningChain,
		LegalPrinciples:       reasoning.LegalPrinciples,
		Counterarguments:      reasoning.Counterarguments,
		PracticalImplications: reasoning.PracticalImplications,
		Citations:             summary.Citations,
		KeyInsights:           summary.KeyInsights,
		Confidence:            summary.Confidence,
		ReasoningConfidence:   reasoning.Confidence,
	}, qctx, format.Options{})
	if !formatted.OK() {
		return apologeticResponse("formatting failed: " + formatted.Err), false
	}

	aggregate := (retrieval.Confidence + summary.Confidence + reasoning.Confidence + formatted.Confidence) / 4
	fmt.Fprintf(o.progress, "formatted %q answer in %s (aggregate confidence %.2f)\n",
		formatted.Strategy, time.Since(start).Round(time.Millisecond), aggregate)

	return types.ResearchResponse{
		Answer:         formatted.Answer,
		Confidence:     aggregate,
		Citations:      summary.Citations,
		ReasoningChain: reasoning.ReasoningChain,
		Strategy:       retrieval.Strategy,
	}, true
}

// apologeticResponse is the terminal value for every failure path; the
// orchestrator never surfaces raw errors to its caller.
func apologeticResponse(cause string) types.ResearchResponse {
	return types.ResearchResponse{
		Answer: "I apologize, but I was unable to complete the research for your question. " +
			"Please try rephrasing it or try again later. (" + cause + ")",
		Confidence: 0,
	}
}
