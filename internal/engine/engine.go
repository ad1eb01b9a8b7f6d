package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/shelfsight/shelfsight/internal/analyzer"
	"github.com/shelfsight/shelfsight/internal/answer"
	"github.com/shelfsight/shelfsight/internal/config"
	"github.com/shelfsight/shelfsight/internal/mart"
	"github.com/shelfsight/shelfsight/internal/metrics"
	"github.com/shelfsight/shelfsight/internal/query"
	"github.com/shelfsight/shelfsight/internal/snapshot"
)

// ErrSnapshotNotFound marks a request for a month the category has no
// snapshot for. Callers fall back to their own lower-fidelity path; the
// engine never fabricates an answer without a mart.
var ErrSnapshotNotFound = errors.New("engine: no snapshot for requested date")

// Request is one question against one category month.
type Request struct {
	Message      string    `json:"message"`
	CategoryID   string    `json:"categoryId"`
	SnapshotDate time.Time `json:"snapshotDate"`
	TargetBrand  string    `json:"targetBrand,omitempty"`
}

// Engine wires the pipeline: snapshot provider, mart builder and cache,
// query understanding, analyzer dispatch, and response assembly. One Ask call
// runs on a single logical thread; the only shared mutable state is the mart
// cache, which tolerates redundant rebuilds because building is deterministic.
type Engine struct {
	provider  snapshot.Provider
	builder   *mart.Builder
	cache     mart.Cache
	clock     mart.Clock
	parser    *query.Parser
	resolver  *query.Resolver
	assembler *answer.Assembler
	metrics   *metrics.Metrics

	thresholds config.Thresholds
	ownBrands  []string
}

// Options configures engine construction.
type Options struct {
	Provider   snapshot.Provider
	Thresholds config.Thresholds
	AliasCfg   config.AliasConfig
	Cache      mart.Cache       // nil gets a TTL cache at the configured TTL
	Clock      mart.Clock       // nil gets time.Now
	Metrics    *metrics.Metrics // nil gets a fresh set
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Cache == nil {
		opts.Cache = mart.NewTTLCache(opts.Thresholds.MartCacheTTL())
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Engine{
		provider:   opts.Provider,
		builder:    mart.NewBuilder(opts.AliasCfg, opts.Thresholds),
		cache:      opts.Cache,
		clock:      opts.Clock,
		parser:     query.NewParser(opts.AliasCfg.CategoryKeywordBoosts),
		resolver:   query.NewResolver(),
		assembler:  answer.NewAssembler(opts.Thresholds),
		metrics:    opts.Metrics,
		thresholds: opts.Thresholds,
		ownBrands:  opts.AliasCfg.OwnBrands,
	}
}

// Metrics exposes the engine's metric set for the HTTP layer.
func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

// Ask answers one question. It returns ErrSnapshotNotFound when the category
// has no snapshot for the requested month; every other outcome, including
// clarifications and unroutable intents, is a well-formed response.
func (e *Engine) Ask(ctx context.Context, req Request) (*answer.ChatResponse, error) {
	traceID := uuid.NewString()
	m, err := e.martFor(ctx, req.CategoryID, req.SnapshotDate)
	if err != nil {
		return nil, err
	}

	parsed := e.parser.Parse(req.Message, req.CategoryID)
	entities := e.resolver.Resolve(m, req.Message, req.TargetBrand)
	scope := query.ResolveScope(m, entities, e.ownBrands)

	trace := []answer.TraceStep{
		{Step: "mart", Status: "ok"},
		{Step: "parse", Status: traceStatus(parsed.Intent != query.IntentUnknown)},
		{Step: "entities", Status: "ok"},
	}

	log.Info().
		Str("trace_id", traceID).
		Str("category", req.CategoryID).
		Str("intent", string(parsed.Intent)).
		Str("scope", string(scope.Mode)).
		Msg("Routing question")

	id, clar, ok := analyzer.Route(parsed, entities)
	e.metrics.Requests.WithLabelValues(string(parsed.Intent)).Inc()

	if !ok {
		trace = append(trace, answer.TraceStep{Step: "route", Status: "partial"})
		resp := e.assembler.AssembleUnknown(m, trace)
		resp.TraceID = traceID
		return resp, nil
	}
	if clar != nil {
		e.metrics.Clarifications.Inc()
		trace = append(trace, answer.TraceStep{Step: "route", Status: "partial"})
		resp := e.assembler.AssembleClarification(m, parsed, clar, trace)
		resp.TraceID = traceID
		return resp, nil
	}

	start := e.clock()
	finding := analyzer.Run(id, analyzer.Input{
		Mart:       m,
		Scope:      scope,
		Entities:   entities,
		Plan:       parsed.Plan,
		Thresholds: e.thresholds,
	})
	e.metrics.AnalyzerTime.WithLabelValues(string(id)).Observe(e.clock().Sub(start).Seconds())

	trace = append(trace,
		answer.TraceStep{Step: "route", Status: "ok"},
		answer.TraceStep{Step: string(id), Status: traceStatus(!finding.Partial)},
	)
	resp := e.assembler.Assemble(m, parsed, scope, entities, finding, trace)
	resp.TraceID = traceID
	return resp, nil
}

// Invalidate evicts one category month from the mart cache. Exposed for
// upstream data corrections; the engine itself relies on TTL expiry only.
func (e *Engine) Invalidate(categoryID string, date time.Time) {
	e.cache.Invalidate(mart.Key(categoryID, date))
}

// martFor returns the cached mart for (category, date) or builds it. Negative
// results are cached too so repeated requests for a missing month do not
// re-walk the series within the TTL.
func (e *Engine) martFor(ctx context.Context, categoryID string, date time.Time) (*mart.Mart, error) {
	key := mart.Key(categoryID, date)
	now := e.clock()

	if entry, ok := e.cache.Get(key, now); ok {
		e.metrics.CacheHits.Inc()
		if entry.Mart == nil {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
		}
		return entry.Mart, nil
	}
	e.metrics.CacheMisses.Inc()

	series, err := e.provider.Snapshots(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot series: %w", err)
	}
	m, ok := e.builder.Build(series, categoryID, date)
	if !ok {
		e.cache.Put(key, mart.Entry{Mart: nil, StoredAt: now})
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, key)
	}
	e.cache.Put(key, mart.Entry{Mart: m, StoredAt: now})
	return m, nil
}

func traceStatus(ok bool) string {
	if ok {
		return "ok"
	}
	return "partial"
}
