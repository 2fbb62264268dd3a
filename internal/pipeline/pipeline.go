// Package pipeline verifies one transcript end to end: it loads the claims
// and the ticker's facts, runs the engine and writes the verdict files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/earningscheck/internal/cache"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/verify"
)

// Runner orchestrates transcript verification
type Runner struct {
	cfg      *model.Config
	engine   *verify.Engine
	facts    *facts.Loader
	results  *cache.Results // nil when caching is disabled
	renderer *Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger for the runner and its engine.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithResultCache replaces the cache built from the config.
func WithResultCache(c *cache.Results) Option {
	return func(r *Runner) {
		r.results = c
	}
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *model.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		renderer: NewRenderer(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	if cfg.Cache.Enabled {
		r.results = cache.NewResults(cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL))
	}
	for _, opt := range opts {
		opt(r)
	}

	r.engine = verify.New(
		verify.WithLogger(r.logger),
		verify.WithWorkers(cfg.Concurrency.ClaimWorkers),
	)
	r.facts = facts.NewLoader(cfg.Cache.MemoryTTL)
	return r
}

// inputs holds the raw files one verification run depends on
type inputs struct {
	claims []byte
	facts  []byte // nil when the ticker has no facts file
	meta   []byte // nil when the transcript has no metadata file
}

func (in inputs) cacheKey() string {
	return cache.Key(verify.Version, in.claims, in.facts, in.meta)
}

func (r *Runner) readInputs(ref TranscriptRef) (inputs, error) {
	var in inputs
	var err error

	if in.claims, err = os.ReadFile(ref.ClaimsPath); err != nil {
		return in, fmt.Errorf("read claims: %w", err)
	}
	if in.facts, err = readOptional(facts.PathFor(r.cfg.Data.FinancialsDir, ref.Ticker)); err != nil {
		return in, fmt.Errorf("read facts: %w", err)
	}
	if r.cfg.Data.TranscriptsDir != "" {
		if in.meta, err = readOptional(metadataPath(r.cfg.Data.TranscriptsDir, ref)); err != nil {
			return in, fmt.Errorf("read transcript metadata: %w", err)
		}
	}
	return in, nil
}

// store loads the ticker's fact store. A ticker without facts gets an empty
// store, so its claims come back unverifiable instead of failing the run.
func (r *Runner) store(ref TranscriptRef, in inputs) (*facts.Store, error) {
	if in.facts == nil {
		r.logger.Warn("no financial facts for ticker", zap.String("ticker", ref.Ticker))
		return facts.NewStore(ref.Ticker), nil
	}
	s, err := r.facts.Load(facts.PathFor(r.cfg.Data.FinancialsDir, ref.Ticker))
	if errors.Is(err, facts.ErrNoFacts) {
		r.logger.Warn("facts file has no periods", zap.String("ticker", ref.Ticker))
		return facts.NewStore(ref.Ticker), nil
	}
	return s, err
}

// RunTranscript verifies every claim of ref and writes the verdict files.
// When the claims, facts and transcript metadata are unchanged since a
// cached run under the same rules version, the cached result is written
// instead of verifying again.
func (r *Runner) RunTranscript(ctx context.Context, ref TranscriptRef) (*model.TranscriptResult, error) {
	key := ref.Key()
	log := r.logger.With(zap.String("transcript", key))

	in, err := r.readInputs(ref)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	cacheKey := in.cacheKey()
	if r.results != nil {
		if res, ok := r.results.Get(cacheKey); ok {
			log.Debug("result cache hit")
			if err := r.write(res); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			return res, nil
		}
	}

	res, err := r.verify(ctx, ref, in, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	if err := r.write(res); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if r.results != nil {
		if err := r.results.Put(cacheKey, res); err != nil {
			log.Warn("cache result", zap.Error(err))
		}
	}
	return res, nil
}

func (r *Runner) verify(ctx context.Context, ref TranscriptRef, in inputs, log *zap.Logger) (*model.TranscriptResult, error) {
	claims, err := ParseClaims(in.claims, ref.Key())
	if err != nil {
		return nil, err
	}
	store, err := r.store(ref, in)
	if err != nil {
		return nil, err
	}

	eff := FiscalPeriod(in.meta, ref)
	delta := eff.Year - ref.Year
	if eff.Year != ref.Year || eff.Quarter != ref.Quarter {
		log.Info("using transcript fiscal period", zap.Stringer("period", eff))
	}

	start := time.Now()
	items, summary, err := r.engine.VerifyAll(ctx, ShiftClaims(claims, delta), ref.Ticker, eff.Year, eff.Quarter, store)
	if err != nil {
		return nil, err
	}
	// Persist the claims as extracted, not as shifted.
	for i := range items {
		items[i].Claim = claims[i]
	}

	log.Info("verified transcript",
		zap.Int("claims", summary.Total),
		zap.Int("verified", summary.Verified),
		zap.Int("mismatch", summary.Mismatch),
		zap.Int("unverifiable", summary.Unverifiable),
		zap.Duration("took", time.Since(start)))

	return &model.TranscriptResult{
		Ticker:             ref.Ticker,
		Key:                ref.Key(),
		Year:               ref.Year,
		Quarter:            ref.Quarter,
		VerifiedAt:         r.now().Format(time.RFC3339),
		ClaimsWithVerdicts: items,
		Summary:            summary,
	}, nil
}

// write renders res into the verdicts directory.
func (r *Runner) write(res *model.TranscriptResult) error {
	jsonPath, mdPath := VerdictPaths(r.cfg.Data.VerdictsDir, res.Key)
	if err := r.renderer.RenderJSON(res, jsonPath); err != nil {
		return fmt.Errorf("render JSON: %w", err)
	}
	if r.cfg.Output.Markdown {
		if err := r.renderer.RenderMarkdown(res, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	return nil
}

// OutputPath returns where the JSON result for ref is written.
func (r *Runner) OutputPath(ref TranscriptRef) string {
	p, _ := VerdictPaths(r.cfg.Data.VerdictsDir, ref.Key())
	return filepath.Clean(p)
}
