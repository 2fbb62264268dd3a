// Package verify decides a verdict for each claim by running the detector
// waterfall, the numeric comparison for the claim's kind, and the misleading
// framing checks.
package verify

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/misleading"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// Version identifies the decision rules. It is part of result cache keys, so
// bump it whenever a rule or tolerance changes.
const Version = "2025.11.1"

// Engine verifies claims. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	logger   *zap.Logger
	workers  int
	segments *detect.SegmentClassifier
	checker  *misleading.Checker
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger. Rule hits are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithWorkers bounds the number of claims VerifyAll checks at once.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:   zap.NewNop(),
		workers:  runtime.NumCPU(),
		segments: detect.NewSegmentClassifier(),
		checker:  misleading.NewChecker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Verify checks one claim made on the transcript for (year, quarter) against
// store. It never fails: every problem becomes an unverifiable verdict with
// an explanation and at least one flag.
func (e *Engine) Verify(claim model.Claim, ticker string, year, quarter int, store *facts.Store) (v model.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("verification panicked",
				zap.String("claim_id", claim.ClaimID),
				zap.Any("panic", r))
			v = model.NewVerdict(claim)
			v.Label = model.LabelUnverifiable
			v.AddFlag(FlagInternalError)
			v.Explanation = fmt.Sprintf("Verification failed unexpectedly: %v", r)
		}
	}()

	if store == nil {
		store = facts.NewStore(ticker)
	}
	ev := e.newEvaluation(claim, ticker, period.Key{Year: year, Quarter: quarter}, store)

	for _, r := range rules {
		if !r.match(ev) {
			continue
		}
		v = r.apply(ev)
		if v.Label != model.LabelUnverifiable {
			v = e.applyMisleading(ev, v)
		}
		e.logger.Debug("rule fired",
			zap.String("claim_id", claim.ClaimID),
			zap.String("rule", r.name),
			zap.String("metric", ev.metric),
			zap.String("verdict", string(v.Label)))
		return v
	}

	// The last rule always matches.
	panic("no rule matched")
}

func (e *Engine) newEvaluation(claim model.Claim, ticker string, transcript period.Key, store *facts.Store) *evaluation {
	metric := catalog.Resolve(claim.Metric, claim.QuoteText)
	entry, known := catalog.Lookup(metric)
	return &evaluation{
		claim:      claim,
		ticker:     ticker,
		metric:     metric,
		quote:      strings.ToLower(claim.QuoteText),
		approx:     claim.IsApproximate || catalog.IsApproximate(claim.Qualifiers),
		value:      catalog.Normalize(claim.Value(), claim.Unit, claim.Scale),
		transcript: transcript,
		res:        period.Resolve(claim, transcript),
		alias:      detect.AliasAllowed(claim, transcript),
		entry:      entry,
		known:      known,
		store:      store,
		segments:   e.segments,
		v:          model.NewVerdict(claim),
	}
}

// applyMisleading escalates a passing verdict when any heuristic fires. A
// mismatch is escalated only by the undisclosed non-GAAP check.
func (e *Engine) applyMisleading(ev *evaluation, v model.Verdict) model.Verdict {
	findings := e.checker.Check(misleading.Input{
		Claim:       ev.claim,
		Metric:      ev.metric,
		Value:       ev.value,
		Target:      ev.res.Target,
		Baseline:    ev.res.Baseline,
		HasBaseline: ev.res.HasBaseline,
		Store:       ev.store,
	})
	if len(findings) == 0 {
		return v
	}

	v.MisleadingFlags = misleading.Flags(findings)
	v.MisleadingReasons = misleading.Reasons(findings)

	escalate := v.Label.Passing() ||
		(v.Label == model.LabelMismatch && misleading.Has(findings, misleading.FlagGAAPMixing))
	if escalate {
		v.Label = model.LabelMisleading
		v.Explanation += " HOWEVER: " + strings.Join(v.MisleadingReasons, "; ")
	}
	return v
}

// VerifyAll checks every claim of one transcript in parallel, then resolves
// contradictions between them. Verdicts are returned in claim order. The
// error is non-nil only when ctx is cancelled before all claims are checked.
func (e *Engine) VerifyAll(ctx context.Context, claims []model.Claim, ticker string, year, quarter int, store *facts.Store) ([]model.ClaimVerdict, model.Summary, error) {
	out := make([]model.ClaimVerdict, len(claims))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range claims {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = model.ClaimVerdict{
				Claim:        claims[i],
				Verification: e.Verify(claims[i], ticker, year, quarter, store),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, model.Summary{}, fmt.Errorf("verify %s: %w", ticker, err)
	}

	DowngradeConflicts(out)
	return out, model.Summarize(out), nil
}
