package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/pipeline"
)

// Verifier verifies one transcript
type Verifier interface {
	RunTranscript(ctx context.Context, ref pipeline.TranscriptRef) (*model.TranscriptResult, error)
}

// TranscriptJob verifies one transcript
type TranscriptJob struct {
	index    int
	Ref      pipeline.TranscriptRef
	Verifier Verifier
}

// Execute executes the job
func (j *TranscriptJob) Execute(ctx context.Context) Result {
	start := time.Now()
	res, err := j.Verifier.RunTranscript(ctx, j.Ref)
	return &TranscriptOutcome{
		index:    j.index,
		Ref:      j.Ref,
		Result:   res,
		Error:    err,
		Duration: time.Since(start),
	}
}

// TranscriptOutcome is the result of a transcript job
type TranscriptOutcome struct {
	index    int
	Ref      pipeline.TranscriptRef
	Result   *model.TranscriptResult
	Error    error
	Duration time.Duration
}

// GetError returns the error from the outcome
func (o *TranscriptOutcome) GetError() error {
	return o.Error
}

// Skipped reports whether the transcript had nothing to verify.
func (o *TranscriptOutcome) Skipped() bool {
	return errors.Is(o.Error, pipeline.ErrNoClaims)
}

// BatchProcessor verifies many transcripts concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Process verifies refs and returns one outcome per ref, in ref order.
// Refs not started before ctx is cancelled carry the context's error.
func (b *BatchProcessor) Process(ctx context.Context, refs []pipeline.TranscriptRef) []*TranscriptOutcome {
	out := make([]*TranscriptOutcome, len(refs))
	if len(refs) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, ref := range refs {
		if !pool.Submit(&TranscriptJob{index: i, Ref: ref, Verifier: b.verifier}) {
			break
		}
	}

	for _, r := range pool.Wait() {
		o := r.(*TranscriptOutcome)
		out[o.index] = o
		switch {
		case o.Skipped():
			b.logger.Debug("no claims", zap.String("transcript", o.Ref.Key()))
		case o.Error != nil:
			b.logger.Warn("transcript failed", zap.String("transcript", o.Ref.Key()), zap.Error(o.Error))
		}
	}

	for i, o := range out {
		if o != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = errors.New("not processed")
		}
		out[i] = &TranscriptOutcome{index: i, Ref: refs[i], Error: err}
	}
	return out
}

// ProcessDir discovers the claims files in dir and verifies them. When
// tickers are given only their transcripts are processed.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string, tickers ...string) ([]*TranscriptOutcome, error) {
	refs, err := pipeline.Discover(dir)
	if err != nil {
		return nil, fmt.Errorf("discover transcripts: %w", err)
	}
	return b.Process(ctx, pipeline.Filter(refs, tickers...)), nil
}

// BatchSummary aggregates a batch run
type BatchSummary struct {
	Transcripts int
	Succeeded   int
	Skipped     int
	Failed      int
	Claims      model.Summary
}

// Summarize aggregates outcomes.
func Summarize(outcomes []*TranscriptOutcome) BatchSummary {
	s := BatchSummary{Transcripts: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Skipped():
			s.Skipped++
		case o.Error != nil:
			s.Failed++
		default:
			s.Succeeded++
			s.Claims.Merge(o.Result.Summary)
		}
	}
	return s
}

// ReadTickersFromFile reads tickers from a file (one per line)
func ReadTickersFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var tickers []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			tickers = append(tickers, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return tickers, nil
}
