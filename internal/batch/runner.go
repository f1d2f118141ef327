// Package batch computes HGVS descriptions for a stream of variants against
// a transcript index using a pool of workers, keeping input order.
package batch

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// TranscriptLookup finds transcripts overlapping a genomic span.
type TranscriptLookup interface {
	FindOverlapping(chrom string, start, end int64) []*cache.Transcript
}

// ResultWriter receives descriptions in input order. A nil result marks a
// variant that overlaps no transcript.
type ResultWriter interface {
	WriteHeader() error
	Write(v *vcf.Variant, r *hgvs.Result) error
	Flush() error
}

// SkipWriter is implemented by writers that also record variants the
// calculator rejected, such as the VCF writer which must keep every record.
type SkipWriter interface {
	Skip(v *vcf.Variant, err error) error
}

// Stats summarises a run.
type Stats struct {
	Variants int
	Results  int
	Skipped  int
}

// Runner describes variants against every overlapping transcript.
type Runner struct {
	lookup        TranscriptLookup
	calc          *hgvs.Calculator
	workers       int
	normalize     bool
	canonicalOnly bool
	metrics       *Metrics
	logger        *zap.Logger
}

// NewRunner creates a runner. Normalization is on by default.
func NewRunner(lookup TranscriptLookup, calc *hgvs.Calculator) *Runner {
	return &Runner{
		lookup:    lookup,
		calc:      calc,
		normalize: true,
		logger:    zap.NewNop(),
	}
}

// SetWorkers sets the pool size; 0 uses runtime.NumCPU().
func (r *Runner) SetWorkers(n int) {
	r.workers = n
}

// SetNormalize configures VCF anchor trimming before description.
func (r *Runner) SetNormalize(normalize bool) {
	r.normalize = normalize
}

// SetCanonicalOnly configures whether to only describe canonical transcripts.
func (r *Runner) SetCanonicalOnly(canonical bool) {
	r.canonicalOnly = canonical
}

// SetMetrics attaches counters updated as results are collected.
func (r *Runner) SetMetrics(m *Metrics) {
	r.metrics = m
}

// SetLogger sets the logger for warning and info messages.
func (r *Runner) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Describe returns the descriptions of one variant on the transcripts it
// overlaps. Errors for individual transcripts are joined into err while the
// remaining results are still returned.
func (r *Runner) Describe(ctx context.Context, v *vcf.Variant) ([]*hgvs.Result, error) {
	hv := v.HGVS()
	if r.normalize {
		hv = hv.Normalize()
	}
	if !hv.Kind.Supported() {
		return nil, &hgvs.UnsupportedVariantError{Variant: hv}
	}

	lo, hi := hv.Span()
	transcripts := r.lookup.FindOverlapping(cache.NormalizeChrom(hv.Chrom), lo, hi)
	if r.canonicalOnly {
		kept := transcripts[:0:0]
		for _, t := range transcripts {
			if t.IsCanonical {
				kept = append(kept, t)
			}
		}
		transcripts = kept
	}
	if len(transcripts) == 0 {
		return nil, nil
	}
	return r.calc.DescribeAll(ctx, hv, transcripts, false)
}

// Run describes every variant from parser and writes the results in input
// order. Per-variant failures are logged and counted, never fatal; read and
// write errors and cancellation stop the run.
func (r *Runner) Run(ctx context.Context, parser vcf.VariantParser, w ResultWriter) (Stats, error) {
	var stats Stats
	if err := w.WriteHeader(); err != nil {
		return stats, fmt.Errorf("write header: %w", err)
	}

	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	items := make(chan WorkItem, 2*workers)
	var parseErr error

	go func() {
		defer close(items)
		seq := 0
		for {
			v, err := parser.Next()
			if err != nil {
				parseErr = fmt.Errorf("read variant: %w", err)
				return
			}
			if v == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Variant: v}:
				seq++
			case <-ctx.Done():
				return
			}
		}
	}()

	results := r.Parallel(ctx, items, workers)

	if err := OrderedCollect(results, func(wr WorkResult) error {
		if err := r.collect(ctx, wr, w, &stats); err != nil {
			// stop the reader and let workers skip what is left
			cancel()
			return err
		}
		return nil
	}); err != nil {
		return stats, err
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	if parseErr != nil {
		return stats, parseErr
	}

	if stats.Variants == 0 {
		r.logger.Info("0 variants processed")
	}

	return stats, w.Flush()
}

func (r *Runner) collect(ctx context.Context, wr WorkResult, w ResultWriter, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stats.Variants++
	if r.metrics != nil {
		r.metrics.record(wr)
	}
	if wr.Err != nil {
		stats.Skipped++
		r.logger.Warn("failed to describe variant",
			zap.String("chrom", wr.Variant.Chrom),
			zap.Int64("pos", wr.Variant.Pos),
			zap.Int("line", wr.Variant.Line),
			zap.String("reason", Reason(wr.Err)),
			zap.Error(wr.Err))
		if len(wr.Results) == 0 {
			if sw, ok := w.(SkipWriter); ok {
				return sw.Skip(wr.Variant, wr.Err)
			}
			return nil
		}
	}
	if len(wr.Results) == 0 {
		return w.Write(wr.Variant, nil)
	}
	for _, res := range wr.Results {
		stats.Results++
		if err := w.Write(wr.Variant, res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return nil
}
