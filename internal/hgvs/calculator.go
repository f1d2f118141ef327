package hgvs

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// SequenceProvider returns upper-case reference sequence for a 1-based
// inclusive genomic region.
type SequenceProvider interface {
	GetSequence(ctx context.Context, chrom string, start, end int64) (string, error)
}

// Result is the full description of one variant on one transcript.
type Result struct {
	// Variant is the normalized and justified variant the strings describe.
	Variant        Variant
	TranscriptID   string
	Transcript     BuildingComponents
	Protein        *ProteinChange
	TranscriptHGVS string
	ProteinHGVS    string
	UniProt        string
	// Anomaly is set when a protein description was expected but omitted.
	Anomaly error
}

// Strings returns the transcript string followed by the protein string
// when one was produced.
func (r *Result) Strings() []string {
	if r == nil || r.TranscriptHGVS == "" {
		return nil
	}
	if r.ProteinHGVS == "" {
		return []string{r.TranscriptHGVS}
	}
	return []string{r.TranscriptHGVS, r.ProteinHGVS}
}

// Calculator computes HGVS descriptions. It holds no per-call state and is
// safe for concurrent use when its SequenceProvider is.
type Calculator struct {
	seq    SequenceProvider
	logger *zap.Logger
}

// NewCalculator creates a calculator reading indel context from seq.
func NewCalculator(seq SequenceProvider) *Calculator {
	return &Calculator{
		seq:    seq,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for protein boundary warnings.
func (c *Calculator) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Compute returns zero, one or two HGVS strings for v on t: none when v
// does not overlap t, the transcript string, and the protein string when
// one applies.
func (c *Calculator) Compute(ctx context.Context, v Variant, t *cache.Transcript, geneID string, normalize bool) ([]string, error) {
	r, err := c.Describe(ctx, v, t, geneID, normalize)
	if err != nil {
		return nil, err
	}
	return r.Strings(), nil
}

// ComputeGene runs Compute over the transcripts of g accepted by filter (all
// when filter is nil). An unsupported variant fails immediately; sequence
// lookup failures skip the transcript and are joined into the returned error.
func (c *Calculator) ComputeGene(ctx context.Context, v Variant, g *cache.Gene, normalize bool, filter func(*cache.Transcript) bool) ([]string, error) {
	if normalize {
		v = v.Normalize()
	}
	if !v.Kind.Supported() {
		return nil, &UnsupportedVariantError{Variant: v}
	}
	geneID := g.Name
	if geneID == "" {
		geneID = g.ID
	}

	var out []string
	var errs []error
	w := &lazyWindow{}
	for _, t := range g.Transcripts {
		if filter != nil && !filter(t) {
			continue
		}
		r, err := c.describe(ctx, v, t, geneID, w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, r.Strings()...)
	}
	return out, errors.Join(errs...)
}

// ComputeGenes runs ComputeGene over every gene with no transcript filter.
func (c *Calculator) ComputeGenes(ctx context.Context, v Variant, genes []*cache.Gene, normalize bool) ([]string, error) {
	if normalize {
		v = v.Normalize()
	}
	if !v.Kind.Supported() {
		return nil, &UnsupportedVariantError{Variant: v}
	}
	var out []string
	var errs []error
	for _, g := range genes {
		s, err := c.ComputeGene(ctx, v, g, false, nil)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, s...)
	}
	return out, errors.Join(errs...)
}

// Describe computes the full result for v on t. It returns nil without
// error when v does not overlap t.
func (c *Calculator) Describe(ctx context.Context, v Variant, t *cache.Transcript, geneID string, normalize bool) (*Result, error) {
	if normalize {
		v = v.Normalize()
	}
	if !v.Kind.Supported() {
		return nil, &UnsupportedVariantError{Variant: v}
	}
	return c.describe(ctx, v, t, geneID, &lazyWindow{})
}

// DescribeAll describes v on each transcript, sharing one reference window.
// Transcripts v does not overlap are left out. Per-transcript failures are
// joined into the returned error alongside the results that succeeded.
func (c *Calculator) DescribeAll(ctx context.Context, v Variant, transcripts []*cache.Transcript, normalize bool) ([]*Result, error) {
	if normalize {
		v = v.Normalize()
	}
	if !v.Kind.Supported() {
		return nil, &UnsupportedVariantError{Variant: v}
	}
	var out []*Result
	var errs []error
	w := &lazyWindow{}
	for _, t := range transcripts {
		geneID := t.GeneName
		if geneID == "" {
			geneID = t.GeneID
		}
		r, err := c.describe(ctx, v, t, geneID, w)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if r != nil {
			out = append(out, r)
		}
	}
	return out, errors.Join(errs...)
}

// lazyWindow fetches the reference window once for all transcripts of a
// variant. Justification is strand specific, the window is not.
type lazyWindow struct {
	w    window
	err  error
	done bool
}

func (c *Calculator) window(ctx context.Context, v Variant, lw *lazyWindow) (window, error) {
	if lw.done {
		return lw.w, lw.err
	}
	lw.done = true
	start, end := windowBounds(v)
	seq, err := c.seq.GetSequence(ctx, v.Chrom, start, end)
	if err != nil || seq == "" {
		lw.err = &SequenceLookupError{Chrom: v.Chrom, Start: start, End: end, Err: err}
		return lw.w, lw.err
	}
	lw.w = window{start: start, seq: seq}
	return lw.w, nil
}

func (c *Calculator) describe(ctx context.Context, v Variant, t *cache.Transcript, geneID string, lw *lazyWindow) (*Result, error) {
	if t.Chrom != "" && cache.NormalizeChrom(t.Chrom) != cache.NormalizeChrom(v.Chrom) {
		return nil, nil
	}
	lo, hi := v.Span()
	if !t.Overlaps(lo, hi) {
		return nil, nil
	}

	var dup duplication
	var isDup bool
	if v.Kind == KindInsertion || v.Kind == KindDeletion {
		w, err := c.window(ctx, v, lw)
		if err != nil {
			return nil, err
		}
		v = justify(v, w, t.Strand)
		dup, isDup = detectDuplication(v, w)
	}

	mk, err := classifyMutation(v, isDup)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Variant:      v,
		TranscriptID: t.ID,
		Transcript:   transcriptComponents(v, t, geneID, mk, dup),
		UniProt:      t.UniProtAccession(),
	}
	r.TranscriptHGVS = FormatTranscript(r.Transcript)

	pc, err := newPredictor(t, v.Chrom).predict(v, mk)
	if err != nil {
		r.Anomaly = err
		var pb *ProteinBoundaryError
		if errors.As(err, &pb) {
			c.logger.Warn("protein description omitted",
				zap.String("transcript", pb.TranscriptID),
				zap.String("variant", v.String()),
				zap.Int("protein_start", pb.Position),
				zap.Int("protein_length", pb.ProteinLength),
				zap.String("reason", pb.Reason))
		}
		return r, nil
	}
	if pc != nil {
		r.Protein = pc
		r.ProteinHGVS = FormatProtein(r.Transcript.ProteinID, pc)
	}
	return r, nil
}

// transcriptComponents places the edit in transcript orientation.
func transcriptComponents(v Variant, t *cache.Transcript, geneID string, mk MutationKind, dup duplication) BuildingComponents {
	bc := BuildingComponents{
		GeneID:       geneID,
		TranscriptID: t.ID,
		ProteinID:    t.ProteinID,
		Coding:       t.IsProteinCoding(),
		Ref:          v.Ref,
		Alt:          v.Alt,
		Mutation:     mk,
	}
	if bc.ProteinID == "" {
		bc.ProteinID = t.ID
	}

	// genomic interval in ascending order
	var a, b int64
	switch mk {
	case Substitution:
		a, b = v.Start, v.Start
	case Insertion:
		a, b = v.End, v.Start
	case Duplication:
		a, b = dup.start, dup.end
	default:
		a, b = v.Start, v.End
	}

	if t.IsReverseStrand() {
		a, b = b, a
		bc.Ref = reverseComplement(bc.Ref)
		bc.Alt = reverseComplement(bc.Alt)
	}
	bc.Start = GenomicToCdna(t, a)
	bc.End = GenomicToCdna(t, b)
	return bc
}
