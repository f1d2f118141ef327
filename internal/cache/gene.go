package cache

import "sort"

// Gene groups the transcripts sharing a gene ID.
type Gene struct {
	ID          string        // Gene identifier (e.g., ENSG00000133703)
	Name        string        // Gene symbol (e.g., KRAS)
	Chrom       string        // Chromosome
	Start       int64         // Lowest transcript start (1-based)
	End         int64         // Highest transcript end (1-based, inclusive)
	Strand      int8          // +1 (forward) or -1 (reverse)
	Transcripts []*Transcript // Associated transcripts, sorted by ID
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == -1
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// Canonical returns the canonical transcript, falling back to the longest
// coding transcript and then the first one.
func (g *Gene) Canonical() *Transcript {
	var best *Transcript
	for _, t := range g.Transcripts {
		if t.IsCanonical {
			return t
		}
		if best == nil || (t.IsProteinCoding() && (!best.IsProteinCoding() || t.CDSLength > best.CDSLength)) {
			best = t
		}
	}
	return best
}

// Transcript returns the gene's transcript with the given ID, or nil.
func (g *Gene) Transcript(id string) *Transcript {
	for _, t := range g.Transcripts {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (g *Gene) add(t *Transcript) {
	if len(g.Transcripts) == 0 || t.Start < g.Start {
		g.Start = t.Start
	}
	if len(g.Transcripts) == 0 || t.End > g.End {
		g.End = t.End
	}
	if g.Name == "" {
		g.Name = t.GeneName
	}
	g.Transcripts = append(g.Transcripts, t)
	sort.Slice(g.Transcripts, func(i, j int) bool { return g.Transcripts[i].ID < g.Transcripts[j].ID })
}

func (g *Gene) remove(t *Transcript) {
	for i, x := range g.Transcripts {
		if x == t {
			g.Transcripts = append(g.Transcripts[:i:i], g.Transcripts[i+1:]...)
			return
		}
	}
}
