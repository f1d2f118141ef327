package hgvs

const (
	// NeighbouringSequenceSize is the reference radius fetched around an
	// indel for justification and duplication checks.
	NeighbouringSequenceSize = 100

	// MaxAlleleLength is the longest allele rendered literally; longer
	// alleles are rendered as their length.
	MaxAlleleLength = 4
)

// window is a slice of reference sequence starting at a 1-based genomic position.
type window struct {
	start int64
	seq   string
}

func (w window) end() int64 {
	return w.start + int64(len(w.seq)) - 1
}

// at returns the base at a genomic position.
func (w window) at(pos int64) (byte, bool) {
	if pos < w.start || pos > w.end() {
		return 0, false
	}
	return w.seq[pos-w.start], true
}

// region returns the bases in [start, end].
func (w window) region(start, end int64) (string, bool) {
	if start < w.start || end > w.end() || end < start {
		return "", false
	}
	return w.seq[start-w.start : end-w.start+1], true
}

// windowBounds returns the reference region needed to justify v.
func windowBounds(v Variant) (int64, int64) {
	return max(v.Start-NeighbouringSequenceSize, 1), max(v.Start, v.End) + NeighbouringSequenceSize
}

// justify shifts an indel along repeated reference sequence in the 3'
// direction of the transcript: right for + strand, left for - strand. Each
// step rotates the allele by one base. The input is not modified.
func justify(v Variant, w window, strand int8) Variant {
	if v.Kind != KindInsertion && v.Kind != KindDeletion {
		return v
	}
	allele := v.Ref
	if v.Kind == KindInsertion {
		allele = v.Alt
	}
	if allele == "" {
		return v
	}

	out := v
	if strand < 0 {
		for {
			b, ok := w.at(out.Start - 1)
			if !ok || b != allele[len(allele)-1] {
				break
			}
			allele = string(b) + allele[:len(allele)-1]
			out = out.shift(-1, allele)
		}
		return out
	}
	for {
		b, ok := w.at(out.End + 1)
		if !ok || b != allele[0] {
			break
		}
		allele = allele[1:] + string(b)
		out = out.shift(1, allele)
	}
	return out
}

// duplication is the reference copy an insertion duplicates.
type duplication struct {
	start, end int64
}

// detectDuplication compares an insertion's bases with the equally long
// reference windows immediately before and after the insertion point.
func detectDuplication(v Variant, w window) (duplication, bool) {
	if v.Kind != KindInsertion || v.Alt == "" {
		return duplication{}, false
	}
	n := int64(len(v.Alt))
	if before, ok := w.region(v.Start-n, v.Start-1); ok && before == v.Alt {
		return duplication{start: v.Start - n, end: v.Start - 1}, true
	}
	if after, ok := w.region(v.Start, v.Start+n-1); ok && after == v.Alt {
		return duplication{start: v.Start, end: v.Start + n - 1}, true
	}
	return duplication{}, false
}
