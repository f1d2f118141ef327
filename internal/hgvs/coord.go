package hgvs

import (
	"fmt"
	"strconv"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// Landmark is the anchor a CdnaCoord is measured from.
type Landmark int

const (
	TranscriptStart Landmark = iota // n.N and n.-N
	StartCodon                      // c.N and c.-N
	StopCodon                       // c.*N
	TranscriptEnd                   // n.*N
)

func (l Landmark) String() string {
	switch l {
	case StartCodon:
		return "CDNA_START_CODON"
	case StopCodon:
		return "CDNA_STOP_CODON"
	case TranscriptEnd:
		return "TRANSCRIPT_END"
	default:
		return "TRANSCRIPT_START"
	}
}

// CdnaCoord is an anchor-relative transcript coordinate.
//
// ReferencePosition is the signed distance from the landmark along the
// spliced transcript (c.-14 is -14 from StartCodon, c.*6 is 6 from
// StopCodon). Offset is non-zero only for intronic positions and is the
// signed distance from the nearest exon edge. Flanking positions before the
// first or after the last exon keep Offset 0 and extend ReferencePosition
// instead, so c.-71 is {-71, 0, StartCodon}.
type CdnaCoord struct {
	ReferencePosition int
	Offset            int
	Landmark          Landmark
}

// String renders the coordinate without its c./n. prefix: 76, -14, *6, 88+1, 89-2.
func (c CdnaCoord) String() string {
	var s string
	if c.Landmark == StopCodon || c.Landmark == TranscriptEnd {
		s = "*" + strconv.Itoa(c.ReferencePosition)
	} else {
		s = strconv.Itoa(c.ReferencePosition)
	}
	switch {
	case c.Offset > 0:
		s += "+" + strconv.Itoa(c.Offset)
	case c.Offset < 0:
		s += strconv.Itoa(c.Offset)
	}
	return s
}

// IsIntronic reports whether the coordinate carries an intron offset.
func (c CdnaCoord) IsIntronic() bool {
	return c.Offset != 0
}

// GenomicToCdna maps a genomic position onto a transcript coordinate.
//
// Exonic positions are numbered along the spliced transcript. Intronic
// positions are anchored on the nearest exon edge, the upstream one on a
// tie. Positions beyond either end of the transcript continue the flanking
// numbering (c.-N, c.*N).
func GenomicToCdna(t *cache.Transcript, pos int64) CdnaCoord {
	tpos, offset := transcriptPosition(t, pos)
	return anchor(t, tpos, offset)
}

// transcriptPosition returns a 1-based position along the spliced transcript
// plus an intronic offset. Upstream flank positions are <= 0 and downstream
// flank positions exceed the transcript length.
func transcriptPosition(t *cache.Transcript, pos int64) (int, int) {
	rev := t.IsReverseStrand()
	// distance from a to b in transcription direction
	along := func(a, b int64) int {
		if rev {
			return int(a - b)
		}
		return int(b - a)
	}

	n := len(t.Exons)
	first, last := t.ExonAt(0), t.ExonAt(n-1)
	if d := along(pos, fivePrime(first, rev)); d > 0 {
		return 1 - d, 0
	}
	if d := along(threePrime(last, rev), pos); d > 0 {
		return t.CDNALength() + d, 0
	}

	cum := 0
	for i := 0; i < n; i++ {
		e := t.ExonAt(i)
		if pos >= e.Start && pos <= e.End {
			return cum + along(fivePrime(e, rev), pos) + 1, 0
		}
		cum += e.Length()
		if i+1 < n {
			next := t.ExonAt(i + 1)
			dUp := along(threePrime(e, rev), pos)
			dDown := along(pos, fivePrime(next, rev))
			if dUp > 0 && dDown > 0 {
				if dUp <= dDown {
					return cum, dUp
				}
				return cum + 1, -dDown
			}
		}
	}
	// unreachable for finalized transcripts
	return 0, 0
}

// fivePrime returns the exon's first base in transcription order.
func fivePrime(e *cache.Exon, rev bool) int64 {
	if rev {
		return e.End
	}
	return e.Start
}

// threePrime returns the exon's last base in transcription order.
func threePrime(e *cache.Exon, rev bool) int64 {
	if rev {
		return e.Start
	}
	return e.End
}

// anchor assigns the landmark for a transcript position.
func anchor(t *cache.Transcript, tpos, offset int) CdnaCoord {
	if !t.IsProteinCoding() {
		total := t.CDNALength()
		switch {
		case tpos <= 0:
			return CdnaCoord{ReferencePosition: tpos - 1, Offset: offset, Landmark: TranscriptStart}
		case tpos > total:
			return CdnaCoord{ReferencePosition: tpos - total, Offset: offset, Landmark: TranscriptEnd}
		default:
			return CdnaCoord{ReferencePosition: tpos, Offset: offset, Landmark: TranscriptStart}
		}
	}
	cs, ce := t.CDNACodingStart, t.CDNACodingEnd
	switch {
	case tpos < cs:
		return CdnaCoord{ReferencePosition: tpos - cs, Offset: offset, Landmark: StartCodon}
	case tpos > ce:
		return CdnaCoord{ReferencePosition: tpos - ce, Offset: offset, Landmark: StopCodon}
	default:
		return CdnaCoord{ReferencePosition: tpos - cs + 1, Offset: offset, Landmark: StartCodon}
	}
}

// CdnaToGenomic is the inverse of GenomicToCdna.
func CdnaToGenomic(t *cache.Transcript, c CdnaCoord) (int64, error) {
	var tpos int
	total := t.CDNALength()
	switch c.Landmark {
	case StartCodon, StopCodon:
		if !t.IsProteinCoding() {
			return 0, fmt.Errorf("coordinate %s: transcript %s is non-coding", c, t.ID)
		}
		switch {
		case c.Landmark == StopCodon:
			tpos = t.CDNACodingEnd + c.ReferencePosition
		case c.ReferencePosition < 0:
			tpos = t.CDNACodingStart + c.ReferencePosition
		case c.ReferencePosition > 0:
			tpos = t.CDNACodingStart + c.ReferencePosition - 1
		default:
			return 0, fmt.Errorf("coordinate %s: position 0 does not exist", c)
		}
	case TranscriptStart:
		switch {
		case c.ReferencePosition < 0:
			tpos = c.ReferencePosition + 1
		case c.ReferencePosition > 0:
			tpos = c.ReferencePosition
		default:
			return 0, fmt.Errorf("coordinate %s: position 0 does not exist", c)
		}
	case TranscriptEnd:
		tpos = total + c.ReferencePosition
	default:
		return 0, fmt.Errorf("coordinate %s: unknown landmark %d", c, c.Landmark)
	}

	rev := t.IsReverseStrand()
	var g int64
	switch {
	case tpos < 1:
		g = fivePrime(t.ExonAt(0), rev)
		g = step(g, tpos-1, rev)
	case tpos > total:
		g = threePrime(t.ExonAt(len(t.Exons)-1), rev)
		g = step(g, tpos-total, rev)
	default:
		g = t.GenomicPosition(tpos)
	}
	return step(g, c.Offset, rev), nil
}

// step moves n bases in transcription direction.
func step(g int64, n int, rev bool) int64 {
	if rev {
		return g - int64(n)
	}
	return g + int64(n)
}
