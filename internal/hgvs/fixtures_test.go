package hgvs

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

const (
	padLen    = 200
	intronLen = 60
	testChrom = "7"
)

var (
	testUTR5 = "GCAGTCAGTCGATCGATCGA" // 20 nt
	// 40 codons plus TAA. Codon 12 GGA (Gly), 26 AGC (Ser), 33 AAA (Lys),
	// 34 ATG (Met), 35 CCC (Pro).
	testCDS = "ATG" +
		"GCTCGTAACGACTGCCAGGAGCACATCCTG" + // 2-11
		"GGA" + // 12
		"AAGTTCCCGAGCACCTGGTACGTGGCCCGCAATGAT" + // 13-24
		"TCC" + "AGC" + // 25-26
		"TGTCAAGAACATATTCTT" + // 27-32
		"AAA" + "ATG" + "CCC" + // 33-35
		"GGTTTTAGAGCATAT" + // 36-40
		"TAA"
	testUTR3  = strings.Repeat("C", 30)
	testExons = []int{60, 50, 63}
)

// memProvider serves a single synthetic chromosome, clipping windows at
// its ends the way indexed FASTA lookups do.
type memProvider struct {
	chrom  string
	genome string
	calls  int
	err    error
}

func (m *memProvider) GetSequence(_ context.Context, chrom string, start, end int64) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if chrom != m.chrom {
		return "", errors.New("unknown chromosome " + chrom)
	}
	if start < 1 {
		start = 1
	}
	if end > int64(len(m.genome)) {
		end = int64(len(m.genome))
	}
	if start > end {
		return "", nil
	}
	return m.genome[start-1 : end], nil
}

// fixture is a transcript embedded in a synthetic genome.
type fixture struct {
	genome string
	t      *cache.Transcript
}

func (f fixture) provider() *memProvider {
	return &memProvider{chrom: testChrom, genome: f.genome}
}

func (f fixture) base(pos int64) string {
	return f.genome[pos-1 : pos]
}

func (f fixture) region(start, end int64) string {
	return f.genome[start-1 : end]
}

// pos returns the genomic position of a c. coordinate.
func (f fixture) pos(tb testing.TB, c CdnaCoord) int64 {
	tb.Helper()
	g, err := CdnaToGenomic(f.t, c)
	require.NoError(tb, err)
	return g
}

func cds(n int) CdnaCoord { return CdnaCoord{ReferencePosition: n, Landmark: StartCodon} }

func filler(n int) string {
	return strings.Repeat("GATTACA", n/7+1)[:n]
}

func translate(cds string) string {
	var b strings.Builder
	for i := 0; i+3 <= len(cds); i += 3 {
		aa := translateCodon(cds[i:i+3], false)
		if aa == '*' {
			break
		}
		b.WriteByte(aa)
	}
	return b.String()
}

// buildFixture lays utr5+cds+utr3 over exons separated by fixed introns
// and flanked by padding. Minus strand fixtures are the exact mirror image
// of the plus strand layout, so both describe identical transcripts.
func buildFixture(tb testing.TB, strand int8, utr5, coding, utr3 string, exonLens []int) fixture {
	tb.Helper()
	cdna := utr5 + coding + utr3

	var b strings.Builder
	b.WriteString(filler(padLen))
	var exons []cache.Exon
	pos := int64(padLen + 1)
	off := 0
	for i, n := range exonLens {
		if i > 0 {
			b.WriteString("GT" + filler(intronLen-4) + "AG")
			pos += intronLen
		}
		b.WriteString(cdna[off : off+n])
		exons = append(exons, cache.Exon{Start: pos, End: pos + int64(n) - 1})
		pos += int64(n)
		off += n
	}
	require.Equal(tb, len(cdna), off, "exon lengths must cover the cDNA")
	b.WriteString(filler(padLen))
	genome := b.String()

	if strand < 0 {
		n := int64(len(genome))
		genome = reverseComplement(genome)
		for i := range exons {
			exons[i] = cache.Exon{Start: n + 1 - exons[i].End, End: n + 1 - exons[i].Start}
		}
		sort.Slice(exons, func(i, j int) bool { return exons[i].Start < exons[j].Start })
	}

	t := &cache.Transcript{
		ID:              "ENST00000000001",
		GeneID:          "ENSG00000000001",
		GeneName:        "TST1",
		Chrom:           testChrom,
		Strand:          strand,
		Biotype:         "protein_coding",
		IsCanonical:     true,
		Exons:           exons,
		CDNASequence:    cdna,
		ProteinID:       "ENSP00000000001",
		ProteinSequence: translate(coding),
	}
	if coding != "" {
		a := t.GenomicPosition(len(utr5) + 1)
		z := t.GenomicPosition(len(utr5) + len(coding))
		t.CDSStart, t.CDSEnd = min(a, z), max(a, z)
	} else {
		t.ProteinSequence, t.ProteinID, t.Biotype = "", "", "lncRNA"
	}
	require.NoError(tb, t.Finalize())
	return fixture{genome: genome, t: t}
}

func plusFixture(tb testing.TB) fixture {
	return buildFixture(tb, 1, testUTR5, testCDS, testUTR3, testExons)
}

func minusFixture(tb testing.TB) fixture {
	return buildFixture(tb, -1, testUTR5, testCDS, testUTR3, testExons)
}

// mirror maps a plus fixture variant onto the minus fixture genome.
func mirror(f fixture, v Variant) Variant {
	n := int64(len(f.genome))
	switch v.Kind {
	case KindInsertion:
		return NewVariant(v.Chrom, n+2-v.Start, "", reverseComplement(v.Alt))
	default:
		return NewVariant(v.Chrom, n+1-v.End, reverseComplement(v.Ref), reverseComplement(v.Alt))
	}
}
