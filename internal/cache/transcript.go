// Package cache holds the transcript models consumed by the HGVS calculator.
package cache

import (
	"fmt"
	"sort"
	"strings"
)

// UniProtXref is the Xrefs key holding a transcript's UniProtKB/Swiss-Prot accession.
const UniProtXref = "uniprotkb/swissprot"

// Transcript represents a specific gene isoform.
//
// Exons are kept in ascending genomic order regardless of strand; use
// ExonAt to walk them in transcription order.
type Transcript struct {
	ID               string            `json:"id"`                // Transcript ID (e.g., ENST00000311936)
	GeneID           string            `json:"gene_id"`           // Parent gene ID
	GeneName         string            `json:"gene_name"`         // Parent gene symbol
	Chrom            string            `json:"chrom"`             // Chromosome
	Start            int64             `json:"start"`             // Transcript start (1-based)
	End              int64             `json:"end"`               // Transcript end (1-based, inclusive)
	Strand           int8              `json:"strand"`            // +1 or -1
	Biotype          string            `json:"biotype"`           // Transcript biotype
	IsCanonical      bool              `json:"canonical"`         // Ensembl canonical flag
	Exons            []Exon            `json:"exons"`             // Exons in ascending genomic order
	CDSStart         int64             `json:"cds_start"`         // Genomic coding start (lowest coordinate, stop codon included), 0 if non-coding
	CDSEnd           int64             `json:"cds_end"`           // Genomic coding end (highest coordinate), 0 if non-coding
	CDNACodingStart  int               `json:"cdna_coding_start"` // 1-based cDNA index of the first coding base, 0 if non-coding
	CDNACodingEnd    int               `json:"cdna_coding_end"`   // 1-based cDNA index of the last stop codon base, 0 if non-coding
	CDSLength        int               `json:"cds_length"`        // Coding length in nucleotides, stop codon included
	CDNASequence     string            `json:"cdna_sequence"`     // Spliced sequence in transcript orientation
	ProteinID        string            `json:"protein_id"`        // Translation ID (e.g., ENSP00000308495)
	ProteinSequence  string            `json:"protein_sequence"`  // Reference protein, no terminal '*'
	UnconfirmedStart bool              `json:"cds_start_nf"`      // 5' end of the CDS is incomplete
	UnconfirmedEnd   bool              `json:"cds_end_nf"`        // 3' end of the CDS is incomplete
	Xrefs            map[string]string `json:"xrefs,omitempty"`   // External database name -> accession
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number   int   `json:"number"`    // Exon number in transcription order (1-based)
	Start    int64 `json:"start"`     // Genomic start (1-based)
	End      int64 `json:"end"`       // Genomic end (1-based, inclusive)
	CDSStart int64 `json:"cds_start"` // Genomic start of the coding part, 0 if entirely non-coding
	CDSEnd   int64 `json:"cds_end"`   // Genomic end of the coding part, 0 if entirely non-coding
	CDSFrom  int   `json:"cds_from"`  // First CDS position covered (1-based), 0 if non-coding
	CDSTo    int   `json:"cds_to"`    // Last CDS position covered (1-based), 0 if non-coding
	Phase    int   `json:"phase"`     // Ensembl phase of the first base, -1 if non-coding
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDNACodingEnd != 0
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == 1
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// StrandSymbol returns "+" or "-".
func (t *Transcript) StrandSymbol() string {
	if t.IsReverseStrand() {
		return "-"
	}
	return "+"
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// Overlaps returns true if [start, end] shares at least one base with the transcript.
func (t *Transcript) Overlaps(start, end int64) bool {
	return start <= t.End && end >= t.Start
}

// ContainsCDS returns true if the given position is within the CDS boundaries.
func (t *Transcript) ContainsCDS(pos int64) bool {
	if t.CDSStart == 0 {
		return false
	}
	return pos >= t.CDSStart && pos <= t.CDSEnd
}

// HasUnconfirmedStart reports an incomplete 5' CDS, either flagged or
// implied by a protein starting with the unknown residue.
func (t *Transcript) HasUnconfirmedStart() bool {
	return t.UnconfirmedStart || strings.HasPrefix(t.ProteinSequence, "X")
}

// HasUnconfirmedEnd reports an incomplete 3' CDS.
func (t *Transcript) HasUnconfirmedEnd() bool {
	return t.UnconfirmedEnd || strings.HasSuffix(t.ProteinSequence, "X")
}

// FirstCodonPhase returns the phase of the first coding exon in
// transcription order, or 0 when no exon carries one.
func (t *Transcript) FirstCodonPhase() int {
	for i := range t.Exons {
		e := t.ExonAt(i)
		if e.IsCoding() {
			if e.Phase < 0 {
				return 0
			}
			return e.Phase
		}
	}
	return 0
}

// UniProtAccession returns the UniProtKB/Swiss-Prot accession, if any.
func (t *Transcript) UniProtAccession() string {
	return t.Xrefs[UniProtXref]
}

// ExonAt returns the i-th exon in transcription order.
func (t *Transcript) ExonAt(i int) *Exon {
	if t.IsReverseStrand() {
		return &t.Exons[len(t.Exons)-1-i]
	}
	return &t.Exons[i]
}

// ExonLength returns the number of bases in the exon.
func (e *Exon) Length() int {
	return int(e.End - e.Start + 1)
}

// CDNALength returns the spliced transcript length.
func (t *Transcript) CDNALength() int {
	n := 0
	for i := range t.Exons {
		n += t.Exons[i].Length()
	}
	return n
}

// FindExon returns the exon containing the given genomic position, or nil if not in an exon.
func (t *Transcript) FindExon(pos int64) *Exon {
	i := sort.Search(len(t.Exons), func(i int) bool { return t.Exons[i].End >= pos })
	if i < len(t.Exons) && t.Exons[i].Start <= pos {
		return &t.Exons[i]
	}
	return nil
}

// CDNAPosition returns the 1-based cDNA position of an exonic genomic
// position, or 0 when pos is not inside an exon.
func (t *Transcript) CDNAPosition(pos int64) int {
	cum := 0
	for i := range t.Exons {
		e := t.ExonAt(i)
		if pos >= e.Start && pos <= e.End {
			if t.IsReverseStrand() {
				return cum + int(e.End-pos) + 1
			}
			return cum + int(pos-e.Start) + 1
		}
		cum += e.Length()
	}
	return 0
}

// GenomicPosition is the inverse of CDNAPosition for 1 <= cdna <= CDNALength.
// It returns 0 when cdna is out of range.
func (t *Transcript) GenomicPosition(cdna int) int64 {
	if cdna < 1 {
		return 0
	}
	rem := cdna
	for i := range t.Exons {
		e := t.ExonAt(i)
		if rem <= e.Length() {
			if t.IsReverseStrand() {
				return e.End - int64(rem-1)
			}
			return e.Start + int64(rem-1)
		}
		rem -= e.Length()
	}
	return 0
}

// CodingSequence returns the cDNA slice from the start codon through the stop codon.
func (t *Transcript) CodingSequence() string {
	if !t.IsProteinCoding() || t.CDNACodingEnd > len(t.CDNASequence) || t.CDNACodingStart < 1 {
		return ""
	}
	return t.CDNASequence[t.CDNACodingStart-1 : t.CDNACodingEnd]
}

// IsCoding returns true if the exon contains coding sequence.
func (e *Exon) IsCoding() bool {
	return e.CDSStart > 0 && e.CDSEnd > 0
}

// Finalize validates the model and fills fields derivable from the exon
// structure and genomic coding bounds: exon order and numbering, cDNA
// coding bounds, CDS length and the per-exon coding ranges.
func (t *Transcript) Finalize() error {
	if len(t.Exons) == 0 {
		return fmt.Errorf("transcript %s: no exons", t.ID)
	}
	if t.Strand != 1 && t.Strand != -1 {
		return fmt.Errorf("transcript %s: invalid strand %d", t.ID, t.Strand)
	}
	sort.Slice(t.Exons, func(i, j int) bool { return t.Exons[i].Start < t.Exons[j].Start })
	for i := range t.Exons {
		e := &t.Exons[i]
		if e.End < e.Start {
			return fmt.Errorf("transcript %s: exon %d-%d has negative length", t.ID, e.Start, e.End)
		}
		if i > 0 && e.Start <= t.Exons[i-1].End {
			return fmt.Errorf("transcript %s: overlapping exons at %d", t.ID, e.Start)
		}
	}
	if t.Start == 0 || t.End == 0 {
		t.Start = t.Exons[0].Start
		t.End = t.Exons[len(t.Exons)-1].End
	}
	for i := range t.Exons {
		t.ExonAt(i).Number = i + 1
	}

	if n := t.CDNALength(); t.CDNASequence != "" && len(t.CDNASequence) != n {
		return fmt.Errorf("transcript %s: cDNA sequence has %d bases, exons cover %d", t.ID, len(t.CDNASequence), n)
	}
	t.CDNASequence = strings.ToUpper(t.CDNASequence)
	t.ProteinSequence = strings.TrimSuffix(strings.ToUpper(t.ProteinSequence), "*")

	if t.CDSStart == 0 || t.CDSEnd == 0 {
		t.CDNACodingStart, t.CDNACodingEnd, t.CDSLength = 0, 0, 0
		for i := range t.Exons {
			e := &t.Exons[i]
			e.CDSStart, e.CDSEnd, e.CDSFrom, e.CDSTo, e.Phase = 0, 0, 0, 0, -1
		}
		return nil
	}
	if t.FindExon(t.CDSStart) == nil || t.FindExon(t.CDSEnd) == nil {
		return fmt.Errorf("transcript %s: coding bounds %d-%d outside exons", t.ID, t.CDSStart, t.CDSEnd)
	}

	first, last := t.CDSStart, t.CDSEnd
	if t.IsReverseStrand() {
		first, last = t.CDSEnd, t.CDSStart
	}
	t.CDNACodingStart = t.CDNAPosition(first)
	t.CDNACodingEnd = t.CDNAPosition(last)
	t.CDSLength = t.CDNACodingEnd - t.CDNACodingStart + 1

	for i := range t.Exons {
		e := t.ExonAt(i)
		lo, hi := max(e.Start, t.CDSStart), min(e.End, t.CDSEnd)
		if lo > hi {
			e.CDSStart, e.CDSEnd, e.CDSFrom, e.CDSTo, e.Phase = 0, 0, 0, 0, -1
			continue
		}
		e.CDSStart, e.CDSEnd = lo, hi
		a, b := t.CDNAPosition(lo), t.CDNAPosition(hi)
		if a > b {
			a, b = b, a
		}
		e.CDSFrom = a - t.CDNACodingStart + 1
		e.CDSTo = b - t.CDNACodingStart + 1
	}
	return nil
}
