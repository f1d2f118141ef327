// Package hgvs computes HGVS transcript (c./n.) and protein (p.) descriptions
// of genomic variants against transcript models.
package hgvs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind is the variant class a Variant is dispatched on.
type Kind int

const (
	KindUnknown    Kind = iota // no change or unparseable alleles
	KindSNV                    // one base replaced by another
	KindInsertion              // Ref empty
	KindDeletion               // Alt empty
	KindDelins                 // both alleles non-empty, lengths differ
	KindMNV                    // both alleles longer than one base, same length
	KindStructural             // symbolic or breakend allele
)

func (k Kind) String() string {
	switch k {
	case KindSNV:
		return "SNV"
	case KindInsertion:
		return "insertion"
	case KindDeletion:
		return "deletion"
	case KindDelins:
		return "delins"
	case KindMNV:
		return "MNV"
	case KindStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// Supported reports whether the calculator can describe this kind.
func (k Kind) Supported() bool {
	return k == KindSNV || k == KindInsertion || k == KindDeletion
}

var (
	variantPattern    = regexp.MustCompile(`^([^:\s]+):(\d+):([^:\s]*):(\S*)$`)
	structuralPattern = regexp.MustCompile(`^<.+>$|[\[\]]|^\*$|^\.[ACGTN]+$|^[ACGTN]+\.$`)
	nucleotidePattern = regexp.MustCompile(`^[ACGTN]*$`)
)

// Variant is a genomic variant in 1-based inclusive coordinates.
//
// For insertions Ref is empty and End == Start-1: the inserted bases sit
// between End and Start. Values are never modified in place; Normalize and
// justification return new Variants.
type Variant struct {
	Chrom string
	Start int64
	End   int64
	Ref   string
	Alt   string
	Kind  Kind
}

// NewVariant builds a Variant from alleles as given. "-" and "." denote an
// empty allele. Alleles are upper-cased; End and Kind are derived.
func NewVariant(chrom string, start int64, ref, alt string) Variant {
	ref, alt = cleanAllele(ref), cleanAllele(alt)
	return Variant{
		Chrom: chrom,
		Start: start,
		End:   start + int64(len(ref)) - 1,
		Ref:   ref,
		Alt:   alt,
		Kind:  deriveKind(ref, alt),
	}
}

// ParseVariant parses "chrom:pos:ref:alt".
func ParseVariant(s string) (Variant, error) {
	m := variantPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Variant{}, fmt.Errorf("parse variant %q: expected chrom:pos:ref:alt", s)
	}
	pos, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil || pos < 1 {
		return Variant{}, fmt.Errorf("parse variant %q: invalid position", s)
	}
	return NewVariant(m[1], pos, m[3], m[4]), nil
}

func cleanAllele(a string) string {
	if a == "-" || a == "." {
		return ""
	}
	return strings.ToUpper(a)
}

func deriveKind(ref, alt string) Kind {
	if structuralPattern.MatchString(alt) || structuralPattern.MatchString(ref) {
		return KindStructural
	}
	if !nucleotidePattern.MatchString(ref) || !nucleotidePattern.MatchString(alt) || ref == alt {
		return KindUnknown
	}
	switch {
	case ref == "":
		return KindInsertion
	case alt == "":
		return KindDeletion
	case len(ref) == 1 && len(alt) == 1:
		return KindSNV
	case len(ref) == len(alt):
		return KindMNV
	default:
		return KindDelins
	}
}

// Normalize trims the bases shared by both alleles, first from the right
// and then from the left, and returns the minimal representation. A VCF
// style anchored indel (A/ATAC at 100) becomes an insertion of TAC between
// 100 and 101.
func (v Variant) Normalize() Variant {
	if v.Kind == KindStructural || v.Kind == KindUnknown {
		return v
	}
	ref, alt := v.Ref, v.Alt
	for len(ref) > 0 && len(alt) > 0 && ref[len(ref)-1] == alt[len(alt)-1] {
		ref, alt = ref[:len(ref)-1], alt[:len(alt)-1]
	}
	start := v.Start
	for len(ref) > 0 && len(alt) > 0 && ref[0] == alt[0] {
		ref, alt = ref[1:], alt[1:]
		start++
	}
	return NewVariant(v.Chrom, start, ref, alt)
}

// shift returns a copy moved by delta bases carrying the rotated allele.
func (v Variant) shift(delta int64, allele string) Variant {
	out := v
	out.Start += delta
	out.End += delta
	if v.Kind == KindInsertion {
		out.Alt = allele
	} else {
		out.Ref = allele
	}
	return out
}

// Span returns the lowest and highest genomic positions touched. For an
// insertion these are its two flanking bases.
func (v Variant) Span() (int64, int64) {
	return min(v.Start, v.End), max(v.Start, v.End)
}

func (v Variant) String() string {
	ref, alt := v.Ref, v.Alt
	if ref == "" {
		ref = "-"
	}
	if alt == "" {
		alt = "-"
	}
	return fmt.Sprintf("%s:%d:%s:%s", v.Chrom, v.Start, ref, alt)
}
