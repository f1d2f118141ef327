package vcf

import (
	"strconv"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// Variant is one ALT allele of an input record.
type Variant struct {
	Chrom  string // Chromosome name (e.g., "12", "chr12")
	Pos    int64  // 1-based genomic position
	ID     string // Variant identifier (e.g., rs ID)
	Ref    string // Reference allele
	Alt    string // Alternate allele (single allele after splitting)
	Filter string // Filter status (PASS or filter name)
	Line   int    // Input line the variant came from

	// Record columns kept for VCF output; empty for list input.
	Qual    string   // QUAL column
	Info    string   // INFO column as read
	Samples string   // FORMAT and sample columns, tab-separated
	Alleles []string // every ALT allele of the record, shared by its variants
}

// HGVS converts the record to a calculator variant. Alleles keep their VCF
// anchor base; the calculator trims it when normalizing.
func (v *Variant) HGVS() hgvs.Variant {
	return hgvs.NewVariant(v.Chrom, v.Pos, v.Ref, v.Alt)
}

// Label identifies the variant in output: its ID when set, otherwise
// chrom:pos:ref:alt.
func (v *Variant) Label() string {
	if v.ID != "" && v.ID != "." {
		return v.ID
	}
	return v.Chrom + ":" + strconv.FormatInt(v.Pos, 10) + ":" + allele(v.Ref) + ":" + allele(v.Alt)
}

func allele(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
