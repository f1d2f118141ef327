package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// HGVS sub-field names.
var hgvsFields = []string{
	"Allele",
	"SYMBOL",
	"Feature",
	"HGVSc",
	"HGVSp",
}

// VCFWriter writes the input records back with an HGVS INFO field.
// Results are buffered per record and flushed when the input line changes.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string // original VCF header lines (## and #CHROM)

	// Buffered state for the current record.
	current *vcf.Variant
	entries []string
}

// NewVCFWriter creates a new VCF output writer.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the original VCF header lines with an inserted HGVS INFO line.
func (vw *VCFWriter) WriteHeader() error {
	infoLine := fmt.Sprintf(
		"##INFO=<ID=HGVS,Number=.,Type=String,Description=\"HGVS descriptions from vibe-hgvs. Format: %s\">",
		strings.Join(hgvsFields, "|"),
	)

	inserted := false
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID=HGVS,") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(infoLine + "\n"); err != nil {
				return err
			}
			inserted = true
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if !inserted {
		_, err := vw.w.WriteString(infoLine + "\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n")
		return err
	}
	return nil
}

// Write buffers a result for v. A nil result records the allele without
// an HGVS entry.
func (vw *VCFWriter) Write(v *vcf.Variant, r *hgvs.Result) error {
	if err := vw.advance(v); err != nil {
		return err
	}
	if r == nil || r.TranscriptHGVS == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString(v.Alt)
	b.WriteByte('|')
	b.WriteString(r.Transcript.GeneID)
	b.WriteByte('|')
	b.WriteString(r.TranscriptID)
	b.WriteByte('|')
	b.WriteString(r.TranscriptHGVS)
	b.WriteByte('|')
	b.WriteString(r.ProteinHGVS)
	vw.entries = append(vw.entries, b.String())
	return nil
}

// Skip keeps the record of a variant that could not be described.
func (vw *VCFWriter) Skip(v *vcf.Variant, _ error) error {
	return vw.advance(v)
}

// Flush writes any buffered record and flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	if err := vw.flushRecord(); err != nil {
		return err
	}
	return vw.w.Flush()
}

func (vw *VCFWriter) advance(v *vcf.Variant) error {
	if vw.current != nil && vw.current.Line == v.Line {
		return nil
	}
	if err := vw.flushRecord(); err != nil {
		return err
	}
	vw.current = v
	return nil
}

// flushRecord writes the buffered record as a VCF line.
func (vw *VCFWriter) flushRecord() error {
	v := vw.current
	if v == nil {
		return nil
	}

	alt := v.Alt
	if len(v.Alleles) > 0 {
		alt = strings.Join(v.Alleles, ",")
	}

	info := stripInfo(v.Info, "HGVS")
	if len(vw.entries) > 0 {
		hgvsInfo := "HGVS=" + strings.Join(vw.entries, ",")
		if info == "." {
			info = hgvsInfo
		} else {
			info += ";" + hgvsInfo
		}
	}

	var lb strings.Builder
	lb.Grow(256)
	lb.WriteString(strings.Join([]string{
		v.Chrom,
		fmt.Sprint(v.Pos),
		dot(v.ID),
		v.Ref,
		alt,
		dot(v.Qual),
		dot(v.Filter),
		info,
	}, "\t"))
	if v.Samples != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.Samples)
	}
	lb.WriteByte('\n')

	vw.current = nil
	vw.entries = nil
	_, err := vw.w.WriteString(lb.String())
	return err
}

// stripInfo removes key from a raw INFO string.
func stripInfo(rawInfo, key string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}

	// Fast path: field not present
	if !strings.Contains(rawInfo, key) {
		return rawInfo
	}

	var kept []string
	for _, field := range strings.Split(rawInfo, ";") {
		if field == key || strings.HasPrefix(field, key+"=") {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}

func dot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
