// Package output provides result formatters for batch runs.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// TabWriter writes HGVS results in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Uploaded_variation",
			"Location",
			"Allele",
			"Gene",
			"Feature",
			"Protein_id",
			"UniProt",
			"Mutation",
			"Protein_change",
			"Frame",
			"HGVSc",
			"HGVSp",
			"Note",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single result. A nil result writes the variant with every
// transcript column empty.
func (tw *TabWriter) Write(v *vcf.Variant, r *hgvs.Result) error {
	values := make([]string, 0, len(tw.columns))
	values = append(values, v.Label())

	if r == nil {
		values = append(values, fmt.Sprintf("%s:%d", v.Chrom, v.Pos), dash(v.Alt))
		for len(values) < len(tw.columns) {
			values = append(values, "-")
		}
		_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
		return err
	}

	// Location of the normalized (and shifted) variant
	location := fmt.Sprintf("%s:%d", r.Variant.Chrom, r.Variant.Start)
	if r.Variant.End > r.Variant.Start {
		location = fmt.Sprintf("%s:%d-%d", r.Variant.Chrom, r.Variant.Start, r.Variant.End)
	} else if r.Variant.End < r.Variant.Start {
		location = fmt.Sprintf("%s:%d-%d", r.Variant.Chrom, r.Variant.End, r.Variant.Start)
	}

	bc := r.Transcript
	proteinChange, frame := "-", "-"
	if r.Protein != nil {
		proteinChange = r.Protein.Kind.String()
		frame = r.Protein.Frame.String()
	}
	note := "-"
	if r.Anomaly != nil {
		note = strings.ReplaceAll(r.Anomaly.Error(), "\t", " ")
	}

	proteinID := "-"
	if bc.Coding {
		proteinID = dash(bc.ProteinID)
	}

	values = append(values,
		location,
		dash(r.Variant.Alt),
		dash(bc.GeneID),
		dash(r.TranscriptID),
		proteinID,
		dash(r.UniProt),
		bc.Mutation.String(),
		proteinChange,
		frame,
		dash(r.TranscriptHGVS),
		dash(r.ProteinHGVS),
		note,
	)

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
