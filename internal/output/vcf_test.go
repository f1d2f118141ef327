package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

var testHeader = []string{
	"##fileformat=VCFv4.2",
	"##INFO=<ID=HGVS,Number=.,Type=String,Description=\"stale\">",
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1",
}

func kras(alt string) *hgvs.Result {
	return &hgvs.Result{
		TranscriptID:   "ENST00000311936",
		Transcript:     hgvs.BuildingComponents{GeneID: "KRAS"},
		TranscriptHGVS: "ENST00000311936(KRAS):c.35G>" + alt,
		ProteinHGVS:    "ENSP00000308495:p.Gly12Asp",
	}
}

func TestVCFWriter_WriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, testHeader)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "##fileformat=VCFv4.2", lines[0])
	assert.Contains(t, lines[1], "Format: Allele|SYMBOL|Feature|HGVSc|HGVSp")
	assert.True(t, strings.HasPrefix(lines[2], "#CHROM"))
}

func TestVCFWriter_GroupsAllelesOfARecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewVCFWriter(&buf, testHeader)

	alleles := []string{"T", "A", "G"}
	base := vcf.Variant{Chrom: "12", Pos: 25245350, ID: "rs121913529", Ref: "C", Filter: "PASS",
		Line: 4, Qual: "50", Info: "DP=10;HGVS=old", Samples: "GT\t0/1", Alleles: alleles}
	t1, a1, g1 := base, base, base
	t1.Alt, a1.Alt, g1.Alt = "T", "A", "G"

	require.NoError(t, w.Write(&t1, kras("A")))
	require.NoError(t, w.Skip(&a1, errors.New("unsupported")))
	require.NoError(t, w.Write(&g1, nil))

	next := &vcf.Variant{Chrom: "12", Pos: 25245400, ID: ".", Ref: "A", Alt: "C", Line: 5,
		Qual: ".", Filter: "PASS", Info: ".", Alleles: []string{"C"}}
	require.NoError(t, w.Write(next, nil))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"12\t25245350\trs121913529\tC\tT,A,G\t50\tPASS\t"+
			"DP=10;HGVS=T|KRAS|ENST00000311936|ENST00000311936(KRAS):c.35G>A|ENSP00000308495:p.Gly12Asp\tGT\t0/1",
		lines[0])
	assert.Equal(t, "12\t25245400\t.\tA\tC\t.\tPASS\t.", lines[1])
}

func TestStripInfo(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "."},
		{".", "."},
		{"DP=3", "DP=3"},
		{"HGVS=x", "."},
		{"DP=3;HGVS=x;AF=0.5", "DP=3;AF=0.5"},
		{"HGVS_OLD=1;HGVS", "HGVS_OLD=1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripInfo(tt.in, "HGVS"), tt.in)
	}
}
