package vcf

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/hts/bgzf"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

const testVCF = `##fileformat=VCFv4.2
##contig=<ID=12>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	TUMOR	NORMAL
12	25245350	rs121913529	C	A,T	.	PASS	.	GT	0/1	0/0

7	140753336	.	A	AT	50	PASS	DP=10
17	7675088	.	CTG	C	.	LowQual	.
`

func writeFile(t *testing.T, name string, write func(f *os.File)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	write(f)
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", name, err)
	}
	return path
}

func readAll(t *testing.T, p VariantParser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		if err != nil {
			t.Fatalf("Error reading variant: %v", err)
		}
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestParser_SplitsMultiAllelic(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	variants := readAll(t, p)

	if len(variants) != 4 {
		t.Fatalf("Expected 4 variants, got %d", len(variants))
	}
	if variants[0].Alt != "A" || variants[1].Alt != "T" {
		t.Errorf("Expected ALT alleles A then T, got %s then %s", variants[0].Alt, variants[1].Alt)
	}
	if variants[1].Line != 4 || variants[2].Line != 6 {
		t.Errorf("Unexpected line numbers %d, %d", variants[1].Line, variants[2].Line)
	}
	if got := p.SampleNames(); len(got) != 2 || got[0] != "TUMOR" {
		t.Errorf("Unexpected sample names %v", got)
	}
	if len(p.Header()) != 3 {
		t.Errorf("Expected 3 header lines, got %d", len(p.Header()))
	}
	if v := variants[1]; v.Samples != "GT\t0/1\t0/0" || len(v.Alleles) != 2 || v.Qual != "." {
		t.Errorf("Unexpected record columns %q %v %q", v.Samples, v.Alleles, v.Qual)
	}
	if v := variants[2]; v.Info != "DP=10" || v.Qual != "50" || v.Samples != "" {
		t.Errorf("Unexpected record columns %q %q %q", v.Info, v.Qual, v.Samples)
	}
}

func TestVariant_HGVS(t *testing.T) {
	ins := &Variant{Chrom: "7", Pos: 140753336, Ref: "A", Alt: "AT"}
	got := ins.HGVS().Normalize()
	if got.Kind != hgvs.KindInsertion || got.Start != 140753337 || got.Alt != "T" {
		t.Errorf("Unexpected normalized insertion %+v", got)
	}

	if l := ins.Label(); l != "7:140753336:A:AT" {
		t.Errorf("Label() = %s", l)
	}
	if l := (&Variant{ID: "rs1"}).Label(); l != "rs1" {
		t.Errorf("Label() = %s", l)
	}
}

func TestParser_Compressed(t *testing.T) {
	gz := writeFile(t, "plain.vcf.gz", func(f *os.File) {
		w := gzip.NewWriter(f)
		w.Write([]byte(testVCF))
		w.Close()
	})
	bg := writeFile(t, "blocked.vcf.gz", func(f *os.File) {
		w := bgzf.NewWriter(f, 1)
		w.Write([]byte(testVCF))
		w.Close()
	})
	plain := writeFile(t, "plain.vcf", func(f *os.File) {
		f.WriteString(testVCF)
	})

	for _, path := range []string{gz, bg, plain} {
		p, err := NewParser(path)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		variants := readAll(t, p)
		p.Close()
		if len(variants) != 4 {
			t.Errorf("%s: expected 4 variants, got %d", filepath.Base(path), len(variants))
		}
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"missing header", "1\t100\t.\tA\tG\t.\t.\t.\n", 1},
		{"no chrom line", "##fileformat=VCFv4.2\n", 1},
		{"short row", "#CHROM\tPOS\n1\t100\t.\tA\n", 2},
		{"bad position", "#CHROM\tPOS\n1\tx\t.\tA\tG\t.\t.\t.\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader(tt.input))
			if err == nil {
				_, err = p.Next()
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected ParseError, got %v", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Expected line %d, got %d", tt.line, pe.Line)
			}
		})
	}
}

func TestListParser(t *testing.T) {
	input := "# comment\n12:25245350:C:T\n\n7:140753337:-:T\nbad line\n"
	p := NewListParserFromReader(strings.NewReader(input))

	v, err := p.Next()
	if err != nil || v == nil || v.Pos != 25245350 || v.Line != 2 {
		t.Fatalf("Unexpected first variant %+v, %v", v, err)
	}
	v, err = p.Next()
	if err != nil || v.Ref != "" || v.Alt != "T" {
		t.Fatalf("Unexpected second variant %+v, %v", v, err)
	}
	if v.Label() != "7:140753337:-:T" {
		t.Errorf("Label() = %s", v.Label())
	}
	_, err = p.Next()
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Line != 5 {
		t.Fatalf("Expected ParseError at line 5, got %v", err)
	}
}

func TestOpen(t *testing.T) {
	vcfPath := writeFile(t, "in.vcf", func(f *os.File) { f.WriteString(testVCF) })
	listPath := writeFile(t, "in.txt", func(f *os.File) { f.WriteString("1:10:A:G\n") })

	p, err := Open(vcfPath)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if _, ok := p.(*Parser); !ok {
		t.Errorf("Expected *Parser for %s", vcfPath)
	}

	l, err := Open(listPath)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if got := readAll(t, l); len(got) != 1 {
		t.Errorf("Expected 1 variant, got %d", len(got))
	}
}
