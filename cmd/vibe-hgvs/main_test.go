package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// Single exon transcript at 41-85 on chromosome 7 with the coding sequence
// ATG GGA AAA TGG CTT TAA at 51-68.
const (
	flank   = "GATTACAGATTACAGATTACAGATTACAGATTACAGATTA"
	utr5    = "GCCGCCACCA"
	coding  = "ATGGGAAAATGGCTTTAA"
	utr3    = "CCCCCCCCCCCCCCCCC"
	testSeq = flank + utr5 + coding + utr3 + flank
)

type fixture struct {
	dir    string
	config string
	fasta  string
	models string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		config: filepath.Join(dir, "vibe-hgvs.yaml"),
		fasta:  filepath.Join(dir, "ref.fa"),
		models: filepath.Join(dir, "models.json"),
	}

	var fa strings.Builder
	fa.WriteString(">7 test contig\n")
	for i := 0; i < len(testSeq); i += 60 {
		fa.WriteString(testSeq[i:min(i+60, len(testSeq))])
		fa.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(f.fasta, []byte(fa.String()), 0644))

	models, err := json.Marshal([]*cache.Transcript{{
		ID:              "ENST00000000009",
		GeneID:          "ENSG00000000009",
		GeneName:        "BTC1",
		Chrom:           "7",
		Strand:          1,
		Biotype:         "protein_coding",
		IsCanonical:     true,
		Exons:           []cache.Exon{{Start: 41, End: 85}},
		CDSStart:        51,
		CDSEnd:          68,
		CDNASequence:    utr5 + coding + utr3,
		ProteinID:       "ENSP00000000009",
		ProteinSequence: "MGKWL",
	}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(f.models, models, 0644))

	cfg := "models:\n  - " + f.models + "\nreference: fasta:" + f.fasta + "\n"
	require.NoError(t, os.WriteFile(f.config, []byte(cfg), 0644))
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cfgFile, verbose = "", false

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", f.config}, args...))
	err := root.Execute()
	return out.String(), err
}

const (
	wantC = "ENST00000000009(BTC1):c.5G>A"
	wantP = "ENSP00000000009:p.Gly2Glu"
)

func TestCompute(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"overlapping", []string{"compute", "7:55:G:A"}},
		{"chr prefix", []string{"compute", "chr7:55:G:A"}},
		{"transcript", []string{"compute", "--transcript", "ENST00000000009", "7:55:G:A"}},
		{"gene", []string{"compute", "--gene", "BTC1", "7:55:G:A"}},
		{"canonical gene", []string{"compute", "--gene", "BTC1", "--canonical", "7:55:G:A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, wantC+"\n"+wantP+"\n", out)
		})
	}
}

func TestComputeOutsideTranscript(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "compute", "--transcript", "ENST00000000009", "7:5:A:G")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestComputeErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "compute", "7:55:GA:TT")
	assert.ErrorIs(t, err, hgvs.ErrUnsupportedVariantKind)

	_, err = f.run(t, "compute", "--transcript", "ENST404", "7:55:G:A")
	assert.ErrorContains(t, err, "not found")

	_, err = f.run(t, "compute", "--gene", "NOPE", "7:55:G:A")
	assert.ErrorContains(t, err, "not found")

	_, err = f.run(t, "compute", "not-a-variant")
	assert.Error(t, err)

	_, err = f.run(t, "compute", "--reference", "ftp://nowhere", "7:55:G:A")
	assert.ErrorContains(t, err, "unsupported sequence source")
}

func TestReferenceImport(t *testing.T) {
	f := newFixture(t)
	dsn := "sqlite:" + filepath.Join(f.dir, "ref.sqlite")

	out, err := f.run(t, "reference", "import", "--db", dsn, f.fasta)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 contigs (125 bases)")

	out, err = f.run(t, "reference", "contigs", "--db", dsn)
	require.NoError(t, err)
	assert.Equal(t, "7\t125\n", out)

	out, err = f.run(t, "--reference", dsn, "reference", "region", "7", "51", "56")
	require.NoError(t, err)
	assert.Equal(t, "ATGGGA\n", out)

	out, err = f.run(t, "--reference", dsn, "compute", "7:55:G:A")
	require.NoError(t, err)
	assert.Equal(t, wantC+"\n"+wantP+"\n", out)

	_, err = f.run(t, "reference", "import", "--db", "fasta:"+f.fasta, f.fasta)
	assert.ErrorContains(t, err, "not a reference store")
}

func TestModelsSnapshot(t *testing.T) {
	f := newFixture(t)
	snap := filepath.Join(f.dir, "models.gob")

	out, err := f.run(t, "models", "snapshot", snap)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 1 transcripts")
	assert.FileExists(t, snap)
	assert.FileExists(t, snap+".meta")

	out, err = f.run(t, "--snapshot", snap, "compute", "7:55:G:A")
	require.NoError(t, err)
	assert.Equal(t, wantC+"\n"+wantP+"\n", out)

	out, err = f.run(t, "models", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "transcripts\t1\n")
	assert.Contains(t, out, "genes\t1\n")
}

func TestAnnotate(t *testing.T) {
	f := newFixture(t)
	input := filepath.Join(f.dir, "variants.txt")
	require.NoError(t, os.WriteFile(input, []byte("7:55:G:A\n7:5:A:G\n7:55:GA:TT\n"), 0644))
	output := filepath.Join(f.dir, "out.tsv")
	metrics := filepath.Join(f.dir, "vibe_hgvs.prom")

	_, err := f.run(t, "annotate", "-o", output, "--workers", "2", "--metrics-file", metrics, input)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#Uploaded_variation"))
	assert.Contains(t, lines[1], wantC)
	assert.Contains(t, lines[1], wantP)
	assert.True(t, strings.HasPrefix(lines[2], "7:5:A:G\t7:5\tG\t-"))

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "vibe_hgvs_variants_total 3")
	assert.Contains(t, string(prom), `vibe_hgvs_skipped_total{reason="unsupported_kind"} 1`)

	_, err = f.run(t, "annotate", "--input-format", "maf", input)
	assert.ErrorContains(t, err, "unknown input format")
}

func TestAnnotateVCF(t *testing.T) {
	f := newFixture(t)
	input := filepath.Join(f.dir, "in.vcf")
	vcfText := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"7\t55\trs1\tG\tA,TT\t.\tPASS\tDP=4\n" +
		"7\t5\t.\tA\tG\t.\tPASS\t.\n"
	require.NoError(t, os.WriteFile(input, []byte(vcfText), 0644))

	out, err := f.run(t, "annotate", "-f", "vcf", input)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "##INFO=<ID=HGVS,"))
	assert.Equal(t, "7\t55\trs1\tG\tA,TT\t.\tPASS\tDP=4;HGVS=A|BTC1|ENST00000000009|"+wantC+"|"+wantP, lines[3])
	assert.Equal(t, "7\t5\t.\tA\tG\t.\tPASS\t.", lines[4])

	list := filepath.Join(f.dir, "variants.txt")
	require.NoError(t, os.WriteFile(list, []byte("7:55:G:A\n"), 0644))
	_, err = f.run(t, "annotate", "-f", "vcf", list)
	assert.ErrorContains(t, err, "VCF output requires VCF input")
}

func TestConfigSetGet(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "config", "set", "sequence.cache_size", "1024")
	require.NoError(t, err)
	assert.Contains(t, out, "Set sequence.cache_size = 1024")

	out, err = f.run(t, "config", "get", "sequence.cache_size")
	require.NoError(t, err)
	assert.Equal(t, "1024\n", out)

	out, err = f.run(t, "config", "get", "reference")
	require.NoError(t, err)
	assert.Equal(t, "fasta:"+f.fasta+"\n", out)

	_, err = f.run(t, "config", "get", "no.such.key")
	assert.Error(t, err)

	out, err = f.run(t, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "cache_size: \"1024\"")
}

func TestEnvOverride(t *testing.T) {
	f := newFixture(t)
	t.Setenv("VIBE_HGVS_REFERENCE", "ensembl:http://127.0.0.1:1")

	out, err := f.run(t, "config", "get", "reference")
	require.NoError(t, err)
	assert.Equal(t, "ensembl:http://127.0.0.1:1\n", out)
}

func TestVersion(t *testing.T) {
	f := newFixture(t)
	out, err := f.run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vibe-hgvs version dev (none) built unknown\n", out)
}
