package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// ListParser reads one chrom:pos:ref:alt variant per line. Blank lines and
// lines starting with '#' are skipped.
type ListParser struct {
	scanner    *bufio.Scanner
	file       *os.File
	lineNumber int
}

// NewListParser opens a variant list file; "-" reads stdin.
func NewListParser(path string) (*ListParser, error) {
	if path == "-" {
		return NewListParserFromReader(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant list: %w", err)
	}
	p := NewListParserFromReader(f)
	p.file = f
	return p, nil
}

// NewListParserFromReader creates a list parser from an io.Reader.
func NewListParserFromReader(r io.Reader) *ListParser {
	return &ListParser{scanner: bufio.NewScanner(r)}
}

func (p *ListParser) Next() (*Variant, error) {
	for p.scanner.Scan() {
		p.lineNumber++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		hv, err := hgvs.ParseVariant(line)
		if err != nil {
			return nil, &ParseError{Line: p.lineNumber, Message: err.Error()}
		}
		return &Variant{
			Chrom: hv.Chrom,
			Pos:   hv.Start,
			ID:    ".",
			Ref:   hv.Ref,
			Alt:   hv.Alt,
			Line:  p.lineNumber,
		}, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read variant list: %w", err)
	}
	return nil, nil
}

func (p *ListParser) LineNumber() int {
	return p.lineNumber
}

func (p *ListParser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Open picks the parser by file name: .vcf, .vcf.gz and .vcf.bgz read as
// VCF, anything else as a variant list.
func Open(path string) (VariantParser, error) {
	name := strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".bgz")
	if strings.HasSuffix(name, ".vcf") {
		return NewParser(path)
	}
	return NewListParser(path)
}
