package vcf

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/biogo/hts/bgzf"
)

// Parser reads variants from a VCF file.
type Parser struct {
	reader      *bufio.Reader
	file        *os.File
	decompress  io.Closer
	lineNumber  int
	header      []string
	sampleNames []string   // sample names from #CHROM header line
	pending     []*Variant // remaining ALT alleles of a multi-allelic record
}

// NewParser creates a new VCF parser for the given file.
// Supports plain VCF, gzipped VCF and BGZF-compressed VCF (.vcf.gz).
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Enough of the first gzip member header to spot the BGZF "BC" subfield.
	buf := make([]byte, 16)
	n, err := io.ReadFull(file, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	buf = buf[:n]

	// Seek back to beginning
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	switch {
	case isBGZF(buf):
		bg, err := bgzf.NewReader(file, 1)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create bgzf reader: %w", err)
		}
		p.decompress = bg
		p.reader = bufio.NewReader(bg)
	case isGzip(buf):
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.decompress = gz
		p.reader = bufio.NewReader(gz)
	default:
		p.reader = bufio.NewReader(file)
	}

	// Parse header
	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// Check for gzip magic number (0x1f, 0x8b)
func isGzip(b []byte) bool {
	return len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b
}

// isBGZF reports a gzip member with FEXTRA carrying the BGZF block-size subfield.
func isBGZF(b []byte) bool {
	return isGzip(b) && len(b) >= 14 && b[3]&0x04 != 0 && bytes.Equal(b[12:14], []byte("BC"))
}

// parseHeader reads and stores VCF header lines.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if strings.HasPrefix(line, "##") {
			p.header = append(p.header, line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			p.header = append(p.header, line)
			// Extract sample names from columns after FORMAT (index 9+)
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				p.sampleNames = fields[9:]
			}
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next variant from the VCF file. Multi-allelic records
// yield one variant per ALT allele; symbolic and missing alleles are
// passed through for the caller to reject.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	if len(p.pending) > 0 {
		v := p.pending[0]
		p.pending = p.pending[1:]
		return v, nil
	}

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue // Skip empty lines
		}

		variants, err := p.parseLine(line)
		if err != nil {
			return nil, err
		}
		p.pending = variants[1:]
		return variants[0], nil
	}
}

// parseLine parses a single VCF data line into one variant per ALT allele.
func (p *Parser) parseLine(line string) ([]*Variant, error) {
	fields := strings.SplitN(line, "\t", 9)
	if len(fields) < 8 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 8 columns, found %d", len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}
	if fields[3] == "" || fields[4] == "" {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: "empty REF or ALT",
		}
	}

	var samples string
	if len(fields) == 9 {
		samples = fields[8]
	}

	alts := strings.Split(fields[4], ",")
	variants := make([]*Variant, len(alts))
	for i, alt := range alts {
		variants[i] = &Variant{
			Chrom:   fields[0],
			Pos:     pos,
			ID:      fields[2],
			Ref:     fields[3],
			Alt:     alt,
			Filter:  fields[6],
			Line:    p.lineNumber,
			Qual:    fields[5],
			Info:    fields[7],
			Samples: samples,
			Alleles: alts,
		}
	}
	return variants, nil
}

// Header returns the VCF header lines.
func (p *Parser) Header() []string {
	return p.header
}

// SampleNames returns sample names from the #CHROM header line.
// Returns nil if no sample columns are present.
func (p *Parser) SampleNames() []string {
	return p.sampleNames
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.decompress != nil {
		p.decompress.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
