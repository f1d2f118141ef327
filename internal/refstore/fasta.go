package refstore

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Contig is one reference sequence and its length in bases.
type Contig struct {
	Name   string
	Length int64
}

// fastaReader streams a multi-record FASTA file one sequence line at a time.
type fastaReader struct {
	scanner *bufio.Scanner
	name    string
	pending string
	err     error
}

func newFASTAReader(r io.Reader) *fastaReader {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024) // 10MB max line
	return &fastaReader{scanner: scanner}
}

// next advances to the next record header and returns its name.
func (f *fastaReader) next() (string, bool) {
	if f.pending != "" {
		f.name, f.pending = f.pending, ""
		return f.name, true
	}
	for f.scanner.Scan() {
		line := f.scanner.Text()
		if strings.HasPrefix(line, ">") {
			f.name = parseHeader(line)
			return f.name, true
		}
	}
	f.err = f.scanner.Err()
	return "", false
}

// line returns the next sequence line of the current record, uppercased.
func (f *fastaReader) line() (string, bool) {
	for f.scanner.Scan() {
		line := strings.TrimSpace(f.scanner.Text())
		if strings.HasPrefix(line, ">") {
			f.pending = parseHeader(line)
			return "", false
		}
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		return strings.ToUpper(line), true
	}
	f.err = f.scanner.Err()
	return "", false
}

// parseHeader keeps the first word of a header line, so ">1 dna:chromosome"
// and ">chr1" both name their contig.
func parseHeader(header string) string {
	header = strings.TrimSpace(strings.TrimPrefix(header, ">"))
	if idx := strings.IndexAny(header, " \t|"); idx != -1 {
		return header[:idx]
	}
	return header
}

// OpenFASTA opens a FASTA file, decompressing it when the name ends in .gz.
func OpenFASTA(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open gzip reader: %w", err)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	gzErr := g.Reader.Close()
	if err := g.f.Close(); err != nil {
		return err
	}
	return gzErr
}
