package sequence

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/biogo/hts/fai"
)

// FASTA reads windows from an uncompressed FASTA file through its faidx
// index. The index is read from <path>.fai or built on open.
type FASTA struct {
	mu   sync.Mutex
	f    *os.File
	idx  fai.Index
	file *fai.File
}

// OpenFASTA opens a FASTA file for random access.
func OpenFASTA(path string) (*FASTA, error) {
	if strings.HasSuffix(path, ".gz") {
		return nil, fmt.Errorf("compressed FASTA %s cannot be indexed; import it with 'reference import' instead", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FASTA file: %w", err)
	}

	idx, err := readIndex(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FASTA{f: f, idx: idx, file: fai.NewFile(f, idx)}, nil
}

func readIndex(path string, f *os.File) (fai.Index, error) {
	if ix, err := os.Open(path + ".fai"); err == nil {
		defer ix.Close()
		idx, err := fai.ReadFrom(ix)
		if err != nil {
			return nil, fmt.Errorf("read FASTA index: %w", err)
		}
		return idx, nil
	}
	idx, err := fai.NewIndex(f)
	if err != nil {
		return nil, fmt.Errorf("index FASTA file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return idx, nil
}

// WriteIndex writes the faidx index next to the FASTA file.
func (fa *FASTA) WriteIndex(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create FASTA index: %w", err)
	}
	if err := fai.WriteTo(out, fa.idx); err != nil {
		out.Close()
		return fmt.Errorf("write FASTA index: %w", err)
	}
	return out.Close()
}

// Contigs returns the lengths of the indexed records.
func (fa *FASTA) Contigs() map[string]int64 {
	out := make(map[string]int64, len(fa.idx))
	for name, rec := range fa.idx {
		out[name] = int64(rec.Length)
	}
	return out
}

func (fa *FASTA) GetSequence(_ context.Context, chrom string, start, end int64) (string, error) {
	rec, ok := fa.lookup(chrom)
	if !ok {
		return "", fmt.Errorf("%w: contig %s", ErrNotFound, chrom)
	}
	start, end, err := clip(chrom, start, end, int64(rec.Length))
	if err != nil {
		return "", err
	}

	// fai.File seeks the shared handle
	fa.mu.Lock()
	defer fa.mu.Unlock()
	seq, err := fa.file.SeqRange(rec.Name, int(start-1), int(end))
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d: %w", chrom, start, end, err)
	}
	b, err := io.ReadAll(seq)
	if err != nil {
		return "", fmt.Errorf("read %s:%d-%d: %w", chrom, start, end, err)
	}
	return string(bytes.ToUpper(b)), nil
}

func (fa *FASTA) lookup(chrom string) (fai.Record, bool) {
	for _, name := range aliases(chrom) {
		if rec, ok := fa.idx[name]; ok {
			return rec, true
		}
	}
	return fai.Record{}, false
}

func (fa *FASTA) Close() error {
	return fa.f.Close()
}
