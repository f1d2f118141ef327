package sequence

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// Memory serves windows from contigs held in memory.
type Memory struct {
	mu   sync.RWMutex
	seqs map[string]string
}

// NewMemory creates an empty in-memory provider.
func NewMemory() *Memory {
	return &Memory{seqs: make(map[string]string)}
}

// Add stores a contig, replacing any previous sequence of the same name.
func (m *Memory) Add(chrom, seq string) {
	m.mu.Lock()
	m.seqs[cache.NormalizeChrom(chrom)] = strings.ToUpper(seq)
	m.mu.Unlock()
}

func (m *Memory) GetSequence(_ context.Context, chrom string, start, end int64) (string, error) {
	m.mu.RLock()
	seq, ok := m.seqs[cache.NormalizeChrom(chrom)]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: contig %s", ErrNotFound, chrom)
	}
	start, end, err := clip(chrom, start, end, int64(len(seq)))
	if err != nil {
		return "", err
	}
	return seq[start-1 : end], nil
}

func (m *Memory) Close() error { return nil }
