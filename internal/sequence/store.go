package sequence

import (
	"context"
	"errors"
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/refstore"
)

// Store serves windows from a SQL reference store.
type Store struct {
	s *refstore.Store
}

// NewStore wraps an open reference store. Close closes it.
func NewStore(s *refstore.Store) *Store {
	return &Store{s: s}
}

func (s *Store) GetSequence(ctx context.Context, chrom string, start, end int64) (string, error) {
	seq, err := s.s.Region(ctx, chrom, start, end)
	if errors.Is(err, refstore.ErrNotFound) {
		return "", fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return seq, err
}

func (s *Store) Close() error {
	return s.s.Close()
}
