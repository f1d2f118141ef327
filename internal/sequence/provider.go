// Package sequence supplies reference genome windows to the HGVS calculator.
// Providers read from memory, an indexed FASTA file, a SQL reference store
// or the Ensembl REST API, optionally behind an LRU cache.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/refstore"
)

// ErrNotFound is returned when a provider has no sequence for a region.
var ErrNotFound = errors.New("sequence not found")

// Provider returns the reference bases chrom:start-end (1-based, inclusive).
// Windows running past a contig end are clipped.
type Provider interface {
	GetSequence(ctx context.Context, chrom string, start, end int64) (string, error)
}

// Source is a Provider holding resources that must be released.
type Source interface {
	Provider
	io.Closer
}

// Options configure Open.
type Options struct {
	// CacheSize is the number of windows kept in memory; 0 disables caching.
	CacheSize int
	// EnsemblURL overrides the REST endpoint for "ensembl" DSNs.
	EnsemblURL string
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Open returns the provider named by dsn:
//
//	fasta:/path/genome.fa        indexed FASTA (uses genome.fa.fai when present)
//	duckdb:/path/ref.db          SQL reference store, see refstore
//	sqlite:/path/ref.db
//	postgres://host/db
//	ensembl                      Ensembl REST, optionally ensembl:https://host
func Open(ctx context.Context, dsn string, opts Options) (Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var src Source
	switch {
	case strings.HasPrefix(dsn, "fasta:"):
		f, err := OpenFASTA(strings.TrimPrefix(dsn, "fasta:"))
		if err != nil {
			return nil, err
		}
		src = f
	case refstore.IsDSN(dsn):
		s, err := refstore.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open reference store: %w", err)
		}
		src = NewStore(s)
	case dsn == "ensembl" || strings.HasPrefix(dsn, "ensembl:"):
		url := strings.TrimPrefix(strings.TrimPrefix(dsn, "ensembl"), ":")
		if url == "" {
			url = opts.EnsemblURL
		}
		e := NewEnsembl(url, opts.Timeout)
		e.SetLogger(logger)
		src = e
	default:
		return nil, fmt.Errorf("unsupported sequence source %q", dsn)
	}

	logger.Debug("sequence source opened", zap.String("dsn", redact(dsn)), zap.Int("cache_size", opts.CacheSize))
	if opts.CacheSize > 0 {
		return NewCached(src, opts.CacheSize), nil
	}
	return src, nil
}

// redact drops credentials from a postgres DSN before logging it.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at == -1 || scheme == -1 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}

// clip bounds a 1-based window to a contig of the given length.
func clip(chrom string, start, end, length int64) (int64, int64, error) {
	if start < 1 {
		start = 1
	}
	if end > length {
		end = length
	}
	if start > end {
		return 0, 0, fmt.Errorf("%w: %s:%d-%d", ErrNotFound, chrom, start, end)
	}
	return start, end, nil
}

// aliases lists the names a contig may carry in a reference file.
func aliases(chrom string) []string {
	n := cache.NormalizeChrom(chrom)
	names := []string{chrom, n, "chr" + n}
	if n == "MT" {
		names = append(names, "chrM", "M")
	}
	return names
}
