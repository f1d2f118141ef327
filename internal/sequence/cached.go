package sequence

import (
	"context"
	"strconv"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/minio/highwayhash"
)

var cacheKey = []byte("vibe-hgvs/sequence-window-cache!")

// Cached keeps the most recently used windows of another provider. Entries
// are keyed by a HighwayHash of the region; the region string is kept so a
// hash collision is a miss rather than a wrong answer.
type Cached struct {
	src     Source
	windows *lru.Cache[uint64, window]

	hits, misses atomic.Int64
}

type window struct {
	region string
	seq    []byte
}

// NewCached wraps src with an LRU of at most size windows.
func NewCached(src Source, size int) *Cached {
	if size < 1 {
		size = 1
	}
	windows, _ := lru.New[uint64, window](size) // only fails for size < 1
	return &Cached{src: src, windows: windows}
}

func regionKey(chrom string, start, end int64) (string, uint64) {
	b := make([]byte, 0, len(chrom)+24)
	b = append(b, chrom...)
	b = append(b, ':')
	b = strconv.AppendInt(b, start, 10)
	b = append(b, '-')
	b = strconv.AppendInt(b, end, 10)
	return string(b), highwayhash.Sum64(b, cacheKey)
}

func (c *Cached) GetSequence(ctx context.Context, chrom string, start, end int64) (string, error) {
	region, h := regionKey(chrom, start, end)
	if w, ok := c.windows.Get(h); ok && w.region == region {
		c.hits.Add(1)
		return string(w.seq), nil
	}
	c.misses.Add(1)

	seq, err := c.src.GetSequence(ctx, chrom, start, end)
	if err != nil {
		return "", err
	}
	c.windows.Add(h, window{region: region, seq: []byte(seq)})
	return seq, nil
}

// Stats returns the number of cache hits and misses so far.
func (c *Cached) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached windows.
func (c *Cached) Len() int {
	return c.windows.Len()
}

func (c *Cached) Close() error {
	c.windows.Purge()
	return c.src.Close()
}
