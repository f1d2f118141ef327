package cache

import (
	"sort"
	"strings"
	"sync"
)

// Cache provides access to transcript models by position, ID and gene.
type Cache struct {
	mu sync.RWMutex
	// transcripts stores transcripts indexed by chromosome
	transcripts map[string][]*Transcript
	byID        map[string]*Transcript
	genes       map[string]*Gene
	geneNames   map[string]string // symbol -> gene ID
	trees       map[string]*IntervalTree
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		byID:        make(map[string]*Transcript),
		genes:       make(map[string]*Gene),
		geneNames:   make(map[string]string),
		trees:       make(map[string]*IntervalTree),
	}
}

// NormalizeChrom strips a "chr" prefix and maps mitochondrial aliases to "MT".
func NormalizeChrom(chrom string) string {
	c := strings.TrimPrefix(strings.TrimPrefix(chrom, "chr"), "Chr")
	if c == "M" {
		return "MT"
	}
	return c
}

// AddTranscript adds a transcript to the cache. The transcript is expected
// to have been finalized.
func (c *Cache) AddTranscript(t *Transcript) {
	c.mu.Lock()
	defer c.mu.Unlock()

	chrom := NormalizeChrom(t.Chrom)
	if old, ok := c.byID[t.ID]; ok {
		c.removeLocked(old)
	}
	c.transcripts[chrom] = append(c.transcripts[chrom], t)
	c.byID[t.ID] = t
	delete(c.trees, chrom)

	geneID := t.GeneID
	if geneID == "" {
		geneID = t.GeneName
	}
	g, ok := c.genes[geneID]
	if !ok {
		g = &Gene{ID: geneID, Name: t.GeneName, Chrom: t.Chrom, Start: t.Start, End: t.End, Strand: t.Strand}
		c.genes[geneID] = g
	}
	g.add(t)
	if t.GeneName != "" {
		c.geneNames[t.GeneName] = geneID
	}
}

func (c *Cache) removeLocked(t *Transcript) {
	chrom := NormalizeChrom(t.Chrom)
	list := c.transcripts[chrom]
	for i, x := range list {
		if x == t {
			c.transcripts[chrom] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	delete(c.trees, chrom)
	if g, ok := c.genes[t.GeneID]; ok {
		g.remove(t)
	}
}

func (c *Cache) tree(chrom string) *IntervalTree {
	c.mu.RLock()
	tr, ok := c.trees[chrom]
	c.mu.RUnlock()
	if ok {
		return tr
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tr, ok := c.trees[chrom]; ok {
		return tr
	}
	tr = BuildIntervalTree(c.transcripts[chrom])
	c.trees[chrom] = tr
	return tr
}

// FindTranscripts returns all transcripts that overlap a given genomic position.
func (c *Cache) FindTranscripts(chrom string, pos int64) []*Transcript {
	return c.tree(NormalizeChrom(chrom)).FindOverlaps(pos)
}

// FindOverlapping returns all transcripts sharing at least one base with [start, end].
func (c *Cache) FindOverlapping(chrom string, start, end int64) []*Transcript {
	return c.tree(NormalizeChrom(chrom)).FindRange(start, end)
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
// A version suffix (ENST00000311936.8) is ignored when the exact ID is unknown.
func (c *Cache) GetTranscript(id string) *Transcript {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if t, ok := c.byID[id]; ok {
		return t
	}
	if base, _, ok := strings.Cut(id, "."); ok {
		return c.byID[base]
	}
	return nil
}

// Gene returns a gene by ID or symbol, or nil if not found.
func (c *Cache) Gene(key string) *Gene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if g, ok := c.genes[key]; ok {
		return g
	}
	if id, ok := c.geneNames[key]; ok {
		return c.genes[id]
	}
	return nil
}

// Genes returns all genes sorted by ID.
func (c *Cache) Genes() []*Gene {
	c.mu.RLock()
	defer c.mu.RUnlock()
	genes := make([]*Gene, 0, len(c.genes))
	for _, g := range c.genes {
		if len(g.Transcripts) > 0 {
			genes = append(genes, g)
		}
	}
	sort.Slice(genes, func(i, j int) bool { return genes[i].ID < genes[j].ID })
	return genes
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	chroms := make([]string, 0, len(c.transcripts))
	for chrom, list := range c.transcripts {
		if len(list) > 0 {
			chroms = append(chroms, chrom)
		}
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Transcript(nil), c.transcripts[NormalizeChrom(chrom)]...)
}
