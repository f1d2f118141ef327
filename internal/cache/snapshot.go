package cache

import (
	"encoding/gob"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Fingerprint holds stat-based identity for a model source.
type Fingerprint struct {
	Source  string
	Size    int64
	ModTime time.Time
}

// StatSource fingerprints a local model file or directory. Remote sources
// are identified by their location only.
func StatSource(location string) Fingerprint {
	fp := Fingerprint{Source: location}
	if info, err := os.Stat(strings.TrimPrefix(location, "file://")); err == nil {
		fp.Size = info.Size()
		fp.ModTime = info.ModTime()
	}
	return fp
}

// Snapshot manages a gob-serialized copy of a loaded model on disk:
//
//	<path>       (serialized transcripts)
//	<path>.meta  (source fingerprint)
type Snapshot struct {
	path string
}

// NewSnapshot creates a snapshot handle for the given file path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) metaPath() string {
	return s.path + ".meta"
}

// Valid checks whether the snapshot was written from the given source.
func (s *Snapshot) Valid(fp Fingerprint) bool {
	meta, err := s.readMeta()
	if err != nil {
		return false
	}
	if meta["source"] != fp.Source ||
		meta["size"] != strconv.FormatInt(fp.Size, 10) ||
		meta["modtime"] != fp.ModTime.UTC().Format(time.RFC3339Nano) {
		return false
	}
	_, err = os.Stat(s.path)
	return err == nil
}

// Load reads serialized transcripts from disk into the cache.
func (s *Snapshot) Load(c *Cache) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var data map[string][]*Transcript
	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	for _, transcripts := range data {
		for _, t := range transcripts {
			c.AddTranscript(t)
		}
	}
	return nil
}

// Write serializes all transcripts from the cache to disk.
func (s *Snapshot) Write(c *Cache, fp Fingerprint) error {
	data := make(map[string][]*Transcript)
	for _, chrom := range c.Chromosomes() {
		data[chrom] = c.FindTranscriptsByChrom(chrom)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(data); err != nil {
		f.Close()
		os.Remove(s.path)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	return s.writeMeta(fp)
}

// Clear removes the snapshot files.
func (s *Snapshot) Clear() {
	os.Remove(s.path)
	os.Remove(s.metaPath())
}

func (s *Snapshot) writeMeta(fp Fingerprint) error {
	lines := []string{
		"source=" + fp.Source,
		"size=" + strconv.FormatInt(fp.Size, 10),
		"modtime=" + fp.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(s.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (s *Snapshot) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}

// OpenModelsCached loads models from a snapshot when it matches the
// source fingerprint, otherwise from the source, refreshing the snapshot.
func OpenModelsCached(load func() (*Cache, error), snap *Snapshot, fp Fingerprint) (*Cache, bool, error) {
	if snap != nil && snap.Valid(fp) {
		c := New()
		if err := snap.Load(c); err == nil {
			return c, true, nil
		}
		snap.Clear()
	}
	c, err := load()
	if err != nil {
		return nil, false, err
	}
	if snap != nil {
		if err := snap.Write(c, fp); err != nil {
			return c, false, err
		}
	}
	return c, false, nil
}
