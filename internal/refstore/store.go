// Package refstore keeps reference genome sequence in a SQL database as
// fixed-size chunks, so that short windows can be read without loading
// whole chromosomes. DuckDB, SQLite and PostgreSQL are supported.
package refstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/marcboeker/go-duckdb"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// ChunkSize is the number of bases stored per row.
const ChunkSize = 10000

// ErrNotFound is returned when a contig or region is absent from the store.
var ErrNotFound = errors.New("region not in reference store")

type dialect struct {
	name   string
	driver string
	text   string
	// numbered placeholders ($1) instead of ?
	numbered bool
}

var (
	duckDialect     = dialect{name: "duckdb", driver: "duckdb", text: "VARCHAR"}
	sqliteDialect   = dialect{name: "sqlite", driver: "sqlite", text: "TEXT"}
	postgresDialect = dialect{name: "postgres", driver: "pgx", text: "TEXT", numbered: true}
)

// bind rewrites ? placeholders for dialects that number them.
func (d dialect) bind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// Store is a chunked reference sequence database.
type Store struct {
	db *sql.DB
	d  dialect
}

// Open opens or creates a reference store. The DSN selects the backend:
//
//	duckdb:/path/ref.db   (duckdb: alone is in-memory)
//	sqlite:/path/ref.db
//	postgres://user@host/db
func Open(ctx context.Context, dsn string) (*Store, error) {
	d, source, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if d.name != postgresDialect.name && source != "" && source != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(source), 0755); err != nil {
			return nil, fmt.Errorf("create reference directory: %w", err)
		}
	}

	db, err := sql.Open(d.driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.name, err)
	}
	if d.name == sqliteDialect.name {
		// one writer; avoids SQLITE_BUSY between the import transaction and reads
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.name, err)
	}

	s := &Store{db: db, d: d}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func parseDSN(dsn string) (dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "duckdb:"):
		return duckDialect, strings.TrimPrefix(dsn, "duckdb:"), nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqliteDialect, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgresDialect, dsn, nil
	}
	return dialect{}, "", fmt.Errorf("unsupported reference store %q", dsn)
}

// IsDSN reports whether dsn names a SQL reference store.
func IsDSN(dsn string) bool {
	_, _, err := parseDSN(dsn)
	return err == nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backend names the database backend.
func (s *Store) Backend() string {
	return s.d.name
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reference_contigs (
		chrom %s PRIMARY KEY,
		length BIGINT NOT NULL,
		generation BIGINT NOT NULL
	)`, s.d.text),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reference_chunks (
		chrom %s NOT NULL,
		generation BIGINT NOT NULL,
		chunk BIGINT NOT NULL,
		seq %s NOT NULL,
		PRIMARY KEY (chrom, generation, chunk)
	)`, s.d.text, s.d.text),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Contigs lists the stored contigs ordered by name.
func (s *Store) Contigs(ctx context.Context) ([]Contig, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chrom, length FROM reference_contigs ORDER BY chrom`)
	if err != nil {
		return nil, fmt.Errorf("select contigs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contigs []Contig
	for rows.Next() {
		var c Contig
		if err := rows.Scan(&c.Name, &c.Length); err != nil {
			return nil, fmt.Errorf("scan contig: %w", err)
		}
		contigs = append(contigs, c)
	}
	return contigs, rows.Err()
}

// Length returns the stored length of a contig.
func (s *Store) Length(ctx context.Context, chrom string) (int64, error) {
	n, _, err := s.contig(ctx, chrom)
	return n, err
}

// contig returns the length and live chunk generation of chrom.
func (s *Store) contig(ctx context.Context, chrom string) (length, gen int64, err error) {
	err = s.db.QueryRowContext(ctx, s.d.bind(`SELECT length, generation FROM reference_contigs WHERE chrom = ?`),
		cache.NormalizeChrom(chrom)).Scan(&length, &gen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, fmt.Errorf("%w: contig %s", ErrNotFound, chrom)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("select contig length: %w", err)
	}
	return length, gen, nil
}

// Region returns the bases chrom:start-end (1-based, inclusive). Ranges that
// run past either end of the contig are clipped; a range entirely outside it
// is ErrNotFound.
func (s *Store) Region(ctx context.Context, chrom string, start, end int64) (string, error) {
	length, gen, err := s.contig(ctx, chrom)
	if err != nil {
		return "", err
	}
	if start < 1 {
		start = 1
	}
	if end > length {
		end = length
	}
	if start > end {
		return "", fmt.Errorf("%w: %s:%d-%d", ErrNotFound, chrom, start, end)
	}

	first := (start - 1) / ChunkSize
	last := (end - 1) / ChunkSize
	rows, err := s.db.QueryContext(ctx,
		s.d.bind(`SELECT chunk, seq FROM reference_chunks
			WHERE chrom = ? AND generation = ? AND chunk >= ? AND chunk <= ? ORDER BY chunk`),
		cache.NormalizeChrom(chrom), gen, first, last)
	if err != nil {
		return "", fmt.Errorf("select chunks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var b strings.Builder
	b.Grow(int((last - first + 1) * ChunkSize))
	want := first
	for rows.Next() {
		var idx int64
		var seq string
		if err := rows.Scan(&idx, &seq); err != nil {
			return "", fmt.Errorf("scan chunk: %w", err)
		}
		if idx != want {
			return "", fmt.Errorf("%w: %s chunk %d missing", ErrNotFound, chrom, want)
		}
		b.WriteString(seq)
		want++
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if want != last+1 {
		return "", fmt.Errorf("%w: %s chunk %d missing", ErrNotFound, chrom, want)
	}

	seq := b.String()
	lo := start - 1 - first*ChunkSize
	hi := end - first*ChunkSize
	if hi > int64(len(seq)) {
		return "", fmt.Errorf("%w: %s:%d-%d", ErrNotFound, chrom, start, end)
	}
	return seq[lo:hi], nil
}
