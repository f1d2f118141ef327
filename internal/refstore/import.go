package refstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// ImportStats summarises an import.
type ImportStats struct {
	Contigs []Contig
	Chunks  int64
}

// Bases returns the total number of imported bases.
func (st ImportStats) Bases() int64 {
	var n int64
	for _, c := range st.Contigs {
		n += c.Length
	}
	return n
}

// chunkSink receives the rows of an import. Implementations write either
// through a transaction with prepared statements or through the DuckDB
// Appender API.
//
// A contig is replaced by writing its chunks under the next generation,
// repointing the contig row and then deleting the older generations. No
// key is deleted and inserted again in one transaction, which DuckDB's
// index checks reject.
type chunkSink interface {
	generation(ctx context.Context, chrom string) (gen int64, exists bool, err error)
	chunk(chrom string, gen, idx int64, seq string) error
	contig(ctx context.Context, chrom string, length, gen int64, exists bool) error
	commit() error
	rollback()
}

// Import reads a FASTA stream and stores every record, replacing contigs
// that are already present. The import is a single transaction: on error
// the store keeps its previous contents.
func (s *Store) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats
	sink, err := s.newSink(ctx)
	if err != nil {
		return stats, err
	}

	if err := importFASTA(ctx, sink, r, &stats); err != nil {
		sink.rollback()
		return ImportStats{}, err
	}
	if err := sink.commit(); err != nil {
		return ImportStats{}, fmt.Errorf("commit import: %w", err)
	}
	return stats, nil
}

func importFASTA(ctx context.Context, sink chunkSink, r io.Reader, stats *ImportStats) error {
	fr := newFASTAReader(r)
	for {
		name, ok := fr.next()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		chrom := cache.NormalizeChrom(name)
		gen, exists, err := sink.generation(ctx, chrom)
		if err != nil {
			return fmt.Errorf("read contig %s: %w", chrom, err)
		}
		gen++

		var buf strings.Builder
		var idx, length int64
		flush := func() error {
			if buf.Len() == 0 {
				return nil
			}
			if err := sink.chunk(chrom, gen, idx, buf.String()); err != nil {
				return fmt.Errorf("write %s chunk %d: %w", chrom, idx, err)
			}
			idx++
			stats.Chunks++
			buf.Reset()
			return nil
		}
		for {
			line, ok := fr.line()
			if !ok {
				break
			}
			length += int64(len(line))
			for line != "" {
				room := ChunkSize - buf.Len()
				if room > len(line) {
					room = len(line)
				}
				buf.WriteString(line[:room])
				line = line[room:]
				if buf.Len() == ChunkSize {
					if err := flush(); err != nil {
						return err
					}
				}
			}
		}
		if err := flush(); err != nil {
			return err
		}
		if err := sink.contig(ctx, chrom, length, gen, exists); err != nil {
			return fmt.Errorf("write contig %s: %w", chrom, err)
		}
		stats.Contigs = append(stats.Contigs, Contig{Name: chrom, Length: length})
	}
	if fr.err != nil {
		return fmt.Errorf("scan FASTA: %w", fr.err)
	}
	return nil
}

func (s *Store) newSink(ctx context.Context) (chunkSink, error) {
	if s.d.name == duckDialect.name {
		return newAppenderSink(ctx, s.db)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, s.d.bind(`INSERT INTO reference_chunks (chrom, generation, chunk, seq) VALUES (?, ?, ?, ?)`))
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("prepare chunk insert: %w", err)
	}
	return &txSink{tx: tx, stmt: stmt, d: s.d, ctx: ctx}, nil
}

type txSink struct {
	tx   *sql.Tx
	stmt *sql.Stmt
	d    dialect
	ctx  context.Context
}

func (t *txSink) generation(ctx context.Context, chrom string) (int64, bool, error) {
	return currentGeneration(ctx, t.tx, t.d, chrom)
}

func (t *txSink) chunk(chrom string, gen, idx int64, seq string) error {
	_, err := t.stmt.ExecContext(t.ctx, chrom, gen, idx, seq)
	return err
}

func (t *txSink) contig(ctx context.Context, chrom string, length, gen int64, exists bool) error {
	return publishContig(ctx, t.tx, t.d, chrom, length, gen, exists)
}

func (t *txSink) commit() error {
	_ = t.stmt.Close()
	return t.tx.Commit()
}

func (t *txSink) rollback() {
	_ = t.stmt.Close()
	_ = t.tx.Rollback()
}

// querier is satisfied by *sql.Tx and *sql.Conn.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func currentGeneration(ctx context.Context, db querier, d dialect, chrom string) (int64, bool, error) {
	var gen int64
	err := db.QueryRowContext(ctx, d.bind(`SELECT generation FROM reference_contigs WHERE chrom = ?`), chrom).Scan(&gen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return gen, true, nil
}

// publishContig points the contig row at gen and drops the chunks of every
// other generation.
func publishContig(ctx context.Context, db querier, d dialect, chrom string, length, gen int64, exists bool) error {
	var err error
	if exists {
		_, err = db.ExecContext(ctx, d.bind(`UPDATE reference_contigs SET length = ?, generation = ? WHERE chrom = ?`), length, gen, chrom)
	} else {
		_, err = db.ExecContext(ctx, d.bind(`INSERT INTO reference_contigs (chrom, length, generation) VALUES (?, ?, ?)`), chrom, length, gen)
	}
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, d.bind(`DELETE FROM reference_chunks WHERE chrom = ? AND generation <> ?`), chrom, gen)
	return err
}

// appenderSink bulk-loads chunks with the DuckDB Appender inside an explicit
// transaction on a dedicated connection.
type appenderSink struct {
	conn     *sql.Conn
	appender *goduckdb.Appender
}

func newAppenderSink(ctx context.Context, db *sql.DB) (*appenderSink, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `BEGIN TRANSACTION`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin import: %w", err)
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "reference_chunks")
		return err
	}); err != nil {
		_, _ = conn.ExecContext(context.Background(), `ROLLBACK`)
		conn.Close()
		return nil, fmt.Errorf("create appender: %w", err)
	}
	return &appenderSink{conn: conn, appender: appender}, nil
}

func (a *appenderSink) generation(ctx context.Context, chrom string) (int64, bool, error) {
	return currentGeneration(ctx, a.conn, duckDialect, chrom)
}

func (a *appenderSink) chunk(chrom string, gen, idx int64, seq string) error {
	return a.appender.AppendRow(chrom, gen, idx, seq)
}

func (a *appenderSink) contig(ctx context.Context, chrom string, length, gen int64, exists bool) error {
	// buffered rows must land before older generations are deleted
	if err := a.appender.Flush(); err != nil {
		return err
	}
	return publishContig(ctx, a.conn, duckDialect, chrom, length, gen, exists)
}

func (a *appenderSink) commit() error {
	defer a.conn.Close()
	if err := a.appender.Close(); err != nil {
		_, _ = a.conn.ExecContext(context.Background(), `ROLLBACK`)
		return err
	}
	_, err := a.conn.ExecContext(context.Background(), `COMMIT`)
	return err
}

func (a *appenderSink) rollback() {
	_ = a.appender.Close()
	_, _ = a.conn.ExecContext(context.Background(), `ROLLBACK`)
	a.conn.Close()
}
