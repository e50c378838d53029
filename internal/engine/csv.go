// Package engine loads tabular catalog files through an in-memory DuckDB.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"esmcat/internal/domain"
)

// Compile-time check.
var _ domain.TableLoader = (*CSVLoader)(nil)

// CSVLoader reads CSV files into tables with DuckDB's read_csv_auto.
// Compression is detected from the file extension.
type CSVLoader struct {
	db *sql.DB
}

// NewCSVLoader creates a CSVLoader over an open DuckDB handle.
func NewCSVLoader(db *sql.DB) *CSVLoader {
	return &CSVLoader{db: db}
}

// LoadFile reads the CSV file at path. The first line is the header.
// read_csv_auto expands glob patterns, so a path holding glob characters is
// copied to a plain temporary name first and the literal file is read.
func (l *CSVLoader) LoadFile(ctx context.Context, path string) (*domain.Table, error) {
	if !strings.ContainsAny(path, globChars) {
		return l.readCSV(ctx, path)
	}
	f, err := os.Open(path) //nolint:gosec // caller-chosen catalog path
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	return l.spool(ctx, f, path, compressionSuffix(path))
}

// Load spools r to a temporary file and reads it.
// name only picks the temporary file's extension.
func (l *CSVLoader) Load(ctx context.Context, r io.Reader, name string) (*domain.Table, error) {
	return l.spool(ctx, r, name, csvSuffix(name))
}

// globChars are the characters DuckDB treats as file glob syntax.
const globChars = "*?[]{}"

func (l *CSVLoader) readCSV(ctx context.Context, path string) (*domain.Table, error) {
	query := fmt.Sprintf("SELECT * FROM read_csv_auto(%s, header = true)", QuoteLiteral(path))
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read csv %q: %w", path, err)
	}
	defer rows.Close() //nolint:errcheck
	return scanTable(rows)
}

func (l *CSVLoader) spool(ctx context.Context, r io.Reader, name, suffix string) (*domain.Table, error) {
	f, err := os.CreateTemp("", "esmcat-*"+suffix)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	defer os.Remove(f.Name()) //nolint:errcheck

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("spool %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("spool %q: %w", name, err)
	}
	return l.readCSV(ctx, f.Name())
}

// csvSuffix keeps a compression extension of a URL or object name so DuckDB
// can detect it. Query and fragment are ignored.
func csvSuffix(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	return compressionSuffix(name)
}

func compressionSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".gz", ".zst"} {
		if strings.HasSuffix(lower, ext) {
			return ".csv" + ext
		}
	}
	return ".csv"
}

func scanTable(rows *sql.Rows) (*domain.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	table, err := domain.NewTable(cols)
	if err != nil {
		return nil, err
	}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		if err := table.AppendRow(vals); err != nil {
			return nil, err
		}
	}
	return table, rows.Err()
}

// QuoteLiteral wraps a string value in single quotes, escaping any
// embedded single-quote characters by doubling them (standard SQL).
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
