package bundle

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
)

// Reader reads sprite maps from a bundle database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a bundle database for reading.
func OpenReader(path string) (*Reader, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='maps'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain maps table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadMap returns the ungzipped PNG data and size of one sprite map.
func (r *Reader) ReadMap(sprite, kind string) ([]byte, int, int, error) {
	var (
		compressed    []byte
		width, height int
	)
	err := r.db.QueryRow(
		"SELECT width, height, map_data FROM maps WHERE sprite=? AND kind=?",
		sprite, kind,
	).Scan(&width, &height, &compressed)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, fmt.Errorf("%w: %s/%s", ErrNotFound, sprite, kind)
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to query map: %w", err)
	}

	data, err := gzipDecompress(compressed)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decompress map: %w", err)
	}

	return data, width, height, nil
}

// Sprites lists the stored sprite names in ascending order.
func (r *Reader) Sprites() ([]string, error) {
	return r.strings("SELECT DISTINCT sprite FROM maps ORDER BY sprite")
}

// Kinds lists the map kinds stored for sprite in ascending order.
func (r *Reader) Kinds(sprite string) ([]string, error) {
	return r.strings("SELECT kind FROM maps WHERE sprite=? ORDER BY kind", sprite)
}

func (r *Reader) strings(query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[name] = value
	}

	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	return fromMap(values), nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
