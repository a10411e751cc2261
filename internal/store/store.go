// Package store archives heightfields in a SQLite database, one named
// terrain per row with its generation parameters.
package store

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/MeKo-Tech/reliefmap/internal/grid"
)

// Terrain is one stored heightfield together with the parameters used to
// generate it. Extracted real-world terrain has SquareSize zero.
type Terrain struct {
	Name       string
	Seed       int64
	SquareSize int
	Squares    [2]int
	BaseLevel  float64
	Height     grid.Field
}

// Store reads and writes terrains in a SQLite database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and if needed creates) a terrain database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS terrains (
			name TEXT NOT NULL,
			rows INTEGER NOT NULL,
			cols INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			square_size INTEGER NOT NULL,
			squares_lat INTEGER NOT NULL,
			squares_lon INTEGER NOT NULL,
			base_level REAL NOT NULL,
			created_at TEXT NOT NULL,
			height BLOB NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS terrain_name ON terrains (name);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Put inserts or replaces a terrain. The height data is gzip-compressed
// big-endian float64, row-major.
func (s *Store) Put(t Terrain) error {
	if t.Name == "" {
		return fmt.Errorf("terrain name must not be empty")
	}

	blob, err := encodeHeight(t.Height)
	if err != nil {
		return fmt.Errorf("failed to encode terrain %q: %w", t.Name, err)
	}

	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO terrains
			(name, rows, cols, seed, square_size, squares_lat, squares_lon, base_level, created_at, height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Height.Rows, t.Height.Cols, t.Seed,
		t.SquareSize, t.Squares[0], t.Squares[1], t.BaseLevel,
		time.Now().UTC().Format(time.RFC3339), blob,
	)
	if err != nil {
		return fmt.Errorf("failed to insert terrain %q: %w", t.Name, err)
	}
	return nil
}

// Get loads a terrain by name.
func (s *Store) Get(name string) (Terrain, error) {
	var (
		t    Terrain
		rows int
		cols int
		blob []byte
	)

	err := s.db.QueryRow(`
		SELECT name, rows, cols, seed, square_size, squares_lat, squares_lon, base_level, height
		FROM terrains WHERE name = ?`, name,
	).Scan(&t.Name, &rows, &cols, &t.Seed, &t.SquareSize, &t.Squares[0], &t.Squares[1], &t.BaseLevel, &blob)
	if err == sql.ErrNoRows {
		return Terrain{}, fmt.Errorf("terrain %q not found", name)
	}
	if err != nil {
		return Terrain{}, fmt.Errorf("failed to read terrain %q: %w", name, err)
	}

	t.Height, err = decodeHeight(blob, rows, cols)
	if err != nil {
		return Terrain{}, fmt.Errorf("failed to decode terrain %q: %w", name, err)
	}
	return t, nil
}

// List returns the names of all stored terrains in insertion order.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT name FROM terrains ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list terrains: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan terrain name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func encodeHeight(f grid.Field) ([]byte, error) {
	raw := make([]byte, 8*len(f.Data))
	for i, v := range f.Data {
		binary.BigEndian.PutUint64(raw[i*8:], math.Float64bits(v))
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeHeight(blob []byte, rows, cols int) (grid.Field, error) {
	gr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return grid.Field{}, err
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return grid.Field{}, err
	}
	if len(raw) != 8*rows*cols {
		return grid.Field{}, fmt.Errorf("height blob has %d bytes, want %d", len(raw), 8*rows*cols)
	}

	f := grid.NewField(rows, cols)
	for i := range f.Data {
		f.Data[i] = math.Float64frombits(binary.BigEndian.Uint64(raw[i*8:]))
	}
	return f, nil
}
