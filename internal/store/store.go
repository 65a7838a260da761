package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"flux/internal/parser"

	"github.com/google/uuid"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Preset is a named transformer program kept for later recall.
type Preset struct {
	ID        string
	Name      string
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists presets through database/sql. Any of the registered drivers
// (sqlite3, mysql, postgres) works; sqlite3 with a file or :memory: DSN is
// the usual local setup.
type Store struct {
	db     *sql.DB
	driver string
}

// rebind rewrites ? placeholders into the numbered $N form postgres expects.
// sqlite3 and mysql take ? as-is.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const schema = `
CREATE TABLE IF NOT EXISTS presets (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	source     TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

func Open(driver, dsn string) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Save stores a named program, overwriting any preset with the same name.
// The source must parse; a preset that cannot be realized later is useless.
func (s *Store) Save(name, source string) (*Preset, error) {
	if _, errs := parser.Parse(source); len(errs) != 0 {
		return nil, fmt.Errorf("preset %q does not parse: %s", name, errs[0])
	}

	now := time.Now().UTC()

	existing, err := s.Get(name)
	if err == nil {
		_, err = s.db.Exec(
			s.rebind("UPDATE presets SET source = ?, updated_at = ? WHERE id = ?"),
			source, now, existing.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update preset: %w", err)
		}
		existing.Source = source
		existing.UpdatedAt = now
		return existing, nil
	}

	p := &Preset{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.Exec(
		s.rebind("INSERT INTO presets (id, name, source, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"),
		p.ID, p.Name, p.Source, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert preset: %w", err)
	}

	return p, nil
}

func (s *Store) Get(name string) (*Preset, error) {
	row := s.db.QueryRow(
		s.rebind("SELECT id, name, source, created_at, updated_at FROM presets WHERE name = ?"), name)

	p := &Preset{}
	err := row.Scan(&p.ID, &p.Name, &p.Source, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("preset %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preset: %w", err)
	}
	return p, nil
}

func (s *Store) List() ([]*Preset, error) {
	rows, err := s.db.Query(
		"SELECT id, name, source, created_at, updated_at FROM presets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p := &Preset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Source, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(s.rebind("DELETE FROM presets WHERE name = ?"), name)
	if err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("preset %q not found", name)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
