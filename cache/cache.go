// Package cache remembers rendered sprite sheets between builds so that
// unchanged sheets are not composed and encoded again.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"cssprite/packer"
)

const schema = `
CREATE TABLE IF NOT EXISTS sheets (
	name       TEXT PRIMARY KEY,
	digest     TEXT NOT NULL,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	file       TEXT NOT NULL,
	placements TEXT NOT NULL,
	built      INTEGER NOT NULL
);
`

// Entry describes a sheet written by one of the previous builds.
type Entry struct {
	Name       string // sheet identity: output path of the sheet
	Digest     string
	Width      int
	Height     int
	File       string
	Placements []packer.Placement
	Built      time.Time
}

// Store is a sqlite backed sheet cache. Nil store is valid: it never hits
// and ignores writes.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *zap.Logger
}

// Open opens or creates cache database. Empty path disables caching.
func Open(path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create cache directory: %w", err)
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache '%s': %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize cache '%s': %w", path, err)
	}
	log.Debug("Build cache opened", zap.String("path", path))
	return &Store{conn: conn, log: log}, nil
}

// Close releases database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Lookup returns cached entry when digest matches and sheet file is still
// present.
func (s *Store) Lookup(name, digest string) (*Entry, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		e          *Entry
		placements string
	)
	err := sqlitex.Execute(s.conn,
		`SELECT name, digest, width, height, file, placements, built FROM sheets WHERE name = ? AND digest = ?`,
		&sqlitex.ExecOptions{
			Args: []any{name, digest},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e = &Entry{
					Name:   stmt.ColumnText(0),
					Digest: stmt.ColumnText(1),
					Width:  stmt.ColumnInt(2),
					Height: stmt.ColumnInt(3),
					File:   stmt.ColumnText(4),
					Built:  time.Unix(stmt.ColumnInt64(6), 0),
				}
				placements = stmt.ColumnText(5)
				return nil
			},
		})
	if err != nil {
		return nil, false, fmt.Errorf("unable to query cache: %w", err)
	}
	if e == nil {
		return nil, false, nil
	}
	if err := json.Unmarshal([]byte(placements), &e.Placements); err != nil {
		s.log.Warn("Corrupted cache entry ignored", zap.String("name", name), zap.Error(err))
		return nil, false, nil
	}
	if _, err := os.Stat(e.File); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug("Cached sheet is gone", zap.String("file", e.File))
			return nil, false, nil
		}
		return nil, false, err
	}
	return e, true, nil
}

// Store records entry replacing previous one with the same name.
func (s *Store) Store(e *Entry) error {
	if s == nil {
		return nil
	}
	placements, err := json.Marshal(e.Placements)
	if err != nil {
		return err
	}
	if e.Built.IsZero() {
		e.Built = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = sqlitex.Execute(s.conn,
		`INSERT OR REPLACE INTO sheets (name, digest, width, height, file, placements, built) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{e.Name, e.Digest, e.Width, e.Height, e.File, string(placements), e.Built.Unix()},
		})
	if err != nil {
		return fmt.Errorf("unable to update cache: %w", err)
	}
	return nil
}

// Digest combines sheet inputs into a cache key.
func Digest(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
