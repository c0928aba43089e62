// Package highscore persists the single best score across runs. The
// engine only reports the final score of a round; keeping the maximum
// is this package's job.
package highscore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS highscore (
	id    INTEGER PRIMARY KEY CHECK (id = 1),
	score INTEGER NOT NULL
);
INSERT OR IGNORE INTO highscore (id, score) VALUES (1, 0);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens the score database at path, ensuring the parent
// directory exists. WAL and a busy timeout keep concurrent readers
// (e.g. the server's API) out of trouble.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Best returns the stored high score.
func (s *Store) Best() (int, error) {
	var best int
	if err := s.db.QueryRow(`SELECT score FROM highscore WHERE id = 1`).Scan(&best); err != nil {
		return 0, fmt.Errorf("query high score: %w", err)
	}
	return best, nil
}

// Submit records score if it beats the stored one and returns the new
// best. Submissions only ever raise the value.
func (s *Store) Submit(score int) (int, error) {
	if _, err := s.db.Exec(`UPDATE highscore SET score = MAX(score, ?) WHERE id = 1`, score); err != nil {
		return 0, fmt.Errorf("update high score: %w", err)
	}
	return s.Best()
}

func (s *Store) Close() error {
	return s.db.Close()
}
