package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RatingStore persists finished ratings. It is history only; the live view
// state is never stored.
type RatingStore interface {
	SaveRating(r *Rating) error
	GetRating(id string) (*Rating, error)
	RecentRatings(telegramID int64, limit int) ([]Rating, error)
	Stats() (*Stats, error)
	PruneRatings(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteStore implements RatingStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ RatingStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// WAL and busy timeout so the janitor and session workers can share the file
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Only the owner needs to read rating history
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		db.Close()
		return nil, fmt.Errorf("failed to set database permissions: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		telegram_id INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		score INTEGER NOT NULL,
		title TEXT NOT NULL,
		mime_type TEXT NOT NULL,
		products TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create ratings table: %w", err)
	}

	indexQuery := `CREATE INDEX IF NOT EXISTS idx_ratings_user ON ratings (telegram_id, created_at DESC);`
	if _, err := s.db.Exec(indexQuery); err != nil {
		return fmt.Errorf("failed to create ratings index: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
