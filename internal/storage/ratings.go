package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rating is one finished analysis.
type Rating struct {
	ID         string
	TelegramID int64
	Verdict    string
	Score      int
	Title      string
	MIMEType   string
	Products   []string
	CreatedAt  time.Time
}

// Stats aggregates all stored ratings.
type Stats struct {
	Total        int
	Users        int
	Chads        int
	Chuds        int
	AverageScore float64
}

// SaveRating inserts r. ID and CreatedAt are filled in when empty.
func (s *SQLiteStore) SaveRating(r *Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	products := r.Products
	if products == nil {
		products = []string{}
	}
	productsJSON, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO ratings (id, telegram_id, verdict, score, title, mime_type, products, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TelegramID, r.Verdict, r.Score, r.Title, r.MIMEType, string(productsJSON), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rating: %w", err)
	}
	return nil
}

// GetRating returns the rating with id, or nil if there is none.
func (s *SQLiteStore) GetRating(id string) (*Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, telegram_id, verdict, score, title, mime_type, products, created_at FROM ratings WHERE id = ?`,
		id,
	)
	r, err := scanRating(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return r, nil
}

// RecentRatings returns up to limit ratings for the user, newest first.
func (s *SQLiteStore) RecentRatings(telegramID int64, limit int) ([]Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, telegram_id, verdict, score, title, mime_type, products, created_at
		 FROM ratings WHERE telegram_id = ? ORDER BY created_at DESC LIMIT ?`,
		telegramID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, *r)
	}
	return ratings, rows.Err()
}

// Stats aggregates every stored rating.
func (s *SQLiteStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	var avg sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(DISTINCT telegram_id),
		       COALESCE(SUM(CASE WHEN verdict = 'CHAD' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN verdict = 'CHUD' THEN 1 ELSE 0 END), 0),
		       AVG(score)
		FROM ratings`,
	).Scan(&st.Total, &st.Users, &st.Chads, &st.Chuds, &avg)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	if avg.Valid {
		st.AverageScore = avg.Float64
	}
	return &st, nil
}

// PruneRatings deletes ratings older than the given duration.
func (s *SQLiteStore) PruneRatings(olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	result, err := s.db.Exec(`DELETE FROM ratings WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune ratings: %w", err)
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRating(row rowScanner) (*Rating, error) {
	var r Rating
	var productsJSON string
	if err := row.Scan(&r.ID, &r.TelegramID, &r.Verdict, &r.Score, &r.Title, &r.MIMEType, &productsJSON, &r.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(productsJSON), &r.Products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}
	return &r, nil
}
