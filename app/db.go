package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"example/aoe4-reviewer/app/config"
	"example/aoe4-reviewer/app/models"

	_ "github.com/lib/pq"
)

// SaveIndex records saved reviews somewhere other than the data directory.
type SaveIndex interface {
	Record(ctx context.Context, r models.SavedReview) error
	Recent(ctx context.Context, limit int) ([]models.SavedReview, error)
}

// ReviewIndex is the Postgres SaveIndex.
type ReviewIndex struct {
	db *sql.DB
}

const createSavedReviews = `
CREATE TABLE IF NOT EXISTS saved_reviews (
	match_name TEXT PRIMARY KEY,
	game_id    BIGINT NOT NULL,
	viewer_id  TEXT NOT NULL,
	map        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	started_at TEXT NOT NULL,
	file_path  TEXT NOT NULL,
	saved_at   TIMESTAMPTZ NOT NULL
)`

// OpenIndex connects, pings and makes sure the table exists.
func OpenIndex(ctx context.Context, cfg config.PostgresConfig) (*ReviewIndex, error) {
	d, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	idx := NewReviewIndex(d)
	if err := idx.EnsureSchema(ctx); err != nil {
		d.Close()
		return nil, err
	}
	log.Println("Connected to Postgres")
	return idx, nil
}

func NewReviewIndex(db *sql.DB) *ReviewIndex {
	return &ReviewIndex{db: db}
}

func (i *ReviewIndex) EnsureSchema(ctx context.Context) error {
	if _, err := i.db.ExecContext(ctx, createSavedReviews); err != nil {
		return fmt.Errorf("create saved_reviews: %w", err)
	}
	return nil
}

func (i *ReviewIndex) Close() error { return i.db.Close() }

// Record upserts by match name, mirroring the overwrite on disk.
func (i *ReviewIndex) Record(ctx context.Context, r models.SavedReview) error {
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO saved_reviews (match_name, game_id, viewer_id, map, kind, started_at, file_path, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_name) DO UPDATE SET
			game_id = EXCLUDED.game_id,
			viewer_id = EXCLUDED.viewer_id,
			map = EXCLUDED.map,
			kind = EXCLUDED.kind,
			started_at = EXCLUDED.started_at,
			file_path = EXCLUDED.file_path,
			saved_at = EXCLUDED.saved_at
	`, r.MatchName, r.GameID, r.ViewerID, r.Map, r.Kind, r.StartedAt, r.FilePath, r.SavedAt)
	if err != nil {
		return fmt.Errorf("record saved review %s: %w", r.MatchName, err)
	}
	return nil
}

// Recent returns the newest saves first.
func (i *ReviewIndex) Recent(ctx context.Context, limit int) ([]models.SavedReview, error) {
	rows, err := i.db.QueryContext(ctx, `
		SELECT match_name, game_id, viewer_id, map, kind, started_at, file_path, saved_at
		FROM saved_reviews
		ORDER BY saved_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SavedReview
	for rows.Next() {
		var r models.SavedReview
		if err := rows.Scan(&r.MatchName, &r.GameID, &r.ViewerID, &r.Map, &r.Kind, &r.StartedAt, &r.FilePath, &r.SavedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
