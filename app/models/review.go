package models

import "time"

// ReviewSession holds what one browser is looking at between requests.
type ReviewSession struct {
	ID        string    `json:"id"`
	ViewerID  string    `json:"viewer_id"`
	Recent    []Match   `json:"recent,omitempty"`
	Current   *Match    `json:"current,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SavedReview is one row of the save index.
type SavedReview struct {
	MatchName string    `json:"match_name"`
	GameID    int64     `json:"game_id"`
	ViewerID  string    `json:"viewer_id"`
	Map       string    `json:"map"`
	Kind      string    `json:"kind"`
	StartedAt string    `json:"started_at"`
	FilePath  string    `json:"file_path"`
	SavedAt   time.Time `json:"saved_at"`
}
