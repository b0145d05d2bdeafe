package models

import (
	"encoding/json"
	"time"
)

// SavedMatchEvent is published to SQS after a match is written to disk.
type SavedMatchEvent struct {
	MatchName string          `json:"match_name"`
	GameID    int64           `json:"game_id"`
	ViewerID  string          `json:"viewer_id"`
	SavedAt   time.Time       `json:"saved_at"`
	Record    json.RawMessage `json:"record"` // the persisted file, player-input included
}
