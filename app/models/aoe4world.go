package models

import (
	"bytes"
	"encoding/json"
)

// Player as reported by aoe4world inside a team slot.
type Player struct {
	ProfileID    int64    `json:"profile_id"`
	Name         string   `json:"name"`
	Civilization string   `json:"civilization"`
	Result       string   `json:"result"` // "win", "loss" or anything else the API sends
	MMR          *float64 `json:"mmr"`
}

type TeamSlot struct {
	Player Player `json:"player"`
}

// Match is a single game from /players/{id}/games. Only the fields the
// reviewer reads are typed; everything else rides along in raw so a saved
// file keeps every field value the API sent. Key order and whitespace are
// not kept.
type Match struct {
	GameID     int64        `json:"game_id"`
	StartedAt  string       `json:"started_at"`
	Duration   *int         `json:"duration"`
	Map        string       `json:"map"`
	Kind       string       `json:"kind"`
	AverageMMR *float64     `json:"average_mmr"`
	Teams      [][]TeamSlot `json:"teams"`

	PlayerInput map[string]*Annotation `json:"player-input,omitempty"`

	raw map[string]json.RawMessage
}

const PlayerInputKey = "player-input"

// Players flattens teams into one slice, keeping team order.
func (m *Match) Players() []Player {
	var out []Player
	for _, team := range m.Teams {
		for _, slot := range team {
			out = append(out, slot.Player)
		}
	}
	return out
}

func (m *Match) UnmarshalJSON(data []byte) error {
	type plain Match
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = Match(p)
	m.raw = raw
	return nil
}

func (m Match) MarshalJSON() ([]byte, error) {
	if m.raw == nil {
		type plain Match
		return marshalUnescaped(plain(m))
	}

	fields := make(map[string]json.RawMessage, len(m.raw)+1)
	for k, v := range m.raw {
		fields[k] = v
	}
	delete(fields, PlayerInputKey)
	if m.PlayerInput != nil {
		input, err := marshalUnescaped(m.PlayerInput)
		if err != nil {
			return nil, err
		}
		fields[PlayerInputKey] = input
	}
	return marshalUnescaped(fields)
}

// GamesResponse is the body of /players/{id}/games. The API reports
// failures as {"error": ...}.
type GamesResponse struct {
	Games []Match         `json:"games"`
	Error json.RawMessage `json:"error,omitempty"`
}

func marshalUnescaped(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
