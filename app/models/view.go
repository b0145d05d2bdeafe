package models

// NoTeam marks a viewer that does not appear in the match.
const NoTeam = -1

// PlayerUnit is one flattened player, tagged with its team and any saved annotation.
type PlayerUnit struct {
	ProfileID    string      `json:"profile_id"`
	Name         string      `json:"name"`
	Civilization string      `json:"civilization"`
	Result       string      `json:"result"`
	MMR          *float64    `json:"mmr"`
	Team         int         `json:"team"`
	IsViewer     bool        `json:"is_viewer"`
	ProfileURL   string      `json:"profile_url"`
	Annotation   *Annotation `json:"annotation"`
}

type Banner struct {
	Mine     string `json:"mine"`
	Opponent string `json:"opponent"`
}

// MatchView is a match reshaped from one viewer's point of view.
type MatchView struct {
	ViewerID     string       `json:"viewer_id"`
	MyTeamIndex  int          `json:"my_team_index"`
	MyResult     string       `json:"my_result"`
	MyTeam       []PlayerUnit `json:"my_team"`
	OpponentTeam []PlayerUnit `json:"opponent_team"`
	Banner       Banner       `json:"banner"`
	GameInfo     string       `json:"game_info"`
	MatchName    string       `json:"match_name"`
	GameURL      string       `json:"game_url"`
	Match        *Match       `json:"match"`
}

// Units returns both teams, mine first.
func (v *MatchView) Units() []PlayerUnit {
	out := make([]PlayerUnit, 0, len(v.MyTeam)+len(v.OpponentTeam))
	out = append(out, v.MyTeam...)
	return append(out, v.OpponentTeam...)
}
