package app

import (
	"strconv"
	"time"

	"example/aoe4-reviewer/app/models"
)

const unknownResult = "unknown"

// Reshape partitions a match into the viewer's team and everyone else and
// attaches any saved annotations. A viewer who did not play is not an error:
// their team is empty and every player lands on the opponent side.
func Reshape(m *models.Match, viewerID string, loc *time.Location) (*models.MatchView, error) {
	info, err := GameInfo(m, loc)
	if err != nil {
		return nil, err
	}
	name, err := MatchName(m, loc)
	if err != nil {
		return nil, err
	}

	units := flattenTeams(m, viewerID)

	myTeam := models.NoTeam
	myResult := unknownResult
	viewerName := ""
	for _, u := range units {
		if u.IsViewer {
			myTeam = u.Team
			myResult = u.Result
			viewerName = u.Name
			break
		}
	}

	view := &models.MatchView{
		ViewerID:     viewerID,
		MyTeamIndex:  myTeam,
		MyResult:     myResult,
		MyTeam:       []models.PlayerUnit{},
		OpponentTeam: []models.PlayerUnit{},
		Banner:       bannerFor(myResult),
		GameInfo:     info,
		MatchName:    name,
		GameURL:      GameURL(viewerID, viewerName, m.GameID),
		Match:        m,
	}

	viewerPlaced := false
	for _, u := range units {
		switch {
		case u.Team != myTeam:
			view.OpponentTeam = append(view.OpponentTeam, u)
		case u.IsViewer && !viewerPlaced:
			view.MyTeam = append([]models.PlayerUnit{u}, view.MyTeam...)
			viewerPlaced = true
		default:
			view.MyTeam = append(view.MyTeam, u)
		}
	}
	return view, nil
}

func flattenTeams(m *models.Match, viewerID string) []models.PlayerUnit {
	var units []models.PlayerUnit
	for team, slots := range m.Teams {
		for _, slot := range slots {
			p := slot.Player
			id := strconv.FormatInt(p.ProfileID, 10)
			units = append(units, models.PlayerUnit{
				ProfileID:    id,
				Name:         p.Name,
				Civilization: p.Civilization,
				Result:       p.Result,
				MMR:          p.MMR,
				Team:         team,
				IsViewer:     id == viewerID,
				ProfileURL:   ProfileURL(id),
				Annotation:   m.PlayerInput[id],
			})
		}
	}
	return units
}

func bannerFor(result string) models.Banner {
	switch result {
	case "loss":
		return models.Banner{Mine: "LOSS", Opponent: "WIN"}
	case "win":
		return models.Banner{Mine: "WIN", Opponent: "LOSS"}
	}
	return models.Banner{Mine: notAvailable, Opponent: notAvailable}
}
