package app

import (
	"embed"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"example/aoe4-reviewer/app/models"
)

//go:embed templates/*
var templates embed.FS

// ParseTemplates loads the single page template.
func ParseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"selected": func(a, b string) bool { return a == b },
	}).ParseFS(templates, "templates/*.html")
}

// PageData feeds templates/page.html.
type PageData struct {
	PlayerID string
	Message  string // shown in place of match content
	Notice   string // save feedback
	Recent   []RecentLink
	Saved    []string
	View     *models.MatchView
	MyCards  []PlayerCard
	OppCards []PlayerCard
}

type RecentLink struct {
	Index int
	Info  string
}

// PlayerCard is everything one player panel needs.
type PlayerCard struct {
	ProfileID  string
	Name       string
	ProfileURL string
	CivKey     string
	CivName    string
	IconPath   string
	MMR        string
	IsViewer   bool
	Ages       []AgeRow
	Strategy   TextField
	Improve    TextField
}

type AgeRow struct {
	Label         string
	TimeField     string
	TimeValue     string
	LandmarkField string
	LandmarkValue string
	Options       []string
}

type TextField struct {
	Name        string
	Value       string
	Placeholder string
}

// BuildCards turns units into panels. An unknown civilization fails the
// whole render rather than showing an empty dropdown. Icons are linked only
// when assetsDir holds {civ}.png; otherwise the card shows the civ name.
func BuildCards(units []models.PlayerUnit, assetsDir string) ([]PlayerCard, error) {
	cards := make([]PlayerCard, 0, len(units))
	for _, u := range units {
		l, err := LandmarksFor(u.Civilization)
		if err != nil {
			return nil, err
		}
		a := u.Annotation
		id := u.ProfileID
		cards = append(cards, PlayerCard{
			ProfileID:  id,
			Name:       u.Name,
			ProfileURL: u.ProfileURL,
			CivKey:     u.Civilization,
			CivName:    CivDisplayName(u.Civilization),
			IconPath:   iconPath(assetsDir, u.Civilization),
			MMR:        formatMMR(u.MMR),
			IsViewer:   u.IsViewer,
			Ages: []AgeRow{
				ageRow("Feudal", id, models.FieldFeudalTime, models.FieldFeudalLandmark, l.Feudal, a),
				ageRow("Castle", id, models.FieldCastleTime, models.FieldCastleLandmark, l.Castle, a),
				ageRow("Empire", id, models.FieldEmpireTime, models.FieldEmpireLandmark, l.Empire, a),
			},
			Strategy: TextField{
				Name:        FieldName(id, models.FieldStrategy),
				Value:       a.Value(models.FieldStrategy),
				Placeholder: "What is the game plan? Is it successful or not?",
			},
			Improve: TextField{
				Name:        FieldName(id, models.FieldImprove),
				Value:       a.Value(models.FieldImprove),
				Placeholder: "What are some areas to improve?",
			},
		})
	}
	return cards, nil
}

func iconPath(assetsDir, civ string) string {
	if assetsDir == "" {
		return ""
	}
	fi, err := os.Stat(filepath.Join(assetsDir, civ+".png"))
	if err != nil || !fi.Mode().IsRegular() {
		return ""
	}
	return "/assets/" + civ + ".png"
}

func ageRow(label, id, timeKey, landmarkKey string, options []string, a *models.Annotation) AgeRow {
	return AgeRow{
		Label:         label,
		TimeField:     FieldName(id, timeKey),
		TimeValue:     a.Value(timeKey),
		LandmarkField: FieldName(id, landmarkKey),
		LandmarkValue: a.Value(landmarkKey),
		Options:       options,
	}
}

// RecentLinks summarizes each game; a game with a bad start time is listed by id.
func RecentLinks(games []models.Match, loc *time.Location) []RecentLink {
	links := make([]RecentLink, 0, len(games))
	for i := range games {
		info, err := GameInfo(&games[i], loc)
		if err != nil {
			info = "Game " + strconv.FormatInt(games[i].GameID, 10)
		}
		links = append(links, RecentLink{Index: i, Info: info})
	}
	return links
}
