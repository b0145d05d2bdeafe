package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example/aoe4-reviewer/app/models"

	"github.com/gosimple/slug"
)

const (
	apiTimeLayout     = "2006-01-02T15:04:05.000Z"
	displayTimeLayout = "2006-01-02 15:04:05"
	persistTimeLayout = "2006-01-02_15_04_05"

	notAvailable = "N/A"
	siteURL      = "https://aoe4world.com"
)

// ErrBadStartTime wraps a started_at value neither layout accepts.
var ErrBadStartTime = errors.New("invalid started_at")

// SecToMin renders seconds as MM:SS. Minutes are not capped at 59.
func SecToMin(sec *int) string {
	if sec == nil {
		return notAvailable
	}
	return fmt.Sprintf("%02d:%02d", *sec/60, *sec%60)
}

// parseStartedAt accepts the API's millisecond layout and falls back to RFC 3339.
func parseStartedAt(s string) (time.Time, error) {
	t, err := time.Parse(apiTimeLayout, s)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339Nano, s); rfcErr == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w %q: %v", ErrBadStartTime, s, err)
}

// FormatStartTime converts a UTC started_at into loc using the display or
// filename layout. Sub-second precision is dropped.
func FormatStartTime(startedAt string, loc *time.Location, forPersist bool) (string, error) {
	t, err := parseStartedAt(startedAt)
	if err != nil {
		return "", err
	}
	if loc == nil {
		loc = time.Local
	}
	layout := displayTimeLayout
	if forPersist {
		layout = persistTimeLayout
	}
	return t.In(loc).Format(layout), nil
}

// GameInfo is the one-line summary shown above the teams and in recent-match lists.
func GameInfo(m *models.Match, loc *time.Location) (string, error) {
	start, err := FormatStartTime(m.StartedAt, loc, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Map: %s | Time: %s | Duration: %s | Kind: %s | MMR: %s",
		m.Map, start, SecToMin(m.Duration), m.Kind, formatMMR(m.AverageMMR)), nil
}

// MatchName derives the saved-file stem. Distinct matches sharing start
// second, map and kind collide.
func MatchName(m *models.Match, loc *time.Location) (string, error) {
	start, err := FormatStartTime(m.StartedAt, loc, true)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s,%s,%s", start, m.Map, m.Kind), nil
}

func formatMMR(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ProfileURL links a player's aoe4world page.
func ProfileURL(profileID string) string {
	return fmt.Sprintf("%s/players/%s", siteURL, profileID)
}

// GameURL links the match page from the viewer's profile. aoe4world only
// uses the numeric id for routing, the name part is a readable slug.
func GameURL(viewerID, viewerName string, gameID int64) string {
	player := viewerID
	if s := slug.Make(viewerName); s != "" {
		player += "-" + s
	}
	return fmt.Sprintf("%s/players/%s/games/%d", siteURL, player, gameID)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("expected a positive integer, got %d", n)
	}
	return n, nil
}
